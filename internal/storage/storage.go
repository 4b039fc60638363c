package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/calluna/rulebench/internal/rule"
)

// Backend is the persistence contract shared by all storage variants.
//
// Not-found is not an error: GetRule returns (nil, nil) and DeleteRule
// returns (false, nil) for an absent id, keeping get/delete idempotent.
// AddRule rejects malformed conditions with *rule.ValidationError before
// anything reaches the underlying store.
type Backend interface {
	// AddRule validates and stores a rule, returning its assigned id.
	// A rule arriving without an id gets a generated one.
	AddRule(ctx context.Context, r rule.Rule) (string, error)

	// GetRule returns the rule with the given id, or nil if absent.
	GetRule(ctx context.Context, id string) (*rule.Rule, error)

	// GetAllRules returns every stored rule. See the package documentation
	// for per-backend ordering guarantees.
	GetAllRules(ctx context.Context) ([]rule.Rule, error)

	// DeleteRule removes a rule, reporting whether it existed.
	DeleteRule(ctx context.Context, id string) (bool, error)

	// ClearAll removes every rule. Idempotent.
	ClearAll(ctx context.Context) error

	// Count returns the number of stored rules.
	Count(ctx context.Context) (int, error)

	// Name identifies the backend in benchmark results and logs.
	Name() string

	// Close releases backend resources. Safe to call on a closed backend.
	Close() error
}

// UnavailableError reports a network backend whose server could not be
// reached at construction. It is returned only when fallback is disabled;
// with fallback enabled the backend degrades to Memory instead.
type UnavailableError struct {
	Backend string // backend name, e.g. "redis"
	Addr    string // endpoint that failed
	Err     error  // underlying connection/ping error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable at %s: %v", e.Backend, e.Addr, e.Err)
}

// Unwrap returns the underlying connection error.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if the error is a backend availability
// failure. Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// prepare validates an incoming rule and assigns an id when absent.
// Shared by every backend so the add-time contract is identical across
// variants.
func prepare(r rule.Rule) (rule.Rule, error) {
	if err := rule.Validate(r.Condition); err != nil {
		return rule.Rule{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}
