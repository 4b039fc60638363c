package rule

import (
	"strconv"
	"strings"
)

// Op is a comparison operator in a condition.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpGt Op = ">"
	OpLt Op = "<"
)

// operatorOrder lists operators in match-precedence order. The two-character
// operators come first so that "==" is never split as "=" + "=", and "!=" is
// never mistaken for a bare "<" or ">" scan.
var operatorOrder = []Op{OpEq, OpNe, OpGt, OpLt}

// Condition is a parsed comparison, ready to evaluate against readings.
// Obtain one via ParseCondition; the zero value matches nothing.
type Condition struct {
	Field   string
	Op      Op
	Literal float64
}

// ParseCondition splits a condition string into field, operator and numeric
// literal. It returns a *ValidationError when the string does not match the
// grammar; parsing is the only place a condition can fail, so callers may
// evaluate the returned Condition without error handling.
func ParseCondition(s string) (Condition, error) {
	for _, op := range operatorOrder {
		idx := strings.Index(s, string(op))
		if idx < 0 {
			continue
		}

		field := strings.TrimSpace(s[:idx])
		lit := strings.TrimSpace(s[idx+len(op):])

		if field == "" {
			return Condition{}, newValidationError(s, "missing field name")
		}
		if lit == "" {
			return Condition{}, newValidationError(s, "missing numeric literal")
		}

		value, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Condition{}, newValidationError(s, "literal "+strconv.Quote(lit)+" is not numeric")
		}

		return Condition{Field: field, Op: op, Literal: value}, nil
	}

	return Condition{}, newValidationError(s, "no supported operator (==, !=, >, <)")
}

// Validate checks a condition string against the grammar without keeping the
// parsed form. Used by storage backends to reject malformed rules at
// add-time.
func Validate(s string) error {
	_, err := ParseCondition(s)
	return err
}

// Eval evaluates the condition against a reading.
//
// A reading that omits the condition's field evaluates to false rather than
// an error - sensors legitimately drop fields between messages. Comparison
// uses standard float64 semantics with no epsilon tolerance.
func (c Condition) Eval(r Reading) bool {
	value, ok := r[c.Field]
	if !ok {
		return false
	}

	switch c.Op {
	case OpEq:
		return value == c.Literal
	case OpNe:
		return value != c.Literal
	case OpGt:
		return value > c.Literal
	case OpLt:
		return value < c.Literal
	}
	return false
}
