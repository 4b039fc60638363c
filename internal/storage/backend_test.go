package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna/rulebench/internal/rule"
)

// backendsUnderTest returns one fresh instance of every backend variant,
// including a degraded Redis instance, so the shared contract is verified
// uniformly.
func backendsUnderTest(t *testing.T) map[string]Backend {
	t.Helper()

	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	srv := miniredis.RunT(t)
	rds, err := NewRedis(context.Background(), RedisOptions{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rds.Close() })

	// Port 1 is never listening; with fallback enabled construction must
	// still succeed.
	degraded, err := NewRedis(context.Background(), RedisOptions{
		Addr:     "127.0.0.1:1",
		Fallback: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { degraded.Close() })

	return map[string]Backend{
		"memory":         NewMemory(),
		"sqlite":         sqlite,
		"redis":          rds,
		"redis-fallback": degraded,
	}
}

func TestBackend_AddGetRoundTrip(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := backend.AddRule(ctx, rule.New("temperature > 25", "High temp"))
			require.NoError(t, err)
			require.NotEmpty(t, id)

			got, err := backend.GetRule(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, "temperature > 25", got.Condition)
			assert.Equal(t, "High temp", got.Action)
		})
	}
}

func TestBackend_RejectsMalformedCondition(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := backend.AddRule(ctx, rule.New("pressure >= 1000", "High pressure"))
			require.Error(t, err)
			assert.True(t, rule.IsValidationError(err), "expected ValidationError, got %T", err)

			// Rejected rules never reach the store.
			n, err := backend.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)
		})
	}
}

func TestBackend_GetAbsentRule(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			got, err := backend.GetRule(context.Background(), "no-such-id")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestBackend_DeleteRule(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := backend.AddRule(ctx, rule.New("humidity < 30", "Low humidity"))
			require.NoError(t, err)

			deleted, err := backend.DeleteRule(ctx, id)
			require.NoError(t, err)
			assert.True(t, deleted)

			got, err := backend.GetRule(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, got)

			// Deleting an absent id is not an error.
			deleted, err = backend.DeleteRule(ctx, id)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestBackend_ClearAll(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := backend.AddRule(ctx, rule.New("temperature > 25", "High temp"))
			require.NoError(t, err)
			_, err = backend.AddRule(ctx, rule.New("humidity < 30", "Low humidity"))
			require.NoError(t, err)

			require.NoError(t, backend.ClearAll(ctx))

			n, err := backend.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			// ClearAll is idempotent.
			require.NoError(t, backend.ClearAll(ctx))
		})
	}
}

func TestBackend_Count(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i, cond := range []string{"temperature > 25", "humidity < 30", "pressure > 1013"} {
				_, err := backend.AddRule(ctx, rule.New(cond, "alert"))
				require.NoError(t, err)

				n, err := backend.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, i+1, n)
			}
		})
	}
}

// Ordered backends must enumerate in insertion order. The Redis backend is
// deliberately excluded: its set iteration order is backend-native.
func TestBackend_InsertionOrder(t *testing.T) {
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	ordered := map[string]Backend{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}

	conditions := []string{
		"temperature > 25",
		"humidity < 30",
		"pressure > 1013",
		"temperature < 0",
	}

	for name, backend := range ordered {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, cond := range conditions {
				_, err := backend.AddRule(ctx, rule.New(cond, "alert"))
				require.NoError(t, err)
			}

			all, err := backend.GetAllRules(ctx)
			require.NoError(t, err)
			require.Len(t, all, len(conditions))
			for i, r := range all {
				assert.Equal(t, conditions[i], r.Condition)
			}
		})
	}
}

func TestBackend_GetAllEmptyIsNotNil(t *testing.T) {
	for name, backend := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			all, err := backend.GetAllRules(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		})
	}
}
