package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna/rulebench/internal/rule"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpenSQLite_DurableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	id, err := s1.AddRule(ctx, rule.New("temperature > 25", "High temp"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Add committed before return, so the rule survives the reopen.
	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetRule(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "temperature > 25", got.Condition)
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		require.NoError(t, err, "open iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestSQLite_AddRuleSameIDReplaces(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	r := rule.Rule{ID: "fixed-id", Condition: "temperature > 25", Action: "old"}
	_, err = s.AddRule(ctx, r)
	require.NoError(t, err)

	r.Action = "new"
	_, err = s.AddRule(ctx, r)
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetRule(ctx, "fixed-id")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Action)
}

func TestSQLite_CloseTwice(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	// database/sql tolerates a second Close.
	assert.NoError(t, s.Close())
}
