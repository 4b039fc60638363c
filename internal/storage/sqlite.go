package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calluna/rulebench/internal/rule"
)

//go:embed schema.sql
var schemaSQL string

// SQLite stores rules in a single-writer embedded database.
//
// Every mutating call runs inside its own committed transaction, so add and
// delete are durable when they return. Pass ":memory:" as the path for an
// ephemeral database in tests; the benchmark uses a file so disk I/O is part
// of what gets measured.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a rule database at the given path.
// Applies required pragmas and the schema automatically; safe to call on an
// existing database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// A single connection also keeps ":memory:" databases alive between
	// calls - each new connection would otherwise see a fresh database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// AddRule implements Backend. The insert commits before returning.
func (s *SQLite) AddRule(ctx context.Context, r rule.Rule) (string, error) {
	r, err := prepare(r)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rules (id, condition, action)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET condition = excluded.condition, action = excluded.action
	`, r.ID, r.Condition, r.Action)
	if err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}
	return r.ID, nil
}

// GetRule implements Backend.
func (s *SQLite) GetRule(ctx context.Context, id string) (*rule.Rule, error) {
	var r rule.Rule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, condition, action FROM rules WHERE id = ?
	`, id).Scan(&r.ID, &r.Condition, &r.Action)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return &r, nil
}

// GetAllRules implements Backend. Rules are returned in insertion order.
func (s *SQLite) GetAllRules(ctx context.Context) ([]rule.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, condition, action FROM rules ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []rule.Rule{}
	for rows.Next() {
		var r rule.Rule
		if err := rows.Scan(&r.ID, &r.Condition, &r.Action); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// DeleteRule implements Backend. The delete commits before returning.
func (s *SQLite) DeleteRule(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	return affected > 0, nil
}

// ClearAll implements Backend.
func (s *SQLite) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	return nil
}

// Count implements Backend.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// Name implements Backend.
func (s *SQLite) Name() string { return "sqlite" }

// Close implements Backend.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
