// Package sqlite implements the storage.Store interface on a single
// local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New opens (creating if necessary) the memory database at path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// WAL mode for better concurrency between readers and the writer.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the per-entity
// helpers can run standalone or inside SaveSeed's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.StoreError{Op: op, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		// Typed errors (validation, not-found) pass through unchanged.
		if types.IsValidation(err) || types.IsNotFound(err) {
			return err
		}
		var se *types.StoreError
		if errors.As(err, &se) {
			return err
		}
		return &types.StoreError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &types.StoreError{Op: op, Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}

// repoExists checks that a repository row exists for repoID.
func repoExists(ctx context.Context, q dbtx, repoID int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM repositories WHERE id = ?`, repoID).Scan(&one)
	if err == sql.ErrNoRows {
		return &types.NotFoundError{Kind: "repository", Key: fmt.Sprintf("%d", repoID)}
	}
	if err != nil {
		return fmt.Errorf("failed to check repository %d: %w", repoID, err)
	}
	return nil
}

// Clear deletes every row scoped to repoID across all tables in one
// transaction. Clearing an unknown repository is a no-op.
func (s *Store) Clear(ctx context.Context, repoID int64) error {
	return s.inTx(ctx, "clear", func(tx *sql.Tx) error {
		// Child tables first; the repository delete would cascade anyway
		// but explicit deletes keep the intent obvious.
		for _, stmt := range []string{
			`DELETE FROM antipatterns WHERE repo_id = ?`,
			`DELETE FROM exemplars WHERE repo_id = ?`,
			`DELETE FROM collaborators WHERE repo_id = ?`,
			`DELETE FROM repositories WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, repoID); err != nil {
				return fmt.Errorf("failed to clear repository %d: %w", repoID, err)
			}
		}
		return nil
	})
}

// Stats returns overall row counts.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}
	for _, q := range []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM repositories`, &stats.Repositories},
		{`SELECT COUNT(*) FROM collaborators`, &stats.Collaborators},
		{`SELECT COUNT(*) FROM exemplars`, &stats.Exemplars},
		{`SELECT COUNT(*) FROM antipatterns`, &stats.Antipatterns},
	} {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return nil, &types.StoreError{Op: "stats", Err: err}
		}
	}
	return stats, nil
}

// marshalJSON encodes v for a nullable JSON text column. Empty
// collections are stored as NULL, not "[]", matching read-side behavior.
func marshalJSON(v interface{}, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalStrings(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON column: %w", err)
	}
	return out, nil
}
