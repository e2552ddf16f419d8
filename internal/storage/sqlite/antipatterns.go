package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commitcritic/critic/internal/types"
)

// AddAntipattern appends a roast finding. Findings are evidence rows,
// never aggregated or reconciled with earlier runs.
func (s *Store) AddAntipattern(ctx context.Context, repoID int64, a *types.Antipattern) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, "add antipattern", func(tx *sql.Tx) error {
		if err := repoExists(ctx, tx, repoID); err != nil {
			return err
		}
		var err error
		id, err = addAntipattern(ctx, tx, repoID, a)
		return err
	})
	return id, err
}

func addAntipattern(ctx context.Context, q dbtx, repoID int64, a *types.Antipattern) (int64, error) {
	var collabID sql.NullInt64
	if a.CollaboratorID != nil {
		collabID = sql.NullInt64{Int64: *a.CollaboratorID, Valid: true}
	}

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO antipatterns (repo_id, collaborator_id, kind, example, frequency)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, repoID, collabID, string(a.Kind), nullString(a.Example), a.Frequency).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert antipattern %s: %w", a.Kind, err)
	}

	a.ID = id
	a.RepoID = repoID
	return id, nil
}

// ListAntipatterns returns findings for a repository, optionally scoped
// to one collaborator, highest frequency first.
func (s *Store) ListAntipatterns(ctx context.Context, repoID int64, collaboratorID *int64) ([]*types.Antipattern, error) {
	query := `
		SELECT id, repo_id, collaborator_id, kind, example, frequency
		FROM antipatterns
		WHERE repo_id = ?`
	args := []interface{}{repoID}

	if collaboratorID != nil {
		query += ` AND collaborator_id = ?`
		args = append(args, *collaboratorID)
	}
	query += ` ORDER BY frequency DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &types.StoreError{Op: "list antipatterns", Err: err}
	}
	defer rows.Close()

	findings := []*types.Antipattern{}
	for rows.Next() {
		var a types.Antipattern
		var collabID sql.NullInt64
		var example sql.NullString

		if err := rows.Scan(&a.ID, &a.RepoID, &collabID, &a.Kind, &example, &a.Frequency); err != nil {
			return nil, &types.StoreError{Op: "list antipatterns", Err: err}
		}
		if collabID.Valid {
			a.CollaboratorID = &collabID.Int64
		}
		a.Example = example.String
		findings = append(findings, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "list antipatterns", Err: err}
	}
	return findings, nil
}
