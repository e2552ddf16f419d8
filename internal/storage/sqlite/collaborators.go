package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commitcritic/critic/internal/types"
)

// PutCollaborator inserts or replaces a collaborator keyed by
// (repository, name) and returns the row ID.
func (s *Store) PutCollaborator(ctx context.Context, repoID int64, c *types.Collaborator) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, "put collaborator", func(tx *sql.Tx) error {
		if err := repoExists(ctx, tx, repoID); err != nil {
			return err
		}
		var err error
		id, err = putCollaborator(ctx, tx, repoID, c)
		return err
	})
	return id, err
}

func putCollaborator(ctx context.Context, q dbtx, repoID int64, c *types.Collaborator) (int64, error) {
	areas, err := marshalJSON(c.PrimaryAreas, len(c.PrimaryAreas) == 0)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.QueryRowContext(ctx, `
		INSERT INTO collaborators (
			repo_id, name, email, commit_count, avg_score,
			primary_areas_json, area_summary
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, name) DO UPDATE SET
			email = excluded.email,
			commit_count = excluded.commit_count,
			avg_score = excluded.avg_score,
			primary_areas_json = excluded.primary_areas_json,
			area_summary = excluded.area_summary
		RETURNING id
	`,
		repoID, c.Name, nullString(c.Email), c.CommitCount, c.AvgScore,
		areas, nullString(c.AreaSummary),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert collaborator %s: %w", c.Name, err)
	}

	c.ID = id
	c.RepoID = repoID
	return id, nil
}

// ListCollaborators returns a repository's collaborators ordered by
// commit count descending.
func (s *Store) ListCollaborators(ctx context.Context, repoID int64) ([]*types.Collaborator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo_id, name, email, commit_count, avg_score,
		       primary_areas_json, area_summary
		FROM collaborators
		WHERE repo_id = ?
		ORDER BY commit_count DESC, name ASC
	`, repoID)
	if err != nil {
		return nil, &types.StoreError{Op: "list collaborators", Err: err}
	}
	defer rows.Close()

	collabs := []*types.Collaborator{}
	for rows.Next() {
		var c types.Collaborator
		var email, areasJSON, summary sql.NullString

		err := rows.Scan(&c.ID, &c.RepoID, &c.Name, &email, &c.CommitCount,
			&c.AvgScore, &areasJSON, &summary)
		if err != nil {
			return nil, &types.StoreError{Op: "list collaborators", Err: err}
		}

		c.Email = email.String
		c.AreaSummary = summary.String
		if c.PrimaryAreas, err = unmarshalStrings(areasJSON); err != nil {
			return nil, &types.StoreError{Op: "list collaborators", Err: err}
		}
		collabs = append(collabs, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "list collaborators", Err: err}
	}
	return collabs, nil
}
