package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commitcritic/critic/internal/types"
)

// PutExemplar inserts an exemplar; a conflict on (repository, commit
// hash) replaces the existing row so re-ingesting the same commit is
// idempotent. Scores below the exemplar threshold and embeddings of the
// wrong dimensionality are rejected with a ValidationError.
func (s *Store) PutExemplar(ctx context.Context, repoID int64, e *types.Exemplar) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, "put exemplar", func(tx *sql.Tx) error {
		if err := repoExists(ctx, tx, repoID); err != nil {
			return err
		}
		var err error
		id, err = putExemplar(ctx, tx, repoID, e)
		return err
	})
	return id, err
}

func putExemplar(ctx context.Context, q dbtx, repoID int64, e *types.Exemplar) (int64, error) {
	var collabID sql.NullInt64
	if e.CollaboratorID != nil {
		collabID = sql.NullInt64{Int64: *e.CollaboratorID, Valid: true}
	}

	var committedAt interface{}
	if !e.CommittedAt.IsZero() {
		committedAt = e.CommittedAt
	}

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO exemplars (
			repo_id, collaborator_id, commit_hash, message, score,
			commit_type, scope, committed_at, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, commit_hash) DO UPDATE SET
			collaborator_id = excluded.collaborator_id,
			message = excluded.message,
			score = excluded.score,
			commit_type = excluded.commit_type,
			scope = excluded.scope,
			committed_at = excluded.committed_at,
			embedding = excluded.embedding
		RETURNING id
	`,
		repoID, collabID, e.CommitHash, e.Message, e.Score,
		nullString(e.CommitType), nullString(e.Scope), committedAt,
		types.EncodeEmbedding(e.Embedding),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert exemplar %s: %w", e.CommitHash, err)
	}

	e.ID = id
	e.RepoID = repoID
	return id, nil
}

// ListExemplars returns a repository's exemplars ordered by score
// descending, then most recent commit first.
func (s *Store) ListExemplars(ctx context.Context, repoID int64) ([]*types.Exemplar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo_id, collaborator_id, commit_hash, message, score,
		       commit_type, scope, committed_at, embedding
		FROM exemplars
		WHERE repo_id = ?
		ORDER BY score DESC, committed_at DESC
	`, repoID)
	if err != nil {
		return nil, &types.StoreError{Op: "list exemplars", Err: err}
	}
	defer rows.Close()

	exemplars := []*types.Exemplar{}
	for rows.Next() {
		var e types.Exemplar
		var collabID sql.NullInt64
		var commitType, scope sql.NullString
		var committedAt sql.NullTime
		var blob []byte

		err := rows.Scan(&e.ID, &e.RepoID, &collabID, &e.CommitHash,
			&e.Message, &e.Score, &commitType, &scope, &committedAt, &blob)
		if err != nil {
			return nil, &types.StoreError{Op: "list exemplars", Err: err}
		}

		if collabID.Valid {
			e.CollaboratorID = &collabID.Int64
		}
		e.CommitType = commitType.String
		e.Scope = scope.String
		if committedAt.Valid {
			e.CommittedAt = committedAt.Time
		}
		if e.Embedding, err = types.DecodeEmbedding(blob); err != nil {
			return nil, &types.StoreError{Op: "list exemplars", Err: err}
		}
		exemplars = append(exemplars, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "list exemplars", Err: err}
	}
	return exemplars, nil
}
