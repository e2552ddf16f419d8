package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

// SaveSeed persists a complete ingestion run in one transaction. Prior
// rows for the repository identity are replaced wholesale; any failure
// rolls the whole run back so a cancelled seed is invisible.
func (s *Store) SaveSeed(ctx context.Context, snap *storage.SeedSnapshot) (int64, error) {
	if snap == nil || snap.Repository == nil {
		return 0, &types.ValidationError{Field: "repository", Reason: "seed snapshot requires a repository"}
	}
	if err := snap.Repository.Validate(); err != nil {
		return 0, err
	}
	for _, cs := range snap.Collaborators {
		if err := cs.Collaborator.Validate(); err != nil {
			return 0, err
		}
		for _, e := range cs.Exemplars {
			if err := e.Validate(); err != nil {
				return 0, err
			}
		}
		for _, a := range cs.Antipatterns {
			if err := a.Validate(); err != nil {
				return 0, err
			}
		}
	}

	var repoID int64
	err := s.inTx(ctx, "save seed", func(tx *sql.Tx) error {
		// Drop any prior rows for this identity so a re-seed replaces,
		// never accumulates. The upsert would keep the repository row
		// current but child rows from removed authors would linger.
		var oldID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM repositories WHERE identity = ?`, snap.Repository.Identity,
		).Scan(&oldID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to look up prior seed: %w", err)
		}
		if err == nil {
			for _, stmt := range []string{
				`DELETE FROM antipatterns WHERE repo_id = ?`,
				`DELETE FROM exemplars WHERE repo_id = ?`,
				`DELETE FROM collaborators WHERE repo_id = ?`,
			} {
				if _, err := tx.ExecContext(ctx, stmt, oldID); err != nil {
					return fmt.Errorf("failed to clear prior seed: %w", err)
				}
			}
		}

		repoID, err = putRepository(ctx, tx, snap.Repository)
		if err != nil {
			return err
		}

		for _, cs := range snap.Collaborators {
			collabID, err := putCollaborator(ctx, tx, repoID, cs.Collaborator)
			if err != nil {
				return err
			}
			for _, e := range cs.Exemplars {
				e.CollaboratorID = &collabID
				if _, err := putExemplar(ctx, tx, repoID, e); err != nil {
					return err
				}
			}
			for _, a := range cs.Antipatterns {
				a.CollaboratorID = &collabID
				if _, err := addAntipattern(ctx, tx, repoID, a); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return repoID, nil
}
