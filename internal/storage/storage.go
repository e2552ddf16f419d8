// Package storage defines the persistence contract for commit-quality
// memory. Components receive a Store handle explicitly; there is no
// ambient global state.
package storage

import (
	"context"

	"github.com/commitcritic/critic/internal/types"
)

// Store is the interface for memory storage backends.
//
// Every mutating call runs inside a single transaction: a crash or
// cancellation mid-write leaves the prior committed state intact. Read
// queries return empty slices, never nil, when nothing matches.
type Store interface {
	// Repositories
	PutRepository(ctx context.Context, repo *types.Repository) (int64, error)
	GetRepository(ctx context.Context, identity string) (*types.Repository, error)
	GetRepositoryByID(ctx context.Context, id int64) (*types.Repository, error)
	ListRepositories(ctx context.Context) ([]*types.Repository, error)

	// Collaborators
	PutCollaborator(ctx context.Context, repoID int64, c *types.Collaborator) (int64, error)
	ListCollaborators(ctx context.Context, repoID int64) ([]*types.Collaborator, error)

	// Exemplars
	PutExemplar(ctx context.Context, repoID int64, e *types.Exemplar) (int64, error)
	ListExemplars(ctx context.Context, repoID int64) ([]*types.Exemplar, error)

	// Antipatterns (append-only)
	AddAntipattern(ctx context.Context, repoID int64, a *types.Antipattern) (int64, error)
	ListAntipatterns(ctx context.Context, repoID int64, collaboratorID *int64) ([]*types.Antipattern, error)

	// SaveSeed persists a whole ingestion run atomically: prior rows for
	// the repository identity are replaced, and a failure anywhere rolls
	// the entire run back.
	SaveSeed(ctx context.Context, snap *SeedSnapshot) (int64, error)

	// Clear deletes every row scoped to repoID across all tables,
	// atomically. Clearing an unknown repository is not an error.
	Clear(ctx context.Context, repoID int64) error

	// Stats summarizes row counts for the status display.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// SeedSnapshot is the full output of one ingestion run, persisted in a
// single transaction by SaveSeed.
type SeedSnapshot struct {
	Repository    *types.Repository
	Collaborators []*CollaboratorSeed
}

// CollaboratorSeed groups one author's profile with the exemplars and
// findings attributed to them.
type CollaboratorSeed struct {
	Collaborator *types.Collaborator
	Exemplars    []*types.Exemplar
	Antipatterns []*types.Antipattern
}

// Stats holds overall row counts.
type Stats struct {
	Repositories  int `json:"repositories"`
	Collaborators int `json:"collaborators"`
	Exemplars     int `json:"exemplars"`
	Antipatterns  int `json:"antipatterns"`
}
