package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/commitcritic/critic/internal/types"
)

// PutRepository inserts or replaces a repository by canonical identity
// and returns the row ID. A re-seeded repository keeps its ID.
func (s *Store) PutRepository(ctx context.Context, repo *types.Repository) (int64, error) {
	if err := repo.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, "put repository", func(tx *sql.Tx) error {
		var err error
		id, err = putRepository(ctx, tx, repo)
		return err
	})
	return id, err
}

func putRepository(ctx context.Context, q dbtx, repo *types.Repository) (int64, error) {
	languages, err := marshalJSON(repo.Languages, len(repo.Languages) == 0)
	if err != nil {
		return 0, err
	}
	frameworks, err := marshalJSON(repo.Frameworks, len(repo.Frameworks) == 0)
	if err != nil {
		return 0, err
	}
	scopes, err := marshalJSON(repo.CommonScopes, len(repo.CommonScopes) == 0)
	if err != nil {
		return 0, err
	}
	comparisons, err := marshalJSON(repo.ComparisonRepos, len(repo.ComparisonRepos) == 0)
	if err != nil {
		return 0, err
	}

	seededAt := repo.SeededAt
	if seededAt.IsZero() {
		seededAt = time.Now()
	}

	var percentile sql.NullFloat64
	if repo.Percentile != nil {
		percentile = sql.NullFloat64{Float64: *repo.Percentile, Valid: true}
	}

	var id int64
	err = q.QueryRowContext(ctx, `
		INSERT INTO repositories (
			identity, name, seeded_at, primary_language, languages_json,
			frameworks_json, project_type, style_pattern, uses_scopes,
			common_scopes_json, ticket_pattern, uses_emoji,
			comparison_repos_json, industry_percentile
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			name = excluded.name,
			seeded_at = excluded.seeded_at,
			primary_language = excluded.primary_language,
			languages_json = excluded.languages_json,
			frameworks_json = excluded.frameworks_json,
			project_type = excluded.project_type,
			style_pattern = excluded.style_pattern,
			uses_scopes = excluded.uses_scopes,
			common_scopes_json = excluded.common_scopes_json,
			ticket_pattern = excluded.ticket_pattern,
			uses_emoji = excluded.uses_emoji,
			comparison_repos_json = excluded.comparison_repos_json,
			industry_percentile = excluded.industry_percentile
		RETURNING id
	`,
		repo.Identity, repo.Name, seededAt,
		nullString(repo.PrimaryLanguage), languages, frameworks,
		string(repo.ProjectType), string(repo.StylePattern),
		boolToInt(repo.UsesScopes), scopes, nullString(repo.TicketPattern),
		boolToInt(repo.UsesEmoji), comparisons, percentile,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert repository %s: %w", repo.Identity, err)
	}

	repo.ID = id
	return id, nil
}

// GetRepository looks up a repository by canonical identity.
func (s *Store) GetRepository(ctx context.Context, identity string) (*types.Repository, error) {
	return s.getRepository(ctx, `identity = ?`, identity, identity)
}

// GetRepositoryByID looks up a repository by row ID.
func (s *Store) GetRepositoryByID(ctx context.Context, id int64) (*types.Repository, error) {
	return s.getRepository(ctx, `id = ?`, id, fmt.Sprintf("%d", id))
}

func (s *Store) getRepository(ctx context.Context, where string, arg interface{}, key string) (*types.Repository, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identity, name, seeded_at, primary_language, languages_json,
		       frameworks_json, project_type, style_pattern, uses_scopes,
		       common_scopes_json, ticket_pattern, uses_emoji,
		       comparison_repos_json, industry_percentile
		FROM repositories
		WHERE `+where, arg)

	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, &types.NotFoundError{Kind: "repository", Key: key}
	}
	if err != nil {
		return nil, &types.StoreError{Op: "get repository", Err: err}
	}
	return repo, nil
}

// ListRepositories returns every stored repository, most recently seeded
// first.
func (s *Store) ListRepositories(ctx context.Context) ([]*types.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity, name, seeded_at, primary_language, languages_json,
		       frameworks_json, project_type, style_pattern, uses_scopes,
		       common_scopes_json, ticket_pattern, uses_emoji,
		       comparison_repos_json, industry_percentile
		FROM repositories
		ORDER BY seeded_at DESC
	`)
	if err != nil {
		return nil, &types.StoreError{Op: "list repositories", Err: err}
	}
	defer rows.Close()

	repos := []*types.Repository{}
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, &types.StoreError{Op: "list repositories", Err: err}
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "list repositories", Err: err}
	}
	return repos, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRepository(row rowScanner) (*types.Repository, error) {
	var repo types.Repository
	var primaryLang, languagesJSON, frameworksJSON sql.NullString
	var scopesJSON, ticketPattern, comparisonsJSON sql.NullString
	var usesScopes, usesEmoji int
	var percentile sql.NullFloat64

	err := row.Scan(
		&repo.ID, &repo.Identity, &repo.Name, &repo.SeededAt,
		&primaryLang, &languagesJSON, &frameworksJSON,
		&repo.ProjectType, &repo.StylePattern, &usesScopes,
		&scopesJSON, &ticketPattern, &usesEmoji,
		&comparisonsJSON, &percentile,
	)
	if err != nil {
		return nil, err
	}

	repo.PrimaryLanguage = primaryLang.String
	repo.TicketPattern = ticketPattern.String
	repo.UsesScopes = usesScopes != 0
	repo.UsesEmoji = usesEmoji != 0

	if languagesJSON.Valid && languagesJSON.String != "" {
		if err := json.Unmarshal([]byte(languagesJSON.String), &repo.Languages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal languages for %s: %w", repo.Identity, err)
		}
	}
	if repo.Frameworks, err = unmarshalStrings(frameworksJSON); err != nil {
		return nil, err
	}
	if repo.CommonScopes, err = unmarshalStrings(scopesJSON); err != nil {
		return nil, err
	}
	if repo.ComparisonRepos, err = unmarshalStrings(comparisonsJSON); err != nil {
		return nil, err
	}
	if percentile.Valid {
		p := percentile.Float64
		repo.Percentile = &p
	}

	return &repo, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
