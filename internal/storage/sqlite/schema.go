package sqlite

const schema = `
-- Repository metadata and learned patterns
CREATE TABLE IF NOT EXISTS repositories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    identity TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    seeded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    primary_language TEXT,
    languages_json TEXT,
    frameworks_json TEXT,
    project_type TEXT NOT NULL DEFAULT 'unknown',

    style_pattern TEXT NOT NULL DEFAULT 'freeform',
    uses_scopes INTEGER NOT NULL DEFAULT 0,
    common_scopes_json TEXT,
    ticket_pattern TEXT,
    uses_emoji INTEGER NOT NULL DEFAULT 0,

    comparison_repos_json TEXT,
    industry_percentile REAL
);

-- Contributor profiles, one row per (repository, author)
CREATE TABLE IF NOT EXISTS collaborators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    email TEXT,

    commit_count INTEGER NOT NULL DEFAULT 0,
    avg_score REAL NOT NULL DEFAULT 0,
    primary_areas_json TEXT,
    area_summary TEXT,

    UNIQUE(repo_id, name)
);

-- High-quality commit exemplars with embeddings
CREATE TABLE IF NOT EXISTS exemplars (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
    collaborator_id INTEGER REFERENCES collaborators(id) ON DELETE SET NULL,

    commit_hash TEXT NOT NULL,
    message TEXT NOT NULL,
    score INTEGER NOT NULL CHECK(score >= 8 AND score <= 10),
    commit_type TEXT,
    scope TEXT,
    committed_at DATETIME,

    embedding BLOB,

    UNIQUE(repo_id, commit_hash)
);

-- Roast findings, append-only evidence
CREATE TABLE IF NOT EXISTS antipatterns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
    collaborator_id INTEGER REFERENCES collaborators(id) ON DELETE SET NULL,

    kind TEXT NOT NULL,
    example TEXT,
    frequency INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_collaborators_repo ON collaborators(repo_id);
CREATE INDEX IF NOT EXISTS idx_exemplars_repo ON exemplars(repo_id);
CREATE INDEX IF NOT EXISTS idx_exemplars_score ON exemplars(score DESC);
CREATE INDEX IF NOT EXISTS idx_antipatterns_repo ON antipatterns(repo_id);
CREATE INDEX IF NOT EXISTS idx_antipatterns_collab ON antipatterns(collaborator_id);
`
