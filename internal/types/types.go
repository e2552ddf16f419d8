package types

import (
	"fmt"
	"math"
	"time"
)

// EmbeddingDim is the dimensionality of exemplar embedding vectors.
// It matches text-embedding-3-small; the store rejects vectors of any
// other length so the similarity index never mixes dimensionalities.
const EmbeddingDim = 1536

// ExemplarMinScore is the lowest commit score worth remembering.
// Commits below this are still profiled but never stored as exemplars.
const ExemplarMinScore = 8

// Repository holds everything learned about one analyzed project.
type Repository struct {
	ID              int64              `json:"id"`
	Identity        string             `json:"identity"` // canonical URL or absolute local path
	Name            string             `json:"name"`
	SeededAt        time.Time          `json:"seeded_at"`
	PrimaryLanguage string             `json:"primary_language,omitempty"`
	Languages       map[string]float64 `json:"languages,omitempty"` // language -> fraction, sums to ~1.0
	Frameworks      []string           `json:"frameworks,omitempty"`
	ProjectType     ProjectType        `json:"project_type"`
	StylePattern    StylePattern       `json:"style_pattern"`
	UsesScopes      bool               `json:"uses_scopes"`
	CommonScopes    []string           `json:"common_scopes,omitempty"` // at most 10, by frequency
	TicketPattern   string             `json:"ticket_pattern,omitempty"`
	UsesEmoji       bool               `json:"uses_emoji"`
	ComparisonRepos []string           `json:"comparison_repos,omitempty"`
	Percentile      *float64           `json:"industry_percentile,omitempty"` // 0..1, absent until computed
}

// languageSumTolerance is the allowed drift when language fractions are
// validated against 1.0.
const languageSumTolerance = 0.01

// Validate checks the repository fields before a store write.
func (r *Repository) Validate() error {
	if r.Identity == "" {
		return &ValidationError{Field: "identity", Reason: "identity is required"}
	}
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(r.Languages) > 0 {
		var sum float64
		for lang, frac := range r.Languages {
			if frac < 0 {
				return &ValidationError{Field: "languages", Reason: fmt.Sprintf("fraction for %s is negative", lang)}
			}
			sum += frac
		}
		if math.Abs(sum-1.0) > languageSumTolerance {
			return &ValidationError{Field: "languages", Reason: fmt.Sprintf("fractions sum to %.4f, expected 1.0", sum)}
		}
	}
	if len(r.CommonScopes) > 10 {
		return &ValidationError{Field: "common_scopes", Reason: fmt.Sprintf("at most 10 scopes allowed (got %d)", len(r.CommonScopes))}
	}
	if r.Percentile != nil && (*r.Percentile < 0 || *r.Percentile > 1) {
		return &ValidationError{Field: "industry_percentile", Reason: fmt.Sprintf("must be in [0,1] (got %g)", *r.Percentile)}
	}
	if !r.StylePattern.IsValid() {
		return &ValidationError{Field: "style_pattern", Reason: fmt.Sprintf("invalid style pattern: %s", r.StylePattern)}
	}
	if !r.ProjectType.IsValid() {
		return &ValidationError{Field: "project_type", Reason: fmt.Sprintf("invalid project type: %s", r.ProjectType)}
	}
	return nil
}

// Collaborator is one author's profile within a repository.
type Collaborator struct {
	ID           int64    `json:"id"`
	RepoID       int64    `json:"repo_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	CommitCount  int      `json:"commit_count"`
	AvgScore     float64  `json:"avg_score"` // mean of scored commits, 0 if none scored
	PrimaryAreas []string `json:"primary_areas,omitempty"`
	AreaSummary  string   `json:"area_summary,omitempty"`
}

// Validate checks the collaborator fields before a store write.
func (c *Collaborator) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if c.CommitCount < 0 {
		return &ValidationError{Field: "commit_count", Reason: fmt.Sprintf("cannot be negative (got %d)", c.CommitCount)}
	}
	if c.AvgScore < 0 || c.AvgScore > 10 {
		return &ValidationError{Field: "avg_score", Reason: fmt.Sprintf("must be in [0,10] (got %g)", c.AvgScore)}
	}
	return nil
}

// Exemplar is a stored high-quality commit message with its embedding,
// used for few-shot retrieval.
type Exemplar struct {
	ID             int64     `json:"id"`
	RepoID         int64     `json:"repo_id"`
	CollaboratorID *int64    `json:"collaborator_id,omitempty"`
	CommitHash     string    `json:"commit_hash"`
	Message        string    `json:"message"`
	Score          int       `json:"score"` // 8..10 enforced at write time
	CommitType     string    `json:"commit_type,omitempty"`
	Scope          string    `json:"scope,omitempty"`
	CommittedAt    time.Time `json:"committed_at"`
	Embedding      []float32 `json:"-"`
}

// Validate checks the exemplar fields before a store write.
// Scores below ExemplarMinScore are rejected, never clamped.
func (e *Exemplar) Validate() error {
	if e.CommitHash == "" {
		return &ValidationError{Field: "commit_hash", Reason: "commit hash is required"}
	}
	if e.Message == "" {
		return &ValidationError{Field: "message", Reason: "message is required"}
	}
	if e.Score < ExemplarMinScore || e.Score > 10 {
		return &ValidationError{Field: "score", Reason: fmt.Sprintf("must be in [%d,10] (got %d)", ExemplarMinScore, e.Score)}
	}
	if len(e.Embedding) != 0 && len(e.Embedding) != EmbeddingDim {
		return &ValidationError{Field: "embedding", Reason: fmt.Sprintf("expected %d dimensions (got %d)", EmbeddingDim, len(e.Embedding))}
	}
	return nil
}

// Antipattern is one roast-worthy finding, scoped to a repository and
// optionally to a collaborator. Findings are append-only evidence; the
// miner never reconciles old rows.
type Antipattern struct {
	ID             int64           `json:"id"`
	RepoID         int64           `json:"repo_id"`
	CollaboratorID *int64          `json:"collaborator_id,omitempty"`
	Kind           AntipatternKind `json:"kind"`
	Example        string          `json:"example,omitempty"`
	Frequency      int             `json:"frequency"`
}

// Validate checks the antipattern fields before a store write.
func (a *Antipattern) Validate() error {
	if a.Kind == "" {
		return &ValidationError{Field: "kind", Reason: "pattern kind is required"}
	}
	if a.Frequency < 1 {
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("must be >= 1 (got %d)", a.Frequency)}
	}
	return nil
}

// StylePattern is the detected commit message style for a repository.
type StylePattern string

const (
	StyleConventional StylePattern = "conventional"
	StyleFreeform     StylePattern = "freeform"
)

// IsValid checks if the style pattern value is valid.
func (s StylePattern) IsValid() bool {
	switch s {
	case StyleConventional, StyleFreeform:
		return true
	}
	return false
}

// ProjectType tags what kind of project a repository is.
type ProjectType string

const (
	ProjectCLITool      ProjectType = "cli-tool"
	ProjectWebApp       ProjectType = "web-app"
	ProjectWebFramework ProjectType = "web-framework"
	ProjectLibrary      ProjectType = "library"
	ProjectAPIService   ProjectType = "api-service"
	ProjectMobileApp    ProjectType = "mobile-app"
	ProjectDataPipeline ProjectType = "data-pipeline"
	ProjectUnknown      ProjectType = "unknown"
)

// IsValid checks if the project type value is valid.
func (p ProjectType) IsValid() bool {
	switch p {
	case ProjectCLITool, ProjectWebApp, ProjectWebFramework, ProjectLibrary,
		ProjectAPIService, ProjectMobileApp, ProjectDataPipeline, ProjectUnknown:
		return true
	}
	return false
}

// AntipatternKind names a detected negative pattern.
type AntipatternKind string

const (
	AntipatternWIPChain AntipatternKind = "wip-chain"
	AntipatternOneWord  AntipatternKind = "one-word"
	AntipatternVague    AntipatternKind = "vague"
)

// Commit is one commit as fetched from the VCS adapter, already validated
// into a strict form at the boundary.
type Commit struct {
	Hash         string    `json:"hash"`
	Message      string    `json:"message"` // first line of the commit message
	Author       string    `json:"author"`
	Email        string    `json:"email,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	ChangedPaths []string  `json:"changed_paths,omitempty"`
}

// ShortHash returns the abbreviated commit hash for display.
func (c *Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Diff describes staged changes for the write flow.
type Diff struct {
	Files     []string `json:"files"`
	Additions int      `json:"additions"`
	Deletions int      `json:"deletions"`
	Text      string   `json:"text"`
}
