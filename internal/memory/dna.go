package memory

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/commitcritic/critic/internal/types"
)

// languageExtensions maps file extensions to language names for the
// changed-path census.
var languageExtensions = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".rs":    "Rust",
	".java":  "Java",
	".kt":    "Kotlin",
	".swift": "Swift",
	".rb":    "Ruby",
	".php":   "PHP",
	".c":     "C",
	".h":     "C/C++",
	".cpp":   "C++",
	".cs":    "C#",
	".scala": "Scala",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".hs":    "Haskell",
	".lua":   "Lua",
	".sql":   "SQL",
	".sh":    "Shell",
	".bash":  "Shell",
	".yml":   "YAML",
	".yaml":  "YAML",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".md":    "Markdown",
}

// frameworkHints maps build files to the frameworks worth looking for
// inside them.
var frameworkHints = map[string][]string{
	"go.mod":           {"gin", "echo", "fiber", "chi", "cobra"},
	"package.json":     {"react", "vue", "angular", "next", "express", "nest"},
	"Cargo.toml":       {"tokio", "actix", "rocket", "axum"},
	"pyproject.toml":   {"fastapi", "django", "flask", "typer", "pydantic"},
	"requirements.txt": {"fastapi", "django", "flask", "typer", "pydantic"},
	"Gemfile":          {"rails", "sinatra"},
}

// DNA is the detected characteristics of a codebase.
type DNA struct {
	PrimaryLanguage string
	Languages       map[string]float64 // language -> fraction, sums to 1.0
	Frameworks      []string
	ProjectType     types.ProjectType
}

// ExtractDNA analyzes commits (and optionally the checked-out tree at
// repoPath) to detect languages, frameworks, and a project-type tag.
func ExtractDNA(commits []*types.Commit, repoPath string) *DNA {
	dna := &DNA{
		Languages:   detectLanguages(commits),
		ProjectType: types.ProjectUnknown,
	}

	primary := ""
	best := 0.0
	for lang, frac := range dna.Languages {
		if frac > best || (frac == best && lang < primary) {
			primary = lang
			best = frac
		}
	}
	dna.PrimaryLanguage = primary

	if repoPath != "" {
		dna.Frameworks = detectFrameworks(repoPath)
	}
	dna.ProjectType = classifyProject(dna.PrimaryLanguage, dna.Frameworks)

	return dna
}

// detectLanguages builds a language distribution from changed-file
// extensions. Fractions are normalized to sum to exactly 1.0; languages
// below 1% of touches are dropped before normalizing.
func detectLanguages(commits []*types.Commit) map[string]float64 {
	counts := map[string]int{}
	total := 0
	for _, c := range commits {
		for _, p := range c.ChangedPaths {
			lang, ok := languageExtensions[strings.ToLower(filepath.Ext(p))]
			if !ok {
				continue
			}
			counts[lang]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	kept := map[string]int{}
	keptTotal := 0
	for lang, n := range counts {
		if float64(n)/float64(total) >= 0.01 {
			kept[lang] = n
			keptTotal += n
		}
	}
	if keptTotal == 0 {
		return nil
	}

	fractions := make(map[string]float64, len(kept))
	for lang, n := range kept {
		fractions[lang] = round4(float64(n) / float64(keptTotal))
	}

	// Rounding can drift the sum off 1.0; settle the residue on the
	// largest entry so the store's sum check always passes.
	var sum float64
	largest := ""
	for lang, f := range fractions {
		sum += f
		if largest == "" || f > fractions[largest] || (f == fractions[largest] && lang < largest) {
			largest = lang
		}
	}
	fractions[largest] = round4(fractions[largest] + (1.0 - sum))

	return fractions
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// detectFrameworks greps build files for known framework names.
func detectFrameworks(repoPath string) []string {
	found := map[string]bool{}
	for file, frameworks := range frameworkHints {
		data, err := os.ReadFile(filepath.Join(repoPath, file))
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for _, fw := range frameworks {
			if strings.Contains(content, fw) {
				found[fw] = true
			}
		}
	}
	if len(found) == 0 {
		return nil
	}

	names := make([]string, 0, len(found))
	for fw := range found {
		names = append(names, fw)
	}
	sort.Strings(names)
	return names
}

// classifyProject tags the project type from framework and language
// signals. This is a deterministic heuristic, good enough to pick a
// reference set for the market comparison.
func classifyProject(primaryLanguage string, frameworks []string) types.ProjectType {
	has := func(names ...string) bool {
		for _, fw := range frameworks {
			for _, n := range names {
				if fw == n {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("django", "rails", "fastapi", "flask", "gin", "echo", "fiber", "chi", "actix", "rocket", "axum", "express", "nest", "sinatra"):
		return types.ProjectAPIService
	case has("react", "vue", "angular", "next"):
		return types.ProjectWebApp
	case has("cobra", "typer"):
		return types.ProjectCLITool
	case primaryLanguage == "":
		return types.ProjectUnknown
	default:
		return types.ProjectLibrary
	}
}
