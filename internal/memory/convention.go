package memory

import (
	"regexp"
	"sort"
	"strings"

	"github.com/commitcritic/critic/internal/types"
)

// Detection thresholds. These are fixed design constants: the detector's
// output must be reproducible across runs, so they are not configurable.
const (
	conventionalThreshold = 0.5
	scopeThreshold        = 0.3
	ticketThreshold       = 0.1
	emojiThreshold        = 0.2
)

// conventionalTypes is the accepted type vocabulary for conventional
// commit subjects.
var conventionalTypes = map[string]bool{
	"feat": true, "fix": true, "docs": true, "style": true,
	"refactor": true, "test": true, "chore": true, "perf": true,
	"build": true, "ci": true,
}

var (
	// type, optional (scope), colon, description
	conventionalRegex = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?:\s*(.*)$`)

	scopeRegex = regexp.MustCompile(`^\w+\(([^)]+)\):`)

	// :emoji: shortcodes or leading unicode emoji
	emojiRegex = regexp.MustCompile(`^(?::[a-z_]+:|[\x{1F300}-\x{1F9FF}]|[\x{2600}-\x{26FF}]|[\x{2700}-\x{27BF}])`)
)

// ticketCandidates are tried in priority order; the first one whose
// match fraction exceeds ticketThreshold wins, even if a later candidate
// matches more messages.
var ticketCandidates = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"jira", regexp.MustCompile(`^[A-Z]{2,10}-\d+`)},
	{"issue", regexp.MustCompile(`^#\d+`)},
	{"bracketed", regexp.MustCompile(`^\[[A-Z]{2,10}-\d+\]`)},
}

// StyleProfile is the detected message-style facts for a repository.
type StyleProfile struct {
	Pattern       types.StylePattern
	UsesScopes    bool
	CommonScopes  []string // deduplicated, 10 most frequent
	TicketPattern string   // regex source, empty if none qualified
	UsesEmoji     bool
}

// DetectConventions classifies a commit-message corpus (first lines
// only) into a style profile.
func DetectConventions(messages []string) StyleProfile {
	profile := StyleProfile{Pattern: types.StyleFreeform}
	if len(messages) == 0 {
		return profile
	}
	total := float64(len(messages))

	conventional := 0
	emoji := 0
	scopeCounts := map[string]int{}
	scoped := 0

	for _, msg := range messages {
		if isConventional(msg) {
			conventional++
		}
		if m := scopeRegex.FindStringSubmatch(msg); m != nil {
			scoped++
			scopeCounts[strings.ToLower(m[1])]++
		}
		if emojiRegex.MatchString(msg) {
			emoji++
		}
	}

	if float64(conventional)/total > conventionalThreshold {
		profile.Pattern = types.StyleConventional
	}
	profile.UsesScopes = float64(scoped)/total > scopeThreshold
	profile.CommonScopes = topScopes(scopeCounts, 10)
	profile.UsesEmoji = float64(emoji)/total > emojiThreshold

	for _, cand := range ticketCandidates {
		matches := 0
		for _, msg := range messages {
			if cand.pattern.MatchString(msg) {
				matches++
			}
		}
		if float64(matches)/total > ticketThreshold {
			profile.TicketPattern = cand.pattern.String()
			break
		}
	}

	return profile
}

func isConventional(msg string) bool {
	m := conventionalRegex.FindStringSubmatch(msg)
	if m == nil {
		return false
	}
	return conventionalTypes[strings.ToLower(m[1])]
}

// topScopes returns up to n scopes ordered by frequency descending,
// ties broken lexicographically for deterministic output.
func topScopes(counts map[string]int, n int) []string {
	scopes := make([]string, 0, len(counts))
	for s := range counts {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool {
		if counts[scopes[i]] != counts[scopes[j]] {
			return counts[scopes[i]] > counts[scopes[j]]
		}
		return scopes[i] < scopes[j]
	})
	if len(scopes) > n {
		scopes = scopes[:n]
	}
	return scopes
}

// ParseConventional splits a conventional commit subject into type,
// scope, and description. Messages that do not match the vocabulary
// return empty type and scope with the whole message as description.
func ParseConventional(msg string) (commitType, scope, description string) {
	m := conventionalRegex.FindStringSubmatch(msg)
	if m == nil {
		return "", "", msg
	}
	t := strings.ToLower(m[1])
	if !conventionalTypes[t] {
		return "", "", msg
	}
	return t, strings.ToLower(m[2]), strings.TrimSpace(m[3])
}
