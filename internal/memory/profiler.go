package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/commitcritic/critic/internal/types"
)

// Summarizer produces a one-line description of what a contributor
// works on. It is an optional external collaborator: a nil Summarizer
// simply leaves the area summary empty.
type Summarizer interface {
	Summarize(ctx context.Context, author string, areas []string, recentMessages []string) (string, error)
}

// primaryAreaLimit caps how many path-prefix areas a profile keeps.
const primaryAreaLimit = 3

// BuildProfile aggregates one author's commits and scores into a
// collaborator profile.
func BuildProfile(ctx context.Context, name, email string, commits []*types.Commit, scores []int, summarizer Summarizer) *types.Collaborator {
	c := &types.Collaborator{
		Name:         name,
		Email:        email,
		CommitCount:  len(commits),
		AvgScore:     meanScore(scores),
		PrimaryAreas: DetectAreas(commits, primaryAreaLimit),
	}

	if summarizer != nil && len(c.PrimaryAreas) > 0 {
		recent := make([]string, 0, 5)
		for _, commit := range commits {
			recent = append(recent, commit.Message)
			if len(recent) == 5 {
				break
			}
		}
		summary, err := summarizer.Summarize(ctx, name, c.PrimaryAreas, recent)
		if err != nil {
			// Summaries are decoration; a failed call degrades to empty.
			fmt.Fprintf(os.Stderr, "warning: area summary for %s failed: %v\n", name, err)
		} else {
			c.AreaSummary = strings.TrimSpace(summary)
		}
	}

	return c
}

// meanScore is the exact arithmetic mean of scored commits, 0 if none.
func meanScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// DetectAreas ranks file-path prefixes (first two segments) by touch
// frequency, descending, ties broken lexicographically.
func DetectAreas(commits []*types.Commit, limit int) []string {
	counts := map[string]int{}
	for _, c := range commits {
		for _, p := range c.ChangedPaths {
			area := areaOf(p)
			if area == "" {
				continue
			}
			counts[area]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	areas := make([]string, 0, len(counts))
	for a := range counts {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool {
		if counts[areas[i]] != counts[areas[j]] {
			return counts[areas[i]] > counts[areas[j]]
		}
		return areas[i] < areas[j]
	})
	if len(areas) > limit {
		areas = areas[:limit]
	}
	return areas
}

func areaOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 2 && parts[0] != "" && parts[1] != "":
		return parts[0] + "/" + parts[1]
	case len(parts) == 1 && parts[0] != "":
		return parts[0]
	}
	return ""
}

// Trend labels whether an author's scores are improving, declining, or
// stable, comparing the recent half against the older half. Scores are
// expected most-recent-first, matching commit order from the VCS.
// Fewer than 5 scored commits is not enough signal.
func Trend(scores []int) string {
	if len(scores) < 5 {
		return ""
	}
	mid := len(scores) / 2
	recent := meanScore(scores[:mid])
	older := meanScore(scores[mid:])

	switch diff := recent - older; {
	case diff >= 1.0:
		return "improving"
	case diff <= -1.0:
		return "declining"
	default:
		return "stable"
	}
}
