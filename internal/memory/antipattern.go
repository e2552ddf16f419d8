package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/commitcritic/critic/internal/types"
)

// wipChainMin is the shortest run of WIP commits worth roasting.
const wipChainMin = 3

// oneWordMin is how many one-word messages an author needs before the
// habit becomes a finding.
const oneWordMin = 3

// vagueMaxLen bounds how short a message must be to count as vague.
const vagueMaxLen = 20

var vagueWords = []string{"fix", "update", "change", "stuff", "thing", "misc"}

// MineAntipatterns detects roast-worthy patterns in one author's
// commits. The three detectors are independent; an author may
// accumulate zero or more findings of each kind.
func MineAntipatterns(commits []*types.Commit) []*types.Antipattern {
	if len(commits) == 0 {
		return nil
	}

	// Detectors walk commits in time order.
	ordered := make([]*types.Commit, len(commits))
	copy(ordered, commits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var findings []*types.Antipattern
	findings = append(findings, findWIPChains(ordered)...)
	if f := findOneWord(ordered); f != nil {
		findings = append(findings, f)
	}
	if f := findVague(ordered); f != nil {
		findings = append(findings, f)
	}
	return findings
}

// findWIPChains records every maximal run of wipChainMin or more
// consecutive-in-time commits whose message starts with "wip".
func findWIPChains(commits []*types.Commit) []*types.Antipattern {
	var findings []*types.Antipattern
	runStart := -1

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		length := end - runStart
		if length >= wipChainMin {
			first := commits[runStart]
			findings = append(findings, &types.Antipattern{
				Kind:      types.AntipatternWIPChain,
				Example:   fmt.Sprintf("%q starting %s", first.Message, first.Timestamp.Format("2006-01-02")),
				Frequency: length,
			})
		}
		runStart = -1
	}

	for i, c := range commits {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Message)), "wip") {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(commits))

	return findings
}

// findOneWord counts single-token messages; three or more become one
// finding with the total count.
func findOneWord(commits []*types.Commit) *types.Antipattern {
	count := 0
	example := ""
	for _, c := range commits {
		if len(strings.Fields(c.Message)) == 1 {
			count++
			if example == "" {
				example = c.Message
			}
		}
	}
	if count < oneWordMin {
		return nil
	}
	return &types.Antipattern{
		Kind:      types.AntipatternOneWord,
		Example:   example,
		Frequency: count,
	}
}

// findVague looks for short messages leaning on vague filler words. The
// single worst example (most vague-word hits) is recorded along with
// the total vague count.
func findVague(commits []*types.Commit) *types.Antipattern {
	total := 0
	worstHits := 0
	worstExample := ""

	for _, c := range commits {
		msg := strings.TrimSpace(c.Message)
		if len(msg) >= vagueMaxLen {
			continue
		}
		lower := strings.ToLower(msg)
		hits := 0
		for _, w := range vagueWords {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		total++
		if hits > worstHits {
			worstHits = hits
			worstExample = c.Message
		}
	}
	if total == 0 {
		return nil
	}
	return &types.Antipattern{
		Kind:      types.AntipatternVague,
		Example:   worstExample,
		Frequency: total,
	}
}
