package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitcritic/critic/internal/types"
)

func commitAt(msg string, hour int) *types.Commit {
	return &types.Commit{
		Hash:      "hash" + msg,
		Message:   msg,
		Timestamp: time.Date(2025, 5, 1, hour, 0, 0, 0, time.UTC),
	}
}

func findingsOfKind(findings []*types.Antipattern, kind types.AntipatternKind) []*types.Antipattern {
	var out []*types.Antipattern
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestWIPChainDetection(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("wip", 1),
		commitAt("WIP more", 2),
		commitAt("wip again", 3),
		commitAt("feat: real work", 4),
	})

	chains := findingsOfKind(findings, types.AntipatternWIPChain)
	require.Len(t, chains, 1)
	assert.Equal(t, 3, chains[0].Frequency)
	assert.Contains(t, chains[0].Example, `"wip"`)
	assert.Contains(t, chains[0].Example, "2025-05-01")
}

func TestWIPChainTooShort(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("wip", 1),
		commitAt("wip 2", 2),
		commitAt("feat: interruption", 3),
		commitAt("wip 3", 4),
	})
	assert.Empty(t, findingsOfKind(findings, types.AntipatternWIPChain),
		"runs under 3 are not chains, and interruptions reset the run")
}

func TestWIPChainsAreMaximalRuns(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("wip a", 1), commitAt("wip b", 2), commitAt("wip c", 3), commitAt("wip d", 4),
		commitAt("fix: break", 5),
		commitAt("wip e", 6), commitAt("wip f", 7), commitAt("wip g", 8),
	})

	chains := findingsOfKind(findings, types.AntipatternWIPChain)
	require.Len(t, chains, 2)
	assert.Equal(t, 4, chains[0].Frequency)
	assert.Equal(t, 3, chains[1].Frequency)
}

func TestWIPChainUsesTimeOrder(t *testing.T) {
	// Out of order input still forms one consecutive-in-time chain.
	findings := MineAntipatterns([]*types.Commit{
		commitAt("wip late", 3),
		commitAt("wip early", 1),
		commitAt("wip middle", 2),
	})
	chains := findingsOfKind(findings, types.AntipatternWIPChain)
	require.Len(t, chains, 1)
	assert.Contains(t, chains[0].Example, "wip early")
}

func TestOneWordDetection(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("fix", 1),
		commitAt("feat: proper message here", 2),
		commitAt("update", 3),
		commitAt("stuff", 4),
	})

	oneWord := findingsOfKind(findings, types.AntipatternOneWord)
	require.Len(t, oneWord, 1)
	assert.Equal(t, 3, oneWord[0].Frequency)
	assert.Equal(t, "fix", oneWord[0].Example, "first occurrence in time order")
}

func TestOneWordBelowMinimum(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("fix", 1),
		commitAt("update", 2),
		commitAt("feat: fine", 3),
	})
	assert.Empty(t, findingsOfKind(findings, types.AntipatternOneWord))
}

func TestVagueDetection(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("fix stuff", 1),         // two vague words
		commitAt("update thing", 2),      // two vague words
		commitAt("misc", 3),              // one vague word
		commitAt("feat: detailed parser rework with tests", 4), // long, ignored
	})

	vague := findingsOfKind(findings, types.AntipatternVague)
	require.Len(t, vague, 1)
	assert.Equal(t, 3, vague[0].Frequency, "total vague messages")
	assert.Equal(t, "fix stuff", vague[0].Example, "worst example has the most hits; first wins ties")
}

func TestVagueLengthBound(t *testing.T) {
	findings := MineAntipatterns([]*types.Commit{
		commitAt("fix the thing where the login breaks", 1),
		commitAt("update all the dependency versions", 2),
		commitAt("feat: ok", 3),
	})
	assert.Empty(t, findingsOfKind(findings, types.AntipatternVague),
		"messages at or over 20 chars are not length-vague")
}

func TestMineAntipatternsEmpty(t *testing.T) {
	assert.Nil(t, MineAntipatterns(nil))
}
