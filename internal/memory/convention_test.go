package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/commitcritic/critic/internal/types"
)

func TestDetectConventionsMajorityWins(t *testing.T) {
	// 3 of 5 conventional: 0.6 is over the 0.5 threshold.
	profile := DetectConventions([]string{
		"feat(api): add pagination",
		"fix: null check in parser",
		"chore: bump deps",
		"updated some files",
		"wip",
	})
	assert.Equal(t, types.StyleConventional, profile.Pattern)
}

func TestDetectConventionsExactThresholdIsFreeform(t *testing.T) {
	// Exactly half is not a majority; the threshold is strict.
	profile := DetectConventions([]string{
		"feat: a",
		"fix: b",
		"something",
		"another thing",
	})
	assert.Equal(t, types.StyleFreeform, profile.Pattern)
}

func TestDetectConventionsUnknownTypeDoesNotCount(t *testing.T) {
	profile := DetectConventions([]string{
		"added: new file",
		"removed: old file",
		"changed: config",
	})
	assert.Equal(t, types.StyleFreeform, profile.Pattern, "type vocabulary is closed")
}

func TestDetectConventionsEmpty(t *testing.T) {
	profile := DetectConventions(nil)
	assert.Equal(t, types.StyleFreeform, profile.Pattern)
	assert.False(t, profile.UsesScopes)
}

func TestDetectScopes(t *testing.T) {
	profile := DetectConventions([]string{
		"feat(parser): one",
		"fix(parser): two",
		"feat(cli): three",
		"docs: no scope",
		"refactor: also none",
	})
	assert.True(t, profile.UsesScopes, "3/5 scoped is over the 0.3 threshold")
	assert.Equal(t, []string{"parser", "cli"}, profile.CommonScopes, "frequency order, lexicographic ties")
}

func TestDetectTicketPatternPriority(t *testing.T) {
	// Both the Jira and issue-number patterns clear the 0.1 threshold;
	// the earlier candidate wins regardless of counts.
	profile := DetectConventions([]string{
		"PROJ-12 fix login",
		"#44 tweak styles",
		"#45 more styles",
		"#46 even more styles",
		"random message",
	})
	assert.Equal(t, `^[A-Z]{2,10}-\d+`, profile.TicketPattern)
}

func TestDetectTicketPatternNoneQualifies(t *testing.T) {
	profile := DetectConventions([]string{
		"fix login flow",
		"add tests",
		"PROJ-1 lone ticket ref among many",
		"more work", "even more", "and more", "yet more", "still more", "nearly done", "done",
		"extra1", "extra2",
	})
	assert.Empty(t, profile.TicketPattern, "1/12 is under the 0.1 threshold")
}

func TestDetectEmoji(t *testing.T) {
	profile := DetectConventions([]string{
		":sparkles: add feature",
		"🐛 fix bug",
		"plain message",
		"another plain one",
	})
	assert.True(t, profile.UsesEmoji, "2/4 is over the 0.2 threshold")

	profile = DetectConventions([]string{
		":tada: initial commit",
		"a", "b", "c", "d", "e",
	})
	assert.False(t, profile.UsesEmoji)
}

func TestParseConventional(t *testing.T) {
	tests := []struct {
		msg         string
		wantType    string
		wantScope   string
		wantDesc    string
	}{
		{"feat(parser): handle escapes", "feat", "parser", "handle escapes"},
		{"fix: null check", "fix", "", "null check"},
		{"FEAT(API): case folded", "feat", "api", "case folded"},
		{"added: not in vocabulary", "", "", "added: not in vocabulary"},
		{"plain message", "", "", "plain message"},
	}
	for _, tt := range tests {
		gotType, gotScope, gotDesc := ParseConventional(tt.msg)
		assert.Equal(t, tt.wantType, gotType, tt.msg)
		assert.Equal(t, tt.wantScope, gotScope, tt.msg)
		assert.Equal(t, tt.wantDesc, gotDesc, tt.msg)
	}
}
