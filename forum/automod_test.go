package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerateVerdicts(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		status     ModerationStatus
		wantTerm   string
		wantReason string
	}{
		{
			name:   "clean content passes",
			text:   "A thoughtful post about Go generics",
			status: ModerationClean,
		},
		{
			name:       "flagged term",
			text:       "this is spam content",
			status:     ModerationFlagged,
			wantTerm:   "spam",
			wantReason: `contains banned term "spam"`,
		},
		{
			name:     "blocked term",
			text:     "join my crypto giveaway today",
			status:   ModerationBlocked,
			wantTerm: "crypto giveaway",
		},
		{
			name:     "case insensitive match",
			text:     "FREE MONEY for everyone",
			status:   ModerationFlagged,
			wantTerm: "free money",
		},
		{
			name:     "substring inside longer word still trips",
			text:     "the scampering fox",
			status:   ModerationFlagged,
			wantTerm: "scam",
		},
		{
			name:   "too short",
			text:   "ok",
			status: ModerationFlagged,
		},
		{
			name:   "empty string",
			text:   "",
			status: ModerationFlagged,
		},
		{
			name:   "whitespace only",
			text:   "   \n\t ",
			status: ModerationFlagged,
		},
		{
			name:     "deny list wins over length check",
			text:     "spam",
			status:   ModerationFlagged,
			wantTerm: "spam",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Moderate(tc.text)
			assert.Equal(t, tc.status, res.Status)
			if tc.wantTerm != "" {
				assert.Equal(t, tc.wantTerm, res.Term)
			}
			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, res.Reason)
			}
			if tc.status != ModerationClean {
				assert.NotEmpty(t, res.Reason)
				assert.False(t, res.Clean())
			} else {
				assert.True(t, res.Clean())
			}
		})
	}
}

func TestModerateIsDeterministic(t *testing.T) {
	inputs := []string{
		"this is spam content",
		"clean enough text",
		"phishing attempt",
		"x",
	}
	for _, input := range inputs {
		first := Moderate(input)
		second := Moderate(input)
		require.Equal(t, first, second, "verdict changed between calls for %q", input)
	}
}

func TestModerateFirstMatchWins(t *testing.T) {
	// Text contains both a blocked and a flagged term; the deny list is
	// scanned in order, so the blocked entry wins.
	res := Moderate("phishing spam")
	assert.Equal(t, ModerationBlocked, res.Status)
	assert.Equal(t, "phishing", res.Term)
}
