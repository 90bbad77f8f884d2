package forum

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ModerationStatus classifies a submission before publication.
type ModerationStatus string

const (
	ModerationClean   ModerationStatus = "clean"
	ModerationFlagged ModerationStatus = "flagged"
	ModerationBlocked ModerationStatus = "blocked"
)

// ModerationResult is the transient verdict for one submission attempt.
// Only clean content may be persisted.
type ModerationResult struct {
	Status ModerationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
	Term   string           `json:"term,omitempty"`
}

// Clean reports whether the content may proceed to persistence.
func (r ModerationResult) Clean() bool { return r.Status == ModerationClean }

type denyTerm struct {
	term    string
	verdict ModerationStatus
}

// denyList is the fixed pre-publication screen, checked in order with
// first match wins. Matching is case-insensitive substring search, so a
// banned root inside a longer legitimate word still trips it; that
// imprecision is the documented contract, not an oversight.
var denyList = []denyTerm{
	{"phishing", ModerationBlocked},
	{"credential harvest", ModerationBlocked},
	{"crypto giveaway", ModerationBlocked},
	{"wire me", ModerationBlocked},
	{"spam", ModerationFlagged},
	{"scam", ModerationFlagged},
	{"buy followers", ModerationFlagged},
	{"free money", ModerationFlagged},
	{"click here now", ModerationFlagged},
	{"limited time offer", ModerationFlagged},
}

// minContentRunes is the shortest submission accepted without review.
const minContentRunes = 3

// Moderate screens user-submitted text. It is a pure function of the text
// and the static deny list: no side effects, deterministic. A deny-list hit
// wins over the length check; otherwise anything shorter than
// minContentRunes (including the empty string) comes back flagged.
func Moderate(text string) ModerationResult {
	lowered := strings.ToLower(text)
	for _, entry := range denyList {
		if strings.Contains(lowered, entry.term) {
			return ModerationResult{
				Status: entry.verdict,
				Reason: fmt.Sprintf("contains banned term %q", entry.term),
				Term:   entry.term,
			}
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minContentRunes {
		return ModerationResult{
			Status: ModerationFlagged,
			Reason: fmt.Sprintf("content too short (minimum %d characters)", minContentRunes),
		}
	}

	return ModerationResult{Status: ModerationClean}
}
