// Package prompt decides when the pet may interrupt the user to confirm
// a suggested category, and picks the wording it asks with.
package prompt

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// ShouldPrompt reports whether the user should be asked to confirm the
// tab's suggested category. Checks run in order and all must pass:
// prompting enabled, domain not muted, domain never prompted before
// (lifetime-once, ahead of any rate limit), daily limit not reached,
// hourly throttle clear, no auto-apply rule for the domain, and the
// tab's confidence sitting in the ambiguous (0.5, 0.9) band.
//
// The hourly throttle carries a quirk inherited from the original
// extension: once an hour has passed since the last prompt, the daily
// counter is reset to zero as a side effect of this check, making the
// daily limit effectively hourly. Kept as-is.
func ShouldPrompt(tab *types.Tab, settings types.CategorizationSettings, state *types.CategorizationState, now time.Time) bool {
	if !settings.Enabled {
		return false
	}

	for _, d := range settings.MutedDomains {
		if d == tab.Domain {
			return false
		}
	}

	for _, d := range state.PromptedDomains {
		if d == tab.Domain {
			return false
		}
	}

	if state.PromptsShownToday >= state.DailyLimit {
		return false
	}

	if !state.LastPromptAt.IsZero() {
		sinceLast := now.Sub(state.LastPromptAt)
		if sinceLast < time.Hour && state.PromptsShownToday >= settings.MaxPromptsPerHour {
			return false
		}
		if sinceLast >= time.Hour {
			state.PromptsShownToday = 0
		}
	}

	for _, rule := range state.DomainRules {
		if nests.RuleMatches(rule, tab.Domain) && rule.AutoApply {
			return false
		}
	}

	return tab.CategoryConfidence > 0.5 && tab.CategoryConfidence < 0.9
}

// promptTemplates take the lowercased and plain category name in turn.
var promptTemplates = []string{
	"This looks like a %[1]s tab. Should I file it in your %[2]s Nest?",
	"I think this belongs in %[2]s. Want me to organize it?",
	"This seems like %[1]s to me. Should I add it there?",
	"Is this a %[1]s tab? I can organize it for you!",
}

// Message generates the pet's confirmation question for a suggested
// category. The rand source is injected so callers can seed it.
func Message(categoryID types.CategoryID, rng *rand.Rand) string {
	name := nests.ByID(categoryID).Name
	tmpl := promptTemplates[rng.Intn(len(promptTemplates))]
	return fmt.Sprintf(tmpl, strings.ToLower(name), name)
}
