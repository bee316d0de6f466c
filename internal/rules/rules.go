// Package rules mutates the categorization state: learned domain rules,
// the muted-domain list and prompt bookkeeping. All functions operate on
// an explicit state value; persisting the result is the caller's job.
package rules

import (
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

const (
	// NewRuleConfidence is the starting confidence of a rule created by
	// a user confirmation.
	NewRuleConfidence = 0.7
	// AutoApplyThreshold is the confidence at which a rule starts
	// applying silently. Once set, auto-apply is never revoked.
	AutoApplyThreshold = 0.8

	confirmDelta = 0.2
	denyDelta    = 0.3
)

// DefaultSettings mirrors the extension's first-run policy.
func DefaultSettings() types.CategorizationSettings {
	return types.CategorizationSettings{
		Enabled:           true,
		MaxPromptsPerHour: 5,
	}
}

// DefaultState returns the empty categorization state with the stock
// daily prompt limit.
func DefaultState() types.CategorizationState {
	return types.CategorizationState{
		DailyLimit: 20,
	}
}

// AddRule inserts a rule, replacing any existing rule for the same
// domain. Last write wins; there is no merging.
func AddRule(state *types.CategorizationState, rule types.DomainRule) {
	kept := state.DomainRules[:0]
	for _, r := range state.DomainRules {
		if r.Domain != rule.Domain {
			kept = append(kept, r)
		}
	}
	state.DomainRules = append(kept, rule)
}

// Reinforce adjusts the rule for a domain after a user verdict.
//
// A confirmation raises confidence by 0.2 (capped at 1.0), a denial
// lowers it by 0.3 (floored at 0). Denials bite harder than
// confirmations build, keeping auto-application conservative. Crossing
// the 0.8 threshold sets auto-apply; a later drop never clears it.
// Confirming a domain with no matching rule creates one at 0.7; denying
// one is a no-op.
func Reinforce(state *types.CategorizationState, domain string, category types.CategoryID, confirmed bool, now time.Time) {
	for i := range state.DomainRules {
		rule := &state.DomainRules[i]
		if rule.Domain != domain || rule.CategoryID != category {
			continue
		}
		if confirmed {
			rule.Confidence += confirmDelta
			if rule.Confidence > 1.0 {
				rule.Confidence = 1.0
			}
		} else {
			rule.Confidence -= denyDelta
			if rule.Confidence < 0 {
				rule.Confidence = 0
			}
		}
		if rule.Confidence >= AutoApplyThreshold {
			rule.AutoApply = true
		}
		return
	}

	if confirmed {
		AddRule(state, types.DomainRule{
			Domain:     domain,
			CategoryID: category,
			CreatedAt:  now,
			Confidence: NewRuleConfidence,
		})
	}
}

// RecordPrompt bumps the prompt counters and remembers the domain so it
// is never prompted again.
func RecordPrompt(state *types.CategorizationState, domain string, now time.Time) {
	state.PromptsShownToday++
	state.LastPromptAt = now

	if domain == "" {
		return
	}
	for _, d := range state.PromptedDomains {
		if d == domain {
			return
		}
	}
	state.PromptedDomains = append(state.PromptedDomains, domain)
}

// MuteDomain adds a domain to the never-ask list. Idempotent.
func MuteDomain(settings *types.CategorizationSettings, domain string) {
	for _, d := range settings.MutedDomains {
		if d == domain {
			return
		}
	}
	settings.MutedDomains = append(settings.MutedDomains, domain)
}
