package rules

import (
	"math"
	"testing"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddRuleReplacesExisting(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.7})
	AddRule(&state, types.DomainRule{Domain: "b.com", CategoryID: types.CatPersonal, Confidence: 0.7})
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatSchool, Confidence: 0.9})

	if len(state.DomainRules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(state.DomainRules))
	}
	var found *types.DomainRule
	for i := range state.DomainRules {
		if state.DomainRules[i].Domain == "a.com" {
			found = &state.DomainRules[i]
		}
	}
	if found == nil {
		t.Fatal("rule for a.com missing")
	}
	if found.CategoryID != types.CatSchool || found.Confidence != 0.9 {
		t.Errorf("last write should win: got %s/%v", found.CategoryID, found.Confidence)
	}
}

func TestReinforceConfirm(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.75})

	Reinforce(&state, "a.com", types.CatWork, true, time.Now())

	rule := state.DomainRules[0]
	if !almostEqual(rule.Confidence, 0.95) {
		t.Errorf("confidence = %v, want 0.95", rule.Confidence)
	}
	if !rule.AutoApply {
		t.Error("crossing 0.8 should set auto-apply")
	}
}

func TestReinforceDenyFloorsAtZero(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.3})

	Reinforce(&state, "a.com", types.CatWork, false, time.Now())

	if got := state.DomainRules[0].Confidence; got != 0 {
		t.Errorf("confidence = %v, want 0 (floored)", got)
	}
}

func TestReinforceSaturatesAtOne(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.7})

	now := time.Now()
	for i := 0; i < 10; i++ {
		Reinforce(&state, "a.com", types.CatWork, true, now)
	}

	if got := state.DomainRules[0].Confidence; got != 1.0 {
		t.Errorf("confidence = %v, want saturation at 1.0", got)
	}
}

func TestReinforceAutoApplySticky(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.7})
	now := time.Now()

	Reinforce(&state, "a.com", types.CatWork, true, now) // 0.9, auto-apply on
	if !state.DomainRules[0].AutoApply {
		t.Fatal("auto-apply should be set at 0.9")
	}

	Reinforce(&state, "a.com", types.CatWork, false, now) // 0.6
	Reinforce(&state, "a.com", types.CatWork, false, now) // 0.3

	rule := state.DomainRules[0]
	if !almostEqual(rule.Confidence, 0.3) {
		t.Errorf("confidence = %v, want 0.3", rule.Confidence)
	}
	if !rule.AutoApply {
		t.Error("auto-apply must stay set after confidence drops below 0.8")
	}
}

func TestReinforceCreatesRuleOnConfirm(t *testing.T) {
	state := DefaultState()
	now := time.Now()

	Reinforce(&state, "new.com", types.CatResearch, true, now)

	if len(state.DomainRules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(state.DomainRules))
	}
	rule := state.DomainRules[0]
	if rule.Confidence != NewRuleConfidence {
		t.Errorf("confidence = %v, want %v", rule.Confidence, NewRuleConfidence)
	}
	if rule.AutoApply {
		t.Error("fresh rule must not auto-apply")
	}
	if !rule.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", rule.CreatedAt, now)
	}
}

func TestReinforceDenyWithoutRuleIsNoop(t *testing.T) {
	state := DefaultState()

	Reinforce(&state, "new.com", types.CatResearch, false, time.Now())

	if len(state.DomainRules) != 0 {
		t.Errorf("denial with no rule should create nothing, got %d rules", len(state.DomainRules))
	}
}

func TestReinforceCategoryMismatchCreatesNewRule(t *testing.T) {
	// A confirmation for a different category than the stored rule does
	// not touch the old rule; it goes through the create path, which
	// replaces the domain's rule entirely.
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.9, AutoApply: true})

	Reinforce(&state, "a.com", types.CatPersonal, true, time.Now())

	if len(state.DomainRules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(state.DomainRules))
	}
	rule := state.DomainRules[0]
	if rule.CategoryID != types.CatPersonal {
		t.Errorf("category = %s, want personal", rule.CategoryID)
	}
	if rule.Confidence != NewRuleConfidence || rule.AutoApply {
		t.Errorf("replacement should be a fresh rule, got conf=%v autoApply=%v",
			rule.Confidence, rule.AutoApply)
	}
}

func TestReinforceConfidenceStaysInRange(t *testing.T) {
	state := DefaultState()
	AddRule(&state, types.DomainRule{Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.5})
	now := time.Now()

	verdicts := []bool{true, false, false, false, true, true, true, true, false}
	for _, confirmed := range verdicts {
		Reinforce(&state, "a.com", types.CatWork, confirmed, now)
		conf := state.DomainRules[0].Confidence
		if conf < 0 || conf > 1 {
			t.Fatalf("confidence %v left [0,1]", conf)
		}
	}
}

func TestRecordPrompt(t *testing.T) {
	state := DefaultState()
	now := time.Now()

	RecordPrompt(&state, "a.com", now)
	RecordPrompt(&state, "a.com", now.Add(time.Minute))
	RecordPrompt(&state, "b.com", now.Add(2*time.Minute))

	if state.PromptsShownToday != 3 {
		t.Errorf("PromptsShownToday = %d, want 3", state.PromptsShownToday)
	}
	if len(state.PromptedDomains) != 2 {
		t.Errorf("PromptedDomains = %v, want 2 distinct entries", state.PromptedDomains)
	}
	if !state.LastPromptAt.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("LastPromptAt not updated: %v", state.LastPromptAt)
	}
}

func TestMuteDomainIdempotent(t *testing.T) {
	settings := DefaultSettings()

	MuteDomain(&settings, "ads.example")
	MuteDomain(&settings, "ads.example")
	MuteDomain(&settings, "tracker.example")

	if len(settings.MutedDomains) != 2 {
		t.Errorf("MutedDomains = %v, want 2 entries", settings.MutedDomains)
	}
}
