package prompt

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/rules"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

func baseTab() *types.Tab {
	return &types.Tab{
		Domain:             "example.com",
		CategoryID:         types.CatWork,
		CategoryConfidence: 0.75,
	}
}

func baseFixture() (types.CategorizationSettings, types.CategorizationState) {
	return rules.DefaultSettings(), rules.DefaultState()
}

func TestShouldPromptHappyPath(t *testing.T) {
	settings, state := baseFixture()

	if !ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("expected prompt for ambiguous, unmuted, unprompted domain")
	}
}

func TestShouldPromptDisabled(t *testing.T) {
	settings, state := baseFixture()
	settings.Enabled = false

	if ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("disabled settings must suppress prompts")
	}
}

func TestShouldPromptMutedDomain(t *testing.T) {
	settings, state := baseFixture()
	settings.MutedDomains = []string{"example.com"}

	if ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("muted domain must never prompt")
	}
}

func TestShouldPromptLifetimeOncePerDomain(t *testing.T) {
	settings, state := baseFixture()
	state.PromptedDomains = []string{"example.com"}

	tab := baseTab()
	tab.CategoryConfidence = 0.75
	if ShouldPrompt(tab, settings, &state, time.Now()) {
		t.Error("previously prompted domain must never prompt again")
	}

	// A fresh high-ambiguity confidence makes no difference.
	tab.CategoryConfidence = 0.89
	if ShouldPrompt(tab, settings, &state, time.Now()) {
		t.Error("prompted-domains check takes precedence over confidence")
	}
}

func TestShouldPromptDailyLimit(t *testing.T) {
	settings, state := baseFixture()
	state.PromptsShownToday = state.DailyLimit

	if ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("daily limit reached must suppress prompts")
	}
}

func TestShouldPromptHourlyThrottle(t *testing.T) {
	settings, state := baseFixture()
	now := time.Now()
	state.LastPromptAt = now.Add(-10 * time.Minute)
	state.PromptsShownToday = settings.MaxPromptsPerHour

	if ShouldPrompt(baseTab(), settings, &state, now) {
		t.Error("hourly limit within the hour must suppress prompts")
	}
}

func TestShouldPromptHourlyResetQuirk(t *testing.T) {
	// Inherited quirk: an hour of quiet resets the daily counter.
	settings, state := baseFixture()
	now := time.Now()
	state.LastPromptAt = now.Add(-2 * time.Hour)
	state.PromptsShownToday = 15 // under the daily limit of 20

	if !ShouldPrompt(baseTab(), settings, &state, now) {
		t.Error("expected prompt after an hour of quiet")
	}
	if state.PromptsShownToday != 0 {
		t.Errorf("daily counter should reset after an hour, got %d", state.PromptsShownToday)
	}
}

func TestShouldPromptAutoApplyRule(t *testing.T) {
	settings, state := baseFixture()
	state.DomainRules = []types.DomainRule{{
		Domain:     "example.com",
		CategoryID: types.CatWork,
		AutoApply:  true,
		Confidence: 0.9,
	}}

	if ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("auto-applied category needs no confirmation")
	}
}

func TestShouldPromptNonAutoRuleStillPrompts(t *testing.T) {
	settings, state := baseFixture()
	state.DomainRules = []types.DomainRule{{
		Domain:     "example.com",
		CategoryID: types.CatWork,
		AutoApply:  false,
		Confidence: 0.7,
	}}

	if !ShouldPrompt(baseTab(), settings, &state, time.Now()) {
		t.Error("a rule without auto-apply should not block prompting")
	}
}

func TestShouldPromptConfidenceBand(t *testing.T) {
	settings, state := baseFixture()

	tests := []struct {
		confidence float64
		want       bool
	}{
		{0, false},
		{0.5, false},  // too weak, exclusive bound
		{0.51, true},
		{0.75, true},
		{0.89, true},
		{0.9, false}, // certain enough to auto-apply, exclusive bound
		{0.95, false},
	}
	for _, tt := range tests {
		tab := baseTab()
		tab.CategoryConfidence = tt.confidence
		if got := ShouldPrompt(tab, settings, &state, time.Now()); got != tt.want {
			t.Errorf("confidence %v: ShouldPrompt = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestMessageDeterministicWithSeed(t *testing.T) {
	a := Message(types.CatSchool, rand.New(rand.NewSource(42)))
	b := Message(types.CatSchool, rand.New(rand.NewSource(42)))

	if a != b {
		t.Errorf("same seed should give same message: %q vs %q", a, b)
	}
	if !strings.Contains(strings.ToLower(a), "school / study") {
		t.Errorf("message should mention the nest name: %q", a)
	}
}
