package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

func TestJSON_Structure(t *testing.T) {
	now := time.Now()
	result, err := JSON(sampleReport(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\noutput:\n%s", err, result)
	}

	if parsed.Profile != "default" {
		t.Errorf("profile = %q, want default", parsed.Profile)
	}
	if parsed.Health.Emotion != "CONTENT" || parsed.Health.ClutterLevel != "low" {
		t.Errorf("health = %+v", parsed.Health)
	}
	if parsed.Health.ZombieTabs != 2 {
		t.Errorf("zombie count = %d, want 2", parsed.Health.ZombieTabs)
	}

	if len(parsed.Nests) != 2 {
		t.Fatalf("got %d nests, want 2 (research, unsorted)", len(parsed.Nests))
	}
	research := parsed.Nests[0]
	if research.ID != "research" || len(research.Tabs) != 2 {
		t.Errorf("first nest = %q with %d tabs", research.ID, len(research.Tabs))
	}
	if research.Color == "" {
		t.Error("nest color missing")
	}

	tab0 := research.Tabs[0]
	if tab0.Domain != "go.dev" || tab0.Category != "Research / Deep Dive" {
		t.Errorf("tab = %+v", tab0)
	}
	if tab0.LastActivePretty != "3d ago" {
		t.Errorf("last_active_pretty = %q, want 3d ago", tab0.LastActivePretty)
	}
	if !tab0.IsZombie {
		t.Error("zombie flag not set on zombie tab")
	}

	unsorted := parsed.Nests[1]
	if unsorted.ID != "unsorted" || len(unsorted.Tabs) != 1 {
		t.Errorf("second nest = %q with %d tabs", unsorted.ID, len(unsorted.Tabs))
	}
	if unsorted.Tabs[0].IsZombie {
		t.Error("zombie flag set on fresh tab")
	}
}

func TestJSON_DuplicateFlags(t *testing.T) {
	now := time.Now()
	a := &types.Tab{ID: 1, Title: "A", URL: "https://dup.com/x", Domain: "dup.com", LastActiveAt: now}
	b := &types.Tab{ID: 2, Title: "B", URL: "https://dup.com/x?ref=1", Domain: "dup.com", LastActiveAt: now}
	c := &types.Tab{ID: 3, Title: "C", URL: "https://clean.com", Domain: "clean.com", LastActiveAt: now}

	r := &Report{
		Profile: "test",
		Tabs:    []*types.Tab{a, b, c},
		Metrics: types.HealthMetrics{
			TotalTabs:       3,
			DuplicateGroups: [][]*types.Tab{{a, b}},
			ClutterLevel:    types.ClutterLow,
			Emotion:         types.EmotionCalm,
		},
	}

	result, err := JSON(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	tabs := parsed.Nests[0].Tabs
	if len(tabs) != 3 {
		t.Fatalf("got %d tabs, want 3", len(tabs))
	}
	if !tabs[0].IsDuplicate || !tabs[1].IsDuplicate {
		t.Error("duplicate flags not set")
	}
	if tabs[2].IsDuplicate {
		t.Error("duplicate flag set on unique tab")
	}
}

func TestJSON_EmptyReport(t *testing.T) {
	result, err := JSON(&Report{Profile: "empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Profile != "empty" || len(parsed.Nests) != 0 {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Now()
	tabs := []*types.Tab{
		{ID: 1, URL: "https://a.com/", Domain: "a.com", LastActiveAt: now.Add(-time.Hour)},
		{ID: 2, URL: "https://a.com/", Domain: "a.com", LastActiveAt: now},
	}

	r := BuildReport("work", tabs, now)
	if r.Profile != "work" {
		t.Errorf("profile = %q", r.Profile)
	}
	if r.Metrics.TotalTabs != 2 {
		t.Errorf("totalTabs = %d", r.Metrics.TotalTabs)
	}
	if len(r.Metrics.ZombieTabs) != 1 {
		t.Errorf("zombies = %d, want 1", len(r.Metrics.ZombieTabs))
	}
	if len(r.Metrics.DuplicateGroups) != 1 {
		t.Errorf("duplicate groups = %d, want 1", len(r.Metrics.DuplicateGroups))
	}
}
