package export

import (
	"encoding/json"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/health"
	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

type jsonExport struct {
	Profile    string     `json:"profile"`
	ExportedAt time.Time  `json:"exported_at"`
	Health     jsonHealth `json:"health"`
	Nests      []jsonNest `json:"nests"`
}

type jsonHealth struct {
	TotalTabs       int    `json:"total_tabs"`
	ZombieTabs      int    `json:"zombie_tabs"`
	DuplicateGroups int    `json:"duplicate_groups"`
	ClutterLevel    string `json:"clutter_level"`
	Emotion         string `json:"emotion"`
}

type jsonNest struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
	Tabs  []jsonTab `json:"tabs"`
}

type jsonTab struct {
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	Domain           string    `json:"domain"`
	Category         string    `json:"category"`
	Confidence       float64   `json:"confidence,omitempty"`
	LastActive       time.Time `json:"last_active"`
	LastActivePretty string    `json:"last_active_pretty"`
	Pinned           bool      `json:"pinned,omitempty"`
	IsZombie         bool      `json:"is_zombie,omitempty"`
	IsDuplicate      bool      `json:"is_duplicate,omitempty"`
}

// JSON formats a report as an indented JSON document.
func JSON(r *Report) (string, error) {
	zombies := make(map[int]bool, len(r.Metrics.ZombieTabs))
	for _, tab := range r.Metrics.ZombieTabs {
		zombies[tab.ID] = true
	}
	dups := make(map[int]bool)
	for _, group := range r.Metrics.DuplicateGroups {
		for _, tab := range group {
			dups[tab.ID] = true
		}
	}

	out := jsonExport{
		Profile:    r.Profile,
		ExportedAt: time.Now(),
		Health: jsonHealth{
			TotalTabs:       r.Metrics.TotalTabs,
			ZombieTabs:      len(r.Metrics.ZombieTabs),
			DuplicateGroups: len(r.Metrics.DuplicateGroups),
			ClutterLevel:    string(r.Metrics.ClutterLevel),
			Emotion:         string(r.Metrics.Emotion),
		},
		Nests: make([]jsonNest, 0, len(nests.All)),
	}

	groups := nests.GroupByCategory(r.Tabs)
	for _, nest := range nests.All {
		tabs := groups[nest.ID]
		if len(tabs) == 0 {
			continue
		}
		jn := jsonNest{
			ID:    string(nest.ID),
			Name:  nest.Name,
			Color: nest.Color,
			Tabs:  make([]jsonTab, 0, len(tabs)),
		}
		for _, tab := range tabs {
			jn.Tabs = append(jn.Tabs, jsonTab{
				Title:            tab.Title,
				URL:              tab.URL,
				Domain:           tab.Domain,
				Category:         nest.Name,
				Confidence:       tab.CategoryConfidence,
				LastActive:       tab.LastActiveAt,
				LastActivePretty: relativeTime(tab.LastActiveAt),
				Pinned:           tab.Pinned,
				IsZombie:         zombies[tab.ID],
				IsDuplicate:      dups[tab.ID],
			})
		}
		out.Nests = append(out.Nests, jn)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// BuildReport assembles a report from raw tabs, running the health
// analysis on the way.
func BuildReport(profile string, tabs []*types.Tab, now time.Time) *Report {
	return &Report{
		Profile: profile,
		Tabs:    tabs,
		Metrics: health.Analyze(tabs, now),
	}
}
