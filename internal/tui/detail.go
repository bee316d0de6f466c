package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// DetailModel shows information about the selected row.
type DetailModel struct {
	Width  int
	Height int
}

func (m DetailModel) ViewTab(tab *types.Tab, zombie, duplicate bool) string {
	if tab == nil {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	valueStyle := lipgloss.NewStyle()
	zombieStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dupStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)

	var b strings.Builder

	b.WriteString(labelStyle.Render("Title") + "\n")
	title := tab.Title
	if title == "" {
		title = "(untitled)"
	}
	if len(title) > m.Width-2 && m.Width > 3 {
		title = title[:m.Width-3] + "…"
	}
	b.WriteString(valueStyle.Render(title) + "\n\n")

	b.WriteString(labelStyle.Render("URL") + "\n")
	url := tab.URL
	for m.Width > 2 && len(url) > m.Width-2 {
		b.WriteString(valueStyle.Render(url[:m.Width-2]) + "\n")
		url = url[m.Width-2:]
	}
	b.WriteString(valueStyle.Render(url) + "\n\n")

	nest := nests.ForTab(tab)
	b.WriteString(labelStyle.Render("Nest") + "\n")
	nestLine := nest.Name
	if tab.CategoryConfidence > 0 {
		nestLine += fmt.Sprintf(" (%.0f%% sure)", tab.CategoryConfidence*100)
	}
	b.WriteString(valueStyle.Render(nestLine) + "\n\n")

	b.WriteString(labelStyle.Render("Last Active") + "\n")
	b.WriteString(valueStyle.Render(ageString(tab.LastActiveAt)) + "\n\n")

	if tab.ActiveMs > 0 {
		b.WriteString(labelStyle.Render("Time in Focus") + "\n")
		b.WriteString(valueStyle.Render(durationString(tab.ActiveMs)) + "\n\n")
	}

	var statuses []string
	if tab.Pinned {
		statuses = append(statuses, valueStyle.Render("Pinned"))
	}
	if zombie {
		statuses = append(statuses, zombieStyle.Render("Zombie — asleep over 30 minutes"))
	}
	if duplicate {
		statuses = append(statuses, dupStyle.Render("Duplicate of another open tab"))
	}
	if len(statuses) > 0 {
		b.WriteString(labelStyle.Render("Status") + "\n")
		for _, s := range statuses {
			b.WriteString(s + "\n")
		}
	}

	return b.String()
}

func (m DetailModel) ViewNest(nest *nests.Nest, tabs []*types.Tab, zombies, dups map[int]bool) string {
	if nest == nil {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	valueStyle := lipgloss.NewStyle()

	var b strings.Builder

	b.WriteString(labelStyle.Render("Nest") + "\n")
	b.WriteString(valueStyle.Render(nest.Name) + "\n\n")

	b.WriteString(labelStyle.Render("About") + "\n")
	b.WriteString(valueStyle.Render(nest.Description) + "\n\n")

	b.WriteString(labelStyle.Render("Tabs") + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", len(tabs))) + "\n")

	var zombieCount, dupCount int
	for _, tab := range tabs {
		if zombies[tab.ID] {
			zombieCount++
		}
		if dups[tab.ID] {
			dupCount++
		}
	}
	if zombieCount+dupCount > 0 {
		b.WriteString("\n" + labelStyle.Render("Issues") + "\n")
		if zombieCount > 0 {
			b.WriteString(fmt.Sprintf("  %d zombie tabs\n", zombieCount))
		}
		if dupCount > 0 {
			b.WriteString(fmt.Sprintf("  %d duplicates\n", dupCount))
		}
	}

	return b.String()
}

func ageString(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	age := time.Since(t)
	days := int(age.Hours() / 24)
	if days == 0 {
		hours := int(age.Hours())
		if hours == 0 {
			mins := int(age.Minutes())
			if mins == 0 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", mins)
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	return fmt.Sprintf("%d days ago", days)
}

func durationString(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
