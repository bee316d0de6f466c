package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// Report is the input for all export formats: the tracked tabs of one
// profile plus the health metrics derived from them.
type Report struct {
	Profile string
	Tabs    []*types.Tab
	Metrics types.HealthMetrics
}

// Markdown formats a report as a markdown document, one section per
// nest.
func Markdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Browser Pet — %s\n", r.Profile)
	fmt.Fprintf(&b, "> Exported %s\n\n", time.Now().Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "Mood: %s · %d tabs · clutter %s · %d zombies · %d duplicate groups\n",
		r.Metrics.Emotion, r.Metrics.TotalTabs, r.Metrics.ClutterLevel,
		len(r.Metrics.ZombieTabs), len(r.Metrics.DuplicateGroups))

	groups := nests.GroupByCategory(r.Tabs)
	for _, nest := range nests.All {
		tabs := groups[nest.ID]
		if len(tabs) == 0 {
			continue
		}
		n := len(tabs)
		noun := "tabs"
		if n == 1 {
			noun = "tab"
		}
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", nest.Name, n, noun)

		for _, tab := range tabs {
			title := tab.Title
			if title == "" {
				title = tab.URL
			}
			fmt.Fprintf(&b, "- [%s](%s) — %s\n", title, tab.URL, relativeTime(tab.LastActiveAt))
		}
	}

	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
