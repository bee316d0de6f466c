package health

import (
	"net/url"
	"strings"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// ZombieThreshold is how long a non-pinned tab may sit inactive before
// it counts as a zombie.
const ZombieThreshold = 30 * time.Minute

// NormalizeURL reduces a URL to scheme + host + path for duplicate
// comparison. Query, fragment and a trailing slash are dropped. An
// unparsable URL is returned verbatim so it still groups with exact
// copies of itself.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	result := u.Scheme + "://" + u.Host + u.Path
	return strings.TrimSuffix(result, "/")
}

// Zombies returns the tabs inactive beyond ZombieThreshold. Pinned tabs
// are exempt regardless of age.
func Zombies(tabs []*types.Tab, now time.Time) []*types.Tab {
	var zombies []*types.Tab
	for _, tab := range tabs {
		if tab.Pinned {
			continue
		}
		if now.Sub(tab.LastActiveAt) > ZombieThreshold {
			zombies = append(zombies, tab)
		}
	}
	return zombies
}

// Duplicates groups tabs by normalized URL and returns every group with
// at least two members. Groups and their members keep first-seen input
// order.
func Duplicates(tabs []*types.Tab) [][]*types.Tab {
	groups := make(map[string][]*types.Tab)
	var order []string
	for _, tab := range tabs {
		key := NormalizeURL(tab.URL)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tab)
	}

	var result [][]*types.Tab
	for _, key := range order {
		if group := groups[key]; len(group) >= 2 {
			result = append(result, group)
		}
	}
	return result
}

// Analyze computes the full health snapshot for a set of tabs.
func Analyze(tabs []*types.Tab, now time.Time) types.HealthMetrics {
	m := types.HealthMetrics{
		TotalTabs:       len(tabs),
		ZombieTabs:      Zombies(tabs, now),
		DuplicateGroups: Duplicates(tabs),
	}
	m.ClutterLevel = ClutterFor(m.TotalTabs)
	m.Emotion = EmotionFor(m)
	return m
}
