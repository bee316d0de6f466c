package nests

import "github.com/cherepashka123/browser-pet-companion/internal/types"

// Nest is the user-facing metadata for one category.
type Nest struct {
	ID          types.CategoryID
	Name        string
	Color       string
	Description string
}

// All lists every nest in canonical order. Unsorted is last.
var All = []Nest{
	{types.CatSchool, "School / Study", "#8B5CF6", "Academic work and learning"},
	{types.CatWork, "Work / Projects", "#3B82F6", "Professional tasks and projects"},
	{types.CatPersonal, "Personal / Life", "#10B981", "Personal matters and daily life"},
	{types.CatCreative, "Creative / Design", "#F59E0B", "Creative projects and inspiration"},
	{types.CatShopping, "Shopping / Money", "#EC4899", "Shopping and financial matters"},
	{types.CatResearch, "Research / Deep Dive", "#6366F1", "Research and exploration"},
	{types.CatRandom, "Random / Rabbit Hole", "#14B8A6", "Random browsing and discoveries"},
	{types.CatUnsorted, "Unsorted", "#6B7280", "Tabs without a category yet"},
}

// ByID looks up a nest, falling back to Unsorted for unknown IDs.
func ByID(id types.CategoryID) Nest {
	for _, n := range All {
		if n.ID == id {
			return n
		}
	}
	return All[len(All)-1]
}

// ForTab returns the nest a tab currently belongs to.
func ForTab(tab *types.Tab) Nest {
	if tab.CategoryID != "" {
		return ByID(tab.CategoryID)
	}
	return ByID(types.CatUnsorted)
}

// GroupByCategory buckets tabs by their assigned category. Every nest
// gets an entry, empty or not, so callers can render the full list.
func GroupByCategory(tabs []*types.Tab) map[types.CategoryID][]*types.Tab {
	groups := make(map[types.CategoryID][]*types.Tab, len(All))
	for _, n := range All {
		groups[n.ID] = nil
	}
	for _, tab := range tabs {
		id := tab.CategoryID
		if id == "" {
			id = types.CatUnsorted
		}
		groups[id] = append(groups[id], tab)
	}
	return groups
}
