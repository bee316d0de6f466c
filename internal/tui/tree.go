package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// NestNode is one visible row in the nest tree: a nest header or a tab.
type NestNode struct {
	Nest *nests.Nest
	Tab  *types.Tab
}

// NestTree is the collapsible per-nest tab view.
type NestTree struct {
	Tabs     []*types.Tab
	Expanded map[types.CategoryID]bool
	Zombies  map[int]bool
	Dups     map[int]bool
	Cursor   int
	Offset   int
	Width    int
	Height   int
}

func NewNestTree(tabs []*types.Tab, metrics types.HealthMetrics) NestTree {
	expanded := make(map[types.CategoryID]bool, len(nests.All))
	for _, n := range nests.All {
		expanded[n.ID] = true
	}
	zombies := make(map[int]bool, len(metrics.ZombieTabs))
	for _, tab := range metrics.ZombieTabs {
		zombies[tab.ID] = true
	}
	dups := make(map[int]bool)
	for _, group := range metrics.DuplicateGroups {
		for _, tab := range group {
			dups[tab.ID] = true
		}
	}
	return NestTree{
		Tabs:     tabs,
		Expanded: expanded,
		Zombies:  zombies,
		Dups:     dups,
	}
}

// VisibleNodes returns the flat list of currently visible rows. Empty
// nests are skipped.
func (m NestTree) VisibleNodes() []NestNode {
	groups := nests.GroupByCategory(m.Tabs)
	var nodes []NestNode
	for i := range nests.All {
		nest := &nests.All[i]
		tabs := groups[nest.ID]
		if len(tabs) == 0 {
			continue
		}
		nodes = append(nodes, NestNode{Nest: nest})
		if m.Expanded[nest.ID] {
			for _, tab := range tabs {
				nodes = append(nodes, NestNode{Tab: tab})
			}
		}
	}
	return nodes
}

// SelectedNode returns the row under the cursor, or nil.
func (m NestTree) SelectedNode() *NestNode {
	nodes := m.VisibleNodes()
	if m.Cursor >= 0 && m.Cursor < len(nodes) {
		return &nodes[m.Cursor]
	}
	return nil
}

func (m *NestTree) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

func (m *NestTree) MoveDown() {
	nodes := m.VisibleNodes()
	if m.Cursor < len(nodes)-1 {
		m.Cursor++
	}
	visibleRows := m.Height - 2
	if visibleRows < 1 {
		visibleRows = 1
	}
	if m.Cursor >= m.Offset+visibleRows {
		m.Offset = m.Cursor - visibleRows + 1
	}
}

// Toggle expands/collapses the nest under the cursor.
func (m *NestTree) Toggle() {
	node := m.SelectedNode()
	if node == nil || node.Nest == nil {
		return
	}
	m.Expanded[node.Nest.ID] = !m.Expanded[node.Nest.ID]
}

// CollapseOrParent collapses the selected nest, or jumps from a tab to
// its nest header.
func (m *NestTree) CollapseOrParent() {
	node := m.SelectedNode()
	if node == nil {
		return
	}
	if node.Nest != nil {
		if m.Expanded[node.Nest.ID] {
			m.Expanded[node.Nest.ID] = false
		}
		return
	}
	nodes := m.VisibleNodes()
	for i := m.Cursor - 1; i >= 0; i-- {
		if nodes[i].Nest != nil {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			return
		}
	}
}

// ExpandOrEnter expands a collapsed nest, or moves into its first tab.
func (m *NestTree) ExpandOrEnter() {
	node := m.SelectedNode()
	if node == nil || node.Nest == nil {
		return
	}
	if !m.Expanded[node.Nest.ID] {
		m.Expanded[node.Nest.ID] = true
		return
	}
	nodes := m.VisibleNodes()
	if m.Cursor+1 < len(nodes) && nodes[m.Cursor+1].Tab != nil {
		m.Cursor++
		visibleRows := m.Height - 2
		if visibleRows < 1 {
			visibleRows = 1
		}
		if m.Cursor >= m.Offset+visibleRows {
			m.Offset = m.Cursor - visibleRows + 1
		}
	}
}

func (m NestTree) View() string {
	nodes := m.VisibleNodes()
	if len(nodes) == 0 {
		return "No tabs found."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}

	var b strings.Builder
	end := m.Offset + visibleRows
	if end > len(nodes) {
		end = len(nodes)
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	zombieStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dupStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	pinStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	nestStyle := lipgloss.NewStyle().Bold(true)

	for i := m.Offset; i < end; i++ {
		node := nodes[i]
		var line string

		if node.Nest != nil {
			icon := "▶"
			if m.Expanded[node.Nest.ID] {
				icon = "▼"
			}
			count := 0
			for _, tab := range m.Tabs {
				if nests.ForTab(tab).ID == node.Nest.ID {
					count++
				}
			}
			noun := "tabs"
			if count == 1 {
				noun = "tab"
			}
			label := fmt.Sprintf("%s %s (%d %s)", icon, node.Nest.Name, count, noun)
			line = nestStyle.Foreground(lipgloss.Color(node.Nest.Color)).Render(label)
		} else if node.Tab != nil {
			prefix := "  "
			var markers []string
			if node.Tab.Pinned {
				markers = append(markers, pinStyle.Render("⁂"))
			}
			if m.Zombies[node.Tab.ID] {
				markers = append(markers, zombieStyle.Render("◷"))
			}
			if m.Dups[node.Tab.ID] {
				markers = append(markers, dupStyle.Render("⇄"))
			}

			marker := ""
			if len(markers) > 0 {
				marker = strings.Join(markers, "") + " "
			}

			label := node.Tab.Title
			if label == "" {
				label = node.Tab.URL
			}
			maxLen := m.Width - len(prefix) - len(markers)*2 - 2
			if maxLen < 10 {
				maxLen = 10
			}
			if len(label) > maxLen {
				label = label[:maxLen-1] + "…"
			}
			line = prefix + marker + label
		}

		if i == m.Cursor {
			for lipgloss.Width(line) < m.Width {
				line += " "
			}
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
