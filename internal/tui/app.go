// Package tui is the terminal dashboard: the pet's mood, the nests
// your tabs live in, and the archive of tabs already put to rest. It
// works from the Firefox session file on disk, so it needs no
// extension connection.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/firefox"
	"github.com/cherepashka123/browser-pet-companion/internal/health"
	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

type sessionLoadedMsg struct {
	snap *firefox.Snapshot
	err  error
}

type refreshTickMsg time.Time

type Model struct {
	profiles []types.Profile
	profile  types.Profile
	tabs     []*types.Tab
	metrics  types.HealthMetrics

	view       ViewType
	tree       NestTree
	detail     DetailModel
	archive    ArchiveView
	picker     ProfilePicker
	showPicker bool
	loading    bool
	err        error
	width      int
	height     int
}

func NewModel(profiles []types.Profile, db ArchiveLister) Model {
	m := Model{
		profiles: profiles,
		archive:  NewArchiveView(db),
	}
	if len(profiles) == 1 {
		m.profile = profiles[0]
		m.loading = true
	} else {
		m.showPicker = true
		m.picker = NewProfilePicker(profiles)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.archive.load(), refreshTick()}
	if !m.showPicker {
		cmds = append(cmds, loadSession(m.profile))
	}
	return tea.Batch(cmds...)
}

func loadSession(profile types.Profile) tea.Cmd {
	return func() tea.Msg {
		snap, err := firefox.ReadSessionFile(profile.Path)
		if err != nil {
			return sessionLoadedMsg{err: err}
		}
		snap.Profile = profile
		return sessionLoadedMsg{snap: snap}
	}
}

// refreshTick re-reads the session file every minute, the same cadence
// the live engine refreshes health at.
func refreshTick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeWidth := m.width * 60 / 100
		paneHeight := m.height - 4
		m.tree.Width = treeWidth
		m.tree.Height = paneHeight
		m.detail.Width = m.width - treeWidth - 3
		m.detail.Height = paneHeight
		m.archive.width = m.width
		m.archive.height = paneHeight
		m.picker.Width = m.width
		m.picker.Height = m.height
		return m, nil

	case tea.KeyMsg:
		if m.showPicker {
			switch msg.String() {
			case "up", "k":
				m.picker.MoveUp()
			case "down", "j":
				m.picker.MoveDown()
			case "enter":
				m.profile = m.picker.Selected()
				m.showPicker = false
				m.loading = true
				return m, loadSession(m.profile)
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1":
			m.view = ViewPet
		case "2":
			m.view = ViewNests
		case "3":
			m.view = ViewArchive
		case "tab":
			m.view = (m.view + 1) % 3
		case "up", "k":
			switch m.view {
			case ViewNests:
				m.tree.MoveUp()
			case ViewArchive:
				m.archive.MoveUp()
			}
		case "down", "j":
			switch m.view {
			case ViewNests:
				m.tree.MoveDown()
			case ViewArchive:
				m.archive.MoveDown()
			}
		case "enter":
			if m.view == ViewNests {
				m.tree.Toggle()
			}
		case "h":
			if m.view == ViewNests {
				m.tree.CollapseOrParent()
			}
		case "l":
			if m.view == ViewNests {
				m.tree.ExpandOrEnter()
			}
		case "d":
			if m.view == ViewArchive {
				return m, m.archive.removeSelected()
			}
		case "r":
			m.loading = true
			return m, tea.Batch(loadSession(m.profile), m.archive.load())
		case "p":
			if len(m.profiles) > 1 {
				m.showPicker = true
				m.picker = NewProfilePicker(m.profiles)
				m.picker.Width = m.width
				m.picker.Height = m.height
			}
		}
		return m, nil

	case sessionLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.tabs = msg.snap.Tabs
		m.classifyTabs()
		m.metrics = health.Analyze(m.tabs, time.Now())
		m.rebuildTree()
		return m, nil

	case refreshTickMsg:
		if m.showPicker || m.loading {
			return m, refreshTick()
		}
		return m, tea.Batch(loadSession(m.profile), refreshTick())

	case archiveLoadedMsg:
		if msg.err != nil {
			m.archive.err = msg.err
			return m, nil
		}
		m.archive.err = nil
		m.archive.items = msg.items
		if m.archive.cursor >= len(msg.items) {
			m.archive.cursor = len(msg.items) - 1
		}
		if m.archive.cursor < 0 {
			m.archive.cursor = 0
		}
		return m, nil

	case archiveItemRemovedMsg:
		if msg.err != nil {
			m.archive.err = msg.err
			return m, nil
		}
		return m, m.archive.load()
	}

	return m, nil
}

// classifyTabs runs the offline classifier over the loaded session so
// the nests view has something to group by. Session files carry no
// learned rules, so this is patterns and keywords only.
func (m *Model) classifyTabs() {
	for _, tab := range m.tabs {
		if tab.CategoryID != "" {
			continue
		}
		det := nests.Classify(tab, nil)
		if det.CategoryID != types.CatUnsorted {
			tab.CategoryID = det.CategoryID
			tab.CategoryConfidence = det.Confidence
		}
	}
}

func (m *Model) rebuildTree() {
	oldCursor := m.tree.Cursor
	oldOffset := m.tree.Offset
	oldExpanded := m.tree.Expanded

	m.tree = NewNestTree(m.tabs, m.metrics)
	m.tree.Width = m.width * 60 / 100
	m.tree.Height = m.height - 4

	if oldExpanded != nil {
		for id, exp := range oldExpanded {
			m.tree.Expanded[id] = exp
		}
	}

	nodes := m.tree.VisibleNodes()
	if oldCursor >= len(nodes) {
		oldCursor = len(nodes) - 1
	}
	if oldCursor < 0 {
		oldCursor = 0
	}
	m.tree.Cursor = oldCursor
	m.tree.Offset = oldOffset
}

func (m Model) View() string {
	if m.showPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}
	if m.loading {
		return "\n  Reading session data...\n"
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press 'r' to retry, 'q' to quit.\n", m.err)
	}

	counts := [3]int{m.metrics.TotalTabs, m.metrics.TotalTabs, len(m.archive.items)}
	navbar := renderNavbar(m.view, m.profile.Name, counts, m.width)

	var body string
	switch m.view {
	case ViewPet:
		body = renderDashboard(m.metrics, health.Nudge(m.metrics), m.width, m.height-4)

	case ViewNests:
		treeBorder := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(m.tree.Width).
			Height(m.tree.Height)
		detailBorder := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(m.detail.Width).
			Height(m.detail.Height)

		var detailContent string
		if node := m.tree.SelectedNode(); node != nil {
			if node.Tab != nil {
				detailContent = m.detail.ViewTab(node.Tab,
					m.tree.Zombies[node.Tab.ID], m.tree.Dups[node.Tab.ID])
			} else if node.Nest != nil {
				detailContent = m.detail.ViewNest(node.Nest,
					nests.GroupByCategory(m.tabs)[node.Nest.ID], m.tree.Zombies, m.tree.Dups)
			}
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			treeBorder.Render(m.tree.View()), detailBorder.Render(detailContent))

	case ViewArchive:
		body = m.archive.View()
	}

	bottomStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	bottom := "1/2/3 views · tab cycle · ↑↓/jk navigate"
	switch m.view {
	case ViewNests:
		bottom += " · h/l collapse/expand · enter toggle"
	case ViewArchive:
		bottom += " · d remove"
	}
	bottom += " · r refresh"
	if len(m.profiles) > 1 {
		bottom += " · p profile"
	}
	bottom += " · q quit"

	return lipgloss.JoinVertical(lipgloss.Left, navbar, body, bottomStyle.Render(bottom))
}
