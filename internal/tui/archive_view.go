package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

type archiveLoadedMsg struct {
	items []types.ArchiveItem
	err   error
}

type archiveItemRemovedMsg struct {
	id  string
	err error
}

// ArchiveLister is the slice of the storage layer the archive view
// needs.
type ArchiveLister interface {
	ListArchive(category types.CategoryID) ([]types.ArchiveItem, error)
	RemoveArchiveItem(id string) error
}

// ArchiveView lists the tabs the pet has tucked away.
type ArchiveView struct {
	db     ArchiveLister
	items  []types.ArchiveItem
	cursor int
	offset int
	width  int
	height int
	err    error
}

func NewArchiveView(db ArchiveLister) ArchiveView {
	return ArchiveView{db: db}
}

func (v ArchiveView) load() tea.Cmd {
	return func() tea.Msg {
		items, err := v.db.ListArchive("")
		return archiveLoadedMsg{items: items, err: err}
	}
}

func (v ArchiveView) removeSelected() tea.Cmd {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return nil
	}
	id := v.items[v.cursor].ID
	return func() tea.Msg {
		err := v.db.RemoveArchiveItem(id)
		return archiveItemRemovedMsg{id: id, err: err}
	}
}

func (v *ArchiveView) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
}

func (v *ArchiveView) MoveDown() {
	if v.cursor < len(v.items)-1 {
		v.cursor++
	}
	visibleRows := v.height - 2
	if visibleRows < 1 {
		visibleRows = 1
	}
	if v.cursor >= v.offset+visibleRows {
		v.offset = v.cursor - visibleRows + 1
	}
}

func (v ArchiveView) View() string {
	if v.err != nil {
		return fmt.Sprintf("\n  Archive error: %v\n", v.err)
	}
	if len(v.items) == 0 {
		return "\n  The nest archive is empty. Closed tabs land here.\n"
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	visibleRows := v.height
	if visibleRows < 1 {
		visibleRows = 20
	}
	end := v.offset + visibleRows
	if end > len(v.items) {
		end = len(v.items)
	}

	var b strings.Builder
	for i := v.offset; i < end; i++ {
		item := v.items[i]
		nest := nests.ByID(item.CategoryID)
		nestTag := lipgloss.NewStyle().Foreground(lipgloss.Color(nest.Color)).Render(string(nest.ID))

		title := item.Title
		maxLen := v.width - 30
		if maxLen < 10 {
			maxLen = 10
		}
		if len(title) > maxLen {
			title = title[:maxLen-1] + "…"
		}

		line := fmt.Sprintf("  %s  %s %s", title, nestTag,
			dimStyle.Render(item.ClosedAt.Format("Jan 2 15:04")))
		if i == v.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
