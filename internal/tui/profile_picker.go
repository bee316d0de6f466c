package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// ProfilePicker is an overlay for selecting a Firefox profile.
type ProfilePicker struct {
	Profiles []types.Profile
	Cursor   int
	Width    int
	Height   int
}

func NewProfilePicker(profiles []types.Profile) ProfilePicker {
	cursor := 0
	for i, p := range profiles {
		if p.IsDefault {
			cursor = i
			break
		}
	}
	return ProfilePicker{Profiles: profiles, Cursor: cursor}
}

func (m *ProfilePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ProfilePicker) MoveDown() {
	if m.Cursor < len(m.Profiles)-1 {
		m.Cursor++
	}
}

func (m ProfilePicker) Selected() types.Profile {
	return m.Profiles[m.Cursor]
}

func (m ProfilePicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a Firefox profile:") + "\n\n")

	for i, p := range m.Profiles {
		label := p.Name
		if p.IsDefault {
			label += " (default)"
		}
		line := normalStyle.Render(fmt.Sprintf("  %s", label))
		if i == m.Cursor {
			line = selectedStyle.Render("> " + label)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · q quit"))

	return boxStyle.Render(b.String())
}
