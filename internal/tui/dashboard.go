package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cherepashka123/browser-pet-companion/internal/health"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// petFaces is the terminal stand-in for the extension's animated pet.
var petFaces = map[types.Emotion]string{
	types.EmotionCalm:        "(˶ᵔ ᵕ ᵔ˶)",
	types.EmotionContent:     "(＾• ω •＾)",
	types.EmotionSleepy:      "(-ω-) zzZ",
	types.EmotionAlert:       "(⊙_⊙)!",
	types.EmotionConfused:    "(・_・?)",
	types.EmotionOverwhelmed: "(×﹏×)",
	types.EmotionCelebrating: "ヽ(＾▽＾)ノ",
}

var emotionTaglines = map[types.Emotion]string{
	types.EmotionCalm:        "All quiet. Your tabs are resting.",
	types.EmotionContent:     "Things look tidy enough.",
	types.EmotionSleepy:      "Not much going on... nap time.",
	types.EmotionAlert:       "Some tabs have been asleep a long time.",
	types.EmotionConfused:    "So many copies of the same page...",
	types.EmotionOverwhelmed: "Too many tabs!! Help!!",
	types.EmotionCelebrating: "So clean!! I'm proud of us!",
}

func renderDashboard(metrics types.HealthMetrics, nudge string, width, height int) string {
	emotion := metrics.Emotion
	color := lipgloss.Color(health.EmotionColor(emotion))

	faceStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	emotionStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle := lipgloss.NewStyle().Bold(true)
	nudgeStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))

	face := petFaces[emotion]
	if face == "" {
		face = petFaces[types.EmotionContent]
	}

	var b strings.Builder
	b.WriteString("\n  " + faceStyle.Render(face) + "\n\n")
	b.WriteString("  " + emotionStyle.Render(string(emotion)) + "  " +
		labelStyle.Render(emotionTaglines[emotion]) + "\n\n")

	row := func(label string, value string) {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-18s", label)), valueStyle.Render(value)))
	}
	row("Open tabs", fmt.Sprintf("%d", metrics.TotalTabs))
	row("Clutter", string(metrics.ClutterLevel))
	row("Zombie tabs", fmt.Sprintf("%d", len(metrics.ZombieTabs)))
	row("Duplicate groups", fmt.Sprintf("%d", len(metrics.DuplicateGroups)))

	if nudge != "" {
		b.WriteString("\n  " + nudgeStyle.Render("“"+nudge+"”") + "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
