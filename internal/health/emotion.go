package health

import (
	"fmt"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// ClutterFor maps a total tab count onto the four clutter tiers.
// Boundaries are inclusive on the lower tier.
func ClutterFor(totalTabs int) types.ClutterLevel {
	switch {
	case totalTabs <= 5:
		return types.ClutterLow
	case totalTabs <= 15:
		return types.ClutterMedium
	case totalTabs <= 30:
		return types.ClutterHigh
	default:
		return types.ClutterExtreme
	}
}

// EmotionFor derives the pet's mood from health metrics. Rules are
// priority-ordered; the first match wins. The celebrating rule is a
// strictly more specific variant of the sleepy rule and must stay
// ahead of it.
func EmotionFor(m types.HealthMetrics) types.Emotion {
	zombies := len(m.ZombieTabs)

	switch {
	case m.TotalTabs <= 3 && zombies == 0:
		return types.EmotionCelebrating
	case m.ClutterLevel == types.ClutterExtreme || m.TotalTabs > 50:
		return types.EmotionOverwhelmed
	case len(m.DuplicateGroups) > 3:
		return types.EmotionConfused
	case zombies > 5:
		return types.EmotionAlert
	case m.TotalTabs <= 5 && zombies == 0:
		return types.EmotionSleepy
	case m.ClutterLevel == types.ClutterLow || m.ClutterLevel == types.ClutterMedium:
		return types.EmotionContent
	default:
		return types.EmotionCalm
	}
}

// emotionColors are the badge halo colors per mood.
var emotionColors = map[types.Emotion]string{
	types.EmotionCalm:        "#90EE90",
	types.EmotionContent:     "#87CEEB",
	types.EmotionSleepy:      "#DDA0DD",
	types.EmotionAlert:       "#FFD700",
	types.EmotionConfused:    "#9370DB",
	types.EmotionOverwhelmed: "#FF6347",
	types.EmotionCelebrating: "#FFD700",
}

// EmotionColor returns the badge color for a mood, defaulting to the
// content blue for unknown values.
func EmotionColor(e types.Emotion) string {
	if c, ok := emotionColors[e]; ok {
		return c
	}
	return emotionColors[types.EmotionContent]
}

// Nudge returns what the pet says about the current metrics, or ""
// when nothing is worth interrupting for. Cases are priority-ordered.
func Nudge(m types.HealthMetrics) string {
	switch {
	case m.Emotion == types.EmotionOverwhelmed && m.TotalTabs > 30:
		return "I'm overwhelmed... too many tabs..."
	case len(m.ZombieTabs) >= 3:
		return fmt.Sprintf("I think %d tabs need a nap...", len(m.ZombieTabs))
	case len(m.DuplicateGroups) > 2:
		return "I see some duplicate tabs... should we clean up?"
	case m.Emotion == types.EmotionCelebrating:
		return "We're so clean!! I'm proud!"
	}
	return ""
}
