package types

import "time"

// CategoryID identifies one of the fixed tab nests.
type CategoryID string

const (
	CatSchool   CategoryID = "school"
	CatWork     CategoryID = "work"
	CatPersonal CategoryID = "personal"
	CatCreative CategoryID = "creative"
	CatShopping CategoryID = "shopping"
	CatResearch CategoryID = "research"
	CatRandom   CategoryID = "random"
	CatUnsorted CategoryID = "unsorted"
)

// CategoryOrder is the canonical enumeration order. Classification
// tie-breaks follow this order, so it must stay stable.
var CategoryOrder = []CategoryID{
	CatSchool, CatWork, CatPersonal, CatCreative,
	CatShopping, CatResearch, CatRandom, CatUnsorted,
}

// Tab is a snapshot of one open browser tab.
type Tab struct {
	ID           int       `json:"tabId"`
	WindowID     int       `json:"windowId"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Domain       string    `json:"domain"`
	Favicon      string    `json:"favicon,omitempty"`
	OpenedAt     time.Time `json:"openedAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	ActiveMs     int64     `json:"activeTimeMs"`
	Pinned       bool      `json:"pinned"`
	Audible      bool      `json:"audible"`

	CategoryID         CategoryID `json:"categoryId,omitempty"`
	CategoryConfidence float64    `json:"categoryConfidence,omitempty"` // 0–1, 0 = unknown
}

// DomainRule is a learned domain → category association.
type DomainRule struct {
	Domain     string     `json:"domain"`
	CategoryID CategoryID `json:"categoryId"`
	CreatedAt  time.Time  `json:"createdAt"`
	AutoApply  bool       `json:"autoApply"`
	Confidence float64    `json:"confidence"` // 0–1
}

// CategorizationSettings is the user-configurable prompting policy.
type CategorizationSettings struct {
	Enabled           bool `json:"enabled"`
	MaxPromptsPerHour int  `json:"maxPromptsPerHour"`
	// AskForNewDomainsOnly is stored but not enforced beyond the
	// prompted-domains list, matching the original extension.
	AskForNewDomainsOnly bool     `json:"askForNewDomainsOnly"`
	MutedDomains         []string `json:"mutedDomains"`
}

// CategorizationState holds the learned rules and prompt bookkeeping.
type CategorizationState struct {
	DomainRules       []DomainRule `json:"domainRules"`
	LastPromptAt      time.Time    `json:"lastPromptAt,omitzero"`
	PromptsShownToday int          `json:"promptsShownToday"`
	DailyLimit        int          `json:"dailyLimit"`
	PromptedDomains   []string     `json:"promptedDomains"`
}

// ClutterLevel classifies the total open-tab count.
type ClutterLevel string

const (
	ClutterLow     ClutterLevel = "low"
	ClutterMedium  ClutterLevel = "medium"
	ClutterHigh    ClutterLevel = "high"
	ClutterExtreme ClutterLevel = "extreme"
)

// Emotion is the pet's mood derived from tab health.
type Emotion string

const (
	EmotionCalm        Emotion = "CALM"
	EmotionContent     Emotion = "CONTENT"
	EmotionSleepy      Emotion = "SLEEPY"
	EmotionAlert       Emotion = "ALERT"
	EmotionConfused    Emotion = "CONFUSED"
	EmotionOverwhelmed Emotion = "OVERWHELMED"
	EmotionCelebrating Emotion = "CELEBRATING"
)

// HealthMetrics is the derived health snapshot. It is recomputed on
// demand and never persisted as its own record; only the emotion is
// cached for UI use.
type HealthMetrics struct {
	TotalTabs       int
	ZombieTabs      []*Tab
	DuplicateGroups [][]*Tab
	ClutterLevel    ClutterLevel
	Emotion         Emotion
}

// ArchiveItem is a closed tab kept in the nest archive.
type ArchiveItem struct {
	ID         string     `json:"id"`
	TabID      int        `json:"tabId"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Domain     string     `json:"domain"`
	Favicon    string     `json:"favicon,omitempty"`
	ClosedAt   time.Time  `json:"closedAt"`
	CategoryID CategoryID `json:"categoryId,omitempty"`
}

// NotificationPreferences controls nudges, digests and the badge halo.
type NotificationPreferences struct {
	ShowNudges        bool `json:"showNudges"`
	ShowDailyDigest   bool `json:"showDailyDigest"`
	ShowEmotionalHalo bool `json:"showEmotionalHalo"`
}

// AppState is the single application-state record.
type AppState struct {
	Preferences    NotificationPreferences `json:"preferences"`
	Categorization CategorizationState     `json:"categorization"`
	Settings       CategorizationSettings  `json:"categorizationSettings"`
	CleanupCounts  map[string]int          `json:"cleanupCounts"` // date (2006-01-02) → tabs archived
	LastDigestDate string                  `json:"lastDigestDate,omitempty"`
	LastEmotion    Emotion                 `json:"lastEmotion,omitempty"`
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}
