package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cherepashka123/browser-pet-companion/internal/rules"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

const (
	appStateKey  = "browserPetAppState"
	tabKeyPrefix = "tab_"
)

func tabKey(tabID int) string {
	return tabKeyPrefix + strconv.Itoa(tabID)
}

// LoadAppState reads the single application-state record. A missing or
// partial record comes back filled with defaults; this never errors on
// absent data.
func LoadAppState(s Store) (types.AppState, error) {
	state := types.AppState{
		Preferences: types.NotificationPreferences{
			ShowNudges:        true,
			ShowDailyDigest:   true,
			ShowEmotionalHalo: true,
		},
		Categorization: rules.DefaultState(),
		Settings:       rules.DefaultSettings(),
		CleanupCounts:  map[string]int{},
	}

	raw, ok, err := s.Get(appStateKey)
	if err != nil {
		return state, err
	}
	if !ok {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("decode app state: %w", err)
	}
	if state.CleanupCounts == nil {
		state.CleanupCounts = map[string]int{}
	}
	if state.Categorization.DailyLimit == 0 {
		state.Categorization.DailyLimit = rules.DefaultState().DailyLimit
	}
	return state, nil
}

// SaveAppState writes the application-state record.
func SaveAppState(s Store, state types.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}
	return s.Set(appStateKey, raw)
}

// LoadTab reads a per-tab record. ok is false when no record exists.
func LoadTab(s Store, tabID int) (*types.Tab, bool, error) {
	raw, ok, err := s.Get(tabKey(tabID))
	if err != nil || !ok {
		return nil, false, err
	}
	var tab types.Tab
	if err := json.Unmarshal(raw, &tab); err != nil {
		return nil, false, fmt.Errorf("decode tab %d: %w", tabID, err)
	}
	return &tab, true, nil
}

// SaveTab writes a per-tab record keyed by the tab's identifier.
func SaveTab(s Store, tab *types.Tab) error {
	raw, err := json.Marshal(tab)
	if err != nil {
		return fmt.Errorf("encode tab %d: %w", tab.ID, err)
	}
	return s.Set(tabKey(tab.ID), raw)
}

// RemoveTab deletes a per-tab record.
func RemoveTab(s Store, tabID int) error {
	return s.Remove(tabKey(tabID))
}

// ListTabs reads all per-tab records in insertion order. Records that
// fail to decode are skipped rather than failing the listing.
func ListTabs(s Store) ([]*types.Tab, error) {
	keys, err := s.Keys(tabKeyPrefix)
	if err != nil {
		return nil, err
	}

	var tabs []*types.Tab
	for _, key := range keys {
		raw, ok, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var tab types.Tab
		if err := json.Unmarshal(raw, &tab); err != nil {
			continue
		}
		tabs = append(tabs, &tab)
	}
	return tabs, nil
}

// PruneTabs removes per-tab records whose IDs are not in the live set.
func PruneTabs(s Store, live map[int]bool) error {
	keys, err := s.Keys(tabKeyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		id, err := strconv.Atoi(strings.TrimPrefix(key, tabKeyPrefix))
		if err != nil {
			continue
		}
		if !live[id] {
			if err := s.Remove(key); err != nil {
				return err
			}
		}
	}
	return nil
}
