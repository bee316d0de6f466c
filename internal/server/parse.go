package server

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// wireTab mirrors the chrome.tabs.Tab shape the extension sends.
type wireTab struct {
	ID           int    `json:"id"`
	WindowID     int    `json:"windowId"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	LastAccessed int64  `json:"lastAccessed"`
	FavIconURL   string `json:"favIconUrl"`
	Pinned       bool   `json:"pinned"`
	Audible      bool   `json:"audible"`
}

func fromWire(wt wireTab, now time.Time) *types.Tab {
	lastActive := now
	if wt.LastAccessed != 0 {
		lastActive = time.UnixMilli(wt.LastAccessed)
	}
	return &types.Tab{
		ID:           wt.ID,
		WindowID:     wt.WindowID,
		URL:          wt.URL,
		Title:        wt.Title,
		Domain:       DomainOf(wt.URL),
		Favicon:      wt.FavIconURL,
		OpenedAt:     lastActive,
		LastActiveAt: lastActive,
		Pinned:       wt.Pinned,
		Audible:      wt.Audible,
	}
}

// DomainOf extracts the hostname from a tab URL, keeping the raw
// string as the domain token when the URL does not parse.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

// ParseSnapshot converts a "snapshot" message into the full tab set.
func ParseSnapshot(msg IncomingMsg, now time.Time) ([]*types.Tab, error) {
	var wire []wireTab
	if err := json.Unmarshal(msg.Tabs, &wire); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}

	tabs := make([]*types.Tab, 0, len(wire))
	for _, wt := range wire {
		tabs = append(tabs, fromWire(wt, now))
	}
	return tabs, nil
}

// ParseTab converts a single raw JSON tab into a Tab.
func ParseTab(raw json.RawMessage, now time.Time) (*types.Tab, error) {
	var wt wireTab
	if err := json.Unmarshal(raw, &wt); err != nil {
		return nil, fmt.Errorf("parse tab: %w", err)
	}
	return fromWire(wt, now), nil
}
