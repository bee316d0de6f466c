package firefox

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format:
// 8-byte magic + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12 // 8 magic + 4 size

	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}

	for i := 0; i < len(mozLz4Magic); i++ {
		if data[i] != mozLz4Magic[i] {
			return nil, fmt.Errorf("mozlz4: invalid header magic")
		}
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}

	return dst[:n], nil
}

// Raw JSON types for Firefox session file parsing.
type rawEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type rawTab struct {
	Entries      []rawEntry `json:"entries"`
	Index        int        `json:"index"`
	LastAccessed int64      `json:"lastAccessed"`
	Image        string     `json:"image"`
	Pinned       bool       `json:"pinned"`
}

type rawWindow struct {
	Tabs []rawTab `json:"tabs"`
}

type rawSession struct {
	Windows []rawWindow `json:"windows"`
}

// Snapshot is a one-shot set of tabs read from a session file.
type Snapshot struct {
	Tabs     []*types.Tab
	Profile  types.Profile
	ParsedAt time.Time
}

// domainOf extracts the hostname for classification. Unparsable URLs
// keep the whole string as their domain token so nothing downstream
// has to special-case them.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

// ParseSession parses raw session JSON into tab snapshots. Tab IDs are
// synthesized sequentially since session files carry none; lastAccessed
// maps onto LastActiveAt.
func ParseSession(data []byte, now time.Time) (*Snapshot, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}

	snap := &Snapshot{ParsedAt: now}

	nextID := 1
	for winIdx, window := range raw.Windows {
		for _, rt := range window.Tabs {
			if len(rt.Entries) == 0 {
				continue
			}

			// index is 1-based; current page is entries[index-1].
			entryIdx := rt.Index - 1
			if entryIdx < 0 || entryIdx >= len(rt.Entries) {
				entryIdx = len(rt.Entries) - 1
			}
			entry := rt.Entries[entryIdx]

			lastActive := time.UnixMilli(rt.LastAccessed)
			if rt.LastAccessed == 0 {
				lastActive = now
			}

			snap.Tabs = append(snap.Tabs, &types.Tab{
				ID:           nextID,
				WindowID:     winIdx,
				URL:          entry.URL,
				Title:        entry.Title,
				Domain:       domainOf(entry.URL),
				Favicon:      rt.Image,
				OpenedAt:     lastActive,
				LastActiveAt: lastActive,
				Pinned:       rt.Pinned,
			})
			nextID++
		}
	}

	return snap, nil
}

// ReadSessionFile reads and parses a session recovery file from the
// given profile directory. It tries recovery.jsonlz4 first (active
// session), then previous.jsonlz4 (last closed session).
func ReadSessionFile(profileDir string) (*Snapshot, error) {
	backupDir := filepath.Join(profileDir, "sessionstore-backups")
	var data []byte
	var err error
	for _, name := range []string{"recovery.jsonlz4", "previous.jsonlz4"} {
		data, err = os.ReadFile(filepath.Join(backupDir, name))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no session file found in %s", backupDir)
	}

	decompressed, err := DecompressMozLz4(data)
	if err != nil {
		return nil, fmt.Errorf("decompress session file: %w", err)
	}

	return ParseSession(decompressed, time.Now())
}
