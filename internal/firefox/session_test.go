package firefox

import (
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/pierrec/lz4/v4"
)

// mozLz4Payload compresses data into the mozlz4 container format.
func mozLz4Payload(t *testing.T, original []byte) []byte {
	t.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(original)))
	n, err := lz4.CompressBlock(original, dst, nil)
	if err != nil {
		t.Fatalf("lz4.CompressBlock failed: %v", err)
	}

	payload := append([]byte{}, []byte("mozLz40\x00")...)
	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, uint32(len(original)))
	payload = append(payload, sizeBytes...)
	return append(payload, dst[:n]...)
}

func TestDecompressMozLz4(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		original := []byte(`{"windows":[{"tabs":[]}]}`)

		result, err := DecompressMozLz4(mozLz4Payload(t, original))
		if err != nil {
			t.Fatalf("DecompressMozLz4 returned error: %v", err)
		}
		if string(result) != string(original) {
			t.Errorf("expected %q, got %q", string(original), string(result))
		}
	})

	t.Run("invalid header returns error", func(t *testing.T) {
		bad := []byte("BADMAGIC\x00\x00\x00\x00some data here")
		if _, err := DecompressMozLz4(bad); err == nil {
			t.Fatal("expected error for invalid header, got nil")
		}
	})

	t.Run("too short data returns error", func(t *testing.T) {
		if _, err := DecompressMozLz4([]byte("mozLz40")); err == nil {
			t.Fatal("expected error for too-short data, got nil")
		}
	})
}

func TestParseSession(t *testing.T) {
	session := map[string]interface{}{
		"windows": []map[string]interface{}{
			{
				"tabs": []map[string]interface{}{
					{
						"entries": []map[string]interface{}{
							{"url": "https://canvas.example.edu/courses", "title": "Courses"},
						},
						"index":        1,
						"lastAccessed": 1707654321000,
						"image":        "https://canvas.example.edu/favicon.ico",
						"pinned":       true,
					},
					{
						"entries": []map[string]interface{}{
							{"url": "https://old.example.com", "title": "Old"},
							{"url": "https://example.com/current", "title": "Current"},
						},
						"index": 2,
					},
					{
						"entries": []map[string]interface{}{},
					},
				},
			},
		},
	}
	data, err := json.Marshal(session)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	snap, err := ParseSession(data, now)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}

	if len(snap.Tabs) != 2 {
		t.Fatalf("expected 2 tabs (entry-less tab skipped), got %d", len(snap.Tabs))
	}

	first := snap.Tabs[0]
	if first.URL != "https://canvas.example.edu/courses" {
		t.Errorf("first tab URL = %s", first.URL)
	}
	if first.Domain != "canvas.example.edu" {
		t.Errorf("first tab domain = %s", first.Domain)
	}
	if !first.Pinned {
		t.Error("first tab should be pinned")
	}
	if !first.LastActiveAt.Equal(time.UnixMilli(1707654321000)) {
		t.Errorf("first tab LastActiveAt = %v", first.LastActiveAt)
	}
	if first.ID != 1 {
		t.Errorf("tab IDs should be sequential from 1, got %d", first.ID)
	}

	second := snap.Tabs[1]
	if second.URL != "https://example.com/current" {
		t.Errorf("index should pick the current entry, got %s", second.URL)
	}
	if !second.LastActiveAt.Equal(now) {
		t.Errorf("missing lastAccessed should default to now, got %v", second.LastActiveAt)
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page", "example.com"},
		{"https://sub.example.com:8080/x", "sub.example.com"},
		{"about:blank", "about:blank"},
		{"%%%not-a-url", "%%%not-a-url"},
	}
	for _, tt := range tests {
		if got := domainOf(tt.input); got != tt.expected {
			t.Errorf("domainOf(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
