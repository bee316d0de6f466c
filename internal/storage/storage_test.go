package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := OpenDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := db.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("value = %s", got)
	}

	// Overwrite.
	if err := db.Set("k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = db.Get("k")
	if string(got) != `{"a":2}` {
		t.Errorf("overwritten value = %s", got)
	}

	if err := db.Remove("k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, ok, err = db.Get("k")
	if err != nil {
		t.Fatalf("Get after remove: %v", err)
	}
	if ok {
		t.Error("key should be absent after Remove")
	}

	// Removing an absent key is fine.
	if err := db.Remove("k"); err != nil {
		t.Errorf("Remove absent key: %v", err)
	}
}

func TestKVGetAbsent(t *testing.T) {
	db := testDB(t)
	_, ok, err := db.Get("never-set")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("absent key reported present")
	}
}

func TestKeysPrefix(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"tab_3", "other", "tab_1", "tab_20"} {
		if err := db.Set(k, []byte("{}")); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	keys, err := db.Keys("tab_")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"tab_3", "tab_1", "tab_20"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s (insertion order)", i, keys[i], want[i])
		}
	}
}

func TestAppStateDefaults(t *testing.T) {
	db := testDB(t)

	state, err := LoadAppState(db)
	if err != nil {
		t.Fatalf("LoadAppState: %v", err)
	}
	if !state.Settings.Enabled {
		t.Error("default settings should enable prompting")
	}
	if state.Settings.MaxPromptsPerHour != 5 {
		t.Errorf("MaxPromptsPerHour = %d, want 5", state.Settings.MaxPromptsPerHour)
	}
	if state.Categorization.DailyLimit != 20 {
		t.Errorf("DailyLimit = %d, want 20", state.Categorization.DailyLimit)
	}
	if !state.Preferences.ShowNudges {
		t.Error("nudges should default on")
	}
}

func TestAppStateRoundTrip(t *testing.T) {
	db := testDB(t)

	state, _ := LoadAppState(db)
	state.Categorization.DomainRules = []types.DomainRule{{
		Domain: "a.com", CategoryID: types.CatWork, Confidence: 0.7, CreatedAt: time.Now().UTC(),
	}}
	state.CleanupCounts["2026-08-29"] = 4
	state.LastDigestDate = "2026-08-30"

	if err := SaveAppState(db, state); err != nil {
		t.Fatalf("SaveAppState: %v", err)
	}
	loaded, err := LoadAppState(db)
	if err != nil {
		t.Fatalf("LoadAppState: %v", err)
	}
	if len(loaded.Categorization.DomainRules) != 1 {
		t.Fatalf("rules lost in round trip")
	}
	if loaded.CleanupCounts["2026-08-29"] != 4 {
		t.Error("cleanup counts lost in round trip")
	}
	if loaded.LastDigestDate != "2026-08-30" {
		t.Error("digest date lost in round trip")
	}
}

func TestTabRecords(t *testing.T) {
	db := testDB(t)

	tab := &types.Tab{
		ID:           7,
		URL:          "https://example.com",
		Domain:       "example.com",
		Title:        "Example",
		LastActiveAt: time.Now().UTC().Truncate(time.Second),
		CategoryID:   types.CatWork,
	}
	if err := SaveTab(db, tab); err != nil {
		t.Fatalf("SaveTab: %v", err)
	}

	loaded, ok, err := LoadTab(db, 7)
	if err != nil || !ok {
		t.Fatalf("LoadTab: ok=%v err=%v", ok, err)
	}
	if loaded.URL != tab.URL || loaded.CategoryID != types.CatWork {
		t.Errorf("loaded tab mismatch: %+v", loaded)
	}

	tabs, err := ListTabs(db)
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	if len(tabs) != 1 {
		t.Fatalf("ListTabs = %d tabs, want 1", len(tabs))
	}

	if err := RemoveTab(db, 7); err != nil {
		t.Fatalf("RemoveTab: %v", err)
	}
	_, ok, _ = LoadTab(db, 7)
	if ok {
		t.Error("tab record should be gone after RemoveTab")
	}
}

func TestPruneTabs(t *testing.T) {
	db := testDB(t)
	for _, id := range []int{1, 2, 3} {
		if err := SaveTab(db, &types.Tab{ID: id, URL: "https://x.example"}); err != nil {
			t.Fatalf("SaveTab %d: %v", id, err)
		}
	}

	if err := PruneTabs(db, map[int]bool{2: true}); err != nil {
		t.Fatalf("PruneTabs: %v", err)
	}

	tabs, _ := ListTabs(db)
	if len(tabs) != 1 || tabs[0].ID != 2 {
		t.Errorf("expected only tab 2 to survive, got %+v", tabs)
	}
}

func TestArchive(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	items := []types.ArchiveItem{
		{ID: "nest_1", TabID: 1, URL: "https://a.com", Title: "A", Domain: "a.com", CategoryID: types.CatWork, ClosedAt: now},
		{ID: "nest_2", TabID: 2, URL: "https://b.com", Title: "B", Domain: "b.com", ClosedAt: now.Add(time.Minute)},
	}
	if err := db.InsertArchiveItems(items); err != nil {
		t.Fatalf("InsertArchiveItems: %v", err)
	}
	// Duplicate IDs are ignored.
	if err := db.InsertArchiveItems(items[:1]); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	all, err := db.ListArchive("")
	if err != nil {
		t.Fatalf("ListArchive: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("archive = %d items, want 2", len(all))
	}
	if all[0].ID != "nest_2" {
		t.Errorf("expected newest first, got %s", all[0].ID)
	}

	work, err := db.ListArchive(types.CatWork)
	if err != nil {
		t.Fatalf("ListArchive(work): %v", err)
	}
	if len(work) != 1 || work[0].ID != "nest_1" {
		t.Errorf("work filter wrong: %+v", work)
	}

	if err := db.RemoveArchiveItem("nest_1"); err != nil {
		t.Fatalf("RemoveArchiveItem: %v", err)
	}
	if err := db.RemoveArchiveItem("nest_1"); err == nil {
		t.Error("removing a missing item should error")
	}

	n, err := db.ClearArchive()
	if err != nil {
		t.Fatalf("ClearArchive: %v", err)
	}
	if n != 1 {
		t.Errorf("ClearArchive removed %d, want 1", n)
	}
}

func TestMemStoreMatchesContract(t *testing.T) {
	m := NewMemStore()

	if err := m.Set("tab_1", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("tab_2", []byte("b")); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("other", []byte("c")); err != nil {
		t.Fatal(err)
	}

	keys, _ := m.Keys("tab_")
	if len(keys) != 2 || keys[0] != "tab_1" || keys[1] != "tab_2" {
		t.Errorf("Keys = %v", keys)
	}

	v, ok, _ := m.Get("tab_1")
	if !ok || string(v) != "a" {
		t.Errorf("Get = %q, %v", v, ok)
	}

	m.Remove("tab_1")
	if _, ok, _ := m.Get("tab_1"); ok {
		t.Error("removed key still present")
	}
}
