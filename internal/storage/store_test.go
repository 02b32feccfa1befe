package storage

import (
	"os"
	"path/filepath"
	"testing"

	"coc_roster_eval/internal/app"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestSaveAndListWarSnapshots(t *testing.T) {
	store := newTestStore(t)

	snapshots := []app.WarSnapshot{
		{WarTag: "#AAA111", Season: "2026-08", FetchedAt: "2026-08-20T12:00:00Z"},
		{WarTag: "#BBB222", Season: "2026-08", FetchedAt: "2026-08-21T12:00:00Z"},
	}

	for i := range snapshots {
		if err := store.SaveWarSnapshot(&snapshots[i]); err != nil {
			t.Fatalf("Failed to save snapshot %s: %v", snapshots[i].WarTag, err)
		}
	}

	loaded, err := store.ListWarSnapshots()
	if err != nil {
		t.Fatalf("Failed to list snapshots: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(loaded))
	}

	if !store.HasWarSnapshot("#AAA111") {
		t.Error("Expected HasWarSnapshot to find #AAA111")
	}
	if !store.HasWarSnapshot("aaa111") {
		t.Error("Expected HasWarSnapshot to normalize the tag")
	}
	if store.HasWarSnapshot("#MISSING") {
		t.Error("Expected HasWarSnapshot to return false for unknown tag")
	}
}

func TestSaveWarSnapshotRequiresTag(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveWarSnapshot(&app.WarSnapshot{})
	if err == nil {
		t.Fatal("Expected error for snapshot without war tag")
	}
}

func TestListWarSnapshotsSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)

	good := app.WarSnapshot{WarTag: "#GOOD", FetchedAt: "2026-08-20T12:00:00Z"}
	if err := store.SaveWarSnapshot(&good); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	corrupt := filepath.Join(store.dataDir, "war_BROKEN.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	loaded, err := store.ListWarSnapshots()
	if err != nil {
		t.Fatalf("Expected listing to tolerate corrupt files, got %v", err)
	}

	if len(loaded) != 1 || loaded[0].WarTag != "#GOOD" {
		t.Errorf("Expected only the good snapshot, got %+v", loaded)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)

	type doc struct {
		Version int            `json:"version"`
		Values  map[string]int `json:"values"`
	}

	var missing doc
	found, err := store.GetDocument("settings", &missing)
	if err != nil {
		t.Fatalf("Expected no error for missing document, got %v", err)
	}
	if found {
		t.Fatal("Expected found=false for missing document")
	}

	original := doc{Version: 2, Values: map[string]int{"elder": 1000}}
	if err := store.PutDocument("settings", original); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}

	var loaded doc
	found, err = store.GetDocument("settings", &loaded)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if !found {
		t.Fatal("Expected found=true after put")
	}
	if loaded.Version != 2 || loaded.Values["elder"] != 1000 {
		t.Errorf("Document did not round-trip: %+v", loaded)
	}
}

func TestGetDocumentCorrupt(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.dataDir, "settings.json")
	if err := os.WriteFile(path, []byte("][ not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt document: %v", err)
	}

	var out map[string]interface{}
	_, err := store.GetDocument("settings", &out)
	if err == nil {
		t.Fatal("Expected parse error for corrupt document")
	}
}
