package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matthewharwood/arenic-replay/internal/sim"
)

func testTimeline(t *testing.T, actor string) *sim.Timeline {
	t.Helper()
	l := sim.NewLog(actor)
	cmds := []sim.Command{
		sim.NewMove(10, actor, sim.DirEast),
		sim.NewCast(40, actor, 2, &sim.GridPoint{X: 8, Y: 3}),
		sim.NewChangeArena(70, actor, 1, 2),
	}
	for _, c := range cmds {
		if err := l.Append(c); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}
	return l.Seal(120, "hunter", 42)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	original := testTimeline(t, "alice")

	id, err := store.SaveTimeline(original)
	if err != nil {
		t.Fatalf("SaveTimeline() failed: %v", err)
	}

	loaded, err := store.LoadTimeline(id)
	if err != nil {
		t.Fatalf("LoadTimeline() failed: %v", err)
	}
	if !loaded.Equal(original) {
		t.Error("loaded timeline differs from the saved one")
	}
	if loaded.Fingerprint() != original.Fingerprint() {
		t.Errorf("fingerprint = %x, want %x", loaded.Fingerprint(), original.Fingerprint())
	}
}

func TestStoreListMetadata(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveTimeline(testTimeline(t, "alice")); err != nil {
		t.Fatalf("SaveTimeline() failed: %v", err)
	}
	if _, err := store.SaveTimeline(testTimeline(t, "bob")); err != nil {
		t.Fatalf("SaveTimeline() failed: %v", err)
	}

	entries, err := store.ListTimelines()
	if err != nil {
		t.Fatalf("ListTimelines() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListTimelines() returned %d entries, want 2", len(entries))
	}
	// Newest first
	if entries[0].Actor != "bob" || entries[1].Actor != "alice" {
		t.Errorf("entries ordered %s, %s; want bob, alice", entries[0].Actor, entries[1].Actor)
	}
	if entries[0].Duration != 120 {
		t.Errorf("Duration = %d, want 120", entries[0].Duration)
	}
	if entries[0].Topology != 42 {
		t.Errorf("Topology = %d, want 42", entries[0].Topology)
	}

	byActor, err := store.TimelinesByActor("alice")
	if err != nil {
		t.Fatalf("TimelinesByActor() failed: %v", err)
	}
	if len(byActor) != 1 || byActor[0].Actor != "alice" {
		t.Errorf("TimelinesByActor(alice) = %v, want one alice entry", byActor)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.LoadTimeline(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadTimeline(999) = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)
	id, err := store.SaveTimeline(testTimeline(t, "alice"))
	if err != nil {
		t.Fatalf("SaveTimeline() failed: %v", err)
	}

	if err := store.DeleteTimeline(id); err != nil {
		t.Fatalf("DeleteTimeline() failed: %v", err)
	}
	if _, err := store.LoadTimeline(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadTimeline() after delete = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTimeline(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTimeline() twice = %v, want ErrNotFound", err)
	}
}

func TestStoreDetectsTamperedBlob(t *testing.T) {
	store := openTestStore(t)
	id, err := store.SaveTimeline(testTimeline(t, "alice"))
	if err != nil {
		t.Fatalf("SaveTimeline() failed: %v", err)
	}

	// Flip a byte deep in the stored payload
	if _, err := store.db.Exec(
		`UPDATE timelines SET data = CAST(substr(data, 1, 40) || X'FF' || substr(data, 42) AS BLOB) WHERE id = ?`,
		id,
	); err != nil {
		t.Fatalf("tamper update failed: %v", err)
	}

	if _, err := store.LoadTimeline(id); !errors.Is(err, sim.ErrTimelineCorrupted) {
		t.Errorf("LoadTimeline(tampered) = %v, want ErrTimelineCorrupted", err)
	}
}
