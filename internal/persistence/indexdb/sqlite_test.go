package indexdb

import (
	"path/filepath"
	"testing"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/world"
)

func TestSQLiteIndex_NewsSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := uint64(1); i <= 3; i++ {
		idx.IndexNews(protocol.NewsItem{
			Tick: i, Type: "narrative", Name: "Asha",
			Message: "event", Zone: "grass",
		})
	}
	_ = idx.WriteTick(world.TickLogEntry{Tick: 3, Agents: 1, Alive: 1, Weather: "clear"})

	// Close flushes the writer's open transaction.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	re, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer re.Close()

	items, err := re.NewsSince(0, 10)
	if err != nil {
		t.Fatalf("news since: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("reopened index holds %d news rows, want 3", len(items))
	}
	// Newest insert first.
	if items[0].Tick != 3 || items[2].Tick != 1 {
		t.Fatalf("news order: %+v", items)
	}
}

func TestSQLiteIndex_DropsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Writes after close are silent no-ops, not panics.
	idx.IndexNews(protocol.NewsItem{Tick: 9, Type: "narrative", Message: "late"})
	if err := idx.WriteTick(world.TickLogEntry{Tick: 9}); err != nil {
		t.Fatalf("write tick after close: %v", err)
	}
}
