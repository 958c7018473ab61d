package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"driftworld/internal/sim/world"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	for i := uint64(1); i <= 3; i++ {
		if err := l.WriteTick(world.TickLogEntry{Tick: i, Agents: 2, Alive: 2, Weather: "clear"}); err != nil {
			t.Fatalf("write tick %d: %v", i, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "ticks", "ticks-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files: %v (%v)", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var entries []world.TickLogEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e world.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 3 || entries[0].Tick != 1 || entries[2].Tick != 3 {
		t.Fatalf("entries: %+v", entries)
	}
}
