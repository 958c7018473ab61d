package store

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	if err := Save(path, doc{Name: "asha", Count: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	var got doc
	if !Load(path, &got, log.New(io.Discard, "", 0)) {
		t.Fatalf("load reported missing file")
	}
	if got.Name != "asha" || got.Count != 3 {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestLoad_MissingFileLeavesDefaults(t *testing.T) {
	got := doc{Name: "default"}
	if Load(filepath.Join(t.TempDir(), "nope.json"), &got, nil) {
		t.Fatalf("load of missing file must return false")
	}
	if got.Name != "default" {
		t.Fatalf("missing file mutated value: %+v", got)
	}
}

func TestLoad_CorruptFileLeavesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := doc{Name: "default"}
	if Load(path, &got, log.New(io.Discard, "", 0)) {
		t.Fatalf("corrupt load must return false")
	}
	if got.Name != "default" {
		t.Fatalf("corrupt file mutated value: %+v", got)
	}
}

func TestSave_ReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := Save(path, doc{Name: "one"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(path, doc{Name: "two"}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	var got doc
	Load(path, &got, nil)
	if got.Name != "two" {
		t.Fatalf("latest save not visible: %+v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
