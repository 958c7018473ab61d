// Package store persists subsystem state as one JSON document per file.
// Absent files mean "empty default"; corrupt files are logged once and
// replaced on the next save rather than crashing the simulation.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Load reads path into v. A missing file leaves v untouched and returns
// false; a parse failure logs a warning and also leaves v untouched so
// the caller starts from its default value.
func Load(path string, v any, logger *log.Logger) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Printf("read %s: %v", path, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		if logger != nil {
			logger.Printf("corrupt %s (%v); starting from defaults", filepath.Base(path), err)
		}
		return false
	}
	return true
}

// Save writes v to path atomically: marshal, write a sibling temp file,
// then rename over the target. Saves to the same file must not overlap;
// the world loop is the only writer.
func Save(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
