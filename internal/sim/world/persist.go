package world

import (
	"path/filepath"

	"driftworld/internal/persistence/store"
)

type tickFile struct {
	Tick uint64 `json:"tick"`
}

func (w *World) path(name string) string {
	return filepath.Join(w.dataDir, name)
}

func (w *World) loadAll() {
	var tf tickFile
	if store.Load(w.path("tick.json"), &tf, w.logger) {
		w.tick.Store(tf.Tick)
	}
	w.agents.Load(w.path("agents.json"), w.logger)
	w.minds.Load(w.path("agent-minds.json"), w.logger)
	w.know.Load(w.path("knowledge.json"), w.logger)
	store.Load(w.path("collective-projects.json"), w.projects, w.logger)
	store.Load(w.path("achievements.json"), w.achieve, w.logger)
	if w.achieve.ByAgent == nil {
		w.achieve.ByAgent = map[string]map[string]bool{}
	}
}

// persistAll flushes every dirty store. Each file write is atomic
// (temp file then rename); a crash mid-flush loses at most the ticks
// since the previous boundary.
func (w *World) persistAll() {
	var tf = tickFile{Tick: w.tick.Load()}
	if err := store.Save(w.path("tick.json"), tf); err != nil {
		w.logger.Printf("persist tick: %v", err)
	}
	if w.agents.Dirty() {
		if err := w.agents.Save(w.path("agents.json")); err != nil {
			w.logger.Printf("persist agents: %v", err)
		} else {
			w.agents.ClearDirty()
		}
	}
	if err := w.minds.Save(w.path("agent-minds.json")); err != nil {
		w.logger.Printf("persist minds: %v", err)
	}
	if w.know.Dirty() {
		if err := w.know.Save(w.path("knowledge.json")); err != nil {
			w.logger.Printf("persist knowledge: %v", err)
		} else {
			w.know.ClearDirty()
		}
	}
	if err := store.Save(w.path("collective-projects.json"), w.projects); err != nil {
		w.logger.Printf("persist projects: %v", err)
	}
	if w.achieve.dirty {
		if err := store.Save(w.path("achievements.json"), w.achieve); err != nil {
			w.logger.Printf("persist achievements: %v", err)
		} else {
			w.achieve.dirty = false
		}
	}
}
