package agent

import (
	"log"
	"sort"

	"driftworld/internal/persistence/store"
)

// Load rehydrates the store from agents.json. Relationship maps come
// back as plain objects and re-materialize naturally; insertion order is
// reconstructed by birth tick so tick iteration stays stable across
// restarts.
func (s *Store) Load(path string, logger *log.Logger) {
	snap := map[string]*Agent{}
	if !store.Load(path, &snap, logger) {
		return
	}
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ai, aj := snap[ids[i]], snap[ids[j]]
		if ai.TicksBorn != aj.TicksBorn {
			return ai.TicksBorn < aj.TicksBorn
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		a := snap[id]
		a.initDefaults()
		s.MigratePosition(a)
		s.byID[id] = a
		s.order = append(s.order, id)
	}
}

// Save writes the full store to agents.json with a single atomic
// replace.
func (s *Store) Save(path string) error {
	snap := make(map[string]*Agent, len(s.byID))
	for id, a := range s.byID {
		snap[id] = a
	}
	if err := store.Save(path, snap); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
