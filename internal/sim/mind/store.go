package mind

import (
	"hash/fnv"
	"log"
	"math/rand"
	"time"

	"driftworld/internal/persistence/store"
	"driftworld/internal/sim/grid"
)

var traitPool = []string{
	"curious", "cautious", "bold", "creative", "social", "solitary",
	"patient", "restless", "generous", "greedy", "stoic", "dramatic",
	"practical", "dreamy", "competitive", "nurturing",
}

var temperaments = []string{
	"calm", "restless", "methodical", "impulsive", "cheerful", "brooding",
}

var valuePool = []string{
	"knowledge", "friendship", "wealth", "freedom", "safety", "beauty",
	"craftsmanship", "adventure", "tradition", "harmony", "power", "discovery",
}

var ambitions = []string{
	"map the whole world",
	"master every craft",
	"befriend everyone",
	"build something that outlasts them",
	"uncover the world's secrets",
	"amass a great hoard",
	"become a legendary teacher",
	"taste everything edible",
	"never stay in one place",
	"keep everyone safe",
}

// Store holds per-agent minds, created lazily and deterministically from
// the agent id.
type Store struct {
	byID map[string]*Mind

	dirty      bool
	lastChange time.Time
}

func NewStore() *Store {
	return &Store{byID: map[string]*Mind{}}
}

// Ensure returns the mind for an agent, creating it on first use. The
// personality is a pure function of the id: the id seeds a private PRNG,
// so repeated calls (and restarts) produce byte-identical personalities.
func (s *Store) Ensure(agentID string) *Mind {
	if m, ok := s.byID[agentID]; ok {
		return m
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(agentID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	nTraits := 2 + rng.Intn(2)
	m := &Mind{
		Personality: Personality{
			Traits:      sampleStrings(rng, traitPool, nTraits),
			Temperament: temperaments[rng.Intn(len(temperaments))],
			Values:      sampleStrings(rng, valuePool, 2),
			Ambition:    ambitions[rng.Intn(len(ambitions))],
		},
		Goals:         []string{},
		CurrentAction: ActIdle,
		Mood:          "neutral",
		Memory: Memory{
			Visited:  map[grid.Zone]int{},
			Gathered: map[string]int{},
			Lessons:  []string{},
		},
		Relationships: map[string]*Relationship{},
	}
	s.byID[agentID] = m
	s.MarkDirty()
	return m
}

func (s *Store) Get(agentID string) *Mind { return s.byID[agentID] }

func (s *Store) MarkDirty() {
	s.dirty = true
	s.lastChange = time.Now()
}

// sampleStrings draws n distinct entries in pool order position, keeping
// the draw deterministic in the PRNG stream.
func sampleStrings(rng *rand.Rand, pool []string, n int) []string {
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

// Load rehydrates minds from agent-minds.json.
func (s *Store) Load(path string, logger *log.Logger) {
	snap := map[string]*Mind{}
	if !store.Load(path, &snap, logger) {
		return
	}
	for id, m := range snap {
		if m.Memory.Visited == nil {
			m.Memory.Visited = map[grid.Zone]int{}
		}
		if m.Memory.Gathered == nil {
			m.Memory.Gathered = map[string]int{}
		}
		if m.Relationships == nil {
			m.Relationships = map[string]*Relationship{}
		}
		s.byID[id] = m
	}
}

const saveDebounce = 5 * time.Second

// MaybeSave persists the store when it is dirty and the last change has
// settled for the debounce window. Returns whether a write happened.
func (s *Store) MaybeSave(path string, now time.Time) (bool, error) {
	if !s.dirty || now.Sub(s.lastChange) < saveDebounce {
		return false, nil
	}
	if err := s.Save(path); err != nil {
		return false, err
	}
	return true, nil
}

// Save persists unconditionally (shutdown and the periodic flush).
func (s *Store) Save(path string) error {
	if err := store.Save(path, s.byID); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
