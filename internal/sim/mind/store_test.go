package mind

import (
	"fmt"
	"reflect"
	"testing"

	"driftworld/internal/sim/grid"
)

func TestEnsure_PersonalityIsDeterministicInID(t *testing.T) {
	a := NewStore().Ensure("agent-123")
	b := NewStore().Ensure("agent-123")
	if !reflect.DeepEqual(a.Personality, b.Personality) {
		t.Fatalf("personalities diverged:\n%+v\n%+v", a.Personality, b.Personality)
	}
	c := NewStore().Ensure("agent-456")
	if reflect.DeepEqual(a.Personality, c.Personality) {
		t.Fatalf("different ids produced identical personalities")
	}
}

func TestEnsure_ShapeAndIdempotence(t *testing.T) {
	s := NewStore()
	m := s.Ensure("x")
	if m != s.Ensure("x") {
		t.Fatalf("Ensure must return the same mind")
	}
	if n := len(m.Personality.Traits); n < 2 || n > 3 {
		t.Fatalf("trait count = %d", n)
	}
	found := false
	for _, tp := range temperaments {
		if m.Personality.Temperament == tp {
			found = true
		}
	}
	if !found {
		t.Fatalf("temperament %q not from the pool", m.Personality.Temperament)
	}
	if len(m.Personality.Values) != 2 || m.Personality.Ambition == "" {
		t.Fatalf("personality shape: %+v", m.Personality)
	}
	if m.CurrentAction != ActIdle || m.Mood != "neutral" {
		t.Fatalf("fresh mind defaults: %+v", m)
	}
}

func TestRemember_RingEvictsOldest(t *testing.T) {
	m := &Mind{}
	for i := 0; i < 40; i++ {
		m.Remember(uint64(i), fmt.Sprintf("event %d", i))
	}
	if len(m.Memory.Short) != 30 {
		t.Fatalf("ring len = %d, want 30", len(m.Memory.Short))
	}
	if m.Memory.Short[0].Text != "event 10" || m.Memory.Short[29].Text != "event 39" {
		t.Fatalf("ring contents: first=%q last=%q", m.Memory.Short[0].Text, m.Memory.Short[29].Text)
	}
	recent := m.RecentMemories(5)
	if len(recent) != 5 || recent[4].Text != "event 39" {
		t.Fatalf("recent memories: %+v", recent)
	}
}

func TestKnowsZone_ThreeVisitThreshold(t *testing.T) {
	m := &Mind{Memory: Memory{Visited: map[grid.Zone]int{}}}
	m.VisitZone(grid.ZoneForest)
	m.VisitZone(grid.ZoneForest)
	if m.KnowsZone(grid.ZoneForest) {
		t.Fatalf("two visits must not count as known")
	}
	m.VisitZone(grid.ZoneForest)
	if !m.KnowsZone(grid.ZoneForest) {
		t.Fatalf("three visits must count as known")
	}
}

func TestIntent_Expired(t *testing.T) {
	in := &Intent{StartedTick: 10, MaxTicks: 30}
	if in.Expired(40) {
		t.Fatalf("intent at its budget is still live")
	}
	if !in.Expired(41) {
		t.Fatalf("intent past its budget must expire")
	}
}

func TestNoteRelationship_CachesNameAndClamps(t *testing.T) {
	m := &Mind{Relationships: map[string]*Relationship{}}
	m.NoteRelationship("b", "Bram", 150, 1)
	r := m.Relationships["b"]
	if r.Name != "Bram" || r.Score != 100 {
		t.Fatalf("relationship: %+v", r)
	}
	m.NoteRelationship("b", "Bram the Bold", -1, 1)
	if r.Name != "Bram the Bold" || r.Score != 99 || r.Interactions != 2 {
		t.Fatalf("relationship after update: %+v", r)
	}
}
