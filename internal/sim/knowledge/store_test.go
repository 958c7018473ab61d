package knowledge

import (
	"errors"
	"testing"
	"time"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/tuning"
)

func testStore() *Store {
	return NewStore(tuning.Defaults().Knowledge, 144)
}

func testAgent(id, name string) *agent.Agent {
	return &agent.Agent{ID: id, Name: name, Zone: grid.ZoneGrass, HP: 100, Energy: 100, Alive: true}
}

func TestTeach_ChainDegradesMasteryPerHop(t *testing.T) {
	s := testStore()
	a := testAgent("a", "Asha")
	b := testAgent("b", "Bram")
	c := testAgent("c", "Cole")
	d := testAgent("d", "Dara")

	const frag = "The first fire was traded for a song."
	if !s.GrantLore(a.ID, frag, 1) {
		t.Fatalf("GrantLore failed")
	}
	now := time.Now()

	steps := []struct {
		teacher, student *agent.Agent
		mastery          float64
		gen              int
	}{
		{a, b, 0.8, 1},
		{b, c, 0.64, 2},
		{c, d, 0.512, 3},
	}
	for _, st := range steps {
		res, err := s.Teach(st.teacher, st.student, TypeLore, frag, 10, now)
		if err != nil {
			t.Fatalf("teach %s->%s: %v", st.teacher.Name, st.student.Name, err)
		}
		if res.StudentMastery != st.mastery || res.Generation != st.gen {
			t.Fatalf("teach %s->%s: mastery %.3f gen %d, want %.3f gen %d",
				st.teacher.Name, st.student.Name, res.StudentMastery, res.Generation, st.mastery, st.gen)
		}
		row := s.Ensure(st.student.ID).Row(TypeLore, frag)
		if row == nil || row.Value != st.mastery || row.Generation != st.gen || row.Source != SourceTaught {
			t.Fatalf("student row after teach: %+v", row)
		}
	}

	// The original holder keeps full mastery at generation zero. Practice
	// on teach nudges the value up by 0.01.
	rootRow := s.Ensure(a.ID).Row(TypeLore, frag)
	if rootRow.Generation != 0 || rootRow.Value < 1.0 {
		t.Fatalf("teacher row degraded: %+v", rootRow)
	}
	if a.Energy != 90 || b.Energy != 95-10 {
		t.Fatalf("teach energy costs: teacher=%.0f relay=%.0f", a.Energy, b.Energy)
	}
}

func TestTeach_Eligibility(t *testing.T) {
	s := testStore()
	a := testAgent("a", "Asha")
	b := testAgent("b", "Bram")
	const frag = "Mountains remember every footstep."
	s.GrantLore(a.ID, frag, 1)
	now := time.Now()

	if _, err := s.Teach(a, a, TypeLore, frag, 1, now); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("self-teach: %v, want ErrNotEligible", err)
	}
	b.Zone = grid.ZoneForest
	if _, err := s.Teach(a, b, TypeLore, frag, 1, now); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("cross-zone teach: %v, want ErrNotEligible", err)
	}
	b.Zone = grid.ZoneGrass

	if _, err := s.Teach(a, b, TypeLore, "unknown fragment", 1, now); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown knowledge: %v, want ErrUnknownItem", err)
	}

	b.Energy = 5
	if _, err := s.Teach(a, b, TypeLore, frag, 1, now); !errors.Is(err, ErrLowEnergy) {
		t.Fatalf("tired student: %v, want ErrLowEnergy", err)
	}
	b.Energy = 100

	if _, err := s.Teach(a, b, TypeLore, frag, 1, now); err != nil {
		t.Fatalf("teach: %v", err)
	}
	if _, err := s.Teach(a, b, TypeLore, frag, 2, now); !errors.Is(err, ErrAlreadyKnown) {
		t.Fatalf("re-teach known: %v, want ErrAlreadyKnown", err)
	}

	s.GrantLore(a.ID, "Wolves will not cross a line of ash.", 2)
	c := testAgent("c", "Cole")
	if _, err := s.Teach(a, c, TypeLore, "Wolves will not cross a line of ash.", 3, now); !errors.Is(err, ErrOnCooldown) {
		t.Fatalf("teach within cooldown: %v, want ErrOnCooldown", err)
	}
}

func TestDecayTick_ForgetCascadesEntries(t *testing.T) {
	cfg := tuning.Defaults().Knowledge
	cfg.DecayBase = 0.5
	cfg.IdleGameDays = 1
	s := NewStore(cfg, 10)

	const frag = "Every cave connects, if you go deep enough."
	s.GrantLore("a", frag, 0)

	// Not yet idle past a game-day: nothing decays.
	if got := s.DecayTick(5); len(got) != 0 {
		t.Fatalf("premature decay: %v", got)
	}
	if got := s.DecayTick(11); len(got) != 0 {
		t.Fatalf("first idle decay should not forget yet: %v", got)
	}
	forgotten := s.DecayTick(12)
	if len(forgotten) != 1 || forgotten[0].Type != TypeLore || forgotten[0].Key != frag {
		t.Fatalf("forgotten = %v", forgotten)
	}
	k := s.Ensure("a")
	if k.Knows(TypeLore, frag) || len(k.LoreFragments) != 0 {
		t.Fatalf("forgotten lore still present: %+v", k)
	}
}

func TestInscribeAndReadScroll(t *testing.T) {
	s := testStore()
	a := testAgent("a", "Asha")
	b := testAgent("b", "Bram")
	const frag = "Scrolls written in rain-ink never truly dry."
	s.GrantLore(a.ID, frag, 1)
	a.AddItem("Ancient Scroll", 1, 28)
	a.AddItem("Ink Vial", 1, 28)

	it, err := s.Inscribe(a, TypeLore, frag, 28, 5)
	if err != nil {
		t.Fatalf("inscribe: %v", err)
	}
	if it.ScrollData == nil || it.ScrollData.Mastery != 0.7 || it.ScrollData.Generation != 1 {
		t.Fatalf("scroll payload: %+v", it.ScrollData)
	}
	if it.ScrollData.InscribedBy != "Asha" {
		t.Fatalf("inscribed by %q", it.ScrollData.InscribedBy)
	}
	if a.FindItem("Ancient Scroll") != nil || a.FindItem("Ink Vial") != nil {
		t.Fatalf("materials not consumed: %+v", a.Inventory)
	}
	if a.Energy != 88 {
		t.Fatalf("inscribe energy = %.0f, want 88", a.Energy)
	}

	// Hand the scroll over and read it.
	for i, inv := range a.Inventory {
		if inv == it {
			a.RemoveItemAt(i)
			break
		}
	}
	b.AddItemEntry(it, 28)
	if err := s.ReadScroll(b, it, 6); err != nil {
		t.Fatalf("read scroll: %v", err)
	}
	row := s.Ensure(b.ID).Row(TypeLore, frag)
	if row == nil || row.Value != 0.7 || row.Generation != 1 || row.Source != SourceScroll {
		t.Fatalf("reader row: %+v", row)
	}
	if b.FindItem("Inscribed Scroll") != nil {
		t.Fatalf("scroll not consumed on read")
	}

	// Re-reading known knowledge preserves the scroll.
	c := testAgent("c", "Cole")
	s.GrantLore(c.ID, frag, 1)
	it2 := &agent.Item{Name: "Inscribed Scroll", ScrollData: &agent.ScrollData{
		KnowledgeType: TypeLore, KnowledgeKey: frag, Mastery: 0.7, Generation: 1,
	}}
	c.AddItemEntry(it2, 28)
	if err := s.ReadScroll(c, it2, 7); !errors.Is(err, ErrAlreadyKnown) {
		t.Fatalf("read known scroll: %v, want ErrAlreadyKnown", err)
	}
	if c.FindItem("Inscribed Scroll") == nil {
		t.Fatalf("known-knowledge read must keep the scroll")
	}
}

func TestInscribe_FailuresLeaveStateUnchanged(t *testing.T) {
	s := testStore()
	a := testAgent("a", "Asha")
	const frag = "The tide once failed for a whole season."
	s.GrantLore(a.ID, frag, 1)
	a.AddItem("Ancient Scroll", 1, 28)

	if _, err := s.Inscribe(a, TypeLore, frag, 28, 2); !errors.Is(err, ErrNoMaterials) {
		t.Fatalf("missing ink: %v, want ErrNoMaterials", err)
	}
	if len(a.Inventory) != 1 || a.Energy != 100 {
		t.Fatalf("failed inscribe mutated agent: inv=%d energy=%.0f", len(a.Inventory), a.Energy)
	}

	a.AddItem("Ink Vial", 1, 28)
	if _, err := s.Inscribe(a, TypeLore, frag, 0, 2); err == nil {
		t.Fatalf("expected inventory-full rejection")
	}
	if a.FindItem("Ancient Scroll") == nil || a.FindItem("Ink Vial") == nil || a.Energy != 100 {
		t.Fatalf("full-inventory inscribe consumed materials")
	}
}

func TestObserved_OncePerKnowledge(t *testing.T) {
	s := testStore()
	actorK := s.Ensure("actor")
	s.GrantRecipe("actor", "hearty stew", 1)

	if !s.Observed("watcher", actorK, TypeRecipe, "hearty stew", 2) {
		t.Fatalf("first observation should land")
	}
	row := s.Ensure("watcher").Row(TypeRecipe, "hearty stew")
	if row == nil || row.Value != 0.3 || row.Generation != 1 || row.Source != SourceObserved {
		t.Fatalf("observed row: %+v", row)
	}
	if s.Observed("watcher", actorK, TypeRecipe, "hearty stew", 3) {
		t.Fatalf("second observation of known knowledge must not land")
	}
}

func TestObserveChance_ScalesWithProficiency(t *testing.T) {
	if c := ObserveChance(0); c != 0.4 {
		t.Fatalf("base chance = %.2f", c)
	}
	if c := ObserveChance(100); c != 0.9 {
		t.Fatalf("capped chance = %.2f", c)
	}
}

func TestTrackZoneAction_ThresholdHitsExactlyOnce(t *testing.T) {
	s := testStore()
	for i := 1; i <= 4; i++ {
		if got := s.TrackZoneAction("a", grid.ZoneGrass, "gather", uint64(i)); len(got) != 0 {
			t.Fatalf("secret before threshold at count %d: %v", i, got)
		}
	}
	got := s.TrackZoneAction("a", grid.ZoneGrass, "gather", 5)
	if len(got) != 1 || got[0].Threshold != 5 {
		t.Fatalf("threshold discovery = %v", got)
	}
	if again := s.TrackZoneAction("a", grid.ZoneGrass, "gather", 6); len(again) != 0 {
		t.Fatalf("past-threshold rediscovery: %v", again)
	}
	k := s.Ensure("a")
	if len(k.ZoneSecrets[grid.ZoneGrass]) != 1 {
		t.Fatalf("zone secrets = %v", k.ZoneSecrets)
	}
}
