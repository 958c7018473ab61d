package knowledge

import (
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"driftworld/internal/persistence/store"
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/tuning"
)

const (
	teacherEnergyMin  = 15
	studentEnergyMin  = 10
	teachEnergyCost   = 10
	studentEnergyCost = 5
	inscribeEnergyMin = 12

	scrollItemName   = "Inscribed Scroll"
	ancientScroll    = "Ancient Scroll"
	inkVial          = "Ink Vial"
	scrollDamageStep = 0.1
)

var (
	ErrNotEligible  = errors.New("teaching requirements not met")
	ErrOnCooldown   = errors.New("teacher is on cooldown")
	ErrUnknownItem  = errors.New("knowledge not held")
	ErrAlreadyKnown = errors.New("already known")
	ErrNoMaterials  = errors.New("missing materials")
	ErrLowEnergy    = errors.New("not enough energy")
)

// Store keeps every agent's knowledge and applies the propagation rules.
type Store struct {
	byID map[string]*AgentKnowledge
	cfg  tuning.Knowledge

	ticksPerDay uint64

	dirty bool
}

func NewStore(cfg tuning.Knowledge, ticksPerDay uint64) *Store {
	if ticksPerDay == 0 {
		ticksPerDay = 144
	}
	return &Store{
		byID:        map[string]*AgentKnowledge{},
		cfg:         cfg,
		ticksPerDay: ticksPerDay,
	}
}

func (s *Store) Ensure(agentID string) *AgentKnowledge {
	k := s.byID[agentID]
	if k == nil {
		k = newAgentKnowledge()
		s.byID[agentID] = k
		s.dirty = true
	}
	return k
}

func (s *Store) Dirty() bool  { return s.dirty }
func (s *Store) ClearDirty()  { s.dirty = false }

// TrackZoneAction counts an action in a zone and returns any secrets
// whose threshold the new count hit exactly. Re-entering a count past
// the threshold never re-discovers.
func (s *Store) TrackZoneAction(agentID string, z grid.Zone, action string, nowTick uint64) []ZoneSecret {
	k := s.Ensure(agentID)
	counts := k.ZoneCounts[z]
	if counts == nil {
		counts = map[string]int{}
		k.ZoneCounts[z] = counts
	}
	counts[action]++
	s.dirty = true

	var discovered []ZoneSecret
	for _, sec := range SecretsFor(z) {
		if sec.Action != action || sec.Threshold != counts[action] {
			continue
		}
		key := string(z) + "/" + sec.Text
		if k.Knows(TypeZoneSecret, key) {
			continue
		}
		_ = k.learn(TypeZoneSecret, key, 1.0, 0, SourceDiscovered, nowTick)
		discovered = append(discovered, sec)
	}
	return discovered
}

// GrantLore teaches a lore fragment at full mastery (used by explore
// discoveries), returning false if already known.
func (s *Store) GrantLore(agentID, fragment string, nowTick uint64) bool {
	k := s.Ensure(agentID)
	if k.Knows(TypeLore, fragment) {
		return false
	}
	_ = k.learn(TypeLore, fragment, 1.0, 0, SourceDiscovered, nowTick)
	s.dirty = true
	return true
}

// GrantRecipe records a discovered recipe at full mastery.
func (s *Store) GrantRecipe(agentID, recipeID string, nowTick uint64) bool {
	k := s.Ensure(agentID)
	if k.Knows(TypeRecipe, recipeID) {
		return false
	}
	_ = k.learn(TypeRecipe, recipeID, 1.0, 0, SourceDiscovered, nowTick)
	s.dirty = true
	return true
}

// truncate3 floors a mastery value to three decimals so transfer chains
// are reproducible across platforms.
func truncate3(v float64) float64 { return math.Floor(v*1000) / 1000 }

type TeachResult struct {
	Type           string
	Key            string
	StudentMastery float64
	Generation     int
}

// Teach transfers one piece of knowledge. The student receives the
// teacher's mastery degraded by the teach factor, at generation+1.
func (s *Store) Teach(teacher, student *agent.Agent, typ, key string, nowTick uint64, now time.Time) (TeachResult, error) {
	if teacher == nil || student == nil || teacher.ID == student.ID {
		return TeachResult{}, ErrNotEligible
	}
	if !teacher.Alive || !student.Alive {
		return TeachResult{}, ErrNotEligible
	}
	if teacher.Zone != student.Zone {
		return TeachResult{}, ErrNotEligible
	}
	if teacher.Energy < teacherEnergyMin || student.Energy < studentEnergyMin {
		return TeachResult{}, ErrLowEnergy
	}
	tk := s.Ensure(teacher.ID)
	if now.Unix() < tk.TeachCooldownUntil {
		return TeachResult{}, ErrOnCooldown
	}
	row := tk.Row(typ, key)
	if row == nil {
		return TeachResult{}, ErrUnknownItem
	}
	sk := s.Ensure(student.ID)
	if sk.Knows(typ, key) {
		return TeachResult{}, ErrAlreadyKnown
	}

	mastery := truncate3(row.Value * s.cfg.TeachFactor)
	gen := row.Generation + 1
	if err := sk.learn(typ, key, mastery, gen, SourceTaught, nowTick); err != nil {
		return TeachResult{}, err
	}

	teacher.ApplyEnergy(-teachEnergyCost)
	student.ApplyEnergy(-studentEnergyCost)
	tk.TeachCooldownUntil = now.Add(time.Duration(s.cfg.TeachCooldownSecs) * time.Second).Unix()
	tk.TeachCount++
	tk.Practice(typ, key, nowTick)
	s.dirty = true
	return TeachResult{Type: typ, Key: key, StudentMastery: mastery, Generation: gen}, nil
}

// Inscribe burns an Ancient Scroll and an Ink Vial into an Inscribed
// Scroll carrying the knowledge at a further-degraded mastery.
func (s *Store) Inscribe(a *agent.Agent, typ, key string, inventoryCap int, nowTick uint64) (*agent.Item, error) {
	if a.Energy < inscribeEnergyMin {
		return nil, ErrLowEnergy
	}
	k := s.Ensure(a.ID)
	row := k.Row(typ, key)
	if row == nil {
		return nil, ErrUnknownItem
	}
	paper := a.FindItem(ancientScroll)
	ink := a.FindItem(inkVial)
	if paper == nil || ink == nil {
		return nil, ErrNoMaterials
	}

	// Reject before spending anything: the finished scroll must fit in
	// the slots left after the consumed materials drop out.
	freed := 0
	if paper.Quantity <= 1 {
		freed++
	}
	if ink.Quantity <= 1 {
		freed++
	}
	if len(a.Inventory)-freed >= inventoryCap {
		return nil, errors.New("inventory full")
	}
	a.ConsumeItem(ancientScroll)
	a.ConsumeItem(inkVial)

	it := &agent.Item{
		ID:   uuid.NewString(),
		Name: scrollItemName,
		Properties: map[string]float64{
			"flammability": 8,
			"organic":      0.8,
		},
		ScrollData: &agent.ScrollData{
			KnowledgeType: typ,
			KnowledgeKey:  key,
			Mastery:       truncate3(row.Value * s.cfg.InscribeFactor),
			Generation:    row.Generation + 1,
			InscribedBy:   a.Name,
		},
	}
	a.AddItemEntry(it, inventoryCap)
	a.ApplyEnergy(-inscribeEnergyMin)
	k.Practice(typ, key, nowTick)
	s.dirty = true
	return it, nil
}

// ReadScroll learns the scroll's knowledge at the pre-degraded mastery
// it carries and consumes the scroll. Already-known knowledge preserves
// the scroll.
func (s *Store) ReadScroll(a *agent.Agent, it *agent.Item, nowTick uint64) error {
	if it == nil || it.ScrollData == nil {
		return ErrUnknownItem
	}
	k := s.Ensure(a.ID)
	sd := it.ScrollData
	if k.Knows(sd.KnowledgeType, sd.KnowledgeKey) {
		return ErrAlreadyKnown
	}
	if err := k.learn(sd.KnowledgeType, sd.KnowledgeKey, sd.Mastery, sd.Generation, SourceScroll, nowTick); err != nil {
		return err
	}
	for i, inv := range a.Inventory {
		if inv == it {
			a.RemoveItemAt(i)
			break
		}
	}
	s.dirty = true
	return nil
}

type Forgotten struct {
	AgentID string
	Type    string
	Key     string
}

// DecayTick ages every mastery row. Rows idle past the configured number
// of game-days lose value faster at higher generations; rows dropping
// below the forget floor are deleted with their entries cascade-removed.
func (s *Store) DecayTick(nowTick uint64) []Forgotten {
	idleTicks := uint64(s.cfg.IdleGameDays) * s.ticksPerDay
	var forgotten []Forgotten

	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		k := s.byID[id]
		var drop []string
		for key, row := range k.Mastery {
			if nowTick-row.LastPracticed <= idleTicks {
				continue
			}
			row.Value -= s.cfg.DecayBase * (1 + s.cfg.DecayGenWeight*float64(row.Generation))
			s.dirty = true
			if row.Value < s.cfg.ForgetFloor {
				drop = append(drop, key)
			}
		}
		sort.Strings(drop)
		for _, key := range drop {
			k.forget(key)
			typ, kk, _ := SplitKey(key)
			forgotten = append(forgotten, Forgotten{AgentID: id, Type: typ, Key: kk})
		}
	}
	return forgotten
}

// DamageScroll applies one wet-zone damage hit to a carried scroll: the
// owner's mastery for its entry drops; at zero the scroll is destroyed
// and the row forgotten. Returns whether the scroll was destroyed.
func (s *Store) DamageScroll(a *agent.Agent, it *agent.Item) bool {
	if it == nil || it.ScrollData == nil {
		return false
	}
	k := s.Ensure(a.ID)
	mk := MasteryKey(it.ScrollData.KnowledgeType, it.ScrollData.KnowledgeKey)
	row := k.Mastery[mk]
	if row != nil {
		row.Value -= scrollDamageStep
		s.dirty = true
		if row.Value > 0 {
			return false
		}
		k.forget(mk)
	} else {
		it.ScrollData.Mastery -= scrollDamageStep
		s.dirty = true
		if it.ScrollData.Mastery > 0 {
			return false
		}
	}
	for i, inv := range a.Inventory {
		if inv == it {
			a.RemoveItemAt(i)
			break
		}
	}
	return true
}

// ObserveChance gives the probability an observer picks up a visible
// action, boosted by their best relevant proficiency and capped at 0.9.
func ObserveChance(bestProficiencyLevel int) float64 {
	p := 0.4 + 0.01*float64(bestProficiencyLevel)
	if p > 0.9 {
		p = 0.9
	}
	return p
}

// Observed records a successful observation: the observer learns the
// actor's knowledge at a strongly degraded mastery, generation 1, at
// most once per knowledge per game-day.
func (s *Store) Observed(observerID string, actorK *AgentKnowledge, typ, key string, nowTick uint64) bool {
	row := actorK.Row(typ, key)
	if row == nil {
		return false
	}
	ok := s.Ensure(observerID)
	if ok.Knows(typ, key) {
		return false
	}
	day := nowTick / s.ticksPerDay
	gate := MasteryKey(typ, key) + "@" + itoa64(day)
	if ok.observedToday[gate] {
		return false
	}
	ok.observedToday[gate] = true
	if err := ok.learn(typ, key, truncate3(row.Value*s.cfg.ObserveFactor), 1, SourceObserved, nowTick); err != nil {
		return false
	}
	s.dirty = true
	return true
}

func itoa64(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Load rehydrates knowledge.json.
func (s *Store) Load(path string, logger *log.Logger) {
	snap := map[string]*AgentKnowledge{}
	if !store.Load(path, &snap, logger) {
		return
	}
	for id, k := range snap {
		k.init()
		s.byID[id] = k
	}
}

func (s *Store) Save(path string) error {
	if err := store.Save(path, s.byID); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
