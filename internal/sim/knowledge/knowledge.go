// Package knowledge implements the decayable, transferable per-agent
// knowledge store. Every known entry is backed by a mastery row; the row
// and the entry live and die together.
package knowledge

import (
	"fmt"
	"math"
	"strings"

	"driftworld/internal/sim/grid"
)

type Source string

const (
	SourceDiscovered Source = "discovered"
	SourceTaught     Source = "taught"
	SourceScroll     Source = "scroll"
	SourceObserved   Source = "observed"
)

const (
	TypeZoneSecret = "zone_secret"
	TypeLore       = "lore"
	TypeRecipe     = "recipe"
)

// MasteryRow weights one piece of knowledge. Value stays in [0, 1];
// Generation counts transfer hops since first discovery and never
// decreases along a propagation chain.
type MasteryRow struct {
	Value         float64 `json:"value"`
	Generation    int     `json:"generation"`
	Source        Source  `json:"source"`
	LastPracticed uint64  `json:"last_practiced"` // tick
}

// AgentKnowledge is one agent's knowledge. ZoneSecrets, LoreFragments
// and KnownRecipes are the entries; Mastery carries one row per entry
// keyed "<type>:<key>".
type AgentKnowledge struct {
	ZoneSecrets   map[grid.Zone][]string     `json:"zone_secrets"`
	LoreFragments []string                   `json:"lore_fragments"`
	KnownRecipes  []string                   `json:"known_recipes"`
	ZoneCounts    map[grid.Zone]map[string]int `json:"zone_counts"`
	Mastery       map[string]*MasteryRow     `json:"mastery"`
	TeachCount    int                        `json:"teach_count"`

	// Real-time teach cooldown, persisted as unix seconds.
	TeachCooldownUntil int64 `json:"teach_cooldown_until,omitempty"`

	// Once-per-game-day observation gate, keyed "<knowledge>@<day>".
	observedToday map[string]bool
}

func newAgentKnowledge() *AgentKnowledge {
	return &AgentKnowledge{
		ZoneSecrets:   map[grid.Zone][]string{},
		LoreFragments: []string{},
		KnownRecipes:  []string{},
		ZoneCounts:    map[grid.Zone]map[string]int{},
		Mastery:       map[string]*MasteryRow{},
		observedToday: map[string]bool{},
	}
}

func (k *AgentKnowledge) init() {
	if k.ZoneSecrets == nil {
		k.ZoneSecrets = map[grid.Zone][]string{}
	}
	if k.LoreFragments == nil {
		k.LoreFragments = []string{}
	}
	if k.KnownRecipes == nil {
		k.KnownRecipes = []string{}
	}
	if k.ZoneCounts == nil {
		k.ZoneCounts = map[grid.Zone]map[string]int{}
	}
	if k.Mastery == nil {
		k.Mastery = map[string]*MasteryRow{}
	}
	if k.observedToday == nil {
		k.observedToday = map[string]bool{}
	}
}

// MasteryKey builds the canonical "<type>:<key>" form.
func MasteryKey(typ, key string) string { return typ + ":" + key }

// SplitKey is the inverse of MasteryKey.
func SplitKey(masteryKey string) (typ, key string, ok bool) {
	i := strings.Index(masteryKey, ":")
	if i < 0 {
		return "", "", false
	}
	return masteryKey[:i], masteryKey[i+1:], true
}

// Knows reports whether the agent holds a mastery row for the item.
func (k *AgentKnowledge) Knows(typ, key string) bool {
	_, ok := k.Mastery[MasteryKey(typ, key)]
	return ok
}

func (k *AgentKnowledge) Row(typ, key string) *MasteryRow {
	return k.Mastery[MasteryKey(typ, key)]
}

// learn writes the mastery row and inserts the matching entry. Values
// clamp into [0, 1]; generations below zero are invalid.
func (k *AgentKnowledge) learn(typ, key string, value float64, generation int, src Source, nowTick uint64) error {
	if generation < 0 {
		return fmt.Errorf("negative generation")
	}
	value = math.Min(1, math.Max(0, value))
	k.Mastery[MasteryKey(typ, key)] = &MasteryRow{
		Value:         value,
		Generation:    generation,
		Source:        src,
		LastPracticed: nowTick,
	}
	switch typ {
	case TypeZoneSecret:
		// zone secret keys are "<zone>/<secret text>"
		zone, secret, found := strings.Cut(key, "/")
		if !found {
			return fmt.Errorf("zone secret key %q missing zone prefix", key)
		}
		z := grid.Zone(zone)
		if !containsString(k.ZoneSecrets[z], secret) {
			k.ZoneSecrets[z] = append(k.ZoneSecrets[z], secret)
		}
	case TypeLore:
		if !containsString(k.LoreFragments, key) {
			k.LoreFragments = append(k.LoreFragments, key)
		}
	case TypeRecipe:
		if !containsString(k.KnownRecipes, key) {
			k.KnownRecipes = append(k.KnownRecipes, key)
		}
	default:
		return fmt.Errorf("unknown knowledge type %q", typ)
	}
	return nil
}

// forget removes the mastery row and cascade-removes the entry it backs.
func (k *AgentKnowledge) forget(masteryKey string) {
	delete(k.Mastery, masteryKey)
	typ, key, ok := SplitKey(masteryKey)
	if !ok {
		return
	}
	switch typ {
	case TypeZoneSecret:
		zone, secret, found := strings.Cut(key, "/")
		if found {
			z := grid.Zone(zone)
			k.ZoneSecrets[z] = removeString(k.ZoneSecrets[z], secret)
			if len(k.ZoneSecrets[z]) == 0 {
				delete(k.ZoneSecrets, z)
			}
		}
	case TypeLore:
		k.LoreFragments = removeString(k.LoreFragments, key)
	case TypeRecipe:
		k.KnownRecipes = removeString(k.KnownRecipes, key)
	}
}

// Practice refreshes the practice timestamp and nudges mastery upward.
func (k *AgentKnowledge) Practice(typ, key string, nowTick uint64) {
	row := k.Row(typ, key)
	if row == nil {
		return
	}
	row.LastPracticed = nowTick
	row.Value = math.Min(1, row.Value+0.01)
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func removeString(xs []string, s string) []string {
	for i, x := range xs {
		if x == s {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}
