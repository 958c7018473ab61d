package mind

import (
	"driftworld/internal/sim/grid"
)

// Action is the closed set of things an agent can deliberately do.
type Action string

const (
	ActGather     Action = "gather"
	ActRest       Action = "rest"
	ActExplore    Action = "explore"
	ActChat       Action = "chat"
	ActGift       Action = "gift"
	ActCraft      Action = "craft"
	ActExperiment Action = "experiment"
	ActEat        Action = "eat"
	ActBuild      Action = "build"
	ActFight      Action = "fight"
	ActIdle       Action = "idle"
)

// Intent is a deliberate multi-tick goal. It survives across ticks until
// the target is reached, maxTicks elapse, or the path executor reports
// stuck.
type Intent struct {
	Action      Action `json:"action"`
	TargetX     int    `json:"targetX"`
	TargetY     int    `json:"targetY"`
	GatherX     int    `json:"gatherX,omitempty"`
	GatherY     int    `json:"gatherY,omitempty"`
	HasGather   bool   `json:"hasGather,omitempty"`
	TargetAgent string `json:"targetAgent,omitempty"`
	Reason      string `json:"reason"`
	StartedTick uint64 `json:"startedTick"`
	MaxTicks    uint64 `json:"maxTicks"`
}

// Expired reports whether the intent has outlived its budget.
func (in *Intent) Expired(nowTick uint64) bool {
	return nowTick-in.StartedTick > in.MaxTicks
}

type Personality struct {
	Traits      []string `json:"traits"`
	Temperament string   `json:"temperament"`
	Values      []string `json:"values"`
	Ambition    string   `json:"ambition"`
}

const shortMemoryCap = 30

type MemoryEntry struct {
	Tick uint64 `json:"tick"`
	Text string `json:"text"`
}

type Memory struct {
	Short    []MemoryEntry     `json:"short"`
	Visited  map[grid.Zone]int `json:"visited"`
	Gathered map[string]int    `json:"gathered"`
	Lessons  []string          `json:"lessons"`
}

type Relationship struct {
	Name         string `json:"name"`
	Score        int    `json:"score"`
	Interactions int    `json:"interactions"`
}

// Mind is the cognitive state of one agent. Minds reference agents only
// by id; neither store holds a pointer into the other.
type Mind struct {
	Personality   Personality              `json:"personality"`
	Goals         []string                 `json:"goals"`
	CurrentAction Action                   `json:"currentAction"`
	Intent        *Intent                  `json:"intent,omitempty"`
	PathThisTick  []PathPoint              `json:"pathThisTick,omitempty"`
	Memory        Memory                   `json:"memory"`
	Relationships map[string]*Relationship `json:"relationships"`
	Mood          string                   `json:"mood"`
	Journal       []string                 `json:"journal,omitempty"`
}

type PathPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Remember appends to the short-term ring, evicting the oldest entry
// past capacity.
func (m *Mind) Remember(tick uint64, text string) {
	m.Memory.Short = append(m.Memory.Short, MemoryEntry{Tick: tick, Text: text})
	if len(m.Memory.Short) > shortMemoryCap {
		m.Memory.Short = m.Memory.Short[len(m.Memory.Short)-shortMemoryCap:]
	}
}

// RecentMemories returns up to n newest entries, newest last.
func (m *Mind) RecentMemories(n int) []MemoryEntry {
	if n <= 0 || len(m.Memory.Short) <= n {
		return m.Memory.Short
	}
	return m.Memory.Short[len(m.Memory.Short)-n:]
}

// VisitZone counts a zone visit and returns the new count.
func (m *Mind) VisitZone(z grid.Zone) int {
	m.Memory.Visited[z]++
	return m.Memory.Visited[z]
}

// KnowsZone reports whether the zone has been visited at least three
// times; anything less still counts as unknown ground for perception.
func (m *Mind) KnowsZone(z grid.Zone) bool {
	return m.Memory.Visited[z] >= 3
}

// NoteRelationship caches the other agent's display name alongside the
// score so broadcasts never need the agent store.
func (m *Mind) NoteRelationship(otherID, name string, scoreDelta, interactionDelta int) {
	r := m.Relationships[otherID]
	if r == nil {
		r = &Relationship{Name: name}
		m.Relationships[otherID] = r
	}
	r.Name = name
	r.Score += scoreDelta
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Score < -100 {
		r.Score = -100
	}
	r.Interactions += interactionDelta
}
