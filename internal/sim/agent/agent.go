package agent

import (
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/progress"
)

// Agent is one live inhabitant of the world. All mutation happens on the
// world loop goroutine; at most one action mutates an agent per tick.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	TileX int       `json:"tileX"`
	TileY int       `json:"tileY"`
	Zone  grid.Zone `json:"zone"`

	HP     float64 `json:"hp"`
	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`

	Inventory []*Item        `json:"inventory"`
	Stats     progress.Stats `json:"stats"`

	Relationships map[string]*Relationship `json:"relationships"`
	Proficiencies progress.Proficiencies   `json:"proficiencies"`
	Titles        []string                 `json:"titles"`

	Alive     bool   `json:"alive"`
	TicksBorn uint64 `json:"ticksBorn"`
	Coins     int    `json:"coins"`
}

type Relationship struct {
	Score        int `json:"score"`
	Interactions int `json:"interactions"`
}

// Item is one inventory entry. Stackable items carry a quantity;
// inscribed scrolls carry their knowledge payload.
type Item struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	Quantity   int                `json:"quantity,omitempty"`
	Properties map[string]float64 `json:"properties,omitempty"`
	Stackable  bool               `json:"stackable,omitempty"`
	Condition  float64            `json:"condition,omitempty"`
	Durability float64            `json:"durability,omitempty"`
	Quality    float64            `json:"quality,omitempty"`
	ScrollData *ScrollData        `json:"scroll_data,omitempty"`
}

type ScrollData struct {
	KnowledgeType string  `json:"knowledge_type"`
	KnowledgeKey  string  `json:"knowledge_key"`
	Mastery       float64 `json:"mastery"`
	Generation    int     `json:"generation"`
	InscribedBy   string  `json:"inscribed_by"`
}

const relationshipCap = 100

func (a *Agent) initDefaults() {
	if a.Inventory == nil {
		a.Inventory = []*Item{}
	}
	if a.Relationships == nil {
		a.Relationships = map[string]*Relationship{}
	}
	if a.Proficiencies == nil {
		a.Proficiencies = progress.Proficiencies{}
	}
	if a.Titles == nil {
		a.Titles = []string{}
	}
	if a.Stats.Level == 0 {
		a.Stats.Level = progress.LevelForXP(a.Stats.XP)
		a.Stats.Title = progress.TitleForLevel(a.Stats.Level)
	}
}

// BumpRelationship adjusts the score toward another agent, creating the
// entry on first contact. Scores clamp to ±100.
func (a *Agent) BumpRelationship(otherID string, scoreDelta, interactionDelta int) *Relationship {
	r := a.Relationships[otherID]
	if r == nil {
		r = &Relationship{}
		a.Relationships[otherID] = r
	}
	r.Score += scoreDelta
	if r.Score > relationshipCap {
		r.Score = relationshipCap
	}
	if r.Score < -relationshipCap {
		r.Score = -relationshipCap
	}
	r.Interactions += interactionDelta
	return r
}

// RelationshipScore returns 0 for strangers.
func (a *Agent) RelationshipScore(otherID string) int {
	if r := a.Relationships[otherID]; r != nil {
		return r.Score
	}
	return 0
}

// AddItem stacks onto an existing entry of the same name when possible,
// otherwise appends. Returns false when the inventory is at capacity.
func (a *Agent) AddItem(name string, qty, cap int) bool {
	if qty <= 0 {
		qty = 1
	}
	for _, it := range a.Inventory {
		if it.Name == name && it.ScrollData == nil {
			if it.Quantity <= 0 {
				it.Quantity = 1
			}
			it.Quantity += qty
			it.Stackable = true
			return true
		}
	}
	if len(a.Inventory) >= cap {
		return false
	}
	a.Inventory = append(a.Inventory, &Item{Name: name, Quantity: qty, Stackable: true})
	return true
}

// AddItemEntry appends a non-stacking item (scrolls, crafted goods).
func (a *Agent) AddItemEntry(it *Item, cap int) bool {
	if len(a.Inventory) >= cap {
		return false
	}
	a.Inventory = append(a.Inventory, it)
	return true
}

// ConsumeItem decrements one unit of the named item, removing the entry
// when it empties. Returns false if the agent has none.
func (a *Agent) ConsumeItem(name string) bool {
	for i, it := range a.Inventory {
		if it.Name != name {
			continue
		}
		if it.Quantity > 1 {
			it.Quantity--
			return true
		}
		a.Inventory = append(a.Inventory[:i], a.Inventory[i+1:]...)
		return true
	}
	return false
}

// RemoveItemAt removes the inventory entry at index i.
func (a *Agent) RemoveItemAt(i int) *Item {
	if i < 0 || i >= len(a.Inventory) {
		return nil
	}
	it := a.Inventory[i]
	a.Inventory = append(a.Inventory[:i], a.Inventory[i+1:]...)
	return it
}

// FindItem returns the first entry with the given name, or nil.
func (a *Agent) FindItem(name string) *Item {
	for _, it := range a.Inventory {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// HasTitle reports whether a title was already granted.
func (a *Agent) HasTitle(title string) bool {
	for _, t := range a.Titles {
		if t == title {
			return true
		}
	}
	return false
}

func (a *Agent) GrantTitle(title string) {
	if !a.HasTitle(title) {
		a.Titles = append(a.Titles, title)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyEnergy adds a (possibly negative) energy delta within [0, 100].
func (a *Agent) ApplyEnergy(delta float64) { a.Energy = clamp(a.Energy+delta, 0, 100) }

// ApplyHunger adds a hunger delta within [0, 100].
func (a *Agent) ApplyHunger(delta float64) { a.Hunger = clamp(a.Hunger+delta, 0, 100) }

// ApplyHP adds an HP delta within [0, 100].
func (a *Agent) ApplyHP(delta float64) { a.HP = clamp(a.HP+delta, 0, 100) }
