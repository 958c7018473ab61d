package world

import (
	"math/rand"

	"driftworld/internal/sim/agent"
)

// fieldCrafter is the default cooking/experiment participant. Outcomes
// are deliberately small: a name, a recipe entry, and the consumed
// ingredients.
type fieldCrafter struct {
	w *World
}

var forcePrefix = map[string]string{
	"heat":     "charred",
	"dissolve": "distilled",
	"grow":     "verdant",
	"impact":   "crushed",
	"combine":  "bound",
}

func (c *fieldCrafter) Cook(a *agent.Agent, foods []string, rng *rand.Rand) (string, bool) {
	// A cook can fail; ingredients survive a failure.
	if rng.Float64() < 0.2 {
		return "", false
	}
	result := "simple meal"
	switch {
	case len(foods) >= 3:
		result = "hearty stew"
	case len(foods) == 2:
		result = "campfire roast"
	}
	for _, f := range foods {
		a.ConsumeItem(f)
	}
	if !a.AddItem(result, 1, c.w.agents.InventoryCap()) {
		return "", false
	}
	c.w.know.GrantRecipe(a.ID, result, c.w.tick.Load())
	return result, true
}

func (c *fieldCrafter) Combine(a *agent.Agent, itemA, itemB, force string, rng *rand.Rand) (string, bool) {
	if rng.Float64() >= 0.45 {
		return "", false
	}
	prefix, ok := forcePrefix[force]
	if !ok {
		prefix = "strange"
	}
	result := prefix + " " + itemA
	a.ConsumeItem(itemA)
	a.ConsumeItem(itemB)
	if !a.AddItem(result, 1, c.w.agents.InventoryCap()) {
		return "", false
	}
	c.w.know.GrantRecipe(a.ID, result, c.w.tick.Load())
	return result, true
}
