package cognition

import (
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/mind"
)

// MinStepEnergy is the energy floor below which an agent cannot move at
// all this tick.
const MinStepEnergy = 5

// StepToward advances the agent one step toward (tx, ty). It returns
// moved=false, stuck=false when the agent has no budget, and stuck=true
// when every candidate step is blocked, which makes the caller abandon
// the intent.
func StepToward(sh *Shared, a *agent.Agent, m *mind.Mind, tx, ty int) (moved, stuck bool) {
	if a.Energy <= MinStepEnergy {
		return false, false
	}
	dx := sgn(tx - a.TileX)
	dy := sgn(ty - a.TileY)
	if dx == 0 && dy == 0 {
		return false, false
	}

	var candidates [][2]int
	if dx != 0 && dy != 0 {
		candidates = append(candidates, [2]int{dx, dy})
	}
	if dx != 0 {
		candidates = append(candidates, [2]int{dx, 0})
	}
	if dy != 0 {
		candidates = append(candidates, [2]int{0, dy})
	}

	for _, c := range candidates {
		nx, ny := a.TileX+c[0], a.TileY+c[1]
		if !sh.Grid.Walkable(nx, ny) {
			continue
		}
		dir, ok := grid.DirectionFor(c[0], c[1])
		if !ok {
			continue
		}
		res := sh.Agents.WalkAgent(a, dir)
		if !res.OK {
			continue
		}
		m.VisitZone(res.Zone)
		m.PathThisTick = append(m.PathThisTick, mind.PathPoint{X: a.TileX, Y: a.TileY})
		return true, false
	}
	return false, true
}
