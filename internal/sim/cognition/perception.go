package cognition

import (
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/mind"
)

type VisibleResource struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Resource string `json:"resource"`
	Source   string `json:"source"`
	Distance int    `json:"distance"`
}

type VisibleZone struct {
	Zone     grid.Zone `json:"zone"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Distance int       `json:"distance"`
}

type VisibleAgent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Distance int    `json:"distance"`
}

// Visible is the perception report: everything an agent can currently
// see. Distances are Chebyshev.
type Visible struct {
	Resources    []VisibleResource
	UnknownZones []VisibleZone
	Agents       []VisibleAgent
	Dangers      []Danger
	Projects     []Project
}

// Perceive builds the report for one agent. It is read-only on the mind
// and is called at most once per agent per tick.
func Perceive(sh *Shared, a *agent.Agent, m *mind.Mind) *Visible {
	r := sh.Tuning.VisionRadius
	v := &Visible{}
	seenZones := map[grid.Zone]bool{}

	for y := a.TileY - r; y <= a.TileY+r; y++ {
		for x := a.TileX - r; x <= a.TileX+r; x++ {
			t := sh.Grid.GetTile(x, y)
			if t == nil {
				continue
			}
			d := chebyshev(a.TileX, a.TileY, x, y)
			if name, ok := sh.Oracle.At(x, y); ok {
				v.Resources = append(v.Resources, VisibleResource{
					X: x, Y: y, Resource: name, Source: string(t.Zone), Distance: d,
				})
			}
			if !seenZones[t.Zone] && !m.KnowsZone(t.Zone) && t.Zone != grid.ZoneWater {
				seenZones[t.Zone] = true
				v.UnknownZones = append(v.UnknownZones, VisibleZone{Zone: t.Zone, X: x, Y: y, Distance: d})
			}
		}
	}

	sh.Agents.Live(func(other *agent.Agent) {
		if other.ID == a.ID {
			return
		}
		d := chebyshev(a.TileX, a.TileY, other.TileX, other.TileY)
		if d <= r {
			v.Agents = append(v.Agents, VisibleAgent{
				ID: other.ID, Name: other.Name, X: other.TileX, Y: other.TileY, Distance: d,
			})
		}
	})

	if sh.Dangers != nil {
		v.Dangers = sh.Dangers.DangersIn(a.Zone)
	}
	if sh.Projects != nil {
		v.Projects = sh.Projects.GatheringIn(a.Zone)
	}
	return v
}
