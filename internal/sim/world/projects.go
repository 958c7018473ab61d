package world

import (
	"fmt"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/grid"
)

// Project statuses.
const (
	projectGathering = "gathering"
	projectBuilding  = "building"
	projectComplete  = "complete"
)

// Project is a collective build site. Agents arriving with a needed
// material contribute it through the build action.
type Project struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Zone          grid.Zone      `json:"zone"`
	X             int            `json:"x"`
	Y             int            `json:"y"`
	Status        string         `json:"status"`
	Needed        []string       `json:"needed"`
	Required      int            `json:"required"`
	Contributed   int            `json:"contributed"`
	Contributions map[string]int `json:"contributions"`
	StartedTick   uint64         `json:"startedTick"`
}

type projectBoard struct {
	Projects []*Project `json:"projects"`
	NextNum  int        `json:"nextNum"`
}

var projectBlueprints = []struct {
	name   string
	needed []string
	amount int
}{
	{"a stone cairn", []string{"stone", "flint"}, 8},
	{"a river footbridge", []string{"wood", "reeds"}, 10},
	{"a meeting hall", []string{"wood", "stone", "clay"}, 16},
	{"a signal beacon", []string{"wood", "driftwood"}, 12},
}

func newProjectBoard() *projectBoard {
	return &projectBoard{}
}

// GatheringIn implements cognition.ProjectSource.
func (pb *projectBoard) GatheringIn(z grid.Zone) []cognition.Project {
	var out []cognition.Project
	for _, p := range pb.Projects {
		if p.Status == projectGathering && p.Zone == z {
			out = append(out, cognition.Project{
				ID: p.ID, Name: p.Name, Zone: p.Zone, X: p.X, Y: p.Y,
				Status: p.Status, Needed: p.Needed,
			})
		}
	}
	return out
}

func (pb *projectBoard) get(id string) *Project {
	for _, p := range pb.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (pb *projectBoard) tick(w *World, nowTick uint64) {
	active := 0
	for _, p := range pb.Projects {
		if p.Status != projectComplete {
			active++
		}
	}
	if active == 0 && w.agents.AliveCount() >= 2 && w.rng.Float64() < 0.15 {
		pb.start(w, nowTick)
	}

	for _, p := range pb.Projects {
		switch p.Status {
		case projectGathering:
			if p.Contributed >= p.Required {
				p.Status = projectBuilding
				w.addNews("build", "", "", "Work begins on "+p.Name+" in the "+string(p.Zone)+".", string(p.Zone))
			}
		case projectBuilding:
			// Building advances on its own once materials are in.
			p.Contributed++
			if p.Contributed >= p.Required*2 {
				p.Status = projectComplete
				w.addNews("build", "", "", p.Name+" in the "+string(p.Zone)+" is complete!", string(p.Zone))
			}
		}
	}
}

func (pb *projectBoard) start(w *World, nowTick uint64) {
	bp := projectBlueprints[w.rng.Intn(len(projectBlueprints))]
	sx, sy := w.grid.Spawn()
	for try := 0; try < 30; try++ {
		x := sx + w.rng.Intn(41) - 20
		y := sy + w.rng.Intn(41) - 20
		if !w.grid.Walkable(x, y) {
			continue
		}
		pb.NextNum++
		p := &Project{
			ID:            fmt.Sprintf("proj-%d", pb.NextNum),
			Name:          bp.name,
			Zone:          w.grid.Zone(x, y),
			X:             x,
			Y:             y,
			Status:        projectGathering,
			Needed:        bp.needed,
			Required:      bp.amount,
			Contributions: map[string]int{},
			StartedTick:   nowTick,
		}
		pb.Projects = append(pb.Projects, p)
		w.addNews("build", "", "",
			"A call goes out to build "+p.Name+" in the "+string(p.Zone)+".", string(p.Zone))
		return
	}
}

// Contribute hands one needed material from the agent to the nearest
// gathering project on the agent's tile neighbourhood. Called by the
// build action's external resolution.
func (pb *projectBoard) contribute(w *World, a *agent.Agent, nowTick uint64) {
	for _, p := range pb.Projects {
		if p.Status != projectGathering {
			continue
		}
		if chebyshevDist(a.TileX, a.TileY, p.X, p.Y) > 1 {
			continue
		}
		for _, mat := range p.Needed {
			if a.FindItem(mat) == nil {
				continue
			}
			a.ConsumeItem(mat)
			p.Contributed++
			p.Contributions[a.ID]++
			w.awardXP(a, 3)
			if m := w.minds.Get(a.ID); m != nil {
				m.Remember(nowTick, "Contributed "+mat+" to "+p.Name+".")
			}
			w.addNews("build", a.ID, a.Name,
				a.Name+" contributed "+mat+" to "+p.Name+".", string(p.Zone))
			return
		}
	}
}
