// Package cognition implements the per-agent decision loop: perceive,
// score candidate intents, then either walk toward the chosen target or
// execute on arrival. Everything here runs synchronously on the world
// loop and never suspends.
package cognition

import (
	"math/rand"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/knowledge"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
	"driftworld/internal/sim/tuning"
)

type Weather string

const (
	WeatherClear    Weather = "clear"
	WeatherRain     Weather = "rain"
	WeatherStorm    Weather = "storm"
	WeatherHeatwave Weather = "heatwave"
	WeatherFog      Weather = "fog"
	WeatherSnow     Weather = "snow"
)

type TimeOfDay struct {
	Hour   int
	Minute int
	Day    int
	Period string // "day" | "night"
}

// Danger is an active threat the world-master has planted in a zone.
type Danger struct {
	Kind string    `json:"kind"`
	Zone grid.Zone `json:"zone"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

// Project is a collective build site agents can contribute to.
type Project struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Zone   grid.Zone `json:"zone"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Status string    `json:"status"`
	Needed []string  `json:"needed"`
}

// DangerSource and ProjectSource are the pluggable world-master and
// collective-project participants.
type DangerSource interface {
	DangersIn(z grid.Zone) []Danger
}

type ProjectSource interface {
	GatheringIn(z grid.Zone) []Project
}

// Events receives news posts and observer broadcast payloads.
type Events interface {
	News(typ, agentID, name, message string, zone grid.Zone)
	Emit(typ string, payload map[string]any)
}

// Shared is the explicit bundle of world references handed to every
// cognition call; no module-scope singletons.
type Shared struct {
	Grid      *grid.Grid
	Agents    *agent.Store
	Minds     *mind.Store
	Knowledge *knowledge.Store
	Oracle    *resource.Oracle
	Tuning    tuning.Tuning
	RNG       *rand.Rand
	Events    Events
	Dangers   DangerSource
	Projects  ProjectSource
	Crafter   Crafter
}

func chebyshev(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func sgn(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
