package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickMs         int `yaml:"tick_ms"`
	MinutesPerTick int `yaml:"minutes_per_tick"`
	VisionRadius   int `yaml:"vision_radius"`
	InventoryCap   int `yaml:"inventory_cap"`
	NewsCap        int `yaml:"news_cap"`
	IntentMaxTicks int `yaml:"intent_max_ticks"`
	SpawnRetries   int `yaml:"spawn_retries"`
	SpawnSpread    int `yaml:"spawn_spread"`
	MaxBulkSpawn   int `yaml:"max_bulk_spawn"`
	MaxAreaRadius  int `yaml:"max_area_radius"`

	FullSnapshotEveryTicks int `yaml:"full_snapshot_every_ticks"`
	ProjectEveryTicks      int `yaml:"project_every_ticks"`
	PersistEveryTicks      int `yaml:"persist_every_ticks"`
	WorldMasterEveryTicks  int `yaml:"world_master_every_ticks"`
	HeartbeatEveryTicks    int `yaml:"heartbeat_every_ticks"`

	Passive   Passive   `yaml:"passive"`
	Knowledge Knowledge `yaml:"knowledge"`
}

// Passive rates are per tick and calibrated for the 500 ms default tick.
// Operators changing tick_ms must rescale these proportionally.
type Passive struct {
	HungerPerTick     float64 `yaml:"hunger_per_tick"`
	StarveEnergyDrain float64 `yaml:"starve_energy_drain"`
}

type Knowledge struct {
	TeachFactor        float64 `yaml:"teach_factor"`
	InscribeFactor     float64 `yaml:"inscribe_factor"`
	ObserveFactor      float64 `yaml:"observe_factor"`
	DecayBase          float64 `yaml:"decay_base"`
	DecayGenWeight     float64 `yaml:"decay_gen_weight"`
	ForgetFloor        float64 `yaml:"forget_floor"`
	IdleGameDays       int     `yaml:"idle_game_days"`
	TeachCooldownSecs  int     `yaml:"teach_cooldown_secs"`
	ScrollDamageChance float64 `yaml:"scroll_damage_chance"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		TickMs:         500,
		MinutesPerTick: 10,
		VisionRadius:   20,
		InventoryCap:   28,
		NewsCap:        200,
		IntentMaxTicks: 30,
		SpawnRetries:   100,
		SpawnSpread:    30,
		MaxBulkSpawn:   50,
		MaxAreaRadius:  20,

		FullSnapshotEveryTicks: 5,
		ProjectEveryTicks:      10,
		PersistEveryTicks:      50,
		WorldMasterEveryTicks:  50,
		HeartbeatEveryTicks:    100,

		Passive: Passive{
			HungerPerTick:     0.08,
			StarveEnergyDrain: 2,
		},
		Knowledge: Knowledge{
			TeachFactor:        0.8,
			InscribeFactor:     0.7,
			ObserveFactor:      0.3,
			DecayBase:          0.02,
			DecayGenWeight:     0.3,
			ForgetFloor:        0.1,
			IdleGameDays:       3,
			TeachCooldownSecs:  300,
			ScrollDamageChance: 0.05,
		},
	}
}
