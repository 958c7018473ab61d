package world

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/progress"
	"driftworld/internal/sim/tuning"
)

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.WorldAsset{
		Width:   32,
		Height:  32,
		Terrain: make([]int, 32*32),
		TileDefs: []grid.TileDef{
			{ID: 0, Biome: grid.BiomeGrassland, Name: "Grassland"},
		},
		Seed: "world-test",
	})
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func newTestWorld(t *testing.T, mod func(*tuning.Tuning)) *World {
	t.Helper()
	tun := tuning.Defaults()
	tun.SpawnSpread = 5
	if mod != nil {
		mod(&tun)
	}
	return New(testGrid(t), Config{
		Tuning:  tun,
		DataDir: t.TempDir(),
		Seed:    1,
		Logger:  log.New(io.Discard, "", 0),
	})
}

// spawnNow pushes spawn requests through one tick, the same path the
// channel requests take.
func spawnNow(t *testing.T, w *World, names ...string) []*agent.Agent {
	t.Helper()
	reqs := make([]SpawnRequest, 0, len(names))
	resps := make([]chan SpawnResponse, 0, len(names))
	for _, n := range names {
		resp := make(chan SpawnResponse, 1)
		reqs = append(reqs, SpawnRequest{Name: n, Resp: resp})
		resps = append(resps, resp)
	}
	w.step(reqs)
	out := make([]*agent.Agent, 0, len(names))
	for i, resp := range resps {
		r := <-resp
		if r.Err != nil {
			t.Fatalf("spawn %s: %v", names[i], r.Err)
		}
		out = append(out, r.Agent)
	}
	return out
}

func TestStep_TickInvariantsHoldOverTime(t *testing.T) {
	w := newTestWorld(t, nil)
	spawnNow(t, w, "Asha", "Bram", "Cole")

	for i := 0; i < 49; i++ {
		w.step(nil)
	}
	if got := w.Tick(); got != 50 {
		t.Fatalf("tick = %d, want 50", got)
	}

	w.agents.All(func(a *agent.Agent) {
		if !w.grid.Walkable(a.TileX, a.TileY) {
			t.Fatalf("%s stands on non-walkable (%d,%d)", a.Name, a.TileX, a.TileY)
		}
		if a.Zone != w.grid.Zone(a.TileX, a.TileY) {
			t.Fatalf("%s zone %s disagrees with grid", a.Name, a.Zone)
		}
		for _, v := range []float64{a.HP, a.Energy, a.Hunger} {
			if v < 0 || v > 100 {
				t.Fatalf("%s vital out of range: hp=%.1f energy=%.1f hunger=%.1f",
					a.Name, a.HP, a.Energy, a.Hunger)
			}
		}
	})
	if len(w.news) > w.tun.NewsCap {
		t.Fatalf("news overflowed cap: %d", len(w.news))
	}
}

func TestAddNews_RingKeepsNewestFirst(t *testing.T) {
	w := newTestWorld(t, func(tn *tuning.Tuning) { tn.NewsCap = 5 })
	for i := 0; i < 8; i++ {
		w.addNews("narrative", "", "", fmt.Sprintf("event %d", i), "")
	}
	if len(w.news) != 5 {
		t.Fatalf("news len = %d, want 5", len(w.news))
	}
	if w.news[0].Message != "event 7" || w.news[4].Message != "event 3" {
		t.Fatalf("ring order: first=%q last=%q", w.news[0].Message, w.news[4].Message)
	}
	head := w.newsHead(2)
	if len(head) != 2 || head[0].Message != "event 7" {
		t.Fatalf("newsHead: %+v", head)
	}
	if w.stats.NewsTotal != 8 {
		t.Fatalf("news counter = %d, want 8", w.stats.NewsTotal)
	}
}

func TestGameTime_Mapping(t *testing.T) {
	w := newTestWorld(t, nil) // 10 minutes per tick
	gt := w.gameTime(0)
	if gt.Day != 0 || gt.Hour != 0 || gt.Minute != 0 || gt.Period != "night" {
		t.Fatalf("gameTime(0) = %+v", gt)
	}
	gt = w.gameTime(36) // 360 minutes = 06:00
	if gt.Hour != 6 || gt.Period != "day" {
		t.Fatalf("gameTime(36) = %+v", gt)
	}
	gt = w.gameTime(144)
	if gt.Day != 1 || gt.Hour != 0 {
		t.Fatalf("gameTime(144) = %+v", gt)
	}
	gt = w.gameTime(120) // 20:00 is night again
	if gt.Hour != 20 || gt.Period != "night" {
		t.Fatalf("gameTime(120) = %+v", gt)
	}
}

func TestPersist_RestartRestoresWorld(t *testing.T) {
	dir := t.TempDir()
	tun := tuning.Defaults()
	tun.SpawnSpread = 5
	logger := log.New(io.Discard, "", 0)

	w := New(testGrid(t), Config{Tuning: tun, DataDir: dir, Seed: 1, Logger: logger})
	agents := spawnNow(t, w, "Asha", "Bram")
	for i := 0; i < 9; i++ {
		w.step(nil)
	}
	w.persistAll()
	want := w.agents.Get(agents[0].ID)

	re := New(testGrid(t), Config{Tuning: tun, DataDir: dir, Seed: 2, Logger: logger})
	if re.Tick() != 10 {
		t.Fatalf("reloaded tick = %d, want 10", re.Tick())
	}
	if re.agents.Len() != 2 {
		t.Fatalf("reloaded agents = %d, want 2", re.agents.Len())
	}
	got := re.agents.Get(want.ID)
	if got == nil || got.Name != want.Name {
		t.Fatalf("agent %s missing after reload", want.ID)
	}
	if got.TileX != want.TileX || got.TileY != want.TileY || got.Stats.XP != want.Stats.XP {
		t.Fatalf("agent state drifted on reload: got (%d,%d) xp=%d, want (%d,%d) xp=%d",
			got.TileX, got.TileY, got.Stats.XP, want.TileX, want.TileY, want.Stats.XP)
	}
	if re.minds.Get(want.ID) == nil {
		t.Fatalf("mind missing after reload")
	}
}

func TestStep_DeathIsAnnounced(t *testing.T) {
	w := newTestWorld(t, nil)
	agents := spawnNow(t, w, "Asha")
	agents[0].HP = 0
	w.step(nil)

	if agents[0].Alive {
		t.Fatalf("agent with 0 hp still alive")
	}
	if w.stats.DeathsTotal != 1 {
		t.Fatalf("deaths counter = %d", w.stats.DeathsTotal)
	}
	found := false
	for _, n := range w.news {
		if strings.Contains(n.Message, "has perished") {
			found = true
		}
	}
	if !found {
		t.Fatalf("death news missing: %+v", w.newsHead(10))
	}

	// The dead never act again.
	w.step(nil)
	if w.agents.AliveCount() != 0 {
		t.Fatalf("alive count = %d", w.agents.AliveCount())
	}
}

func TestObservers_InitThenTickBroadcasts(t *testing.T) {
	w := newTestWorld(t, nil)
	spawnNow(t, w, "Asha")

	out := make(chan []byte, 64)
	w.attachObserver(ObserverJoin{Out: out})

	var initMsg protocol.InitMsg
	if err := json.Unmarshal(<-out, &initMsg); err != nil {
		t.Fatalf("decode init: %v", err)
	}
	if initMsg.Type != protocol.TypeInit || initMsg.World.Width != 32 {
		t.Fatalf("init message: %+v", initMsg)
	}

	sawFull, sawDelta := false, false
	for i := 0; i < 5; i++ {
		w.step(nil)
	drain:
		for {
			select {
			case raw := <-out:
				var base protocol.BaseMessage
				if err := json.Unmarshal(raw, &base); err != nil {
					t.Fatalf("decode frame: %v", err)
				}
				if base.Type != protocol.TypeTick {
					continue
				}
				var full protocol.TickFullMsg
				if err := json.Unmarshal(raw, &full); err != nil {
					t.Fatalf("decode tick: %v", err)
				}
				if full.Full {
					sawFull = true
				} else {
					sawDelta = true
				}
			default:
				break drain
			}
		}
	}
	if !sawFull || !sawDelta {
		t.Fatalf("broadcast mix: full=%v delta=%v", sawFull, sawDelta)
	}

	delete(w.observers, out)
	if w.stats.BroadcastsTotal == 0 {
		t.Fatalf("broadcast counter never moved")
	}
}

func TestAwardXP_AnnouncesLevelUpOnce(t *testing.T) {
	w := newTestWorld(t, nil)
	agents := spawnNow(t, w, "Asha")
	a := agents[0]
	a.Stats = progress.Stats{XP: 99, Level: 1, Title: "Hatchling"}

	w.awardXP(a, 2)
	if got := countNews(w, "level_up"); got != 1 {
		t.Fatalf("level_up news after crossing = %d, want 1", got)
	}
	if !a.HasTitle("Hatchling") {
		t.Fatalf("title not granted: %v", a.Titles)
	}
	w.awardXP(a, 1)
	if got := countNews(w, "level_up"); got != 1 {
		t.Fatalf("level_up news after small award = %d, want 1", got)
	}
}

func TestScrollDamage_WetZoneDestroysEventually(t *testing.T) {
	w := newTestWorld(t, func(tn *tuning.Tuning) { tn.Knowledge.ScrollDamageChance = 1.0 })
	agents := spawnNow(t, w, "Asha")
	a := agents[0]
	w.weather = cognition.WeatherRain // grass counts as wet in rain
	w.weatherUntil = 1 << 62
	a.Zone = grid.ZoneGrass

	const frag = "Sand from the deep desert never cools."
	w.know.GrantLore(a.ID, frag, 1)
	it := &agent.Item{Name: "Inscribed Scroll", ScrollData: &agent.ScrollData{
		KnowledgeType: "lore", KnowledgeKey: frag, Mastery: 0.7, Generation: 1,
	}}
	a.AddItemEntry(it, w.tun.InventoryCap)

	for i := 0; i < 20 && a.FindItem("Inscribed Scroll") != nil; i++ {
		w.rollScrollDamage(a, uint64(i))
	}
	if a.FindItem("Inscribed Scroll") != nil {
		t.Fatalf("scroll survived twenty guaranteed soakings")
	}
	if w.know.Ensure(a.ID).Knows("lore", frag) {
		t.Fatalf("destroyed scroll must take the mastery row with it")
	}
	if got := countNews(w, "scrollDestroyed"); got != 1 {
		t.Fatalf("scrollDestroyed news = %d, want 1", got)
	}
}

func TestSpawnMany_CapsAtBulkLimit(t *testing.T) {
	w := newTestWorld(t, func(tn *tuning.Tuning) { tn.MaxBulkSpawn = 4 })
	out := w.SpawnMany("settler", 99, 1)
	if len(out) != 4 {
		t.Fatalf("bulk spawn created %d, want 4", len(out))
	}
	if out[0].Name != "settler-1" || out[3].Name != "settler-4" {
		t.Fatalf("bulk spawn names: %s .. %s", out[0].Name, out[3].Name)
	}
	if w.agents.Len() != 4 {
		t.Fatalf("store len = %d", w.agents.Len())
	}
}

func TestQueries_StatusDetailAndArea(t *testing.T) {
	w := newTestWorld(t, nil)
	agents := spawnNow(t, w, "Asha", "Bram")
	a := agents[0]

	st := w.Status()
	if st.Tick != 1 || st.Agents != 2 || st.Alive != 2 || st.World != "32x32" {
		t.Fatalf("status: %+v", st)
	}

	d, ok := w.AgentDetail(a.ID)
	if !ok || d.Agent != a || d.Tile == nil {
		t.Fatalf("agent detail: %+v", d)
	}
	if _, ok := w.AgentDetail("nope"); ok {
		t.Fatalf("detail for unknown id must miss")
	}

	mv, ok := w.MindView(a.ID)
	if !ok || len(mv.Personality.Traits) == 0 {
		t.Fatalf("mind view: %+v", mv)
	}

	ti, ok := w.TileInfo(a.TileX, a.TileY)
	if !ok || len(ti.Resources.Names) == 0 {
		t.Fatalf("tile info: %+v", ti)
	}
	if _, ok := w.TileInfo(-1, -1); ok {
		t.Fatalf("tile info out of bounds must miss")
	}

	clamped := w.AreaTiles(16, 16, 999)
	direct := w.AreaTiles(16, 16, w.tun.MaxAreaRadius)
	if len(clamped) != len(direct) {
		t.Fatalf("area radius clamp: %d vs %d tiles", len(clamped), len(direct))
	}
}

func countNews(w *World, typ string) int {
	n := 0
	for _, item := range w.news {
		if item.Type == typ {
			n++
		}
	}
	return n
}
