package world

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/knowledge"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
	"driftworld/internal/sim/tuning"
)

// SpawnRequest asks the world loop to create an agent. Resp receives
// exactly one reply.
type SpawnRequest struct {
	Name string
	Resp chan SpawnResponse
}

type SpawnResponse struct {
	Agent *agent.Agent
	Err   error
}

// ObserverJoin attaches a read-only client. The init message is written
// to Out before any tick broadcast.
type ObserverJoin struct {
	Out chan []byte
}

// TickLogger receives one entry per tick; implemented in
// internal/persistence/log.
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick    uint64  `json:"tick"`
	Agents  int     `json:"agents"`
	Alive   int     `json:"alive"`
	Weather string  `json:"weather"`
	News    int     `json:"news"`
	StepMs  float64 `json:"step_ms"`
}

// NewsSink receives every news item for off-thread indexing; implemented
// in internal/persistence/indexdb.
type NewsSink interface {
	IndexNews(item protocol.NewsItem)
}

// World is a single-threaded authoritative simulation. All state must be
// accessed only from the world loop goroutine; transports talk to it
// through the request channels.
type World struct {
	tun    tuning.Tuning
	grid   *grid.Grid
	agents *agent.Store
	minds  *mind.Store
	know   *knowledge.Store
	oracle *resource.Oracle
	rng    *rand.Rand

	tick atomic.Uint64

	news      []protocol.NewsItem
	observers map[chan []byte]struct{}

	weather      cognition.Weather
	weatherUntil uint64

	master   *worldMaster
	projects *projectBoard
	crafter  *fieldCrafter
	achieve  *achievements

	spawnCh  chan SpawnRequest
	obsJoin  chan ObserverJoin
	obsLeave chan chan []byte
	ops      chan func()
	stop     chan struct{}

	dataDir   string
	startedAt time.Time
	logger    *log.Logger

	// Optional sinks (may be nil). Writing happens off-thread.
	tickLogger TickLogger
	newsSink   NewsSink

	stats Stats
}

// Stats is the counter block scraped by /metrics.
type Stats struct {
	TicksTotal      uint64
	NewsTotal       uint64
	SpawnsTotal     uint64
	DeathsTotal     uint64
	IntentsTotal    uint64
	StuckTotal      uint64
	ForgottenTotal  uint64
	BroadcastsTotal uint64
	ObserverCount   int
}

type Config struct {
	Tuning  tuning.Tuning
	DataDir string
	Seed    int64
	Logger  *log.Logger

	TickLogger TickLogger
	NewsSink   NewsSink
}

func New(g *grid.Grid, cfg Config) *World {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	tun := cfg.Tuning
	ticksPerDay := uint64(24 * 60 / tun.MinutesPerTick)

	w := &World{
		tun:       tun,
		grid:      g,
		agents:    agent.NewStore(g, tun.InventoryCap, tun.SpawnRetries, tun.SpawnSpread),
		minds:     mind.NewStore(),
		know:      knowledge.NewStore(tun.Knowledge, ticksPerDay),
		oracle:    resource.NewOracle(g),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		observers: map[chan []byte]struct{}{},
		weather:   cognition.WeatherClear,
		spawnCh:   make(chan SpawnRequest, 16),
		obsJoin:   make(chan ObserverJoin, 16),
		obsLeave:  make(chan chan []byte, 16),
		ops:       make(chan func(), 64),
		stop:      make(chan struct{}),
		dataDir:   cfg.DataDir,
		startedAt: time.Now(),
		logger:    cfg.Logger,

		tickLogger: cfg.TickLogger,
		newsSink:   cfg.NewsSink,
	}
	w.master = newWorldMaster()
	w.projects = newProjectBoard()
	w.crafter = &fieldCrafter{w: w}
	w.achieve = newAchievements()
	w.loadAll()
	return w
}

// Tick is safe to call from any goroutine.
func (w *World) Tick() uint64 { return w.tick.Load() }

func (w *World) Grid() *grid.Grid { return w.grid }

func (w *World) Uptime() time.Duration { return time.Since(w.startedAt) }

// shared builds the cognition bundle. Constructed per call; everything
// inside is a pointer into the world.
func (w *World) shared() *cognition.Shared {
	return &cognition.Shared{
		Grid:      w.grid,
		Agents:    w.agents,
		Minds:     w.minds,
		Knowledge: w.know,
		Oracle:    w.oracle,
		Tuning:    w.tun,
		RNG:       w.rng,
		Events:    (*worldEvents)(w),
		Dangers:   w.master,
		Projects:  w.projects,
		Crafter:   w.crafter,
	}
}

// Run drives the simulation until ctx is cancelled or Stop is called.
// External requests are drained at the tick boundary so every mutation
// happens on this goroutine.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(w.tun.TickMs) * time.Millisecond)
	defer ticker.Stop()

	var pendingSpawns []SpawnRequest

	for {
		select {
		case <-ctx.Done():
			w.persistAll()
			return ctx.Err()
		case <-w.stop:
			w.persistAll()
			return nil
		case req := <-w.spawnCh:
			pendingSpawns = append(pendingSpawns, req)
		case join := <-w.obsJoin:
			w.attachObserver(join)
		case out := <-w.obsLeave:
			delete(w.observers, out)
			w.stats.ObserverCount = len(w.observers)
		case op := <-w.ops:
			op()
		case <-ticker.C:
			w.step(pendingSpawns)
			pendingSpawns = pendingSpawns[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Do runs fn on the world loop and waits for it. Used by the HTTP
// handlers for consistent reads and small mutations.
func (w *World) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case w.ops <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stop:
		return context.Canceled
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Spawn queues a spawn request and waits for the next tick boundary.
func (w *World) Spawn(ctx context.Context, name string) (*agent.Agent, error) {
	resp := make(chan SpawnResponse, 1)
	select {
	case w.spawnCh <- SpawnRequest{Name: name, Resp: resp}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-resp:
		return r.Agent, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AttachObserver registers a WS client. The init payload arrives on out
// before any broadcast.
func (w *World) AttachObserver(out chan []byte) {
	select {
	case w.obsJoin <- ObserverJoin{Out: out}:
	case <-w.stop:
	}
}

func (w *World) DetachObserver(out chan []byte) {
	select {
	case w.obsLeave <- out:
	case <-w.stop:
	}
}

func (w *World) attachObserver(join ObserverJoin) {
	w.observers[join.Out] = struct{}{}
	w.stats.ObserverCount = len(w.observers)

	newsHead := w.news
	if len(newsHead) > 20 {
		newsHead = newsHead[:20]
	}
	msg := protocol.InitMsg{
		Type:   protocol.TypeInit,
		Tick:   w.tick.Load(),
		World:  w.worldInfo(),
		Agents: w.serializedAgents(),
		News:   newsHead,
	}
	if b, err := json.Marshal(msg); err == nil {
		sendLatest(join.Out, b)
	}
}

func (w *World) worldInfo() protocol.WorldInfo {
	sx, sy := w.grid.Spawn()
	return protocol.WorldInfo{
		Width:  w.grid.Width(),
		Height: w.grid.Height(),
		SpawnX: sx,
		SpawnY: sy,
	}
}

// step advances the world one tick. Order is fixed: spawns, weather,
// ecosystem, per-agent cognition, world-master, projects, broadcast,
// persistence, heartbeat.
func (w *World) step(spawns []SpawnRequest) {
	started := time.Now()
	w.tick.Add(1)
	nowTick := w.tick.Load()
	now := time.Now()

	for _, req := range spawns {
		a, err := w.agents.Spawn(req.Name, nowTick, w.rng)
		if err == nil {
			w.stats.SpawnsTotal++
			w.minds.Ensure(a.ID)
			w.addNews(protocol.TypeAgentSpawn, a.ID, a.Name, a.Name+" wandered into the world.", string(a.Zone))
		}
		if req.Resp != nil {
			req.Resp <- SpawnResponse{Agent: a, Err: err}
		}
	}

	w.tickWeather(nowTick)
	w.tickEcosystem(nowTick)

	w.agents.Live(func(a *agent.Agent) {
		w.stepAgent(a, nowTick, now)
	})
	w.tickDecay(nowTick)

	if w.tun.WorldMasterEveryTicks > 0 && nowTick%uint64(w.tun.WorldMasterEveryTicks) == 0 {
		w.master.tick(w, nowTick)
	}
	if w.tun.ProjectEveryTicks > 0 && nowTick%uint64(w.tun.ProjectEveryTicks) == 0 {
		w.projects.tick(w, nowTick)
	}

	w.broadcastTick(nowTick)

	if w.tun.PersistEveryTicks > 0 && nowTick%uint64(w.tun.PersistEveryTicks) == 0 {
		w.persistAll()
	}
	if _, err := w.minds.MaybeSave(w.path("agent-minds.json"), now); err != nil {
		w.logger.Printf("mind save: %v", err)
	}

	if w.tun.HeartbeatEveryTicks > 0 && nowTick%uint64(w.tun.HeartbeatEveryTicks) == 0 {
		gt := w.gameTime(nowTick)
		w.logger.Printf("tick=%d day=%d %02d:%02d weather=%s agents=%d alive=%d observers=%d news=%d",
			nowTick, gt.Day, gt.Hour, gt.Minute, w.weather,
			w.agents.Len(), w.agents.AliveCount(), len(w.observers), len(w.news))
	}

	w.stats.TicksTotal = nowTick
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:    nowTick,
			Agents:  w.agents.Len(),
			Alive:   w.agents.AliveCount(),
			Weather: string(w.weather),
			News:    len(w.news),
			StepMs:  float64(time.Since(started).Microseconds()) / 1000,
		})
	}
}

// gameTime maps ticks onto the in-world clock: one tick is
// MinutesPerTick minutes, day is hour 6 to 20.
func (w *World) gameTime(nowTick uint64) protocol.GameTime {
	totalMinutes := nowTick * uint64(w.tun.MinutesPerTick)
	day := int(totalMinutes / (24 * 60))
	hour := int(totalMinutes / 60 % 24)
	minute := int(totalMinutes % 60)
	period := "night"
	if hour >= 6 && hour < 20 {
		period = "day"
	}
	return protocol.GameTime{Day: day, Hour: hour, Minute: minute, Period: period}
}

func (w *World) timeOfDay(nowTick uint64) cognition.TimeOfDay {
	gt := w.gameTime(nowTick)
	return cognition.TimeOfDay{Hour: gt.Hour, Minute: gt.Minute, Day: gt.Day, Period: gt.Period}
}

// addNews prepends to the cap-bounded ring; newest stays at index 0.
func (w *World) addNews(typ, agentID, name, message, zone string) {
	item := protocol.NewsItem{
		Tick:    w.tick.Load(),
		Type:    typ,
		AgentID: agentID,
		Name:    name,
		Message: message,
		Zone:    zone,
	}
	w.news = append([]protocol.NewsItem{item}, w.news...)
	if len(w.news) > w.tun.NewsCap {
		w.news = w.news[:w.tun.NewsCap]
	}
	w.stats.NewsTotal++
	if w.newsSink != nil {
		w.newsSink.IndexNews(item)
	}
	w.emit(typ, map[string]any{
		"type":    typ,
		"agentId": agentID,
		"name":    name,
		"message": message,
		"zone":    zone,
		"tick":    item.Tick,
	})
}

// News returns the newest n items.
func (w *World) newsHead(n int) []protocol.NewsItem {
	if n <= 0 || n > len(w.news) {
		n = len(w.news)
	}
	out := make([]protocol.NewsItem, n)
	copy(out, w.news[:n])
	return out
}

func (w *World) emit(typ string, payload map[string]any) {
	if len(w.observers) == 0 {
		return
	}
	if payload["type"] == nil {
		payload["type"] = typ
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for out := range w.observers {
		sendLatest(out, b)
	}
	w.stats.BroadcastsTotal++
}

// worldEvents adapts World to cognition.Events.
type worldEvents World

func (e *worldEvents) News(typ, agentID, name, message string, zone grid.Zone) {
	(*World)(e).addNews(typ, agentID, name, message, string(zone))
}

func (e *worldEvents) Emit(typ string, payload map[string]any) {
	(*World)(e).emit(typ, payload)
}

// sendLatest never blocks the world loop. On a full channel it drops one
// stale frame and retries once.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
