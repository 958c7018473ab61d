package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"driftworld/internal/persistence/indexdb"
	persistlog "driftworld/internal/persistence/log"
	"driftworld/internal/protocol"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/tuning"
	"driftworld/internal/sim/world"
	"driftworld/internal/transport/httpapi"
	"driftworld/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		assetPath  = flag.String("world", "./configs/world.json", "world asset path")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed       = flag.Int64("seed", 1337, "world-loop RNG seed")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite news/tick index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tun, err := tuning.Load(tp)
	if err != nil {
		logger.Printf("tuning: %v (using defaults)", err)
		tun = tuning.Defaults()
	}

	asset, err := grid.LoadAsset(*assetPath)
	if err != nil {
		logger.Fatalf("load world asset: %v", err)
	}
	g, err := grid.New(asset)
	if err != nil {
		logger.Fatalf("build grid: %v", err)
	}
	sx, sy := g.Spawn()
	logger.Printf("world %dx%d seed=%q spawn=(%d,%d)", g.Width(), g.Height(), asset.Seed, sx, sy)

	_ = os.MkdirAll(*dataDir, 0o755)

	tickLog := persistlog.NewTickLogger(*dataDir)
	defer tickLog.Close()
	newsLog := persistlog.NewNewsLogger(*dataDir)
	defer newsLog.Close()

	var index *indexdb.SQLiteIndex
	if !*disableDB {
		index, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer index.Close()
	}

	cfg := world.Config{
		Tuning:     tun,
		DataDir:    *dataDir,
		Seed:       *seed,
		Logger:     logger,
		TickLogger: tickLog,
		NewsSink:   newsFanout{log: newsLog, index: index},
	}
	w := world.New(g, cfg)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		var (
			stats world.Stats
			st    world.StatusInfo
		)
		if err := w.Do(r.Context(), func() {
			stats = w.StatsSnapshot()
			st = w.Status()
		}); err != nil {
			http.Error(rw, "world unavailable", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP driftworld_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_tick gauge\n")
		fmt.Fprintf(rw, "driftworld_tick %d\n", st.Tick)

		fmt.Fprintf(rw, "# HELP driftworld_agents Agents in the store.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_agents gauge\n")
		fmt.Fprintf(rw, "driftworld_agents %d\n", st.Agents)

		fmt.Fprintf(rw, "# HELP driftworld_agents_alive Live agents.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_agents_alive gauge\n")
		fmt.Fprintf(rw, "driftworld_agents_alive %d\n", st.Alive)

		fmt.Fprintf(rw, "# HELP driftworld_observers Connected observers.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_observers gauge\n")
		fmt.Fprintf(rw, "driftworld_observers %d\n", stats.ObserverCount)

		fmt.Fprintf(rw, "# HELP driftworld_news_total News items posted since start.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_news_total counter\n")
		fmt.Fprintf(rw, "driftworld_news_total %d\n", stats.NewsTotal)

		fmt.Fprintf(rw, "# HELP driftworld_spawns_total Agents spawned since start.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_spawns_total counter\n")
		fmt.Fprintf(rw, "driftworld_spawns_total %d\n", stats.SpawnsTotal)

		fmt.Fprintf(rw, "# HELP driftworld_deaths_total Agent deaths since start.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_deaths_total counter\n")
		fmt.Fprintf(rw, "driftworld_deaths_total %d\n", stats.DeathsTotal)

		fmt.Fprintf(rw, "# HELP driftworld_intents_total Intents chosen since start.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_intents_total counter\n")
		fmt.Fprintf(rw, "driftworld_intents_total %d\n", stats.IntentsTotal)

		fmt.Fprintf(rw, "# HELP driftworld_stuck_total Path executor stuck signals.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_stuck_total counter\n")
		fmt.Fprintf(rw, "driftworld_stuck_total %d\n", stats.StuckTotal)

		fmt.Fprintf(rw, "# HELP driftworld_forgotten_total Knowledge entries lost to decay.\n")
		fmt.Fprintf(rw, "# TYPE driftworld_forgotten_total counter\n")
		fmt.Fprintf(rw, "driftworld_forgotten_total %d\n", stats.ForgottenTotal)
	})

	httpapi.NewServer(w, logger).Register(mux)
	mux.HandleFunc("/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}

	// The world flushes its stores on ctx cancellation; wait for that
	// before closing the sinks.
	<-worldDone
	logger.Printf("shutdown complete at tick %d", w.Tick())
}

// newsFanout keeps the compressed news history and, when enabled, the
// sqlite index fed from the same stream.
type newsFanout struct {
	log   *persistlog.NewsLogger
	index *indexdb.SQLiteIndex
}

func (f newsFanout) IndexNews(item protocol.NewsItem) {
	_ = f.log.WriteNews(item)
	if f.index != nil {
		f.index.IndexNews(item)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
