// Package indexdb maintains a secondary SQLite read-model over the tick
// and news streams. Writes flow through a single goroutine fed by a
// buffered channel so the world loop never touches the database.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqNews
)

type req struct {
	kind reqKind

	tick world.TickLogEntry
	news protocol.NewsItem
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: news bursts (bulk spawns, discoveries) must not
		// stall the sim.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			agents INTEGER NOT NULL,
			alive INTEGER NOT NULL,
			weather TEXT NOT NULL,
			news INTEGER NOT NULL,
			step_ms REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS news (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			type TEXT NOT NULL,
			agent_id TEXT,
			name TEXT,
			message TEXT NOT NULL,
			zone TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);`,
		`CREATE INDEX IF NOT EXISTS idx_news_agent ON news(agent_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
	s.wg.Wait()
	return s.db.Close()
}

// WriteTick implements world.TickLogger. Drops the entry rather than
// block when the writer is behind.
func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
	}
	return nil
}

// IndexNews implements world.NewsSink.
func (s *SQLiteIndex) IndexNews(item protocol.NewsItem) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqNews, news: item}:
	default:
	}
}

// NewsSince is a read query for tooling; the live API serves from the
// in-memory ring.
func (s *SQLiteIndex) NewsSince(tick uint64, limit int) ([]protocol.NewsItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT tick, type, COALESCE(agent_id,''), COALESCE(name,''), message, COALESCE(zone,'')
		 FROM news WHERE tick >= ? ORDER BY id DESC LIMIT ?`, tick, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.NewsItem
	for rows.Next() {
		var it protocol.NewsItem
		if err := rows.Scan(&it.Tick, &it.Type, &it.AgentID, &it.Name, &it.Message, &it.Zone); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,agents,alive,weather,news,step_ms) VALUES(?,?,?,?,?,?)`)
	insertNews, _ := s.db.Prepare(`INSERT INTO news(tick,type,agent_id,name,message,zone,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertNews != nil {
			_ = insertNews.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushTimer := time.NewTicker(500 * time.Millisecond)
	defer flushTimer.Stop()

	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			begin()
			if tx == nil {
				continue
			}
			switch r.kind {
			case reqTick:
				if insertTick != nil {
					_, _ = tx.Stmt(insertTick).Exec(
						r.tick.Tick, r.tick.Agents, r.tick.Alive,
						r.tick.Weather, r.tick.News, r.tick.StepMs)
				}
			case reqNews:
				if insertNews != nil {
					_, _ = tx.Stmt(insertNews).Exec(
						r.news.Tick, r.news.Type, r.news.AgentID, r.news.Name,
						r.news.Message, r.news.Zone, time.Now().UTC().Format(time.RFC3339))
				}
			}
			opCount++
			if opCount >= commitEvery {
				commit()
			}
		case <-flushTimer.C:
			if tx != nil && time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
		}
	}
}
