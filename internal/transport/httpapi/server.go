// Package httpapi serves the REST surface. Live state is read inside
// World.Do so every response is a consistent snapshot; handlers never
// touch simulation state from their own goroutine.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{world: w, log: logger}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/agents", s.handleAgents)
	mux.HandleFunc("GET /api/agents/{id}", s.handleAgent)
	mux.HandleFunc("GET /api/agents/{id}/mind", s.handleMind)
	mux.HandleFunc("POST /api/spawn", s.handleSpawn)
	mux.HandleFunc("POST /api/spawn-many", s.handleSpawnMany)
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("GET /api/world/tile/{x}/{y}", s.handleTile)
	mux.HandleFunc("GET /api/world/area/{x}/{y}/{r}", s.handleArea)
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, code int, msg string) {
	writeJSON(rw, code, protocol.ErrorBody{Error: msg})
}

func (s *Server) handleStatus(rw http.ResponseWriter, r *http.Request) {
	var st world.StatusInfo
	if err := s.world.Do(r.Context(), func() { st = s.world.Status() }); err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	writeJSON(rw, http.StatusOK, st)
}

func (s *Server) handleAgents(rw http.ResponseWriter, r *http.Request) {
	var body []byte
	err := s.world.Do(r.Context(), func() {
		body, _ = json.Marshal(s.world.Agents())
	})
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(body)
}

func (s *Server) handleAgent(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var (
		body  []byte
		found bool
	)
	err := s.world.Do(r.Context(), func() {
		if d, ok := s.world.AgentDetail(id); ok {
			found = true
			body, _ = json.Marshal(d)
		}
	})
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	if !found {
		writeError(rw, http.StatusNotFound, "agent not found")
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(body)
}

func (s *Server) handleMind(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var (
		body  []byte
		found bool
	)
	err := s.world.Do(r.Context(), func() {
		if v, ok := s.world.MindView(id); ok {
			found = true
			body, _ = json.Marshal(v)
		}
	})
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	if !found {
		writeError(rw, http.StatusNotFound, "agent not found")
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(body)
}

func (s *Server) handleSpawn(rw http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, "body must be JSON: {\"name\": string}")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(rw, http.StatusBadRequest, "name is required")
		return
	}
	a, err := s.world.Spawn(r.Context(), req.Name)
	if err != nil {
		writeError(rw, http.StatusConflict, err.Error())
		return
	}
	writeJSON(rw, http.StatusCreated, a)
}

func (s *Server) handleSpawnMany(rw http.ResponseWriter, r *http.Request) {
	var req struct {
		Count  int    `json:"count"`
		Prefix string `json:"prefix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, "body must be JSON: {\"count\": int, \"prefix\": string}")
		return
	}
	if req.Count <= 0 {
		writeError(rw, http.StatusBadRequest, "count must be positive")
		return
	}
	if req.Prefix == "" {
		req.Prefix = "agent"
	}
	var body []byte
	err := s.world.Do(r.Context(), func() {
		spawned := s.world.SpawnMany(req.Prefix, req.Count, s.world.Tick())
		body, _ = json.Marshal(spawned)
	})
	if err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusCreated)
	_, _ = rw.Write(body)
}

func (s *Server) handleNews(rw http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(rw, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	var items []protocol.NewsItem
	if err := s.world.Do(r.Context(), func() { items = s.world.News(limit) }); err != nil {
		writeError(rw, http.StatusServiceUnavailable, "world unavailable")
		return
	}
	if items == nil {
		items = []protocol.NewsItem{}
	}
	writeJSON(rw, http.StatusOK, items)
}

func (s *Server) handleTile(rw http.ResponseWriter, r *http.Request) {
	x, err1 := strconv.Atoi(r.PathValue("x"))
	y, err2 := strconv.Atoi(r.PathValue("y"))
	if err1 != nil || err2 != nil {
		writeError(rw, http.StatusBadRequest, "x and y must be integers")
		return
	}
	info, ok := s.world.TileInfo(x, y)
	if !ok {
		writeError(rw, http.StatusNotFound, "tile out of bounds")
		return
	}
	writeJSON(rw, http.StatusOK, info)
}

func (s *Server) handleArea(rw http.ResponseWriter, r *http.Request) {
	x, err1 := strconv.Atoi(r.PathValue("x"))
	y, err2 := strconv.Atoi(r.PathValue("y"))
	radius, err3 := strconv.Atoi(r.PathValue("r"))
	if err1 != nil || err2 != nil || err3 != nil {
		writeError(rw, http.StatusBadRequest, "x, y and r must be integers")
		return
	}
	if radius < 0 || radius > s.world.MaxAreaRadius() {
		writeError(rw, http.StatusBadRequest, "r out of range")
		return
	}
	writeJSON(rw, http.StatusOK, s.world.AreaTiles(x, y, radius))
}
