// Package ws serves the read-only observer socket: init on connect,
// tick snapshots and narrative events pushed from the world loop, and a
// get_area request/reply for map panning.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/world"
)

const outQueue = 32

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out := make(chan []byte, outQueue)
		s.world.AttachObserver(out)
		defer s.world.DetachObserver(out)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine: everything the world pushes, plus area
		// replies injected by the reader below.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeGetArea {
				continue
			}
			var req protocol.GetAreaMsg
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			s.replyArea(out, req)
		}
	}
}

// replyArea serves get_area from the immutable grid; no world-loop trip
// is needed.
func (s *Server) replyArea(out chan []byte, req protocol.GetAreaMsg) {
	radius := req.Radius
	if radius <= 0 {
		radius = 10
	}
	if radius > s.world.MaxAreaRadius() {
		radius = s.world.MaxAreaRadius()
	}
	msg := protocol.AreaMsg{
		Type:  protocol.TypeArea,
		X:     req.X,
		Y:     req.Y,
		Tiles: s.world.AreaTiles(req.X, req.Y, radius),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
		// Observer is saturated; the area reply is droppable.
	}
}
