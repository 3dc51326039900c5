// Package observer streams completed grid cycles to websocket clients.
package observer

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/persist"
	"github.com/hexforge/hexgrid/internal/terrain"
)

const (
	FrameCycle = "CYCLE"

	subscriberQueue = 16
	historyLimit    = 20
)

// TileView is the wire form of one tile.
type TileView struct {
	X     int        `json:"x"`
	Y     int        `json:"y"`
	Pos   [3]float64 `json:"pos"`
	Biome string     `json:"biome"`
}

// Frame is one websocket message.
type Frame struct {
	Type   string           `json:"type"`
	Report grid.CycleReport `json:"report"`
	Tiles  []TileView       `json:"tiles,omitempty"`
}

// BootstrapResponse is served on /bootstrap.
type BootstrapResponse struct {
	Server      string                 `json:"server"`
	Subscribers int                    `json:"subscribers"`
	Latest      *Frame                 `json:"latest"`
	History     []persist.CycleSummary `json:"history,omitempty"`
}

type Options struct {
	Name        string
	AllowRemote bool
	// Tiles, when set, is read on the game loop to attach the tile table to
	// each frame.
	Tiles func() *terrain.Table
	// History, when set, backs the bootstrap history list.
	History persist.Journal
}

// Server implements grid.Observer. Publishing never blocks: a subscriber
// whose queue is full misses the frame.
type Server struct {
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu     sync.Mutex
	subs   map[uint64]chan []byte
	latest *Frame
	raw    []byte
	closed bool
}

func NewServer(opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		opts: opts,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[uint64]chan []byte),
	}
}

// Handler serves /bootstrap and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/ws", s.WSHandler())
	return mux
}

func (s *Server) CycleCompleted(r grid.CycleReport) {
	f := &Frame{Type: FrameCycle, Report: r}
	if s.opts.Tiles != nil {
		f.Tiles = tileViews(s.opts.Tiles())
	}
	b, err := json.Marshal(f)
	if err != nil {
		s.log.Error("observer: marshal frame", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = f
	s.raw = b
	for id, ch := range s.subs {
		select {
		case ch <- b:
		default:
			s.log.Debug("observer: subscriber lagging, frame dropped", zap.Uint64("sub", id))
		}
	}
}

func tileViews(t *terrain.Table) []TileView {
	if t.Len() == 0 {
		return nil
	}
	out := make([]TileView, 0, t.Len())
	t.Each(func(_ int, tile terrain.Tile) {
		out = append(out, TileView{
			X:     tile.GridX,
			Y:     tile.GridY,
			Pos:   tile.Position,
			Biome: tile.Biome.String(),
		})
	})
	return out
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Server) subscribe() (uint64, chan []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, false
	}
	id := s.nextID.Add(1)
	ch := make(chan []byte, subscriberQueue)
	if s.raw != nil {
		ch <- s.raw
	}
	s.subs[id] = ch
	return id, ch, true
}

func (s *Server) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close disconnects every subscriber and stops accepting new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Server) allowed(r *http.Request) bool {
	return s.opts.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		s.mu.Lock()
		resp := BootstrapResponse{
			Server:      s.opts.Name,
			Subscribers: len(s.subs),
			Latest:      s.latest,
		}
		s.mu.Unlock()

		if s.opts.History != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			hist, err := s.opts.History.Recent(ctx, historyLimit)
			cancel()
			if err != nil {
				s.log.Warn("observer: history unavailable", zap.Error(err))
			}
			resp.History = hist
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, ok := s.subscribe()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		defer s.unsubscribe(id)
		s.log.Debug("observer: subscriber joined", zap.Uint64("sub", id), zap.String("remote", r.RemoteAddr))

		// Reader: clients send nothing, but reading drives pong and close handling.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
