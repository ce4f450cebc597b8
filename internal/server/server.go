// HTTP and websocket front end for exercise sessions
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/logging"
	"cyberrange-sim/internal/session"
	"cyberrange-sim/internal/store"
)

const writeWait = 10 * time.Second

// Server exposes session operations over HTTP and replicates terminal deltas
// over websocket attachments.
type Server struct {
	rt  *session.Runtime
	bus *bus.Bus
	mux *http.ServeMux
	up  websocket.Upgrader
}

// NewServer wires the handlers.
func NewServer(rt *session.Runtime, b *bus.Bus) *Server {
	s := &Server{rt: rt, bus: b, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /sessions", s.handleCreate)
	s.mux.HandleFunc("GET /sessions/{id}/state", s.handleState)
	s.mux.HandleFunc("GET /sessions/{id}/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("GET /sessions/{id}/log", s.handleLog)
	s.mux.HandleFunc("POST /sessions/{id}/submit", s.handleSubmit)
	s.mux.HandleFunc("GET /sessions/{id}/attach", s.handleAttach)
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	id := s.rt.CreateSession(req.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rt.Snapshot(r.PathValue("id"))
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap.State)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rt.Snapshot(r.PathValue("id"))
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	viewer := game.Team(r.URL.Query().Get("viewer"))
	admin := r.URL.Query().Get("admin") == "1"
	if !admin && !viewer.Valid() {
		http.Error(w, "viewer must be red or blue, or admin=1", http.StatusBadRequest)
		return
	}
	entries := s.rt.Events(r.PathValue("id"), viewer, admin)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

type submitRequest struct {
	ConnID    string `json:"conn_id"`
	Team      string `json:"team"`
	Spectator bool   `json:"spectator"`
	Control   bool   `json:"control"`
	Command   string `json:"command"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ident := session.Identity{Team: game.Team(req.Team), Spectator: req.Spectator, Control: req.Control}
	lines, err := s.rt.Submit(r.Context(), r.PathValue("id"), req.ConnID, ident, req.Command)
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"lines": lines})
}

// handleAttach upgrades to websocket and streams bus deltas for the session.
// The connection id doubles as the bus origin, so a client attached and
// submitting under the same id never receives its own echo.
func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	sessionID := r.PathValue("id")
	connID := r.URL.Query().Get("conn_id")
	if connID == "" {
		connID = uuid.New().String()
	}
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.bus.Subscribe(sessionID, connID)
	defer s.bus.Unsubscribe(sessionID, connID)

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for d := range ch {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(d); err != nil {
			log.Debug("attach write failed", "session", sessionID, "conn", connID, "err", err)
			return
		}
	}
}

func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
