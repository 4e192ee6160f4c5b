// Package server exposes the scanner over HTTP and a WebSocket API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hetulpatel/edgescan/internal/cache"
	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/scanner"
)

// Server dispatches scan and focus requests to the pipeline service. Each
// request runs on its own handler goroutine; concurrent artifact writes are
// last-write-wins.
type Server struct {
	svc      *scanner.Service
	upgrader websocket.Upgrader
}

// New builds a server around a pipeline service.
func New(svc *scanner.Service) *Server {
	return &Server{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router wires all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/signals", s.handleSignals).Methods(http.MethodGet)
	r.HandleFunc("/scan", s.handleScan).Methods(http.MethodPost)
	r.HandleFunc("/focus", s.handleFocus).Methods(http.MethodPost)
	r.HandleFunc("/latest/{kind}", s.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	payload := s.svc.GenerateSignals(r.Context(), nil, nil, nil)
	writeJSON(w, payload)
}

type scanRequest struct {
	Persist bool `json:"persist"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil {
		// A missing or malformed body simply means persist=false.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	payload := s.svc.GenerateSignals(r.Context(), nil, nil, nil)
	if req.Persist {
		if _, err := s.svc.WriteSignals(r.Context(), payload, ""); err != nil {
			logging.Errorf("[server] persist signals: %v", err)
		}
	}
	writeJSON(w, payload)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	payload := s.svc.ComputeFocus(r.Context(), true)
	writeJSON(w, payload)
}

// handleLatest serves the cache mirror of the most recent payload without
// running a scan. Kind is "signals" or "focus".
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	if kind != cache.KeySignals && kind != cache.KeyFocus {
		writeError(w, http.StatusNotFound, "unknown_kind")
		return
	}
	raw, ok := s.svc.LatestCached(r.Context(), kind)
	if !ok {
		writeError(w, http.StatusNotFound, "not_cached")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(raw); err != nil {
		logging.Errorf("[server] write cached payload: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": code}); err != nil {
		logging.Errorf("[server] encode error response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("[server] encode response: %v", err)
	}
}
