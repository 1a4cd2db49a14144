package spectator

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15/v3"
)

// TeamSnapshot is a read-only view of one registered team, for the
// debug teams listing.
type TeamSnapshot struct {
	Name            string   `json:"name"`
	ExpectedPlayers int      `json:"expected_players"`
	Players         []string `json:"players"`
}

// CellSnapshot is one maze cell, for the debug graph view.
type CellSnapshot struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Goal bool `json:"goal"`
}

// TeamsFunc returns a snapshot of every registered team.
type TeamsFunc func() []TeamSnapshot

// GraphFunc returns the maze cell grid visible to the holder of token,
// or false if token does not identify a registered team.
type GraphFunc func(token string) ([]CellSnapshot, bool)

// Server is the optional read-only HTTP surface onto a running server:
// team listings, a maze snapshot per team token, and the live WebSocket
// event feed. It is wired up by cmd/server, never by the core server
// package, so that the spectator surface never needs to import it.
type Server struct {
	log    log15.Logger
	hub    *Hub
	teams  TeamsFunc
	graph  GraphFunc
	router *mux.Router
}

// NewServer builds a spectator HTTP server. hub may be nil if the
// WebSocket feed is disabled.
func NewServer(log log15.Logger, hub *Hub, teams TeamsFunc, graph GraphFunc) *Server {
	s := &Server{log: log, hub: hub, teams: teams, graph: graph, router: mux.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	debug := s.router.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/teams", s.handleTeams).Methods(http.MethodGet)
	debug.HandleFunc("/teams/{token}/graph", s.handleGraph).Methods(http.MethodGet)
	debug.HandleFunc("/ws", s.handleWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": s.teams()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	cells, ok := s.graph(token)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown registration token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cells": cells})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "spectator feed disabled")
		return
	}
	s.hub.ServeWS(w, r)
}
