package httpapi

import (
	"encoding/json"
	"net/http"

	"rovmesh/logging"
)

func (s *Server) routes() {
	s.router.Get("/status", s.getStatus)
	s.router.Post("/arm", s.postArm)
	s.router.Post("/disarm", s.postDisarm)
	s.router.Get("/ws", s.getWebsocket)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) postArm(w http.ResponseWriter, r *http.Request) {
	s.respondToRequest(w, s.RequestArm())
}

func (s *Server) postDisarm(w http.ResponseWriter, r *http.Request) {
	s.respondToRequest(w, s.RequestDisarm())
}

func (s *Server) respondToRequest(w http.ResponseWriter, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.DebugPrintWithPackage("httpapi", "ws upgrade failed: %v", err)
		return
	}

	client := newWSClient(conn)
	s.clients.Set(client.id, client)

	if snap, err := s.Snapshot(); err == nil {
		client.push(snap)
	}

	defer s.clients.Delete(client.id)
	client.run()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("httpapi: encode response: %v", err)
	}
}
