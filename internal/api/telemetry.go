package api

import "net/http"

// Telemetry read handlers. Each renders a copy of the live snapshot,
// so these endpoints never fail and never block on the broker. Before
// the first frame arrives they report unset fields and empty maps.

func (s *Server) handleACInput(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.ACInput())
}

func (s *Server) handleACOutput(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.ACOutput())
}

func (s *Server) handleBatteries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.Batteries())
}

func (s *Server) handleBatterySummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.BatterySummary())
}

func (s *Server) handleInverters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.PvInverters())
}

func (s *Server) handleInverterSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.PvInverterSummary())
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.Snapshot())
}
