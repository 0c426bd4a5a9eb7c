package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter assembles the middleware chain and route table.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.deps.Logger))
	r.Use(recoveryMiddleware(s.deps.Logger))
	r.Use(corsMiddleware(s.deps.Config.API.CORS))
	r.Use(bodySizeLimitMiddleware)

	wsPath := s.deps.Config.WebSocket.Path
	if wsPath == "" {
		wsPath = "/ws"
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/ac/input", s.handleACInput)
		r.Get("/ac/output", s.handleACOutput)

		r.Get("/ess", s.handleESS)
		r.Post("/ess/setpoint", s.handleSetSetpoint)

		r.Get("/batteries", s.handleBatteries)
		r.Get("/batteries/summary", s.handleBatterySummary)

		r.Get("/inverters", s.handleInverters)
		r.Get("/inverters/summary", s.handleInverterSummary)

		r.Get("/state", s.handleState)

		r.Get(wsPath, s.handleWS)
	})

	return r
}

// handleHealth reports process liveness and broker connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.deps.Version,
		"mqtt_connected": s.deps.Telemetry.Connected(),
	})
}
