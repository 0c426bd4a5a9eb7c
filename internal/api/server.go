package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/venus-link/internal/infrastructure/config"
	"github.com/nerrad567/venus-link/internal/infrastructure/logging"
	"github.com/nerrad567/venus-link/internal/venus"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight
// requests to drain.
const gracefulShutdownTimeout = 10 * time.Second

// Telemetry is the read and command surface the API serves.
// *venus.Service implements it.
type Telemetry interface {
	ACInput() venus.ACMetrics
	ACOutput() venus.ACMetrics
	ESS() venus.ESS
	Batteries() map[int]venus.Battery
	PvInverters() map[int]venus.PvInverter
	BatterySummary() venus.BatterySummary
	PvInverterSummary() venus.PvInverterSummary
	Snapshot() venus.DeviceState
	Connected() bool
	SetGridSetpoint(watts float64) error
}

// Deps carries the server's dependencies. All fields except Version
// are required.
type Deps struct {
	Config    *config.Config
	Logger    *logging.Logger
	Telemetry Telemetry
	Version   string
}

// Server is the HTTP and WebSocket API server.
type Server struct {
	deps       Deps
	httpServer *http.Server
	hub        *Hub
	cancel     context.CancelFunc
}

// New validates dependencies and creates an API server.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Telemetry == nil {
		return nil, errors.New("telemetry is required")
	}

	return &Server{deps: deps}, nil
}

// Start builds the router, binds the listener and launches the
// snapshot broadcaster. It returns once the listener goroutine is
// running; bind failures surface through the error log.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.hub = newHub(s.deps.Logger)

	cfg := s.deps.Config
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      s.buildRouter(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	go s.broadcastLoop(ctx)

	go func() {
		var err error
		if cfg.API.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(cfg.API.TLS.CertFile, cfg.API.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deps.Logger.Error("api server stopped", "error", err)
		}
	}()

	s.deps.Logger.Info("api server listening",
		"addr", s.httpServer.Addr,
		"tls", cfg.API.TLS.Enabled,
	)

	return nil
}

// broadcastLoop pushes the snapshot envelope to every WebSocket client
// on the configured interval.
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.deps.Config.GetBroadcastInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcastSnapshot()
		}
	}
}

// Close stops the broadcaster, disconnects WebSocket clients and
// drains in-flight HTTP requests.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.hub != nil {
		s.hub.closeAll()
	}
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}
