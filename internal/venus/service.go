package venus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	defaultKeepaliveInterval = 10 * time.Second
	defaultErrorBackoff      = 5 * time.Second
	defaultEventBuffer       = 256

	// Keepalive and setpoint publishes use at-least-once delivery.
	// Telemetry stays at the subscription QoS, 0 on Venus OS.
	keepaliveQoS = 1
	commandQoS   = 1
)

// Config carries the per-device settings for a Service.
type Config struct {
	// Serial is the device portal id, e.g. "028102353a50". It appears
	// in every topic the service touches.
	Serial string

	// SubscribeQoS applies to the telemetry subscription. Venus OS
	// publishes notifications at QoS 0.
	SubscribeQoS byte

	// KeepaliveInterval is the period between liveness publishes.
	// Defaults to 10s, comfortably inside the device's one minute
	// publish window.
	KeepaliveInterval time.Duration

	// ErrorBackoff is the pause after a reported transport error before
	// the ingestion loop resumes. Defaults to 5s.
	ErrorBackoff time.Duration

	// EventBuffer sizes the ingestion queue. Defaults to 256.
	EventBuffer int
}

// withDefaults fills unset durations and sizes.
func (c Config) withDefaults() Config {
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = defaultKeepaliveInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = defaultErrorBackoff
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
	return c
}

// MQTTClient captures the MQTT operations the service uses. Defined
// here, on the consumer side, so the package carries no transport
// dependency; the composition root adapts the infrastructure client to
// it.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Logger matches the logging interface used across the project.
// Compatible with *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards everything. Used when no logger is configured.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, args ...any) {}
func (n *noopLogger) Info(msg string, args ...any)  {}
func (n *noopLogger) Warn(msg string, args ...any)  {}
func (n *noopLogger) Error(msg string, args ...any) {}

// eventKind separates telemetry frames from transport error reports on
// the ingestion queue.
type eventKind int

const (
	eventFrame eventKind = iota
	eventTransportError
)

type event struct {
	kind    eventKind
	topic   string
	payload []byte
	err     error
}

// setpointPayload is the write shape Venus OS expects on settings
// topics.
type setpointPayload struct {
	Value float64 `json:"value"`
}

// Service tracks one GX device: it subscribes to the device's
// notification tree, keeps the feed alive, and exposes snapshot reads
// plus the ESS setpoint command.
type Service struct {
	cfg   Config
	mqtt  MQTTClient
	store *Store

	// Topics are fixed per device, built once at construction.
	telemetry string
	prefix    string
	keepalive string
	setpoint  string

	events   chan event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger   Logger
	loggerMu sync.RWMutex
}

// Options bundles the dependencies for New.
type Options struct {
	Config Config
	MQTT   MQTTClient
	Logger Logger // optional, defaults to a no-op logger
}

// New assembles a service around an MQTT transport. The returned
// service owns its own state store; independent instances never share
// state. Call Start to begin ingesting.
func New(opts Options) (*Service, error) {
	if opts.MQTT == nil {
		return nil, fmt.Errorf("mqtt client is required")
	}
	if opts.Config.Serial == "" {
		return nil, fmt.Errorf("device serial is required")
	}

	cfg := opts.Config.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = &noopLogger{}
	}

	return &Service{
		cfg:       cfg,
		mqtt:      opts.MQTT,
		store:     NewStore(),
		telemetry: telemetryTopic(cfg.Serial),
		prefix:    telemetryPrefix(cfg.Serial),
		keepalive: keepaliveTopic(cfg.Serial),
		setpoint:  setpointTopic(cfg.Serial),
		events:    make(chan event, cfg.EventBuffer),
		done:      make(chan struct{}),
		logger:    logger,
	}, nil
}

// SetLogger replaces the logger. Safe to call while running.
func (s *Service) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.loggerMu.Lock()
	s.logger = l
	s.loggerMu.Unlock()
}

func (s *Service) getLogger() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

func (s *Service) logDebug(msg string, args ...any) { s.getLogger().Debug(msg, args...) }
func (s *Service) logInfo(msg string, args ...any)  { s.getLogger().Info(msg, args...) }
func (s *Service) logWarn(msg string, args ...any)  { s.getLogger().Warn(msg, args...) }
func (s *Service) logError(msg string, args ...any) { s.getLogger().Error(msg, args...) }

// ===== Lifecycle =====

// Start subscribes to the device's notification tree and spawns the
// ingestion and keepalive goroutines. The subscription must succeed;
// everything after that point survives transport failures.
func (s *Service) Start() error {
	if err := s.mqtt.Subscribe(s.telemetry, s.cfg.SubscribeQoS, s.handleFrame); err != nil {
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}
	s.logInfo("telemetry subscription established",
		"topic", s.telemetry,
		"serial", s.cfg.Serial,
	)

	s.wg.Add(2)
	go s.ingestLoop()
	go s.keepaliveLoop()
	return nil
}

// Shutdown requests both background goroutines to stop. Idempotent,
// non-blocking and safe from any goroutine, including MQTT callbacks.
// A frame already picked up by the ingestion goroutine may still land;
// Close waits for that window to drain.
func (s *Service) Shutdown() {
	s.stopOnce.Do(func() {
		s.logInfo("shutdown requested")
		close(s.done)
	})
}

// Close shuts the service down, releases the telemetry subscription and
// waits for the background goroutines to exit. Safe to call more than
// once.
func (s *Service) Close() error {
	s.Shutdown()

	var unsubErr error
	if err := s.mqtt.Unsubscribe(s.telemetry); err != nil {
		unsubErr = fmt.Errorf("unsubscribing telemetry: %w", err)
		s.logWarn("telemetry unsubscribe failed", "error", err)
	}

	s.wg.Wait()
	s.logInfo("service stopped")
	return unsubErr
}

// ===== Ingestion =====

// handleFrame runs on the MQTT client's callback goroutine. It hands
// the frame to the ingestion goroutine so every store write happens in
// one place, in arrival order. Frames arriving after shutdown are
// dropped.
func (s *Service) handleFrame(topic string, payload []byte) error {
	select {
	case <-s.done:
		return nil
	default:
	}
	select {
	case s.events <- event{kind: eventFrame, topic: topic, payload: payload}:
	case <-s.done:
	}
	return nil
}

// NotifyTransportError reports a transport failure to the ingestion
// loop, which logs it and pauses for the configured backoff before
// resuming. Reconnection itself is the transport's job. Safe from any
// goroutine; a no-op after shutdown.
func (s *Service) NotifyTransportError(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- event{kind: eventTransportError, err: err}:
	case <-s.done:
	}
}

// ingestLoop is the single writer to the state store. It drains the
// event queue until shutdown, applying frames in arrival order.
func (s *Service) ingestLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			switch ev.kind {
			case eventFrame:
				s.processFrame(ev.topic, ev.payload)
			case eventTransportError:
				s.logError("telemetry transport error", "error", ev.err)
				s.pause(s.cfg.ErrorBackoff)
			}
		}
	}
}

// processFrame decodes and routes one notification. Decode failures
// drop the frame so the previously stored reading survives; topics
// outside the telemetry prefix or without a route are logged at debug
// and ignored. A value-less payload is routine and logged at debug, a
// corrupt one at error.
func (s *Service) processFrame(topic string, payload []byte) {
	path, ok := strings.CutPrefix(topic, s.prefix)
	if !ok {
		s.logDebug("frame outside telemetry prefix", "topic", topic)
		return
	}
	value, err := decodeValue(payload)
	if err != nil {
		if errors.Is(err, errValueMissing) {
			s.logDebug("frame without numeric value", "topic", topic)
		} else {
			s.logError("malformed notification payload", "topic", topic, "error", err)
		}
		return
	}
	if !s.store.Apply(path, value) {
		s.logDebug("frame not routed", "topic", topic)
	}
}

// pause sleeps for d or until shutdown, whichever comes first.
func (s *Service) pause(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
	}
}

// ===== Keepalive =====

// keepaliveLoop publishes to the keepalive topic on a fixed interval.
// Venus OS stops pushing notifications when it hears nothing for
// roughly a minute, so the first publish happens immediately rather
// than one interval in.
func (s *Service) keepaliveLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.KeepaliveInterval)
	defer ticker.Stop()

	s.publishKeepalive()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.publishKeepalive()
		}
	}
}

// publishKeepalive sends one liveness marker. Failures are logged and
// left to the next tick.
func (s *Service) publishKeepalive() {
	if err := s.mqtt.Publish(s.keepalive, nil, keepaliveQoS, false); err != nil {
		s.logWarn("keepalive publish failed", "error", err)
	}
}

// ===== Commands =====

// SetGridSetpoint commands the ESS grid power target in watts.
// Positive values draw from the grid, negative values export. Success
// means the transport accepted the publish; the device ramps toward the
// target on its own schedule, so the observed setpoint may lag the
// commanded one.
func (s *Service) SetGridSetpoint(watts float64) error {
	payload, err := json.Marshal(setpointPayload{Value: watts})
	if err != nil {
		return fmt.Errorf("encoding setpoint: %w", err)
	}
	if err := s.mqtt.Publish(s.setpoint, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrSetpointPublish, err)
	}
	s.logInfo("grid setpoint commanded", "watts", watts)
	return nil
}

// ===== Reads =====
//
// All read accessors return copies of the current state and never fail;
// before the first frame arrives they report unset fields and empty
// maps.

// ACInput returns the grid-side AC readings.
func (s *Service) ACInput() ACMetrics { return s.store.ACInput() }

// ACOutput returns the inverter output AC readings.
func (s *Service) ACOutput() ACMetrics { return s.store.ACOutput() }

// ESS returns the energy storage control state.
func (s *Service) ESS() ESS { return s.store.ESS() }

// Batteries returns every battery record keyed by device id.
func (s *Service) Batteries() map[int]Battery { return s.store.Batteries() }

// PvInverters returns every inverter record keyed by device id.
func (s *Service) PvInverters() map[int]PvInverter { return s.store.PvInverters() }

// BatterySummary returns the reduction across all batteries.
func (s *Service) BatterySummary() BatterySummary { return s.store.BatterySummary() }

// PvInverterSummary returns the reduction across all inverters.
func (s *Service) PvInverterSummary() PvInverterSummary { return s.store.PvInverterSummary() }

// Snapshot returns the full aggregate.
func (s *Service) Snapshot() DeviceState { return s.store.Snapshot() }

// Connected reports whether the MQTT transport currently holds a
// broker connection.
func (s *Service) Connected() bool { return s.mqtt.IsConnected() }
