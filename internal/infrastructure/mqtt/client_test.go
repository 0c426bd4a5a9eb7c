package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/venus-link/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "venuslink-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 0,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// mockLogger implements Logger interface for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *mockLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

func (l *mockLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

// fakeMessage implements pahomqtt.Message for handler tests.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// =============================================================================
// Client ID Tests
// =============================================================================

func TestResolveClientID_Configured(t *testing.T) {
	if got := resolveClientID("my-client"); got != "my-client" {
		t.Errorf("resolveClientID() = %q, want %q", got, "my-client")
	}
}

func TestResolveClientID_Generated(t *testing.T) {
	id := resolveClientID("")

	if !strings.HasPrefix(id, "venuslink-") {
		t.Errorf("resolveClientID() = %q, want venuslink- prefix", id)
	}

	if len(id) != len("venuslink-")+8 {
		t.Errorf("resolveClientID() length = %d, want %d", len(id), len("venuslink-")+8)
	}

	other := resolveClientID("")
	if id == other {
		t.Errorf("resolveClientID() produced duplicate ID %q", id)
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = "192.168.11.1"
	cfg.Auth.Username = "user"
	cfg.Auth.Password = "pass"

	opts := buildClientOptions(cfg, "venuslink-abc")

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers count = %d, want 1", len(opts.Servers))
	}

	if got := opts.Servers[0].String(); got != "tcp://192.168.11.1:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://192.168.11.1:1883")
	}

	if opts.ClientID != "venuslink-abc" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "venuslink-abc")
	}

	if opts.Username != "user" || opts.Password != "pass" {
		t.Errorf("credentials = %q/%q, want user/pass", opts.Username, opts.Password)
	}

	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}

	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}

	if opts.TLSConfig != nil {
		t.Error("TLSConfig should be nil when TLS disabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg, "venuslink-tls")

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("broker scheme = %q, want %q", got, "ssl")
	}

	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig should be set when TLS enabled")
	}

	if opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Errorf("TLS MinVersion = %d, want %d", opts.TLSConfig.MinVersion, tlsMinVersion)
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg, "venuslink-lwt")

	configureLWT(opts, "venuslink-lwt")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}

	if opts.WillTopic != "venuslink/system/status" {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, "venuslink/system/status")
	}

	if opts.WillQos != 1 {
		t.Errorf("WillQos = %d, want 1", opts.WillQos)
	}

	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("WillPayload is not valid JSON: %v", err)
	}

	if payload["status"] != "offline" {
		t.Errorf("LWT status = %q, want %q", payload["status"], "offline")
	}

	if payload["reason"] != "unexpected_disconnect" {
		t.Errorf("LWT reason = %q, want %q", payload["reason"], "unexpected_disconnect")
	}
}

func TestStatusPayloads(t *testing.T) {
	var online map[string]string
	if err := json.Unmarshal([]byte(buildOnlinePayload("c1")), &online); err != nil {
		t.Fatalf("online payload is not valid JSON: %v", err)
	}
	if online["status"] != "online" || online["client_id"] != "c1" {
		t.Errorf("online payload = %v", online)
	}

	var offline map[string]string
	if err := json.Unmarshal([]byte(buildOfflinePayload("c1")), &offline); err != nil {
		t.Fatalf("offline payload is not valid JSON: %v", err)
	}
	if offline["status"] != "offline" || offline["reason"] != "graceful_shutdown" {
		t.Errorf("offline payload = %v", offline)
	}
}

// =============================================================================
// Disconnected Client Tests
// =============================================================================

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := client.HealthCheck(ctx)
	if err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := &Client{}

	err := client.Publish("test/topic", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	client := &Client{}

	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("test/topic", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	client := &Client{}

	err := client.Publish("test/topic", []byte("test"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("test/topic", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("test/topic", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	client := &Client{}

	err := client.Subscribe("test/topic", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestUnsubscribeDisconnected(t *testing.T) {
	client := &Client{}

	err := client.Unsubscribe("test/topic")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := &Client{}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := &Client{}

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

// =============================================================================
// Handler Wrapping Tests
// =============================================================================

func TestWrapHandler_PanicRecovered(t *testing.T) {
	client := &Client{}
	logger := &mockLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		panic("handler exploded")
	})

	// Must not propagate the panic
	wrapped(nil, &fakeMessage{topic: "N/test/topic", payload: []byte("{}")})

	if logger.errorCount() != 1 {
		t.Errorf("error log count = %d, want 1", logger.errorCount())
	}
}

func TestWrapHandler_ErrorLogged(t *testing.T) {
	client := &Client{}
	logger := &mockLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		return errors.New("handler error")
	})

	wrapped(nil, &fakeMessage{topic: "N/test/topic", payload: []byte("{}")})

	if logger.warnCount() != 1 {
		t.Errorf("warn log count = %d, want 1", logger.warnCount())
	}
}

func TestWrapHandler_NoLoggerNoPanic(t *testing.T) {
	client := &Client{}

	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		panic("handler exploded")
	})

	// Safe even without a logger set
	wrapped(nil, &fakeMessage{topic: "N/test/topic"})
}

func TestSetLogger(t *testing.T) {
	client := &Client{}
	logger := &mockLogger{}

	client.SetLogger(logger)
	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)
	if client.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	const serial = "028102353a50"

	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "Telemetry",
			builder: func() string {
				return Topics{}.Telemetry(serial)
			},
			expected: "N/028102353a50/#",
		},
		{
			name: "TelemetryPrefix",
			builder: func() string {
				return Topics{}.TelemetryPrefix(serial)
			},
			expected: "N/028102353a50/",
		},
		{
			name: "Notification",
			builder: func() string {
				return Topics{}.Notification(serial, "vebus/275/Ac/ActiveIn/L1/P")
			},
			expected: "N/028102353a50/vebus/275/Ac/ActiveIn/L1/P",
		},
		{
			name: "Keepalive",
			builder: func() string {
				return Topics{}.Keepalive(serial)
			},
			expected: "R/028102353a50/keepalive",
		},
		{
			name: "ReadRequest",
			builder: func() string {
				return Topics{}.ReadRequest(serial, "system/0/Serial")
			},
			expected: "R/028102353a50/system/0/Serial",
		},
		{
			name: "WriteRequest",
			builder: func() string {
				return Topics{}.WriteRequest(serial, "vebus/275/Mode")
			},
			expected: "W/028102353a50/vebus/275/Mode",
		},
		{
			name: "ESSSetpoint",
			builder: func() string {
				return Topics{}.ESSSetpoint(serial)
			},
			expected: "W/028102353a50/settings/0/Settings/CGwacs/AcPowerSetPoint",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "venuslink/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}
