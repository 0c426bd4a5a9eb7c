package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
device:
  serial: "028102353a50"
  keepalive_interval: 10
  error_backoff: 5
mqtt:
  broker:
    host: "192.168.11.1"
    port: 1883
    client_id: "test-client"
  qos: 0
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Serial != "028102353a50" {
		t.Errorf("Device.Serial = %q, want %q", cfg.Device.Serial, "028102353a50")
	}

	if cfg.MQTT.Broker.Host != "192.168.11.1" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "192.168.11.1")
	}

	if cfg.MQTT.QoS != 0 {
		t.Errorf("MQTT.QoS = %d, want 0", cfg.MQTT.QoS)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
device:
  serial: ""
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty device.serial, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	// validDevice satisfies the required device section
	validDevice := DeviceConfig{
		Serial:            "028102353a50",
		KeepaliveInterval: 10,
		ErrorBackoff:      5,
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 0},
				API:    APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "missing serial",
			config: &Config{
				Device: DeviceConfig{KeepaliveInterval: 10, ErrorBackoff: 5},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "zero keepalive interval",
			config: &Config{
				Device: DeviceConfig{Serial: "028102353a50", ErrorBackoff: 5},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "zero error backoff",
			config: &Config{
				Device: DeviceConfig{Serial: "028102353a50", KeepaliveInterval: 10},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 3},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 1},
				API:    APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 1},
				API:    APIConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "modbus enabled without host",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 0},
				Modbus: ModbusConfig{Enabled: true, Port: 502},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "modbus enabled with host",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 0},
				Modbus: ModbusConfig{Enabled: true, Host: "192.168.11.1", Port: 502, PollInterval: 60},
				API:    APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "modbus enabled without poll interval",
			config: &Config{
				Device: validDevice,
				MQTT:   MQTTConfig{QoS: 0},
				Modbus: ModbusConfig{Enabled: true, Host: "192.168.11.1", Port: 502},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Device: DeviceConfig{
			KeepaliveInterval: 10,
			ErrorBackoff:      5,
		},
		Modbus: ModbusConfig{Timeout: 3, PollInterval: 90},
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{BroadcastInterval: 2},
	}

	if got := cfg.GetKeepaliveInterval().Seconds(); got != 10 {
		t.Errorf("GetKeepaliveInterval() = %v, want 10", got)
	}

	if got := cfg.GetErrorBackoff().Seconds(); got != 5 {
		t.Errorf("GetErrorBackoff() = %v, want 5", got)
	}

	if got := cfg.GetModbusTimeout().Seconds(); got != 3 {
		t.Errorf("GetModbusTimeout() = %v, want 3", got)
	}

	if got := cfg.GetModbusPollInterval().Seconds(); got != 90 {
		t.Errorf("GetModbusPollInterval() = %v, want 90", got)
	}

	if got := cfg.GetBroadcastInterval().Seconds(); got != 2 {
		t.Errorf("GetBroadcastInterval() = %v, want 2", got)
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("VENUSLINK_DEVICE_SERIAL", "c0619ab33b21")
	t.Setenv("VENUSLINK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("VENUSLINK_MQTT_USERNAME", "testuser")
	t.Setenv("VENUSLINK_MQTT_PASSWORD", "testpass")
	t.Setenv("VENUSLINK_MODBUS_HOST", "10.0.0.5")
	t.Setenv("VENUSLINK_API_HOST", "192.168.1.1")

	applyEnvOverrides(cfg)

	if cfg.Device.Serial != "c0619ab33b21" {
		t.Errorf("Device.Serial = %q, want %q", cfg.Device.Serial, "c0619ab33b21")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.Modbus.Host != "10.0.0.5" {
		t.Errorf("Modbus.Host = %q, want %q", cfg.Modbus.Host, "10.0.0.5")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Device.KeepaliveInterval != 10 {
		t.Errorf("defaultConfig Device.KeepaliveInterval = %d, want 10", cfg.Device.KeepaliveInterval)
	}

	if cfg.Device.ErrorBackoff != 5 {
		t.Errorf("defaultConfig Device.ErrorBackoff = %d, want 5", cfg.Device.ErrorBackoff)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.QoS != 0 {
		t.Errorf("defaultConfig MQTT.QoS = %d, want 0", cfg.MQTT.QoS)
	}

	if cfg.Modbus.SystemUnit != 100 {
		t.Errorf("defaultConfig Modbus.SystemUnit = %d, want 100", cfg.Modbus.SystemUnit)
	}

	if cfg.Modbus.VebusUnit != 228 {
		t.Errorf("defaultConfig Modbus.VebusUnit = %d, want 228", cfg.Modbus.VebusUnit)
	}

	if cfg.Modbus.PollInterval != 60 {
		t.Errorf("defaultConfig Modbus.PollInterval = %d, want 60", cfg.Modbus.PollInterval)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
