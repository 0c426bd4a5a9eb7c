package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Venus Link.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Modbus    ModbusConfig    `yaml:"modbus"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies the GX device and tunes the telemetry session.
type DeviceConfig struct {
	// Serial is the VRM portal ID of the GX device, e.g. "028102353a50".
	// It forms the N/<serial>/# subscription and R/<serial>/keepalive topic.
	Serial string `yaml:"serial"`

	// KeepaliveInterval is the keepalive publish cadence in seconds.
	// The GX device stops publishing telemetry roughly a minute after
	// the last keepalive, so this must stay well under that window.
	KeepaliveInterval int `yaml:"keepalive_interval"`

	// ErrorBackoff is the pause in seconds after a transport error
	// before the session retries.
	ErrorBackoff int `yaml:"error_backoff"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID is the MQTT client identifier. When empty a unique ID is
	// generated at connect time so multiple instances do not evict each
	// other from the broker.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// ModbusConfig contains Modbus TCP settings for the register read path.
type ModbusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`

	// SystemUnit is the Modbus unit ID of com.victronenergy.system.
	SystemUnit int `yaml:"system_unit"`

	// VebusUnit is the Modbus unit ID of com.victronenergy.vebus.
	VebusUnit int `yaml:"vebus_unit"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// PollInterval is the register cross-check cadence in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`

	// BroadcastInterval is the snapshot broadcast cadence in seconds.
	BroadcastInterval int `yaml:"broadcast_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: VENUSLINK_SECTION_KEY
// For example: VENUSLINK_DEVICE_SERIAL, VENUSLINK_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			KeepaliveInterval: 10,
			ErrorBackoff:      5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Modbus: ModbusConfig{
			Enabled:      false,
			Port:         502,
			SystemUnit:   100,
			VebusUnit:    228,
			Timeout:      5,
			PollInterval: 60,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:              "/ws",
			MaxMessageSize:    8192,
			BroadcastInterval: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VENUSLINK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("VENUSLINK_DEVICE_SERIAL"); v != "" {
		cfg.Device.Serial = v
	}

	// MQTT
	if v := os.Getenv("VENUSLINK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("VENUSLINK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("VENUSLINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Modbus
	if v := os.Getenv("VENUSLINK_MODBUS_HOST"); v != "" {
		cfg.Modbus.Host = v
	}

	// API
	if v := os.Getenv("VENUSLINK_API_HOST"); v != "" {
		cfg.API.Host = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.Serial == "" {
		errs = append(errs, "device.serial is required (set VENUSLINK_DEVICE_SERIAL environment variable)")
	}
	if c.Device.KeepaliveInterval < 1 {
		errs = append(errs, "device.keepalive_interval must be at least 1 second")
	}
	if c.Device.ErrorBackoff < 1 {
		errs = append(errs, "device.error_backoff must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Modbus validation
	if c.Modbus.Enabled {
		if c.Modbus.Host == "" {
			errs = append(errs, "modbus.host is required when modbus.enabled is true")
		}
		if c.Modbus.Port < 1 || c.Modbus.Port > 65535 {
			errs = append(errs, "modbus.port must be between 1 and 65535")
		}
		if c.Modbus.PollInterval < 1 {
			errs = append(errs, "modbus.poll_interval must be at least 1 second")
		}
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetKeepaliveInterval returns the keepalive publish interval as a Duration.
func (c *Config) GetKeepaliveInterval() time.Duration {
	return time.Duration(c.Device.KeepaliveInterval) * time.Second
}

// GetErrorBackoff returns the transport error backoff as a Duration.
func (c *Config) GetErrorBackoff() time.Duration {
	return time.Duration(c.Device.ErrorBackoff) * time.Second
}

// GetModbusTimeout returns the Modbus request timeout as a Duration.
func (c *Config) GetModbusTimeout() time.Duration {
	return time.Duration(c.Modbus.Timeout) * time.Second
}

// GetModbusPollInterval returns the register cross-check cadence as a
// Duration.
func (c *Config) GetModbusPollInterval() time.Duration {
	return time.Duration(c.Modbus.PollInterval) * time.Second
}

// GetBroadcastInterval returns the WebSocket snapshot cadence as a Duration.
func (c *Config) GetBroadcastInterval() time.Duration {
	return time.Duration(c.WebSocket.BroadcastInterval) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
