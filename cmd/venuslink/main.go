// Venus Link - live GX device telemetry over MQTT
//
// This is the main entry point for the Venus Link daemon. It maintains
// a queryable snapshot of a Victron GX device by subscribing to the
// device's MQTT notification tree, keeps the feed alive with periodic
// keepalive publishes, and serves the snapshot over an HTTP and
// WebSocket API. An optional Modbus TCP cross-check polls the GX
// register map and logs the readings next to the MQTT values.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/venus-link/internal/api"
	"github.com/nerrad567/venus-link/internal/gxmodbus"
	"github.com/nerrad567/venus-link/internal/infrastructure/config"
	"github.com/nerrad567/venus-link/internal/infrastructure/logging"
	"github.com/nerrad567/venus-link/internal/infrastructure/modbus"
	"github.com/nerrad567/venus-link/internal/infrastructure/mqtt"
	"github.com/nerrad567/venus-link/internal/venus"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "./config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Venus Link",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	// Start the telemetry session
	svc, err := venus.New(venus.Options{
		Config: venus.Config{
			Serial:            cfg.Device.Serial,
			SubscribeQoS:      byte(cfg.MQTT.QoS),
			KeepaliveInterval: cfg.GetKeepaliveInterval(),
			ErrorBackoff:      cfg.GetErrorBackoff(),
		},
		MQTT:   &mqttServiceAdapter{client: mqttClient},
		Logger: log.With("component", "venus"),
	})
	if err != nil {
		return fmt.Errorf("creating telemetry session: %w", err)
	}

	// The wrapper reconnects and restores the subscription on its own;
	// the session only needs to know so it can pause ingestion.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		svc.NotifyTransportError(err)
	})

	if err := svc.Start(); err != nil {
		return fmt.Errorf("starting telemetry session: %w", err)
	}
	defer func() {
		log.Info("closing telemetry session")
		if closeErr := svc.Close(); closeErr != nil {
			log.Error("error closing telemetry session", "error", closeErr)
		}
	}()
	log.Info("telemetry session started", "serial", cfg.Device.Serial)

	// Start the Modbus cross-check (optional)
	if cfg.Modbus.Enabled {
		modbusClient, err := modbus.Connect(cfg.Modbus)
		if err != nil {
			return fmt.Errorf("connecting to Modbus: %w", err)
		}
		defer func() {
			log.Info("closing Modbus connection")
			if closeErr := modbusClient.Close(); closeErr != nil {
				log.Error("error closing Modbus", "error", closeErr)
			}
		}()

		gx, err := gxmodbus.New(modbusClient, gxmodbus.Config{
			SystemUnit: byte(cfg.Modbus.SystemUnit),
			VebusUnit:  byte(cfg.Modbus.VebusUnit),
		})
		if err != nil {
			return fmt.Errorf("creating register reader: %w", err)
		}

		go crossCheckLoop(ctx, gx, svc, log.With("component", "modbus"), cfg.GetModbusPollInterval())
		log.Info("Modbus cross-check started",
			"addr", fmt.Sprintf("%s:%d", cfg.Modbus.Host, cfg.Modbus.Port),
			"interval", cfg.GetModbusPollInterval(),
		)
	} else {
		log.Info("Modbus cross-check disabled")
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:    cfg,
		Logger:    log.With("component", "api"),
		Telemetry: svc,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	// Verify the broker connection is healthy before declaring ready
	if err := healthCheck(ctx, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Modbus (if enabled)
	// 3. Telemetry session (unsubscribes, joins workers)
	// 4. MQTT

	log.Info("Venus Link stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses VENUSLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VENUSLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the broker connection is healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}

// crossCheckLoop polls the GX register map and logs the readings next
// to the current MQTT snapshot, making drift between the two transport
// paths visible.
func crossCheckLoop(ctx context.Context, gx *gxmodbus.Device, svc *venus.Service, log *logging.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			readings, err := gx.Poll()
			if err != nil {
				log.Warn("register poll failed", "error", err)
				continue
			}
			log.Info("register cross-check",
				"modbus_ac_input_w", readings.ACInputPower,
				"mqtt_ac_input_w", svc.ACInput().Power.Float64(),
				"modbus_ac_output_w", readings.ACOutputPower,
				"mqtt_ac_output_w", svc.ACOutput().Power.Float64(),
				"modbus_battery_w", readings.BatteryPower,
				"modbus_battery_soc", readings.BatterySOC,
			)
		}
	}
}

// mqttServiceAdapter adapts the infrastructure MQTT client to the
// telemetry session's MQTTClient interface. The session declares its
// subscribe handler as a plain func type, so the conversion to the
// named mqtt.MessageHandler happens here.
type mqttServiceAdapter struct {
	client *mqtt.Client
}

// Publish implements venus.MQTTClient.
func (a *mqttServiceAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements venus.MQTTClient.
func (a *mqttServiceAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error {
	return a.client.Subscribe(topic, qos, mqtt.MessageHandler(handler))
}

// Unsubscribe implements venus.MQTTClient.
func (a *mqttServiceAdapter) Unsubscribe(topic string) error {
	return a.client.Unsubscribe(topic)
}

// IsConnected implements venus.MQTTClient.
func (a *mqttServiceAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
