// Command setpoint issues a one-shot ESS grid setpoint write to the GX
// device and optionally watches the applied value as the device ramps
// towards it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/venus-link/internal/infrastructure/config"
	"github.com/nerrad567/venus-link/internal/infrastructure/mqtt"
	"github.com/nerrad567/venus-link/internal/venus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "path to config.yaml")
	watts := flag.Float64("watts", 0, "grid setpoint in watts (negative exports to the grid)")
	wait := flag.Duration("wait", 0, "after publishing, watch the applied setpoint for this long")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer mqttClient.Close()

	// A full session rather than a bare publish: the keepalive keeps
	// the device's feed open during -wait, and the subscription shows
	// the applied setpoint coming back.
	svc, err := venus.New(venus.Options{
		Config: venus.Config{
			Serial:            cfg.Device.Serial,
			SubscribeQoS:      byte(cfg.MQTT.QoS),
			KeepaliveInterval: cfg.GetKeepaliveInterval(),
			ErrorBackoff:      cfg.GetErrorBackoff(),
		},
		MQTT: &mqttServiceAdapter{client: mqttClient},
	})
	if err != nil {
		return fmt.Errorf("creating telemetry session: %w", err)
	}
	if err := svc.Start(); err != nil {
		return fmt.Errorf("starting telemetry session: %w", err)
	}
	defer svc.Close()

	if err := svc.SetGridSetpoint(*watts); err != nil {
		return fmt.Errorf("publishing setpoint: %w", err)
	}
	fmt.Printf("setpoint %.1f W published to %s\n", *watts, cfg.Device.Serial)

	if *wait <= 0 {
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deadline := time.NewTimer(*wait)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			stamp := time.Now().Format("15:04:05")
			if ess := svc.ESS(); ess.GridSetpoint.Valid {
				fmt.Printf("%s  applied setpoint %8.1f W\n", stamp, ess.GridSetpoint.Value)
			} else {
				fmt.Printf("%s  applied setpoint not yet reported\n", stamp)
			}
		}
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("VENUSLINK_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

// mqttServiceAdapter adapts the infrastructure MQTT client to the
// telemetry session's MQTTClient interface.
type mqttServiceAdapter struct {
	client *mqtt.Client
}

func (a *mqttServiceAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

func (a *mqttServiceAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error {
	return a.client.Subscribe(topic, qos, mqtt.MessageHandler(handler))
}

func (a *mqttServiceAdapter) Unsubscribe(topic string) error {
	return a.client.Unsubscribe(topic)
}

func (a *mqttServiceAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
