// Command gxpoll reads the GX device's power registers over Modbus TCP
// and prints them, once or on an interval. It is a diagnostic tool for
// checking the register path independently of the MQTT telemetry feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nerrad567/venus-link/internal/gxmodbus"
	"github.com/nerrad567/venus-link/internal/infrastructure/config"
	"github.com/nerrad567/venus-link/internal/infrastructure/modbus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "venus.local:502", "GX device Modbus TCP address (host:port)")
	systemUnit := flag.Int("system-unit", 100, "unit ID of com.victronenergy.system")
	vebusUnit := flag.Int("vebus-unit", 228, "unit ID of com.victronenergy.vebus")
	interval := flag.Duration("interval", 0, "poll interval; 0 reads once and exits")
	timeout := flag.Int("timeout", 5, "per-request timeout in seconds")
	flag.Parse()

	host, portStr, err := net.SplitHostPort(*addr)
	if err != nil {
		return fmt.Errorf("parsing -addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parsing -addr port: %w", err)
	}

	client, err := modbus.Connect(config.ModbusConfig{
		Host:    host,
		Port:    port,
		Timeout: *timeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	gx, err := gxmodbus.New(client, gxmodbus.Config{
		SystemUnit: byte(*systemUnit),
		VebusUnit:  byte(*vebusUnit),
	})
	if err != nil {
		return err
	}

	if *interval <= 0 {
		return printReadings(gx)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := printReadings(gx); err != nil {
		return err
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Transient read errors should not kill a watch session.
			if err := printReadings(gx); err != nil {
				fmt.Fprintf(os.Stderr, "poll: %v\n", err)
			}
		}
	}
}

func printReadings(gx *gxmodbus.Device) error {
	r, err := gx.Poll()
	if err != nil {
		return err
	}

	fmt.Printf("%s  ac_in %7.0f W  ac_out %7.0f W  battery %7.0f W  soc %5.1f %%\n",
		time.Now().Format("15:04:05"),
		r.ACInputPower, r.ACOutputPower, r.BatteryPower, r.BatterySOC)
	return nil
}
