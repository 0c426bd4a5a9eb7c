// Package modbus provides Modbus TCP connectivity for Venus Link.
//
// This package manages:
//   - A single TCP connection to the GX device's Modbus server (port 502)
//   - Register reads addressed by per-request unit ID
//   - Request serialisation (one in-flight transaction per connection)
//
// # Architecture
//
// GX devices expose their D-Bus services through a Modbus TCP register map
// alongside the MQTT stream. Each service appears as its own unit ID on
// the shared endpoint:
//
//	unit 100 → com.victronenergy.system  (battery power, state of charge)
//	unit 228 → com.victronenergy.vebus   (AC input/output power)
//
// MQTT remains the primary telemetry path; Modbus serves spot reads and
// tooling that polls a handful of registers.
//
// # Usage
//
//	client, err := modbus.Connect(cfg.Modbus)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// State of charge lives in register 843 of the system service
//	data, err := client.ReadInputRegisters(100, 843, 1)
package modbus
