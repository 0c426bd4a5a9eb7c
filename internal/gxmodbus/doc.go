// Package gxmodbus reads spot values from a GX device's Modbus TCP
// service.
//
// Venus OS exposes the same D-Bus values it mirrors onto MQTT through a
// fixed Modbus register map, one unit id per D-Bus service. This
// package covers the small register subset useful for cross-checking
// the MQTT snapshot: VE.Bus AC power on both sides and the system
// battery power and state of charge.
//
// The path is stateless and independent of the MQTT core; each getter
// performs one synchronous register read.
package gxmodbus
