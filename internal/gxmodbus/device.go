package gxmodbus

import (
	"encoding/binary"
	"fmt"
)

// Victron publishes a fixed register map for the GX Modbus TCP service
// ("CCGX Modbus TCP register list"). Unit ids select the backing D-Bus
// service; the addresses below are the subset used to cross-check the
// MQTT feed.
const (
	// com.victronenergy.system registers.
	regBatteryPower = 842 // /Dc/Battery/Power, int16, W
	regBatterySOC   = 843 // /Dc/Battery/Soc, uint16, %

	// com.victronenergy.vebus registers, scale factor 0.1.
	regACInputPowerL1  = 12 // /Ac/ActiveIn/L1/P, int16
	regACOutputPowerL1 = 23 // /Ac/Out/L1/P, int16

	// vebusPowerScale converts a raw scale-0.1 register to watts.
	vebusPowerScale = 10
)

const (
	defaultSystemUnit = 100
	defaultVebusUnit  = 228
)

// RegisterReader is the transport surface this package needs. The
// infrastructure Modbus client satisfies it directly.
type RegisterReader interface {
	ReadInputRegisters(unitID byte, address, quantity uint16) ([]byte, error)
}

// Config selects the unit ids of the D-Bus services to read. The
// defaults match a stock GX configuration.
type Config struct {
	SystemUnit byte // com.victronenergy.system, default 100
	VebusUnit  byte // com.victronenergy.vebus, default 228
}

func (c Config) withDefaults() Config {
	if c.SystemUnit == 0 {
		c.SystemUnit = defaultSystemUnit
	}
	if c.VebusUnit == 0 {
		c.VebusUnit = defaultVebusUnit
	}
	return c
}

// Device reads typed values from the GX register map. It holds no
// state; every getter performs one register read.
type Device struct {
	reader RegisterReader
	cfg    Config
}

// New wires a Device to a register transport.
func New(reader RegisterReader, cfg Config) (*Device, error) {
	if reader == nil {
		return nil, fmt.Errorf("register reader is required")
	}
	return &Device{reader: reader, cfg: cfg.withDefaults()}, nil
}

// readU16 fetches one register and decodes it big-endian, the Modbus
// wire order.
func (d *Device) readU16(unit byte, address uint16) (uint16, error) {
	data, err := d.reader.ReadInputRegisters(unit, address, 1)
	if err != nil {
		return 0, err
	}
	if len(data) < 2 {
		return 0, fmt.Errorf("short register read: %d bytes", len(data))
	}
	return binary.BigEndian.Uint16(data), nil
}

// ACInputPower returns the grid-side L1 power in watts. Negative means
// the installation feeds the grid.
func (d *Device) ACInputPower() (float64, error) {
	raw, err := d.readU16(d.cfg.VebusUnit, regACInputPowerL1)
	if err != nil {
		return 0, fmt.Errorf("reading AC input power: %w", err)
	}
	return float64(int16(raw)) * vebusPowerScale, nil
}

// ACOutputPower returns the load-side L1 power in watts.
func (d *Device) ACOutputPower() (float64, error) {
	raw, err := d.readU16(d.cfg.VebusUnit, regACOutputPowerL1)
	if err != nil {
		return 0, fmt.Errorf("reading AC output power: %w", err)
	}
	return float64(int16(raw)) * vebusPowerScale, nil
}

// BatteryPower returns the DC battery power in watts. Positive charges
// the battery.
func (d *Device) BatteryPower() (float64, error) {
	raw, err := d.readU16(d.cfg.SystemUnit, regBatteryPower)
	if err != nil {
		return 0, fmt.Errorf("reading battery power: %w", err)
	}
	return float64(int16(raw)), nil
}

// BatterySOC returns the battery state of charge in percent.
func (d *Device) BatterySOC() (float64, error) {
	raw, err := d.readU16(d.cfg.SystemUnit, regBatterySOC)
	if err != nil {
		return 0, fmt.Errorf("reading battery soc: %w", err)
	}
	return float64(raw), nil
}

// ReadRegisters exposes a raw read for ad hoc inspection, e.g. from
// cmd/gxpoll.
func (d *Device) ReadRegisters(unit byte, address, quantity uint16) ([]byte, error) {
	return d.reader.ReadInputRegisters(unit, address, quantity)
}

// Readings is one polled pass over the cross-check registers.
type Readings struct {
	ACInputPower  float64
	ACOutputPower float64
	BatteryPower  float64
	BatterySOC    float64
}

// Poll reads every cross-check register, failing on the first error.
func (d *Device) Poll() (Readings, error) {
	var r Readings
	var err error
	if r.ACInputPower, err = d.ACInputPower(); err != nil {
		return Readings{}, err
	}
	if r.ACOutputPower, err = d.ACOutputPower(); err != nil {
		return Readings{}, err
	}
	if r.BatteryPower, err = d.BatteryPower(); err != nil {
		return Readings{}, err
	}
	if r.BatterySOC, err = d.BatterySOC(); err != nil {
		return Readings{}, err
	}
	return r, nil
}
