package modbus

import (
	"fmt"
	"sync"
	"time"

	gomodbus "github.com/goburrow/modbus"

	"github.com/nerrad567/venus-link/internal/infrastructure/config"
)

// maxReadQuantity is the register count limit for a single read,
// per the Modbus application protocol.
const maxReadQuantity = 125

// Client wraps goburrow/modbus with Venus Link-specific functionality.
//
// A GX device exposes several D-Bus services as distinct Modbus unit IDs
// behind one TCP endpoint (com.victronenergy.system, com.victronenergy.vebus
// and so on). The unit ID is therefore a per-request parameter here rather
// than fixed connection state.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Requests are serialised; Modbus TCP allows one in-flight transaction
//     per connection and the unit ID switch must not interleave.
type Client struct {
	handler *gomodbus.TCPClientHandler
	client  gomodbus.Client

	mu        sync.Mutex
	connected bool
}

// Connect establishes a Modbus TCP connection to the GX device.
//
// Parameters:
//   - cfg: Modbus configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the config is incomplete or the TCP dial fails
func Connect(cfg config.ModbusConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	handler := gomodbus.NewTCPClientHandler(addr)
	handler.Timeout = time.Duration(cfg.Timeout) * time.Second

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, addr, err)
	}

	return &Client{
		handler:   handler,
		client:    gomodbus.NewClient(handler),
		connected: true,
	}, nil
}

// ReadInputRegisters reads quantity input registers starting at address
// from the given unit ID. The result is the raw big-endian register data,
// two bytes per register.
//
// Parameters:
//   - unitID: Modbus unit ID of the target service (e.g. 100 for system)
//   - address: First register address
//   - quantity: Number of registers to read (1-125)
func (c *Client) ReadInputRegisters(unitID byte, address, quantity uint16) ([]byte, error) {
	if quantity < 1 || quantity > maxReadQuantity {
		return nil, fmt.Errorf("%w: quantity %d (must be 1-%d)", ErrInvalidQuantity, quantity, maxReadQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, ErrNotConnected
	}

	// The handler carries the unit ID; swap it inside the critical
	// section so concurrent callers cannot interleave.
	c.handler.SlaveId = unitID

	data, err := c.client.ReadInputRegisters(address, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: unit %d address %d: %w", ErrReadFailed, unitID, address, err)
	}

	return data, nil
}

// ReadHoldingRegisters reads quantity holding registers starting at
// address from the given unit ID. GX register maps are readable through
// both function codes; some tooling only speaks holding registers.
func (c *Client) ReadHoldingRegisters(unitID byte, address, quantity uint16) ([]byte, error) {
	if quantity < 1 || quantity > maxReadQuantity {
		return nil, fmt.Errorf("%w: quantity %d (must be 1-%d)", ErrInvalidQuantity, quantity, maxReadQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, ErrNotConnected
	}

	c.handler.SlaveId = unitID

	data, err := c.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: unit %d address %d: %w", ErrReadFailed, unitID, address, err)
	}

	return data, nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close terminates the Modbus TCP connection.
//
// Returns:
//   - error: If closing the underlying connection fails (already closed
//     is not an error)
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler == nil || !c.connected {
		return nil
	}

	c.connected = false

	if err := c.handler.Close(); err != nil {
		return fmt.Errorf("modbus: closing connection: %w", err)
	}

	return nil
}
