package modbus

import "errors"

// Domain-specific errors for Modbus operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting reads on a closed client.
	ErrNotConnected = errors.New("modbus: client not connected")

	// ErrConnectionFailed is returned when the TCP connection attempt fails.
	ErrConnectionFailed = errors.New("modbus: connection failed")

	// ErrInvalidConfig is returned when the Modbus configuration is incomplete.
	ErrInvalidConfig = errors.New("modbus: invalid configuration")

	// ErrInvalidQuantity is returned when a read requests an out-of-range
	// register count.
	ErrInvalidQuantity = errors.New("modbus: invalid register quantity")

	// ErrReadFailed is returned when a register read fails or the device
	// answers with a Modbus exception.
	ErrReadFailed = errors.New("modbus: read failed")
)
