package venus

import "errors"

// ErrSetpointPublish is returned when a grid setpoint command does not
// reach the broker. Use errors.Is() to check for it in calling code.
var ErrSetpointPublish = errors.New("venus: setpoint publish failed")

// Decode failures stay inside the package; the ingestion loop matches
// on them to pick a log level. A payload without a numeric value is
// routine (Venus OS publishes null for absent readings), the other two
// mean the payload is corrupt.
var (
	errPayloadNotUTF8 = errors.New("venus: payload is not valid UTF-8")
	errPayloadNotJSON = errors.New("venus: payload is not valid JSON")
	errValueMissing   = errors.New("venus: payload carries no numeric value")
)
