package mqtt

import "fmt"

// Topic prefixes per the Venus OS MQTT scheme.
//
// The GX device publishes every D-Bus value under N/<serial>/... and
// accepts read and write requests under R/<serial>/... and W/<serial>/...
// The serial is the VRM portal ID, e.g. "028102353a50".
const (
	// TopicPrefixNotify is the base for device value notifications.
	TopicPrefixNotify = "N"

	// TopicPrefixRead is the base for read requests to the device.
	TopicPrefixRead = "R"

	// TopicPrefixWrite is the base for write requests to the device.
	TopicPrefixWrite = "W"

	// TopicPrefixSystem is the base for Venus Link's own system topics.
	TopicPrefixSystem = "venuslink/system"
)

// essSetpointPath is the D-Bus path of the ESS grid power setpoint.
const essSetpointPath = "settings/0/Settings/CGwacs/AcPowerSetPoint"

// Topics provides builders for Venus OS MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	sub := topics.Telemetry("028102353a50")
//	// Returns: "N/028102353a50/#"
type Topics struct{}

// =============================================================================
// Device Telemetry Topics
// =============================================================================

// Telemetry returns the wildcard pattern matching all value notifications
// from a GX device. Subscribe to this to receive the full telemetry stream.
//
// Example: N/028102353a50/#
func (Topics) Telemetry(serial string) string {
	return fmt.Sprintf("%s/%s/#", TopicPrefixNotify, serial)
}

// TelemetryPrefix returns the prefix shared by every value notification
// from a GX device, including the trailing slash. Strip this from an
// incoming topic to obtain the D-Bus style value path.
//
// Example: N/028102353a50/
func (Topics) TelemetryPrefix(serial string) string {
	return fmt.Sprintf("%s/%s/", TopicPrefixNotify, serial)
}

// Notification returns the topic a specific device value is published on.
// Mostly useful in tests for synthesising frames.
//
// Example: N/028102353a50/vebus/275/Ac/ActiveIn/L1/P
func (Topics) Notification(serial, path string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixNotify, serial, path)
}

// =============================================================================
// Device Request Topics
// =============================================================================

// Keepalive returns the keepalive topic for a GX device.
//
// An empty payload published here tells the device that a consumer is
// listening. The device stops publishing telemetry roughly a minute
// after the last keepalive.
//
// Example: R/028102353a50/keepalive
func (Topics) Keepalive(serial string) string {
	return fmt.Sprintf("%s/%s/keepalive", TopicPrefixRead, serial)
}

// ReadRequest returns the topic for requesting a fresh publish of a
// specific device value.
//
// Example: R/028102353a50/system/0/Serial
func (Topics) ReadRequest(serial, path string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixRead, serial, path)
}

// WriteRequest returns the topic for writing a device value. The payload
// must be a JSON object of the form {"value": <v>}.
//
// Example: W/028102353a50/settings/0/Settings/CGwacs/AcPowerSetPoint
func (Topics) WriteRequest(serial, path string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixWrite, serial, path)
}

// ESSSetpoint returns the write topic for the ESS grid power setpoint.
//
// Example: W/028102353a50/settings/0/Settings/CGwacs/AcPowerSetPoint
func (Topics) ESSSetpoint(serial string) string {
	return Topics{}.WriteRequest(serial, essSetpointPath)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns Venus Link's own status topic. Online and offline
// payloads (including the LWT) are published here, retained.
//
// Example: venuslink/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
