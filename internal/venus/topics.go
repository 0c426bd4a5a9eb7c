package venus

import "fmt"

// Venus OS maps its D-Bus tree onto MQTT under three single-letter
// prefixes: N carries notifications, R read requests, W write requests.
const (
	notifyPrefix = "N"
	readPrefix   = "R"
	writePrefix  = "W"
)

// essSetpointPath is the settings path of the ESS grid power target.
const essSetpointPath = "settings/0/Settings/CGwacs/AcPowerSetPoint"

// telemetryTopic returns the wildcard filter covering every
// notification the device publishes.
func telemetryTopic(serial string) string {
	return fmt.Sprintf("%s/%s/#", notifyPrefix, serial)
}

// telemetryPrefix returns the fixed prefix stripped from notification
// topics before routing. Topics without it are not ours.
func telemetryPrefix(serial string) string {
	return fmt.Sprintf("%s/%s/", notifyPrefix, serial)
}

// keepaliveTopic returns the liveness topic the device watches.
func keepaliveTopic(serial string) string {
	return fmt.Sprintf("%s/%s/keepalive", readPrefix, serial)
}

// setpointTopic returns the write topic for the ESS grid power target.
func setpointTopic(serial string) string {
	return fmt.Sprintf("%s/%s/%s", writePrefix, serial, essSetpointPath)
}
