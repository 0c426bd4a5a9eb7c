// Package venus maintains a live snapshot of a Victron GX device's
// telemetry over MQTT.
//
// Venus OS mirrors its internal D-Bus onto an MQTT broker. Every value
// change is published under N/<serial>/..., read requests go to
// R/<serial>/... and writes to W/<serial>/.... The device only keeps
// publishing while something posts to its keepalive topic, so the
// Service pairs the telemetry subscription with a periodic keepalive
// publisher.
//
// The Service owns a Store, an aggregate of optional readings guarded
// by a reader-writer lock. A single ingestion goroutine applies frames
// in arrival order; readers receive copies, never live references.
// Summaries are recomputed from current state on every call.
//
// Multiple Service instances can coexist, each with its own Store.
// Nothing in this package is process-global.
package venus
