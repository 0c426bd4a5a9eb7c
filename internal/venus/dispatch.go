package venus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// routeKind identifies which entity of the device aggregate a frame
// belongs to.
type routeKind int

const (
	routeACInput routeKind = iota
	routeACOutput
	routeESS
	routeBattery
	routePvInverter
)

// route is a resolved frame destination: the entity kind, the device id
// for map-backed entities, and the field path within the entity.
type route struct {
	kind routeKind
	id   int
	path string
}

// routeTable maps topic prefixes below N/<serial>/ to entities.
// Entries are tried in order. The VE.Bus instance id 275 is fixed on GX
// hardware.
var routeTable = []struct {
	prefix string
	kind   routeKind
	keyed  bool // prefix is followed by a numeric device id segment
}{
	{prefix: "vebus/275/Ac/ActiveIn/", kind: routeACInput},
	{prefix: "vebus/275/Ac/Out/", kind: routeACOutput},
	{prefix: "vebus/275/Hub4/", kind: routeESS},
	{prefix: "battery/", kind: routeBattery, keyed: true},
	{prefix: "pvinverter/", kind: routePvInverter, keyed: true},
}

// matchRoute resolves a telemetry path against the routing table. For
// keyed entities the segment after the prefix must parse as a
// non-negative integer id; anything else fails the match so the frame
// is dropped instead of landing in a shared fallback bucket.
func matchRoute(path string) (route, bool) {
	for _, entry := range routeTable {
		rest, ok := strings.CutPrefix(path, entry.prefix)
		if !ok {
			continue
		}
		if !entry.keyed {
			return route{kind: entry.kind, path: rest}, true
		}
		idSeg, fieldPath, ok := strings.Cut(rest, "/")
		if !ok {
			return route{}, false
		}
		id, err := strconv.Atoi(idSeg)
		if err != nil || id < 0 {
			return route{}, false
		}
		return route{kind: entry.kind, id: id, path: fieldPath}, true
	}
	return route{}, false
}

// notifyPayload is the wire shape of a Venus OS notification: a JSON
// object whose value member carries the reading. Other members are
// ignored.
type notifyPayload struct {
	Value *float64 `json:"value"`
}

// decodeValue extracts the numeric reading from a notification payload.
// Invalid UTF-8, invalid JSON, a missing value member, a null value and
// a non-numeric value are all decode failures. The caller drops the
// frame on failure, so a previously stored reading survives a malformed
// update.
func decodeValue(payload []byte) (float64, error) {
	if !utf8.Valid(payload) {
		return 0, errPayloadNotUTF8
	}
	var body notifyPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return 0, fmt.Errorf("%w: %w", errPayloadNotJSON, err)
	}
	if body.Value == nil {
		return 0, errValueMissing
	}
	return *body.Value, nil
}
