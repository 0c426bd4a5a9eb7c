// Package api provides the HTTP and WebSocket surface over the live
// device snapshot.
//
// The server is read-mostly: every GET endpoint renders a copy of the
// telemetry state held by the venus session, so requests never block
// on the broker and never fail once the server is up. The single
// write endpoint forwards an ESS grid setpoint to the device and
// reports the publish outcome.
//
// A WebSocket stream at /api/v1/ws pushes the same snapshot payload on
// a fixed interval. Clients that stop draining their send buffer are
// disconnected rather than allowed to stall the broadcaster.
//
// The server owns its http.Server lifecycle: Start binds the listener
// and returns, Close drains in-flight requests with a bounded grace
// period.
package api
