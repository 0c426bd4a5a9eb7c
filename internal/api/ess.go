package api

import (
	"encoding/json"
	"net/http"
)

// setpointRequest is the POST /ess/setpoint body. The field name
// mirrors the device's own {"value": ...} write payload.
type setpointRequest struct {
	Value *float64 `json:"value"`
}

// setpointResponse acknowledges an accepted setpoint command.
type setpointResponse struct {
	Status string  `json:"status"`
	Value  float64 `json:"value"`
}

// handleESS returns the energy storage control state.
func (s *Server) handleESS(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Telemetry.ESS())
}

// handleSetSetpoint forwards a grid setpoint command to the device.
//
// 202 means the command was handed to the transport, not that the
// device applied it. The /ess endpoint reflects the applied value
// once the device echoes it back over telemetry.
func (s *Server) handleSetSetpoint(w http.ResponseWriter, r *http.Request) {
	var req setpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	if err := s.deps.Telemetry.SetGridSetpoint(*req.Value); err != nil {
		s.deps.Logger.Error("setpoint publish failed",
			"watts", *req.Value,
			"error", err,
		)
		writeBadGateway(w, "publishing setpoint to device failed")
		return
	}

	writeJSON(w, http.StatusAccepted, setpointResponse{Status: "accepted", Value: *req.Value})
}
