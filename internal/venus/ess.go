package venus

// ESS holds the energy storage system control state reported under the
// VE.Bus Hub4 tree. The device reports the setpoint it is currently
// ramping toward, which may lag a recently commanded value.
type ESS struct {
	GridSetpoint Float `json:"grid_setpoint"`
}

func (e *ESS) applyFrame(path string, value float64) bool {
	switch path {
	case "L1/AcPowerSetpoint":
		e.GridSetpoint = FloatFrom(value)
	default:
		return false
	}
	return true
}
