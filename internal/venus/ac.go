package venus

// ACMetrics holds the L1 phase readings for one AC connection point.
// The VE.Bus device reports two such points: the grid side (ActiveIn)
// and the inverter output side (Out).
type ACMetrics struct {
	Voltage   Float `json:"voltage"`
	Power     Float `json:"power"`
	Frequency Float `json:"frequency"`
}

// applyFrame stores value under the field addressed by path, the topic
// remainder below the connection point. Reports false when the path
// does not name a tracked field.
func (m *ACMetrics) applyFrame(path string, value float64) bool {
	switch path {
	case "L1/V":
		m.Voltage = FloatFrom(value)
	case "L1/P":
		m.Power = FloatFrom(value)
	case "L1/F":
		m.Frequency = FloatFrom(value)
	default:
		return false
	}
	return true
}
