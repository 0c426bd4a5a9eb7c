package venus

// PvInverter mirrors one com.victronenergy.pvinverter service, an AC
// coupled solar inverter metered on its own grid connection.
type PvInverter struct {
	Power       Float `json:"power"`
	MaxPower    Float `json:"max_power"`
	TotalEnergy Float `json:"total_energy"`
}

func (p *PvInverter) applyFrame(path string, value float64) bool {
	switch path {
	case "Ac/Power":
		p.Power = FloatFrom(value)
	case "Ac/MaxPower":
		p.MaxPower = FloatFrom(value)
	case "Ac/Energy/Forward":
		p.TotalEnergy = FloatFrom(value)
	default:
		return false
	}
	return true
}

// PvInverterSummary is the on-demand reduction across all inverters.
// TotalPower stays unset while no inverter reports power.
type PvInverterSummary struct {
	TotalPower Float `json:"total_power"`
	Count      int   `json:"count"`
}

// summarizePvInverters reduces an inverter map. Pure; call with a copy
// or under the store lock.
func summarizePvInverters(inverters map[int]PvInverter) PvInverterSummary {
	sum := PvInverterSummary{Count: len(inverters)}
	var total float64
	var n int
	for _, p := range inverters {
		if p.Power.Valid {
			total += p.Power.Value
			n++
		}
	}
	if n > 0 {
		sum.TotalPower = FloatFrom(total)
	}
	return sum
}
