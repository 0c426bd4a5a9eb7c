package venus

// Battery mirrors one com.victronenergy.battery service, typically a
// BMS publishing pack-level and cell-level readings. Sign convention
// follows the device: positive DC power charges the battery, negative
// discharges it.
type Battery struct {
	DCVoltage      Float `json:"dc_voltage"`
	DCCurrent      Float `json:"dc_current"`
	DCPower        Float `json:"dc_power"`
	Temperature    Float `json:"temperature"`
	CellMinVoltage Float `json:"cell_min_voltage"`
	CellMaxVoltage Float `json:"cell_max_voltage"`
	SOC            Float `json:"soc"`
	SOH            Float `json:"soh"`
}

func (b *Battery) applyFrame(path string, value float64) bool {
	switch path {
	case "Dc/0/Voltage":
		b.DCVoltage = FloatFrom(value)
	case "Dc/0/Current":
		b.DCCurrent = FloatFrom(value)
	case "Dc/0/Power":
		b.DCPower = FloatFrom(value)
	case "Dc/0/Temperature":
		b.Temperature = FloatFrom(value)
	case "System/MinCellVoltage":
		b.CellMinVoltage = FloatFrom(value)
	case "System/MaxCellVoltage":
		b.CellMaxVoltage = FloatFrom(value)
	case "Soc":
		b.SOC = FloatFrom(value)
	case "Soh":
		b.SOH = FloatFrom(value)
	default:
		return false
	}
	return true
}

// BatterySummary aggregates readings across every battery seen so far.
// TotalPower sums the known DC power readings; the averages are
// arithmetic means over batteries reporting the field. A field stays
// unset until at least one battery reports it, never coerced to zero.
type BatterySummary struct {
	TotalPower     Float `json:"total_power"`
	AvgVoltage     Float `json:"avg_voltage"`
	AvgTemperature Float `json:"avg_temperature"`
	Count          int   `json:"count"`
}

// summarizeBatteries reduces a battery map. Pure; call with a copy or
// under the store lock.
func summarizeBatteries(batteries map[int]Battery) BatterySummary {
	sum := BatterySummary{Count: len(batteries)}
	var powerTotal, voltageTotal, tempTotal float64
	var powerN, voltageN, tempN int
	for _, b := range batteries {
		if b.DCPower.Valid {
			powerTotal += b.DCPower.Value
			powerN++
		}
		if b.DCVoltage.Valid {
			voltageTotal += b.DCVoltage.Value
			voltageN++
		}
		if b.Temperature.Valid {
			tempTotal += b.Temperature.Value
			tempN++
		}
	}
	if powerN > 0 {
		sum.TotalPower = FloatFrom(powerTotal)
	}
	if voltageN > 0 {
		sum.AvgVoltage = FloatFrom(voltageTotal / float64(voltageN))
	}
	if tempN > 0 {
		sum.AvgTemperature = FloatFrom(tempTotal / float64(tempN))
	}
	return sum
}
