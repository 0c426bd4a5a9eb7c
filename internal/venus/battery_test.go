package venus

import "testing"

func TestBatteryApplyFrame(t *testing.T) {
	tests := []struct {
		path string
		get  func(b Battery) Float
	}{
		{"Dc/0/Voltage", func(b Battery) Float { return b.DCVoltage }},
		{"Dc/0/Current", func(b Battery) Float { return b.DCCurrent }},
		{"Dc/0/Power", func(b Battery) Float { return b.DCPower }},
		{"Dc/0/Temperature", func(b Battery) Float { return b.Temperature }},
		{"System/MinCellVoltage", func(b Battery) Float { return b.CellMinVoltage }},
		{"System/MaxCellVoltage", func(b Battery) Float { return b.CellMaxVoltage }},
		{"Soc", func(b Battery) Float { return b.SOC }},
		{"Soh", func(b Battery) Float { return b.SOH }},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var b Battery
			if !b.applyFrame(tt.path, 3.14) {
				t.Fatalf("applyFrame(%q) reported not applied", tt.path)
			}
			if got := tt.get(b); got != FloatFrom(3.14) {
				t.Errorf("field for %q = %+v, want valid 3.14", tt.path, got)
			}
		})
	}
}

func TestBatteryApplyFrameUnknownPath(t *testing.T) {
	var b Battery
	for _, path := range []string{"Dc/1/Power", "Dc/0", "System/Temperature", "ConsumedAmphours", ""} {
		if b.applyFrame(path, 1.0) {
			t.Errorf("applyFrame(%q) accepted an untracked path", path)
		}
	}
	if b != (Battery{}) {
		t.Errorf("state changed on untracked paths: %+v", b)
	}
}

func TestSummarizeBatteries(t *testing.T) {
	batteries := map[int]Battery{
		512: {DCPower: FloatFrom(-250), DCVoltage: FloatFrom(52.1), Temperature: FloatFrom(18)},
		513: {DCPower: FloatFrom(100), DCVoltage: FloatFrom(51.9)},
		514: {SOC: FloatFrom(80)}, // no power, voltage or temperature
	}

	sum := summarizeBatteries(batteries)

	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
	if sum.TotalPower != FloatFrom(-150) {
		t.Errorf("TotalPower = %+v, want -150", sum.TotalPower)
	}
	if sum.AvgVoltage != FloatFrom(52.0) {
		t.Errorf("AvgVoltage = %+v, want 52.0", sum.AvgVoltage)
	}
	if sum.AvgTemperature != FloatFrom(18) {
		t.Errorf("AvgTemperature = %+v, want 18", sum.AvgTemperature)
	}
}

func TestSummarizeBatteriesAllUnset(t *testing.T) {
	batteries := map[int]Battery{
		512: {SOC: FloatFrom(80)},
		513: {},
	}

	sum := summarizeBatteries(batteries)

	if sum.TotalPower.Valid {
		t.Errorf("TotalPower = %+v, want unset when no battery reports power", sum.TotalPower)
	}
	if sum.AvgVoltage.Valid || sum.AvgTemperature.Valid {
		t.Error("averages should stay unset when no battery reports the field")
	}
	if sum.Count != 2 {
		t.Errorf("Count = %d, want 2", sum.Count)
	}
}

func TestSummarizeBatteriesEmpty(t *testing.T) {
	sum := summarizeBatteries(map[int]Battery{})

	if sum.TotalPower.Valid || sum.AvgVoltage.Valid || sum.AvgTemperature.Valid {
		t.Errorf("empty map produced a set summary: %+v", sum)
	}
	if sum.Count != 0 {
		t.Errorf("Count = %d, want 0", sum.Count)
	}
}
