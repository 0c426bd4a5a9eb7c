package venus

import "testing"

func TestPvInverterApplyFrame(t *testing.T) {
	tests := []struct {
		path string
		get  func(p PvInverter) Float
	}{
		{"Ac/Power", func(p PvInverter) Float { return p.Power }},
		{"Ac/MaxPower", func(p PvInverter) Float { return p.MaxPower }},
		{"Ac/Energy/Forward", func(p PvInverter) Float { return p.TotalEnergy }},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var p PvInverter
			if !p.applyFrame(tt.path, 1234.0) {
				t.Fatalf("applyFrame(%q) reported not applied", tt.path)
			}
			if got := tt.get(p); got != FloatFrom(1234.0) {
				t.Errorf("field for %q = %+v, want valid 1234.0", tt.path, got)
			}
		})
	}
}

func TestPvInverterApplyFrameUnknownPath(t *testing.T) {
	var p PvInverter
	if p.applyFrame("Ac/Energy/Reverse", 5.0) {
		t.Error("applyFrame accepted an untracked path")
	}
	if p != (PvInverter{}) {
		t.Errorf("state changed on untracked path: %+v", p)
	}
}

func TestSummarizePvInverters(t *testing.T) {
	inverters := map[int]PvInverter{
		20: {Power: FloatFrom(100)},
		21: {MaxPower: FloatFrom(3000)}, // power unset
		22: {Power: FloatFrom(50)},
	}

	sum := summarizePvInverters(inverters)

	if sum.TotalPower != FloatFrom(150) {
		t.Errorf("TotalPower = %+v, want 150", sum.TotalPower)
	}
	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
}

func TestSummarizePvInvertersAllUnset(t *testing.T) {
	inverters := map[int]PvInverter{
		20: {},
		21: {MaxPower: FloatFrom(3000)},
	}

	sum := summarizePvInverters(inverters)

	if sum.TotalPower.Valid {
		t.Errorf("TotalPower = %+v, want unset, not zero", sum.TotalPower)
	}
}
