package venus

import (
	"encoding/json"
	"testing"
)

func TestFloatZeroValueIsUnset(t *testing.T) {
	var f Float
	if f.Valid {
		t.Error("zero value reports Valid")
	}
	if f.Float64() != 0 {
		t.Errorf("Float64() = %v, want 0", f.Float64())
	}
}

func TestFloatFrom(t *testing.T) {
	f := FloatFrom(0)
	if !f.Valid {
		t.Error("FloatFrom(0) is not valid; a genuine zero reading must be distinguishable from unset")
	}
	if FloatFrom(230.5).Float64() != 230.5 {
		t.Errorf("Float64() = %v, want 230.5", FloatFrom(230.5).Float64())
	}
}

func TestFloatMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		f    Float
		want string
	}{
		{"unset", Float{}, "null"},
		{"zero", FloatFrom(0), "0"},
		{"negative", FloatFrom(-1500.5), "-1500.5"},
		{"fraction", FloatFrom(52.1), "52.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.f)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFloatUnmarshalJSON(t *testing.T) {
	var f Float
	if err := json.Unmarshal([]byte("87.5"), &f); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if f != FloatFrom(87.5) {
		t.Errorf("got %+v, want valid 87.5", f)
	}

	if err := json.Unmarshal([]byte("null"), &f); err != nil {
		t.Fatalf("Unmarshal null: %v", err)
	}
	if f.Valid {
		t.Error("null did not reset to unset")
	}

	if err := json.Unmarshal([]byte(`"87"`), &f); err == nil {
		t.Error("expected error for a string value")
	}
}

func TestFloatMarshalInsideStruct(t *testing.T) {
	m := ACMetrics{Voltage: FloatFrom(230.5)}
	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"voltage":230.5,"power":null,"frequency":null}`
	if string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}
