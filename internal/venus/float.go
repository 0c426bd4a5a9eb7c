package venus

import "encoding/json"

// Float is an optional float64 reading. The zero value is unset,
// meaning no frame carrying the field has been observed yet. Unset is
// distinct from a reading whose value happens to be zero.
type Float struct {
	Value float64
	Valid bool
}

// FloatFrom returns a Float holding v.
func FloatFrom(v float64) Float {
	return Float{Value: v, Valid: true}
}

// Float64 returns the held value, or 0 when unset. Callers that must
// tell a genuine zero reading from absence check Valid.
func (f Float) Float64() float64 {
	if !f.Valid {
		return 0
	}
	return f.Value
}

// MarshalJSON encodes an unset Float as null and a set one as a bare
// number.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts null (unset) or a JSON number.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FloatFrom(v)
	return nil
}
