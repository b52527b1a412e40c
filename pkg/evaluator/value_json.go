package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes. Integral numbers are written
// without a decimal point; non-finite numbers become null.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case Bool:
		return val.Value
	case Number:
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return nil
		}
		if val.Value == math.Trunc(val.Value) && math.Abs(val.Value) < 1<<53 {
			return int64(val.Value)
		}
		return val.Value
	case Text:
		return val.Value
	}
	return nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// VarsToJSON returns the session's top-level variables as an ordered JSON
// object.
func (s *Session) VarsToJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range s.env.Names() {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, _ := s.env.Get(name)
		raw, err := ValueToJSON(val)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, raw...)
	}
	return append(buf, '}'), nil
}
