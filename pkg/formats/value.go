package formats

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Value is a literal socket value: a single number or an array. The two
// shapes are preserved through both codecs.
type Value struct {
	Scalar  float32
	Array   []float32
	IsArray bool
}

// ScalarValue returns a scalar Value.
func ScalarValue(v float32) *Value {
	return &Value{Scalar: v}
}

// ArrayValue returns an array Value.
func ArrayValue(v ...float32) *Value {
	return &Value{Array: v, IsArray: true}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsArray {
		if v.Array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Array)
	}
	return json.Marshal(v.Scalar)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var arr []float32
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*v = Value{Array: arr, IsArray: true}
		return nil
	}
	var f float32
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value{Scalar: f}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	if v.IsArray {
		if v.Array == nil {
			return []float32{}, nil
		}
		return v.Array, nil
	}
	return v.Scalar, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var arr []float32
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*v = Value{Array: arr, IsArray: true}
	case yaml.ScalarNode:
		var f float32
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Value{Scalar: f}
	default:
		return fmt.Errorf("value at line %d: expected number or list", node.Line)
	}
	return nil
}
