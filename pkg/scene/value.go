package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Value is a socket default. Sockets hold either a single number (factors,
// strengths) or an array (colors, vectors); the two are kept apart because
// they serialize differently.
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

// UnmarshalYAML accepts either a number or a sequence of numbers.
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
		return fmt.Errorf("socket default at line %d: expected number or list", node.Line)
	}
	return nil
}

// Any returns the value as float32 or []float32.
func (v *Value) Any() any {
	if v.IsArray {
		return v.Array
	}
	return v.Scalar
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := *v
	if v.Array != nil {
		c.Array = append([]float32(nil), v.Array...)
	}
	return &c
}
