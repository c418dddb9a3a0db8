// Package tensor provides the storage types shared by the layout operators:
// data types, shapes, devices and reference-counted raw buffers.
package tensor

import (
	"fmt"
	"strings"
)

// DType is a constraint for element types that can back a RawTensor.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Invalid DataType = iota
	Float32
	Float64
	Int32
	Int64
	Uint8
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "invalid"
	}
}

// ParseDataType maps an attribute value such as "float32" or "DT_FLOAT"
// to a DataType.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float32", "float", "f32", "dt_float":
		return Float32, nil
	case "float64", "double", "f64", "dt_double":
		return Float64, nil
	case "int32", "i32", "dt_int32":
		return Int32, nil
	case "int64", "i64", "dt_int64":
		return Int64, nil
	case "uint8", "u8", "dt_uint8":
		return Uint8, nil
	default:
		return Invalid, fmt.Errorf("unknown data type %q", name)
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	default:
		panic("unsupported type")
	}
}
