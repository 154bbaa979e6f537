/*
   This file maps Zarr (numpy-style) dtype strings onto the element types a
   layer can carry.
*/

package ngff

import (
	"encoding/json"
	"fmt"
)

// DataType identifies the element type of an array, e.g., a uint8 or a float32.
type DataType uint8

const (
	T_unknown DataType = iota
	T_bool
	T_uint8
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
)

var typeBytes = map[DataType]int64{
	T_bool:    1,
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = map[DataType]string{
	T_bool:    "bool",
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
}

// Bytes returns the # of bytes for one element of the type.
func (t DataType) Bytes() int64 {
	return typeBytes[t]
}

func (t DataType) String() string {
	if name, found := typeNames[t]; found {
		return name
	}
	return "unknown"
}

// IsInteger returns true for the types a label image may use.
func (t DataType) IsInteger() bool {
	switch t {
	case T_uint8, T_int8, T_uint16, T_int16, T_uint32, T_int32, T_uint64, T_int64:
		return true
	}
	return false
}

// MarshalJSON implements the json.Marshaler interface.
func (t DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ParseDType parses a Zarr v2 dtype string like "<u2", "|u1" or ">f4".  Byte
// order is accepted but not recorded since elements are never decoded here.
func ParseDType(dtype string) (DataType, error) {
	if len(dtype) < 3 {
		return T_unknown, fmt.Errorf("invalid dtype %q", dtype)
	}
	switch dtype[0] {
	case '<', '>', '|', '=':
	default:
		return T_unknown, fmt.Errorf("dtype %q has bad byte order character", dtype)
	}
	switch dtype[1:] {
	case "b1":
		return T_bool, nil
	case "u1":
		return T_uint8, nil
	case "i1":
		return T_int8, nil
	case "u2":
		return T_uint16, nil
	case "i2":
		return T_int16, nil
	case "u4":
		return T_uint32, nil
	case "i4":
		return T_int32, nil
	case "u8":
		return T_uint64, nil
	case "i8":
		return T_int64, nil
	case "f4":
		return T_float32, nil
	case "f8":
		return T_float64, nil
	}
	return T_unknown, fmt.Errorf("unsupported or unknown dtype %q", dtype)
}
