// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"strconv"
	"unsafe"
)

// Numeric is the set of types Number can parse into.
type Numeric interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 | uintptr |
		float32 | float64
}

// Number parses the property's value as a T. The boolean is false if the
// property does not exist or if its whole value is not a valid T: integers
// are read in base 10 and must fit in T, and no sign prefix other than '-' or
// surrounding text is accepted.
func Number[T Numeric](st *Store, sectionName, key string) (T, bool) {
	var zero T
	v, ok := st.Get(sectionName, key)
	if !ok || v == "" || v[0] == '+' {
		return zero, false
	}
	bitSize := int(unsafe.Sizeof(zero)) * 8
	switch any(zero).(type) {
	case float32, float64:
		f, err := strconv.ParseFloat(v, bitSize)
		if err != nil {
			return zero, false
		}
		return T(f), true
	case uint, uint8, uint16, uint32, uint64, uintptr:
		u, err := strconv.ParseUint(v, 10, bitSize)
		if err != nil {
			return zero, false
		}
		return T(u), true
	default:
		i, err := strconv.ParseInt(v, 10, bitSize)
		if err != nil {
			return zero, false
		}
		return T(i), true
	}
}
