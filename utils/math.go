package utils

import "math"

func WrappingAddU32(a, b uint32) uint32 {
	x := uint64(a) + uint64(b)
	if x > math.MaxUint32 {
		return uint32(x - math.MaxUint32 - 1)
	}
	return uint32(x)
}

// FitsInt32 reports whether n fits a 4-byte signed length prefix.
func FitsInt32(n int) bool {
	return n <= math.MaxInt32
}
