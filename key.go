package lsm_dao

import "bytes"

// CompareKeys orders keys by unsigned byte-lexicographic comparison.
func CompareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}

// NextKey returns the smallest key strictly greater than key: key followed by
// a single 0x00 byte. [key, NextKey(key)) selects exactly key.
func NextKey(key []byte) []byte {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return next
}

// emptyRange reports whether [from, to) can never contain a key. Only a
// fully bounded range with from > to is degenerate.
func emptyRange(from, to []byte) bool {
	return from != nil && to != nil && CompareKeys(from, to) > 0
}

// belowUpper reports whether key is inside the exclusive upper bound.
func belowUpper(key, to []byte) bool {
	return to == nil || CompareKeys(key, to) < 0
}
