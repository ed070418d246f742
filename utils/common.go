package utils

import (
	"fmt"
	"slices"
)

// Copy returns a private copy of b. A nil slice stays nil.
func Copy(b []byte) []byte {
	if b == nil {
		return nil
	}
	return slices.Clone(b)
}

func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

func UnwrapError(err error) {
	if err != nil {
		panic(err)
	}
}

func Unwrap[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}
