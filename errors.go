package lsm_dao

import "github.com/cockroachdb/errors"

var (
	// ErrClosed is returned by every DAO operation after Close.
	ErrClosed = errors.New("lsm: dao is closed")

	// ErrCorruptedSegment is returned when a segment's bytes do not decode
	// into a well formed record sequence.
	ErrCorruptedSegment = errors.New("lsm: corrupted segment")

	ErrSegmentClosed = errors.New("lsm: segment is closed")

	// ErrIteratorExhausted is returned by Next on an iterator that has no
	// current record.
	ErrIteratorExhausted = errors.New("lsm: iterator exhausted")

	ErrInvalidSegmentName = errors.New("lsm: invalid segment file name")
)
