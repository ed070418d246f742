package lsm_dao

import "github.com/Zhanghailin1995/lsm-dao/utils"

// Record is the unit of data: a key and an optional value. A record without
// a value is a tombstone that hides older records with the same key.
//
// Records are values and must not be mutated after construction. Records read
// from a segment alias its mapped memory; use Clone to keep one past the
// segment's lifetime.
type Record struct {
	key       []byte
	value     []byte
	tombstone bool
}

// Of returns a live record. A nil value is stored as an empty value.
func Of(key, value []byte) Record {
	if value == nil {
		value = []byte{}
	}
	return Record{key: key, value: value}
}

func Tombstone(key []byte) Record {
	return Record{key: key, tombstone: true}
}

func (r Record) Key() []byte {
	return r.key
}

// Value returns the record's value, nil for a tombstone.
func (r Record) Value() []byte {
	return r.value
}

func (r Record) IsTombstone() bool {
	return r.tombstone
}

func (r Record) Clone() Record {
	return Record{
		key:       utils.Copy(r.key),
		value:     utils.Copy(r.value),
		tombstone: r.tombstone,
	}
}

// encodedSize is the number of bytes the record occupies in a segment.
func (r Record) encodedSize() int {
	return 4 + len(r.key) + 4 + len(r.value)
}
