package lsm_dao

// StorageIterator is a forward cursor over records in ascending key order.
type StorageIterator interface {
	// Record returns the record under the cursor. Only meaningful while
	// IsValid reports true.
	Record() Record

	// Key returns Record().Key()
	Key() []byte

	// IsValid reports whether the cursor points at a record
	IsValid() bool

	// Next advances the cursor. Calling Next on an invalid iterator returns
	// ErrIteratorExhausted.
	Next() error
}

type emptyIterator struct{}

// EmptyIterator returns an iterator that is never valid.
func EmptyIterator() StorageIterator {
	return emptyIterator{}
}

func (emptyIterator) Record() Record {
	panic("called record on an empty iterator")
}

func (emptyIterator) Key() []byte {
	panic("called key on an empty iterator")
}

func (emptyIterator) IsValid() bool {
	return false
}

func (emptyIterator) Next() error {
	return ErrIteratorExhausted
}

// Collect drains iter into a slice. Records are returned as produced; clone
// them if they must outlive the iterator's sources.
func Collect(iter StorageIterator) ([]Record, error) {
	var records []Record
	for iter.IsValid() {
		records = append(records, iter.Record())
		if err := iter.Next(); err != nil {
			return nil, err
		}
	}
	return records, nil
}
