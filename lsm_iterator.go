package lsm_dao

import "github.com/cockroachdb/errors"

// LsmIterator hides tombstones. Its input is already merged, so the first
// record it sees for a key is the winning one; a tombstone winner means the
// key does not exist.
type LsmIterator struct {
	inner StorageIterator
}

func CreateLsmIterator(inner StorageIterator) (*LsmIterator, error) {
	l := &LsmIterator{inner: inner}
	if err := l.moveToNonDelete(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LsmIterator) moveToNonDelete() error {
	for l.inner.IsValid() && l.inner.Record().IsTombstone() {
		if err := l.inner.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (l *LsmIterator) Record() Record {
	return l.inner.Record()
}

func (l *LsmIterator) Key() []byte {
	return l.inner.Key()
}

func (l *LsmIterator) IsValid() bool {
	return l.inner.IsValid()
}

func (l *LsmIterator) Next() error {
	if !l.inner.IsValid() {
		return ErrIteratorExhausted
	}
	if err := l.inner.Next(); err != nil {
		return err
	}
	return l.moveToNonDelete()
}

// FusedIterator guards the iterator handed to callers: once an error is
// returned it stays invalid, reading an invalid iterator panics and stepping
// past the end returns ErrIteratorExhausted.
type FusedIterator struct {
	iter     StorageIterator
	hasError bool
}

func CreateFusedIterator(iter StorageIterator) *FusedIterator {
	return &FusedIterator{iter: iter}
}

func (f *FusedIterator) Record() Record {
	if !f.IsValid() {
		panic("called record on an invalid iterator")
	}
	return f.iter.Record()
}

func (f *FusedIterator) Key() []byte {
	if !f.IsValid() {
		panic("called key on an invalid iterator")
	}
	return f.iter.Key()
}

func (f *FusedIterator) IsValid() bool {
	return !f.hasError && f.iter.IsValid()
}

func (f *FusedIterator) Next() error {
	if f.hasError {
		return errors.New("lsm: called next on an iterator that already failed")
	}
	if !f.iter.IsValid() {
		return ErrIteratorExhausted
	}
	if err := f.iter.Next(); err != nil {
		f.hasError = true
		return err
	}
	return nil
}
