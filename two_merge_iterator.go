package lsm_dao

// TwoMergeIterator merges two sorted, duplicate free iterators. a has the
// higher precedence: when both sides hold the same key, a's record is emitted
// and b's is skipped.
type TwoMergeIterator struct {
	a       StorageIterator
	b       StorageIterator
	chooseA bool
}

func (t *TwoMergeIterator) chooseA0() bool {
	if !t.a.IsValid() {
		return false
	}
	if !t.b.IsValid() {
		return true
	}
	return CompareKeys(t.a.Key(), t.b.Key()) <= 0
}

func (t *TwoMergeIterator) skipB() error {
	if t.a.IsValid() && t.b.IsValid() && CompareKeys(t.a.Key(), t.b.Key()) == 0 {
		return t.b.Next()
	}
	return nil
}

func CreateTwoMergeIterator(a, b StorageIterator) (*TwoMergeIterator, error) {
	iter := &TwoMergeIterator{a: a, b: b}
	if err := iter.skipB(); err != nil {
		return nil, err
	}
	iter.chooseA = iter.chooseA0()
	return iter, nil
}

func (t *TwoMergeIterator) Record() Record {
	if t.chooseA {
		return t.a.Record()
	}
	return t.b.Record()
}

func (t *TwoMergeIterator) Key() []byte {
	if t.chooseA {
		return t.a.Key()
	}
	return t.b.Key()
}

func (t *TwoMergeIterator) IsValid() bool {
	if t.chooseA {
		return t.a.IsValid()
	}
	return t.b.IsValid()
}

func (t *TwoMergeIterator) Next() error {
	if !t.IsValid() {
		return ErrIteratorExhausted
	}
	if t.chooseA {
		if err := t.a.Next(); err != nil {
			return err
		}
	} else {
		if err := t.b.Next(); err != nil {
			return err
		}
	}
	if err := t.skipB(); err != nil {
		return err
	}
	t.chooseA = t.chooseA0()
	return nil
}
