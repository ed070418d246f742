package lsm_dao

// Merge combines sorted, duplicate free iterators into one. The position in
// iters is the precedence: for a key produced by several inputs only the
// record from the last of them is emitted. Tombstones are not filtered.
//
// Inputs are combined as a balanced binary tree so a key passes through at
// most ceil(log2(n)) comparisons.
func Merge(iters []StorageIterator) (StorageIterator, error) {
	switch len(iters) {
	case 0:
		return EmptyIterator(), nil
	case 1:
		return iters[0], nil
	case 2:
		return MergeTwo(iters[0], iters[1])
	}
	mid := len(iters) / 2
	left, err := Merge(iters[:mid])
	if err != nil {
		return nil, err
	}
	right, err := Merge(iters[mid:])
	if err != nil {
		return nil, err
	}
	return MergeTwo(left, right)
}

// MergeTwo merges an older and a newer iterator; newer wins on equal keys.
func MergeTwo(older, newer StorageIterator) (StorageIterator, error) {
	return CreateTwoMergeIterator(newer, older)
}
