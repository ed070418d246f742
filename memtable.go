package lsm_dao

import (
	"sync"
	"sync/atomic"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/huandu/skiplist"
)

// MemTable is the mutable, sorted, in-memory front of the engine.
//
// When retainTombstones is false a tombstone upsert removes the key, so the
// table only ever holds live records. When it is true the tombstone is stored
// and flushed like any other record, which keeps a deletion visible over older
// segments.
type MemTable struct {
	rwLock           sync.RWMutex
	skipMap          *skiplist.SkipList
	retainTombstones bool
	approximateSize  atomic.Int64
}

func CreateMemTable(retainTombstones bool) *MemTable {
	return &MemTable{
		skipMap:          skiplist.New(skiplist.Bytes),
		retainTombstones: retainTombstones,
	}
}

func (m *MemTable) Upsert(record Record) {
	if record.IsTombstone() && !m.retainTombstones {
		m.rwLock.Lock()
		if old := m.skipMap.Remove(record.Key()); old != nil {
			m.approximateSize.Add(-int64(old.Value.(Record).encodedSize()))
		}
		m.rwLock.Unlock()
		return
	}

	stored := record.Clone()
	m.rwLock.Lock()
	if old := m.skipMap.Get(stored.Key()); old != nil {
		m.approximateSize.Add(-int64(old.Value.(Record).encodedSize()))
	}
	m.skipMap.Set(stored.Key(), stored)
	m.rwLock.Unlock()
	m.approximateSize.Add(int64(stored.encodedSize()))
}

// Get returns the stored record for key, which may be a tombstone in
// retaining mode.
func (m *MemTable) Get(key []byte) (Record, bool) {
	m.rwLock.RLock()
	defer m.rwLock.RUnlock()
	v, ok := m.skipMap.GetValue(key)
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Range returns an iterator over [from, to). A nil bound is open.
func (m *MemTable) Range(from, to []byte) StorageIterator {
	if emptyRange(from, to) {
		return EmptyIterator()
	}
	iter := &MemTableIterator{
		table: m,
		upper: utils.Copy(to),
	}
	m.rwLock.RLock()
	if from == nil {
		iter.load(m.skipMap.Front())
	} else {
		iter.load(m.skipMap.Find(from))
	}
	m.rwLock.RUnlock()
	return iter
}

func (m *MemTable) Len() int {
	m.rwLock.RLock()
	defer m.rwLock.RUnlock()
	return m.skipMap.Len()
}

func (m *MemTable) IsEmpty() bool {
	return m.Len() == 0
}

// ApproximateSize is the encoded size of the stored records in bytes.
func (m *MemTable) ApproximateSize() int64 {
	return m.approximateSize.Load()
}

// MemTableIterator re-seeks the skip list under the read lock on every step,
// so a concurrent upsert can never hand it a detached element. Each record is
// the latest value of its key at the moment it was read.
type MemTableIterator struct {
	table   *MemTable
	upper   []byte
	current Record
	valid   bool
}

// load must be called with the table's read lock held.
func (it *MemTableIterator) load(ele *skiplist.Element) {
	if ele == nil {
		it.valid = false
		return
	}
	record := ele.Value.(Record)
	if !belowUpper(record.Key(), it.upper) {
		it.valid = false
		return
	}
	it.current = record
	it.valid = true
}

func (it *MemTableIterator) Record() Record {
	return it.current
}

func (it *MemTableIterator) Key() []byte {
	return it.current.Key()
}

func (it *MemTableIterator) IsValid() bool {
	return it.valid
}

func (it *MemTableIterator) Next() error {
	if !it.valid {
		return ErrIteratorExhausted
	}
	successor := NextKey(it.current.Key())
	it.table.rwLock.RLock()
	it.load(it.table.skipMap.Find(successor))
	it.table.rwLock.RUnlock()
	return nil
}
