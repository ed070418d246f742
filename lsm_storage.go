package lsm_dao

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

type Layout int

const (
	// LayoutSegments keeps every flush as a new generation of segment.
	LayoutSegments Layout = iota
	// LayoutSnapshot keeps a single snapshot file that is loaded into the
	// memtable on open and rewritten on close.
	LayoutSnapshot
)

const SnapshotFileName = "save_dao.data"

func (l Layout) String() string {
	switch l {
	case LayoutSegments:
		return "segments"
	case LayoutSnapshot:
		return "snapshot"
	}
	return "unknown"
}

type LsmStorageOptions struct {
	Layout Layout
	// RetainTombstones keeps deletions in the memtable so they are flushed
	// and keep hiding older segments. Ignored by LayoutSnapshot, where the
	// snapshot is the only older source and is rewritten whole.
	RetainTombstones       bool
	BloomFalsePositiveRate float64
	WriteBufferSize        int
	Logger                 *logrus.Logger
}

func DefaultOptions() *LsmStorageOptions {
	sstOptions := DefaultSsTableOptions()
	return &LsmStorageOptions{
		Layout:                 LayoutSegments,
		RetainTombstones:       true,
		BloomFalsePositiveRate: sstOptions.BloomFalsePositiveRate,
		WriteBufferSize:        sstOptions.WriteBufferSize,
		Logger:                 logrus.StandardLogger(),
	}
}

func (o *LsmStorageOptions) ssTableOptions() SsTableOptions {
	return SsTableOptions{
		WriteBufferSize:        o.WriteBufferSize,
		BloomFalsePositiveRate: o.BloomFalsePositiveRate,
	}
}

// LsmDAO composes the memtable with the segments on disk. Upserts only touch
// memory; Close is the single point where memory is flushed to disk and must
// be called exactly once. Iterators returned by Range must be drained or
// dropped before Close.
type LsmDAO struct {
	rwLock   sync.RWMutex
	path     string
	options  *LsmStorageOptions
	log      *logrus.Entry
	memTable *MemTable
	segments *SegmentSet
	closed   bool
}

type LsmStats struct {
	MemTableCount int
	MemTableSize  int64
	SegmentCount  int
}

// Open opens or creates the store in directory path.
func Open(path string, options *LsmStorageOptions) (*LsmDAO, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	dao := &LsmDAO{
		path:    path,
		options: options,
		log: options.Logger.WithFields(logrus.Fields{
			"path":   path,
			"layout": options.Layout.String(),
		}),
	}
	switch options.Layout {
	case LayoutSegments:
		segments, err := LoadSegments(path, options.ssTableOptions(), dao.log)
		if err != nil {
			return nil, err
		}
		dao.segments = segments
		dao.memTable = CreateMemTable(options.RetainTombstones)
	case LayoutSnapshot:
		memTable, err := loadSnapshot(path, options, dao.log)
		if err != nil {
			return nil, err
		}
		dao.segments = NewSegmentSet()
		dao.memTable = memTable
	default:
		return nil, errors.AssertionFailedf("unknown layout %d", options.Layout)
	}
	return dao, nil
}

func (lsm *LsmDAO) Upsert(record Record) error {
	lsm.rwLock.RLock()
	defer lsm.rwLock.RUnlock()
	if lsm.closed {
		return ErrClosed
	}
	lsm.memTable.Upsert(record)
	return nil
}

// Put is Upsert(Of(key, value)).
func (lsm *LsmDAO) Put(key, value []byte) error {
	return lsm.Upsert(Of(key, value))
}

// Delete is Upsert(Tombstone(key)).
func (lsm *LsmDAO) Delete(key []byte) error {
	return lsm.Upsert(Tombstone(key))
}

// Range returns the live records in [from, to) in ascending key order, at
// most one per key and never a tombstone. A nil bound is open.
func (lsm *LsmDAO) Range(from, to []byte) (*FusedIterator, error) {
	lsm.rwLock.RLock()
	defer lsm.rwLock.RUnlock()
	if lsm.closed {
		return nil, ErrClosed
	}
	if emptyRange(from, to) {
		return CreateFusedIterator(EmptyIterator()), nil
	}
	segments := lsm.segments.Ascending()
	iters := make([]StorageIterator, 0, len(segments)+1)
	for _, sst := range segments {
		iter, err := sst.Range(from, to)
		if err != nil {
			return nil, err
		}
		iters = append(iters, iter)
	}
	iters = append(iters, lsm.memTable.Range(from, to))
	merged, err := Merge(iters)
	if err != nil {
		return nil, err
	}
	lsmIterator, err := CreateLsmIterator(merged)
	if err != nil {
		return nil, err
	}
	return CreateFusedIterator(lsmIterator), nil
}

// Get returns a copy of the value stored for key.
func (lsm *LsmDAO) Get(key []byte) ([]byte, bool, error) {
	lsm.rwLock.RLock()
	defer lsm.rwLock.RUnlock()
	if lsm.closed {
		return nil, false, ErrClosed
	}
	if record, ok := lsm.memTable.Get(key); ok {
		if record.IsTombstone() {
			return nil, false, nil
		}
		return utils.Copy(record.Value()), true, nil
	}
	upper := NextKey(key)
	for _, sst := range lsm.segments.Descending() {
		if !sst.MayContain(key) {
			continue
		}
		iter, err := sst.Range(key, upper)
		if err != nil {
			return nil, false, err
		}
		if !iter.IsValid() {
			continue
		}
		if iter.Record().IsTombstone() {
			return nil, false, nil
		}
		return utils.Copy(iter.Record().Value()), true, nil
	}
	return nil, false, nil
}

// Close flushes the memtable and releases every segment mapping.
func (lsm *LsmDAO) Close() error {
	lsm.rwLock.Lock()
	defer lsm.rwLock.Unlock()
	if lsm.closed {
		return ErrClosed
	}
	lsm.closed = true
	err := lsm.flush()
	if err != nil {
		lsm.log.Errorf("flush memtable error: %v", err)
	}
	if closeErr := lsm.segments.Close(); closeErr != nil {
		lsm.log.Errorf("close segments error: %v", closeErr)
		err = errors.CombineErrors(err, closeErr)
	}
	return err
}

// flush must be called with the write lock held.
func (lsm *LsmDAO) flush() error {
	sstOptions := lsm.options.ssTableOptions()
	if lsm.options.Layout == LayoutSnapshot {
		// no reader needs the filter of a snapshot being written on close
		sstOptions.BloomFalsePositiveRate = 0
		p := filepath.Join(lsm.path, SnapshotFileName)
		sst, err := WriteSsTable(lsm.memTable.Range(nil, nil), p, sstOptions)
		if err != nil {
			return err
		}
		lsm.log.Infof("wrote snapshot with %d records", sst.NumRecords())
		return sst.Close()
	}

	if lsm.memTable.IsEmpty() {
		return nil
	}
	generation := lsm.segments.NextGeneration()
	p := filepath.Join(lsm.path, SegmentFileName(generation))
	lsm.log.Infof("flushing %d records to %s", lsm.memTable.Len(), SegmentFileName(generation))
	sst, err := WriteSsTable(lsm.memTable.Range(nil, nil), p, sstOptions)
	if err != nil {
		return err
	}
	lsm.segments.Add(sst)
	return nil
}

func (lsm *LsmDAO) Stats() LsmStats {
	lsm.rwLock.RLock()
	defer lsm.rwLock.RUnlock()
	return LsmStats{
		MemTableCount: lsm.memTable.Len(),
		MemTableSize:  lsm.memTable.ApproximateSize(),
		SegmentCount:  lsm.segments.Len(),
	}
}
