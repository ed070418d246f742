package lsm_dao

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/cockroachdb/errors"
)

const (
	SegmentPrefix = "file_"
	TempSuffix    = "_temp"
)

// SegmentFileName is the file name of the segment with the given generation.
func SegmentFileName(generation uint64) string {
	return SegmentPrefix + strconv.FormatUint(generation, 10)
}

// ParseGeneration extracts the generation index from a segment file name.
// Temporary files and names outside the segment scheme are rejected.
func ParseGeneration(name string) (uint64, error) {
	suffix, ok := strings.CutPrefix(name, SegmentPrefix)
	if !ok || suffix == "" {
		return 0, errors.Wrapf(ErrInvalidSegmentName, "%q", name)
	}
	generation, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSegmentName, "%q", name)
	}
	return generation, nil
}

type SsTableOptions struct {
	// WriteBufferSize is the buffer in front of the temp file while writing.
	WriteBufferSize int
	// BloomFalsePositiveRate sizes the filter built on open; zero or a
	// negative value disables it.
	BloomFalsePositiveRate float64
}

func DefaultSsTableOptions() SsTableOptions {
	return SsTableOptions{
		WriteBufferSize:        64 << 10,
		BloomFalsePositiveRate: 0.01,
	}
}

// SsTable is an immutable segment backed by a read-only mapping of its file.
// Range scans share the mapping and never block each other; the lock only
// orders view duplication against Close.
type SsTable struct {
	rwLock     sync.RWMutex
	path       string
	generation uint64
	data       []byte
	size       int64
	closed     bool
	numRecords int
	bloom      *Bloom
}

// OpenSsTable maps the file at path and validates its record structure. A
// file whose name is not a segment name (a snapshot) gets generation 0.
func OpenSsTable(path string, options SsTableOptions) (*SsTable, error) {
	generation, _ := ParseGeneration(filepath.Base(path))
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// the mapping outlives the descriptor
	defer file.Close()
	fi, err := file.Stat()
	if err != nil {
		return nil, err
	}
	data, err := mmapFile(file, fi.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	sst := &SsTable{
		path:       path,
		generation: generation,
		data:       data,
		size:       fi.Size(),
	}
	if err := sst.scan(options.BloomFalsePositiveRate); err != nil {
		_ = munmap(data)
		return nil, err
	}
	return sst, nil
}

// scan decodes every record once, counting them and collecting key hashes.
func (s *SsTable) scan(falsePositiveRate float64) error {
	var keyHashes []uint32
	offset := 0
	var prev []byte
	for offset < len(s.data) {
		record, next, err := decodeRecord(s.data, offset)
		if err != nil {
			return errors.Wrapf(err, "%s at offset %d", s.path, offset)
		}
		if prev != nil && CompareKeys(prev, record.Key()) >= 0 {
			return errors.Wrapf(ErrCorruptedSegment, "%s at offset %d: keys out of order", s.path, offset)
		}
		prev = record.Key()
		if falsePositiveRate > 0 {
			keyHashes = append(keyHashes, KeyHash(record.Key()))
		}
		s.numRecords++
		offset = next
	}
	if falsePositiveRate > 0 && s.numRecords > 0 {
		s.bloom = BuildFromKeyHashes(keyHashes, BloomBitsPerKey(uint32(len(keyHashes)), falsePositiveRate))
	}
	return nil
}

// Range returns an iterator over [from, to). A nil bound is open.
func (s *SsTable) Range(from, to []byte) (StorageIterator, error) {
	if emptyRange(from, to) {
		return EmptyIterator(), nil
	}
	s.rwLock.RLock()
	if s.closed {
		s.rwLock.RUnlock()
		return nil, errors.Wrapf(ErrSegmentClosed, "%s", s.path)
	}
	view := s.data[:len(s.data):len(s.data)]
	s.rwLock.RUnlock()
	return createSsTableIterator(s, view, utils.Copy(from), utils.Copy(to))
}

// MayContain reports false only when key is certainly absent.
func (s *SsTable) MayContain(key []byte) bool {
	if s.numRecords == 0 {
		return false
	}
	if s.bloom == nil {
		return true
	}
	return s.bloom.MayContain(KeyHash(key))
}

// Close unmaps the file. Records obtained from this segment must not be used
// afterwards. Close is idempotent.
func (s *SsTable) Close() error {
	s.rwLock.Lock()
	defer s.rwLock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	data := s.data
	s.data = nil
	if err := munmap(data); err != nil {
		return errors.Wrapf(err, "munmap %s", s.path)
	}
	return nil
}

func (s *SsTable) Path() string {
	return s.path
}

func (s *SsTable) Generation() uint64 {
	return s.generation
}

func (s *SsTable) TableSize() int64 {
	return s.size
}

func (s *SsTable) NumRecords() int {
	return s.numRecords
}

func (s *SsTable) String() string {
	return fmt.Sprintf("%s(gen=%d, records=%d, bytes=%d)", filepath.Base(s.path), s.generation, s.numRecords, s.size)
}

// CompareSegments orders segments by generation, oldest first.
func CompareSegments(a, b *SsTable) int {
	switch {
	case a.generation < b.generation:
		return -1
	case a.generation > b.generation:
		return 1
	}
	return 0
}
