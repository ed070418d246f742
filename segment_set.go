package lsm_dao

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"
)

// SegmentSet holds open segments keyed by generation. It is not safe for
// concurrent mutation; the DAO guards it with its own lock.
type SegmentSet struct {
	segments *btree.Map[uint64, *SsTable]
}

func NewSegmentSet() *SegmentSet {
	return &SegmentSet{
		segments: btree.NewMap[uint64, *SsTable](32),
	}
}

// Add registers sst. A segment already registered under the same generation
// is returned so the caller can close it.
func (s *SegmentSet) Add(sst *SsTable) (*SsTable, bool) {
	return s.segments.Set(sst.Generation(), sst)
}

// Ascending returns the segments oldest first.
func (s *SegmentSet) Ascending() []*SsTable {
	tables := make([]*SsTable, 0, s.segments.Len())
	s.segments.Scan(func(_ uint64, sst *SsTable) bool {
		tables = append(tables, sst)
		return true
	})
	return tables
}

// Descending returns the segments newest first.
func (s *SegmentSet) Descending() []*SsTable {
	tables := make([]*SsTable, 0, s.segments.Len())
	s.segments.Reverse(func(_ uint64, sst *SsTable) bool {
		tables = append(tables, sst)
		return true
	})
	return tables
}

// NextGeneration is one past the newest generation, starting at 0.
func (s *SegmentSet) NextGeneration() uint64 {
	generation, _, ok := s.segments.Max()
	if !ok {
		return 0
	}
	return generation + 1
}

func (s *SegmentSet) Len() int {
	return s.segments.Len()
}

// Close closes every segment and reports all failures together.
func (s *SegmentSet) Close() error {
	var err error
	for _, sst := range s.Ascending() {
		if closeErr := sst.Close(); closeErr != nil {
			err = errors.CombineErrors(err, closeErr)
		}
	}
	return err
}

// LoadSegments opens every segment found in dir. Leftover temp files from an
// interrupted write are removed; unrelated files are ignored.
func LoadSegments(dir string, options SsTableOptions, log *logrus.Entry) (*SegmentSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	set := NewSegmentSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, SegmentPrefix) {
			continue
		}
		p := filepath.Join(dir, name)
		if strings.HasSuffix(name, TempSuffix) {
			log.WithField("file", name).Warn("removing unfinished segment")
			if err := os.Remove(p); err != nil {
				return nil, errors.CombineErrors(err, set.Close())
			}
			continue
		}
		if _, err := ParseGeneration(name); err != nil {
			log.WithField("file", name).Debug("skipping file with segment prefix")
			continue
		}
		sst, err := OpenSsTable(p, options)
		if err != nil {
			return nil, errors.CombineErrors(err, set.Close())
		}
		set.Add(sst)
	}
	log.Infof("loaded %d segments", set.Len())
	return set, nil
}
