package lsm_dao

import "github.com/cockroachdb/errors"

// SsTableIterator decodes its own view of a segment front to back with one
// record of look-ahead. Records below from are skipped without being kept;
// the first record at or above to ends the scan.
type SsTableIterator struct {
	table  *SsTable
	data   []byte
	offset int
	from   []byte
	to     []byte
	peek   Record
	valid  bool
}

func createSsTableIterator(table *SsTable, view, from, to []byte) (*SsTableIterator, error) {
	iter := &SsTableIterator{
		table: table,
		data:  view,
		from:  from,
		to:    to,
	}
	if err := iter.seekToFrom(); err != nil {
		return nil, err
	}
	return iter, nil
}

func (s *SsTableIterator) seekToFrom() error {
	for {
		if err := s.advance(); err != nil {
			return err
		}
		if !s.valid || s.from == nil || CompareKeys(s.peek.Key(), s.from) >= 0 {
			return nil
		}
	}
}

func (s *SsTableIterator) advance() error {
	if s.offset >= len(s.data) {
		s.valid = false
		return nil
	}
	record, next, err := decodeRecord(s.data, s.offset)
	if err != nil {
		s.valid = false
		return errors.Wrapf(err, "%s at offset %d", s.table.Path(), s.offset)
	}
	s.offset = next
	s.peek = record
	s.valid = belowUpper(record.Key(), s.to)
	if !s.valid {
		s.offset = len(s.data)
	}
	return nil
}

func (s *SsTableIterator) Record() Record {
	return s.peek
}

func (s *SsTableIterator) Key() []byte {
	return s.peek.Key()
}

func (s *SsTableIterator) IsValid() bool {
	return s.valid
}

func (s *SsTableIterator) Next() error {
	if !s.valid {
		return ErrIteratorExhausted
	}
	return s.advance()
}
