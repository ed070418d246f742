package lsm_dao

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var FakeError = errors.New("fake error")

type MockIterator struct {
	Data      []Record
	ErrorWhen int
	Index     int
}

func NewMockIterator(data []Record) *MockIterator {
	return &MockIterator{Data: data, ErrorWhen: -1}
}

func NewMockIteratorWithError(data []Record, errorWhen int) *MockIterator {
	return &MockIterator{Data: data, ErrorWhen: errorWhen}
}

// kv builds records from alternating key/value strings; a value of "~"
// stands for a tombstone.
func kv(pairs ...string) []Record {
	utils.Assert(len(pairs)%2 == 0, "odd number of strings")
	records := make([]Record, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i+1] == "~" {
			records = append(records, Tombstone([]byte(pairs[i])))
		} else {
			records = append(records, Of([]byte(pairs[i]), []byte(pairs[i+1])))
		}
	}
	return records
}

func mockOf(pairs ...string) *MockIterator {
	return NewMockIterator(kv(pairs...))
}

func (m *MockIterator) Next() error {
	if m.Index >= len(m.Data) {
		return ErrIteratorExhausted
	}
	m.Index++
	if m.Index == m.ErrorWhen {
		return FakeError
	}
	return nil
}

func (m *MockIterator) Record() Record {
	if m.Index >= len(m.Data) {
		panic("invalid access to an exhausted mock iterator")
	}
	return m.Data[m.Index]
}

func (m *MockIterator) Key() []byte {
	return m.Record().Key()
}

func (m *MockIterator) IsValid() bool {
	if m.ErrorWhen != -1 && m.Index >= m.ErrorWhen {
		panic("invalid access after next returns an error!")
	}
	return m.Index < len(m.Data)
}

func CheckIterResult(t *testing.T, iter StorageIterator, expected []Record) {
	t.Helper()
	for i := range expected {
		require.True(t, iter.IsValid(), "expected valid iterator at %d", i)
		assert.Equal(t, string(expected[i].Key()), string(iter.Key()))
		assert.Equal(t, expected[i].IsTombstone(), iter.Record().IsTombstone(), "key %s", expected[i].Key())
		if !expected[i].IsTombstone() {
			assert.Equal(t, string(expected[i].Value()), string(iter.Record().Value()), "key %s", expected[i].Key())
		}
		require.NoError(t, iter.Next())
	}
	assert.False(t, iter.IsValid())
}

func GenerateSst(t *testing.T, dir string, generation uint64, records []Record) *SsTable {
	t.Helper()
	sst, err := WriteSsTable(NewMockIterator(records), filepath.Join(dir, SegmentFileName(generation)), DefaultSsTableOptions())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, sst.Close())
	})
	return sst
}
