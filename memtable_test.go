package lsm_dao

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemTableUpsertAndGet(t *testing.T) {
	memTable := CreateMemTable(false)
	memTable.Upsert(Of([]byte("key1"), []byte("value1")))
	memTable.Upsert(Of([]byte("key2"), []byte("value2")))
	memTable.Upsert(Of([]byte("key1"), []byte("value11")))

	record, ok := memTable.Get([]byte("key1"))
	require.True(t, ok)
	assert.Equal(t, []byte("value11"), record.Value())
	assert.Equal(t, 2, memTable.Len())

	_, ok = memTable.Get([]byte("key3"))
	assert.False(t, ok)
}

func TestMemTableTombstoneRemovesKey(t *testing.T) {
	memTable := CreateMemTable(false)
	memTable.Upsert(Of([]byte("key1"), []byte("value1")))
	memTable.Upsert(Tombstone([]byte("key1")))
	memTable.Upsert(Tombstone([]byte("never-written")))

	_, ok := memTable.Get([]byte("key1"))
	assert.False(t, ok)
	assert.True(t, memTable.IsEmpty())
	assert.Equal(t, int64(0), memTable.ApproximateSize())
}

func TestMemTableRetainsTombstones(t *testing.T) {
	memTable := CreateMemTable(true)
	memTable.Upsert(Of([]byte("key1"), []byte("value1")))
	memTable.Upsert(Tombstone([]byte("key1")))
	memTable.Upsert(Tombstone([]byte("key2")))

	record, ok := memTable.Get([]byte("key1"))
	require.True(t, ok)
	assert.True(t, record.IsTombstone())
	CheckIterResult(t, memTable.Range(nil, nil), kv("key1", "~", "key2", "~"))
}

func TestMemTableCopiesInput(t *testing.T) {
	memTable := CreateMemTable(false)
	key := []byte("key")
	value := []byte("value")
	memTable.Upsert(Of(key, value))
	key[0] = 'X'
	value[0] = 'X'

	record, ok := memTable.Get([]byte("key"))
	require.True(t, ok)
	assert.Equal(t, []byte("value"), record.Value())
}

func TestMemTableRange(t *testing.T) {
	memTable := CreateMemTable(false)
	memTable.Upsert(Of([]byte("key3"), []byte("value3")))
	memTable.Upsert(Of([]byte("key1"), []byte("value1")))
	memTable.Upsert(Of([]byte("key2"), []byte("value2")))

	CheckIterResult(t, memTable.Range(nil, nil), kv("key1", "value1", "key2", "value2", "key3", "value3"))
	CheckIterResult(t, memTable.Range([]byte("key1"), []byte("key3")), kv("key1", "value1", "key2", "value2"))
	CheckIterResult(t, memTable.Range([]byte("key15"), nil), kv("key2", "value2", "key3", "value3"))
	CheckIterResult(t, memTable.Range(nil, []byte("key2")), kv("key1", "value1"))
	CheckIterResult(t, memTable.Range([]byte("key2"), NextKey([]byte("key2"))), kv("key2", "value2"))
	CheckIterResult(t, memTable.Range([]byte("key3"), []byte("key1")), nil)
	CheckIterResult(t, memTable.Range([]byte("key9"), nil), nil)
}

func TestMemTableExhaustedIterator(t *testing.T) {
	memTable := CreateMemTable(false)
	memTable.Upsert(Of([]byte("a"), []byte("1")))
	iter := memTable.Range(nil, nil)
	require.NoError(t, iter.Next())
	assert.False(t, iter.IsValid())
	assert.ErrorIs(t, iter.Next(), ErrIteratorExhausted)

	assert.ErrorIs(t, CreateMemTable(false).Range(nil, nil).Next(), ErrIteratorExhausted)
}

func TestMemTableIteratorSeesLaterWrites(t *testing.T) {
	memTable := CreateMemTable(false)
	memTable.Upsert(Of([]byte("a"), []byte("1")))
	memTable.Upsert(Of([]byte("c"), []byte("3")))
	memTable.Upsert(Of([]byte("d"), []byte("4")))

	iter := memTable.Range(nil, nil)
	require.True(t, iter.IsValid())
	assert.Equal(t, []byte("a"), iter.Key())

	// mutations ahead of the cursor are observed, the one behind is not
	memTable.Upsert(Of([]byte("b"), []byte("2")))
	memTable.Upsert(Of([]byte("c"), []byte("33")))
	memTable.Upsert(Tombstone([]byte("d")))
	memTable.Upsert(Tombstone([]byte("a")))

	require.NoError(t, iter.Next())
	CheckIterResult(t, iter, kv("b", "2", "c", "33"))
}

func TestMemTableConcurrentUpsertAndRange(t *testing.T) {
	memTable := CreateMemTable(false)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := []byte(fmt.Sprintf("key_%04d", i))
				if i%7 == w {
					memTable.Upsert(Tombstone(key))
				} else {
					memTable.Upsert(Of(key, []byte(fmt.Sprintf("value_%d_%d", w, i))))
				}
			}
		}(w)
	}
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 20; round++ {
				iter := memTable.Range(nil, nil)
				var prev []byte
				for iter.IsValid() {
					if prev != nil {
						assert.Equal(t, -1, CompareKeys(prev, iter.Key()))
					}
					prev = iter.Key()
					assert.NoError(t, iter.Next())
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, memTable.Len(), 500)
}
