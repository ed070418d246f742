package lsm_dao

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// loadSnapshot reads the snapshot file of dir, if any, into a new memtable.
// The snapshot is unmapped before returning so Close can replace it.
func loadSnapshot(dir string, options *LsmStorageOptions, log *logrus.Entry) (*MemTable, error) {
	memTable := CreateMemTable(false)
	p := filepath.Join(dir, SnapshotFileName)
	if err := os.Remove(p + TempSuffix); err == nil {
		log.Warn("removed unfinished snapshot")
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return memTable, nil
	} else if err != nil {
		return nil, err
	}

	sstOptions := options.ssTableOptions()
	sstOptions.BloomFalsePositiveRate = 0
	sst, err := OpenSsTable(p, sstOptions)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	iter, err := sst.Range(nil, nil)
	if err != nil {
		return nil, errors.CombineErrors(err, sst.Close())
	}
	for iter.IsValid() {
		// the memtable copies what it keeps, tombstones are dropped
		memTable.Upsert(iter.Record())
		if err := iter.Next(); err != nil {
			return nil, errors.CombineErrors(err, sst.Close())
		}
	}
	log.Infof("loaded %d records from snapshot", memTable.Len())
	return memTable, sst.Close()
}
