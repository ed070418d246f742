package lsm_dao

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// WriteSsTable streams iter, which must be sorted and duplicate free, into a
// new segment at path and returns it opened.
//
// The records go to path+TempSuffix first; the temp file is synced and then
// renamed over path, so path only ever holds a complete segment. If anything
// fails before the rename, path is left untouched.
func WriteSsTable(iter StorageIterator, path string, options SsTableOptions) (*SsTable, error) {
	tempPath := path + TempSuffix
	if err := writeTempFile(iter, tempPath, options.WriteBufferSize); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.Wrapf(err, "write segment %s", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "remove previous %s", path)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return nil, errors.Wrapf(err, "commit segment %s", path)
	}
	if err := syncDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return OpenSsTable(path, options)
}

func writeTempFile(iter StorageIterator, tempPath string, bufferSize int) error {
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if bufferSize <= 0 {
		bufferSize = DefaultSsTableOptions().WriteBufferSize
	}
	w := bufio.NewWriterSize(file, bufferSize)
	scratch := make([]byte, SizeOfLength)
	for iter.IsValid() {
		if err := encodeRecord(w, iter.Record(), scratch); err != nil {
			_ = file.Close()
			return err
		}
		if err := iter.Next(); err != nil {
			_ = file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// syncDir makes the rename itself durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return errors.Wrapf(err, "sync dir %s", dir)
	}
	return nil
}
