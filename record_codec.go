package lsm_dao

import (
	"bufio"
	"encoding/binary"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/cockroachdb/errors"
)

// Segment record layout, all lengths big-endian int32:
//
//	| key len | key | value len or -1 | value |
//
// A value length of -1 marks a tombstone and is followed by no value bytes.
// There is no header, footer, index or checksum.
const (
	SizeOfLength    = 4
	tombstoneLength = -1
)

func encodeRecord(w *bufio.Writer, record Record, scratch []byte) error {
	if !utils.FitsInt32(len(record.Key())) || !utils.FitsInt32(len(record.Value())) {
		return errors.Newf("lsm: record of key length %d and value length %d does not fit the segment format",
			len(record.Key()), len(record.Value()))
	}
	binary.BigEndian.PutUint32(scratch, uint32(int32(len(record.Key()))))
	if _, err := w.Write(scratch[:SizeOfLength]); err != nil {
		return err
	}
	if _, err := w.Write(record.Key()); err != nil {
		return err
	}
	valueLen := int32(len(record.Value()))
	if record.IsTombstone() {
		valueLen = tombstoneLength
	}
	binary.BigEndian.PutUint32(scratch, uint32(valueLen))
	if _, err := w.Write(scratch[:SizeOfLength]); err != nil {
		return err
	}
	if record.IsTombstone() {
		return nil
	}
	_, err := w.Write(record.Value())
	return err
}

// decodeRecord decodes the record starting at offset and returns it with the
// offset of the following record. Key and value alias data.
func decodeRecord(data []byte, offset int) (Record, int, error) {
	keyLen, offset, err := decodeLength(data, offset)
	if err != nil {
		return Record{}, 0, err
	}
	if keyLen < 0 {
		return Record{}, 0, errors.Wrapf(ErrCorruptedSegment, "negative key length %d", keyLen)
	}
	key, offset, err := slice(data, offset, int(keyLen))
	if err != nil {
		return Record{}, 0, err
	}
	valueLen, offset, err := decodeLength(data, offset)
	if err != nil {
		return Record{}, 0, err
	}
	if valueLen == tombstoneLength {
		return Tombstone(key), offset, nil
	}
	if valueLen < 0 {
		return Record{}, 0, errors.Wrapf(ErrCorruptedSegment, "invalid value length %d", valueLen)
	}
	value, offset, err := slice(data, offset, int(valueLen))
	if err != nil {
		return Record{}, 0, err
	}
	return Of(key, value), offset, nil
}

func decodeLength(data []byte, offset int) (int32, int, error) {
	if len(data)-offset < SizeOfLength {
		return 0, 0, errors.Wrapf(ErrCorruptedSegment, "truncated length prefix, %d bytes left", len(data)-offset)
	}
	return int32(binary.BigEndian.Uint32(data[offset:])), offset + SizeOfLength, nil
}

func slice(data []byte, offset, n int) ([]byte, int, error) {
	if len(data)-offset < n {
		return nil, 0, errors.Wrapf(ErrCorruptedSegment, "length %d runs past end of data, %d bytes left", n, len(data)-offset)
	}
	end := offset + n
	return data[offset:end:end], end, nil
}
