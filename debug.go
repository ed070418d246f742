package lsm_dao

import (
	"fmt"
	"io"
)

func (lsm *LsmDAO) DumpStructure(w io.Writer) {
	lsm.rwLock.RLock()
	defer lsm.rwLock.RUnlock()
	fmt.Fprintf(w, "MemTable: %d records, ~%d bytes\n", lsm.memTable.Len(), lsm.memTable.ApproximateSize())
	for _, sst := range lsm.segments.Ascending() {
		fmt.Fprintf(w, "Segment: %v\n", sst)
	}
}
