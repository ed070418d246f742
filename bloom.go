package lsm_dao

import (
	"math"

	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/dgryski/go-farm"
)

// Bloom is an in-memory filter over a segment's keys. It is rebuilt every time
// the segment is opened and never written to disk.
type Bloom struct {
	filter []byte
	k      uint8
}

func GetBit(b []byte, idx uint32) bool {
	pos := idx / 8
	offset := idx % 8
	return b[pos]&(1<<offset) != 0
}

func SetBit(b []byte, idx uint32) {
	b[idx/8] |= 1 << (idx % 8)
}

func BitLen(b []byte) uint32 {
	return uint32(len(b) * 8)
}

func KeyHash(key []byte) uint32 {
	return farm.Fingerprint32(key)
}

func BloomBitsPerKey(entries uint32, falsePositiveRate float64) uint32 {
	if entries == 0 {
		return 1
	}
	size := -1.0 * float64(entries) * math.Log(falsePositiveRate) / math.Pow(math.Ln2, 2)
	locs := math.Ceil(size / float64(entries))
	return uint32(locs)
}

func BuildFromKeyHashes(keys []uint32, bitsPerKey uint32) *Bloom {
	k := uint32(math.Min(math.Max(float64(bitsPerKey)*0.69, 1), 30))
	nbits := uint32(math.Max(float64(len(keys))*float64(bitsPerKey), 64))
	nbytes := (nbits + 7) / 8
	nbits = nbytes * 8
	filter := make([]byte, nbytes)
	for _, h := range keys {
		delta := (h >> 17) | (h << 15)
		for i := uint32(0); i < k; i++ {
			SetBit(filter, h%nbits)
			h = utils.WrappingAddU32(h, delta)
		}
	}
	return &Bloom{
		filter: filter,
		k:      uint8(k),
	}
}

func (b *Bloom) MayContain(h uint32) bool {
	if b.k > 30 {
		return true
	}
	nbits := BitLen(b.filter)
	delta := (h >> 17) | (h << 15)
	for i := uint8(0); i < b.k; i++ {
		if !GetBit(b.filter, h%nbits) {
			return false
		}
		h = utils.WrappingAddU32(h, delta)
	}
	return true
}
