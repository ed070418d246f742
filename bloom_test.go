package lsm_dao

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilter(t *testing.T) {
	var keyHashes []uint32
	for i := 0; i < 1000; i++ {
		keyHashes = append(keyHashes, KeyHash(keyOf(i)))
	}
	bitsPerKey := BloomBitsPerKey(uint32(len(keyHashes)), 0.01)
	assert.Equal(t, uint32(10), bitsPerKey)
	bloom := BuildFromKeyHashes(keyHashes, bitsPerKey)
	assert.Equal(t, uint8(6), bloom.k)

	for i := 0; i < 1000; i++ {
		assert.True(t, bloom.MayContain(KeyHash(keyOf(i))))
	}
	falsePositives := 0
	for i := 0; i < 10000; i++ {
		if bloom.MayContain(KeyHash([]byte(fmt.Sprintf("missing_%d", i)))) {
			falsePositives++
		}
	}
	assert.Less(t, falsePositives, 500)
}

func TestBloomBits(t *testing.T) {
	b := make([]byte, 2)
	assert.Equal(t, uint32(16), BitLen(b))
	SetBit(b, 3)
	SetBit(b, 9)
	assert.True(t, GetBit(b, 3))
	assert.True(t, GetBit(b, 9))
	assert.False(t, GetBit(b, 4))
	assert.Equal(t, []byte{0x08, 0x02}, b)
	assert.Equal(t, uint32(1), BloomBitsPerKey(0, 0.01))
}
