package bitconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	test := []struct {
		name string
		data []byte
	}{
		{name: "pattern", data: []byte{0b10101010}},
		{name: "nibbles", data: []byte{0b11110000, 0b00001111}},
		{name: "ascii", data: []byte("Hello")},
		{name: "emoji", data: []byte("🍣")},
		{name: "empty", data: []byte{}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			bits := BytesToBools(tt.data)
			assert.Len(t, bits, len(tt.data)*8)
			assert.Equal(t, tt.data, BoolsToBytes(bits))
		})
	}
}

func TestBoolsToBytesPadding(t *testing.T) {
	assert.Equal(t, []byte{0b10100000}, BoolsToBytes([]bool{true, false, true}))
	assert.Equal(t, []byte{0xFF, 0x80}, BoolsToBytes([]bool{true, true, true, true, true, true, true, true, true}))
}

func TestUint(t *testing.T) {
	test := []struct {
		name string
		v    uint64
		n    int
		exp  []bool
	}{
		{name: "one", v: 1, n: 4, exp: []bool{false, false, false, true}},
		{name: "truncated", v: 0b1101, n: 3, exp: []bool{true, false, true}},
		{name: "zero width", v: 7, n: 0, exp: []bool{}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			bits := UintToBools(tt.v, tt.n)
			assert.Equal(t, tt.exp, bits)
			assert.Equal(t, tt.v&(1<<uint(tt.n)-1), BoolsToUint(bits))
		})
	}
	assert.Equal(t, uint64(0xFFFE), BoolsToUint(UintToBools(0xFFFE, 32)))
}
