// Package bitconv converts between bytes, unsigned integers and bit slices.
// Every conversion is MSB first.
package bitconv

func BytesToBools(b []byte) []bool {
	bits := make([]bool, 0, len(b)*8)
	for _, v := range b {
		bits = append(bits, UintToBools(uint64(v), 8)...)
	}
	return bits
}

// BoolsToBytes packs bits into bytes. A trailing partial byte is padded with
// zero bits.
func BoolsToBytes(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// UintToBools returns the low n bits of v.
func UintToBools(v uint64, n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = v>>uint(n-1-i)&1 == 1
	}
	return bits
}

// BoolsToUint reads up to 64 bits as an unsigned integer.
func BoolsToUint(bits []bool) uint64 {
	var v uint64
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}
