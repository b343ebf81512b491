// Package bitcodec converts payload bytes to the bit sequences hidden in
// pixel samples and back.
//
// The default layout is the payload bits, most significant bit first,
// followed by the 16-bit end marker 1111111111111110. A payload that itself
// contains the marker on a byte boundary is truncated at that point on
// extraction; Frame is a length-prefixed layout without that limitation.
package bitcodec

import (
	"fmt"

	"github.com/yyyoichi/bitstream-go"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/bitconv"
)

const (
	// Marker terminates a payload in the default layout.
	Marker uint16 = 0xFFFE
	// MarkerBits is the bit length of Marker.
	MarkerBits = 16
)

// Sequence is an immutable bit sequence.
type Sequence struct {
	r *bitstream.BitReader[uint64]
	n int
}

func newSequence(w *bitstream.BitWriter[uint64]) Sequence {
	r := bitstream.NewBitReader(w.Data(), 0, 0)
	r.SetBits(w.Bits())
	return Sequence{r: r, n: w.Bits()}
}

// FromBools builds a Sequence from raw bits.
func FromBools(bits []bool) Sequence {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	return newSequence(w)
}

// Len returns the number of bits.
func (s Sequence) Len() int {
	return s.n
}

// Bit returns bit i as 0 or 1.
func (s Sequence) Bit(i int) uint8 {
	if s.r == nil {
		return 0
	}
	if b, _ := s.r.ReadBitAt(i); b {
		return 1
	}
	return 0
}

// Bools returns a copy of the bits.
func (s Sequence) Bools() []bool {
	bits := make([]bool, s.n)
	for i := range bits {
		bits[i] = s.Bit(i) == 1
	}
	return bits
}

// Encode returns the payload bits followed by the end marker.
// The result is always 8*len(payload)+16 bits long.
func Encode(payload []byte) Sequence {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range payload {
		w.Write8(0, 8, v)
	}
	for i := MarkerBits - 1; i >= 0; i-- {
		w.WriteBool(Marker>>uint(i)&1 == 1)
	}
	return newSequence(w)
}

// EncodeString encodes the UTF-8 bytes of s.
func EncodeString(s string) Sequence {
	return Encode([]byte(s))
}

// Decode scans bits for the first occurrence of the end marker and returns
// the bytes before it.
//
// It returns ErrTruncatedMessage when no marker is present and
// ErrMisalignedPayload when the bits before the marker do not form whole bytes.
func Decode(bits []bool) ([]byte, error) {
	var window uint16
	for i, b := range bits {
		window <<= 1
		if b {
			window |= 1
		}
		if i < MarkerBits-1 || window != Marker {
			continue
		}
		n := i + 1 - MarkerBits
		if n%8 != 0 {
			return nil, fmt.Errorf("%w: marker ends at bit %d", stego.ErrMisalignedPayload, i)
		}
		return bitconv.BoolsToBytes(bits[:n]), nil
	}
	return nil, stego.ErrTruncatedMessage
}

// Scanner decodes the default layout one bit at a time and checks for the
// end marker on every byte boundary.
type Scanner struct {
	window uint16
	cur    byte
	n      int
	buf    []byte
	done   bool
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Push feeds the next bit (its lowest bit is used) and reports whether the
// end marker has been reached. Bits pushed after that are ignored.
func (s *Scanner) Push(bit uint8) bool {
	if s.done {
		return true
	}
	bit &= 1
	s.window = s.window<<1 | uint16(bit)
	s.cur = s.cur<<1 | bit
	s.n++
	if s.n%8 != 0 {
		return false
	}
	s.buf = append(s.buf, s.cur)
	s.cur = 0
	if s.n >= MarkerBits && s.window == Marker {
		s.done = true
	}
	return s.done
}

// Done reports whether the end marker has been seen.
func (s *Scanner) Done() bool {
	return s.done
}

// Bits returns the number of bits consumed so far.
func (s *Scanner) Bits() int {
	return s.n
}

// Payload returns the bytes before the end marker, or nil before Done.
func (s *Scanner) Payload() []byte {
	if !s.done {
		return nil
	}
	payload := make([]byte, len(s.buf)-MarkerBits/8)
	copy(payload, s.buf)
	return payload
}
