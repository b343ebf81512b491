package bitcodec

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/golay"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/bitconv"
)

// HeaderBits is the unprotected bit length of the frame header.
const HeaderBits = 32

// Frame is a length-prefixed layout: a 32-bit big-endian payload length
// followed by the payload. Header and payload are each optionally protected
// by a Golay(24,12) code.
type Frame struct {
	ecc protection
}

type FrameOption func(*Frame)

// WithGolay protects header and payload with Golay(24,12), which corrects up
// to three bit errors per 24-bit codeword. Encoded bits are interleaved with
// a permutation derived from seed so that runs of damaged samples spread
// over several codewords.
func WithGolay(seed int64) FrameOption {
	return func(f *Frame) {
		f.ecc = shuffledGolay(seed)
	}
}

// NewFrame returns an unprotected Frame unless an option says otherwise.
func NewFrame(opts ...FrameOption) *Frame {
	f := &Frame{ecc: plain{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HeaderBits returns the encoded bit length of the header.
func (f *Frame) HeaderBits() int {
	return f.ecc.encodedLen(HeaderBits)
}

// PayloadBits returns the encoded bit length of an n-byte payload.
func (f *Frame) PayloadBits(n int) int {
	return f.ecc.encodedLen(n * 8)
}

// Len returns the total encoded bit length of an n-byte payload.
func (f *Frame) Len(n int) int {
	return f.HeaderBits() + f.PayloadBits(n)
}

// Encode returns the encoded header followed by the encoded payload.
func (f *Frame) Encode(payload []byte) (Sequence, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return Sequence{}, fmt.Errorf("%w: %d bytes do not fit a 32-bit length", stego.ErrCapacityExceeded, len(payload))
	}
	header := bitconv.UintToBools(uint64(len(payload)), HeaderBits)
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range f.ecc.encode(header) {
		w.WriteBool(v)
	}
	for _, v := range f.ecc.encode(bitconv.BytesToBools(payload)) {
		w.WriteBool(v)
	}
	return newSequence(w), nil
}

// DecodeHeader returns the payload length declared by the first
// HeaderBits() bits.
func (f *Frame) DecodeHeader(bits []bool) (int, error) {
	if len(bits) < f.HeaderBits() {
		return 0, fmt.Errorf("%w: header needs %d bits, got %d", stego.ErrTruncatedMessage, f.HeaderBits(), len(bits))
	}
	header, err := f.ecc.decode(bits[:f.HeaderBits()], HeaderBits)
	if err != nil {
		return 0, err
	}
	return int(bitconv.BoolsToUint(header)), nil
}

// DecodePayload decodes an n-byte payload from the first PayloadBits(n) bits.
func (f *Frame) DecodePayload(bits []bool, n int) ([]byte, error) {
	if len(bits) < f.PayloadBits(n) {
		return nil, fmt.Errorf("%w: payload needs %d bits, got %d", stego.ErrTruncatedMessage, f.PayloadBits(n), len(bits))
	}
	payload, err := f.ecc.decode(bits[:f.PayloadBits(n)], n*8)
	if err != nil {
		return nil, err
	}
	return bitconv.BoolsToBytes(payload), nil
}

type protection interface {
	encode(bits []bool) []bool
	decode(bits []bool, size int) ([]bool, error)
	encodedLen(size int) int
}

var _ protection = plain{}

type plain struct{}

func (plain) encode(bits []bool) []bool {
	return bits
}

func (plain) decode(bits []bool, size int) ([]bool, error) {
	return bits[:size], nil
}

func (plain) encodedLen(size int) int {
	return size
}

var _ protection = shuffledGolay(0)

type shuffledGolay int64

func (sg shuffledGolay) encode(bits []bool) []bool {
	if len(bits) == 0 {
		return nil
	}
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	_ = enc.Encode(w.Data(), w.Bits())
	n := enc.Bits()

	index := sg.permutation(n)
	r := bitstream.NewBitReader(encoded, 0, 0)
	out := make([]bool, n)
	for i := range n {
		out[i], _ = r.ReadBitAt(index[i])
	}
	return out
}

func (sg shuffledGolay) decode(bits []bool, size int) ([]bool, error) {
	if size == 0 {
		return nil, nil
	}
	index := sg.permutation(len(bits))
	w := bitstream.NewBitWriter[uint64](0, 0)
	for i := range bits {
		w.WriteBitAt(index[i], bits[i])
	}

	var decoded []uint64
	dec := golay.NewDecoder(w.Data(), w.Bits())
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	r := bitstream.NewBitReader(decoded, 0, 0)
	out := make([]bool, size)
	for i := range size {
		out[i], _ = r.ReadBitAt(i)
	}
	return out, nil
}

func (sg shuffledGolay) encodedLen(size int) int {
	if size == 0 {
		return 0
	}
	return golay.EncodedBits(size)
}

func (sg shuffledGolay) permutation(length int) []int {
	index := make([]int, length)
	for i := range index {
		index[i] = i
	}
	rd := rand.New(rand.NewSource(int64(sg)))
	rd.Shuffle(length, func(i, j int) {
		index[i], index[j] = index[j], index[i]
	})
	return index
}
