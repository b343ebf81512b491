package jpegseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

const (
	markerSOI  = 0xD8
	markerSOS  = 0xDA
	markerEOI  = 0xD9
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1

	// MaxSegmentData is the largest payload a marker segment can hold.
	MaxSegmentData = 0xFFFF - 2
)

// ExifHeader prefixes the TIFF structure in an APP1 segment.
var ExifHeader = []byte("Exif\x00\x00")

var ErrMalformed = errors.New("malformed jpeg")

// Segment is a marker segment before the scan data. Data excludes the
// marker and the length field.
type Segment struct {
	Marker byte
	Data   []byte
}

// File is a JPEG split into its header segments and the remainder starting
// at the first SOS marker.
type File struct {
	Segments []Segment
	Scan     []byte
}

// Split parses b up to the first SOS marker.
func Split(b []byte) (*File, error) {
	if len(b) < 4 || b[0] != 0xFF || b[1] != markerSOI {
		return nil, fmt.Errorf("%w: missing SOI", ErrMalformed)
	}
	f := new(File)
	i := 2
	for {
		if i >= len(b) || b[i] != 0xFF {
			return nil, fmt.Errorf("%w: expected marker at offset %d", ErrMalformed, i)
		}
		// fill bytes
		for i < len(b) && b[i] == 0xFF {
			i++
		}
		if i >= len(b) {
			return nil, fmt.Errorf("%w: truncated marker", ErrMalformed)
		}
		m := b[i]
		i++
		switch {
		case m == markerSOS:
			f.Scan = b[i-2:]
			return f, nil
		case m == markerEOI:
			return nil, fmt.Errorf("%w: EOI before scan data", ErrMalformed)
		case m == 0x01 || (m >= 0xD0 && m <= 0xD7):
			f.Segments = append(f.Segments, Segment{Marker: m})
			continue
		}
		if i+2 > len(b) {
			return nil, fmt.Errorf("%w: truncated segment length", ErrMalformed)
		}
		l := int(binary.BigEndian.Uint16(b[i:]))
		if l < 2 || i+l > len(b) {
			return nil, fmt.Errorf("%w: segment %#x overruns file", ErrMalformed, m)
		}
		f.Segments = append(f.Segments, Segment{Marker: m, Data: b[i+2 : i+l]})
		i += l
	}
}

// Bytes reassembles the file.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	for _, s := range f.Segments {
		buf.Write([]byte{0xFF, s.Marker})
		if s.Data == nil && (s.Marker == 0x01 || (s.Marker >= 0xD0 && s.Marker <= 0xD7)) {
			continue
		}
		_ = binary.Write(&buf, binary.BigEndian, uint16(len(s.Data)+2))
		buf.Write(s.Data)
	}
	buf.Write(f.Scan)
	return buf.Bytes()
}

// Exif returns the TIFF structure of the first Exif APP1 segment.
func (f *File) Exif() ([]byte, bool) {
	for _, s := range f.Segments {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Data, ExifHeader) {
			return s.Data[len(ExifHeader):], true
		}
	}
	return nil, false
}

// SetExif replaces every Exif APP1 segment with one holding tiff, placed
// after any leading APP0 (JFIF) segments.
func (f *File) SetExif(tiff []byte) error {
	data := append(append([]byte{}, ExifHeader...), tiff...)
	if len(data) > MaxSegmentData {
		return fmt.Errorf("exif segment of %d bytes exceeds %d", len(data), MaxSegmentData)
	}
	segs := make([]Segment, 0, len(f.Segments)+1)
	at := 0
	for _, s := range f.Segments {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Data, ExifHeader) {
			continue
		}
		if s.Marker == markerAPP0 && at == len(segs) {
			at++
		}
		segs = append(segs, s)
	}
	f.Segments = slices.Insert(segs, at, Segment{Marker: markerAPP1, Data: data})
	return nil
}
