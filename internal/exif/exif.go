package exif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// Tags handled specially when reading and writing.
const (
	TagExifIFD        uint16 = 0x8769
	TagGPSIFD         uint16 = 0x8825
	TagInteropIFD     uint16 = 0xA005
	TagUserComment    uint16 = 0x9286
	TagThumbnailStart uint16 = 0x0201
	TagThumbnailSize  uint16 = 0x0202
)

// Field types.
const (
	TypeByte      uint16 = 1
	TypeASCII     uint16 = 2
	TypeShort     uint16 = 3
	TypeLong      uint16 = 4
	TypeRational  uint16 = 5
	TypeUndefined uint16 = 7
	TypeIFD       uint16 = 13
)

const maxDepth = 4

var ErrMalformed = errors.New("malformed exif")

// Entry is one IFD field. Value holds the raw value bytes in the byte order
// of the Tree. Entries pointing at a sub-IFD have Sub set instead.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value []byte
	Sub   *IFD
}

// IFD is an image file directory. Next is only followed from IFD0, which
// links to the thumbnail directory IFD1.
type IFD struct {
	Entries   []Entry
	Next      *IFD
	Thumbnail []byte
}

// Tree is a parsed TIFF structure as stored in an EXIF APP1 segment.
type Tree struct {
	Order binary.ByteOrder
	Root  *IFD
}

// New returns an empty big-endian tree.
func New() *Tree {
	return &Tree{Order: binary.BigEndian, Root: new(IFD)}
}

func typeSize(t uint16) int {
	switch t {
	case 1, 2, 6, 7:
		return 1
	case 3, 8:
		return 2
	case 4, 9, 11, 13:
		return 4
	case 5, 10, 12:
		return 8
	}
	return 0
}

func isPointer(tag uint16) bool {
	return tag == TagExifIFD || tag == TagGPSIFD || tag == TagInteropIFD
}

// Parse reads a TIFF structure. Fields of unknown type are dropped.
func Parse(b []byte) (*Tree, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: short header", ErrMalformed)
	}
	t := new(Tree)
	switch string(b[:4]) {
	case "II*\x00":
		t.Order = binary.LittleEndian
	case "MM\x00*":
		t.Order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order mark", ErrMalformed)
	}
	p := parser{b: b, order: t.Order, seen: make(map[uint32]bool)}
	root, err := p.ifd(t.Order.Uint32(b[4:]), 0, true)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

type parser struct {
	b     []byte
	order binary.ByteOrder
	seen  map[uint32]bool
}

func (p *parser) ifd(off uint32, depth int, root bool) (*IFD, error) {
	if depth > maxDepth || p.seen[off] {
		return nil, fmt.Errorf("%w: ifd loop at %d", ErrMalformed, off)
	}
	p.seen[off] = true
	if int(off)+2 > len(p.b) {
		return nil, fmt.Errorf("%w: ifd offset %d out of range", ErrMalformed, off)
	}
	n := int(p.order.Uint16(p.b[off:]))
	start := int(off) + 2
	if start+12*n+4 > len(p.b) {
		return nil, fmt.Errorf("%w: ifd at %d truncated", ErrMalformed, off)
	}

	d := new(IFD)
	for i := range n {
		raw := p.b[start+12*i : start+12*(i+1)]
		e := Entry{
			Tag:   p.order.Uint16(raw),
			Type:  p.order.Uint16(raw[2:]),
			Count: p.order.Uint32(raw[4:]),
		}
		size := typeSize(e.Type)
		if size == 0 {
			continue
		}
		if isPointer(e.Tag) && (e.Type == TypeLong || e.Type == TypeIFD) && e.Count == 1 {
			sub, err := p.ifd(p.order.Uint32(raw[8:]), depth+1, false)
			if err != nil {
				return nil, err
			}
			e.Type = TypeLong
			e.Sub = sub
			d.Entries = append(d.Entries, e)
			continue
		}
		total := int64(size) * int64(e.Count)
		if total <= 4 {
			e.Value = slices.Clone(raw[8 : 8+total])
		} else {
			vo := int64(p.order.Uint32(raw[8:]))
			if vo+total > int64(len(p.b)) {
				return nil, fmt.Errorf("%w: tag %#04x value out of range", ErrMalformed, e.Tag)
			}
			e.Value = slices.Clone(p.b[vo : vo+total])
		}
		d.Entries = append(d.Entries, e)
	}

	if !root {
		return d, nil
	}
	next := p.order.Uint32(p.b[start+12*n:])
	if next == 0 {
		return d, nil
	}
	ifd1, err := p.ifd(next, depth+1, false)
	if err != nil {
		return nil, err
	}
	start1, ok1 := ifd1.long(p.order, TagThumbnailStart)
	size1, ok2 := ifd1.long(p.order, TagThumbnailSize)
	if ok1 && ok2 && uint64(start1)+uint64(size1) <= uint64(len(p.b)) {
		ifd1.Thumbnail = slices.Clone(p.b[start1 : start1+size1])
	}
	d.Next = ifd1
	return d, nil
}

func (d *IFD) long(order binary.ByteOrder, tag uint16) (uint32, bool) {
	e := d.Get(tag)
	if e == nil || e.Count != 1 {
		return 0, false
	}
	switch e.Type {
	case TypeLong:
		return order.Uint32(e.Value), true
	case TypeShort:
		return uint32(order.Uint16(e.Value)), true
	}
	return 0, false
}

// Get returns the entry for tag, or nil.
func (d *IFD) Get(tag uint16) *Entry {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i]
		}
	}
	return nil
}

// Set adds e or replaces the entry with the same tag.
func (d *IFD) Set(e Entry) {
	if old := d.Get(e.Tag); old != nil {
		*old = e
		return
	}
	d.Entries = append(d.Entries, e)
}

// Len counts the entries of d and its sub-IFDs, pointer entries excluded,
// plus those of the next IFD.
func (d *IFD) Len() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, e := range d.Entries {
		if e.Sub != nil {
			n += e.Sub.Len()
			continue
		}
		n++
	}
	return n + d.Next.Len()
}

// ExifIFD returns the Exif sub-IFD, creating it when create is set.
func (t *Tree) ExifIFD(create bool) *IFD {
	if e := t.Root.Get(TagExifIFD); e != nil && e.Sub != nil {
		return e.Sub
	}
	if !create {
		return nil
	}
	sub := new(IFD)
	t.Root.Set(Entry{Tag: TagExifIFD, Type: TypeLong, Count: 1, Sub: sub})
	return sub
}

// UserComment returns the raw UserComment value.
func (t *Tree) UserComment() ([]byte, bool) {
	d := t.ExifIFD(false)
	if d == nil {
		return nil, false
	}
	e := d.Get(TagUserComment)
	if e == nil {
		return nil, false
	}
	return e.Value, true
}

// SetUserComment stores v as the UserComment, adding the Exif IFD if needed.
func (t *Tree) SetUserComment(v []byte) {
	t.ExifIFD(true).Set(Entry{
		Tag:   TagUserComment,
		Type:  TypeUndefined,
		Count: uint32(len(v)),
		Value: slices.Clone(v),
	})
}
