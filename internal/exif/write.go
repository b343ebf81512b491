package exif

import (
	"cmp"
	"slices"
)

// Bytes serializes the tree. Entries are written in tag order and all
// offsets are recomputed.
func (t *Tree) Bytes() []byte {
	size := 8 + t.Root.size()
	if t.Root.Next != nil {
		size += t.Root.Next.size()
	}
	buf := make([]byte, size)
	if t.Order.Uint16([]byte{1, 0}) == 1 {
		copy(buf, "II*\x00")
	} else {
		copy(buf, "MM\x00*")
	}
	t.Order.PutUint32(buf[4:], 8)

	w := writer{buf: buf, t: t}
	end, nextAt := w.ifd(t.Root, 8)
	if t.Root.Next != nil {
		t.Order.PutUint32(buf[nextAt:], uint32(end))
		w.ifd(t.Root.Next, end)
	}
	return buf
}

func pad(n int) int {
	return n + n&1
}

func (d *IFD) sorted() []Entry {
	entries := slices.Clone(d.Entries)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Tag, b.Tag)
	})
	return entries
}

// size is the encoded size of d without its Next IFD.
func (d *IFD) size() int {
	n := 2 + 12*len(d.Entries) + 4
	for _, e := range d.Entries {
		switch {
		case e.Sub != nil:
			n += e.Sub.size()
		case len(e.Value) > 4:
			n += pad(len(e.Value))
		}
	}
	return n + pad(len(d.Thumbnail))
}

type writer struct {
	buf []byte
	t   *Tree
}

// ifd writes d at off and returns the end offset and the position of its
// next-IFD field.
func (w *writer) ifd(d *IFD, off int) (end, nextAt int) {
	order := w.t.Order
	entries := d.sorted()

	cursor := off + 2 + 12*len(entries) + 4
	valueAt := make([]int, len(entries))
	for i, e := range entries {
		if e.Sub == nil && len(e.Value) > 4 {
			valueAt[i] = cursor
			cursor += pad(len(e.Value))
		}
	}
	subAt := make([]int, len(entries))
	for i, e := range entries {
		if e.Sub != nil {
			subAt[i] = cursor
			cursor += e.Sub.size()
		}
	}
	thumbAt := cursor
	cursor += pad(len(d.Thumbnail))

	order.PutUint16(w.buf[off:], uint16(len(entries)))
	for i, e := range entries {
		field := w.buf[off+2+12*i : off+2+12*(i+1)]
		order.PutUint16(field, e.Tag)
		order.PutUint16(field[2:], e.Type)
		switch {
		case e.Sub != nil:
			order.PutUint32(field[4:], 1)
			order.PutUint32(field[8:], uint32(subAt[i]))
			w.ifd(e.Sub, subAt[i])
		case e.Tag == TagThumbnailStart && d.Thumbnail != nil:
			order.PutUint32(field[4:], 1)
			if e.Type == TypeShort {
				order.PutUint16(field[8:], uint16(thumbAt))
			} else {
				order.PutUint32(field[8:], uint32(thumbAt))
			}
		case len(e.Value) > 4:
			order.PutUint32(field[4:], e.Count)
			order.PutUint32(field[8:], uint32(valueAt[i]))
			copy(w.buf[valueAt[i]:], e.Value)
		default:
			order.PutUint32(field[4:], e.Count)
			copy(field[8:], e.Value)
		}
	}
	nextAt = off + 2 + 12*len(entries)
	copy(w.buf[thumbAt:], d.Thumbnail)
	return cursor, nextAt
}
