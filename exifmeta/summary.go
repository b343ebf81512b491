package exifmeta

import (
	"bytes"
	"fmt"
	"slices"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/imgio"
	"github.com/yyyoichi/stego_zero/internal/jpegseg"
)

// Summary describes the EXIF data of a JPEG.
type Summary struct {
	HasExif        bool     `json:"has_exif"`
	TagsCount      int      `json:"tags_count"`
	HasUserComment bool     `json:"has_usercomment"`
	Tags           []string `json:"tags"`
}

const summaryTags = 10

type tagWalker struct {
	names []string
}

func (w *tagWalker) Walk(name goexif.FieldName, _ *tiff.Tag) error {
	w.names = append(w.names, string(name))
	return nil
}

// Inspect summarizes the EXIF tags of a JPEG: how many known tags it holds,
// whether a UserComment is present and the first ten tag names in
// alphabetical order.
func Inspect(jpegBytes []byte) (*Summary, error) {
	if !imgio.IsJPEG(jpegBytes) {
		return nil, fmt.Errorf("%w: not a jpeg", stego.ErrInvalidContainer)
	}
	f, err := jpegseg.Split(jpegBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	if _, ok := f.Exif(); !ok {
		return &Summary{Tags: []string{}}, nil
	}

	x, err := goexif.Decode(bytes.NewReader(jpegBytes))
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	var w tagWalker
	if err := x.Walk(&w); err != nil {
		return nil, err
	}
	slices.Sort(w.names)

	s := &Summary{
		HasExif:   true,
		TagsCount: len(w.names),
		Tags:      w.names[:min(summaryTags, len(w.names))],
	}
	_, err = x.Get(goexif.UserComment)
	s.HasUserComment = err == nil
	return s, nil
}
