// Package capacity reports how much payload an image can carry with each
// technique and which technique to use.
package capacity

import (
	"encoding/base64"
	"errors"
	"fmt"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/exifmeta"
	"github.com/yyyoichi/stego_zero/imgio"
	"github.com/yyyoichi/stego_zero/lsb"
)

type Method string

const (
	MethodLSB  Method = "lsb"
	MethodEXIF Method = "exif"
)

const (
	DefaultEXIFCapacity       = exifmeta.MaxCommentBytes
	DefaultRecommendThreshold = 10000
)

// Report is the result of an analysis. EXIF and QualityEstimate are only set
// by AnalyzeJPEG.
type Report struct {
	LSBBytes        int               `json:"lsb_capacity_bytes"`
	EXIFBytes       int               `json:"exif_capacity_bytes"`
	Recommended     Method            `json:"recommended_method"`
	QualityEstimate int               `json:"quality_estimate,omitempty"`
	EXIF            *exifmeta.Summary `json:"exif_analysis,omitempty"`
}

// Fits reports whether a payload of n bytes fits with method.
func (r Report) Fits(method Method, n int) bool {
	switch method {
	case MethodLSB:
		return n <= r.LSBBytes
	case MethodEXIF:
		return 8+base64.StdEncoding.EncodedLen(n) <= r.EXIFBytes
	}
	return false
}

// Analyze reports with the default options.
// This is a convenience function that creates an Analyzer and calls its Analyze method.
func Analyze(img *stego.ImageBuffer, isJPEG bool) (Report, error) {
	a, _ := New()
	return a.Analyze(img, isJPEG)
}

type Analyzer struct {
	exifCapacity       int
	recommendThreshold int
}

// New initializes an Analyzer.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		exifCapacity:       DefaultEXIFCapacity,
		recommendThreshold: DefaultRecommendThreshold,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Analyze reports the LSB capacity of img and, for JPEG sources, the fixed
// EXIF ceiling. EXIF is recommended for JPEG sources whose LSB capacity
// exceeds the recommend threshold, LSB otherwise.
func (a *Analyzer) Analyze(img *stego.ImageBuffer, isJPEG bool) (Report, error) {
	if err := img.Validate(); err != nil {
		return Report{}, err
	}
	_, lsbBytes := lsb.Capacity(img.Width, img.Height, img.Channels)
	r := Report{LSBBytes: lsbBytes, Recommended: MethodLSB}
	if isJPEG {
		r.EXIFBytes = a.exifCapacity
		if lsbBytes > a.recommendThreshold {
			r.Recommended = MethodEXIF
		}
	}
	return r, nil
}

// AnalyzeJPEG decodes a JPEG file and adds its EXIF summary and an estimate
// of the encoder quality to the report.
func (a *Analyzer) AnalyzeJPEG(jpegBytes []byte) (Report, error) {
	if !imgio.IsJPEG(jpegBytes) {
		return Report{}, fmt.Errorf("%w: not a jpeg", stego.ErrInvalidContainer)
	}
	img, _, err := imgio.DecodeBytes(jpegBytes)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	r, err := a.Analyze(img, true)
	if err != nil {
		return Report{}, err
	}
	r.EXIF, err = exifmeta.Inspect(jpegBytes)
	if err != nil && !errors.Is(err, stego.ErrCorruptPayload) {
		return Report{}, err
	}
	r.QualityEstimate = EstimateQuality(len(jpegBytes), img.Width, img.Height)
	return r, nil
}

// EstimateQuality guesses the JPEG quality from the file size in bytes per
// pixel. It is a coarse heuristic.
func EstimateQuality(fileSize, w, h int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	bpp := float64(fileSize) / float64(w*h)
	switch {
	case bpp > 2:
		return 95
	case bpp > 1:
		return 80
	case bpp > 0.5:
		return 60
	}
	return 40
}
