package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yyyoichi/stego_zero/internal/jpegseg"
	"github.com/yyyoichi/stego_zero/phash"
)

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.LSB.MaxScan < 0 {
		add("lsb.max_scan", "must not be negative, got %d", c.LSB.MaxScan)
	}
	if c.EXIF.Quality < 1 || c.EXIF.Quality > 100 {
		add("exif.quality", "must be within 1 and 100, got %d", c.EXIF.Quality)
	}
	if c.EXIF.MaxCommentBytes <= 8 || c.EXIF.MaxCommentBytes > jpegseg.MaxSegmentData {
		add("exif.max_comment_bytes", "must be within 9 and %d, got %d", jpegseg.MaxSegmentData, c.EXIF.MaxCommentBytes)
	}
	for field, p := range map[string]float64{
		"similarity.identical_threshold": c.Similarity.IdenticalThreshold,
		"similarity.similar_threshold":   c.Similarity.SimilarThreshold,
	} {
		if p < 0 || p > 100 {
			add(field, "must be within 0 and 100, got %g", p)
		}
	}
	if c.Similarity.SimilarThreshold > c.Similarity.IdenticalThreshold {
		add("similarity.similar_threshold", "must not exceed identical_threshold")
	}
	for _, a := range c.Similarity.IndexAlgorithms {
		if !slices.Contains(phash.Algorithms(), phash.Algorithm(a)) {
			add("similarity.index_algorithms", "unknown algorithm %q", a)
		}
	}
	if c.Capacity.RecommendThreshold < 0 {
		add("capacity.recommend_threshold", "must not be negative, got %d", c.Capacity.RecommendThreshold)
	}
	if _, err := phash.ParseDigest(c.Signature.Digest); err != nil {
		add("signature.digest", "%v", err)
	}

	if len(errs) == 0 {
		return nil
	}
	slices.SortStableFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}
