// Package config loads the policy knobs of the embedders, scorers and
// analyzers from TOML, YAML or JSON files.
package config

import (
	"github.com/yyyoichi/stego_zero/capacity"
	"github.com/yyyoichi/stego_zero/exifmeta"
	"github.com/yyyoichi/stego_zero/lsb"
	"github.com/yyyoichi/stego_zero/phash"
	"github.com/yyyoichi/stego_zero/signature"
	"github.com/yyyoichi/stego_zero/similarity"
)

type Config struct {
	LSB        LSBConfig        `toml:"lsb" json:"lsb" yaml:"lsb"`
	EXIF       EXIFConfig       `toml:"exif" json:"exif" yaml:"exif"`
	Similarity SimilarityConfig `toml:"similarity" json:"similarity" yaml:"similarity"`
	Capacity   CapacityConfig   `toml:"capacity" json:"capacity" yaml:"capacity"`
	Signature  SignatureConfig  `toml:"signature" json:"signature" yaml:"signature"`
}

type LSBConfig struct {
	// MaxScan bounds extraction to the first samples. Zero scans the whole image.
	MaxScan int `toml:"max_scan" json:"max_scan" yaml:"max_scan"`
}

type EXIFConfig struct {
	Quality         int `toml:"quality" json:"quality" yaml:"quality"`
	MaxCommentBytes int `toml:"max_comment_bytes" json:"max_comment_bytes" yaml:"max_comment_bytes"`
}

type SimilarityConfig struct {
	IdenticalThreshold float64  `toml:"identical_threshold" json:"identical_threshold" yaml:"identical_threshold"`
	SimilarThreshold   float64  `toml:"similar_threshold" json:"similar_threshold" yaml:"similar_threshold"`
	IndexAlgorithms    []string `toml:"index_algorithms" json:"index_algorithms" yaml:"index_algorithms"`
}

type CapacityConfig struct {
	RecommendThreshold int `toml:"recommend_threshold" json:"recommend_threshold" yaml:"recommend_threshold"`
}

type SignatureConfig struct {
	Digest string `toml:"digest" json:"digest" yaml:"digest"`
}

// Default returns the built-in policy.
func Default() *Config {
	return &Config{
		EXIF: EXIFConfig{
			Quality:         exifmeta.DefaultQuality,
			MaxCommentBytes: exifmeta.MaxCommentBytes,
		},
		Similarity: SimilarityConfig{
			IdenticalThreshold: similarity.DefaultIdenticalThreshold,
			SimilarThreshold:   similarity.DefaultSimilarThreshold,
			IndexAlgorithms: []string{
				string(phash.AlgoPHash),
				string(phash.AlgoDHash),
				string(phash.AlgoAHash),
			},
		},
		Capacity: CapacityConfig{
			RecommendThreshold: capacity.DefaultRecommendThreshold,
		},
		Signature: SignatureConfig{
			Digest: phash.DigestMD5.String(),
		},
	}
}

func (c *Config) LSBOptions() []lsb.Option {
	if c.LSB.MaxScan == 0 {
		return nil
	}
	return []lsb.Option{lsb.WithMaxScan(c.LSB.MaxScan)}
}

func (c *Config) EXIFOptions() []exifmeta.Option {
	return []exifmeta.Option{
		exifmeta.WithQuality(c.EXIF.Quality),
		exifmeta.WithMaxCommentBytes(c.EXIF.MaxCommentBytes),
	}
}

func (c *Config) ScorerOptions() []similarity.Option {
	return []similarity.Option{
		similarity.WithIdenticalThreshold(c.Similarity.IdenticalThreshold),
		similarity.WithSimilarThreshold(c.Similarity.SimilarThreshold),
	}
}

// IndexOptions returns nil when no algorithm is configured, leaving the
// index default in place.
func (c *Config) IndexOptions() []similarity.IndexOption {
	if len(c.Similarity.IndexAlgorithms) == 0 {
		return nil
	}
	algos := make([]phash.Algorithm, len(c.Similarity.IndexAlgorithms))
	for i, a := range c.Similarity.IndexAlgorithms {
		algos[i] = phash.Algorithm(a)
	}
	return []similarity.IndexOption{similarity.WithAlgorithms(algos...)}
}

// CapacityOptions reports the configured comment ceiling as EXIF capacity.
func (c *Config) CapacityOptions() []capacity.Option {
	return []capacity.Option{
		capacity.WithEXIFCapacity(c.EXIF.MaxCommentBytes),
		capacity.WithRecommendThreshold(c.Capacity.RecommendThreshold),
	}
}

// SignatureOptions fails only on a digest name Validate would reject.
func (c *Config) SignatureOptions() ([]signature.Option, error) {
	d, err := phash.ParseDigest(c.Signature.Digest)
	if err != nil {
		return nil, err
	}
	return []signature.Option{
		signature.WithDigest(d),
		signature.WithEmbedOptions(c.EXIFOptions()...),
	}, nil
}
