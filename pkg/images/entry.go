// Package images decides whether a feed image URL can be handed to the
// catalog as-is, must be resampled first, or is unusable.
package images

import (
	"time"
)

// Decision is the persisted verdict for an image URL.
type Decision string

// Validation decisions.
const (
	// DecisionValid means the URL can be submitted unchanged.
	DecisionValid Decision = "valid"

	// DecisionResize means the image exceeds a limit and must be resampled
	// on every run; the resampled bytes are never persisted.
	DecisionResize Decision = "resize"

	// DecisionFailed means the image could not be fetched or decoded.
	DecisionFailed Decision = "failed"
)

// Entry is the validation cache record for one URL.
type Entry struct {
	Decision  Decision  `yaml:"decision"`
	Width     int       `yaml:"width,omitempty"`
	Height    int       `yaml:"height,omitempty"`
	Bytes     int64     `yaml:"bytes,omitempty"`
	Format    string    `yaml:"format,omitempty"`
	Reason    string    `yaml:"reason,omitempty"`
	CheckedAt time.Time `yaml:"checked_at"`
}

// Limits are the thresholds above which an image is resampled.
type Limits struct {
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int

	// TargetMax bounds both sides of a resampled image.
	TargetMax int

	// Quality is the JPEG quality of resampled output.
	Quality int
}

// Exceeds reports whether an image of the given size breaks any limit.
func (l Limits) Exceeds(size int64, width, height int) bool {
	return size > l.MaxBytes || width > l.MaxWidth || height > l.MaxHeight
}
