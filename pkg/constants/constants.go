// Package constants provides shared constants used throughout feedsync.
// This includes timeouts, throttle intervals, image limits, file permissions
// and safety thresholds that must agree across packages.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for catalog API requests
	DefaultHTTPTimeout = 30 * time.Second

	// ImageFetchTimeout bounds a single image download
	ImageFetchTimeout = 60 * time.Second

	// FeedFetchTimeout bounds opening and downloading a vendor feed
	FeedFetchTimeout = 5 * time.Minute

	// SyncTimeout is the upper bound for one full sync run
	SyncTimeout = 6 * time.Hour
)

// Throttle intervals applied by the catalog client
const (
	// MutationInterval is the minimum spacing between catalog-mutating calls
	MutationInterval = 1 * time.Second

	// InventoryInterval is the minimum spacing between inventory level calls
	InventoryInterval = 600 * time.Millisecond

	// ReadInterval is the minimum spacing between read-only catalog calls
	ReadInterval = 500 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Image limits enforced before an image is handed to the catalog
const (
	// MaxImageBytes is the largest image payload the catalog accepts as a URL
	MaxImageBytes = 20 * 1024 * 1024

	// MaxImageWidth is the widest image accepted without resampling
	MaxImageWidth = 5000

	// MaxImageHeight is the tallest image accepted without resampling
	MaxImageHeight = 5000

	// ResampleMaxDimension bounds both sides of a resampled image
	ResampleMaxDimension = 4000

	// ResampleJPEGQuality is the JPEG quality used for resampled images
	ResampleJPEGQuality = 85

	// ImageMemoTTL is how long resampled bytes are kept in memory during a run
	ImageMemoTTL = 1 * time.Hour

	// ImageMemoCleanupInterval is how often expired resampled bytes are dropped
	ImageMemoCleanupInterval = 10 * time.Minute
)

// Catalog constants
const (
	// DefaultPageSize is the number of products requested per catalog page
	DefaultPageSize = 250

	// DefaultAPIVersion is the catalog admin API version
	DefaultAPIVersion = "2023-04"

	// MinArchiveHandles is the smallest feed, in distinct handles, for which
	// the archival guard is allowed to retire catalog entries
	MinArchiveHandles = 200
)

// State constants
const (
	// DefaultStateDir is where caches and checkpoints are kept by default
	DefaultStateDir = ".feedsync"

	// StateFileExtension is appended to every state blob on disk
	StateFileExtension = ".yaml"

	// ValidationCacheSuffix names the per-vendor image validation cache
	ValidationCacheSuffix = "-validation"

	// ImportLedgerSuffix names the per-vendor image import ledger
	ImportLedgerSuffix = "-imported"

	// CheckpointSuffix names the per-vendor resume cursor
	CheckpointSuffix = "-checkpoint"
)
