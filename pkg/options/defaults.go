package options

import "time"

const (
	// DefaultStorageDir specifies the default base directory where ember
	// stores its segment files.
	DefaultStorageDir = "storage/"

	// DefaultMemtableMaxBytes is the resident-size threshold at which the
	// active memtable is swapped out and flushed to a new segment.
	DefaultMemtableMaxBytes uint64 = 64 * 1024 * 1024

	// DefaultBlockSizeBytes is the approximate span of records indexed by
	// a single sparse-index entry.
	DefaultBlockSizeBytes uint64 = 4 * 1024

	// DefaultMergeInterval is the period between automatic background
	// compaction passes.
	DefaultMergeInterval = time.Hour

	// MinMemtableMaxBytes is the smallest memtable threshold WithMemtableMaxBytes accepts.
	MinMemtableMaxBytes uint64 = 4 * 1024

	// MaxMemtableMaxBytes is the largest memtable threshold WithMemtableMaxBytes accepts.
	MaxMemtableMaxBytes uint64 = 1 * 1024 * 1024 * 1024

	// MinBlockSizeBytes is the smallest block span WithBlockSizeBytes accepts.
	MinBlockSizeBytes uint64 = 256

	// MaxBlockSizeBytes is the largest block span WithBlockSizeBytes accepts.
	MaxBlockSizeBytes uint64 = 1 * 1024 * 1024
)

// Holds the default configuration settings for an embedded engine.
var defaultOptions = Options{
	StorageDir:       DefaultStorageDir,
	MemtableMaxBytes: DefaultMemtableMaxBytes,
	BlockSizeBytes:   DefaultBlockSizeBytes,
	MergeInterval:    DefaultMergeInterval,
}

// NewDefaultOptions returns a copy of the engine's default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
