// Package options provides data structures and functions for configuring
// the ember storage engine. It defines the parameters that control
// ember's memtable behavior, block indexing granularity, storage
// location, and background merge cadence.
package options

import (
	"strings"
	"time"
)

// Defines the configuration parameters for an embedded ember engine.
// It provides control over memtable flushing, block indexing, and
// background compaction.
type Options struct {
	// Specifies the base path where segment files are stored.
	//
	// Default: "storage/"
	StorageDir string `json:"storageDir"`

	// Defines the resident size, in bytes, a memtable is allowed to
	// reach before it is swapped out and flushed to a new segment.
	// Smaller values flush more often, trading write latency for more,
	// smaller segments.
	//
	//  - Default: 64MiB
	//  - Minimum: 4KiB
	//  - Maximum: 1GiB
	MemtableMaxBytes uint64 `json:"memtableMaxBytes"`

	// Defines the approximate number of record bytes a single sparse
	// block-index entry spans. Smaller values mean a larger in-memory
	// index and fewer bytes scanned per lookup; larger values mean the
	// opposite.
	//
	//  - Default: 4KiB
	//  - Minimum: 256B
	//  - Maximum: 1MiB
	BlockSizeBytes uint64 `json:"blockSizeBytes"`

	// Defines how often the background compactor runs to merge
	// existing segments into one. More frequent merging means less
	// read amplification but more I/O overhead.
	//
	// Default: 1h
	MergeInterval time.Duration `json:"mergeInterval"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.StorageDir = opts.StorageDir
		o.MemtableMaxBytes = opts.MemtableMaxBytes
		o.BlockSizeBytes = opts.BlockSizeBytes
		o.MergeInterval = opts.MergeInterval
	}
}

// WithStorageDir sets the base directory under which segment files live.
func WithStorageDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.StorageDir = directory
		}
	}
}

// WithMemtableMaxBytes sets the memtable flush threshold, in bytes.
func WithMemtableMaxBytes(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinMemtableMaxBytes && size <= MaxMemtableMaxBytes {
			o.MemtableMaxBytes = size
		}
	}
}

// WithBlockSizeBytes sets the approximate record span per sparse-index entry.
func WithBlockSizeBytes(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinBlockSizeBytes && size <= MaxBlockSizeBytes {
			o.BlockSizeBytes = size
		}
	}
}

// WithMergeInterval sets the period between automatic background
// compaction passes. A non-positive interval disables the background
// compactor; Engine.Compact can still be called directly in that case.
func WithMergeInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		o.MergeInterval = interval
	}
}
