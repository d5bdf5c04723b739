package sstable

import "github.com/emberkv/ember/pkg/value"

// Segment is one immutable on-disk segment together with its in-memory
// sparse index, as the engine's segment list holds it. Newer segments
// (higher ID) supersede older ones for the same key.
type Segment struct {
	ID    uint64
	Path  string
	Index *Index
}

// Find locates key inside this segment.
func (s *Segment) Find(key string) (value.Value, int64, Status, error) {
	return Find(s.Path, s.Index, key)
}

// MarkTombstone flips the tombstone byte of the record at offset,
// identified by key, in this segment's file.
func (s *Segment) MarkTombstone(offset int64, key string) error {
	return MarkTombstone(s.Path, offset, key)
}
