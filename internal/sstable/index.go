package sstable

import "sort"

// Index is the in-memory sparse block index for one segment file: the
// first key written into each block, mapped to that block's starting
// byte offset. Binary search over the sorted key list bounds any
// lookup to one block, per spec §4.3.
type Index struct {
	keys    []string
	offsets []int64
}

// NewIndex returns an empty Index, ready to be built by Write.
func NewIndex() *Index {
	return &Index{}
}

// Add appends a new (key, offset) pair. Callers must add entries in
// strictly ascending key order, the same order the writer encodes
// records in.
func (idx *Index) Add(key string, offset int64) {
	idx.keys = append(idx.keys, key)
	idx.offsets = append(idx.offsets, offset)
}

// Len returns the number of block-boundary entries in the index.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Offset returns the exact offset recorded for key and whether key is
// itself a block-boundary entry in the sparse index.
func (idx *Index) Offset(key string) (int64, bool) {
	i := sort.SearchStrings(idx.keys, key)
	if i < len(idx.keys) && idx.keys[i] == key {
		return idx.offsets[i], true
	}
	return 0, false
}

// Bounds returns the bounding block for key: lowerOffset is the
// starting offset of the block that would contain key were it present,
// and upperKey is the first key of the next block (upperOK is false
// past the last block). lowerOK is false only for an empty index — for
// any non-empty index a lower block always exists, mirroring
// original_source/src/lsmtree.py's _find_block_range_for_key, whose
// "lower is None" branch is likewise unreachable for a populated index.
func (idx *Index) Bounds(key string) (lowerOffset int64, lowerOK bool, upperKey string, upperOK bool) {
	if len(idx.keys) == 0 {
		return 0, false, "", false
	}

	position := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= key })

	lowerIdx := position - 1
	if lowerIdx < 0 {
		lowerIdx = 0
	}
	lowerOffset = idx.offsets[lowerIdx]
	lowerOK = true

	if position < len(idx.keys) {
		upperKey = idx.keys[position]
		upperOK = true
	}
	return lowerOffset, lowerOK, upperKey, upperOK
}

// BoundKeys is Bounds expressed in terms of keys instead of offsets, for
// callers (and tests) that want the block range itself rather than a
// file position.
func (idx *Index) BoundKeys(key string) (lowerKey string, lowerOK bool, upperKey string, upperOK bool) {
	if len(idx.keys) == 0 {
		return "", false, "", false
	}

	position := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= key })

	lowerIdx := position - 1
	if lowerIdx < 0 {
		lowerIdx = 0
	}
	lowerKey = idx.keys[lowerIdx]
	lowerOK = true

	if position < len(idx.keys) {
		upperKey = idx.keys[position]
		upperOK = true
	}
	return lowerKey, lowerOK, upperKey, upperOK
}
