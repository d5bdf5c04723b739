// Package seginfo names, parses, and discovers the flat on-disk segment
// files an ember engine owns.
//
// Filename formats:
//
//	segment_<id>           an ordinary flushed-memtable segment
//	merged_segment_<id>    the single segment a compaction pass produces
//
// There is no prefix, no timestamp, and no file extension — ids alone
// order segments from oldest to newest, the same way
// original_source/src/lsmtree.py names its files "storage/segment_{id}"
// and "storage/merged_segment_{id}".
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/emberkv/ember/pkg/filesys"
)

const (
	segmentPrefix       = "segment_"
	mergedSegmentPrefix = "merged_segment_"
)

// SegmentName returns the filename for an ordinary segment with the given id.
func SegmentName(id uint64) string {
	return segmentPrefix + strconv.FormatUint(id, 10)
}

// MergedSegmentName returns the filename for the output of a compaction
// pass identified by mergeID.
func MergedSegmentName(mergeID uint64) string {
	return mergedSegmentPrefix + strconv.FormatUint(mergeID, 10)
}

// Info describes one segment file discovered on disk.
type Info struct {
	ID     uint64
	Merged bool
	Path   string
}

// ParseName extracts the id and merged-ness from a bare segment filename
// (not a full path). It returns ok=false for anything that doesn't match
// either naming scheme, so callers can silently skip unrelated files
// sharing the storage directory.
func ParseName(filename string) (id uint64, merged bool, ok bool) {
	switch {
	case strings.HasPrefix(filename, mergedSegmentPrefix):
		idStr := strings.TrimPrefix(filename, mergedSegmentPrefix)
		n, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return 0, false, false
		}
		return n, true, true
	case strings.HasPrefix(filename, segmentPrefix):
		idStr := strings.TrimPrefix(filename, segmentPrefix)
		n, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return 0, false, false
		}
		return n, false, true
	default:
		return 0, false, false
	}
}

// Discover scans storageDir for segment files, resolving spec's open
// question on restart recovery: an engine started against a non-empty
// storage directory must pick up every existing segment rather than
// starting blind. Results are sorted oldest-to-newest by id, the order
// compaction and lookup both want.
func Discover(storageDir string) ([]Info, error) {
	entries, err := filesys.ReadDir(filepath.Join(storageDir, "*"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("seginfo: reading storage directory %s: %w", storageDir, err)
	}

	infos := make([]Info, 0, len(entries))
	for _, path := range entries {
		_, name := filepath.Split(path)
		id, merged, ok := ParseName(name)
		if !ok {
			continue
		}
		infos = append(infos, Info{ID: id, Merged: merged, Path: path})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}
