package sstable

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/emberkv/ember/internal/record"
	"github.com/emberkv/ember/pkg/emberrors"
	"github.com/emberkv/ember/pkg/value"
)

// Entry is one ordered key's state as the writer consumes it, whether
// sourced from a memtable snapshot or a compaction merge.
type Entry struct {
	Key       string
	Value     value.Value
	Tombstone bool
}

// Write serializes entries (already in ascending key order) to a new
// segment file at path, producing the sparse block index alongside it.
// Tombstoned entries are skipped — spec §9 note 3 flags this as a
// preserved source behavior rather than a fix: a tombstone that exists
// only in a memtable being flushed is not written to disk, so its
// shadowing effect over older segments is lost until compaction runs.
func Write(path string, blockSizeBytes uint64, entries []Entry) (*Index, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, emberrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	idx := NewIndex()

	var (
		offset           int64
		currentBlockSize uint64
		isFirstBlock     = true
	)

	for _, e := range entries {
		if e.Tombstone {
			continue
		}

		rec := record.Record{Key: e.Key, Value: e.Value}
		size := uint64(record.Size(rec))

		switch {
		case isFirstBlock:
			idx.Add(e.Key, offset)
			isFirstBlock = false
		case currentBlockSize+size > blockSizeBytes:
			idx.Add(e.Key, offset)
			currentBlockSize = 0
		}

		if err := record.Encode(w, rec); err != nil {
			return nil, err
		}
		currentBlockSize += size
		offset += int64(size)
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}
	return idx, nil
}
