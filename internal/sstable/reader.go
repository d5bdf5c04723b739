package sstable

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/emberkv/ember/internal/record"
	"github.com/emberkv/ember/pkg/emberrors"
	"github.com/emberkv/ember/pkg/value"
)

// Status reports the outcome of a per-segment Find: whether the key is
// genuinely absent, tombstoned in this segment, or found with a value.
// The engine facade needs this distinction to implement spec §4.5's
// tiered get: a tombstoned hit in a newer segment must shadow older
// segments and stop the scan, which an ordinary found/not-found boolean
// can't express.
type Status int

const (
	// StatusAbsent means this segment has no record at all for the key.
	StatusAbsent Status = iota
	// StatusTombstoned means the key's most recent record in this
	// segment is a tombstone.
	StatusTombstoned
	// StatusFound means the key's most recent record in this segment is
	// a live value.
	StatusFound
)

// Find locates key inside the segment file at path, guided by idx, per
// spec §4.3.
func Find(path string, idx *Index, key string) (v value.Value, offset int64, status Status, err error) {
	if off, ok := idx.Offset(key); ok {
		rec, derr := readRecordAt(path, off)
		if derr != nil {
			return value.Value{}, 0, StatusAbsent, derr
		}
		if rec.Tombstone {
			return value.Value{}, off, StatusTombstoned, nil
		}
		return rec.Value, off, StatusFound, nil
	}

	lowerOffset, lowerOK, upperKey, upperOK := idx.Bounds(key)
	if !lowerOK {
		return value.Value{}, 0, StatusAbsent, nil
	}

	f, ferr := os.Open(path)
	if ferr != nil {
		return value.Value{}, 0, StatusAbsent, emberrors.ClassifyFileOpenError(ferr, path, filepath.Base(path))
	}
	defer f.Close()

	if _, serr := f.Seek(lowerOffset, io.SeekStart); serr != nil {
		return value.Value{}, 0, StatusAbsent, serr
	}
	br := bufio.NewReader(f)

	recordOffset := lowerOffset
	for {
		rec, derr := record.Decode(br)
		if derr == io.EOF {
			return value.Value{}, 0, StatusAbsent, nil
		}
		if derr != nil {
			return value.Value{}, 0, StatusAbsent, derr
		}

		if rec.Key == key {
			if rec.Tombstone {
				return value.Value{}, recordOffset, StatusTombstoned, nil
			}
			return rec.Value, recordOffset, StatusFound, nil
		}
		if upperOK && rec.Key > upperKey {
			return value.Value{}, 0, StatusAbsent, nil
		}
		recordOffset += int64(record.Size(rec))
	}
}

// MarkTombstone flips the tombstone byte of the record starting at
// recordOffset in the segment at path, in place — the one-byte
// relaxation of segment immutability spec §4.5 and §9 note 2 describe.
// key must be the record's own key, so the fixed key_len(4)+key prefix
// can be skipped to reach the tombstone byte without a full decode.
func MarkTombstone(path string, recordOffset int64, key string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		return emberrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	tombOffset := recordOffset + 4 + int64(len(key))
	_, err = f.WriteAt([]byte{0x01}, tombOffset)
	return err
}

// ReadAll decodes every record in the segment at path, in on-disk
// (ascending key) order, for the compactor's merge pass.
func ReadAll(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, emberrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var recs []record.Record
	for {
		rec, err := record.Decode(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func readRecordAt(path string, offset int64) (record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return record.Record{}, emberrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return record.Record{}, err
	}
	return record.Decode(f)
}
