// Package record implements the on-disk wire layout of a single LSM
// record: a key, a tombstone bit, and a typed value. Records are written
// back to back with no framing beyond their own fields — the segment
// reader detects end-of-segment by end-of-file, not by a record count,
// the same way original_source/src/lsmtree.py's _is_EOF check does.
package record

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/emberkv/ember/pkg/emberrors"
	"github.com/emberkv/ember/pkg/value"
)

// Type tags for the on-disk type byte.
const (
	tagInt    byte = 'i'
	tagFloat  byte = 'd'
	tagString byte = 's'
)

// ErrCorrupt is returned (wrapped in an emberrors.EngineError) when a
// record's type byte doesn't match any known tag or a record is cut
// short after its key length.
var ErrCorrupt = errors.New("record: corrupt record")

// Record is one key/value/tombstone entry as it appears on disk.
type Record struct {
	Key       string
	Tombstone bool
	Value     value.Value
}

// Size returns the exact number of bytes Encode will write for rec,
// without performing any I/O. The segment writer uses this to decide
// block boundaries before committing a record to the file buffer.
func Size(rec Record) int {
	// key_len(4) + key + tomb(1) + type(1)
	n := 4 + len(rec.Key) + 1 + 1
	switch rec.Value.Kind {
	case value.KindInt:
		n += 4
	case value.KindFloat:
		n += 8
	case value.KindString:
		n += 4 + len(rec.Value.Str)
	}
	return n
}

// Encode writes rec to w using the layout fixed by spec §4.1: big-endian,
// no padding.
func Encode(w io.Writer, rec Record) error {
	keyBytes := []byte(rec.Key)
	if err := binary.Write(w, binary.BigEndian, uint32(len(keyBytes))); err != nil {
		return err
	}
	if _, err := w.Write(keyBytes); err != nil {
		return err
	}

	tomb := byte(0x00)
	if rec.Tombstone {
		tomb = 0x01
	}
	if _, err := w.Write([]byte{tomb}); err != nil {
		return err
	}

	switch rec.Value.Kind {
	case value.KindInt:
		if _, err := w.Write([]byte{tagInt}); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, rec.Value.Int)
	case value.KindFloat:
		if _, err := w.Write([]byte{tagFloat}); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, rec.Value.Float)
	case value.KindString:
		if _, err := w.Write([]byte{tagString}); err != nil {
			return err
		}
		valBytes := []byte(rec.Value.Str)
		if err := binary.Write(w, binary.BigEndian, uint32(len(valBytes))); err != nil {
			return err
		}
		_, err := w.Write(valBytes)
		return err
	default:
		return emberrors.NewUnsupportedTypeError(rec.Key, 0)
	}
}

// Decode reads exactly one record from r, in the field order spec §4.1
// fixes. Callers detect end-of-segment by getting io.EOF back from the
// very first read of a record (the key length); any other read returning
// io.EOF or io.ErrUnexpectedEOF mid-record is corruption, not end-of-file.
func Decode(r io.Reader) (Record, error) {
	var rec Record

	var keyLen uint32
	if err := binary.Read(r, binary.BigEndian, &keyLen); err != nil {
		return rec, err // io.EOF here means "no more records", propagated as-is.
	}

	keyBytes := make([]byte, keyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		return rec, corrupt(err)
	}
	rec.Key = string(keyBytes)

	var tombByte [1]byte
	if _, err := io.ReadFull(r, tombByte[:]); err != nil {
		return rec, corrupt(err)
	}
	rec.Tombstone = tombByte[0] == 0x01

	var typeByte [1]byte
	if _, err := io.ReadFull(r, typeByte[:]); err != nil {
		return rec, corrupt(err)
	}

	switch typeByte[0] {
	case tagInt:
		var v int32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return rec, corrupt(err)
		}
		rec.Value = value.Int32(v)
	case tagFloat:
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return rec, corrupt(err)
		}
		rec.Value = value.Float64(v)
	case tagString:
		var valLen uint32
		if err := binary.Read(r, binary.BigEndian, &valLen); err != nil {
			return rec, corrupt(err)
		}
		valBytes := make([]byte, valLen)
		if _, err := io.ReadFull(r, valBytes); err != nil {
			return rec, corrupt(err)
		}
		rec.Value = value.String(string(valBytes))
	default:
		return rec, emberrors.NewEngineError(ErrCorrupt, emberrors.ErrorCodeCorrupt, "unknown record type tag").
			WithKey(rec.Key).
			WithDetail("typeTag", typeByte[0])
	}

	return rec, nil
}

func corrupt(cause error) error {
	return emberrors.NewEngineError(ErrCorrupt, emberrors.ErrorCodeCorrupt, "truncated or malformed record").
		WithDetail("cause", cause.Error())
}
