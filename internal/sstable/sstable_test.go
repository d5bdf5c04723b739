package sstable

import (
	"path/filepath"
	"testing"

	"github.com/emberkv/ember/pkg/value"
)

func TestIndexBoundKeys(t *testing.T) {
	idx := NewIndex()
	idx.Add("a", 0)
	idx.Add("c", 3)
	idx.Add("d", 5)

	lower, lowerOK, upper, upperOK := idx.BoundKeys("b")
	if !lowerOK || lower != "a" || !upperOK || upper != "c" {
		t.Fatalf("BoundKeys(b) = (%q,%v,%q,%v), want (a,true,c,true)", lower, lowerOK, upper, upperOK)
	}

	lower, lowerOK, upper, upperOK = idx.BoundKeys("z")
	if !lowerOK || lower != "d" || upperOK {
		t.Fatalf("BoundKeys(z) = (%q,%v,%q,%v), want (d,true,_,false)", lower, lowerOK, upper, upperOK)
	}
}

func TestWriteAndFindMixedTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment_1")

	entries := []Entry{
		{Key: "a", Value: value.String("1")},
		{Key: "b", Value: value.Int32(2)},
		{Key: "c", Value: value.Float64(3.2)},
	}

	idx, err := Write(path, 4096, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	cases := []struct {
		key    string
		want   value.Value
		status Status
	}{
		{"a", value.String("1"), StatusFound},
		{"b", value.Int32(2), StatusFound},
		{"c", value.Float64(3.2), StatusFound},
		{"z", value.Value{}, StatusAbsent},
	}
	for _, tc := range cases {
		v, _, status, err := Find(path, idx, tc.key)
		if err != nil {
			t.Fatalf("Find(%q): %v", tc.key, err)
		}
		if status != tc.status {
			t.Fatalf("Find(%q) status = %v, want %v", tc.key, status, tc.status)
		}
		if status == StatusFound && !v.Equal(tc.want) {
			t.Fatalf("Find(%q) = %#v, want %#v", tc.key, v, tc.want)
		}
	}
}

func TestWriteSkipsTombstones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment_1")

	entries := []Entry{
		{Key: "a", Value: value.Int32(1)},
		{Key: "b", Tombstone: true},
	}
	idx, err := Write(path, 4096, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, _, status, _ := Find(path, idx, "b"); status != StatusAbsent {
		t.Fatalf("Find(b) status = %v, want StatusAbsent (tombstoned entries are not written)", status)
	}
}

func TestMarkTombstone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment_1")

	idx, err := Write(path, 4096, []Entry{{Key: "a", Value: value.Int32(1)}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	_, offset, status, err := Find(path, idx, "a")
	if err != nil || status != StatusFound {
		t.Fatalf("Find(a) = (status=%v, err=%v), want StatusFound", status, err)
	}

	if err := MarkTombstone(path, offset, "a"); err != nil {
		t.Fatalf("MarkTombstone: %v", err)
	}

	if _, _, status, _ := Find(path, idx, "a"); status != StatusTombstoned {
		t.Fatalf("Find(a) after MarkTombstone status = %v, want StatusTombstoned", status)
	}
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment_1")

	entries := []Entry{
		{Key: "a", Value: value.Int32(1)},
		{Key: "b", Value: value.Int32(2)},
	}
	if _, err := Write(path, 4096, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}

	recs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 2 || recs[0].Key != "a" || recs[1].Key != "b" {
		t.Fatalf("ReadAll = %+v, want a then b", recs)
	}
}
