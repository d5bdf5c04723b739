package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/emberkv/ember/pkg/options"
	"github.com/emberkv/ember/pkg/value"
)

func setupEngine(t *testing.T, opts ...options.OptionFunc) *Engine {
	t.Helper()

	dir := t.TempDir()
	o := &options.Options{}
	options.WithDefaultOptions()(o)
	options.WithStorageDir(filepath.Join(dir, "storage"))(o)
	for _, opt := range opts {
		opt(o)
	}

	e, err := New(context.Background(), Config{Options: o})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// S1
func TestGetPutBasic(t *testing.T) {
	e := setupEngine(t)

	if err := e.Put("test_key", value.String("test_value")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, found, err := e.Get("test_key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || !v.Equal(value.String("test_value")) {
		t.Fatalf("Get(test_key) = (%#v, found=%v), want test_value", v, found)
	}

	_, found, err = e.Get("non_existent_key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatalf("Get(non_existent_key) found = true, want false")
	}
}

// S2, at a scale that exercises the same flush-threshold codepath without
// allocating tens of megabytes per test run.
func TestFlushOnSizeThreshold(t *testing.T) {
	e := setupEngine(t, options.WithMemtableMaxBytes(options.MinMemtableMaxBytes))

	big := make([]byte, options.MinMemtableMaxBytes)
	for i := range big {
		big[i] = 'x'
	}

	if err := e.Put("k1", value.String(string(big))); err != nil {
		t.Fatalf("Put k1: %v", err)
	}
	if err := e.Put("k2", value.String("y")); err != nil {
		t.Fatalf("Put k2: %v", err)
	}

	v, found, err := e.Get("k1")
	if err != nil {
		t.Fatalf("Get k1: %v", err)
	}
	if !found || v.Str != string(big) {
		t.Fatalf("Get(k1) found=%v, want the oversized value preserved across the flush", found)
	}

	e.mu.RLock()
	_, stillLive := func() (value.Value, bool) {
		v, _, found := e.live.Get("k1")
		return v, found
	}()
	segmentCount := len(e.segments)
	e.mu.RUnlock()

	if stillLive {
		t.Fatalf("k1 still present in the live memtable after the flush it triggered")
	}
	if segmentCount == 0 {
		t.Fatalf("expected at least one segment after a threshold-triggered flush")
	}
}

// S4
func TestMixedTypeSegment(t *testing.T) {
	e := setupEngine(t)

	if err := e.Put("a", value.String("1")); err != nil {
		t.Fatalf("Put a: %v", err)
	}
	if err := e.Put("b", value.Int32(2)); err != nil {
		t.Fatalf("Put b: %v", err)
	}
	if err := e.Put("c", value.Float64(3.2)); err != nil {
		t.Fatalf("Put c: %v", err)
	}

	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}

	cases := []struct {
		key  string
		want value.Value
		ok   bool
	}{
		{"a", value.String("1"), true},
		{"b", value.Int32(2), true},
		{"c", value.Float64(3.2), true},
		{"z", value.Value{}, false},
	}
	for _, tc := range cases {
		v, found, err := e.Get(tc.key)
		if err != nil {
			t.Fatalf("Get(%q): %v", tc.key, err)
		}
		if found != tc.ok {
			t.Fatalf("Get(%q) found = %v, want %v", tc.key, found, tc.ok)
		}
		if found && !v.Equal(tc.want) {
			t.Fatalf("Get(%q) = %#v, want %#v", tc.key, v, tc.want)
		}
	}
}

// S6: updates to the same key across memtable, flush, and compaction tiers.
func TestUpdateAcrossTiers(t *testing.T) {
	e := setupEngine(t)
	put := func(v value.Value) {
		t.Helper()
		if err := e.Put("a", v); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	get := func(want value.Value) {
		t.Helper()
		v, found, err := e.Get("a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !found || !v.Equal(want) {
			t.Fatalf("Get(a) = (%#v, found=%v), want %#v", v, found, want)
		}
	}

	put(value.String("1"))
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}

	put(value.Int32(2))
	get(value.Int32(2))
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}
	get(value.Int32(2))

	if err := e.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	get(value.Int32(2))

	put(value.Float64(3.0))
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}
	get(value.Float64(3.0))

	if err := e.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	get(value.Float64(3.0))
}

// S7
func TestDeleteSemantics(t *testing.T) {
	e := setupEngine(t)

	mustPut := func(key string, v value.Value) {
		t.Helper()
		if err := e.Put(key, v); err != nil {
			t.Fatalf("Put(%q): %v", key, err)
		}
	}
	mustAbsent := func(key string) {
		t.Helper()
		if _, found, err := e.Get(key); err != nil || found {
			t.Fatalf("Get(%q) = (found=%v, err=%v), want absent", key, found, err)
		}
	}

	mustPut("a", value.String("1"))
	mustPut("b", value.Int32(2))
	mustPut("c", value.Float64(3.2))

	if err := e.Delete("b"); err != nil {
		t.Fatalf("Delete(b): %v", err)
	}
	mustAbsent("b")

	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}
	mustAbsent("b")

	if err := e.Delete("a"); err != nil {
		t.Fatalf("Delete(a): %v", err)
	}
	mustAbsent("a")

	v, found, err := e.Get("c")
	if err != nil || !found || !v.Equal(value.Float64(3.2)) {
		t.Fatalf("Get(c) = (%#v, found=%v, err=%v), want 3.2", v, found, err)
	}
}

func TestDeleteAbsentKeyFails(t *testing.T) {
	e := setupEngine(t)

	err := e.Delete("missing")
	if err == nil {
		t.Fatalf("Delete(missing) = nil, want a not-found error")
	}
}

// Cross-segment tombstone shadowing: a delete of a key that exists in two
// flushed segments must tombstone the newest occurrence, and Get must not
// resurrect the older one.
func TestDeleteShadowsOlderSegment(t *testing.T) {
	e := setupEngine(t)

	if err := e.Put("a", value.Int32(1)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}
	if err := e.Put("a", value.Int32(2)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}

	if err := e.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, found, err := e.Get("a"); err != nil || found {
		t.Fatalf("Get(a) after deleting the newest occurrence = (found=%v, err=%v), want absent", found, err)
	}
}

// S5-style compaction: repeated overwrites across many flushed segments
// collapse to exactly one segment after Compact.
func TestCompactionCollapsesDuplicateKeys(t *testing.T) {
	e := setupEngine(t)

	for i := 0; i < 10; i++ {
		key := "k"
		if i%2 == 1 {
			key = "k2"
		}
		if err := e.Put(key, value.String("value")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := e.forceFlush(); err != nil {
			t.Fatalf("forceFlush: %v", err)
		}
	}

	e.mu.RLock()
	segmentsBefore := len(e.segments)
	e.mu.RUnlock()
	if segmentsBefore != 10 {
		t.Fatalf("segments before compaction = %d, want 10", segmentsBefore)
	}

	if err := e.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	e.mu.RLock()
	segmentsAfter := len(e.segments)
	e.mu.RUnlock()
	if segmentsAfter != 1 {
		t.Fatalf("segments after compaction = %d, want 1", segmentsAfter)
	}

	v, found, err := e.Get("k")
	if err != nil || !found || v.Str != "value" {
		t.Fatalf("Get(k) after compaction = (%#v, found=%v, err=%v), want value", v, found, err)
	}
}

func TestCompactionNoopBelowTwoSegments(t *testing.T) {
	e := setupEngine(t)

	if err := e.Put("a", value.Int32(1)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := e.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}

	if err := e.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	e.mu.RLock()
	n := len(e.segments)
	e.mu.RUnlock()
	if n != 1 {
		t.Fatalf("segments after no-op compaction = %d, want 1 (unchanged)", n)
	}
}

// Restart recovery: a fresh Engine pointed at the same storage directory
// must discover existing segments (spec §9 open question 1).
func TestRestartDiscoversSegments(t *testing.T) {
	dir := t.TempDir()
	storageDir := filepath.Join(dir, "storage")

	o := &options.Options{}
	options.WithDefaultOptions()(o)
	options.WithStorageDir(storageDir)(o)

	e1, err := New(context.Background(), Config{Options: o})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e1.Put("a", value.Int32(1)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := e1.forceFlush(); err != nil {
		t.Fatalf("forceFlush: %v", err)
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2, err := New(context.Background(), Config{Options: o})
	if err != nil {
		t.Fatalf("New (restart): %v", err)
	}
	defer e2.Close()

	v, found, err := e2.Get("a")
	if err != nil || !found || v.Int != 1 {
		t.Fatalf("Get(a) after restart = (%#v, found=%v, err=%v), want 1", v, found, err)
	}

	if err := e2.Put("b", value.Int32(2)); err != nil {
		t.Fatalf("Put after restart: %v", err)
	}
	if err := e2.forceFlush(); err != nil {
		t.Fatalf("forceFlush after restart: %v", err)
	}

	e2.mu.RLock()
	ids := make([]uint64, len(e2.segments))
	for i, seg := range e2.segments {
		ids[i] = seg.ID
	}
	e2.mu.RUnlock()
	if len(ids) != 2 || ids[1] <= ids[0] {
		t.Fatalf("segment ids after restart+flush = %v, want two strictly increasing ids", ids)
	}
}

// forceFlush rotates whatever is currently live, regardless of size,
// for tests that need a deterministic flush point.
func (e *Engine) forceFlush() error {
	e.mu.RLock()
	live := e.live
	e.mu.RUnlock()
	return e.tryFlush(live)
}
