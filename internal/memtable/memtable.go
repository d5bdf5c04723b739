// Package memtable implements the engine's in-memory, tombstone-aware
// write buffer: an ordered key→(value, tombstone) mapping with point
// insertion, point lookup, ordered snapshotting, and a monotonic
// resident-size estimate the engine compares against its flush
// threshold.
package memtable

import (
	"sort"
	"sync"

	"github.com/emberkv/ember/pkg/value"
)

// perEntryOverhead approximates the bookkeeping cost (map bucket, key
// header, tombstone flag) carried by every live entry, independent of
// its content. There is no Go equivalent of Python's pympler.asizeof in
// the example corpus; this estimator only needs to be monotonic in
// content, which a fixed per-entry constant plus content size satisfies.
const perEntryOverhead = 48

type entry struct {
	value     value.Value
	tombstone bool
}

// Entry is one key's current state as returned by Snapshot, in key order.
type Entry struct {
	Key       string
	Value     value.Value
	Tombstone bool
}

// Memtable is a single generation of the live write buffer. An engine
// retires a Memtable by replacing its live pointer with a fresh one and
// flushing the retired instance; Memtable itself has no notion of
// rotation.
type Memtable struct {
	mu      sync.RWMutex
	entries map[string]entry
	size    uint64
}

// New returns an empty Memtable.
func New() *Memtable {
	return &Memtable{entries: make(map[string]entry)}
}

func entrySize(key string, v value.Value) uint64 {
	return uint64(len(key)+v.ByteSize()) + perEntryOverhead
}

// Put inserts or overwrites key with v, clearing any tombstone
// previously recorded for it.
func (m *Memtable) Put(key string, v value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.size -= entrySize(key, old.value)
	}
	m.entries[key] = entry{value: v}
	m.size += entrySize(key, v)
}

// Delete marks key as tombstoned. The key remains present in the
// memtable (with no value payload) so a later Get on it returns
// "tombstoned", not "absent from this tier" — the caller must still
// consult older tiers only when the key is entirely absent here.
func (m *Memtable) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.size -= entrySize(key, old.value)
	}
	m.entries[key] = entry{tombstone: true}
	m.size += uint64(len(key)) + perEntryOverhead
}

// Get reports whether key has an entry in this memtable generation, and
// if so whether it is tombstoned. A caller sees three outcomes: not
// found here (found=false, consult the next tier), tombstoned
// (found=true, tombstone=true, key is absent), or a live value
// (found=true, tombstone=false).
func (m *Memtable) Get(key string) (v value.Value, tombstone bool, found bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return value.Value{}, false, false
	}
	return e.value, e.tombstone, true
}

// SizeBytes returns the current resident-size estimate.
func (m *Memtable) SizeBytes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Len returns the number of entries, live and tombstoned, in this
// memtable generation.
func (m *Memtable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot returns every entry in ascending key order, for the segment
// writer to consume during a flush.
func (m *Memtable) Snapshot() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(m.entries))
	for k, e := range m.entries {
		out = append(out, Entry{Key: k, Value: e.value, Tombstone: e.tombstone})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
