// Package engine implements the storage engine facade: get/put/delete
// against a tiered live memtable, in-flight flushing memtable, and an
// ordered list of immutable on-disk segments, plus the flush and
// compaction operations that move data between tiers.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/emberkv/ember/internal/memtable"
	"github.com/emberkv/ember/internal/record"
	"github.com/emberkv/ember/internal/sstable"
	"github.com/emberkv/ember/pkg/emberrors"
	"github.com/emberkv/ember/pkg/options"
	"github.com/emberkv/ember/pkg/seginfo"
	"github.com/emberkv/ember/pkg/value"
)

// Config bundles everything New needs to bring up an Engine, the way
// the teacher's original engine/storage configs paired Options with a
// Logger.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Engine is the tiered storage engine facade. Every exported method is
// safe for concurrent use.
//
// The concurrency model trades the lock-free read path spec §5
// describes as optional ("may proceed without global locking if ...")
// for a single sync.RWMutex. Gets and memtable inserts run concurrently
// with each other (RLock), Get holding it for its whole lookup including
// segment file reads. A delete's in-place tombstone write and a
// compaction pass hold Lock for their full duration, file I/O included.
// A flush holds Lock only to rotate the live memtable into the
// being-flushed slot and, after writing the segment file without the
// lock, to publish the segment and clear the slot; Gets consult the
// being-flushed slot in between. This discharges both §5 atomicity
// requirements (a flush or compaction is indivisible from any reader's
// point of view) without needing reader bookkeeping around file
// deletion — appropriate given this engine's read path is a blocking
// in-process file read, not a hot loop worth lock-free tuning.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger

	mu       sync.RWMutex
	live     *memtable.Memtable
	flushing *memtable.Memtable
	segments []*sstable.Segment // ascending ID order: oldest first, newest last

	// nextID is the single monotonic counter shared by flush-produced
	// segments and merge-produced segments alike. Spec §3 requires that
	// "segment identifiers strictly increase; higher id ⇒ more recent
	// writes" — a property that only holds across restarts if every
	// segment, regardless of which operation produced it, draws from one
	// sequence rather than two independent ones keyed by filename scheme.
	nextID uint64

	closed atomic.Bool
}

// New brings up an Engine rooted at config.Options.StorageDir, discovering
// any segment files left by a prior run (spec §9 open question 1: restart
// recovery is undefined in the source, so this module specifies and
// implements it as a directory scan).
func New(ctx context.Context, config Config) (*Engine, error) {
	if config.Options == nil {
		return nil, emberrors.NewConfigurationValidationError("Options", "must not be nil")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := os.MkdirAll(config.Options.StorageDir, 0755); err != nil {
		return nil, emberrors.ClassifyDirectoryCreationError(err, config.Options.StorageDir)
	}

	discovered, err := seginfo.Discover(config.Options.StorageDir)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options: config.Options,
		log:     log,
		live:    memtable.New(),
	}

	var maxID uint64
	for _, info := range discovered {
		seg, err := loadSegment(config.Options, info)
		if err != nil {
			return nil, err
		}
		e.segments = append(e.segments, seg)
		if info.ID > maxID {
			maxID = info.ID
		}
	}
	e.nextID = maxID + 1

	log.Infow("engine opened", "storageDir", config.Options.StorageDir, "segments", len(e.segments))
	return e, nil
}

// loadSegment rebuilds a segment's sparse index by replaying its file,
// since ember persists no index alongside the data itself.
func loadSegment(opts *options.Options, info seginfo.Info) (*sstable.Segment, error) {
	recs, err := sstable.ReadAll(info.Path)
	if err != nil {
		return nil, err
	}

	idx := sstable.NewIndex()
	var offset int64
	var currentBlockSize uint64
	isFirstBlock := true
	for _, rec := range recs {
		size := uint64(record.Size(rec))
		switch {
		case isFirstBlock:
			idx.Add(rec.Key, offset)
			isFirstBlock = false
		case currentBlockSize+size > opts.BlockSizeBytes:
			idx.Add(rec.Key, offset)
			currentBlockSize = 0
		}
		currentBlockSize += size
		offset += int64(size)
	}

	return &sstable.Segment{ID: info.ID, Path: info.Path, Index: idx}, nil
}

// Put inserts or overwrites key with v, triggering a flush if the live
// memtable now exceeds its configured size threshold.
func (e *Engine) Put(key string, v value.Value) error {
	// Insert under RLock so a rotation (which takes Lock) cannot snapshot
	// live between picking it and writing into it.
	e.mu.RLock()
	live := e.live
	live.Put(key, v)
	e.mu.RUnlock()

	if live.SizeBytes() > e.options.MemtableMaxBytes {
		return e.tryFlush(live)
	}
	return nil
}

// Get performs the tiered lookup spec §4.5 describes: live memtable,
// then the memtable being flushed (if any), then segments newest to
// oldest. found=false means the key is absent or tombstoned.
func (e *Engine) Get(key string) (value.Value, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, tomb, found := e.live.Get(key); found {
		if tomb {
			return value.Value{}, false, nil
		}
		return v, true, nil
	}

	if e.flushing != nil {
		if v, tomb, found := e.flushing.Get(key); found {
			if tomb {
				return value.Value{}, false, nil
			}
			return v, true, nil
		}
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		v, _, status, err := e.segments[i].Find(key)
		if err != nil {
			return value.Value{}, false, err
		}
		switch status {
		case sstable.StatusFound:
			return v, true, nil
		case sstable.StatusTombstoned:
			// A tombstone in a newer segment shadows whatever older
			// segments hold for this key; stop here rather than
			// resurrecting a superseded value.
			return value.Value{}, false, nil
		}
	}

	return value.Value{}, false, nil
}

// Delete removes key. If key is live in the memtable it is tombstoned
// there; otherwise the newest segment holding a non-tombstoned record
// for key has its tombstone byte flipped in place. Fails with
// emberrors.ErrorCodeNotFound if the key has no entry in the live
// memtable and no segment holds a non-tombstoned record for it; the
// memtable being flushed is not consulted.
func (e *Engine) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, _, found := e.live.Get(key); found {
		e.live.Delete(key)
		return nil
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		_, offset, status, err := e.segments[i].Find(key)
		if err != nil {
			return err
		}
		if status == sstable.StatusFound {
			return e.segments[i].MarkTombstone(offset, key)
		}
	}

	return emberrors.NewKeyNotFoundError(key)
}

// tryFlush rotates old into the being-flushed slot and installs a fresh
// live memtable, then writes old to a newly numbered segment. If
// another goroutine already rotated past old, or a flush is already in
// flight, tryFlush is a no-op — there is only one being-flushed slot.
func (e *Engine) tryFlush(old *memtable.Memtable) error {
	e.mu.Lock()
	if e.live != old || e.flushing != nil {
		e.mu.Unlock()
		return nil
	}
	e.flushing = old
	e.live = memtable.New()
	segmentID := e.nextID
	e.nextID++
	e.mu.Unlock()

	path := filepath.Join(e.options.StorageDir, seginfo.SegmentName(segmentID))
	snapshot := old.Snapshot()
	entries := make([]sstable.Entry, len(snapshot))
	for i, s := range snapshot {
		entries[i] = sstable.Entry{Key: s.Key, Value: s.Value, Tombstone: s.Tombstone}
	}

	idx, err := sstable.Write(path, e.options.BlockSizeBytes, entries)
	if err != nil {
		e.mu.Lock()
		e.flushing = nil
		e.mu.Unlock()
		e.log.Errorw("flush failed", "segmentID", segmentID, "error", err)
		return emberrors.NewEngineError(err, emberrors.ErrorCodeIO, "flush failed").
			WithOperation("Flush").
			WithSegmentID(segmentID)
	}

	seg := &sstable.Segment{ID: segmentID, Path: path, Index: idx}

	e.mu.Lock()
	e.segments = append(e.segments, seg)
	e.flushing = nil
	e.mu.Unlock()

	e.log.Infow("flushed memtable", "segmentID", segmentID, "entries", len(entries))
	return nil
}

// Compact merges every segment into one, dropping tombstoned and
// superseded records, per spec §4.6. A no-op when fewer than two
// segments exist.
func (e *Engine) Compact() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.segments) < 2 {
		return nil
	}

	merged := make(map[string]value.Value)
	for _, seg := range e.segments { // oldest to newest: newer writes win.
		recs, err := sstable.ReadAll(seg.Path)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.Tombstone {
				delete(merged, rec.Key)
			} else {
				merged[rec.Key] = rec.Value
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]sstable.Entry, len(keys))
	for i, k := range keys {
		entries[i] = sstable.Entry{Key: k, Value: merged[k]}
	}

	mergeID := e.nextID
	e.nextID++

	path := filepath.Join(e.options.StorageDir, seginfo.MergedSegmentName(mergeID))
	idx, err := sstable.Write(path, e.options.BlockSizeBytes, entries)
	if err != nil {
		return err
	}

	oldPaths := make([]string, len(e.segments))
	for i, seg := range e.segments {
		oldPaths[i] = seg.Path
	}

	e.segments = []*sstable.Segment{{ID: mergeID, Path: path, Index: idx}}

	for _, p := range oldPaths {
		if err := os.Remove(p); err != nil {
			e.log.Warnw("failed to remove source segment after compaction", "path", p, "error", err)
		}
	}

	e.log.Infow("compacted segments", "mergeID", mergeID, "sourceSegments", len(oldPaths), "keys", len(keys))
	return nil
}

// Close marks the engine closed. Idempotent: subsequent calls return nil.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.log.Infow("engine closed")
	return nil
}
