// Package ember provides an embeddable key/value data store built as a
// Log-Structured Merge tree. It combines an in-memory memtable with
// immutable on-disk segments and background compaction to offer fast
// writes and bounded-depth reads for applications that want a storage
// engine in-process rather than over a socket.
package ember

import (
	"context"

	"github.com/emberkv/ember/internal/compaction"
	"github.com/emberkv/ember/internal/engine"
	"github.com/emberkv/ember/pkg/logger"
	"github.com/emberkv/ember/pkg/options"
	"github.com/emberkv/ember/pkg/value"
)

// Instance represents an instance of the ember key/value store. It
// encapsulates the core engine responsible for data handling, the
// configuration options for this specific store, and the background
// compactor that periodically merges segments.
//
// Instance is the primary entry point for interacting with the ember
// store, providing methods for getting, putting, and deleting keys.
type Instance struct {
	engine  *engine.Engine   // The underlying storage engine handling reads/writes.
	options *options.Options // Configuration options applied to this instance.
	compact *compaction.Task // Background periodic compactor, if enabled.
}

// NewInstance creates and initializes a new ember store instance rooted
// at the storage directory named in opts (or options.DefaultStorageDir).
// A non-positive MergeInterval disables the background compactor;
// callers can still invoke Compact directly.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	o := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	eng, err := engine.New(ctx, engine.Config{Logger: log, Options: &o})
	if err != nil {
		return nil, err
	}

	task := compaction.New(o.MergeInterval, eng.Compact, log)
	task.Start()

	return &Instance{engine: eng, options: &o, compact: task}, nil
}

// Get retrieves the value associated with key. found is false when key
// is absent or has been deleted.
func (i *Instance) Get(ctx context.Context, key string) (value.Value, bool, error) {
	return i.engine.Get(key)
}

// Put stores or overwrites the value associated with key.
func (i *Instance) Put(ctx context.Context, key string, v value.Value) error {
	return i.engine.Put(key, v)
}

// Delete removes key. It fails if key has no live occurrence in the
// memtable or any segment.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Delete(key)
}

// Compact triggers an immediate merge of every on-disk segment, the
// same operation the background compactor runs periodically.
func (i *Instance) Compact(ctx context.Context) error {
	return i.engine.Compact()
}

// Close stops the background compactor, joining any in-flight
// compaction pass, then closes the underlying engine.
func (i *Instance) Close(ctx context.Context) error {
	i.compact.Stop()
	return i.engine.Close()
}
