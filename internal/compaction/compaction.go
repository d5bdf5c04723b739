// Package compaction runs an engine's Compact method on a periodic timer,
// decoupled from internal/engine so the scheduling policy carries no
// dependency on the storage engine's internals — only on a plain
// func() error callback.
package compaction

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task periodically invokes a compact function until Stop is called.
// Grounded on the teacher pack's ticker-plus-stop-channel worker shape
// (see other_examples' lsm.go compactionWorker), simplified to a single
// timer source since ember has no separate compaction-request channel.
type Task struct {
	interval time.Duration
	compact  func() error
	log      *zap.SugaredLogger

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New builds a Task that calls compact every interval once Start is
// called. An interval of zero or less disables the timer entirely: Start
// becomes a no-op, matching options.WithMergeInterval's documented
// behavior for a non-positive duration.
func New(interval time.Duration, compact func() error, log *zap.SugaredLogger) *Task {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Task{
		interval: interval,
		compact:  compact,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start launches the background timer loop. Safe to call at most once;
// a disabled Task (interval <= 0) returns immediately without spawning
// a goroutine.
func (t *Task) Start() {
	if t.interval <= 0 {
		return
	}

	t.wg.Add(1)
	go t.run()
}

func (t *Task) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.compact(); err != nil {
				t.log.Errorw("periodic compaction failed", "error", err)
			}
		case <-t.stop:
			return
		}
	}
}

// Stop cancels the timer loop and waits for any in-flight compaction
// call to return. Idempotent.
func (t *Task) Stop() {
	t.once.Do(func() { close(t.stop) })
	t.wg.Wait()
}
