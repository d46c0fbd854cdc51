package snapshot

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultCoalesceDelay is how long the writer waits after a schedule request
// for further requests before writing. Rapid bursts of mutations (cascade
// deletes, layout passes) collapse into a single save.
const DefaultCoalesceDelay = 100 * time.Millisecond

// Writer turns synchronous mutation notifications into asynchronous,
// coalesced snapshot saves.
//
// Schedule never blocks and never fails: the mutation path is fully
// decoupled from disk. Save errors are logged, not propagated - the
// in-memory canvas stays authoritative and the persisted snapshot is a
// best-effort mirror. Flush performs a synchronous save for callers that
// need durability (shutdown, tests).
type Writer struct {
	store  Store
	source func() Snapshot
	logger *log.Logger
	delay  time.Duration

	kick chan struct{}

	// saveMu serializes the background save against explicit flushes.
	saveMu sync.Mutex
}

// NewWriter creates a writer that persists source() to store.
// A nil logger discards diagnostics.
func NewWriter(store Store, source func() Snapshot, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Writer{
		store:  store,
		source: source,
		logger: logger,
		delay:  DefaultCoalesceDelay,
		kick:   make(chan struct{}, 1),
	}
}

// SetCoalesceDelay overrides the coalescing window. Intended for tests.
func (w *Writer) SetCoalesceDelay(d time.Duration) { w.delay = d }

// Schedule requests an asynchronous save. Multiple requests within the
// coalescing window result in a single save. Never blocks.
func (w *Writer) Schedule() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Start runs the background save loop until ctx is cancelled.
// Call Flush before shutdown for a final durable write.
func (w *Writer) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.kick:
		}

		// Coalesce: absorb further requests for one delay window.
		timer := time.NewTimer(w.delay)
	coalesce:
		for {
			select {
			case <-w.kick:
			case <-timer.C:
				break coalesce
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		w.save(ctx)
	}
}

// save writes the current snapshot. Errors are logged only.
func (w *Writer) save(ctx context.Context) {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	if err := w.store.Save(ctx, w.source()); err != nil {
		w.logger.Error("snapshot write failed", "error", err)
	}
}

// Flush performs a synchronous save and returns its error, for callers that
// need a durability guarantee.
func (w *Writer) Flush(ctx context.Context) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()
	return w.store.Save(ctx, w.source())
}
