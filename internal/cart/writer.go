package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
)

const defaultWriteTimeout = 2 * time.Second

var errWriterClosed = errors.New("cart writer closed")

// writer persists the latest snapshot of one cart in the background.
// Submissions coalesce: only the newest snapshot is written.
type writer struct {
	persister Persister
	owner     string
	timeout   time.Duration
	logg      *logger.Logger
	metrics   *metrics.CartMetrics

	mu        sync.Mutex
	pending   []LineItem
	queued    uint64
	attempted uint64
	lastErr   error
	progress  chan struct{}
	closed    bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newWriter(p Persister, owner string, timeout time.Duration, logg *logger.Logger, m *metrics.CartMetrics) *writer {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	w := &writer{
		persister: p,
		owner:     owner,
		timeout:   timeout,
		logg:      logg,
		metrics:   m,
		progress:  make(chan struct{}),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

// submit hands a snapshot to the writer without blocking. Snapshots that
// arrive after close are reported and dropped.
func (w *writer) submit(items []LineItem) {
	w.mu.Lock()
	if w.closed {
		w.lastErr = errWriterClosed
		w.mu.Unlock()
		w.metrics.IncWrite(w.persister.Name(), metrics.OutcomeFailure)
		logCtx := w.logg.WithFields(context.Background(), map[string]any{
			"cart_owner": w.owner,
			"backend":    w.persister.Name(),
			"error_code": string(pkgerrors.CodePersistence),
			"lines":      len(items),
		})
		w.logg.Warn(logCtx, "cart changed after its session was released, change not persisted")
		return
	}
	w.pending = items
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writeLatest()
		case <-w.stop:
			w.writeLatest()
			return
		}
	}
}

func (w *writer) writeLatest() {
	w.mu.Lock()
	if w.attempted == w.queued {
		w.mu.Unlock()
		return
	}
	items, version := w.pending, w.queued
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	start := time.Now()
	err := w.persister.Save(ctx, w.owner, items)
	cancel()
	w.metrics.ObserveWrite(w.persister.Name(), time.Since(start), err)

	if err != nil {
		logCtx := w.logg.WithFields(context.Background(), map[string]any{
			"cart_owner": w.owner,
			"backend":    w.persister.Name(),
		})
		w.logg.Error(logCtx, "cart snapshot write failed", pkgerrors.Wrap(pkgerrors.CodePersistence, err, "persist cart"))
	}

	w.mu.Lock()
	w.attempted = version
	if !errors.Is(w.lastErr, errWriterClosed) {
		w.lastErr = err
	}
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
}

// healthy reports whether the most recent write succeeded.
func (w *writer) healthy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr == nil
}

// flush waits until every snapshot submitted before the call has been attempted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	for w.attempted < target {
		if w.closed && w.doneClosed() {
			w.mu.Unlock()
			return pkgerrors.Wrap(pkgerrors.CodePersistence, errWriterClosed, "flush cart")
		}
		progress := w.progress
		w.mu.Unlock()
		select {
		case <-progress:
		case <-ctx.Done():
			return pkgerrors.Wrap(pkgerrors.CodePersistence, ctx.Err(), "flush cart")
		}
		w.mu.Lock()
	}
	err := w.lastErr
	w.mu.Unlock()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "flush cart")
	}
	return nil
}

func (w *writer) doneClosed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// close drains the latest snapshot and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	select {
	case <-w.done:
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodePersistence, ctx.Err(), "close cart writer")
	}
	return w.flush(ctx)
}
