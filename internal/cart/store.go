package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
)

const defaultLoadTimeout = 2 * time.Second

// Options wires a Store to its persistence and observability collaborators.
// A nil Persister keeps the cart in memory only.
type Options struct {
	Persister    Persister
	WriteTimeout time.Duration
	LoadTimeout  time.Duration
	Logger       *logger.Logger
	Metrics      *metrics.CartMetrics

	// IdleTTL is read by Registry only; zero keeps stores resident until End.
	IdleTTL time.Duration
}

type observer struct {
	id uint64
	fn func()
}

// Store owns the line items of one cart. It is safe for concurrent use;
// observers run outside the lock, one notification per committed change,
// in commit order.
type Store struct {
	owner   string
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	writer  *writer

	mu           sync.Mutex
	items        []LineItem
	observers    []observer
	nextObserver uint64
	pending      int
	dispatching  bool
}

// New returns an empty, memory-only store.
func New() *Store {
	return &Store{logg: logger.Nop()}
}

// Open builds the store for owner and hydrates it once from the persister.
// Missing or unreadable state yields an empty cart.
func Open(ctx context.Context, owner string, opts Options) *Store {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{owner: owner, logg: logg, metrics: opts.Metrics}
	if opts.Persister == nil {
		return s
	}

	s.items = s.hydrate(ctx, opts)
	s.writer = newWriter(opts.Persister, owner, opts.WriteTimeout, logg, opts.Metrics)
	return s
}

func (s *Store) hydrate(ctx context.Context, opts Options) []LineItem {
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backend := opts.Persister.Name()
	logCtx := s.logg.WithFields(ctx, map[string]any{"cart_owner": s.owner, "backend": backend})

	items, err := opts.Persister.Load(loadCtx, s.owner)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.metrics.IncHydration(backend, metrics.OutcomeEmpty)
		return nil
	case err != nil:
		s.metrics.IncHydration(backend, metrics.OutcomeFailure)
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "cart hydration failed, starting empty")
		return nil
	}
	s.metrics.IncHydration(backend, metrics.OutcomeSuccess)
	s.logg.Debug(s.logg.WithField(logCtx, "lines", len(items)), "cart hydrated")
	return items
}

// Owner returns the session or user key the store was opened for.
func (s *Store) Owner() string {
	return s.owner
}

// AddItem appends a line or, when the id is already present, increases its
// quantity while keeping the originally captured snapshot. Quantities
// saturate at MaxQuantity.
func (s *Store) AddItem(item ItemInput, quantity int) {
	line, ok := newLineItem(item, quantity)
	if !ok {
		s.logg.Warn(s.logg.WithCartOwner(context.Background(), s.owner), "ignoring cart item without id")
		return
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == line.ID {
			merged = true
			next := mergeQuantity(s.items[i].Quantity, line.Quantity)
			if next == s.items[i].Quantity {
				s.mu.Unlock()
				return
			}
			s.items[i].Quantity = next
			break
		}
	}
	if !merged {
		s.items = append(s.items, line)
	}
	s.commitLocked("add")
	s.mu.Unlock()

	s.dispatch()
}

// RemoveItem deletes the line with id; absent ids are a no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.commitLocked("remove")
	s.mu.Unlock()

	s.dispatch()
}

// SetQuantity replaces the quantity of a line, clamping it to [1, MaxQuantity].
func (s *Store) SetQuantity(id string, quantity int) {
	quantity = clampQuantity(quantity)

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 || s.items[idx].Quantity == quantity {
		s.mu.Unlock()
		return
	}
	s.items[idx].Quantity = quantity
	s.commitLocked("set_quantity")
	s.mu.Unlock()

	s.dispatch()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	s.items = nil
	s.commitLocked("clear")
	s.mu.Unlock()

	s.dispatch()
}

// Drain empties the cart and returns the lines it held, in one commit.
func (s *Store) Drain() []LineItem {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return []LineItem{}
	}
	drained := s.items
	s.items = nil
	s.commitLocked("clear")
	s.mu.Unlock()

	s.dispatch()
	return drained
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// TotalItems sums quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Subtotal computes the sum of price times quantity.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Subscribe registers fn to run after every committed change. The returned
// func unregisters it and may be called more than once.
func (s *Store) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, obs := range s.observers {
				if obs.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Flush blocks until every committed change has been handed to the persister.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.flush(ctx)
}

// Close flushes pending state and stops background persistence.
// The store keeps working in memory afterwards, but later changes are
// reported as persistence failures instead of being written.
func (s *Store) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.close(ctx)
}

// PersistenceHealthy is false while the latest snapshot write is failing.
func (s *Store) PersistenceHealthy() bool {
	if s.writer == nil {
		return true
	}
	return s.writer.healthy()
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) commitLocked(op string) {
	s.pending++
	s.metrics.IncMutation(op)
	if s.writer != nil {
		s.writer.submit(cloneItems(s.items))
	}
}

// dispatch delivers pending notifications. A goroutine that finds another
// dispatch in progress leaves its notification to that one, which also makes
// re-entrant mutations from inside an observer safe.
func (s *Store) dispatch() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for s.pending > 0 {
		s.pending--
		observers := make([]observer, len(s.observers))
		copy(observers, s.observers)
		s.mu.Unlock()
		for _, obs := range observers {
			obs.fn()
		}
		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
