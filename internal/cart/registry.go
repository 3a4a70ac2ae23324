package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const defaultSweepInterval = time.Minute

type residentStore struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out the live Store of each cart owner. Stores are hydrated
// once per owner, even when first requested concurrently, and released after
// Options.IdleTTL without access.
type Registry struct {
	opts  Options
	group singleflight.Group
	now   func() time.Time

	mu     sync.Mutex
	stores map[string]*residentStore
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, now: time.Now, stores: map[string]*residentStore{}}
}

// Get returns the store for owner, opening and hydrating it on first use.
func (r *Registry) Get(ctx context.Context, owner string) (*Store, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if store, ok := r.touch(owner); ok {
		return store, nil
	}

	v, err, _ := r.group.Do(owner, func() (any, error) {
		if store, ok := r.touch(owner); ok {
			return store, nil
		}
		// hydration outlives a cancelled first request
		store := Open(context.WithoutCancel(ctx), owner, r.opts)
		r.mu.Lock()
		r.stores[owner] = &residentStore{store: store, lastSeen: r.now()}
		live := len(r.stores)
		r.mu.Unlock()
		r.opts.Metrics.SetLiveStores(live)
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (r *Registry) touch(owner string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.stores[owner]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.store, true
}

// End flushes and releases the store for owner, typically at logout.
func (r *Registry) End(ctx context.Context, owner string) error {
	r.mu.Lock()
	entry, ok := r.stores[owner]
	delete(r.stores, owner)
	live := len(r.stores)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	r.opts.Metrics.SetLiveStores(live)
	return entry.store.Close(ctx)
}

// EvictIdle closes every store unused for longer than the idle TTL. Stores
// with live subscribers stay resident. It returns how many were released.
func (r *Registry) EvictIdle(ctx context.Context) (int, error) {
	ttl := r.opts.IdleTTL
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var idle []*Store
	for owner, entry := range r.stores {
		if entry.lastSeen.After(cutoff) || entry.store.subscriberCount() > 0 {
			continue
		}
		idle = append(idle, entry.store)
		delete(r.stores, owner)
	}
	live := len(r.stores)
	r.mu.Unlock()
	if len(idle) == 0 {
		return 0, nil
	}
	r.opts.Metrics.SetLiveStores(live)

	var err error
	for _, store := range idle {
		err = multierr.Append(err, store.Close(ctx))
	}
	return len(idle), err
}

// Run sweeps idle stores every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.opts.IdleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	logg := r.opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := r.EvictIdle(ctx)
			if err != nil {
				logg.Error(logg.WithField(ctx, "evicted", evicted), "cart idle sweep failed", err)
				continue
			}
			if evicted > 0 {
				logg.Debug(logg.WithFields(ctx, map[string]any{"evicted": evicted, "resident": r.Len()}), "cart idle sweep")
			}
		}
	}
}

// Len reports how many stores are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Close flushes every resident store. Errors from individual stores are combined.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	stores := r.stores
	r.stores = map[string]*residentStore{}
	r.mu.Unlock()
	r.opts.Metrics.SetLiveStores(0)

	var err error
	for _, entry := range stores {
		err = multierr.Append(err, entry.store.Close(ctx))
	}
	return err
}
