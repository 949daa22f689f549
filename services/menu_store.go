package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"menu-service/models"
)

// DefaultLatency is the artificial delay applied to every Load and Replace.
const DefaultLatency = 500 * time.Millisecond

// CatalogObserver is told about every catalog that Replace installs.
// Implementations handle (and log) their own failures.
type CatalogObserver interface {
	CatalogReplaced(ctx context.Context, items models.Catalog)
}

// LoadResult is what LoadAsync resolves to.
type LoadResult struct {
	Items models.Catalog
	Err   error
}

// ReplaceResult is what ReplaceAsync resolves to.
type ReplaceResult struct {
	OK  bool
	Err error
}

// MenuStore holds the current menu catalog in memory. Both operations wait
// a fixed latency before resolving, standing in for a remote call.
//
// Every call runs its own timer; calls are not queued behind each other. A
// Load issued while a Replace is still waiting may see the old catalog, and
// concurrent Replaces apply in the order their timers fire. A Replace that
// has been issued always applies, even if its caller stops waiting.
type MenuStore struct {
	current   atomic.Pointer[models.Catalog]
	// applyMu makes a swap and its observer notifications one step, so
	// observers see replaces in the same order as the store.
	applyMu   sync.Mutex
	latency   time.Duration
	observers []CatalogObserver
	log       zerolog.Logger
}

type StoreOption func(*MenuStore)

// WithLatency overrides DefaultLatency. Zero or negative means no delay.
func WithLatency(d time.Duration) StoreOption {
	return func(s *MenuStore) { s.latency = d }
}

func WithObserver(o CatalogObserver) StoreOption {
	return func(s *MenuStore) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *MenuStore) { s.log = l }
}

// NewMenuStore returns a store holding a private copy of seed.
func NewMenuStore(seed models.Catalog, opts ...StoreOption) *MenuStore {
	s := &MenuStore{
		latency: DefaultLatency,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	c := seed.Clone()
	s.current.Store(&c)
	return s
}

// LoadAsync resolves, after the latency, to a copy of the catalog that is
// current at that moment. The channel receives exactly one value.
func (s *MenuStore) LoadAsync(ctx context.Context) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		if err := s.wait(ctx); err != nil {
			out <- LoadResult{Err: err}
			return
		}
		out <- LoadResult{Items: s.current.Load().Clone()}
	}()
	return out
}

// Load blocks until LoadAsync resolves.
func (s *MenuStore) Load(ctx context.Context) (models.Catalog, error) {
	r := <-s.LoadAsync(ctx)
	return r.Items, r.Err
}

// ReplaceAsync copies items immediately and, after the latency, installs the
// copy as the current catalog in a single swap. Contents are not validated.
//
// The swap happens whatever ctx does. A cancelled ctx only resolves the
// returned channel early with ctx.Err().
func (s *MenuStore) ReplaceAsync(ctx context.Context, items models.Catalog) <-chan ReplaceResult {
	next := items.Clone()
	applied := make(chan struct{})
	go func() {
		defer close(applied)
		s.sleep()
		s.apply(context.WithoutCancel(ctx), next)
	}()

	out := make(chan ReplaceResult, 1)
	go func() {
		defer close(out)
		select {
		case <-applied:
			out <- ReplaceResult{OK: true}
		case <-ctx.Done():
			select {
			case <-applied:
				out <- ReplaceResult{OK: true}
				return
			default:
			}
			s.log.Debug().Err(ctx.Err()).Int("items", len(next)).Msg("replace caller stopped waiting")
			out <- ReplaceResult{Err: ctx.Err()}
		}
	}()
	return out
}

func (s *MenuStore) apply(ctx context.Context, next models.Catalog) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	s.current.Store(&next)
	s.log.Debug().Int("items", len(next)).Msg("catalog replaced")
	s.notify(ctx, next)
}

// Replace blocks until ReplaceAsync resolves.
func (s *MenuStore) Replace(ctx context.Context, items models.Catalog) (bool, error) {
	r := <-s.ReplaceAsync(ctx, items)
	return r.OK, r.Err
}

// sleep waits out the latency regardless of any caller.
func (s *MenuStore) sleep() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func (s *MenuStore) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MenuStore) notify(ctx context.Context, c models.Catalog) {
	for _, o := range s.observers {
		// Each observer gets its own copy.
		o.CatalogReplaced(ctx, c.Clone())
	}
}
