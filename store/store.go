// Package store implements the State Store: an atomic cell holding the
// current pool.Pool value. Readers observe consistent snapshots lock-free;
// writers apply a function to the current value under a serialising
// transaction.
//
// An atomic.Pointer gives lock-free reads; a single sync.Mutex guards the
// critical section that reads the current value, computes the next one,
// and swaps it in. There is no exposed multi-call transaction handle —
// every write to the pool happens through exactly one Mutate call, so the
// transaction boundary already coincides with "one commit", and no
// background GC or deadlock detection is needed: a single mutex around
// the entire mutate body cannot deadlock with itself, and there are no
// superseded versions to reclaim since the Store holds exactly one live
// Pool value at a time.
package store

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sarnowski/alphatier-go/pool"
)

// Store holds the current Pool value and serialises writers.
type Store struct {
	current atomic.Pointer[pool.Pool]
	mu      sync.Mutex
	logger  *slog.Logger
}

// New creates a Store seeded with the given initial pool value.
func New(initial pool.Pool, opts ...Option) *Store {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	s := &Store{logger: cfg.logger}
	seed := initial
	s.current.Store(&seed)
	return s
}

// Read returns the pool value visible at this instant. The load is
// lock-free (atomic.Pointer acquire semantics): readers never block on,
// and never observe a half-applied, writer.
func (s *Store) Read() pool.Pool {
	return *s.current.Load()
}

// Mutate applies f to the current pool value under the Store's single
// writer mutex and, if f succeeds, installs its result as the new current
// value. f must be side-effect-free apart from the value it returns:
// because the mutex is held for the entire call, f never needs to retry —
// no other Mutate can observe or change the base value while f runs. This
// gives read consistency, atomicity, and no blocking callbacks by
// construction rather than by a compare-and-swap retry loop.
//
// If f returns an error, the Store's current value is left untouched:
// callers see either the full set of f's intended changes or none.
func (s *Store) Mutate(f func(base pool.Pool) (pool.Pool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := *s.current.Load()
	next, err := f(base)
	if err != nil {
		s.logger.Debug("mutate aborted", "error", err)
		return err
	}

	result := next
	s.current.Store(&result)
	s.logger.Debug("mutate applied",
		"executors", len(result.Executors), "tasks", len(result.Tasks))
	return nil
}
