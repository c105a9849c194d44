// Package alphatier is the in-memory resource-coordination core: multiple
// independent schedulers mutate a shared pool of executors and the tasks
// running on them, under configurable consistency constraints, by
// submitting batched Commits to a single Engine.
//
// This file is the top-level façade wiring pool, store, constraint,
// apply, commit, and executor together.
package alphatier

import (
	"log/slog"

	"github.com/sarnowski/alphatier-go/commit"
	"github.com/sarnowski/alphatier-go/constraint"
	"github.com/sarnowski/alphatier-go/executor"
	"github.com/sarnowski/alphatier-go/pool"
	"github.com/sarnowski/alphatier-go/store"
)

// Alphatier bundles a State Store and a Commit Engine into the single
// handle a caller embeds: register executors, submit commits, read
// snapshots.
type Alphatier struct {
	store  *store.Store
	engine *commit.Engine
}

// Option configures a new Alphatier instance.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger installs a shared structured logger used by both the store
// and the commit engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewPool creates a fresh, empty Alphatier instance with the two
// built-in constraints (optimistic-locking, no-resource-overbooking)
// installed.
func NewPool(opts ...Option) *Alphatier {
	return newFrom(pool.NewEmpty(), opts...)
}

// CreateWithSnapshot rebuilds an Alphatier instance seeded with snap's
// executors and tasks and the default built-in constraints only. Custom
// constraints installed on the pool that produced snap are not part of
// {executors, tasks} and so are not, and cannot be, restored here.
func CreateWithSnapshot(snap pool.Snapshot, opts ...Option) *Alphatier {
	return newFrom(pool.FromSnapshot(snap), opts...)
}

func newFrom(p pool.Pool, opts ...Option) *Alphatier {
	cfg := options{}
	for _, o := range opts {
		o(&cfg)
	}

	p.Constraints.AddPre(constraint.OptimisticLockingName, constraint.OptimisticLocking())
	p.Constraints.AddPost(constraint.NoResourceOverbookingName, constraint.NoResourceOverbooking())

	storeOpts := []store.Option{}
	engineOpts := []commit.Option{}
	if cfg.logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(cfg.logger))
		engineOpts = append(engineOpts, commit.WithLogger(cfg.logger))
	}

	return &Alphatier{
		store:  store.New(p, storeOpts...),
		engine: commit.New(engineOpts...),
	}
}

// Commit submits c for validation, application, and constraint
// evaluation. See commit.Engine.Commit for the full pipeline semantics.
func (a *Alphatier) Commit(c pool.Commit, opts ...commit.CommitOption) (pool.Result, error) {
	return a.engine.Commit(a.store, c, opts...)
}

// Snapshot returns the current {executors, tasks} view.
func (a *Alphatier) Snapshot() pool.Snapshot {
	return a.store.Read().Snapshot()
}

// Stats returns a read-only aggregate over the current pool state.
func (a *Alphatier) Stats() pool.Stats {
	return a.store.Read().Stats()
}

// RegisterExecutor installs or overwrites the executor named id.
func (a *Alphatier) RegisterExecutor(id string, resources pool.Resources, opts executor.RegisterOptions) error {
	return executor.Register(a.store, id, resources, opts)
}

// UpdateExecutor deep-merges metadata into the named executor.
func (a *Alphatier) UpdateExecutor(id string, metadata map[string]any) error {
	return executor.Update(a.store, id, metadata)
}

// UnregisterExecutor marks the named executor as unregistered.
func (a *Alphatier) UnregisterExecutor(id string) error {
	return executor.Unregister(a.store, id)
}

// UpdateTask advances a task's lifecycle phase and merges metadata into
// it.
func (a *Alphatier) UpdateTask(taskID string, phase pool.LifecyclePhase, metadata map[string]any) error {
	return executor.UpdateTask(a.store, taskID, phase, metadata)
}

// KillTask removes a task that has reached the "kill" phase from the
// pool, along with its membership in the owning executor's task set.
func (a *Alphatier) KillTask(taskID string) error {
	return executor.KillTask(a.store, taskID)
}

// AddConstraint installs or replaces a named constraint. fn must be a
// pool.PreConstraint or pool.PostConstraint matching kind.
func (a *Alphatier) AddConstraint(kind pool.ConstraintKind, name string, fn any) error {
	return a.store.Mutate(func(base pool.Pool) (pool.Pool, error) {
		next := base.CloneShallow()
		switch kind {
		case pool.KindPre:
			pc, ok := fn.(pool.PreConstraint)
			if !ok {
				return base, errInvalidConstraintType(kind)
			}
			next.Constraints.AddPre(name, pc)
		case pool.KindPost:
			pc, ok := fn.(pool.PostConstraint)
			if !ok {
				return base, errInvalidConstraintType(kind)
			}
			next.Constraints.AddPost(name, pc)
		}
		return next, nil
	})
}

// DelConstraint removes the named constraint from kind, if present.
func (a *Alphatier) DelConstraint(kind pool.ConstraintKind, name string) error {
	return a.store.Mutate(func(base pool.Pool) (pool.Pool, error) {
		next := base.CloneShallow()
		next.Constraints.Del(kind, name)
		return next, nil
	})
}

func errInvalidConstraintType(kind pool.ConstraintKind) error {
	return &pool.ValidationError{Reason: "alphatier: constraint function does not match kind " + string(kind)}
}
