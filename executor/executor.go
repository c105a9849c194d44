// Package executor implements the collaborator-surface operations the
// Commit Engine depends on the semantics of: registration, metadata
// updates, unregistration, and task lifecycle/removal. These are shallow
// bookkeeping around the engine, kept in this module since Alphatier has
// no separate network boundary for them.
package executor

import (
	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/sarnowski/alphatier-go/pool"
	"github.com/sarnowski/alphatier-go/store"
)

// RegisterOptions carries the optional fields Register accepts beyond
// id and resources.
type RegisterOptions struct {
	Metadata        map[string]any
	MetadataVersion int
	Tasks           map[string]pool.Task
	TaskIDsVersion  int
}

// Register installs or overwrites the executor named id in s.
//
// Re-registering an executor that already exists overwrites every field,
// including task_ids. Tasks that referenced the old executor record are
// NOT garbage-collected: they are left orphaned, still pointing at
// id, simply no longer named by the executor's (possibly empty,
// possibly different) fresh task_ids set. Silently deleting them as a
// side effect of what looks like a metadata overwrite would be a
// surprising data loss hidden behind an innocuous-looking call. Callers
// that want the old tasks gone must kill them explicitly.
//
// Resources is statically typed as map[string]float64, so the
// non-numeric-value half of the invalid-resources check is enforced by
// the Go type system rather than at runtime; only emptiness remains a
// runtime check.
func Register(s *store.Store, id string, resources pool.Resources, opts RegisterOptions) error {
	if len(resources) == 0 {
		return &pool.InvalidResourcesError{Reason: "alphatier: resources must not be empty"}
	}

	taskIDs := make(map[string]struct{}, len(opts.Tasks))
	for taskID := range opts.Tasks {
		taskIDs[taskID] = struct{}{}
	}

	return s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		next := base.CloneShallow()

		next.Executors[id] = pool.Executor{
			ID:              id,
			Status:          pool.ExecutorRegistered,
			Resources:       resources.Clone(),
			Metadata:        cloneMetadata(opts.Metadata),
			MetadataVersion: opts.MetadataVersion,
			TaskIDs:         taskIDs,
			TaskIDsVersion:  opts.TaskIDsVersion,
		}
		for taskID, t := range opts.Tasks {
			next.Tasks[taskID] = t.Clone()
		}

		return next, nil
	})
}

// Update deep-merges metadata into the executor's metadata (shallow
// "right wins", via mergo) and increments its metadata version by one.
func Update(s *store.Store, id string, metadata map[string]any) error {
	return s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		exec, ok := base.Executors[id]
		if !ok {
			return base, errors.Errorf("alphatier: no such executor %s", id)
		}

		next := base.CloneShallow()
		exec = exec.Clone()

		merged := cloneMetadata(exec.Metadata)
		if err := mergo.Merge(&merged, metadata, mergo.WithOverride); err != nil {
			return base, errors.Wrap(err, "alphatier: merge executor metadata")
		}
		exec.Metadata = merged
		exec.MetadataVersion++

		next.Executors[id] = exec
		return next, nil
	})
}

// Unregister marks the executor named id as unregistered, retaining its
// record (tasks are untouched).
func Unregister(s *store.Store, id string) error {
	return s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		exec, ok := base.Executors[id]
		if !ok {
			return base, errors.Errorf("alphatier: no such executor %s", id)
		}

		next := base.CloneShallow()
		exec = exec.Clone()
		exec.Status = pool.ExecutorUnregistered
		next.Executors[id] = exec
		return next, nil
	})
}

// UpdateTask advances a task's lifecycle phase and merges metadata into
// it, incrementing its metadata version by one. Attempting to regress the
// lifecycle phase returns a *pool.LifecycleRegressionError and leaves the
// store untouched; the kill applier enforces the same rule on its own
// path.
func UpdateTask(s *store.Store, taskID string, phase pool.LifecyclePhase, metadata map[string]any) error {
	return s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		task, ok := base.Tasks[taskID]
		if !ok {
			return base, errors.Errorf("alphatier: no such task %s", taskID)
		}
		if !pool.PhaseAdvances(task.LifecyclePhase, phase) {
			return base, &pool.LifecycleRegressionError{TaskID: taskID, From: task.LifecyclePhase, To: phase}
		}

		next := base.CloneShallow()
		task = task.Clone()

		merged := cloneMetadata(task.Metadata)
		if err := mergo.Merge(&merged, metadata, mergo.WithOverride); err != nil {
			return base, errors.Wrap(err, "alphatier: merge task metadata")
		}
		task.Metadata = merged
		task.MetadataVersion++
		task.LifecyclePhase = phase

		next.Tasks[taskID] = task
		return next, nil
	})
}

// KillTask removes the task named taskID from the pool entirely, along
// with its id from the owning executor's task_ids set, incrementing that
// executor's task_ids version. This is how a task killed by a scheduler's
// kill action (which only advances its phase to "kill") actually
// disappears from the pool.
func KillTask(s *store.Store, taskID string) error {
	return s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		task, ok := base.Tasks[taskID]
		if !ok {
			return base, errors.Errorf("alphatier: no such task %s", taskID)
		}

		next := base.CloneShallow()
		delete(next.Tasks, taskID)

		if exec, ok := next.Executors[task.ExecutorID]; ok {
			exec = exec.Clone()
			delete(exec.TaskIDs, taskID)
			exec.TaskIDsVersion++
			next.Executors[task.ExecutorID] = exec
		}

		return next, nil
	})
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
