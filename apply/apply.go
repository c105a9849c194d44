// Package apply implements the three action appliers — create, update,
// kill — each a pure function that takes a pool.Pool and an action and
// returns the pool.Pool that results from applying it. By the time an
// applier runs, Step 0 of the commit engine has already proven
// referential integrity, so appliers have no user-reachable failure
// modes; kill turns a would-be lifecycle regression into a no-op rather
// than an error.
package apply

import (
	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/sarnowski/alphatier-go/pool"
)

// Create constructs a new Task from action and inserts it into p, under
// the executor it targets. The executor's task-id set and task_ids
// version are updated accordingly.
func Create(p pool.Pool, schedulerID string, a pool.Action) (pool.Pool, error) {
	next := p.CloneShallow()

	exec := next.Executors[a.ExecutorID].Clone()
	if exec.TaskIDs == nil {
		exec.TaskIDs = make(map[string]struct{})
	}
	exec.TaskIDs[a.ID] = struct{}{}
	exec.TaskIDsVersion++
	next.Executors[a.ExecutorID] = exec

	next.Tasks[a.ID] = pool.Task{
		ID:              a.ID,
		ExecutorID:      a.ExecutorID,
		SchedulerID:     schedulerID,
		LifecyclePhase:  pool.PhaseCreate,
		Resources:       a.Resources.Clone(),
		Metadata:        cloneOrEmpty(a.Metadata),
		MetadataVersion: 0,
	}

	return next, nil
}

// Update deep-merges action.Metadata into the target task's metadata
// (shallow "right wins", via mergo) and increments its metadata version.
// Lifecycle phase is untouched.
func Update(p pool.Pool, _ string, a pool.Action) (pool.Pool, error) {
	next := p.CloneShallow()

	task := next.Tasks[a.ID].Clone()
	merged := cloneOrEmpty(task.Metadata)
	if err := mergo.Merge(&merged, a.Metadata, mergo.WithOverride); err != nil {
		return p, errors.Wrap(err, "alphatier: merge task metadata")
	}
	task.Metadata = merged
	task.MetadataVersion++
	next.Tasks[a.ID] = task

	return next, nil
}

// Kill advances the target task's lifecycle phase to "kill". It does not
// delete the task — the owning executor removes it later via
// executor.KillTask. If the task has already progressed past "kill"
// (i.e. is already "killing"), the action is a no-op rather than a
// regression: kill only ever pushes a task forward.
func Kill(p pool.Pool, _ string, a pool.Action) (pool.Pool, error) {
	next := p.CloneShallow()

	task := next.Tasks[a.ID].Clone()
	if pool.PhaseAdvances(task.LifecyclePhase, pool.PhaseKill) {
		task.LifecyclePhase = pool.PhaseKill
		next.Tasks[a.ID] = task
	}

	return next, nil
}

func cloneOrEmpty(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
