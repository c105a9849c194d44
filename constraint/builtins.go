// Package constraint implements the built-in pre- and post-commit
// constraints every new pool.Pool is installed with: optimistic locking
// on version probes, and a no-overbooking check on executor capacity.
package constraint

import "github.com/sarnowski/alphatier-go/pool"

// OptimisticLockingName is the registry key the built-in pre-constraint
// is installed under.
const OptimisticLockingName = "optimistic-locking"

// NoResourceOverbookingName is the registry key the built-in
// post-constraint is installed under.
const NoResourceOverbookingName = "no-resource-overbooking"

// OptimisticLocking rejects any action carrying a version probe
// (ExecutorMetadataVersion, ExecutorTaskIDsVersion, MetadataVersion) that
// does not match the corresponding counter in the pre-commit snapshot.
// Actions carrying no probes are ignored.
func OptimisticLocking() pool.PreConstraint {
	return func(c pool.Commit, pre pool.Snapshot) []pool.Action {
		var rejected []pool.Action

		for _, a := range c.Actions {
			if probeMismatch(a, pre) {
				rejected = append(rejected, a)
			}
		}

		return rejected
	}
}

func probeMismatch(a pool.Action, pre pool.Snapshot) bool {
	if a.ExecutorMetadataVersion != nil {
		exec, ok := pre.Executors[a.ExecutorID]
		if !ok || exec.MetadataVersion != *a.ExecutorMetadataVersion {
			return true
		}
	}
	if a.ExecutorTaskIDsVersion != nil {
		exec, ok := pre.Executors[a.ExecutorID]
		if !ok || exec.TaskIDsVersion != *a.ExecutorTaskIDsVersion {
			return true
		}
	}
	if a.MetadataVersion != nil {
		task, ok := pre.Tasks[a.ID]
		if !ok || task.MetadataVersion != *a.MetadataVersion {
			return true
		}
	}
	return false
}

// NoResourceOverbooking rejects create actions that would push an
// executor's reserved resources past its declared capacity on any
// dimension. Baseline reservation is the sum of the executor's
// pre-existing tasks; create actions targeting the same executor are
// processed in commit-submission order against a running total, so
// rejection is sticky within a single commit (once a resource is
// saturated, later creates needing it are rejected too).
func NoResourceOverbooking() pool.PostConstraint {
	return func(c pool.Commit, pre, post pool.Snapshot) []pool.Action {
		var rejected []pool.Action

		running := make(map[string]pool.Resources, len(pre.Executors))
		for _, t := range pre.Tasks {
			running[t.ExecutorID] = running[t.ExecutorID].Add(t.Resources)
		}

		for _, a := range c.Actions {
			if a.Type != pool.ActionCreate {
				continue
			}
			exec, ok := pre.Executors[a.ExecutorID]
			if !ok {
				continue // referential integrity already proven in Step 0
			}

			candidate := running[a.ExecutorID].Add(a.Resources)
			if candidate.Exceeds(exec.Resources) {
				rejected = append(rejected, a)
				continue
			}
			running[a.ExecutorID] = candidate
		}

		return rejected
	}
}
