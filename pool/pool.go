package pool

import "maps"

// Pool is the top-level mutable state: the full set of executors, tasks,
// and installed constraints. Pool values are treated as immutable once
// handed to a reader — every mutation in this codebase goes through
// CloneShallow first, a copy-on-write discipline applied uniformly across
// the executor and task maps.
type Pool struct {
	Executors   map[string]Executor
	Tasks       map[string]Task
	Constraints Registry
}

// NewEmpty returns a Pool with no executors, no tasks, and no installed
// constraints. Callers almost always want the top-level
// alphatier.NewPool, which also installs the built-in constraints.
func NewEmpty() Pool {
	return Pool{
		Executors:   make(map[string]Executor),
		Tasks:       make(map[string]Task),
		Constraints: NewRegistry(),
	}
}

// CloneShallow returns a Pool whose top-level maps are independent of p's,
// but whose Executor/Task values are still shared until a caller clones
// the individual entry it intends to mutate (Executor.Clone / Task.Clone).
// Cheap, and safe as long as every mutator clones before writing.
func (p Pool) CloneShallow() Pool {
	return Pool{
		Executors:   maps.Clone(p.Executors),
		Tasks:       maps.Clone(p.Tasks),
		Constraints: p.Constraints.Clone(),
	}
}

// Snapshot returns the immutable {executors, tasks} view handed to
// schedulers and constraints. The constraint registry is deliberately
// excluded (§ Snapshot Facility).
func (p Pool) Snapshot() Snapshot {
	execs := make(map[string]Executor, len(p.Executors))
	for id, e := range p.Executors {
		execs[id] = e.Clone()
	}
	tasks := make(map[string]Task, len(p.Tasks))
	for id, t := range p.Tasks {
		tasks[id] = t.Clone()
	}
	return Snapshot{Executors: execs, Tasks: tasks}
}

// FromSnapshot rebuilds a Pool seeded with snap's executors and tasks and
// an empty constraint registry. Callers rebuilding a caller-facing pool
// (alphatier.CreateWithSnapshot) install the default built-ins themselves
// afterward.
func FromSnapshot(snap Snapshot) Pool {
	p := NewEmpty()
	for id, e := range snap.Executors {
		p.Executors[id] = e.Clone()
	}
	for id, t := range snap.Tasks {
		p.Tasks[id] = t.Clone()
	}
	return p
}

// Stats aggregates read-only statistics over the pool's current state.
func (p Pool) Stats() Stats {
	s := Stats{
		ExecutorCount:       len(p.Executors),
		TaskCount:           len(p.Tasks),
		TasksByPhase:        make(map[LifecyclePhase]int),
		ResourceUtilization: make(map[string]ResourceUtilization),
	}

	for _, e := range p.Executors {
		for key, capacity := range e.Resources {
			u := s.ResourceUtilization[key]
			u.Capacity += capacity
			s.ResourceUtilization[key] = u
		}
	}

	for _, t := range p.Tasks {
		s.TasksByPhase[t.LifecyclePhase]++
		for key, reserved := range t.Resources {
			u := s.ResourceUtilization[key]
			u.Reserved += reserved
			s.ResourceUtilization[key] = u
		}
	}

	return s
}

// Result is returned by a successful or rejected commit.
type Result struct {
	AcceptedActions []Action
	RejectedActions map[string][]Action
	PreSnapshot     Snapshot
	PostSnapshot    *Snapshot
}
