package pool

// ConstraintKind distinguishes when a Constraint is evaluated relative to
// applying a Commit's actions.
type ConstraintKind string

const (
	KindPre  ConstraintKind = "pre"
	KindPost ConstraintKind = "post"
)

// PreConstraint inspects a Commit against the pre-commit snapshot and
// returns the actions it rejects. It must be a pure function; the engine
// calls it once per commit, inside the store's writer critical section.
type PreConstraint func(c Commit, pre Snapshot) []Action

// PostConstraint inspects a Commit against both the pre- and post-commit
// snapshots and returns the actions it rejects. Also must be pure.
type PostConstraint func(c Commit, pre, post Snapshot) []Action

// Registry holds the named, ordered-irrelevant pre- and post-constraint
// mappings installed on a Pool. The pair (kind, name) uniquely identifies
// a constraint; re-adding under the same name replaces it.
type Registry struct {
	Pre  map[string]PreConstraint
	Post map[string]PostConstraint
}

// NewRegistry returns an empty registry with no constraints installed.
func NewRegistry() Registry {
	return Registry{
		Pre:  make(map[string]PreConstraint),
		Post: make(map[string]PostConstraint),
	}
}

// Clone returns a shallow copy of the registry: the constraint closures
// themselves are immutable values and are shared, but the name->closure
// maps are independent.
func (r Registry) Clone() Registry {
	out := Registry{
		Pre:  make(map[string]PreConstraint, len(r.Pre)),
		Post: make(map[string]PostConstraint, len(r.Post)),
	}
	for k, v := range r.Pre {
		out.Pre[k] = v
	}
	for k, v := range r.Post {
		out.Post[k] = v
	}
	return out
}

// AddPre installs or replaces a named pre-constraint.
func (r Registry) AddPre(name string, c PreConstraint) {
	r.Pre[name] = c
}

// AddPost installs or replaces a named post-constraint.
func (r Registry) AddPost(name string, c PostConstraint) {
	r.Post[name] = c
}

// Del removes the constraint named name from kind, if present.
func (r Registry) Del(kind ConstraintKind, name string) {
	switch kind {
	case KindPre:
		delete(r.Pre, name)
	case KindPost:
		delete(r.Post, name)
	}
}
