package commit

import (
	"fmt"

	"github.com/sarnowski/alphatier-go/pool"
)

// validate runs Step 0 syntactic validation against the pre-commit
// snapshot. The returned error's Reason string is matched verbatim by
// callers and tests — never reword these strings.
func validate(c pool.Commit, pre pool.Snapshot) error {
	seen := make(map[string]bool, len(c.Actions))
	for _, a := range c.Actions {
		if seen[a.ID] {
			return &pool.ValidationError{Reason: "Commit contains duplicate tasks"}
		}
		seen[a.ID] = true
	}

	for _, a := range c.Actions {
		switch a.Type {
		case pool.ActionCreate:
			if _, exists := pre.Tasks[a.ID]; exists {
				return &pool.ValidationError{Reason: "Commit contains duplicate create tasks"}
			}
			for key := range a.Metadata {
				if _, reserved := pool.ReservedMetadataKeys[key]; reserved {
					return &pool.ValidationError{Reason: "Commit contains illegal properties in create actions"}
				}
			}
			if _, exists := pre.Executors[a.ExecutorID]; !exists {
				return &pool.ValidationError{Reason: fmt.Sprintf("Commit contains reference to missing executor %s", a.ExecutorID)}
			}

		case pool.ActionUpdate, pool.ActionKill:
			if _, exists := pre.Tasks[a.ID]; !exists {
				return &pool.ValidationError{Reason: fmt.Sprintf("Commit contains reference to missing task for %s", a.Type)}
			}
		}
	}

	if err := validateResourceKeys(c, pre); err != nil {
		return err
	}

	return nil
}

// validateResourceKeys enforces that, for every executor targeted by a
// create action, the union of resource keys named across those actions is
// exactly the executor's declared resource-key set — neither more nor
// fewer keys.
func validateResourceKeys(c pool.Commit, pre pool.Snapshot) error {
	union := make(map[string]map[string]struct{})

	for _, a := range c.Actions {
		if a.Type != pool.ActionCreate {
			continue
		}
		keys, ok := union[a.ExecutorID]
		if !ok {
			keys = make(map[string]struct{})
			union[a.ExecutorID] = keys
		}
		for k := range a.Resources.KeySet() {
			keys[k] = struct{}{}
		}
	}

	for execID, keys := range union {
		exec, ok := pre.Executors[execID]
		if !ok {
			continue // already reported above
		}
		declared := exec.Resources.KeySet()
		if len(keys) != len(declared) {
			return &pool.ValidationError{Reason: "Commit contains missing resource"}
		}
		for k := range declared {
			if _, present := keys[k]; !present {
				return &pool.ValidationError{Reason: "Commit contains missing resource"}
			}
		}
	}

	return nil
}
