package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sarnowski/alphatier-go/constraint"
	"github.com/sarnowski/alphatier-go/pool"
)

func intPtr(v int) *int { return &v }

func TestOptimisticLocking_IgnoresActionsWithoutProbes(t *testing.T) {
	snap := pool.Snapshot{Executors: map[string]pool.Executor{"E1": {ID: "E1", MetadataVersion: 3}}}
	c := pool.Commit{Actions: []pool.Action{{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1"}}}

	rejected := constraint.OptimisticLocking()(c, snap)

	assert.Empty(t, rejected)
}

func TestOptimisticLocking_RejectsStaleExecutorMetadataVersion(t *testing.T) {
	snap := pool.Snapshot{Executors: map[string]pool.Executor{"E1": {ID: "E1", MetadataVersion: 1}}}
	action := pool.Action{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", ExecutorMetadataVersion: intPtr(0)}
	c := pool.Commit{Actions: []pool.Action{action}}

	rejected := constraint.OptimisticLocking()(c, snap)

	assert.Equal(t, []pool.Action{action}, rejected)
}

func TestOptimisticLocking_AcceptsMatchingVersion(t *testing.T) {
	snap := pool.Snapshot{
		Executors: map[string]pool.Executor{"E1": {ID: "E1", TaskIDsVersion: 2}},
		Tasks:     map[string]pool.Task{"t1": {ID: "t1", MetadataVersion: 5}},
	}
	c := pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionUpdate, MetadataVersion: intPtr(5)},
		{ID: "t2", Type: pool.ActionCreate, ExecutorID: "E1", ExecutorTaskIDsVersion: intPtr(2)},
	}}

	rejected := constraint.OptimisticLocking()(c, snap)

	assert.Empty(t, rejected)
}

func TestNoResourceOverbooking_AcceptsWithinCapacity(t *testing.T) {
	pre := pool.Snapshot{Executors: map[string]pool.Executor{"E1": {ID: "E1", Resources: pool.Resources{"cpu": 8, "memory": 100}}}}
	c := pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 25}},
	}}

	rejected := constraint.NoResourceOverbooking()(c, pre, pool.Snapshot{})

	assert.Empty(t, rejected)
}

func TestNoResourceOverbooking_StickyRejectionWithinCommit(t *testing.T) {
	pre := pool.Snapshot{Executors: map[string]pool.Executor{"E1": {ID: "E1", Resources: pool.Resources{"cpu": 8, "memory": 100}}}}
	a1 := pool.Action{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 50}}
	a2 := pool.Action{ID: "t2", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 50}}
	a3 := pool.Action{ID: "t3", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 1}}
	c := pool.Commit{Actions: []pool.Action{a1, a2, a3}}

	rejected := constraint.NoResourceOverbooking()(c, pre, pool.Snapshot{})

	assert.Equal(t, []pool.Action{a3}, rejected)
}

func TestNoResourceOverbooking_CountsPreExistingTasks(t *testing.T) {
	pre := pool.Snapshot{
		Executors: map[string]pool.Executor{"E1": {ID: "E1", Resources: pool.Resources{"cpu": 8, "memory": 100}}},
		Tasks:     map[string]pool.Task{"existing": {ID: "existing", ExecutorID: "E1", Resources: pool.Resources{"cpu": 0, "memory": 90}}},
	}
	a1 := pool.Action{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 20}}
	c := pool.Commit{Actions: []pool.Action{a1}}

	rejected := constraint.NoResourceOverbooking()(c, pre, pool.Snapshot{})

	assert.Equal(t, []pool.Action{a1}, rejected)
}
