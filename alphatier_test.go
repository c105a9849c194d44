package alphatier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alphatier "github.com/sarnowski/alphatier-go"
	"github.com/sarnowski/alphatier-go/executor"
	"github.com/sarnowski/alphatier-go/pool"
)

func TestNewPool_InstallsBuiltinConstraints(t *testing.T) {
	a := alphatier.NewPool()

	require.NoError(t, a.RegisterExecutor("E1", pool.Resources{"cpu": 1}, executor.RegisterOptions{}))

	_, err := a.Commit(pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 2}},
	}})

	var rejected *pool.RejectedError
	require.ErrorAs(t, err, &rejected)
}

func TestAlphatier_EndToEndCreateAndKill(t *testing.T) {
	a := alphatier.NewPool()
	require.NoError(t, a.RegisterExecutor("E1", pool.Resources{"cpu": 8, "memory": 100}, executor.RegisterOptions{}))

	result, err := a.Commit(pool.Commit{SchedulerID: "sched-a", Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1, "memory": 25}},
	}})
	require.NoError(t, err)
	assert.Len(t, result.AcceptedActions, 1)

	require.NoError(t, a.UpdateTask("t1", pool.PhaseKill, nil))
	require.NoError(t, a.KillTask("t1"))

	snap := a.Snapshot()
	assert.NotContains(t, snap.Tasks, "t1")
	assert.NotContains(t, snap.Executors["E1"].TaskIDs, "t1")
}

func TestCreateWithSnapshot_RebuildsWithDefaultConstraintsOnly(t *testing.T) {
	a := alphatier.NewPool()
	require.NoError(t, a.RegisterExecutor("E1", pool.Resources{"cpu": 8}, executor.RegisterOptions{}))
	_, err := a.Commit(pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1}},
	}})
	require.NoError(t, err)

	snap := a.Snapshot()
	rebuilt := alphatier.CreateWithSnapshot(snap)

	rebuiltSnap := rebuilt.Snapshot()
	assert.Equal(t, snap.Executors, rebuiltSnap.Executors)
	assert.Equal(t, snap.Tasks, rebuiltSnap.Tasks)

	// default built-ins are still installed on the rebuilt pool
	_, err = rebuilt.Commit(pool.Commit{Actions: []pool.Action{
		{ID: "t2", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 100}},
	}})
	var rejected *pool.RejectedError
	require.ErrorAs(t, err, &rejected)
}

func TestAlphatier_Stats(t *testing.T) {
	a := alphatier.NewPool()
	require.NoError(t, a.RegisterExecutor("E1", pool.Resources{"cpu": 8}, executor.RegisterOptions{}))

	stats := a.Stats()

	assert.Equal(t, 1, stats.ExecutorCount)
	assert.Equal(t, 0, stats.TaskCount)
}

func TestAlphatier_AddAndDelConstraint(t *testing.T) {
	a := alphatier.NewPool()
	require.NoError(t, a.RegisterExecutor("E1", pool.Resources{"cpu": 8}, executor.RegisterOptions{}))

	blockAll := pool.PreConstraint(func(c pool.Commit, pre pool.Snapshot) []pool.Action {
		return c.Actions
	})
	require.NoError(t, a.AddConstraint(pool.KindPre, "block-all", blockAll))

	_, err := a.Commit(pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1}},
	}})
	require.Error(t, err)

	require.NoError(t, a.DelConstraint(pool.KindPre, "block-all"))

	_, err = a.Commit(pool.Commit{Actions: []pool.Action{
		{ID: "t1", Type: pool.ActionCreate, ExecutorID: "E1", Resources: pool.Resources{"cpu": 1}},
	}})
	require.NoError(t, err)
}
