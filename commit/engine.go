// Package commit implements the Commit Engine: the transactional
// three-phase pipeline that validates, applies, and arbitrates rejections
// for a submitted pool.Commit.
package commit

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sarnowski/alphatier-go/apply"
	"github.com/sarnowski/alphatier-go/pool"
	"github.com/sarnowski/alphatier-go/store"
)

// Engine runs commits against a store.Store.
type Engine struct {
	logger *slog.Logger
}

// New creates a commit Engine.
func New(opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{logger: cfg.logger}
}

// Commit runs the three-phase pipeline against s's current state, inside
// a single store.Mutate call so the whole pipeline — validation,
// constraint evaluation, and application — is one atomic unit. A
// rejection aborts the mutation (the Store is left unchanged) and
// returns a *pool.RejectedError carrying the partial Result.
func (e *Engine) Commit(s *store.Store, c pool.Commit, opts ...CommitOption) (pool.Result, error) {
	cfg := commitConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	correlationID := uuid.NewString()
	var result pool.Result

	err := s.Mutate(func(base pool.Pool) (pool.Pool, error) {
		preSnap := base.Snapshot()
		result = pool.Result{PreSnapshot: preSnap}

		if err := validate(c, preSnap); err != nil {
			e.logger.Warn("commit failed validation",
				"correlationID", correlationID, "reason", err.Error())
			return base, err
		}

		rejected := make(map[string][]pool.Action)

		if !cfg.force {
			for name, pc := range base.Constraints.Pre {
				if rej := pc(c, preSnap); len(rej) > 0 {
					rejected[name] = append(rejected[name], rej...)
				}
			}
			if shouldAbort(rejected, len(c.Actions), c.AllowPartialCommit) {
				result.RejectedActions = rejected
				e.logger.Warn("commit rejected in pre-constraint phase",
					"correlationID", correlationID, "schedulerID", c.SchedulerID)
				return base, &pool.RejectedError{Result: result}
			}
		}

		preRejectedSet := rejectedSet(rejected)
		next, err := applyAccepted(base, c, preRejectedSet)
		if err != nil {
			return base, err
		}

		// Post-constraints evaluate against the state Step 2 actually
		// produced, per the pipeline's own definition of post_snapshot —
		// this must include every action not rejected in the pre phase,
		// even ones a post-constraint is about to reject.
		postSnap := next.Snapshot()

		if !cfg.force {
			for name, pc := range next.Constraints.Post {
				if rej := pc(c, preSnap, postSnap); len(rej) > 0 {
					rejected[name] = append(rejected[name], rej...)
				}
			}
			if shouldAbort(rejected, len(c.Actions), c.AllowPartialCommit) {
				result.RejectedActions = rejected
				result.PostSnapshot = &postSnap
				e.logger.Warn("commit rejected in post-constraint phase",
					"correlationID", correlationID, "schedulerID", c.SchedulerID)
				return base, &pool.RejectedError{Result: result}
			}
		}

		// A post-constraint may reject actions Step 2 already applied to
		// next. Those rejections must never leave a footprint in the
		// committed pool, so the final state — and the post_snapshot
		// handed back to the caller — is rebuilt from base, skipping
		// every action rejected by either phase, not just the ones known
		// when next was built.
		finalRejectedSet := rejectedSet(rejected)
		final := next
		if len(finalRejectedSet) != len(preRejectedSet) {
			final, err = applyAccepted(base, c, finalRejectedSet)
			if err != nil {
				return base, err
			}
			postSnap = final.Snapshot()
		}
		result.PostSnapshot = &postSnap

		result.RejectedActions = rejected
		result.AcceptedActions = acceptedActions(c.Actions, rejected)

		e.logger.Debug("commit applied",
			"correlationID", correlationID,
			"schedulerID", c.SchedulerID,
			"accepted", len(result.AcceptedActions),
			"rejected", len(finalRejectedSet))

		return final, nil
	})

	if err != nil {
		return result, err
	}
	return result, nil
}

// applyAccepted runs Step 2 of the pipeline: it dispatches every action in
// c.Actions that isn't in skip to the matching apply.* function, in
// submission order, starting from base. It never mutates base itself —
// each apply call returns the next Pool value to fold into the next
// iteration.
func applyAccepted(base pool.Pool, c pool.Commit, skip map[string]bool) (pool.Pool, error) {
	next := base
	for _, a := range c.Actions {
		if skip[actionKey(a)] {
			continue
		}
		var err error
		switch a.Type {
		case pool.ActionCreate:
			next, err = apply.Create(next, c.SchedulerID, a)
		case pool.ActionUpdate:
			next, err = apply.Update(next, c.SchedulerID, a)
		case pool.ActionKill:
			next, err = apply.Kill(next, c.SchedulerID, a)
		}
		if err != nil {
			return base, err
		}
	}
	return next, nil
}

// actionKey is the compound identity used for rejection bookkeeping: an
// action's id plus its type, since a single commit may (illegally, but
// defensively) carry actions of different types that happen to share an
// id.
func actionKey(a pool.Action) string {
	return string(a.Type) + "\x00" + a.ID
}

func rejectedSet(rejected map[string][]pool.Action) map[string]bool {
	set := make(map[string]bool)
	for _, actions := range rejected {
		for _, a := range actions {
			set[actionKey(a)] = true
		}
	}
	return set
}

// shouldAbort implements the rejection arbitration rule: abort iff
// allow_partial_commit and everything was rejected, or iff not
// allow_partial_commit and anything was rejected.
func shouldAbort(rejected map[string][]pool.Action, n int, allowPartial bool) bool {
	r := len(rejectedSet(rejected))
	if allowPartial {
		return r == n
	}
	return r > 0
}

// acceptedActions returns c's actions minus every rejected action,
// preserving commit-submission order.
func acceptedActions(actions []pool.Action, rejected map[string][]pool.Action) []pool.Action {
	skip := rejectedSet(rejected)
	out := make([]pool.Action, 0, len(actions))
	for _, a := range actions {
		if !skip[actionKey(a)] {
			out = append(out, a)
		}
	}
	return out
}
