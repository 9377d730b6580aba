// Package tracker coordinates the per-category timer engines. It is the
// sole writer of timer state: every operation samples the clock once,
// applies pure engine transitions under one lock, persists the result, and
// dispatches the effects afterwards.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flowtrack/internal/category"
	"flowtrack/internal/clock"
	"flowtrack/internal/logging"
	"flowtrack/internal/notify"
	"flowtrack/internal/session"
	"flowtrack/internal/store"
	"flowtrack/internal/timer"
)

// ErrNoOpenSession indicates an end on a category with no open chain.
var ErrNoOpenSession = errors.New("no open session")

// Tracker owns all live timer state.
type Tracker struct {
	mu            sync.Mutex
	store         store.Store
	clock         clock.Clock
	engineCfg     timer.Config
	idleThreshold time.Duration
	notifier      notify.Notifier
	log           *logging.Logger
}

// Options configures a Tracker.
type Options struct {
	Engine        timer.Config
	IdleThreshold time.Duration
	Clock         clock.Clock
	Notifier      notify.Notifier
}

// New creates a Tracker. A nil clock means the system clock; a nil
// notifier means notifications are dropped.
func New(st store.Store, opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	return &Tracker{
		store:         st,
		clock:         opts.Clock,
		engineCfg:     opts.Engine,
		idleThreshold: opts.IdleThreshold,
		notifier:      opts.Notifier,
		log:           logging.New("tracker"),
	}
}

type transition func(s timer.State, now time.Time) (timer.State, []timer.Effect)

// Start begins (or configures and begins) a work segment. When the chain
// is not open, mode and target may reconfigure the timer; mid-chain they
// are ignored so a chain keeps one set of semantics. Starting an already
// active timer is a no-op.
func (t *Tracker) Start(ctx context.Context, cat *category.Category, mode timer.Mode, target time.Duration) (timer.State, error) {
	state, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		if s.Active() {
			return s, nil
		}
		if !s.ChainOpen() {
			if mode.Valid() {
				s = timer.NewState(mode)
			}
			if s.Mode == timer.ModeCountdown && target > 0 {
				s.Target = target
			}
		}
		return timer.Start(s, now, t.engineCfg)
	})
	return state, err
}

// Toggle is the main start/stop action for a category.
func (t *Tracker) Toggle(ctx context.Context, cat *category.Category) (timer.State, error) {
	state, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		return timer.Toggle(s, now, t.engineCfg)
	})
	return state, err
}

// End terminates the chain and stores the resulting records (none when the
// chain is under the emission threshold). The metadata comes from the
// confirmation step; the zero value means skipped.
func (t *Tracker) End(ctx context.Context, cat *category.Category, meta session.Metadata) ([]session.Record, error) {
	var ended bool
	_, stored, err := t.apply(ctx, cat, meta, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		if !s.ChainOpen() {
			return s, nil
		}
		ended = true
		return timer.EndSession(s, now)
	})
	if err != nil {
		return nil, err
	}
	// The catch-up tick may have completed the chain already; its records
	// carry the caller's metadata, so that still counts as a normal end.
	if !ended && len(stored) == 0 {
		return nil, ErrNoOpenSession
	}
	return stored, nil
}

// Reset abandons the chain without a record.
func (t *Tracker) Reset(ctx context.Context, cat *category.Category) error {
	_, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		return timer.Reset(s), nil
	})
	return err
}

// SkipBreak cuts a break short.
func (t *Tracker) SkipBreak(ctx context.Context, cat *category.Category) (timer.State, error) {
	var opErr error
	state, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		next, effects, err := timer.SkipBreak(s, now, t.engineCfg)
		if err != nil {
			opErr = err
			return s, nil
		}
		return next, effects
	})
	if err != nil {
		return state, err
	}
	return state, opErr
}

// ExtendBreak adds d to the remaining break allowance.
func (t *Tracker) ExtendBreak(ctx context.Context, cat *category.Category, d time.Duration) (timer.State, error) {
	var opErr error
	state, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		next, err := timer.ExtendBreak(s, d, now)
		if err != nil {
			opErr = err
			return s, nil
		}
		return next, nil
	})
	if err != nil {
		return state, err
	}
	return state, opErr
}

// Status re-evaluates and returns the category's state without any
// user-driven transition. Automatic transitions still fire.
func (t *Tracker) Status(ctx context.Context, cat *category.Category) (timer.State, error) {
	state, _, err := t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		return s, nil
	})
	return state, err
}

// Now returns the tracker's current time, for rendering live values
// consistently with the states it hands out.
func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

// CompleteTask marks a task done; when the task's category has an open
// chain the completion is recorded into the session.
func (t *Tracker) CompleteTask(ctx context.Context, cat *category.Category, taskID string) (*category.Task, error) {
	task, err := t.store.CompleteTask(ctx, taskID, t.clock.Now())
	if err != nil {
		return nil, err
	}

	_, _, err = t.apply(ctx, cat, session.Metadata{}, func(s timer.State, now time.Time) (timer.State, []timer.Effect) {
		if !s.ChainOpen() {
			return s, nil
		}
		s.CompletedTasks = append(s.CompletedTasks, timer.TaskRef{
			ID:          task.ID,
			Name:        task.Name,
			CompletedAt: task.CompletedAt,
		})
		return s, nil
	})
	return task, err
}

// TickAll re-evaluates every persisted timer state, firing automatic
// transitions. States for deleted categories are ticked too; the engine
// does not care whether the category still exists.
func (t *Tracker) TickAll(ctx context.Context) (map[string]timer.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	states, err := t.store.ListTimerStates(ctx)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	out := make(map[string]timer.State, len(states))
	for categoryID, s := range states {
		next, effects := timer.Tick(s, now, t.engineCfg)
		if len(effects) > 0 {
			if err := t.store.SaveTimerState(ctx, categoryID, next, now); err != nil {
				return nil, fmt.Errorf("save timer state: %w", err)
			}
			if _, err := t.dispatch(ctx, categoryID, t.categoryName(ctx, categoryID), session.Metadata{}, effects); err != nil {
				return nil, err
			}
		}
		out[categoryID] = next
	}
	return out, nil
}

// Active reports whether any category is running or on break; the caller
// uses it to gate its tick loop.
func (t *Tracker) Active(ctx context.Context) (bool, error) {
	states, err := t.store.ListTimerStates(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s.Active() {
			return true, nil
		}
	}
	return false, nil
}

// apply runs one operation against a category's state: load, catch-up
// tick, the operation itself, persist, dispatch. The emission decision
// and the state reset both come from the same pre-reset snapshot carried
// inside the effect.
func (t *Tracker) apply(ctx context.Context, cat *category.Category, meta session.Metadata, op transition) (timer.State, []session.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, found, err := t.store.LoadTimerState(ctx, cat.ID)
	if err != nil {
		return timer.State{}, nil, fmt.Errorf("load timer state: %w", err)
	}
	if !found {
		s = timer.NewState(cat.Mode)
	}
	if err := s.Validate(); err != nil {
		// Malformed persisted state is defaulted, not fatal.
		t.log.Warn("malformed timer state reset", map[string]interface{}{"category": cat.Name}, err)
		s = timer.NewState(cat.Mode)
	}

	now := t.clock.Now()

	// Catch-up: automatic transitions that elapsed since the last
	// invocation fire before the requested operation sees the state.
	s, effects := timer.Tick(s, now, t.engineCfg)

	next, opEffects := op(s, now)
	effects = append(effects, opEffects...)

	if err := t.store.SaveTimerState(ctx, cat.ID, next, now); err != nil {
		return next, nil, fmt.Errorf("save timer state: %w", err)
	}

	stored, err := t.dispatch(ctx, cat.ID, cat.Name, meta, effects)
	return next, stored, err
}

// dispatch performs the side effects a transition requested and returns
// any session records that were stored. A store failure is returned so
// the caller never mistakes a lost chain for a sub-threshold discard;
// notification failures stay local.
func (t *Tracker) dispatch(ctx context.Context, categoryID, categoryName string, meta session.Metadata, effects []timer.Effect) ([]session.Record, error) {
	var stored []session.Record
	for _, effect := range effects {
		switch effect.Kind {
		case timer.EffectSessionEnd:
			candidate, ok := session.Assemble(effect.Snapshot, effect.At)
			if !ok {
				// Below the threshold: silent discard, state stays reset.
				continue
			}
			rec := session.NewRecord(categoryID, candidate, meta, t.idleThreshold)
			parts := session.SplitByDay(rec)
			if err := t.store.AppendSessions(ctx, parts); err != nil {
				t.log.Error("append sessions", map[string]interface{}{"category": categoryName}, err)
				return stored, fmt.Errorf("append sessions: %w", err)
			}
			stored = append(stored, parts...)
			logging.SessionEvent(categoryName, candidate.Focused, candidate.Segments, rec.Flagged)
			func() {
				defer logging.Recover("notify")
				t.notifier.SessionDone(categoryName, candidate.Focused)
			}()

		case timer.EffectNotifyComplete:
			// Covered by the SessionDone signal of the paired session end.

		case timer.EffectNotifyBreakOver:
			func() {
				defer logging.Recover("notify")
				t.notifier.BreakOver(categoryName)
			}()
		}
	}
	return stored, nil
}

func (t *Tracker) categoryName(ctx context.Context, categoryID string) string {
	cat, err := t.store.GetCategory(ctx, categoryID)
	if err != nil {
		// Deleted mid-session; the state is still valid on its own.
		return "(deleted)"
	}
	return cat.Name
}
