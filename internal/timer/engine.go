package timer

import (
	"errors"
	"fmt"
	"time"
)

// Default engine settings, applied when the configured values are unusable.
const (
	DefaultFlowDivisor = 5
	DefaultTarget      = 25 * time.Minute
)

// ErrIllegalTransition indicates an operation that is not legal from the
// current status.
var ErrIllegalTransition = errors.New("illegal transition")

// IllegalTransitionError wraps ErrIllegalTransition with operation details.
type IllegalTransitionError struct {
	Op     string
	Status Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.Status)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// Config holds the engine settings that shape transitions.
type Config struct {
	// FlowDivisor sets break = work / FlowDivisor after a flow segment.
	FlowDivisor int
	// DefaultTarget is the countdown goal used when none is set.
	DefaultTarget time.Duration
}

func (c Config) normalized() Config {
	if c.FlowDivisor <= 0 {
		c.FlowDivisor = DefaultFlowDivisor
	}
	if c.DefaultTarget <= 0 {
		c.DefaultTarget = DefaultTarget
	}
	return c
}

// sinceStart is the elapsed time of the current segment. A missing
// StartedAt contributes zero rather than failing.
func sinceStart(s State, now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Start begins a work segment from idle. Re-entrant starts keep the chain
// origin: SessionStartedAt is only set when absent.
func Start(s State, now time.Time, cfg Config) (State, []Effect) {
	cfg = cfg.normalized()

	s.Status = StatusRunning
	s.StartedAt = now
	s.BreakRemaining = 0
	if s.SessionStartedAt.IsZero() {
		s.SessionStartedAt = now
	}
	switch s.Mode {
	case ModeCountdown:
		if s.Target <= 0 {
			s.Target = cfg.DefaultTarget
		}
		// Accumulated carries over from a paused segment in the same chain.
	default:
		s.Accumulated = 0
	}
	return s, nil
}

// Toggle is the single start/stop action. What it does depends on status
// and mode: flow running goes to break, countdown running pauses, break
// resumes, and anything else starts a segment.
func Toggle(s State, now time.Time, cfg Config) (State, []Effect) {
	cfg = cfg.normalized()

	switch s.Status {
	case StatusRunning:
		if s.Mode == ModeCountdown {
			s.Accumulated += sinceStart(s, now)
			s.StartedAt = time.Time{}
			s.Status = StatusPaused
			return s, nil
		}
		interval := sinceStart(s, now)
		s.Intervals = append(s.Intervals, interval)
		s.BreakRemaining = interval / time.Duration(cfg.FlowDivisor)
		s.StartedAt = now
		s.Accumulated = 0
		s.Status = StatusBreak
		return s, nil

	case StatusBreak:
		// Resume: a fresh flow work interval begins.
		s.BreakRemaining = 0
		s.StartedAt = now
		s.Accumulated = 0
		s.Status = StatusRunning
		return s, nil

	default:
		// Idle, paused, or anything unrecognized starts a segment.
		return Start(s, now, cfg)
	}
}

// EndSession terminates the chain. The returned effect carries a snapshot
// of the pre-reset state; the reset is unconditional so the emission
// decision and the reset come from the same snapshot.
func EndSession(s State, now time.Time) (State, []Effect) {
	snap := s.clone()
	return NewState(s.Mode), []Effect{{Kind: EffectSessionEnd, Snapshot: snap, At: now}}
}

// Reset abandons the chain without emitting a session.
func Reset(s State) State {
	return NewState(s.Mode)
}

// SkipBreak cuts a break short and starts the next work segment.
func SkipBreak(s State, now time.Time, cfg Config) (State, []Effect, error) {
	if s.Status != StatusBreak {
		return s, nil, &IllegalTransitionError{Op: "skip break", Status: s.Status}
	}
	next, effects := Toggle(s, now, cfg)
	return next, effects, nil
}

// ExtendBreak adds d to the remaining break allowance.
func ExtendBreak(s State, d time.Duration, now time.Time) (State, error) {
	if s.Status != StatusBreak {
		return s, &IllegalTransitionError{Op: "extend break", Status: s.Status}
	}
	if d < 0 {
		d = 0
	}
	remaining := s.BreakRemaining - sinceStart(s, now)
	if remaining < 0 {
		remaining = 0
	}
	s.BreakRemaining = remaining + d
	s.StartedAt = now
	return s, nil
}

// Tick re-evaluates the state against now and fires automatic transitions:
// countdown completion and break expiry. It is idempotent; ticking an idle
// or paused state is a no-op.
func Tick(s State, now time.Time, cfg Config) (State, []Effect) {
	switch s.Status {
	case StatusRunning:
		if s.Mode != ModeCountdown || s.Target <= 0 {
			return s, nil
		}
		if s.Accumulated+sinceStart(s, now) < s.Target {
			return s, nil
		}
		// A late tick completes at the instant the target was reached, so
		// only the target's worth of work is credited.
		done := now
		if !s.StartedAt.IsZero() {
			if at := s.StartedAt.Add(s.Target - s.Accumulated); at.Before(done) {
				done = at
			}
		}
		next, effects := EndSession(s, done)
		return next, append([]Effect{{Kind: EffectNotifyComplete, At: done}}, effects...)

	case StatusBreak:
		if s.BreakRemaining-sinceStart(s, now) > 0 {
			return s, nil
		}
		// Break expired: back to idle without finalizing the chain.
		// Banked intervals and the chain origin are preserved for a later
		// resumption; only the segment clock and allowance are cleared.
		s.Status = StatusIdle
		s.StartedAt = time.Time{}
		s.BreakRemaining = 0
		return s, []Effect{{Kind: EffectNotifyBreakOver, At: now}}

	default:
		return s, nil
	}
}

// Elapsed is the non-mutating display value: banked plus live work while
// running, remaining allowance while on break, banked work otherwise.
func Elapsed(s State, now time.Time) time.Duration {
	switch s.Status {
	case StatusRunning:
		return s.Accumulated + sinceStart(s, now)
	case StatusBreak:
		remaining := s.BreakRemaining - sinceStart(s, now)
		if remaining < 0 {
			return 0
		}
		return remaining
	default:
		return s.Accumulated
	}
}

// Remaining is the countdown display transform: target minus elapsed,
// floored at zero. While on break, elapsed already is the remaining break.
func Remaining(s State, now time.Time) time.Duration {
	if s.Status == StatusBreak {
		return Elapsed(s, now)
	}
	remaining := s.Target - Elapsed(s, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
