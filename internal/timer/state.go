// Package timer implements the per-category timer state machine.
// All transitions are pure functions over State so the tracker can apply
// them under a single lock and dispatch the resulting effects afterwards.
package timer

import (
	"fmt"
	"time"
)

// Mode selects the transition semantics for a category's timer.
type Mode string

const (
	// ModeFlow runs work segments of arbitrary length, each followed by a
	// break proportional to the segment (break = work / divisor).
	ModeFlow Mode = "flow"
	// ModeCountdown runs toward a fixed target with pause/resume and no
	// automatic break.
	ModeCountdown Mode = "countdown"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFlow || m == ModeCountdown
}

// Status drives which transitions are legal.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusBreak   Status = "break"
)

// TaskRef records a task completed while a session chain was open.
type TaskRef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completed_at"`
}

// State is the live timer state for one category. The zero value is a
// flow-mode idle timer. Zero time values mean "absent".
type State struct {
	Mode   Mode   `json:"mode"`
	Status Status `json:"status"`

	// StartedAt is when the current running/break segment began.
	StartedAt time.Time `json:"started_at,omitzero"`
	// SessionStartedAt is when the first running segment of the current
	// chain began; fixed until the chain ends.
	SessionStartedAt time.Time `json:"session_started_at,omitzero"`

	// Accumulated is work banked from completed countdown segments,
	// excluding the currently running one.
	Accumulated time.Duration `json:"accumulated"`
	// Target is the countdown goal; zero in flow mode.
	Target time.Duration `json:"target,omitempty"`
	// BreakRemaining is the break allowance set when entering a break.
	BreakRemaining time.Duration `json:"break_remaining,omitempty"`

	// Intervals holds each completed flow work segment, oldest first.
	Intervals []time.Duration `json:"intervals,omitempty"`
	// CompletedTasks accrued during the open chain.
	CompletedTasks []TaskRef `json:"completed_tasks,omitempty"`
}

// NewState returns an idle state for the given mode. Unknown modes fall
// back to flow.
func NewState(mode Mode) State {
	if !mode.Valid() {
		mode = ModeFlow
	}
	return State{Mode: mode, Status: StatusIdle}
}

// Active reports whether the timer is ticking (running or on break).
func (s State) Active() bool {
	return s.Status == StatusRunning || s.Status == StatusBreak
}

// ChainOpen reports whether a session chain is open: the timer is not idle,
// or banked work from an earlier segment is still pending an end.
func (s State) ChainOpen() bool {
	return s.Status != StatusIdle || s.Accumulated > 0 || len(s.Intervals) > 0
}

// Validate checks the state invariants and returns the first violation.
func (s State) Validate() error {
	if s.Status != StatusIdle && s.Status != StatusRunning && s.Status != StatusPaused && s.Status != StatusBreak {
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if s.Active() != !s.StartedAt.IsZero() {
		return fmt.Errorf("started_at set=%v but status is %q", !s.StartedAt.IsZero(), s.Status)
	}
	if s.ChainOpen() && s.SessionStartedAt.IsZero() {
		return fmt.Errorf("chain open with no session start")
	}
	if s.Accumulated < 0 {
		return fmt.Errorf("negative accumulated time %v", s.Accumulated)
	}
	if s.Mode == ModeCountdown && len(s.Intervals) > 0 {
		return fmt.Errorf("countdown state holds %d flow intervals", len(s.Intervals))
	}
	if s.BreakRemaining != 0 && s.Status != StatusBreak {
		return fmt.Errorf("break remaining set while status is %q", s.Status)
	}
	return nil
}

// clone returns a deep copy so snapshots are not aliased by later mutation.
func (s State) clone() State {
	c := s
	if s.Intervals != nil {
		c.Intervals = append([]time.Duration(nil), s.Intervals...)
	}
	if s.CompletedTasks != nil {
		c.CompletedTasks = append([]TaskRef(nil), s.CompletedTasks...)
	}
	return c
}
