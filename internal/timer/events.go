package timer

import "time"

// EffectKind identifies a side effect requested by a transition.
type EffectKind string

const (
	// EffectSessionEnd asks the caller to assemble a session from the
	// snapshot taken before the state was reset.
	EffectSessionEnd EffectKind = "session_end"
	// EffectNotifyComplete signals a countdown reached its target.
	EffectNotifyComplete EffectKind = "notify_complete"
	// EffectNotifyBreakOver signals a break allowance ran out.
	EffectNotifyBreakOver EffectKind = "notify_break_over"
)

// Effect is an output of a transition. Transitions never perform side
// effects themselves; the caller dispatches these after the new state is
// committed.
type Effect struct {
	Kind EffectKind
	// Snapshot is the pre-reset state for EffectSessionEnd.
	Snapshot State
	// At is the time the transition was evaluated with.
	At time.Time
}
