package session

import (
	"time"

	"flowtrack/internal/timer"
)

// MinFocused is the emission threshold: chains with this much focused work
// or less are discarded silently. Short accidental starts never become
// records.
const MinFocused = time.Second

// Candidate is an assembled but not yet confirmed session.
type Candidate struct {
	Focused        time.Duration
	TotalElapsed   time.Duration
	Segments       int
	Start          time.Time
	End            time.Time
	Mode           timer.Mode
	CompletedTasks []timer.TaskRef
}

// Assemble aggregates a terminated chain's snapshot into a candidate.
// The boolean is false when the chain is below the emission threshold.
// The snapshot must be taken before the state reset; Assemble never
// mutates it.
func Assemble(snap timer.State, now time.Time) (Candidate, bool) {
	// Only a segment that was still running contributes live work; a break
	// or pause adds nothing further.
	var liveWork time.Duration
	if snap.Status == timer.StatusRunning && !snap.StartedAt.IsZero() {
		liveWork = now.Sub(snap.StartedAt)
	}

	focused := snap.Accumulated + liveWork
	for _, interval := range snap.Intervals {
		focused += interval
	}
	if focused <= MinFocused {
		return Candidate{}, false
	}

	segments := len(snap.Intervals)
	if liveWork+snap.Accumulated > 0 {
		segments++
	}
	if segments == 0 {
		segments = 1
	}

	// Resolution order for a malformed state: chain origin, then the
	// current segment start, then now.
	start := snap.SessionStartedAt
	if start.IsZero() {
		start = snap.StartedAt
	}
	if start.IsZero() {
		start = now
	}

	return Candidate{
		Focused:        focused,
		TotalElapsed:   now.Sub(start),
		Segments:       segments,
		Start:          start,
		End:            now,
		Mode:           snap.Mode,
		CompletedTasks: snap.CompletedTasks,
	}, true
}
