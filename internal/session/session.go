// Package session turns finished timer chains into stored session records.
package session

import (
	"time"

	"github.com/oklog/ulid/v2"

	"flowtrack/internal/timer"
)

// Record is one stored focus session. Append-only once persisted; only
// Notes may change afterwards.
type Record struct {
	ID         string
	CategoryID string

	// StartTime/EndTime bound this record; after a midnight split they
	// cover a single local calendar day.
	StartTime time.Time
	EndTime   time.Time

	// Duration is the focused work within the record.
	Duration time.Duration
	// TotalElapsed is the wall-clock span of the whole chain, breaks and
	// pauses included.
	TotalElapsed time.Duration
	// SessionStart is the first start of the chain, shared by split parts.
	SessionStart time.Time

	Mode     timer.Mode
	Segments int

	Rating          int // 1..5, 0 = skipped
	Tags            []string
	Distractions    []string
	DistractionNote string
	Notes           string
	CompletedTasks  []timer.TaskRef

	// Flagged marks a duration above the idle threshold, suggesting an
	// unattended timer.
	Flagged bool
}

// Metadata is what the confirmation step attaches to a candidate.
// The zero value is the "skipped" form.
type Metadata struct {
	Rating          int
	Tags            []string
	Distractions    []string
	DistractionNote string
	Notes           string
}

// NewRecord builds a persistable record from an assembled candidate.
// idleThreshold controls the flag rule; zero disables flagging.
func NewRecord(categoryID string, c Candidate, meta Metadata, idleThreshold time.Duration) Record {
	if meta.Rating < 0 || meta.Rating > 5 {
		meta.Rating = 0
	}
	return Record{
		ID:              ulid.Make().String(),
		CategoryID:      categoryID,
		StartTime:       c.Start,
		EndTime:         c.End,
		Duration:        c.Focused,
		TotalElapsed:    c.TotalElapsed,
		SessionStart:    c.Start,
		Mode:            c.Mode,
		Segments:        c.Segments,
		Rating:          meta.Rating,
		Tags:            meta.Tags,
		Distractions:    meta.Distractions,
		DistractionNote: meta.DistractionNote,
		Notes:           meta.Notes,
		CompletedTasks:  c.CompletedTasks,
		Flagged:         idleThreshold > 0 && c.Focused > idleThreshold,
	}
}
