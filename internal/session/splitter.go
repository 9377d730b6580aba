package session

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// SplitByDay splits a record into one part per local calendar day. A record
// that starts and ends on the same day comes back unchanged as a single
// part. Parts are contiguous, non-overlapping, earliest first, and their
// durations sum to the record's wall-clock span exactly. Every field other
// than ID, StartTime, EndTime, and Duration is copied into each part; the
// final part keeps the original ID.
func SplitByDay(rec Record) []Record {
	// A reversed or empty span cannot be walked day by day; a backwards
	// clock step between invocations can produce one. Such a record comes
	// back unchanged as a single part.
	if !rec.EndTime.After(rec.StartTime) || sameDay(rec.StartTime, rec.EndTime) {
		return []Record{rec}
	}

	var parts []Record
	cursor := rec.StartTime
	for !sameDay(cursor, rec.EndTime) {
		dayEnd := startOfNextDay(cursor)
		part := rec
		part.ID = ulid.Make().String()
		part.StartTime = cursor
		part.EndTime = dayEnd
		part.Duration = dayEnd.Sub(cursor)
		parts = append(parts, part)
		cursor = dayEnd
	}

	last := rec
	last.StartTime = cursor
	last.EndTime = rec.EndTime
	last.Duration = rec.EndTime.Sub(cursor)
	return append(parts, last)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
