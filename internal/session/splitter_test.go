package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrack/internal/timer"
)

func span(t *testing.T, start, end time.Time) Record {
	t.Helper()
	return Record{
		ID:           "orig",
		CategoryID:   "cat",
		StartTime:    start,
		EndTime:      end,
		Duration:     end.Sub(start),
		TotalElapsed: end.Sub(start),
		SessionStart: start,
		Mode:         timer.ModeFlow,
		Segments:     2,
		Tags:         []string{"deep"},
		Notes:        "late night",
	}
}

func TestSplitSameDayUnchanged(t *testing.T) {
	rec := span(t, time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local), time.Date(2026, 3, 14, 10, 30, 0, 0, time.Local))

	parts := SplitByDay(rec)
	require.Len(t, parts, 1)
	assert.Equal(t, rec, parts[0])
}

func TestSplitReversedSpanUnchanged(t *testing.T) {
	// A backwards system-clock step can persist a start after the end;
	// such a span cannot be walked day by day and must come back whole.
	rec := span(t, time.Date(2026, 3, 15, 9, 0, 0, 0, time.Local), time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	parts := SplitByDay(rec)
	require.Len(t, parts, 1)
	assert.Equal(t, rec, parts[0])
}

func TestSplitAcrossMidnight(t *testing.T) {
	start := time.Date(2026, 3, 14, 23, 30, 0, 0, time.Local)
	end := time.Date(2026, 3, 15, 0, 45, 0, 0, time.Local)
	rec := span(t, start, end)

	parts := SplitByDay(rec)
	require.Len(t, parts, 2)

	assert.Equal(t, start, parts[0].StartTime)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), parts[0].EndTime)
	assert.Equal(t, 30*time.Minute, parts[0].Duration)
	assert.NotEqual(t, "orig", parts[0].ID, "earlier parts get fresh identities")

	assert.Equal(t, parts[0].EndTime, parts[1].StartTime, "parts are contiguous")
	assert.Equal(t, end, parts[1].EndTime)
	assert.Equal(t, 45*time.Minute, parts[1].Duration)
	assert.Equal(t, "orig", parts[1].ID)

	assert.Equal(t, end.Sub(start), parts[0].Duration+parts[1].Duration)
}

func TestSplitCopiesSharedFields(t *testing.T) {
	start := time.Date(2026, 3, 14, 23, 0, 0, 0, time.Local)
	rec := span(t, start, start.Add(2*time.Hour))

	for _, part := range SplitByDay(rec) {
		assert.Equal(t, rec.CategoryID, part.CategoryID)
		assert.Equal(t, rec.Mode, part.Mode)
		assert.Equal(t, rec.Segments, part.Segments)
		assert.Equal(t, rec.Tags, part.Tags)
		assert.Equal(t, rec.Notes, part.Notes)
		assert.Equal(t, rec.SessionStart, part.SessionStart)
		assert.Equal(t, rec.TotalElapsed, part.TotalElapsed)
	}
}

func TestSplitMultiDay(t *testing.T) {
	start := time.Date(2026, 3, 13, 22, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 16, 3, 0, 0, 0, time.Local)
	rec := span(t, start, end)

	parts := SplitByDay(rec)
	require.Len(t, parts, 4)

	var total time.Duration
	for i, part := range parts {
		total += part.Duration
		if i > 0 {
			assert.Equal(t, parts[i-1].EndTime, part.StartTime)
		}
	}
	assert.Equal(t, end.Sub(start), total)
	assert.Equal(t, start, parts[0].StartTime)
	assert.Equal(t, end, parts[3].EndTime)
}
