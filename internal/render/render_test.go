package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flowtrack/internal/category"
	"flowtrack/internal/session"
	"flowtrack/internal/stats"
	"flowtrack/internal/timer"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{500 * time.Millisecond, "1s"}, // rounds up
		{time.Second, "1s"},
		{90 * time.Second, "1m30s"},
		{25 * time.Minute, "25m00s"},
		{time.Hour + 5*time.Minute, "1h05m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), "%v", tt.d)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdefghij", 2))
}

func TestStatusPlain(t *testing.T) {
	r := New(false)
	cat := &category.Category{Name: "writing", Mode: timer.ModeFlow}
	now := time.Date(2026, 3, 14, 9, 0, 30, 0, time.Local)
	s := timer.State{Mode: timer.ModeFlow, Status: timer.StatusRunning, StartedAt: now.Add(-30 * time.Second)}

	out := r.Status(cat, s, now)
	assert.Contains(t, out, "category=writing")
	assert.Contains(t, out, "status=running")
	assert.Contains(t, out, "elapsed=30s")
}

func TestSessionsPlain(t *testing.T) {
	r := New(false)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	recs := []*session.Record{{
		ID:         "01HXAMPLEID",
		CategoryID: "c1",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Duration:   30 * time.Minute,
		Segments:   2,
	}}

	out := r.Sessions(recs, map[string]string{"c1": "writing"})
	assert.Contains(t, out, "writing")
	assert.Contains(t, out, "30m00s")
	assert.Contains(t, out, "segments=2")

	assert.Equal(t, "No sessions found", r.Sessions(nil, nil))
}

func TestStatsPlain(t *testing.T) {
	r := New(false)
	sum := stats.Summary{
		Focused:  time.Hour,
		Sessions: 2,
		Categories: []stats.CategoryTotal{
			{Name: "writing", Focused: time.Hour, Sessions: 2},
		},
	}

	out := r.Stats(sum)
	assert.Contains(t, out, "focused=1h00m")
	assert.Contains(t, out, "writing")

	assert.Equal(t, "No sessions found", r.Stats(stats.Summary{}))
}

func TestStreakPlain(t *testing.T) {
	r := New(false)
	assert.Equal(t, "current=3 best=7\n", r.Streak(stats.Streak{Current: 3, Best: 7}))
}
