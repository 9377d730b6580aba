// Package stats aggregates stored sessions into daily totals, per-category
// totals, and focus streaks. Sessions are day-bounded by the midnight
// splitter, so a day bucket is a plain sum over records starting that day.
package stats

import (
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"flowtrack/internal/session"
)

// DayTotal is the focused time recorded on one local day.
type DayTotal struct {
	Day      time.Time
	Focused  time.Duration
	Sessions int
	Flagged  int
}

// CategoryTotal aggregates one category over the queried range.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Focused    time.Duration
	Sessions   int
	Flagged    int
	Segments   int
}

// Summary is the full aggregation handed to the renderer.
type Summary struct {
	Focused    time.Duration
	Sessions   int
	Flagged    int
	Days       []DayTotal
	Categories []CategoryTotal
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MatchCategory reports whether a category name matches a doublestar
// pattern. An empty pattern matches everything; a pattern that is not
// valid glob syntax falls back to an exact name comparison.
func MatchCategory(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return ok
}

// Filter keeps the records whose category name matches the pattern.
// Records for deleted categories have no name and only match the empty
// pattern.
func Filter(records []*session.Record, names map[string]string, pattern string) []*session.Record {
	if pattern == "" {
		return records
	}
	out := make([]*session.Record, 0, len(records))
	for _, r := range records {
		if MatchCategory(pattern, names[r.CategoryID]) {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate builds the summary for a set of records. Day and category
// buckets come back sorted, days ascending and categories by focused
// time descending.
func Aggregate(records []*session.Record, names map[string]string) Summary {
	var sum Summary
	days := make(map[time.Time]*DayTotal)
	cats := make(map[string]*CategoryTotal)

	for _, r := range records {
		sum.Focused += r.Duration
		sum.Sessions++
		if r.Flagged {
			sum.Flagged++
		}

		day := dayOf(r.StartTime)
		d, ok := days[day]
		if !ok {
			d = &DayTotal{Day: day}
			days[day] = d
		}
		d.Focused += r.Duration
		d.Sessions++
		if r.Flagged {
			d.Flagged++
		}

		c, ok := cats[r.CategoryID]
		if !ok {
			name := names[r.CategoryID]
			if name == "" {
				name = "(deleted)"
			}
			c = &CategoryTotal{CategoryID: r.CategoryID, Name: name}
			cats[r.CategoryID] = c
		}
		c.Focused += r.Duration
		c.Sessions++
		c.Segments += r.Segments
		if r.Flagged {
			c.Flagged++
		}
	}

	for _, d := range days {
		sum.Days = append(sum.Days, *d)
	}
	sort.Slice(sum.Days, func(i, j int) bool { return sum.Days[i].Day.Before(sum.Days[j].Day) })

	for _, c := range cats {
		sum.Categories = append(sum.Categories, *c)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		if sum.Categories[i].Focused != sum.Categories[j].Focused {
			return sum.Categories[i].Focused > sum.Categories[j].Focused
		}
		return sum.Categories[i].Name < sum.Categories[j].Name
	})

	return sum
}

// Streak holds the consecutive-day focus streaks as of a reference day.
type Streak struct {
	Current int
	Best    int
}

// Streaks computes the current and best run of consecutive local days
// with any recorded focus time. A day with no record yet today does not
// break the current streak; a gap before yesterday does.
func Streaks(records []*session.Record, today time.Time) Streak {
	if len(records) == 0 {
		return Streak{}
	}

	seen := make(map[time.Time]bool, len(records))
	for _, r := range records {
		seen[dayOf(r.StartTime)] = true
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var st Streak
	run := 1
	st.Best = 1
	for i := 1; i < len(days); i++ {
		// AddDate rather than 24h arithmetic so DST days still chain.
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > st.Best {
			st.Best = run
		}
	}

	// The trailing run only counts as current if it reaches today or
	// yesterday.
	ref := dayOf(today)
	last := days[len(days)-1]
	if last.Equal(ref) || last.Equal(ref.AddDate(0, 0, -1)) {
		st.Current = run
	}
	return st
}
