// Package render provides output formatting for terminal consumption.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"flowtrack/internal/category"
	"flowtrack/internal/session"
	"flowtrack/internal/stats"
	"flowtrack/internal/timer"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Status formats the timer state for one category.
func (r *Renderer) Status(cat *category.Category, s timer.State, now time.Time) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("%s", cat.Name) + "\n")
		sb.WriteString(strings.Repeat("─", 40) + "\n")
		fmt.Fprintf(&sb, "  Mode:    %s\n", s.Mode)
		fmt.Fprintf(&sb, "  Status:  %s\n", r.statusWord(s.Status))
		r.statusClock(&sb, s, now)
		if s.ChainOpen() && !s.SessionStartedAt.IsZero() {
			fmt.Fprintf(&sb, "  Since:   %s\n", s.SessionStartedAt.Format("15:04"))
		}
		if n := len(s.CompletedTasks); n > 0 {
			fmt.Fprintf(&sb, "  Tasks:   %d done this session\n", n)
		}
	} else {
		fmt.Fprintf(&sb, "category=%s mode=%s status=%s elapsed=%s",
			cat.Name, s.Mode, s.Status, FormatDuration(timer.Elapsed(s, now)))
		if s.Mode == timer.ModeCountdown || s.Status == timer.StatusBreak {
			fmt.Fprintf(&sb, " remaining=%s", FormatDuration(timer.Remaining(s, now)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *Renderer) statusWord(st timer.Status) string {
	switch st {
	case timer.StatusRunning:
		return color.GreenString("running")
	case timer.StatusBreak:
		return color.YellowString("break")
	case timer.StatusPaused:
		return color.HiBlackString("paused")
	default:
		return color.HiBlackString("idle")
	}
}

func (r *Renderer) statusClock(sb *strings.Builder, s timer.State, now time.Time) {
	switch {
	case s.Status == timer.StatusBreak:
		fmt.Fprintf(sb, "  Break:   %s left\n", FormatDuration(timer.Remaining(s, now)))
	case s.Mode == timer.ModeCountdown:
		fmt.Fprintf(sb, "  Elapsed: %s / %s\n",
			FormatDuration(timer.Elapsed(s, now)), FormatDuration(s.Target))
	default:
		fmt.Fprintf(sb, "  Elapsed: %s\n", FormatDuration(timer.Elapsed(s, now)))
	}
}

// Sessions formats a history listing. Names maps category IDs to names.
func (r *Renderer) Sessions(records []*session.Record, names map[string]string) string {
	if len(records) == 0 {
		return "No sessions found"
	}

	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("History\n"))
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}

	for _, rec := range records {
		r.formatSession(&sb, rec, names[rec.CategoryID])
	}

	return sb.String()
}

func (r *Renderer) formatSession(sb *strings.Builder, rec *session.Record, name string) {
	if name == "" {
		name = "(deleted)"
	}
	day := rec.StartTime.Format("Jan 02")
	span := fmt.Sprintf("%s–%s", rec.StartTime.Format("15:04"), rec.EndTime.Format("15:04"))

	flag := ""
	if rec.Flagged {
		flag = " " + color.YellowString("⚑")
	}

	if r.pretty {
		fmt.Fprintf(sb, "%s %s %s  %s  %s%s", color.HiBlackString(rec.ID[:8]), day, span,
			FormatDuration(rec.Duration), name, flag)
		if rec.Rating > 0 {
			fmt.Fprintf(sb, "  %s", strings.Repeat("★", rec.Rating))
		}
		sb.WriteString("\n")
		if rec.Notes != "" {
			fmt.Fprintf(sb, "    %s\n", color.HiBlackString(Truncate(rec.Notes, 70)))
		}
	} else {
		fmt.Fprintf(sb, "[%s] %s %s %s segments=%d flagged=%v\n",
			rec.ID, rec.StartTime.Format(time.RFC3339), name,
			FormatDuration(rec.Duration), rec.Segments, rec.Flagged)
	}
}

// Stats formats an aggregation summary.
func (r *Renderer) Stats(sum stats.Summary) string {
	if sum.Sessions == 0 {
		return "No sessions found"
	}

	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Focus Stats\n"))
		sb.WriteString(strings.Repeat("─", 40) + "\n")
		fmt.Fprintf(&sb, "  Focused:  %s over %d sessions\n", FormatDuration(sum.Focused), sum.Sessions)
		if sum.Flagged > 0 {
			fmt.Fprintf(&sb, "  Flagged:  %s\n", color.YellowString("%d", sum.Flagged))
		}
		sb.WriteString("\n")
		for _, c := range sum.Categories {
			fmt.Fprintf(&sb, "  %-20s %8s  %d sessions\n", Truncate(c.Name, 20), FormatDuration(c.Focused), c.Sessions)
		}
		if len(sum.Days) > 1 {
			sb.WriteString("\n")
			for _, d := range sum.Days {
				fmt.Fprintf(&sb, "  %s  %s\n", d.Day.Format("Mon Jan 02"), FormatDuration(d.Focused))
			}
		}
	} else {
		fmt.Fprintf(&sb, "focused=%s sessions=%d flagged=%d\n", FormatDuration(sum.Focused), sum.Sessions, sum.Flagged)
		for _, c := range sum.Categories {
			fmt.Fprintf(&sb, "%s %s %d\n", c.Name, FormatDuration(c.Focused), c.Sessions)
		}
	}

	return sb.String()
}

// Streak formats the streak counters.
func (r *Renderer) Streak(st stats.Streak) string {
	if r.pretty {
		flame := ""
		if st.Current > 0 {
			flame = " 🔥"
		}
		return fmt.Sprintf("Current streak: %s%s\nBest streak:    %d days\n",
			color.GreenString("%d days", st.Current), flame, st.Best)
	}
	return fmt.Sprintf("current=%d best=%d\n", st.Current, st.Best)
}

// Categories formats the category listing.
func (r *Renderer) Categories(cats []category.Category) string {
	if len(cats) == 0 {
		return "No categories found"
	}

	var sb strings.Builder
	for _, c := range cats {
		archived := ""
		if c.Archived {
			archived = " (archived)"
		}
		if r.pretty {
			fmt.Fprintf(&sb, "%s %-20s %s%s\n", color.HiBlackString(c.ID[:8]), c.Name, c.Mode, archived)
		} else {
			fmt.Fprintf(&sb, "%s %s %s%s\n", c.ID, c.Name, c.Mode, archived)
		}
	}
	return sb.String()
}

// Tasks formats the task listing for one category.
func (r *Renderer) Tasks(tasks []category.Task) string {
	if len(tasks) == 0 {
		return "No tasks found"
	}

	var sb strings.Builder
	for _, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		if r.pretty {
			fmt.Fprintf(&sb, "%s %s %s\n", color.HiBlackString(t.ID[:8]), box, t.Name)
		} else {
			fmt.Fprintf(&sb, "%s %s %s\n", t.ID, box, t.Name)
		}
	}
	return sb.String()
}

// FormatDuration formats a duration in human-readable form. Seconds are
// rounded up so a just-started timer never reads as zero.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
