package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flowtrack/internal/render"
	"flowtrack/internal/session"
	"flowtrack/internal/timer"
)

func startCmd() *cobra.Command {
	var forStr string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start (or resume) the timer",
		Long: `Start the timer for a category, creating the category on first use.

Without --for the timer runs in the category's mode. With --for it runs
a countdown toward the given duration. Mode changes only apply when no
session chain is open.

Examples:
  flowtrack start                  # flow timer, category "focus"
  flowtrack start -c writing
  flowtrack start --for 25m        # one pomodoro-style countdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := resolveCategory(ctx, true)
			if err != nil {
				return err
			}

			mode := timer.Mode("")
			var target time.Duration
			if forStr != "" {
				target, err = parseDuration(forStr)
				if err != nil {
					return err
				}
				mode = timer.ModeCountdown
			}

			s, err := trk.Start(ctx, cat, mode, target)
			if err != nil {
				return err
			}
			fmt.Print(renderer().Status(cat, s, trk.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&forStr, "for", "", "Run a countdown for this duration (e.g. 25m)")
	return cmd
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start/stop the timer (the main action)",
		Long: `The single start/stop key. From idle or paused it starts work; from
running flow work it starts the earned break; from a break it resumes
work; from running countdown work it pauses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := resolveCategory(ctx, true)
			if err != nil {
				return err
			}

			s, err := trk.Toggle(ctx, cat)
			if err != nil {
				return err
			}
			fmt.Print(renderer().Status(cat, s, trk.Now()))
			return nil
		},
	}
}

func endCmd() *cobra.Command {
	var (
		rating       int
		tags         []string
		distractions []string
		distNote     string
		notes        string
	)

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the session and store it",
		Long: `End the current work-break-work chain and store it as a session.
Chains of a second or less are discarded. Sessions crossing midnight
are stored as one part per day.

Examples:
  flowtrack end
  flowtrack end --rating 4 --tags deep,writing --notes "draft finished"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}

			recs, err := trk.End(ctx, cat, session.Metadata{
				Rating:          rating,
				Tags:            tags,
				Distractions:    distractions,
				DistractionNote: distNote,
				Notes:           notes,
			})
			if err != nil {
				return err
			}

			if len(recs) == 0 {
				render.Stdout().Empty("Session too short, nothing stored")
				return nil
			}

			var total time.Duration
			for _, r := range recs {
				total += r.Duration
			}
			w := render.Stdout()
			w.Println("Stored %s of focus (%d session record(s))", render.FormatDuration(total), len(recs))
			for _, r := range recs {
				w.Item("%s  %s", r.ID, render.FormatDuration(r.Duration))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Focus rating 1-5")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringSliceVar(&distractions, "distractions", nil, "What pulled you away (comma-separated)")
	cmd.Flags().StringVar(&distNote, "distraction-note", "", "What pulled you away")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form session notes")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Abandon the session without storing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}
			if err := trk.Reset(ctx, cat); err != nil {
				return err
			}
			render.Stdout().Println("Timer reset for %s", cat.Name)
			return nil
		},
	}
}

func skipBreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip-break",
		Short: "Skip the running break and get back to work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}
			s, err := trk.SkipBreak(ctx, cat)
			if err != nil {
				return err
			}
			fmt.Print(renderer().Status(cat, s, trk.Now()))
			return nil
		},
	}
}

func extendBreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extend-break [duration]",
		Short: "Add time to the running break (default 5m)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}

			d := 5 * time.Minute
			if len(args) > 0 {
				d, err = parseDuration(args[0])
				if err != nil {
					return err
				}
			}

			s, err := trk.ExtendBreak(ctx, cat, d)
			if err != nil {
				return err
			}
			fmt.Print(renderer().Status(cat, s, trk.Now()))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the timer state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all || categoryFlag == "" {
				return showAllStatus(ctx)
			}

			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}
			s, err := trk.Status(ctx, cat)
			if err != nil {
				return err
			}
			fmt.Print(renderer().Status(cat, s, trk.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every category")
	return cmd
}

// parseDuration accepts Go duration syntax plus bare minutes ("25").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", s)
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (try 25m or 1h30m)", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}
