package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flowtrack/internal/stats"
	"flowtrack/internal/store"
)

func statsCmd() *cobra.Command {
	var rangeStr string

	cmd := &cobra.Command{
		Use:   "stats [pattern]",
		Short: "Show focus totals",
		Long: `Aggregate stored sessions into totals per day and per category. The
optional pattern filters by category name with glob syntax.

Examples:
  flowtrack stats
  flowtrack stats --range 7d
  flowtrack stats 'work/*'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter := store.DefaultSessionFilter().WithLimit(0)
			if rangeStr != "" {
				span, err := parseRange(rangeStr)
				if err != nil {
					return err
				}
				now := trk.Now()
				filter = filter.WithRange(now.Add(-span), now)
			}

			recs, err := db.ListSessions(ctx, filter)
			if err != nil {
				return err
			}

			names, err := categoryNames(ctx)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				recs = stats.Filter(recs, names, args[0])
			}

			fmt.Print(renderer().Stats(stats.Aggregate(recs, names)))
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeStr, "range", "", "Look back this far (e.g. 7d, 24h)")
	return cmd
}

func streakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the consecutive-day focus streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			recs, err := db.ListSessions(ctx, store.DefaultSessionFilter().WithLimit(0))
			if err != nil {
				return err
			}

			fmt.Print(renderer().Streak(stats.Streaks(recs, trk.Now())))
			return nil
		},
	}
}

// parseRange accepts Go durations plus a day suffix ("7d").
func parseRange(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:n-1], "%d", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid range %q (try 7d or 24h)", s)
	}
	return d, nil
}
