package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flowtrack/internal/render"
	"flowtrack/internal/session"
	"flowtrack/internal/stats"
	"flowtrack/internal/store"
)

func historyCmd() *cobra.Command {
	var (
		limit       int
		dayStr      string
		flaggedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "history [pattern]",
		Short: "List stored sessions",
		Long: `List stored sessions, newest first. The optional pattern filters by
category name with glob syntax.

Examples:
  flowtrack history
  flowtrack history 'work/*'
  flowtrack history --day 2026-03-14
  flowtrack history --flagged`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter := store.DefaultSessionFilter().WithLimit(limit)
			if dayStr != "" {
				day, err := time.ParseInLocation("2006-01-02", dayStr, time.Local)
				if err != nil {
					return fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", dayStr)
				}
				filter = filter.WithRange(day, day.AddDate(0, 0, 1))
			}
			filter.Flagged = flaggedOnly

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

			fmt.Print(renderer().Sessions(recs, names))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max sessions to show")
	cmd.Flags().StringVar(&dayStr, "day", "", "Only sessions from this day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flaggedOnly, "flagged", false, "Only flagged sessions")
	return cmd
}

func noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <session-id> <text...>",
		Short: "Attach a note to a stored session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := findSession(cmd, args[0])
			if err != nil {
				return err
			}
			if err := db.UpdateSessionNote(ctx, id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			render.Stdout().Println("Note saved on %s", id)
			return nil
		},
	}
}

// findSession resolves a session reference, accepting an ID prefix as
// shown in history output.
func findSession(cmd *cobra.Command, ref string) (string, error) {
	if _, err := db.GetSession(cmd.Context(), ref); err == nil {
		return ref, nil
	}

	recs, err := db.ListSessions(cmd.Context(), store.DefaultSessionFilter().WithLimit(500))
	if err != nil {
		return "", err
	}

	var matches []*session.Record
	for _, r := range recs {
		if strings.HasPrefix(strings.ToLower(r.ID), strings.ToLower(ref)) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return "", store.NewNotFoundError("session", ref)
	default:
		return "", fmt.Errorf("ambiguous session %q matches %d sessions", ref, len(matches))
	}
}
