package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowtrack/internal/category"
	"flowtrack/internal/render"
	"flowtrack/internal/store"
)

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage per-category tasks",
	}

	addCmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a task to the category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := resolveCategory(ctx, true)
			if err != nil {
				return err
			}

			t, err := category.NewTask(cat.ID, strings.Join(args, " "), trk.Now())
			if err != nil {
				return err
			}
			if err := db.CreateTask(ctx, &t); err != nil {
				return err
			}
			render.Stdout().Println("Added task: %s", t.Name)
			return nil
		},
	}

	doneCmd := &cobra.Command{
		Use:   "done <task-id-or-name>",
		Short: "Complete a task",
		Long: `Mark a task done. If the category's session chain is open, the
completion is recorded on the session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}

			id, err := findTask(cmd, cat.ID, args[0])
			if err != nil {
				return err
			}

			t, err := trk.CompleteTask(ctx, cat, id)
			if err != nil {
				return err
			}
			render.Stdout().Println("Done: %s", t.Name)
			return nil
		},
	}

	var includeDone bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for the category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := requireCategory(ctx)
			if err != nil {
				return err
			}

			tasks, err := db.ListTasks(ctx, cat.ID, includeDone)
			if err != nil {
				return err
			}
			vals := make([]category.Task, 0, len(tasks))
			for _, t := range tasks {
				vals = append(vals, *t)
			}
			fmt.Print(renderer().Tasks(vals))
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&includeDone, "all", "a", false, "Include completed tasks")

	cmd.AddCommand(addCmd, doneCmd, listCmd)
	return cmd
}

// findTask resolves a task reference: an exact ID, an ID prefix, or a
// unique name match among the category's open tasks.
func findTask(cmd *cobra.Command, categoryID, ref string) (string, error) {
	tasks, err := db.ListTasks(cmd.Context(), categoryID, false)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) || strings.EqualFold(t.Name, ref) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", store.NewNotFoundError("task", ref)
	default:
		return "", fmt.Errorf("ambiguous task %q matches %d tasks", ref, len(matches))
	}
}
