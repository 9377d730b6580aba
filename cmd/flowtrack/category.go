package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowtrack/internal/category"
	"flowtrack/internal/render"
	"flowtrack/internal/timer"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage focus categories",
	}

	var (
		colorStr string
		modeStr  string
	)
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Long: `Create a category. Mode picks the timer type: flow (open-ended with
earned breaks) or countdown (fixed target).

Examples:
  flowtrack category add writing
  flowtrack category add standup --mode countdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := timer.Mode(modeStr)
			if !mode.Valid() {
				return fmt.Errorf("invalid mode %q (flow or countdown)", modeStr)
			}

			c, err := category.New(args[0], colorStr, mode, trk.Now())
			if err != nil {
				return err
			}
			if err := db.CreateCategory(cmd.Context(), &c); err != nil {
				return err
			}
			render.Stdout().Println("Created category %s (%s)", c.Name, c.Mode)
			return nil
		},
	}
	addCmd.Flags().StringVar(&colorStr, "color", "", "Display color")
	addCmd.Flags().StringVar(&modeStr, "mode", string(timer.ModeFlow), "Timer mode: flow or countdown")

	var includeArchived bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := db.ListCategories(cmd.Context(), includeArchived)
			if err != nil {
				return err
			}
			vals := make([]category.Category, 0, len(cats))
			for _, c := range cats {
				vals = append(vals, *c)
			}
			fmt.Print(renderer().Categories(vals))
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&includeArchived, "archived", "a", false, "Include archived categories")

	renameCmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := db.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := category.ValidateName(args[1]); err != nil {
				return err
			}
			c.Name = args[1]
			if err := db.UpdateCategory(ctx, c); err != nil {
				return err
			}
			render.Stdout().Println("Renamed %s to %s", args[0], args[1])
			return nil
		},
	}

	archiveCmd := &cobra.Command{
		Use:   "archive <name>",
		Short: "Archive a category (hidden from listings, history kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := db.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}
			c.Archived = true
			if err := db.UpdateCategory(ctx, c); err != nil {
				return err
			}
			render.Stdout().Println("Archived %s", c.Name)
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a category and its tasks (sessions are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := db.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := db.DeleteCategory(ctx, c.ID); err != nil {
				return err
			}
			render.Stdout().Println("Deleted %s (stored sessions kept)", c.Name)
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, renameCmd, archiveCmd, rmCmd)
	return cmd
}
