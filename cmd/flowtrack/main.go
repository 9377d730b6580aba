// Package main provides the flowtrack CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flowtrack/internal/config"
	"flowtrack/internal/notify"
	"flowtrack/internal/store"
	"flowtrack/internal/tracker"
)

var (
	version = "0.1.0"

	cfg     config.Config
	cfgPath string
	db      *store.SQLite
	trk     *tracker.Tracker
	pretty  = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowtrack",
		Short: "Personal focus-time tracker",
		Long: `flowtrack: a focus-time tracker with flow and countdown timers.

Flow mode runs open-ended; stopping earns a break of elapsed/divisor.
Countdown mode runs toward a fixed target. Work-break-work chains are
stored as one session per category, split at midnight.

Use 'flowtrack toggle' as the single start/stop key.
Use 'flowtrack dashboard' for the live view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			if cfg.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
				pretty = false
			}
			if f := cmd.Flags().Lookup("pretty"); f != nil && f.Changed {
				pretty, _ = cmd.Flags().GetBool("pretty")
			}

			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return err
			}
			db, err = store.Open(dataDir)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}

			trk = tracker.New(db, tracker.Options{
				Engine:        cfg.Engine(),
				IdleThreshold: cfg.IdleThreshold(),
				Notifier:      notify.NewDesktop(),
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation shows status for every category.
			return showAllStatus(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().Bool("pretty", true, "Pretty print output")
	rootCmd.PersistentFlags().StringVarP(&categoryFlag, "category", "c", "", "Category name (default: focus)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "timer", Title: "Timer:"},
		&cobra.Group{ID: "organize", Title: "Organize:"},
		&cobra.Group{ID: "review", Title: "Review:"},
	)

	for _, c := range []*cobra.Command{
		startCmd(), toggleCmd(), endCmd(), resetCmd(),
		skipBreakCmd(), extendBreakCmd(), statusCmd(),
	} {
		c.GroupID = "timer"
		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{categoryCmd(), taskCmd()} {
		c.GroupID = "organize"
		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{
		historyCmd(), noteCmd(), statsCmd(), streakCmd(),
	} {
		c.GroupID = "review"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	path := config.Env().ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfgPath = path

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		// Defaults still apply; tell the user why their file was ignored.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show flowtrack version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flowtrack version %s\n", version)
		},
	}
}
