package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"flowtrack/internal/config"
	"flowtrack/internal/render"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := render.Stdout()
			w.Println("Config file: %s", cfgPath)
			w.Line()
			w.Item("flow_divisor            %d", cfg.FlowDivisor)
			w.Item("idle_threshold_minutes  %d", cfg.IdleThresholdMinutes)
			w.Item("countdown_minutes       %d", cfg.CountdownMinutes)
			w.Item("tick_interval_ms        %d", cfg.TickIntervalMS)
			if cfg.DataDir != "" {
				w.Item("data_dir                %s", cfg.DataDir)
			}
			if cfg.NoColor {
				w.Item("no_color                true")
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Write one setting to the config file.

Keys: flow_divisor, idle_threshold_minutes, countdown_minutes,
tick_interval_ms, data_dir, no_color.

Examples:
  flowtrack config set flow_divisor 4
  flowtrack config set countdown_minutes 50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := applySetting(&cfg, key, value); err != nil {
				return err
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			render.Stdout().Println("Set %s = %s", key, value)
			return nil
		},
	}

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func applySetting(c *config.Config, key, value string) error {
	intVal := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		return n, nil
	}

	switch key {
	case "flow_divisor":
		n, err := intVal()
		if err != nil {
			return err
		}
		c.FlowDivisor = n
	case "idle_threshold_minutes":
		n, err := intVal()
		if err != nil {
			return err
		}
		c.IdleThresholdMinutes = n
	case "countdown_minutes":
		n, err := intVal()
		if err != nil {
			return err
		}
		c.CountdownMinutes = n
	case "tick_interval_ms":
		n, err := intVal()
		if err != nil {
			return err
		}
		c.TickIntervalMS = n
	case "data_dir":
		c.DataDir = value
	case "no_color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("no_color must be true or false, got %q", value)
		}
		c.NoColor = b
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
