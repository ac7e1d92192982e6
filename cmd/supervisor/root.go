// cmd/supervisor/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/actuator-supervisor/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "supervisor",
	Short: "Supervises a Roboteq motor controller driving a vertical actuator",
	Long: `supervisor keeps a serial session to the motor controller alive, moves the
actuator between named positions along safe transitions, and shuts it down
for good when the supply voltage sags.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (built-in installation table when empty)")
}

// loadConfig returns the validated configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg := config.Default()
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("built-in config invalid: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
