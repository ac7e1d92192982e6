// cmd/supervisor/validate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/actuator-supervisor/internal/motion"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config and transition table without touching the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		table, err := motion.Build(cfg.Motion)
		if err != nil {
			return fmt.Errorf("motion table invalid: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d positions, %d transitions\n",
			len(table.PositionNames()), len(table.Names()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
