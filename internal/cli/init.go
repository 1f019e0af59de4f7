// Package cli contains the cobra commands for the ctr tool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/config"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var databasePath string
	var crewName string
	var crewNumber string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .ctr/config.json in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg := &config.Config{
				Version:      "1",
				DatabasePath: databasePath,
				CrewName:     crewName,
				CrewNumber:   crewNumber,
			}
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}

			fmt.Println("✓ Created .ctr/config.json")
			if databasePath != "" {
				fmt.Printf("  Database: %s\n", databasePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databasePath, "database", "", "Database file path (default ~/.ctr/ctr.db)")
	cmd.Flags().StringVar(&crewName, "crew-name", "", "Default crew name")
	cmd.Flags().StringVar(&crewNumber, "crew-number", "", "Default crew number")
	return cmd
}
