package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/wire"
)

// DoctorCmd returns the doctor command
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check store health",
		Long:  "Open the record store, verify it responds, and print its statistics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gate := wire.Gate()

			if _, err := gate.WaitForDatabase(); err != nil {
				fmt.Printf("%s store did not become ready: %v\n", color.New(color.FgRed).Sprint("✗"), err)
				fmt.Println("  Hint: run `ctr doctor` again, or remove the database file if it is corrupt.")
				return err
			}
			fmt.Printf("%s store is open\n", color.New(color.FgGreen).Sprint("✓"))

			stats, err := wire.RecordService().GetDatabaseStats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to read store stats: %w", err)
			}

			fmt.Printf("  Records:         %d\n", stats.TotalRecords)
			fmt.Printf("  Change entries:  %d\n", stats.TotalChanges)
			fmt.Printf("  Pending changes: %d\n", stats.PendingChanges)
			if stats.LastModified > 0 {
				fmt.Printf("  Last modified:   %s\n", time.UnixMilli(stats.LastModified).Format(time.RFC3339))
			}
			return nil
		},
	}
}
