package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/primary"
	"github.com/example/ctr/internal/wire"
)

// reportFile is the on-disk JSON shape accepted by `ctr save --file`.
type reportFile struct {
	Data     []models.CrewMember `json:"data"`
	CrewInfo models.CrewInfo     `json:"crewInfo"`
}

// SaveCmd returns the save command
func SaveCmd() *cobra.Command {
	var from string
	var to string
	var file string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a crew time report record",
		Long: `Save a record for a date range, creating it or bumping its version.
The report payload is read from a JSON file with "data" and "crewInfo" keys;
without --file an empty report is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return fmt.Errorf("both --from and --to are required")
			}

			var report reportFile
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read report file: %w", err)
				}
				if err := json.Unmarshal(raw, &report); err != nil {
					return fmt.Errorf("failed to parse report file: %w", err)
				}
			}

			dateRange := models.DateRangeKey(from, to)
			done := make(chan error, 1)

			wire.SaveService().SaveRecord(primary.SaveRequest{
				DateRange: dateRange,
				Data:      report.Data,
				CrewInfo:  report.CrewInfo,
				SaveType:  primary.SaveTypeManual,
				OnProgress: func(message string) {
					if verbose {
						fmt.Println(message)
					}
				},
				OnComplete: func() { done <- nil },
				OnError:    func(err error) { done <- err },
			})

			select {
			case err := <-done:
				if err != nil {
					return err
				}
			case <-time.After(30 * time.Second):
				return fmt.Errorf("save timed out")
			}

			fmt.Printf("✓ Saved %s\n", dateRange)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&file, "file", "", "JSON report file to save")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print save progress")
	return cmd
}
