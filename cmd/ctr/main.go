package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/cli"
	"github.com/example/ctr/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ctr",
		Short:   "CTR - Crew Time Report record store",
		Version: version.String(),
		Long: `ctr manages crew time report records: one versioned record per date
range, with a full change history and forward propagation of edits.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.SaveCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.DeleteCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.ChangesCmd())
	rootCmd.AddCommand(cli.StatsCmd())
	rootCmd.AddCommand(cli.PropagateCmd())
	rootCmd.AddCommand(cli.PendingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
