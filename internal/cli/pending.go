package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/wire"
)

// PendingCmd returns the pending command with its subcommands
func PendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Inspect and flush the auto-save queue",
	}
	cmd.AddCommand(pendingListCmd(), pendingFlushCmd(), pendingClearCmd())
	return cmd
}

func pendingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued pending changes, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := wire.PendingService().List(context.Background())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println("No pending changes.")
				return nil
			}
			for _, change := range pending {
				ts := time.UnixMilli(change.Timestamp).Format(time.RFC3339)
				patch := ""
				if change.Data != nil {
					patch += " data"
				}
				if change.CrewInfo != nil {
					patch += " crewInfo"
				}
				fmt.Printf("#%d %s %s  patches:%s\n", change.ID, ts, change.DateRange, patch)
			}
			return nil
		},
	}
}

func pendingFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Fold queued changes into full record saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			flushed, err := wire.PendingService().Flush(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("✓ Flushed %d pending change(s)\n", flushed)
			return nil
		},
	}
}

func pendingClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all queued changes without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.PendingService().Clear(context.Background()); err != nil {
				return err
			}
			fmt.Println("✓ Cleared pending changes")
			return nil
		},
	}
}
