package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/wire"
)

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [dateRange]",
		Short: "Show one record by its date-range key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := wire.RecordService().GetRecord(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Record %s (version %d)\n", record.DateRange, record.Version)
			fmt.Printf("  Last modified: %s\n", time.UnixMilli(record.LastModified).Format(time.RFC3339))
			if record.CrewInfo.CrewName != "" {
				fmt.Printf("  Crew: %s %s\n", record.CrewInfo.CrewName, record.CrewInfo.CrewNumber)
			}
			if record.CrewInfo.FireName != "" {
				fmt.Printf("  Fire: %s %s\n", record.CrewInfo.FireName, record.CrewInfo.FireNumber)
			}
			for _, member := range record.Data {
				fmt.Printf("  %s [%s]\n", member.Name, member.Classification)
				for _, day := range member.Days {
					if day.On == "" && day.Off == "" {
						continue
					}
					fmt.Printf("    %s  %s - %s\n", day.Date, day.On, day.Off)
				}
			}
			return nil
		},
	}
}

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored date ranges in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := wire.RecordService().GetAllDateRanges(context.Background())
			if err != nil {
				return err
			}
			if len(ranges) == 0 {
				fmt.Println("No records stored.")
				return nil
			}
			for _, dateRange := range ranges {
				fmt.Println(dateRange)
			}
			return nil
		},
	}
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [dateRange]",
		Short: "Delete a record (its change history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.RecordService().DeleteRecord(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted %s\n", args[0])
			return nil
		},
	}
}

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [dateRange]",
		Short: "Show the change history for a record, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := wire.RecordService().GetChangeHistory(context.Background(), args[0])
			if err != nil {
				return err
			}
			printChangeLog(entries)
			return nil
		},
	}
}

// ChangesCmd returns the changes command
func ChangesCmd() *cobra.Command {
	var since int64

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show all changes since a unix-millisecond timestamp",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := wire.RecordService().GetChangesSince(context.Background(), since)
			if err != nil {
				return err
			}
			printChangeLog(entries)
			return nil
		},
	}

	cmd.Flags().Int64Var(&since, "since", 0, "Unix-millisecond timestamp to list changes after")
	return cmd
}

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := wire.RecordService().GetDatabaseStats(context.Background())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode stats: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func printChangeLog(entries []*models.ChangeLogEntry) {
	if len(entries) == 0 {
		fmt.Println("No changes recorded.")
		return
	}
	for _, entry := range entries {
		marker := changeTypeColor(entry.ChangeType).Sprintf("[%s]", entry.ChangeType)
		ts := time.UnixMilli(entry.Timestamp).Format(time.RFC3339)
		if entry.Field != "" {
			fmt.Printf("%s %s %s  %s: %q -> %q\n", ts, marker, entry.DateRange, entry.Field, entry.OldValue, entry.NewValue)
		} else {
			fmt.Printf("%s %s %s\n", ts, marker, entry.DateRange)
		}
	}
}

func changeTypeColor(changeType string) *color.Color {
	switch changeType {
	case models.ChangeCreate:
		return color.New(color.FgGreen)
	case models.ChangeDelete:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
