package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/wire"
)

// PropagateCmd returns the propagate command
func PropagateCmd() *cobra.Command {
	var from string
	var changeSpecs []string

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Copy field edits forward into later, not-yet-diverged records",
		Long: `Apply field edits to every record after --from whose current value still
matches the edit's old value, stopping at the first record that diverged.

Each --change takes the form field=old:new, e.g.
  ctr propagate --from 2024-06-01 --change "crew.0.name=John Smith:Jane Doe"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			if len(changeSpecs) == 0 {
				return fmt.Errorf("at least one --change is required")
			}

			changes := make([]models.CellChange, 0, len(changeSpecs))
			for _, spec := range changeSpecs {
				change, err := parseChangeSpec(spec)
				if err != nil {
					return err
				}
				changes = append(changes, change)
			}

			updated, err := wire.PropagationService().PropagateForward(context.Background(), changes, from)
			if err != nil {
				return fmt.Errorf("propagation stopped: %w", err)
			}

			fmt.Printf("✓ Propagated %d change(s) into %d record(s)\n", len(changes), updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Origin date of the edit (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&changeSpecs, "change", nil, "Field edit as field=old:new (repeatable)")
	return cmd
}

// parseChangeSpec parses "field=old:new" into a CellChange.
func parseChangeSpec(spec string) (models.CellChange, error) {
	field, values, ok := strings.Cut(spec, "=")
	if !ok {
		return models.CellChange{}, fmt.Errorf("invalid change spec %q: expected field=old:new", spec)
	}
	oldValue, newValue, ok := strings.Cut(values, ":")
	if !ok {
		return models.CellChange{}, fmt.Errorf("invalid change spec %q: expected field=old:new", spec)
	}
	return models.CellChange{Field: field, OldValue: oldValue, NewValue: newValue}, nil
}
