package cmd

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/ui"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every person in the vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			records := a.records
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Key() < records[j].Key()
			})

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			renderer := ui.NewRenderer(cmd.OutOrStdout(), noColorFlag || !ui.IsInteractive())
			renderer.Records(records)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
