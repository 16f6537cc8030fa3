package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and scanner statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			stats := a.index.Stats()

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			renderer := ui.NewRenderer(cmd.OutOrStdout(), noColorFlag || !ui.IsInteractive())
			renderer.Stats("Index", stats, []string{
				"people", "records", "companies",
				"prefixes", "bigrams", "fuzzy_keys", "words",
				"cache_len", "cache_hits", "cache_misses",
			})

			for _, summary := range a.metrics.Summarize() {
				fmt.Fprintf(cmd.OutOrStdout(), "  scan %s: %d lines, avg %s\n",
					summary.Strategy, summary.Scans, summary.AverageTime)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
