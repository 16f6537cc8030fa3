package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/ui"
)

// mentionsOptions holds CLI flags for the mentions command.
type mentionsOptions struct {
	name   string
	limit  int
	format string
}

func newMentionsCmd() *cobra.Command {
	var opts mentionsOptions

	cmd := &cobra.Command{
		Use:   "mentions",
		Short: "Count name mentions across the vault",
		Long: `Scan every non-definition document and count how often each person
is mentioned, split into text and task mentions.

Examples:
  peopledex mentions
  peopledex mentions --name "John Smith"
  peopledex mentions --limit 5 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMentions(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Show the breakdown for one person")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "How many people to rank")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runMentions(cmd *cobra.Command, opts mentionsOptions) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := a.counter.PerformFullScan(cmd.Context(), a.records); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := ui.NewRenderer(out, noColorFlag || !ui.IsInteractive())

	if opts.name != "" {
		mc := a.counter.GetMentionCount(opts.name)
		if opts.format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(mc)
		}
		renderer.MentionDetail(mc)
		return nil
	}

	top := a.counter.GetTopMentioned(opts.limit)
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(top)
	}
	renderer.TopMentions(top)
	return nil
}
