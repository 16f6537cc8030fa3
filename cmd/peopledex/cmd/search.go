package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peopledex/peopledex/internal/person"
	"github.com/peopledex/peopledex/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	mode   string // exact, prefix, fuzzy, company, text
	limit  int
	format string // text, json
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the people registry",
		Long: `Search the people registry loaded from the vault.

Modes:
  exact    case-insensitive full-name match
  prefix   names starting with the query
  fuzzy    tolerates minor spelling differences
  company  people at a company
  text     relevance-ranked search across all fields

Examples:
  peopledex search "John Smith"
  peopledex search jo --mode prefix
  peopledex search jhon --mode fuzzy
  peopledex search "backend engineer" --mode text --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "exact", "Search mode: exact, prefix, fuzzy, company, text")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	var records []*person.Record
	switch opts.mode {
	case "exact":
		records, err = a.index.FindByName(query, opts.limit)
	case "prefix":
		records, err = a.index.FindByPrefix(query, opts.limit)
	case "fuzzy":
		records, err = a.index.FindFuzzy(query, opts.limit)
	case "company":
		records, err = a.index.FindByCompany(query, opts.limit)
	case "text":
		records, err = a.index.SearchFullText(query, opts.limit)
	default:
		return fmt.Errorf("unknown search mode %q", opts.mode)
	}
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	renderer := ui.NewRenderer(cmd.OutOrStdout(), noColorFlag || !ui.IsInteractive())
	renderer.Records(records)
	return nil
}
