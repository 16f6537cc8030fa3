package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peopledex/peopledex/internal/mentions"
	"github.com/peopledex/peopledex/internal/person"
)

// Renderer writes command output using a style set.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer for the given writer.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	return &Renderer{out: out, styles: GetStyles(noColor)}
}

// Records prints search results, one block per record.
func (r *Renderer) Records(records []*person.Record) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, r.styles.Dim.Render("no matches"))
		return
	}

	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.record(rec)
	}
}

func (r *Renderer) record(rec *person.Record) {
	fmt.Fprintln(r.out, r.styles.Name.Render(rec.FullName))

	if rec.Position != "" {
		r.field("Position", rec.Position)
	}
	if rec.Department != "" {
		r.field("Department", rec.Department)
	}
	if rec.Company.Name != "" {
		r.field("Company", rec.Company.Name)
	}
	r.field("Source", fmt.Sprintf("%s:%d-%d",
		rec.SourceFileID, rec.SourceLineRange.From+1, rec.SourceLineRange.To+1))

	if rec.Notes != "" {
		fmt.Fprintln(r.out, r.styles.Label.Render("  Notes:"))
		for _, note := range strings.Split(rec.Notes, "\n") {
			fmt.Fprintf(r.out, "    %s\n", r.styles.Value.Render(note))
		}
	}
}

func (r *Renderer) field(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n",
		r.styles.Label.Render(label+":"), r.styles.Value.Render(value))
}

// TopMentions prints a ranked mention table.
func (r *Renderer) TopMentions(counts []mentions.NameCount) {
	if len(counts) == 0 {
		fmt.Fprintln(r.out, r.styles.Dim.Render("no mentions recorded"))
		return
	}

	fmt.Fprintln(r.out, r.styles.Header.Render("Most mentioned"))
	for i, nc := range counts {
		fmt.Fprintf(r.out, "  %2d. %s %s\n",
			i+1,
			r.styles.Name.Render(nc.Name),
			r.styles.Count.Render(fmt.Sprintf("(%d)", nc.Count)))
	}
}

// MentionDetail prints one person's mention breakdown including per-file
// counts.
func (r *Renderer) MentionDetail(mc *person.MentionCount) {
	if mc == nil {
		fmt.Fprintln(r.out, r.styles.Dim.Render("no mentions recorded"))
		return
	}

	fmt.Fprintln(r.out, r.styles.Name.Render(mc.Name))
	r.field("Total", fmt.Sprintf("%d", mc.TotalMentions))
	r.field("Text", fmt.Sprintf("%d", mc.TextMentions))
	r.field("Tasks", fmt.Sprintf("%d", mc.TaskMentions))
	if !mc.LastUpdated.IsZero() {
		r.field("Updated", mc.LastUpdated.Format("2006-01-02 15:04:05"))
	}

	if len(mc.Files) > 0 {
		fmt.Fprintln(r.out, r.styles.Label.Render("  Files:"))
		for _, path := range sortedFileKeys(mc.Files) {
			fc := mc.Files[path]
			fmt.Fprintf(r.out, "    %s %s\n",
				r.styles.Value.Render(path),
				r.styles.Dim.Render(fmt.Sprintf("(%d text, %d task)",
					fc.TextMentions, fc.TaskMentions)))
		}
	}
}

// Stats prints a labeled key/value section.
func (r *Renderer) Stats(title string, stats map[string]any, order []string) {
	fmt.Fprintln(r.out, r.styles.Header.Render(title))
	for _, key := range order {
		value, ok := stats[key]
		if !ok {
			continue
		}
		r.field(strings.ReplaceAll(key, "_", " "), fmt.Sprintf("%v", value))
	}
}

// Error prints an error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintf(r.out, "%s %v\n", r.styles.Error.Render("error:"), err)
}

func sortedFileKeys(files map[string]*person.FileMentionCount) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
