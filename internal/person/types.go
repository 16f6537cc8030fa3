// Package person defines the core data model: person records extracted from
// definition documents, mentions found in vault text, and aggregated mention counts.
package person

import "time"

// FileKind describes how a person record is stored in its source document.
type FileKind string

const (
	// FileKindAtomic indicates a document containing a single person.
	FileKindAtomic FileKind = "atomic"
	// FileKindConsolidated indicates a document containing many person blocks.
	FileKindConsolidated FileKind = "consolidated"
)

// LineRange is an inclusive range of line indices within a source document.
// It is used to replace a person's block in place during record updates.
type LineRange struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// Company holds the attributes a record inherits from its enclosing document.
type Company struct {
	Name  string `yaml:"name" json:"name"`
	Logo  string `yaml:"logo" json:"logo"`
	Color string `yaml:"color" json:"color"`
	URL   string `yaml:"url" json:"url"`
}

// Record is one parsed definition block.
//
// The canonical identity of a record is NormalizeName(FullName). The same
// canonical name may map to multiple records (one person recorded in several
// company documents); those are distinct records but a single mention-counting
// identity.
type Record struct {
	FullName   string `json:"full_name"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	// Notes is the free-form body of the block with trailing whitespace trimmed.
	Notes string `json:"notes,omitempty"`

	// SourceFileID identifies the document the block was parsed from.
	SourceFileID string `json:"source_file_id"`
	// SourceLineRange locates the block within its document (inclusive).
	SourceLineRange LineRange `json:"source_line_range"`
	// LinkText is the wiki-style link to this record, derived from the file
	// path plus an anchor to the name.
	LinkText string `json:"link_text"`

	FileKind FileKind `json:"file_kind"`
	Company  Company  `json:"company"`
}

// Key returns the canonical identity used for indexing and mention merging.
func (r *Record) Key() string {
	return NormalizeName(r.FullName)
}

// FileMentionCount holds per-document mention counts for one person.
type FileMentionCount struct {
	TextMentions int       `json:"text_mentions"`
	TaskMentions int       `json:"task_mentions"`
	LastScanned  time.Time `json:"last_scanned"`
}

// MentionCount aggregates mentions of one canonical identity across the corpus.
//
// A full scan creates a zeroed MentionCount for every known canonical name,
// mutates it incrementally as mentions are discovered, and replaces it entirely
// (never merges) on the next full scan.
type MentionCount struct {
	Name          string                       `json:"name"`
	TotalMentions int                          `json:"total_mentions"`
	TextMentions  int                          `json:"text_mentions"`
	TaskMentions  int                          `json:"task_mentions"`
	LastUpdated   time.Time                    `json:"last_updated"`
	Files         map[string]*FileMentionCount `json:"files"`
}

// NewMentionCount creates a zeroed count bucket for a canonical name.
func NewMentionCount(name string) *MentionCount {
	return &MentionCount{
		Name:  name,
		Files: make(map[string]*FileMentionCount),
	}
}
