// Package parser converts the plain-text body of a definition document into an
// ordered list of person records.
//
// The parser is a two-state machine (idle / buffering notes) driven line by
// line. The in-progress block is an explicit value passed through a pure
// transition function, so the state machine is unit-testable without
// constructing a Parser.
package parser

import (
	"strings"

	"github.com/peopledex/peopledex/internal/person"
)

// Field prefixes recognized at the start of a block.
const (
	namePrefix       = "# "
	positionPrefix   = "Position: "
	departmentPrefix = "Department: "
)

// DividerConfig controls which divider styles end a block.
// If neither style is enabled no block ever closes before end of input,
// so a document yields at most one record.
type DividerConfig struct {
	Dash       bool `yaml:"dash" json:"dash"`             // lines starting with ---
	Underscore bool `yaml:"underscore" json:"underscore"` // lines starting with ___
}

// DefaultDividerConfig enables both divider styles.
func DefaultDividerConfig() DividerConfig {
	return DividerConfig{Dash: true, Underscore: true}
}

// IsDivider reports whether line ends the current block.
func (c DividerConfig) IsDivider(line string) bool {
	if c.Dash && strings.HasPrefix(line, "---") {
		return true
	}
	if c.Underscore && strings.HasPrefix(line, "___") {
		return true
	}
	return false
}

// Marker returns the divider line used when rendering a block.
func (c DividerConfig) Marker() string {
	if c.Dash {
		return "---"
	}
	if c.Underscore {
		return "___"
	}
	return ""
}

// Source describes the document a block was parsed from. Company attributes
// are inherited by every record committed from the document.
type Source struct {
	FileID   string
	FilePath string
	FileKind person.FileKind
	Company  person.Company
}

// Block is the in-progress parse state for one definition block.
// The zero value is an empty idle block.
type Block struct {
	Name       string
	Position   string
	Department string
	StartLine  int

	// Buffering is true once a free-form note line has been seen; from that
	// point every line is note content, field prefixes included.
	Buffering bool
	Notes     []string
}

// empty reports whether the block holds no data at all.
func (b Block) empty() bool {
	return b.Name == "" && b.Position == "" && b.Department == "" && !b.Buffering
}

// Step advances the block state machine by one line and returns the next
// state plus a completed record if this line closed a committable block.
//
// A divider always resets the state; the block is committed only when a
// non-empty name was seen. The first heading line is authoritative: a second
// heading before a divider is treated as note content, not a rename.
func Step(st Block, line string, lineNo int, cfg DividerConfig, src Source) (Block, *person.Record) {
	if cfg.IsDivider(line) {
		return Block{}, commit(st, lineNo, src)
	}

	if st.Buffering {
		st.Notes = append(st.Notes, line)
		return st, nil
	}

	if strings.TrimSpace(line) == "" {
		return st, nil
	}

	switch {
	case strings.HasPrefix(line, namePrefix) &&
		!strings.HasPrefix(line, positionPrefix) &&
		!strings.HasPrefix(line, departmentPrefix):
		if st.Name == "" {
			st.Name = strings.TrimSpace(strings.TrimPrefix(line, namePrefix))
			st.StartLine = lineNo
			return st, nil
		}
		// Duplicate heading: fall through to note accumulation.
	case strings.HasPrefix(line, positionPrefix):
		st.Position = strings.TrimSpace(strings.TrimPrefix(line, positionPrefix))
		return st, nil
	case strings.HasPrefix(line, departmentPrefix):
		st.Department = strings.TrimSpace(strings.TrimPrefix(line, departmentPrefix))
		return st, nil
	}

	st.Buffering = true
	st.Notes = append(st.Notes, line)
	return st, nil
}

// commit materializes a record from the block, or nil when the block has no
// name. endLine becomes the inclusive end of the record's source range.
func commit(st Block, endLine int, src Source) *person.Record {
	if st.Name == "" {
		return nil
	}

	notes := strings.TrimRight(strings.Join(st.Notes, "\n"), " \t\r\n")

	return &person.Record{
		FullName:        st.Name,
		Position:        st.Position,
		Department:      st.Department,
		Notes:           notes,
		SourceFileID:    src.FileID,
		SourceLineRange: person.LineRange{From: st.StartLine, To: endLine},
		LinkText:        linkText(src.FilePath, st.Name),
		FileKind:        src.FileKind,
		Company:         src.Company,
	}
}

// linkText builds the wiki-style link for a record: the document path without
// its extension plus an anchor to the name.
func linkText(filePath, name string) string {
	target := strings.TrimSuffix(filePath, ".md")
	return "[[" + target + "#" + name + "]]"
}

// Parser parses definition document bodies into person records.
type Parser struct {
	dividers DividerConfig
}

// New creates a parser with the given divider configuration.
func New(dividers DividerConfig) *Parser {
	return &Parser{dividers: dividers}
}

// ParseDocument parses one document body (frontmatter and leading logo line
// already stripped by the caller) into an ordered list of records.
//
// End of input acts as an implicit divider: a pending block with a name is
// committed using the final line index as the end of its source range.
// Blocks without a name are silently dropped.
func (p *Parser) ParseDocument(text string, src Source) []*person.Record {
	records := make([]*person.Record, 0)
	if text == "" {
		return records
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var st Block
	for i, line := range lines {
		next, rec := Step(st, line, i, p.dividers, src)
		st = next
		if rec != nil {
			records = append(records, rec)
		}
	}

	if !st.empty() {
		if rec := commit(st, len(lines)-1, src); rec != nil {
			records = append(records, rec)
		}
	}

	return records
}
