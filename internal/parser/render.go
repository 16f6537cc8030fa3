package parser

import "github.com/peopledex/peopledex/internal/person"

// RenderBlock regenerates the source lines for a record: heading, optional
// position/department, notes, and a trailing divider. Replacing a record's
// SourceLineRange with these lines reproduces an equivalent block, which is
// how in-place record updates are written back to the document.
func RenderBlock(r *person.Record, cfg DividerConfig) []string {
	lines := []string{namePrefix + r.FullName}

	if r.Position != "" {
		lines = append(lines, positionPrefix+r.Position)
	}
	if r.Department != "" {
		lines = append(lines, departmentPrefix+r.Department)
	}
	if r.Notes != "" {
		for _, line := range splitLines(r.Notes) {
			lines = append(lines, line)
		}
	}
	if marker := cfg.Marker(); marker != "" {
		lines = append(lines, marker)
	}

	return lines
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
