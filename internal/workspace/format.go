package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
)

// ellipsisMarker terminates a truncated context block.
const ellipsisMarker = "…"

// Format renders a tiered context to a single text block: each present
// tier rendered independently, joined with blank lines, truncated
// line-by-line to maxLength.
func Format(tc *model.TieredContext, maxLength int) string {
	var sections []string
	if tc.Basic != nil {
		if s := FormatBasic(tc.Basic); s != "" {
			sections = append(sections, s)
		}
	}
	if tc.Structural != nil {
		if s := FormatStructural(tc.Structural); s != "" {
			sections = append(sections, s)
		}
	}
	if tc.Semantic != nil {
		if s := FormatSemantic(tc.Semantic); s != "" {
			sections = append(sections, s)
		}
	}

	joined := strings.Join(sections, "\n\n")
	if maxLength > 0 {
		joined = Truncate(joined, maxLength)
	}
	return joined
}

// FormatBasic renders the tier-1 editor snapshot.
func FormatBasic(b *model.BasicContext) string {
	var lines []string
	if b.FilePath != "" {
		line := "File: " + b.FilePath
		if b.Language != "" {
			line += " (" + b.Language + ")"
		}
		lines = append(lines, line)
	}
	if sel := strings.TrimSpace(b.Selection); sel != "" {
		lines = append(lines, "Selection: "+sel)
	}
	if b.ErrorCount > 0 || b.WarningCount > 0 {
		lines = append(lines, fmt.Sprintf("Diagnostics: %d errors, %d warnings", b.ErrorCount, b.WarningCount))
	}
	if b.FirstError != "" {
		lines = append(lines, "First error: "+b.FirstError)
	}
	return strings.Join(lines, "\n")
}

// FormatStructural renders the tier-2 workspace summary.
func FormatStructural(s *model.StructuralContext) string {
	lines := []string{"Project style: " + string(s.Style)}

	if len(s.Languages) > 0 {
		langs := make([]string, 0, len(s.Languages))
		for lang := range s.Languages {
			langs = append(langs, lang)
		}
		sort.Slice(langs, func(i, j int) bool {
			if s.Languages[langs[i]] != s.Languages[langs[j]] {
				return s.Languages[langs[i]] > s.Languages[langs[j]]
			}
			return langs[i] < langs[j]
		})
		if len(langs) > 5 {
			langs = langs[:5]
		}
		lines = append(lines, "Languages: "+strings.Join(langs, ", "))
	}

	if len(s.DirectoryRoles) > 0 {
		roles := make([]string, 0, len(s.DirectoryRoles))
		for dir, role := range s.DirectoryRoles {
			roles = append(roles, dir+" ("+role+")")
		}
		sort.Strings(roles)
		lines = append(lines, "Layout: "+strings.Join(roles, ", "))
	}

	return strings.Join(lines, "\n")
}

// FormatSemantic renders the tier-3 active-file extraction.
func FormatSemantic(s *model.SemanticContext) string {
	var lines []string
	if len(s.Functions) > 0 {
		lines = append(lines, "Functions: "+strings.Join(s.Functions, ", "))
	}
	if len(s.Classes) > 0 {
		lines = append(lines, "Types: "+strings.Join(s.Classes, ", "))
	}
	if len(s.Imports) > 0 {
		imports := s.Imports
		if len(imports) > 8 {
			imports = imports[:8]
		}
		lines = append(lines, "Imports: "+strings.Join(imports, ", "))
	}
	if len(s.Patterns) > 0 {
		lines = append(lines, "Patterns: "+strings.Join(s.Patterns, ", "))
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens a block line-by-line, never mid-line, appending an
// ellipsis marker when anything was dropped.
func Truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	var kept []string
	used := 0
	for _, line := range strings.Split(text, "\n") {
		// +1 for the joining newline, +len(marker) reserved for the tail.
		cost := len(line)
		if len(kept) > 0 {
			cost++
		}
		if used+cost+len(ellipsisMarker)+1 > maxLength {
			break
		}
		kept = append(kept, line)
		used += cost
	}

	if len(kept) == 0 {
		return ellipsisMarker
	}
	return strings.Join(kept, "\n") + "\n" + ellipsisMarker
}
