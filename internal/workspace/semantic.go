package workspace

import (
	"regexp"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
)

// Per-language declaration patterns for the tier-3 structural text
// scan. This is deliberately not a parser: a handful of anchored
// regexes over the active file is enough signal for a prompt.
var semanticPatterns = map[string]struct {
	functions *regexp.Regexp
	classes   *regexp.Regexp
	imports   *regexp.Regexp
}{
	"go": {
		functions: regexp.MustCompile(`(?m)^func\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`),
		classes:   regexp.MustCompile(`(?m)^type\s+(\w+)\s+(?:struct|interface)\b`),
		imports:   regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:\w+\s+)?"([^"]+)"`),
	},
	"typescript": {
		functions: regexp.MustCompile(`(?m)(?:^|\s)function\s+(\w+)\s*\(|(?:^|\s)(?:const|let)\s+(\w+)\s*=\s*(?:async\s*)?\(`),
		classes:   regexp.MustCompile(`(?m)(?:^|\s)class\s+(\w+)`),
		imports:   regexp.MustCompile(`(?m)^\s*import\b[^'"]*['"]([^'"]+)['"]`),
	},
	"python": {
		functions: regexp.MustCompile(`(?m)^\s*def\s+(\w+)\s*\(`),
		classes:   regexp.MustCompile(`(?m)^\s*class\s+(\w+)`),
		imports:   regexp.MustCompile(`(?m)^\s*(?:import\s+(\w[\w.]*)|from\s+(\w[\w.]*)\s+import)`),
	},
}

func init() {
	// JavaScript shares the TypeScript patterns.
	semanticPatterns["javascript"] = semanticPatterns["typescript"]
}

// namedPatternHints are design-pattern signals scanned for in the
// active file's text.
var namedPatternHints = []struct {
	name string
	re   *regexp.Regexp
}{
	{"singleton", regexp.MustCompile(`getInstance\s*\(|sync\.Once`)},
	{"factory", regexp.MustCompile(`\b(?:create|make)\w*Factory\b|\bNew[A-Z]\w+\s*\(`)},
	{"hooks", regexp.MustCompile(`\buse[A-Z]\w+\s*\(`)},
	{"async", regexp.MustCompile(`\basync\b|\bawait\b|\bgo\s+func\b|<-\s*\w+|\bchan\b`)},
}

const maxSemanticNames = 15

// AnalyzeSemantics extracts declarations and pattern hints from the
// active document. Returns nil for unsupported languages; consent and
// cancellation gating happen in the aggregator.
func AnalyzeSemantics(doc *Document) *model.SemanticContext {
	if doc == nil {
		return nil
	}
	patterns, ok := semanticPatterns[doc.Language]
	if !ok {
		return nil
	}

	sem := &model.SemanticContext{Language: doc.Language}
	sem.Functions = capture(patterns.functions, doc.Text)
	sem.Classes = capture(patterns.classes, doc.Text)
	sem.Imports = capture(patterns.imports, doc.Text)

	for _, hint := range namedPatternHints {
		if hint.re.MatchString(doc.Text) {
			sem.Patterns = append(sem.Patterns, hint.name)
		}
	}
	return sem
}

// capture collects the first non-empty submatch per match, de-duplicated
// and capped.
func capture(re *regexp.Regexp, text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range re.FindAllStringSubmatch(text, -1) {
		name := ""
		for _, group := range match[1:] {
			if group != "" {
				name = group
				break
			}
		}
		if name == "" || seen[name] || strings.HasPrefix(name, "_") {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) >= maxSemanticNames {
			break
		}
	}
	return names
}
