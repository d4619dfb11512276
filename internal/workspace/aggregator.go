package workspace

import (
	"context"
	"log/slog"

	"github.com/Veraticus/clarify/internal/model"
)

// Options configures one aggregator.
type Options struct {
	// SemanticConsent gates the tier-3 scan of the active file.
	SemanticConsent bool
	// MaxLength truncates the formatted block; zero means no limit.
	MaxLength int
}

// Aggregator gathers the three context tiers and renders them to one
// text block for provider prompts. Each tier is independently skippable
// and cancellation is checked between tiers.
type Aggregator struct {
	host    Host
	logger  *slog.Logger
	options Options
}

// NewAggregator creates an aggregator over a host.
func NewAggregator(host Host, opts Options, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{host: host, options: opts, logger: logger}
}

// Detect collects all available tiers. A missing active document or a
// failed tier yields a smaller context, not an error; only cancellation
// aborts.
func (a *Aggregator) Detect(ctx context.Context) (*model.TieredContext, error) {
	tc := &model.TieredContext{}

	doc, err := a.host.ActiveDocument()
	if err != nil {
		a.logger.Debug("active document unavailable", "error", err)
		doc = nil
	}

	// Tier 1 is always attempted: no document still produces an empty
	// basic snapshot rather than an error.
	tc.Basic = a.collectBasic(doc)
	tc.TiersUsed[0] = true

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if structural := a.collectStructural(ctx); structural != nil {
		tc.Structural = structural
		tc.TiersUsed[1] = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.options.SemanticConsent {
		if semantic := AnalyzeSemantics(doc); semantic != nil {
			tc.Semantic = semantic
			tc.TiersUsed[2] = true
		}
	}

	tc.Formatted = Format(tc, a.options.MaxLength)

	a.logger.Debug("context collected",
		"tiers", tc.TiersUsed,
		"formatted_len", len(tc.Formatted))
	return tc, nil
}

func (a *Aggregator) collectBasic(doc *Document) *model.BasicContext {
	basic := &model.BasicContext{}
	if doc != nil {
		basic.FilePath = doc.Path
		basic.Language = doc.Language
	}
	basic.Selection = a.host.Selection()

	for _, diag := range a.host.Diagnostics() {
		switch diag.Severity {
		case SeverityError:
			basic.ErrorCount++
			if basic.FirstError == "" {
				basic.FirstError = diag.Message
			}
		case SeverityWarning:
			basic.WarningCount++
		}
	}
	return basic
}

func (a *Aggregator) collectStructural(ctx context.Context) *model.StructuralContext {
	files, err := a.host.WorkspaceFiles(ctx)
	if err != nil {
		a.logger.Debug("workspace enumeration failed", "error", err)
		return nil
	}
	if len(files) == 0 {
		return nil
	}
	return AnalyzeStructure(files)
}
