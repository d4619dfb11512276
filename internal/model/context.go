package model

// BasicContext is the tier-1 snapshot of editor state.
type BasicContext struct {
	FilePath     string
	Language     string
	Selection    string
	FirstError   string
	ErrorCount   int
	WarningCount int
}

// ProjectStyle classifies the overall shape of a workspace.
type ProjectStyle string

// Project style constants, in decision-table priority order.
const (
	StyleMonorepo ProjectStyle = "monorepo"
	StyleMixed    ProjectStyle = "mixed"
	StyleWebapp   ProjectStyle = "webapp"
	StyleAPI      ProjectStyle = "api"
	StyleCLI      ProjectStyle = "cli"
	StyleLibrary  ProjectStyle = "library"
	StyleUnknown  ProjectStyle = "unknown"
)

// StructuralContext is the tier-2 summary of workspace layout.
// It is derived purely from paths; file contents are never read.
type StructuralContext struct {
	Style          ProjectStyle
	DirectoryRoles map[string]string
	Languages      map[string]int
	FileCount      int
}

// SemanticContext is the tier-3 extraction from the active file.
// Present only when the user has granted consent.
type SemanticContext struct {
	Language  string
	Functions []string
	Classes   []string
	Imports   []string
	Patterns  []string
}

// TieredContext aggregates the three context tiers for one
// orchestration call. Constructed once per call; immutable after.
type TieredContext struct {
	Basic      *BasicContext
	Structural *StructuralContext
	Semantic   *SemanticContext
	Formatted  string
	TiersUsed  [3]bool
}
