// Package workspace gathers tiered context about the caller's editing
// environment: a basic editor snapshot, a structural summary of the
// file tree, and an opt-in semantic scan of the active file.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiagnosticSeverity grades a host diagnostic.
type DiagnosticSeverity int

// Diagnostic severities.
const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
)

// Diagnostic is one problem reported by the host for the active file.
type Diagnostic struct {
	Message  string
	Severity DiagnosticSeverity
}

// Document is the host's active file.
type Document struct {
	Path     string
	Language string
	Text     string
}

// Host exposes the read-only editor signals the aggregator consumes.
// Implementations must tolerate concurrent calls.
type Host interface {
	// ActiveDocument returns nil when no document is open; that is not
	// an error.
	ActiveDocument() (*Document, error)
	Selection() string
	Diagnostics() []Diagnostic
	// WorkspaceFiles enumerates workspace-relative file paths,
	// excluding build and vendor trees.
	WorkspaceFiles(ctx context.Context) ([]string, error)
	ReadFile(path string) (string, error)
}

// excludedDirs are build, vendor, and VCS trees never scanned.
var excludedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "dist": true,
	"build": true, ".next": true, "target": true, "out": true,
	"coverage": true, "__pycache__": true, ".venv": true, ".idea": true,
}

// FSHost is a filesystem-backed Host for CLI use: the active document
// comes from a flag, the selection from stdin, and diagnostics are
// empty since no language server is attached.
type FSHost struct {
	Root       string
	ActivePath string
	Selected   string
}

// ActiveDocument reads the configured active file, if any.
func (h *FSHost) ActiveDocument() (*Document, error) {
	if h.ActivePath == "" {
		return nil, nil
	}
	text, err := h.ReadFile(h.ActivePath)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:     h.ActivePath,
		Language: LanguageForPath(h.ActivePath),
		Text:     text,
	}, nil
}

// Selection returns the configured selection text.
func (h *FSHost) Selection() string {
	return h.Selected
}

// Diagnostics is empty for a filesystem host.
func (h *FSHost) Diagnostics() []Diagnostic {
	return nil
}

// WorkspaceFiles walks the root, skipping excluded directories.
func (h *FSHost) WorkspaceFiles(ctx context.Context) ([]string, error) {
	root := h.Root
	if root == "" {
		root = "."
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFile reads a file relative to the workspace root.
func (h *FSHost) ReadFile(path string) (string, error) {
	full := path
	if h.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(h.Root, path)
	}
	data, err := os.ReadFile(full) // #nosec G304 -- workspace-scoped read
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LanguageForPath maps a file extension to a language identifier.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs":
		return "javascript"
	case ".py":
		return "python"
	case ".rs":
		return "rust"
	case ".rb":
		return "ruby"
	case ".java":
		return "java"
	case ".css":
		return "css"
	case ".html":
		return "html"
	case ".sql":
		return "sql"
	case ".md":
		return "markdown"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
