package workspace

import (
	"path/filepath"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
)

// directoryRoles maps well-known directory names to their role in the
// project. Only names, never contents, inform tier-2 context.
var directoryRoles = map[string]string{
	"src": "source", "lib": "source", "internal": "source",
	"test": "tests", "tests": "tests", "__tests__": "tests", "spec": "tests",
	"components": "components",
	"pages":      "pages", "views": "pages",
	"api": "api", "server": "api", "routes": "api",
	"utils": "utils", "helpers": "utils",
	"config": "config", "configs": "config",
	"bin": "cli", "cli": "cli", "cmd": "cli",
	"packages": "monorepo", "apps": "monorepo",
}

// AnalyzeStructure builds the tier-2 structural summary from a list of
// workspace-relative file paths.
func AnalyzeStructure(files []string) *model.StructuralContext {
	roles := make(map[string]string)
	topLevel := make(map[string]bool)
	languages := make(map[string]int)

	for _, file := range files {
		parts := strings.Split(filepath.ToSlash(file), "/")
		if len(parts) > 1 {
			topLevel[parts[0]] = true
		}
		for _, part := range parts[:len(parts)-1] {
			if role, ok := directoryRoles[part]; ok {
				roles[part] = role
			}
		}
		if lang := LanguageForPath(file); lang != "" {
			languages[lang]++
		}
	}

	return &model.StructuralContext{
		Style:          deriveStyle(roles, topLevel, languages),
		DirectoryRoles: roles,
		Languages:      languages,
		FileCount:      len(files),
	}
}

// deriveStyle applies the project-style decision table, highest
// priority first: monorepo > mixed > webapp > api > cli > library >
// unknown.
func deriveStyle(roles map[string]string, topLevel map[string]bool, languages map[string]int) model.ProjectStyle {
	hasRole := func(role string) bool {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	}

	if topLevel["packages"] || topLevel["apps"] {
		return model.StyleMonorepo
	}

	webapp := hasRole("components") && hasRole("pages")
	api := hasRole("api")
	cli := hasRole("cli")
	source := hasRole("source") || len(languages) > 0

	switch {
	case webapp && api:
		return model.StyleMixed
	case webapp:
		return model.StyleWebapp
	case api:
		return model.StyleAPI
	case cli:
		return model.StyleCLI
	case source && !hasRole("pages") && !hasRole("components"):
		return model.StyleLibrary
	default:
		return model.StyleUnknown
	}
}
