// Package config resolves the filesystem locations clarify reads and
// writes: the directory searched for config.yaml and the default
// database location under the user's data directory.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigDir is where the CLI looks for config.yaml when no
// --config flag is given.
func DefaultConfigDir() string {
	return ExpandPath("~/.config/clarify")
}

// DefaultDatabasePath is the SQLite location used when storage.path is
// not configured.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/clarify/clarify.db")
}

// ExpandPath resolves a leading ~ and $VAR references in a configured
// path. Unresolvable tildes are left as-is rather than erroring; a
// bad path surfaces when the file is opened.
func ExpandPath(path string) string {
	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return os.ExpandEnv(path)
}
