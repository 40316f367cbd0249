package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// IsHidden reports whether a file name starts with a dot
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
