package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a user supplied location to a clean local path.
// Handles file:// URIs, a leading ~ for the home directory and bare paths.
func ResolvePath(location string) string {
	location = strings.TrimPrefix(location, "file://")
	if location == "" {
		return ""
	}
	if location == "~" || strings.HasPrefix(location, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			location = filepath.Join(home, strings.TrimPrefix(location, "~"))
		}
	}
	return filepath.Clean(location)
}
