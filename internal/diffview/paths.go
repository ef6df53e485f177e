package diffview

import (
	"fmt"
	"strings"
)

// MergePaths renders a rename as a single path, keeping the shared leading
// directories outside of the braces: a/{b.go → c.go}.
func MergePaths(oldPath, newPath string) string {
	if oldPath == "" {
		return newPath
	}
	if newPath == "" || oldPath == newPath {
		return oldPath
	}

	oldSegments := strings.Split(oldPath, "/")
	newSegments := strings.Split(newPath, "/")

	i := 0
	for i < len(oldSegments) && i < len(newSegments) && oldSegments[i] == newSegments[i] {
		i++
	}

	if i == 0 {
		return fmt.Sprintf("%s → %s", oldPath, strings.Join(newSegments, "/"))
	}

	return fmt.Sprintf(
		"%s/{%s → %s}",
		strings.Join(oldSegments[:i], "/"),
		strings.Join(oldSegments[i:], "/"),
		strings.Join(newSegments[i:], "/"),
	)
}
