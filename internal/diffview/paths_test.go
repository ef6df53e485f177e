package diffview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMergePaths(t *testing.T) {
	tests := []struct {
		name    string
		oldPath string
		newPath string
		want    string
	}{
		{"same path", "src/a.go", "src/a.go", "src/a.go"},
		{"common prefix", "A/B/C/D/file.txt", "A/B/E/D/file.txt", "A/B/{C/D/file.txt → E/D/file.txt}"},
		{"rename in directory", "src/a.js", "src/b.js", "src/{a.js → b.js}"},
		{"no common prefix", "a/x.go", "b/x.go", "a/x.go → b/x.go"},
		{"top level rename", "a.go", "b.go", "a.go → b.go"},
		{"added file", "", "new.go", "new.go"},
		{"deleted file", "old.go", "", "old.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergePaths(tt.oldPath, tt.newPath))
		})
	}
}

func TestMergePaths_Properties(t *testing.T) {
	segment := rapid.StringMatching(`[a-z]{1,6}(\.go)?`)
	path := rapid.Custom(func(t *rapid.T) string {
		return strings.Join(rapid.SliceOfN(segment, 1, 5).Draw(t, "segments"), "/")
	})

	t.Run("identity", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			p := path.Draw(rt, "path")
			assert.Equal(rt, p, MergePaths(p, p))
		})
	})

	t.Run("shared prefix stays outside the braces", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			prefix := path.Draw(rt, "prefix")
			oldName := segment.Draw(rt, "old")
			newName := segment.Draw(rt, "new")
			if oldName == newName {
				rt.Skip("identical names")
			}

			got := MergePaths(prefix+"/"+oldName, prefix+"/"+newName)
			assert.Equal(rt, prefix+"/{"+oldName+" → "+newName+"}", got)
		})
	})
}
