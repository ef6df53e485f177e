package bitbucket

import (
	"bytes"
	"strings"

	"prdiff/internal/domain/pullrequest"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

func trimDiffName(name string) string {
	if name == devNull {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

func diffPath(fd *diff.FileDiff) string {
	if p := trimDiffName(fd.NewName); p != "" {
		return p
	}
	return trimDiffName(fd.OrigName)
}

func hunkMetaFor(fd *diff.FileDiff) pullrequest.HunkMeta {
	meta := pullrequest.HunkMeta{
		OldPathAdditions:  []int{},
		OldPathDeletions:  []int{},
		NewPathAdditions:  []int{},
		NewPathDeletions:  []int{},
		NewPathContextMap: map[int]int{},
	}

	for _, h := range fd.Hunks {
		oldLine := int(h.OrigStartLine)
		newLine := int(h.NewStartLine)

		body := bytes.TrimSuffix(h.Body, []byte("\n"))
		for _, line := range bytes.Split(body, []byte("\n")) {
			if len(line) == 0 {
				// an empty context line whose leading space was stripped
				meta.NewPathContextMap[newLine] = oldLine
				oldLine++
				newLine++
				continue
			}

			switch line[0] {
			case '+':
				meta.NewPathAdditions = append(meta.NewPathAdditions, newLine)
				newLine++
			case '-':
				meta.OldPathDeletions = append(meta.OldPathDeletions, oldLine)
				oldLine++
			case '\\':
				// "\ No newline at end of file"
			default:
				meta.NewPathContextMap[newLine] = oldLine
				oldLine++
				newLine++
			}
		}
	}

	return meta
}

// parseHunkMeta maps every file of a unified patch to its hunk metadata,
// keyed by the file's new path (old path for deletions).
func parseHunkMeta(patch []byte) (map[string]pullrequest.HunkMeta, error) {
	result := make(map[string]pullrequest.HunkMeta)
	if len(bytes.TrimSpace(patch)) == 0 {
		return result, nil
	}

	diffs, err := diff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, err
	}

	for _, fd := range diffs {
		result[diffPath(fd)] = hunkMetaFor(fd)
	}

	return result, nil
}
