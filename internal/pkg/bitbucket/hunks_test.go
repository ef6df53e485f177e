package bitbucket

import (
	"strings"
	"testing"

	"prdiff/internal/domain/pullrequest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func parseAll(values string) ([]*pullrequest.Comment, error) {
	it := &bitbucketIterator[*pullrequest.Comment]{Parse: parseComment}
	return it.parse(gjson.Parse(`{"values": ` + values + `}`))
}

func TestParseHunkMeta(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		meta, err := parseHunkMeta([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, meta)
	})

	t.Run("deleted files are keyed by their old path", func(t *testing.T) {
		p := strings.Join([]string{
			"diff --git a/old.txt b/old.txt",
			"deleted file mode 100644",
			"index 1111111..0000000",
			"--- a/old.txt",
			"+++ /dev/null",
			"@@ -1,2 +0,0 @@",
			"-one",
			"-two",
			"",
		}, "\n")

		meta, err := parseHunkMeta([]byte(p))
		require.NoError(t, err)
		require.Contains(t, meta, "old.txt")
		assert.Equal(t, []int{1, 2}, meta["old.txt"].OldPathDeletions)
		assert.Empty(t, meta["old.txt"].NewPathAdditions)
	})

	t.Run("line numbers continue across hunks", func(t *testing.T) {
		p := strings.Join([]string{
			"diff --git a/f.txt b/f.txt",
			"index 1111111..2222222 100644",
			"--- a/f.txt",
			"+++ b/f.txt",
			"@@ -1,2 +1,3 @@",
			" a",
			"+b",
			" c",
			"@@ -10,2 +11,1 @@",
			" x",
			"-y",
			"\\ No newline at end of file",
			"",
		}, "\n")

		meta, err := parseHunkMeta([]byte(p))
		require.NoError(t, err)
		m := meta["f.txt"]
		assert.Equal(t, []int{2}, m.NewPathAdditions)
		assert.Equal(t, []int{11}, m.OldPathDeletions)
		assert.Equal(t, map[int]int{1: 1, 3: 2, 11: 10}, m.NewPathContextMap)
	})
}

func TestNestComments(t *testing.T) {
	flat, err := parseAll(`[
		{"id": 1, "content": {"raw": "root"}},
		{"id": 2, "parent": {"id": 1}, "deleted": true},
		{"id": 3, "parent": {"id": 2}, "content": {"raw": "grandchild"}},
		{"id": 4, "parent": {"id": 99}, "content": {"raw": "orphan"}},
		{"id": 5, "deleted": true}
	]`)
	require.NoError(t, err)

	roots := nestComments(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "1", roots[0].ID)
	assert.Equal(t, "4", roots[1].ID)

	require.Len(t, roots[0].Children, 1)
	deleted := roots[0].Children[0]
	assert.True(t, deleted.Deleted)
	require.Len(t, deleted.Children, 1)
	assert.Equal(t, "grandchild", deleted.Children[0].Content)
}
