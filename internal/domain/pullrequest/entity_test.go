package pullrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseFileStatus(t *testing.T) {
	tests := []struct {
		in   string
		want FileStatus
	}{
		{"added", FileStatusAdded},
		{"removed", FileStatusDeleted},
		{"local deleted", FileStatusDeleted},
		{"remote deleted", FileStatusDeleted},
		{"modified", FileStatusModified},
		{"renamed", FileStatusRenamed},
		{"merge conflict", FileStatusConflict},
		{"something else", FileStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFileStatus(tt.in))
		})
	}
}

func Test_Repo_FullName(t *testing.T) {
	assert.Equal(t, "ws/repo", Repo{Workspace: "ws", Slug: "repo"}.FullName())
}
