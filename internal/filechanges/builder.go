package filechanges

import (
	"context"
	"fmt"

	"prdiff/internal/diffview"
	"prdiff/internal/domain/pullrequest"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Config holds the settings the builder depends on.
type Config interface {
	NestFilesByDirectory() bool
}

type Builder struct {
	config   Config
	provider diffview.CommentProvider
}

func NewBuilder(config Config, provider diffview.CommentProvider) *Builder {
	return &Builder{config: config, provider: provider}
}

func filePath(fd *pullrequest.FileDiff) string {
	if fd.NewPath != "" {
		return fd.NewPath
	}
	return fd.OldPath
}

func isConflicted(fd *pullrequest.FileDiff, conflictedFiles []string) bool {
	return (fd.OldPath != "" && slices.Contains(conflictedFiles, fd.OldPath)) ||
		(fd.NewPath != "" && slices.Contains(conflictedFiles, fd.NewPath))
}

func (b *Builder) buildFile(
	ctx context.Context,
	pr *pullrequest.Entity,
	allComments *pullrequest.PaginatedComments,
	fd *pullrequest.FileDiff,
	conflictedFiles []string,
) (node Node) {
	p := filePath(fd)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("file", p).Msg("cannot build file change")
			node = &Warning{Label: fmt.Sprintf("Unable to show %s", p)}
		}
	}()

	args, err := diffview.GetArgsForDiffView(ctx, &diffview.ArgsOptions{
		Comments:     allComments,
		FileDiff:     fd,
		PullRequest:  pr,
		Provider:     b.provider,
		IsConflicted: isConflicted(fd, conflictedFiles),
	})
	if err != nil {
		log.Error().Err(errors.Wrapf(err, "building diff of %s", p)).Msg("cannot build file change")
		return &Warning{Label: fmt.Sprintf("Unable to show %s", p)}
	}

	return &FileChange{Path: p, Args: args}
}

// CreateFileChangesNodes builds one node per changed file, nested by
// directory when configured. Tasks are attached to copies of the comments
// first, the given comments are left untouched.
func (b *Builder) CreateFileChangesNodes(
	ctx context.Context,
	pr *pullrequest.Entity,
	allComments *pullrequest.PaginatedComments,
	fileDiffs []*pullrequest.FileDiff,
	conflictedFiles []string,
	tasks []*pullrequest.Task,
) []Node {
	if allComments == nil {
		allComments = &pullrequest.PaginatedComments{}
	}
	// nodes from an earlier build may still be read by the host
	allComments = &pullrequest.PaginatedComments{
		Data: diffview.CloneComments(allComments.Data),
		Next: allComments.Next,
	}
	diffview.AttachTasks(allComments.Data, tasks)

	entries := make([]entry, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		if fd == nil {
			continue
		}
		entries = append(entries, entry{
			path: filePath(fd),
			node: b.buildFile(ctx, pr, allComments, fd, conflictedFiles),
		})
	}

	var nodes []Node
	if b.config != nil && b.config.NestFilesByDirectory() {
		nodes = nestByDirectory(entries)
	} else {
		nodes = make([]Node, 0, len(entries)+1)
		for _, e := range entries {
			nodes = append(nodes, e.node)
		}
	}

	if allComments.Next != "" {
		nodes = append(nodes, &Warning{Label: PaginationWarning})
	}

	return nodes
}
