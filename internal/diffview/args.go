package diffview

import (
	"context"

	"prdiff/internal/domain/pullrequest"

	"github.com/rs/zerolog/log"
)

// ConflictMarker prefixes the display name of files in merge conflict.
const ConflictMarker = "⚠️ CONFLICTED: "

const defaultRemoteName = "origin"

// CommentProvider renders the comment threads carried by a locator.
type CommentProvider interface {
	ProvideComments(ctx context.Context, l *Locator) error
}

// DiffViewArgs is everything a host needs to open the diff of one file.
type DiffViewArgs struct {
	// Open asks the comment provider to render both sides.
	Open     func(ctx context.Context) error
	Left     *Locator
	Right    *Locator
	LeftURI  string
	RightURI string
	Title    string

	PRURL            string
	FileDisplayName  string
	FileDiffStatus   pullrequest.FileStatus
	NumberOfComments int
}

type ArgsOptions struct {
	Comments     *pullrequest.PaginatedComments
	FileDiff     *pullrequest.FileDiff
	PullRequest  *pullrequest.Entity
	Provider     CommentProvider
	IsConflicted bool
}

func qualifiedRefs(pr *pullrequest.Entity) (string, string) {
	if pr.LocalRepo == nil {
		return pr.Destination.Name, pr.Source.Name
	}

	remote := pr.LocalRepo.RemoteName()
	if remote == "" {
		remote = defaultRemoteName
	}

	return remote + "/" + pr.Destination.Name, remote + "/" + pr.Source.Name
}

func resolveMergeBase(ctx context.Context, pr *pullrequest.Entity) string {
	mergeBase := pr.Destination.CommitHash
	if pr.LocalRepo == nil {
		return mergeBase
	}

	destination, source := qualifiedRefs(pr)
	hash, err := pr.LocalRepo.GetMergeBase(ctx, destination, source)
	if err != nil {
		log.Debug().
			Err(err).
			Str("destination", destination).
			Str("source", source).
			Msg("error getting merge base, using destination commit")
		return mergeBase
	}

	return hash
}

// FileDisplayName returns the merged path of a file diff, marked when the
// file is in conflict.
func FileDisplayName(fd *pullrequest.FileDiff, isConflicted bool) string {
	name := MergePaths(fd.OldPath, fd.NewPath)
	if isConflicted || fd.Status == pullrequest.FileStatusConflict {
		name = ConflictMarker + name
	}

	return name
}

func selectThreads(index *ThreadIndex, fd *pullrequest.FileDiff) []Thread {
	threads := []Thread{}
	if fd.OldPath != "" && fd.NewPath != "" && fd.OldPath != fd.NewPath {
		threads = append(threads, index.Get(fd.OldPath)...)
		threads = append(threads, index.Get(fd.NewPath)...)
	} else if fd.NewPath != "" {
		threads = append(threads, index.Get(fd.NewPath)...)
	} else if fd.OldPath != "" {
		threads = append(threads, index.Get(fd.OldPath)...)
	}

	return threads
}

func nonNil(lines []int) []int {
	if lines == nil {
		return []int{}
	}
	return lines
}

// GetArgsForDiffView builds the two locators of a file diff and the action
// that renders their comments.
func GetArgsForDiffView(ctx context.Context, o *ArgsOptions) (*DiffViewArgs, error) {
	pr := o.PullRequest
	fd := o.FileDiff

	mergeBase := resolveMergeBase(ctx, pr)
	displayName := FileDisplayName(fd, o.IsConflicted)

	var comments []*pullrequest.Comment
	if o.Comments != nil {
		comments = o.Comments.Data
	}
	threads := selectThreads(BuildThreadsByFile(comments), fd)

	lhsThreads := []Thread{}
	rhsThreads := []Thread{}
	for _, t := range threads {
		if t.IsLeftSide() {
			lhsThreads = append(lhsThreads, t)
		} else {
			rhsThreads = append(rhsThreads, t)
		}
	}

	contextMap := fd.HunkMeta.NewPathContextMap
	if contextMap == nil {
		contextMap = map[int]int{}
	}

	left := &Locator{
		Site:           pr.Site,
		LHS:            true,
		RepoHref:       pr.Destination.Repo.URL,
		PRHref:         pr.URL,
		PRID:           pr.ID,
		BranchName:     pr.Destination.Name,
		CommitHash:     mergeBase,
		RHSCommitHash:  pr.Source.CommitHash,
		Path:           fd.OldPath,
		CommentThreads: lhsThreads,
		AddedLines:     nonNil(fd.HunkMeta.OldPathAdditions),
		DeletedLines:   nonNil(fd.HunkMeta.OldPathDeletions),
		LineContextMap: contextMap,
	}

	right := &Locator{
		Site:           pr.Site,
		LHS:            false,
		RepoHref:       pr.Source.Repo.URL,
		PRHref:         pr.URL,
		PRID:           pr.ID,
		BranchName:     pr.Source.Name,
		CommitHash:     pr.Source.CommitHash,
		Path:           fd.NewPath,
		CommentThreads: rhsThreads,
		AddedLines:     nonNil(fd.HunkMeta.NewPathAdditions),
		DeletedLines:   nonNil(fd.HunkMeta.NewPathDeletions),
		LineContextMap: contextMap,
	}

	leftURI, err := left.URI()
	if err != nil {
		return nil, err
	}
	rightURI, err := right.URI()
	if err != nil {
		return nil, err
	}

	provider := o.Provider
	return &DiffViewArgs{
		Open: func(ctx context.Context) error {
			if provider == nil {
				return nil
			}
			err := provider.ProvideComments(ctx, left)
			if err != nil {
				return err
			}
			return provider.ProvideComments(ctx, right)
		},
		Left:             left,
		Right:            right,
		LeftURI:          leftURI,
		RightURI:         rightURI,
		Title:            displayName,
		PRURL:            pr.URL,
		FileDisplayName:  displayName,
		FileDiffStatus:   fd.Status,
		NumberOfComments: len(threads),
	}, nil
}
