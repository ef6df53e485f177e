package comments

import (
	"context"
	"fmt"
	"io"
	"strings"

	"prdiff/internal/cli/paramutils"
	"prdiff/internal/cli/utils"
	"prdiff/internal/commentctl"
	"prdiff/internal/commentctl/memhost"
	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/filechanges"
	"prdiff/internal/prdetail"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var ErrFileNotChanged = errors.New("file is not changed by the pull request")

type opened struct {
	pr     *pullrequest.Entity
	detail *prdetail.Detail
	file   *filechanges.FileChange
}

// openFile loads the pull request and renders the threads of path. The
// caller disposes the returned detail.
func openFile(ctx context.Context, s *utils.Session, repoArg, id, path string) (*opened, error) {
	repo, err := s.Repository(repoArg)
	if err != nil {
		return nil, err
	}

	pr, err := s.PullRequest(ctx, repo, id)
	if err != nil {
		return nil, err
	}

	d := s.NewDetail(pr, nil)
	err = d.Load(ctx)
	if err != nil {
		d.Dispose()
		return nil, err
	}

	f := utils.FindFile(d.Children(ctx), path)
	if f == nil {
		d.Dispose()
		return nil, errors.Wrap(ErrFileNotChanged, path)
	}

	err = f.Args.Open(ctx)
	if err != nil {
		d.Dispose()
		return nil, err
	}

	return &opened{pr: pr, detail: d, file: f}, nil
}

func commentText(c commentctl.DisplayComment) string {
	switch {
	case c.Deleted:
		return "(deleted)"
	case c.IsTask && c.IsComplete:
		return "[x] " + c.Body
	case c.IsTask:
		return "[ ] " + c.Body
	}
	return c.Body
}

func addThreads(table *uitable.Table, side string, threads []*memhost.Thread) {
	for _, t := range threads {
		for i, c := range t.Comments {
			line := ""
			if i == 0 {
				line = fmt.Sprintf("%d", t.Range.StartLine+1)
			}
			indent := ""
			if i > 0 {
				indent = "  "
			}
			table.AddRow(side, line, c.ID, c.Author, indent+commentText(c))
		}
	}
}

func printThreads(out io.Writer, s *utils.Session, f *filechanges.FileChange) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	table.AddRow("SIDE", "LINE", "ID", "AUTHOR", "COMMENT")
	table.AddRow("----", "----", "--", "------", "-------")

	addThreads(table, "old", s.Threads.LiveOn(f.Args.Left.Path, true))
	addThreads(table, "new", s.Threads.LiveOn(f.Args.Right.Path, false))

	fmt.Fprintln(out, f.Args.Title)
	fmt.Fprintln(out, table.String())
}

func executeList(ctx context.Context, out io.Writer, s *utils.Session, repoArg, id, path string) error {
	o, err := openFile(ctx, s, repoArg, id, path)
	if err != nil {
		return err
	}
	defer o.detail.Dispose()

	printThreads(out, s, o.file)
	return nil
}

type postParams struct {
	Path     string
	Line     int
	OldSide  bool
	ThreadID string
	Content  string
}

func executePost(ctx context.Context, out io.Writer, s *utils.Session, repoArg, id string, p *postParams) error {
	if strings.TrimSpace(p.Content) == "" {
		return errors.New("comment content is empty")
	}

	o, err := openFile(ctx, s, repoArg, id, p.Path)
	if err != nil {
		return err
	}
	defer o.detail.Dispose()

	locator := o.file.Args.Right
	if p.OldSide {
		locator = o.file.Args.Left
	}

	c, err := s.Comments.AddComment(ctx, &commentctl.AddCommentOptions{
		PullRequest: o.pr,
		Locator:     locator,
		ThreadID:    p.ThreadID,
		Line:        p.Line,
		Content:     p.Content,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Posted comment %s\n", c.ID)
	printThreads(out, s, o.file)
	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments [workspace/repo] <pr-id> <path>",
		Short: "Show the comment threads of a changed file",
		Args:  cobra.RangeArgs(2, 3),
		Run: utils.RunCommandWrapper(func(cmd *cobra.Command, args []string) error {
			s, err := utils.Load(&paramutils.PFlagSetWrapper{Flags: cmd.Flags()})
			if err != nil {
				return err
			}

			repoArg, id, rest := utils.SplitPullRequestArgs(args, 1)
			return executeList(cmd.Context(), cmd.OutOrStdout(), s, repoArg, id, rest[0])
		}),
	}

	return cmd
}

func NewPost() *cobra.Command {
	p := &postParams{}

	cmd := &cobra.Command{
		Use:   "comment [workspace/repo] <pr-id> <path> <text>",
		Short: "Comment on a changed file",
		Long: `Starts a new thread on a line of a changed file, or replies to an
existing thread when --thread is given.`,
		Args: cobra.RangeArgs(3, 4),
		Run: utils.RunCommandWrapper(func(cmd *cobra.Command, args []string) error {
			s, err := utils.Load(&paramutils.PFlagSetWrapper{Flags: cmd.Flags()})
			if err != nil {
				return err
			}

			repoArg, id, rest := utils.SplitPullRequestArgs(args, 2)
			p.Path, p.Content = rest[0], rest[1]
			return executePost(cmd.Context(), cmd.OutOrStdout(), s, repoArg, id, p)
		}),
	}

	cmd.Flags().IntVarP(&p.Line, "line", "n", 1, "line the new thread is anchored on")
	cmd.Flags().BoolVar(&p.OldSide, "old", false, "anchor the thread on the old side of the diff")
	cmd.Flags().StringVarP(&p.ThreadID, "thread", "t", "", "id of the thread to reply to")

	return cmd
}
