package files

import (
	"context"
	"fmt"
	"io"
	"sync"

	"prdiff/internal/cli/paramutils"
	"prdiff/internal/cli/utils"
	"prdiff/internal/prdetail"

	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

func runCmd(cmd *cobra.Command, args []string) error {
	flags := &paramutils.PFlagSetWrapper{Flags: cmd.Flags()}

	s, err := utils.Load(flags)
	if err != nil {
		return err
	}

	repoArg, id, _ := utils.SplitPullRequestArgs(args, 0)
	return execute(cmd.Context(), cmd.OutOrStdout(), s, repoArg, id)
}

func execute(ctx context.Context, out io.Writer, s *utils.Session, repoArg, id string) error {
	repo, err := s.Repository(repoArg)
	if err != nil {
		return err
	}

	pr, err := s.PullRequest(ctx, repo, id)
	if err != nil {
		return err
	}

	writer := uilive.New()
	writer.Out = out

	var mu sync.Mutex
	draw := func(d *prdetail.Detail) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(writer, utils.NodeTable(d.Children(ctx)).String()+"\n")
		_ = writer.Flush()
	}

	d := s.NewDetail(pr, draw)
	defer d.Dispose()

	err = d.Load(ctx)
	if err != nil {
		return err
	}

	draw(d)
	fmt.Fprintln(out, pr.URL)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files [workspace/repo] <pr-id>",
		Short: "Show the changed files of a pull request",
		Long: `Shows the description, commits, related issues and changed files
of a pull request. The repository defaults to the remote of the local checkout.`,
		Args: cobra.RangeArgs(1, 2),
		Run:  utils.RunCommandWrapper(runCmd),
	}

	return cmd
}
