package cli

import (
	"fmt"
	"os"

	commentscmd "prdiff/internal/cli/comments"
	filescmd "prdiff/internal/cli/files"
	"prdiff/internal/cli/paramutils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prdiff",
		Short:   "prdiff shows pull request diffs and their comment threads",
		Long:    `Command-line host for reviewing the changed files and comment threads of Bitbucket pull requests.`,
		Version: fmt.Sprintf("%v, commit %v, built at %v", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
		},
	}

	rootCmd.AddCommand(
		filescmd.New(),
		commentscmd.New(),
		commentscmd.NewPost(),
	)

	rootCmd.PersistentFlags().String(paramutils.FlagConfig, "", "config path")
	rootCmd.PersistentFlags().Bool(paramutils.FlagNest, false, "nest changed files by directory")
	rootCmd.PersistentFlags().StringP(paramutils.FlagLocal, "l", "", "path of the local checkout")

	return rootCmd
}

func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
