package utils

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const ErrorCodeGeneric = 1

type runCommandError func(*cobra.Command, []string) error
type runCommandNoError func(*cobra.Command, []string)

func RunCommandWrapper(fn runCommandError) runCommandNoError {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(ErrorCodeGeneric)
		}
	}
}
