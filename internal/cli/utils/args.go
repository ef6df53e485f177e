package utils

// SplitPullRequestArgs splits "[workspace/repo] <pr-id> rest..." into its
// parts. The repository is empty when only the id is given.
func SplitPullRequestArgs(args []string, rest int) (repo, id string, tail []string) {
	if len(args) > rest+1 {
		return args[0], args[1], args[2:]
	}
	if len(args) == 0 {
		return "", "", nil
	}

	return "", args[0], args[1:]
}
