package paramutils

import (
	"strings"

	"prdiff/internal/configutils"
	"prdiff/internal/domain/pullrequest"
	"prdiff/internal/errcodes"
	"prdiff/internal/pkg/fs"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FlagConfig = "config"
	FlagLocal  = "local"
	FlagNest   = "nest"
)

type FlagSet interface {
	GetStringOrDefault(flag, d string) string
	GetBoolOrDefault(flag string, d bool) bool
	Changed(flag string) bool
}

type PFlagSetWrapper struct {
	Flags *pflag.FlagSet
}

func (fs *PFlagSetWrapper) GetStringOrDefault(flag, d string) string {
	return configutils.GetStringFlagOrDefault(fs.Flags, flag, d)
}

func (fs *PFlagSetWrapper) GetBoolOrDefault(flag string, d bool) bool {
	return configutils.GetBoolFlagOrDefault(fs.Flags, flag, d)
}

func (fs *PFlagSetWrapper) Changed(flag string) bool {
	return fs.Flags.Changed(flag)
}

var filesystem fs.Filesystem = fs.OS{}

// ParseRepository parses a repository given as workspace/repo.
func ParseRepository(name string) (*pullrequest.Repo, error) {
	if name == "" {
		return nil, errcodes.ErrMissingRepository
	}

	tokens := strings.Split(name, "/")
	if len(tokens) != 2 || tokens[0] == "" || tokens[1] == "" {
		return nil, errcodes.ErrRepositoryMustBeInFormWorkspaceRepo
	}

	return &pullrequest.Repo{Workspace: tokens[0], Slug: tokens[1]}, nil
}

// GetRepoPath returns the --local flag, or the working directory.
func GetRepoPath(flags FlagSet) (string, error) {
	if p := flags.GetStringOrDefault(FlagLocal, ""); p != "" {
		return p, nil
	}

	return filesystem.Getwd()
}

// LoadSettings reads the --config file when one is given, the global and
// local configuration of repoPath otherwise.
func LoadSettings(flags FlagSet, repoPath string) (*configutils.Settings, error) {
	var (
		v   *viper.Viper
		err error
	)

	if cfg := flags.GetStringOrDefault(FlagConfig, ""); cfg != "" {
		v, err = configutils.LoadConfigFile(cfg)
	} else {
		v, err = configutils.LoadConfigForPath(repoPath)
	}
	if err != nil {
		return nil, err
	}

	if flags.Changed(FlagNest) {
		v.Set(configutils.KeyFilesNestByDirectory, flags.GetBoolOrDefault(FlagNest, false))
	}

	return configutils.NewSettings(v), nil
}
