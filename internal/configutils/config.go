package configutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"prdiff/internal/pkg/bitbucket"
	"prdiff/internal/pkg/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	GlobalConfigDir = "~/.config/prdiff"
	LocalConfigName = ".prdiffcfg"
	EnvPrefix       = "PRDIFF"
)

const (
	KeyBitbucketUsername          = "bitbucket.username"
	KeyBitbucketPassword          = "bitbucket.password"
	KeyBitbucketURL               = "bitbucket.url"
	KeyBitbucketMaxCommentPages   = "bitbucket.maxCommentPages"
	KeyBitbucketRequestsPerSecond = "bitbucket.requestsPerSecond"
	KeyGitRemote                  = "git.remote"
	KeyFilesNestByDirectory       = "files.nestByDirectory"
	KeyLogLevel                   = "log.level"
)

var supportedFileTypes = []string{"yaml", "json", "toml"}

type FlagSet interface {
	GetString(string) (string, error)
	GetBool(string) (bool, error)
}

type configMerger interface {
	MergeConfig(io.Reader) error
}

var (
	ErrHomeDirNotFound = errors.New("unable to determine the home directory")
	ErrConfigFileIsDir = errors.New("configuration file is a directory")
)

var filesystem fs.Filesystem = fs.OS{}

var mergeConfig = func(in io.Reader, cm configMerger) error {
	return cm.MergeConfig(in)
}

var fileExists = func(filename string, fs fs.Filesystem) error {
	info, err := fs.Stat(filename)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return ErrConfigFileIsDir
	}

	return nil
}

var loadFile = func(filename string, fs fs.Filesystem) (io.ReadCloser, error) {
	err := fileExists(filename, fs)
	if err != nil {
		return nil, err
	}

	return fs.Open(filename)
}

var loadConfig = func(filename string, v *viper.Viper) error {
	f, err := loadFile(filename, filesystem)
	if err != nil {
		return err
	}
	defer f.Close()

	return mergeConfig(f, v)
}

var globalConfigDir = func() (string, error) {
	return homedir.Expand(GlobalConfigDir)
}

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBitbucketURL, bitbucket.DefaultBaseURL)
	v.SetDefault(KeyBitbucketMaxCommentPages, bitbucket.DefaultMaxCommentPages)
	v.SetDefault(KeyBitbucketRequestsPerSecond, bitbucket.DefaultRequestsPerSecond)
	v.SetDefault(KeyGitRemote, "origin")
	v.SetDefault(KeyFilesNestByDirectory, false)
	v.SetDefault(KeyLogLevel, zerolog.InfoLevel.String())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// mergeFirstOf merges the first of the candidate files that can be read
// in any of the supported formats.
func mergeFirstOf(v *viper.Viper, candidates func(ft string) string) (bool, error) {
	var lastErr error
	for _, ft := range supportedFileTypes {
		f := candidates(ft)
		v.SetConfigType(ft)
		err := loadConfig(f, v)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		log.Debug().
			Err(err).
			Str("file", f).
			Msgf("config loading failed for type %s, skipping to next filetype", ft)
		lastErr = err
	}

	return false, lastErr
}

// DefaultConfig loads ~/.config/prdiff/config.{yaml,json,toml}. A missing
// file leaves the defaults in place.
func DefaultConfig() (*viper.Viper, error) {
	cfgDir, err := globalConfigDir()
	if err != nil {
		return nil, ErrHomeDirNotFound
	}

	v := viper.New()
	SetDefaults(v)

	found, err := mergeFirstOf(v, func(ft string) string {
		return filepath.Join(cfgDir, fmt.Sprintf("config.%s", ft))
	})
	if !found && err != nil {
		return nil, errors.Wrap(err, "could not load config")
	}

	return v, nil
}

// MergeLocalConfig merges the .prdiffcfg file of path, in any of the
// supported formats, into v.
func MergeLocalConfig(v *viper.Viper, path string) error {
	f := filepath.Join(path, LocalConfigName)
	if _, err := filesystem.Stat(f); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	found, err := mergeFirstOf(v, func(string) string { return f })
	if !found {
		return errors.Wrapf(err, "could not load %s", f)
	}

	return nil
}

func LoadConfigForPath(path string) (*viper.Viper, error) {
	v, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	err = MergeLocalConfig(v, path)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// LoadConfigFile loads an explicit configuration file on top of the
// defaults. The format follows the file extension.
func LoadConfigFile(filename string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	ft := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ft == "" || ft == "yml" {
		ft = "yaml"
	}
	v.SetConfigType(ft)

	err := loadConfig(filename, v)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load %s", filename)
	}

	return v, nil
}

func GetBoolFlagOrDefault(fs FlagSet, flag string, d bool) bool {
	v, err := fs.GetBool(flag)
	if err != nil {
		return d
	}

	return v
}

func GetStringFlagOrDefault(fs FlagSet, flag, d string) string {
	s, err := fs.GetString(flag)
	if err != nil || s == "" {
		return d
	}

	return s
}
