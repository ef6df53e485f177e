package configutils

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Settings exposes the loaded configuration to the core packages.
type Settings struct {
	v *viper.Viper
}

func NewSettings(v *viper.Viper) *Settings {
	return &Settings{v: v}
}

func (s *Settings) Viper() *viper.Viper {
	return s.v
}

func (s *Settings) NestFilesByDirectory() bool {
	return s.v.GetBool(KeyFilesNestByDirectory)
}

func (s *Settings) RemoteName() string {
	return s.v.GetString(KeyGitRemote)
}

// LogLevel falls back to info for unknown levels.
func (s *Settings) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(s.v.GetString(KeyLogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
