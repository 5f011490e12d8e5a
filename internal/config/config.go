package config

import (
	"os"
	"path/filepath"
	"time"

	"adventure/internal/domain/story"
	"adventure/internal/narration"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Settings is the resolved configuration for one run.
type Settings struct {
	StorySource  string
	CacheDir     string
	CacheMaxAge  time.Duration
	FetchTimeout time.Duration
	LogLevel     string
	Narration    narration.Config
}

func SetDefaults() {
	viper.SetDefault("story.source", story.DefaultSource)
	viper.SetDefault("story.cache_dir", defaultCacheDirectory())
	viper.SetDefault("story.cache_max_age", 24*time.Hour)
	viper.SetDefault("story.fetch_timeout", 30*time.Second)

	viper.SetDefault("log.level", "warn")

	viper.SetDefault("narration.engine", narration.EngineTypeNone.String())
	viper.SetDefault("narration.voice", "default")
	viper.SetDefault("narration.speed", 1.0)
	viper.SetDefault("narration.volume", 1.0)
	viper.SetDefault("narration.cache_path", filepath.Join(defaultCacheDirectory(), "narration"))
}

// ReadConfigFile looks for adventure.yaml in $HOME/.adventure and the
// working directory. A missing file is not an error.
func ReadConfigFile() error {
	viper.SetConfigName("adventure")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.adventure")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	logrus.WithField("file", viper.ConfigFileUsed()).Debug("Using config file")
	return nil
}

func Load() Settings {
	return Settings{
		StorySource:  viper.GetString("story.source"),
		CacheDir:     viper.GetString("story.cache_dir"),
		CacheMaxAge:  viper.GetDuration("story.cache_max_age"),
		FetchTimeout: viper.GetDuration("story.fetch_timeout"),
		LogLevel:     viper.GetString("log.level"),
		Narration: narration.Config{
			Type:      viper.GetString("narration.engine"),
			Voice:     viper.GetString("narration.voice"),
			Speed:     viper.GetFloat64("narration.speed"),
			Volume:    viper.GetFloat64("narration.volume"),
			CachePath: viper.GetString("narration.cache_path"),
		},
	}
}

// ConfigureLogging sends logs to stderr at the given level so stdout only
// carries the game.
func ConfigureLogging(level string) {
	logrus.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, using warn")
		lvl = logrus.WarnLevel
	}
	logrus.SetLevel(lvl)
}

func defaultCacheDirectory() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "adventure")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".adventure", "cache")
	}
	return "cache"
}
