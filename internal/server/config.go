package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BuildInfo carries version metadata stamped into the binary.
type BuildInfo struct {
	Version string
	Commit  string
}

// LogConfig selects the log handler and minimum level.
type LogConfig struct {
	Format string `mapstructure:"format"` // "text" or "json"
	Level  string `mapstructure:"level"`
}

// Config is everything the server needs. It is built once at startup and
// passed to New; nothing in this package reads the environment on its own.
type Config struct {
	Addr string `mapstructure:"addr"` // e.g. ":8080"

	// UploadDir is where accepted files are stored. It is created on the
	// first upload if missing.
	UploadDir string `mapstructure:"upload_dir"`
	// PublicPrefix is the URL path stored files are served under.
	PublicPrefix string `mapstructure:"public_prefix"`
	// TempDir receives in-flight uploads. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir"`

	MaxUploadSize  int64 `mapstructure:"max_upload_size"`  // per file, bytes
	MaxPostSize    int64 `mapstructure:"max_post_size"`    // per request body, bytes
	MaxFileUploads int   `mapstructure:"max_file_uploads"` // file parts per request

	// Leftover temp parts and staging copies older than CleanupMaxAge are
	// removed on CleanupSchedule (cron syntax). An empty schedule or a zero
	// age disables the sweep.
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	CleanupMaxAge   time.Duration `mapstructure:"cleanup_max_age"`

	Env string    `mapstructure:"env"`
	Log LogConfig `mapstructure:"log"`

	Build BuildInfo `mapstructure:"-"`
}

const (
	defaultAddr           = ":8080"
	defaultUploadDir      = "./uploads"
	defaultPublicPrefix   = "/uploads"
	defaultMaxUploadSize  = 100 << 20
	defaultMaxPostSize    = 110 << 20
	defaultMaxFileUploads = 20
	defaultCleanupEvery   = "@every 1h"
	defaultCleanupMaxAge  = 24 * time.Hour

	envPrefix = "PPT"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Addr:            defaultAddr,
		UploadDir:       defaultUploadDir,
		PublicPrefix:    defaultPublicPrefix,
		MaxUploadSize:   defaultMaxUploadSize,
		MaxPostSize:     defaultMaxPostSize,
		MaxFileUploads:  defaultMaxFileUploads,
		CleanupSchedule: defaultCleanupEvery,
		CleanupMaxAge:   defaultCleanupMaxAge,
		Env:             "development",
		Log:             LogConfig{Format: "text", Level: "info"},
	}
}

// LoadConfig reads defaults, then an optional config file, then PPT_*
// environment variables. An explicit path that does not exist is an error;
// a missing config.yaml in the search path is not.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("addr", def.Addr)
	v.SetDefault("upload_dir", def.UploadDir)
	v.SetDefault("public_prefix", def.PublicPrefix)
	v.SetDefault("temp_dir", def.TempDir)
	v.SetDefault("max_upload_size", def.MaxUploadSize)
	v.SetDefault("max_post_size", def.MaxPostSize)
	v.SetDefault("max_file_uploads", def.MaxFileUploads)
	v.SetDefault("cleanup_schedule", def.CleanupSchedule)
	v.SetDefault("cleanup_max_age", def.CleanupMaxAge)
	v.SetDefault("env", def.Env)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.PublicPrefix = normalisePrefix(cfg.PublicPrefix)

	return cfg, nil
}

// withDefaults fills zero values so a hand-built Config is usable.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.UploadDir == "" {
		c.UploadDir = def.UploadDir
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = def.PublicPrefix
	}
	c.PublicPrefix = normalisePrefix(c.PublicPrefix)
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	return c
}

// normalisePrefix turns "uploads/", "/uploads/" and "/uploads" into "/uploads".
func normalisePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return defaultPublicPrefix
	}
	return "/" + p
}
