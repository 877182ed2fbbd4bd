// Package config loads datavault settings from defaults, an optional YAML
// file and DATAVAULT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in the
// key replaced by underscores: store.backend becomes DATAVAULT_STORE_BACKEND.
const EnvPrefix = "DATAVAULT"

// ErrInvalid wraps every validation failure from Load.
var ErrInvalid = errors.New("invalid config")

type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HTTPConfig struct {
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KeygenConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

type ExportConfig struct {
	FilePrefix string `mapstructure:"file_prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the merged configuration for both the server and the client
// commands.
type Config struct {
	ListenAddr string       `mapstructure:"listen_addr"`
	DataDir    string       `mapstructure:"data_dir"`
	Store      StoreConfig  `mapstructure:"store"`
	HTTP       HTTPConfig   `mapstructure:"http"`
	Keygen     KeygenConfig `mapstructure:"keygen"`
	Export     ExportConfig `mapstructure:"export"`
	Log        LogConfig    `mapstructure:"log"`

	// Client side.
	ServerURL string `mapstructure:"server_url"`
	APIKey    string `mapstructure:"api_key"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Home returns $DATAVAULT_HOME, or ~/.datavault.
func Home() string {
	if h := os.Getenv(EnvPrefix + "_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".datavault"
	}
	return filepath.Join(home, ".datavault")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "127.0.0.1:7300")
	v.SetDefault("data_dir", Home())
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("http.max_body_bytes", 16<<20)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("keygen.per_minute", 5)
	v.SetDefault("export.file_prefix", "ijaxt-data-export")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server_url", "http://127.0.0.1:7300")
	v.SetDefault("api_key", "")
}

// Load builds a Config. An explicit path must exist; otherwise config.yaml
// under Home is read when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Home())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values Load cannot coerce.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("%w: store.backend %q must be sqlite, badger or memory", ErrInvalid, c.Store.Backend)
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("%w: store.timeout must be positive", ErrInvalid)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: http.max_body_bytes must be positive", ErrInvalid)
	}
	if c.Keygen.PerMinute <= 0 {
		return fmt.Errorf("%w: keygen.per_minute must be positive", ErrInvalid)
	}
	if c.Export.FilePrefix == "" {
		return fmt.Errorf("%w: export.file_prefix must not be empty", ErrInvalid)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q must be text or json", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Logger builds the process logger described by c.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return level, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
