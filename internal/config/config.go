package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

// Config holds all runtime settings.
type Config struct {
	Store        StoreConfig
	Timer        TimerConfig
	AccountsFile string
	Log          LogConfig
	Web          WebConfig
	CLI          CLIConfig
	// Path is the config file that was read or created.
	Path string
}

type StoreConfig struct {
	Backend    string
	SQLitePath string
	Sheets     SheetsConfig
	CacheTTL   time.Duration
	CacheSize  int
}

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	Worksheets      WorksheetNames
}

type WorksheetNames struct {
	Users    string
	Tasks    string
	Sessions string
	Logins   string
}

type TimerConfig struct {
	GlobalPauseLimit time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type WebConfig struct {
	Addr string
}

type CLIConfig struct {
	SessionFile string
}

// DefaultPath returns $XDG_CONFIG_HOME/chrono/chrono.yml, falling back to
// ~/.config/chrono/chrono.yml.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "chrono", "chrono.yml"), nil
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chrono"
	}
	return filepath.Join(home, ".chrono")
}

func setDefaults(v *viper.Viper) {
	dir := dataDir()
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite.path", filepath.Join(dir, "chrono.db"))
	v.SetDefault("store.sheets.spreadsheet_id", "")
	v.SetDefault("store.sheets.credentials_file", "")
	v.SetDefault("store.sheets.credentials_json", "")
	v.SetDefault("store.sheets.worksheets.users", "Users")
	v.SetDefault("store.sheets.worksheets.tasks", "Tâches")
	v.SetDefault("store.sheets.worksheets.sessions", "Sessions")
	v.SetDefault("store.sheets.worksheets.logins", "Logins")
	v.SetDefault("store.cache.ttl", "30s")
	v.SetDefault("store.cache.size", 16)
	v.SetDefault("timer.global_pause_limit", "1h")
	v.SetDefault("accounts_file", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("web.addr", "127.0.0.1:8080")
	v.SetDefault("cli.session_file", filepath.Join(dir, "session.json"))
}

// Load reads the config file at path (DefaultPath when empty), writing one
// with default values if it does not exist yet. CHRONO_* environment
// variables override file values, e.g. CHRONO_STORE_BACKEND.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("CHRONO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	}

	cfg := fromViper(v)
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("store.backend"))),
			SQLitePath: v.GetString("store.sqlite.path"),
			Sheets: SheetsConfig{
				SpreadsheetID:   v.GetString("store.sheets.spreadsheet_id"),
				CredentialsFile: v.GetString("store.sheets.credentials_file"),
				CredentialsJSON: v.GetString("store.sheets.credentials_json"),
				Worksheets: WorksheetNames{
					Users:    v.GetString("store.sheets.worksheets.users"),
					Tasks:    v.GetString("store.sheets.worksheets.tasks"),
					Sessions: v.GetString("store.sheets.worksheets.sessions"),
					Logins:   v.GetString("store.sheets.worksheets.logins"),
				},
			},
			CacheTTL:  v.GetDuration("store.cache.ttl"),
			CacheSize: v.GetInt("store.cache.size"),
		},
		Timer: TimerConfig{
			GlobalPauseLimit: v.GetDuration("timer.global_pause_limit"),
		},
		AccountsFile: v.GetString("accounts_file"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Web: WebConfig{Addr: v.GetString("web.addr")},
		CLI: CLIConfig{SessionFile: v.GetString("cli.session_file")},
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case BackendSheets:
		if c.Store.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("store.sheets.spreadsheet_id is required for the sheets backend")
		}
		if c.Store.Sheets.CredentialsFile == "" && c.Store.Sheets.CredentialsJSON == "" {
			return fmt.Errorf("store.sheets.credentials_file or store.sheets.credentials_json is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q (want memory, sqlite or sheets)", c.Store.Backend)
	}
	if c.Store.CacheTTL < 0 {
		return fmt.Errorf("store.cache.ttl must not be negative")
	}
	if c.Timer.GlobalPauseLimit <= 0 {
		return fmt.Errorf("timer.global_pause_limit must be positive")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// NewLogger builds the process logger. An invalid level falls back to warn.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
