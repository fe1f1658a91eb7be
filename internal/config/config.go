// Package config loads application settings from defaults, an optional config
// file, a .env file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WORTKARTEN_DECK_PATH
const EnvPrefix = "WORTKARTEN"

// Run modes
const (
	ModeCLI = "cli"
	ModeWeb = "web"
	ModeBot = "bot"
)

// Deck backends
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Mode     string         `mapstructure:"mode" validate:"required,oneof=cli web bot"`
	Log      LogConfig      `mapstructure:"log"`
	Deck     DeckConfig     `mapstructure:"deck"`
	Database DatabaseConfig `mapstructure:"database"`
	Web      WebConfig      `mapstructure:"web"`
	Bot      BotConfig      `mapstructure:"bot"`
	Practice PracticeConfig `mapstructure:"practice"`

	// one-shot spreadsheet exchange, set from flags only
	ImportPath string `mapstructure:"import"`
	ExportPath string `mapstructure:"export"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// DeckConfig selects where flashcards are persisted
type DeckConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=json sqlite postgres"`
	Path    string `mapstructure:"path" validate:"required"`
}

// DatabaseConfig is used by the sqlite and postgres backends.
// For sqlite an empty DSN means Deck.Path.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// WebConfig configures the form interface
type WebConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// BotConfig configures the Telegram adapter
type BotConfig struct {
	Token    string `mapstructure:"token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Reminder string `mapstructure:"reminder"` // cron expression, empty disables reminders
}

// PracticeConfig tunes practice sessions
type PracticeConfig struct {
	Seed   int64   `mapstructure:"seed"`
	Cutoff float64 `mapstructure:"cutoff" validate:"gt=0,lte=1"`
}

// ErrInvalidConfig wraps validation failures
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Flags returns the command-line flag set understood by Load
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("wortkarten", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("mode", ModeCLI, "interface to run: cli, web or bot")
	fs.String("deck", "flashcards.json", "path of the flashcard file")
	fs.String("backend", BackendJSON, "deck storage: json, sqlite or postgres")
	fs.Int64("seed", 0, "practice shuffle seed, 0 for random")
	fs.String("import", "", "import flashcards from an .xlsx or .csv file and exit")
	fs.String("export", "", "export flashcards to an .xlsx or .csv file and exit")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	return fs
}

// Load builds the configuration. fs may be nil when no flags are parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("wortkarten")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and mode-specific requirements
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Mode == ModeBot && c.Bot.Token == "" {
		return fmt.Errorf("%w: bot.token is required in bot mode", ErrInvalidConfig)
	}
	if c.Deck.Backend == BackendPostgres && c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required for the postgres backend", ErrInvalidConfig)
	}
	return nil
}

// DatabaseDSN returns the data source for the SQL backends
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Deck.Path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", "")
	v.SetDefault("mode", ModeCLI)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("deck.backend", BackendJSON)
	v.SetDefault("deck.path", "flashcards.json")
	v.SetDefault("database.dsn", "")
	v.SetDefault("web.addr", "127.0.0.1:8080")
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.chat_id", 0)
	v.SetDefault("bot.reminder", "")
	v.SetDefault("practice.seed", 0)
	v.SetDefault("practice.cutoff", 0.75)
	v.SetDefault("import", "")
	v.SetDefault("export", "")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"config":        "config",
		"mode":          "mode",
		"deck.path":     "deck",
		"deck.backend":  "backend",
		"practice.seed": "seed",
		"import":        "import",
		"export":        "export",
		"log.level":     "log-level",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}
