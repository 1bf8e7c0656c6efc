// Package config loads and validates configuration for all carteira binaries.
// Values come from defaults, an optional config file and environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendExcel  = "excel"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Telegram   TelegramConfig
	Storage    StorageConfig
	Bot        BotConfig
	Dashboard  DashboardConfig
	Categories CategoriesConfig
	AMQP       AMQPConfig
	Logging    LoggingConfig
}

// TelegramConfig configures the bot transport. Token is only required by the
// bot binary; the dashboard runs without it.
type TelegramConfig struct {
	Token   string
	Timeout int // long-poll timeout in seconds
}

type StorageConfig struct {
	Backend    string
	ExcelFile  string
	SQLitePath string
}

type BotConfig struct {
	StatementLimit int // max rows shown by the statement command
}

type DashboardConfig struct {
	Title    string
	Port     string
	CacheTTL time.Duration
}

// CategoriesConfig holds the allow-lists, one per transaction kind.
// Comma-separated in the environment, a list in the config file.
type CategoriesConfig struct {
	Receitas []string
	Gastos   []string
}

// AMQPConfig configures the optional event bus. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Timeout: v.GetInt("TELEGRAM_TIMEOUT"),
		},
		Storage: StorageConfig{
			Backend:    v.GetString("STORAGE_BACKEND"),
			ExcelFile:  v.GetString("EXCEL_FILE"),
			SQLitePath: v.GetString("SQLITE_DB_PATH"),
		},
		Bot: BotConfig{
			StatementLimit: v.GetInt("BOT_STATEMENT_LIMIT"),
		},
		Dashboard: DashboardConfig{
			Title:    v.GetString("DASHBOARD_TITLE"),
			Port:     v.GetString("PORT"),
			CacheTTL: v.GetDuration("DASHBOARD_CACHE_TTL"),
		},
		Categories: CategoriesConfig{
			Receitas: splitList(v.GetString("CATEGORIAS_RECEITAS")),
			Gastos:   splitList(v.GetString("CATEGORIAS_GASTOS")),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
			Queue:    v.GetString("AMQP_QUEUE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_TIMEOUT", 30)

	v.SetDefault("STORAGE_BACKEND", BackendExcel)
	v.SetDefault("EXCEL_FILE", "./data/transacoes.xlsx")
	v.SetDefault("SQLITE_DB_PATH", "./data/carteira.db")

	v.SetDefault("BOT_STATEMENT_LIMIT", 10)

	v.SetDefault("DASHBOARD_TITLE", "Carteira")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DASHBOARD_CACHE_TTL", time.Minute)

	v.SetDefault("CATEGORIAS_RECEITAS", "salario,freelance,investimentos,outros")
	v.SetDefault("CATEGORIAS_GASTOS", "alimentacao,transporte,moradia,saude,lazer,educacao,outros")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "carteira")
	v.SetDefault("AMQP_QUEUE", "transacoes")

	v.SetDefault("LOG_LEVEL", "info")
}

// Validate checks everything except the Telegram token, which only the bot
// needs. All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendExcel:
		if c.Storage.ExcelFile == "" {
			problems = append(problems, "EXCEL_FILE cannot be empty with the excel backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty with the sqlite backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of excel, sqlite, memory", c.Storage.Backend))
	}

	if c.Bot.StatementLimit < 1 {
		problems = append(problems, "BOT_STATEMENT_LIMIT must be at least 1")
	}

	if c.Dashboard.Port == "" {
		problems = append(problems, "PORT cannot be empty")
	}
	if c.Dashboard.CacheTTL < 0 {
		problems = append(problems, "DASHBOARD_CACHE_TTL cannot be negative")
	}

	if len(c.Categories.Receitas) == 0 {
		problems = append(problems, "CATEGORIAS_RECEITAS cannot be empty")
	}
	if len(c.Categories.Gastos) == 0 {
		problems = append(problems, "CATEGORIAS_GASTOS cannot be empty")
	}

	if c.AMQP.URL != "" {
		u, err := url.Parse(c.AMQP.URL)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL %q: %v", c.AMQP.URL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
		if c.AMQP.Queue == "" {
			problems = append(problems, "AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q: must be one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ValidateTelegram adds the bot-only requirement on top of Validate.
func (c *Config) ValidateTelegram() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.Timeout < 1 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be at least 1 second")
	}
	return nil
}

// EventBusEnabled reports whether an AMQP URL was configured.
func (c *Config) EventBusEnabled() bool {
	return c.AMQP.URL != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
