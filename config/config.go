package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Search   SearchConfig   `mapstructure:"search"`
	Server   ServerConfig   `mapstructure:"server"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// DataConfig points the loader at the universe snapshot and the history ledger.
type DataConfig struct {
	Source       string `mapstructure:"source"`        // "parquet" or "postgres"
	UniversePath string `mapstructure:"universe_path"` // parquet snapshot of the ticker universe
	HistoryPath  string `mapstructure:"history_path"`  // parquet ledger of daily history rows
	Validate     bool   `mapstructure:"validate"`      // reject malformed rows at load time
}

type SearchConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Index         string        `mapstructure:"index"`
	Timeout       time.Duration `mapstructure:"timeout"`
	BulkSize      int           `mapstructure:"bulk_size"`
	BulkRate      float64       `mapstructure:"bulk_rate"` // bulk requests per second
	SyncAttempts  int           `mapstructure:"sync_attempts"`
	SyncBackoff   time.Duration `mapstructure:"sync_backoff"`
	RecreateIndex bool          `mapstructure:"recreate_index"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MatrixSample    int           `mapstructure:"matrix_sample"`
}

// RefreshConfig controls periodic re-hydration. A zero interval disables it.
type RefreshConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignMidnight bool          `mapstructure:"align_midnight"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", "parquet")
	v.SetDefault("data.universe_path", "./data/companies_universe.parquet")
	v.SetDefault("data.history_path", "./data/historical/market_history.parquet")
	v.SetDefault("data.validate", false)

	v.SetDefault("search.base_url", "http://127.0.0.1:9200")
	v.SetDefault("search.index", "gs_company_universe")
	v.SetDefault("search.timeout", 10*time.Second)
	v.SetDefault("search.bulk_size", 1000)
	v.SetDefault("search.bulk_rate", 10.0)
	v.SetDefault("search.sync_attempts", 5)
	v.SetDefault("search.sync_backoff", 5*time.Second)
	v.SetDefault("search.recreate_index", false)

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.matrix_sample", 150)

	// refresh stays off unless configured
	v.SetDefault("refresh.interval", time.Duration(0))
	v.SetDefault("refresh.align_midnight", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "greenscale")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
}

// Load loads application configuration using Viper.
// It reads the given file, or config.yaml from the config directory when file
// is empty, and overrides with environment variables. A missing config.yaml
// is not an error; defaults apply.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")

		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			v.AddConfigPath(filepath.Join(pwd, "../../config"))
		} else {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
		v.AddConfigPath("./config")
	}

	// Support environment variables with dot notation (e.g., SEARCH_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
