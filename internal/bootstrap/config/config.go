package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Server   ServerConfig   `mapstructure:"server"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LedgerConfig struct {
	// AuthoritySalt feeds every vault authority derivation. Changing it
	// orphans existing vault custody accounts.
	AuthoritySalt   string `mapstructure:"authority_salt"`
	EnforceSolvency bool   `mapstructure:"enforce_solvency"`
	// MintIssuer may mint custody funds. Empty disables minting.
	MintIssuer string `mapstructure:"mint_issuer"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type AuditConfig struct {
	Schedule string `mapstructure:"schedule"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("enforce_solvency", cfg.Ledger.EnforceSolvency),
		slog.Bool("nats_enabled", cfg.NATS.Enabled),
	)
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Ledger.AuthoritySalt == "" {
		return errors.New("ledger.authority_salt is required")
	}
	if c.NATS.Enabled && strings.TrimSpace(c.NATS.URL) == "" {
		return errors.New("nats.url is required when nats.enabled is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bountyvault")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".bountyvault/ledger.sqlite")
	v.SetDefault("ledger.authority_salt", "bountyvault-vault-authority")
	v.SetDefault("ledger.enforce_solvency", true)
	v.SetDefault("ledger.mint_issuer", "")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject_prefix", "bountyvault")
	v.SetDefault("audit.schedule", "@every 10m")
}
