// Package config loads the service configuration from YAML, .env and
// LABSTOCK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "configs/labstock.yaml"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Timezone TimezoneConfig `mapstructure:"timezone"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Rotation RotationConfig `mapstructure:"rotation"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
}

type ServerConfig struct {
	Addr               string        `mapstructure:"addr" validate:"required"`
	CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// TimezoneConfig is a fixed UTC offset. Daylight saving is not modelled.
type TimezoneConfig struct {
	Name          string `mapstructure:"name" validate:"required"`
	OffsetMinutes int    `mapstructure:"offset_minutes" validate:"min=-720,max=840"`
}

type AuthConfig struct {
	TokenHours int `mapstructure:"token_hours" validate:"min=1"`
}

// TeamConfig describes one duty team. Team names double as group names on
// user accounts and check records.
type TeamConfig struct {
	Key                string `mapstructure:"key" validate:"required"`
	Name               string `mapstructure:"name" validate:"required"`
	RestrictedCategory string `mapstructure:"restricted_category"`
}

type RotationConfig struct {
	Teams        []TeamConfig `mapstructure:"teams" validate:"required,min=1,dive"`
	Order        []string     `mapstructure:"order" validate:"required,min=1,dive,required"`
	Start        string       `mapstructure:"start" validate:"required,datetime=2006-01-02"`
	IntervalDays int          `mapstructure:"interval_days" validate:"required,min=1"`
}

// StartDate returns the parsed rotation start. Only valid after Validate.
func (r RotationConfig) StartDate() time.Time {
	t, _ := time.Parse("2006-01-02", r.Start)
	return t
}

type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	SenderName string `mapstructure:"sender_name"`
	SenderAddr string `mapstructure:"sender_addr" validate:"omitempty,email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.SenderAddr != "" && s.Password != ""
}

var validate = validator.New()

// Load reads configuration from path. A missing file is not an error as long
// as the environment supplies everything that is required.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("LABSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("database.path", "labstock.sqlite3")
	v.SetDefault("log.level", "info")
	v.SetDefault("timezone.name", "KST")
	v.SetDefault("timezone.offset_minutes", 9*60)
	v.SetDefault("auth.token_hours", 7*24)
	v.SetDefault("rotation.interval_days", 14)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.sender_name", "Lab Stock Check")
}

// Validate checks struct tags and the cross-field rotation rules.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	keys := make(map[string]bool, len(cfg.Rotation.Teams))
	names := make(map[string]bool, len(cfg.Rotation.Teams))
	for _, t := range cfg.Rotation.Teams {
		if keys[t.Key] {
			return fmt.Errorf("duplicate team key %q", t.Key)
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate team name %q", t.Name)
		}
		keys[t.Key] = true
		names[t.Name] = true
	}
	for i, k := range cfg.Rotation.Order {
		if !keys[k] {
			return fmt.Errorf("rotation.order[%d]: unknown team key %q", i, k)
		}
	}
	return nil
}
