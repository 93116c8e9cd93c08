package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "APICLIENT"

type ClientConfig struct {
	BaseURL        string        `mapstructure:"BASE_URL" validate:"required,url,url_scheme"`
	Timeout        time.Duration `mapstructure:"TIMEOUT" validate:"gte=0"`
	UserAgent      string        `mapstructure:"USER_AGENT"`
	MaxIdleConns   int           `mapstructure:"MAX_IDLE_CONNS" validate:"gte=0"`
	AuthToken      string        `mapstructure:"AUTH_TOKEN"`
	JournalEnabled bool          `mapstructure:"JOURNAL_ENABLED"`
	JournalPath    string        `mapstructure:"JOURNAL_PATH" validate:"required_if=JournalEnabled true"`
	LogLevel       string        `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// Default returns the configuration used for any key the environment leaves unset.
func Default() ClientConfig {
	return ClientConfig{
		Timeout:      30 * time.Second,
		UserAgent:    "apiclient-core/1.0",
		MaxIdleConns: 16,
		JournalPath:  "journal.db",
		LogLevel:     "info",
	}
}

func (c ClientConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  BaseURL: %s\n", c.BaseURL))
	sb.WriteString(fmt.Sprintf("  Timeout: %s\n", c.Timeout))
	sb.WriteString(fmt.Sprintf("  UserAgent: %s\n", c.UserAgent))
	sb.WriteString(fmt.Sprintf("  MaxIdleConns: %d\n", c.MaxIdleConns))
	if c.AuthToken != "" {
		sb.WriteString("  AuthToken: ********\n")
	} else {
		sb.WriteString("  AuthToken: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  JournalEnabled: %v\n", c.JournalEnabled))
	sb.WriteString(fmt.Sprintf("  JournalPath: %s\n", c.JournalPath))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	return sb.String()
}

// LoadFromEnv reads APICLIENT_* variables, loading .env first when it exists.
func LoadFromEnv() (*ClientConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("BASE_URL", def.BaseURL)
	v.SetDefault("TIMEOUT", def.Timeout)
	v.SetDefault("USER_AGENT", def.UserAgent)
	v.SetDefault("MAX_IDLE_CONNS", def.MaxIdleConns)
	v.SetDefault("AUTH_TOKEN", def.AuthToken)
	v.SetDefault("JOURNAL_ENABLED", def.JournalEnabled)
	v.SetDefault("JOURNAL_PATH", def.JournalPath)
	v.SetDefault("LOG_LEVEL", def.LogLevel)

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
