package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config holds the connector settings
 * Values come from a .env file (toml) in the working directory, overridden by environment variables
 */

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port                    string `mapstructure:"PORT"`
	APITokens               string `mapstructure:"API_TOKENS"`
	UpstreamBaseURL         string `mapstructure:"UPSTREAM_BASE_URL"`
	UpstreamToken           string `mapstructure:"UPSTREAM_TOKEN"`
	UpstreamTimeoutSeconds  int    `mapstructure:"UPSTREAM_TIMEOUT_SECONDS"`
	WalletBackend           string `mapstructure:"WALLET_BACKEND"`
	WalletNamespace         string `mapstructure:"WALLET_NAMESPACE"`
	RedisAddr               string `mapstructure:"REDIS_ADDR"`
	RedisPassword           string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int    `mapstructure:"REDIS_DB"`
	PostgresDSN             string `mapstructure:"POSTGRES_DSN"`
	PoliciesFile            string `mapstructure:"POLICIES_FILE"`
	RequestRetentionSeconds int    `mapstructure:"REQUEST_RETENTION_SECONDS"`
	CallbackTimeoutSeconds  int    `mapstructure:"CALLBACK_TIMEOUT_SECONDS"`
	ConnectorID             string `mapstructure:"CONNECTOR_ID"`
	ConnectorVersion        string `mapstructure:"CONNECTOR_VERSION"`
	CallbackSigningSecret   string `mapstructure:"CALLBACK_SIGNING_SECRET"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"API_TOKENS":                "",
	"UPSTREAM_BASE_URL":         "",
	"UPSTREAM_TOKEN":            "",
	"UPSTREAM_TIMEOUT_SECONDS":  30,
	"WALLET_BACKEND":            BackendMemory,
	"WALLET_NAMESPACE":          "bank-connector",
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"POSTGRES_DSN":              "",
	"POLICIES_FILE":             "",
	"REQUEST_RETENTION_SECONDS": 300,
	"CALLBACK_TIMEOUT_SECONDS":  10,
	"CONNECTOR_ID":              "bank-connector",
	"CONNECTOR_VERSION":         "1.0.0",
	"CALLBACK_SIGNING_SECRET":   "",
}

// GetConfig reads .env from the working directory and the environment
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads .env from dir; a missing file is not an error
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	// defaults also make env-only keys visible to Unmarshal
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// Validate checks the settings the selected backends depend on
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.UpstreamBaseURL) == "" {
		errs = append(errs, errors.New("UPSTREAM_BASE_URL is required"))
	}
	if len(c.GetAPITokens()) == 0 {
		errs = append(errs, errors.New("API_TOKENS must contain at least one token"))
	}
	if c.CallbackSigningSecret != "" && !strings.HasPrefix(c.CallbackSigningSecret, "whsec_") {
		errs = append(errs, errors.New("CALLBACK_SIGNING_SECRET must start with whsec_"))
	}
	switch c.WalletBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown WALLET_BACKEND %q", c.WalletBackend))
	}
	return errors.Join(errs...)
}

// GetAPITokens splits API_TOKENS on commas, dropping blanks
func (c *Config) GetAPITokens() []string {
	var tokens []string
	for _, tok := range strings.Split(c.APITokens, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func (c *Config) GetUpstreamTimeout() time.Duration {
	return seconds(c.UpstreamTimeoutSeconds, 30)
}

func (c *Config) GetCallbackTimeout() time.Duration {
	return seconds(c.CallbackTimeoutSeconds, 10)
}

func (c *Config) GetRetention() time.Duration {
	return seconds(c.RequestRetentionSeconds, 300)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
