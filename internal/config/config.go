// Package config loads and saves the plugin configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the directory under $XDG_CONFIG_HOME
	AppName = "nbalance"
	// FileName is the config file inside the config directory
	FileName = "config.yaml"

	DefaultAPIConfig           = "https://newapi.com"
	DefaultUserID              = "10001"
	DefaultToken               = "token"
	DefaultQuotaPerUnit        = 500000
	DefaultLowBalanceThreshold = 1.0
)

// Config holds the balance plugin settings. It is read once at startup and
// treated as immutable afterwards.
type Config struct {
	APIConfig     string `yaml:"api_config"`
	UserID        string `yaml:"userid"`
	Token         string `yaml:"token"`
	EnableLLMTool bool   `yaml:"enable_llm_tool"`

	// QuotaPerUnit is the number of raw quota units per currency unit
	QuotaPerUnit float64 `yaml:"quota_per_unit"`
	// LowBalanceThreshold is the amount below which status bars show a warning
	LowBalanceThreshold float64 `yaml:"low_balance_threshold"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Default returns the configuration used when no file or key is present
func Default() Config {
	return Config{
		APIConfig:           DefaultAPIConfig,
		UserID:              DefaultUserID,
		Token:               DefaultToken,
		QuotaPerUnit:        DefaultQuotaPerUnit,
		LowBalanceThreshold: DefaultLowBalanceThreshold,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/nbalance/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// Load reads the config at path with ${VAR} references expanded from the
// environment. An empty path means DefaultPath. A missing file is not an
// error: the defaults are returned. Values are normalized but not validated;
// a bad address surfaces as a query failure instead.
func Load(path string) (Config, error) {
	return load(path, true)
}

// LoadRaw reads the config at path leaving ${VAR} references untouched.
// Use it when the config is going to be written back.
func LoadRaw(path string) (Config, error) {
	return load(path, false)
}

func load(path string, expand bool) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if expand {
		data = expandEnvVars(data)
	}

	// Unmarshal over the defaults so absent keys keep their default value
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds an access token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists reports whether a config file exists at path
func Exists(path string) bool {
	if path == "" {
		path = DefaultPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

// ApplyDefaults normalizes loaded values
func (c *Config) ApplyDefaults() {
	c.APIConfig = strings.TrimRight(c.APIConfig, "/")
	if c.QuotaPerUnit <= 0 {
		c.QuotaPerUnit = DefaultQuotaPerUnit
	}
}

// Validate checks user input before it is saved
func (c *Config) Validate() error {
	if c.APIConfig == "" {
		return fmt.Errorf("api_config is required")
	}
	u, err := url.Parse(c.APIConfig)
	if err != nil {
		return fmt.Errorf("api_config is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_config must use http or https, got %q", u.Scheme)
	}
	return nil
}

// Redacted returns a copy safe for logging
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
