// ABOUTME: Configuration loading for the stub API server
// ABOUTME: Loads TOML config with environment variable expansion and seed data

package fakeapi

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults for a config without the corresponding keys.
const (
	DefaultListen   = "127.0.0.1:5000"
	DefaultTokenTTL = 24 * time.Hour
	DefaultDBPath   = ":memory:"
)

// Config is the stub server's TOML configuration.
type Config struct {
	Listen      string `toml:"listen"`
	JWTSecret   string `toml:"jwt_secret"`
	TokenTTLRaw string `toml:"token_ttl"`
	DBPath      string `toml:"db_path"`

	// Testers are registered at start-up unless their email exists.
	Testers []SeedTester `toml:"testers"`

	// Seed maps a collection to records created at start-up when the
	// collection is empty.
	Seed map[string][]map[string]any `toml:"seed"`

	TokenTTL time.Duration `toml:"-"`
}

// SeedTester is a tester account created at start-up.
type SeedTester struct {
	Email     string `toml:"email"`
	Password  string `toml:"password"`
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name"`
}

// LoadConfig reads config from the given path, expanding environment variables.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(string(data))
}

// ParseConfig parses TOML config text.
func ParseConfig(data string) (*Config, error) {
	expanded := expandEnvVars(data)

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig is the configuration used without a config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() error {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	c.TokenTTL = DefaultTokenTTL
	if c.TokenTTLRaw != "" {
		d, err := time.ParseDuration(c.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl: %w", err)
		}
		c.TokenTTL = d
	}
	return nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	for i, t := range c.Testers {
		if t.Email == "" || t.Password == "" {
			return fmt.Errorf("testers[%d]: email and password are required", i)
		}
	}
	return nil
}
