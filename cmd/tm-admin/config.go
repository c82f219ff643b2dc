// ABOUTME: Viper configuration and token file handling for tm-admin
// ABOUTME: config.yaml and the 0600 token file live in the same directory

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	tokenFileName  = "token"

	cfgKeyAPIURL  = "api_url"
	cfgKeyTimeout = "timeout"

	defaultAPIURL = "http://localhost:5000/api/v1"
	envPrefix     = "TESTDESK"
)

// resolveConfigDir applies --config-dir > TESTDESK_ADMIN_DIR > ~/.config/testdesk.
func resolveConfigDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if env := os.Getenv("TESTDESK_ADMIN_DIR"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(home, ".config", "testdesk"), nil
}

// loadConfig reads config.yaml from dir. A missing file is not an error;
// TESTDESK_API_URL and TESTDESK_TIMEOUT override file values.
func loadConfig(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, defaultAPIURL)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func (c *cli) tokenPath() string {
	return filepath.Join(c.configDir, tokenFileName)
}

// readToken returns the saved token, or "" when there is none.
func (c *cli) readToken() string {
	data, err := os.ReadFile(c.tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *cli) saveToken(tok string) error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(c.tokenPath(), []byte(tok), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (c *cli) clearToken() error {
	err := os.Remove(c.tokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
