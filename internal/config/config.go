// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the on-disk and in-memory application configuration.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
	Prompt   struct {
		// Style is "tui" or "plain".
		Style string `mapstructure:"style" yaml:"style"`
	} `mapstructure:"prompt" yaml:"prompt"`
	Vault struct {
		RootName      string `mapstructure:"root_name" yaml:"root_name"`
		NewFolderName string `mapstructure:"new_folder_name" yaml:"new_folder_name"`
		NewItemTitle  string `mapstructure:"new_item_title" yaml:"new_item_title"`
		MaxAttempts   int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	} `mapstructure:"vault" yaml:"vault"`
	Generator struct {
		Length int `mapstructure:"length" yaml:"length"`
	} `mapstructure:"generator" yaml:"generator"`
}

// Defaults returns the default values keyed the way viper addresses them.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":         "sqlite",
		"database.dsn":          "./keysafe.db",
		"language":              "en",
		"prompt.style":          "tui",
		"vault.root_name":       "Root",
		"vault.new_folder_name": "New subfolder",
		"vault.new_item_title":  "New item",
		"vault.max_attempts":    3,
		"generator.length":      16,
	}
}

// Normalize replaces empty or out-of-range values with their defaults. A
// config file can legally contain `dsn: ""`, which viper does not override.
func (c *Config) Normalize() {
	d := Defaults()
	setStr := func(dst *string, key string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = d[key].(string)
		}
	}
	setStr(&c.Database.Type, "database.type")
	setStr(&c.Database.Dsn, "database.dsn")
	setStr(&c.Language, "language")
	setStr(&c.Prompt.Style, "prompt.style")
	setStr(&c.Vault.RootName, "vault.root_name")
	setStr(&c.Vault.NewFolderName, "vault.new_folder_name")
	setStr(&c.Vault.NewItemTitle, "vault.new_item_title")
	if c.Vault.MaxAttempts < 1 {
		c.Vault.MaxAttempts = d["vault.max_attempts"].(int)
	}
	if c.Generator.Length < 1 {
		c.Generator.Length = d["generator.length"].(int)
	}
	c.Prompt.Style = strings.ToLower(c.Prompt.Style)
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}
	switch c.Prompt.Style {
	case "tui", "plain":
	default:
		return fmt.Errorf("unsupported prompt.style %q (want tui or plain)", c.Prompt.Style)
	}
	return nil
}

// GetConfigPath returns the full path of the user or system configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keysafe")
		default:
			configDir = "/etc/keysafe"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keysafe")
	}

	return filepath.Join(configDir, "keysafe.yaml"), nil
}

// LoadConfig builds a T from defaults, the first keysafe.yaml found (or the
// explicit file), KEYSAFE_* environment variables and the command's flags, in
// increasing order of precedence. When no file was found the returned error
// is a viper.ConfigFileNotFoundError and the value is still populated.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keysafe")
	v.SetConfigType("yaml")

	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if isEmptyFile(explicitPath) {
		notFound = viper.ConfigFileNotFoundError{}
	} else if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keysafe")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// isEmptyFile reports whether p names an existing zero-length file. Such a
// file is treated like a missing one.
func isEmptyFile(p *string) bool {
	if p == nil {
		return false
	}
	fi, err := os.Stat(*p)
	return err == nil && fi.Size() == 0
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	return WriteConfigTo(c, path)
}

// WriteConfigTo writes c as YAML to path, creating the directory.
func WriteConfigTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the DSN may carry credentials.
	return os.WriteFile(path, data, 0o600)
}
