// Package config loads the optional YAML config file. Everything has a
// working default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jakobkreft/CakeTimer/internal/tagcolor"
)

// Config are the user-tunable settings that live outside the synced
// document: where the database sits, which slot to share, and presentation
// defaults applied to fresh documents.
type Config struct {
	DBPath      string `yaml:"dbPath"`
	Slot        string `yaml:"slot"`
	Theme       string `yaml:"theme"`
	GoalMinutes int    `yaml:"goalMinutes"`
	Accent      string `yaml:"accent"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Slot:        "ot.v3.state",
		Theme:       "light",
		GoalMinutes: 240,
		Accent:      tagcolor.DefaultAccent,
	}
}

// Load reads the config file at path, filling any omitted field with its
// default. A missing file yields pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Slot == "" {
		c.Slot = "ot.v3.state"
	}
	if c.Theme != "dark" {
		c.Theme = "light"
	}
	if c.GoalMinutes < 0 {
		c.GoalMinutes = 0
	}
	if c.GoalMinutes > 24*60 {
		c.GoalMinutes = 24 * 60
	}
	if _, ok := tagcolor.ParseColor(c.Accent); !ok {
		c.Accent = tagcolor.DefaultAccent
	}
}

// DefaultPath returns ~/.config/caketimer/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "caketimer", "config.yaml"), nil
}
