// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for adspot.
type Config struct {
	DataDir      string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile      string        `mapstructure:"log_file" yaml:"log_file"`
	Catalog      string        `mapstructure:"catalog" yaml:"catalog"`
	Session      string        `mapstructure:"session" yaml:"session"`
	ScriptBudget int           `mapstructure:"script_budget" yaml:"script_budget"`
	DefaultPlan  string        `mapstructure:"default_plan" yaml:"default_plan"`
	TaxRateBPS   int           `mapstructure:"tax_rate_bps" yaml:"tax_rate_bps"`
	SwitchDelay  time.Duration `mapstructure:"switch_delay" yaml:"switch_delay"`
}

// Defaults mirrored by Load and Default.
const (
	DefaultDataDir      = ".adspot"
	DefaultScriptBudget = 450
	DefaultPlanID       = "essential-reach"
	DefaultTaxRateBPS   = 650
	DefaultSwitchDelay  = 50 * time.Millisecond
	DefaultSession      = "default"
)

// Default returns a config populated with built-in defaults.
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		LogLevel:     "info",
		Session:      DefaultSession,
		ScriptBudget: DefaultScriptBudget,
		DefaultPlan:  DefaultPlanID,
		TaxRateBPS:   DefaultTaxRateBPS,
		SwitchDelay:  DefaultSwitchDelay,
	}
}

var envKeys = []string{
	"data_dir",
	"log_level",
	"log_file",
	"catalog",
	"session",
	"script_budget",
	"default_plan",
	"tax_rate_bps",
	"switch_delay",
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("adspot")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("catalog", "")
	v.SetDefault("session", def.Session)
	v.SetDefault("script_budget", def.ScriptBudget)
	v.SetDefault("default_plan", def.DefaultPlan)
	v.SetDefault("tax_rate_bps", def.TaxRateBPS)
	v.SetDefault("switch_delay", def.SwitchDelay)

	v.SetEnvPrefix("ADSPOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so numeric and duration values unmarshal from env
	for _, key := range envKeys {
		if err := v.BindEnv(key, "ADSPOT_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the controllers cannot work with.
func (c *Config) Validate() error {
	if c.ScriptBudget <= 0 {
		return fmt.Errorf("script_budget must be positive, got %d", c.ScriptBudget)
	}
	if c.TaxRateBPS < 0 || c.TaxRateBPS > 10000 {
		return fmt.Errorf("tax_rate_bps must be between 0 and 10000, got %d", c.TaxRateBPS)
	}
	if c.SwitchDelay < 0 {
		return fmt.Errorf("switch_delay must not be negative, got %s", c.SwitchDelay)
	}
	if strings.TrimSpace(c.DefaultPlan) == "" {
		return fmt.Errorf("default_plan must not be empty")
	}
	if strings.ContainsAny(c.Session, ". *>") || c.Session == "" {
		return fmt.Errorf("session %q must be a non-empty name without dots, spaces or wildcards", c.Session)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/adspot/adspot.yml or $XDG_CONFIG_HOME/adspot/adspot.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "adspot", "adspot.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "adspot", "adspot.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "adspot.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
