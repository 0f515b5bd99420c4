package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// ModeOverride assigns an initial mode to newly synced events whose start
// time falls on an occurrence of the rule, e.g. a weekly collective
// meeting that should never offer show roles
type ModeOverride struct {
	RRule string `yaml:"rrule" validate:"required"`
	Mode  string `yaml:"mode" validate:"required"`
}

// RoleStyle overrides the emoji/label a role renders with
type RoleStyle struct {
	Emoji string `yaml:"emoji,omitempty"`
	Label string `yaml:"label,omitempty"`
}

// DiscordConfig holds the chat platform credentials and targets
type DiscordConfig struct {
	BotToken      string `yaml:"botToken" validate:"required"`
	ApplicationID string `yaml:"applicationID" validate:"required"`
	PublicKey     string `yaml:"publicKey" validate:"required,hexadecimal,len=64"`
	ShowChannelID string `yaml:"showChannelID" validate:"required"`
	AdminRole     string `yaml:"adminRole" validate:"required"`
}

// CalendarConfig holds the calendar feed settings
type CalendarConfig struct {
	CalendarID string `yaml:"calendarID" validate:"required"`
	Timezone   string `yaml:"timezone,omitempty"`
	SyncCron   string `yaml:"syncCron,omitempty"`
}

// DefaultsConfig holds the needed-volunteer minimums applied to newly
// created events
type DefaultsConfig struct {
	NeededBookers int `yaml:"neededBookers" validate:"min=0"`
	NeededDoors   int `yaml:"neededDoors" validate:"min=0"`
	NeededSound   int `yaml:"neededSound" validate:"min=0"`
}

// Config represents the application configuration
type Config struct {
	Discord       DiscordConfig        `yaml:"discord" validate:"required"`
	Calendar      CalendarConfig       `yaml:"calendar" validate:"required"`
	DatabaseURL   string               `yaml:"databaseURL" validate:"required"`
	ListenAddr    string               `yaml:"listenAddr,omitempty"`
	Defaults      DefaultsConfig       `yaml:"defaults"`
	ModeOverrides []ModeOverride       `yaml:"modeOverrides,omitempty" validate:"dive"`
	RoleStyles    map[string]RoleStyle `yaml:"roleStyles,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from stagehand_config.yaml,
// looking in the current directory first, then the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks mode/rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.ModeOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in modeOverrides[%d]: %w", i, err)
		}
		if !model.Mode(override.Mode).IsValid() {
			return fmt.Errorf("invalid mode %q in modeOverrides[%d]", override.Mode, i)
		}
	}

	for name := range cfg.RoleStyles {
		if !model.Role(name).IsValid() {
			return fmt.Errorf("unknown role %q in roleStyles", name)
		}
	}

	if _, err := time.LoadLocation(cfg.Calendar.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Calendar.Timezone, err)
	}

	return nil
}

// Location returns the configured timezone, used to anchor all-day
// calendar dates. Validate has already checked it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Styles builds the roster presentation catalog: stock styles with any
// configured per-role overrides applied
func (c *Config) Styles() roster.Styles {
	styles := roster.DefaultStyles()
	for name, override := range c.RoleStyles {
		role := model.Role(name)
		style := styles[role]
		if override.Emoji != "" {
			style.Emoji = override.Emoji
		}
		if override.Label != "" {
			style.Label = override.Label
		}
		styles[role] = style
	}
	return styles
}

func applyDefaults(cfg *Config) {
	if cfg.Defaults == (DefaultsConfig{}) {
		cfg.Defaults = DefaultsConfig{NeededBookers: 1, NeededDoors: 2, NeededSound: 1}
	}
	if cfg.Calendar.SyncCron == "" {
		cfg.Calendar.SyncCron = "@every 15m"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
}

// findConfigFile searches for stagehand_config.yaml in the current
// directory and the home directory
func findConfigFile() (string, error) {
	configFileName := "stagehand_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
