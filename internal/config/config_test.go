package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

func validConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			BotToken:      "bot-token",
			ApplicationID: "app-123",
			PublicKey:     "3af2c0a5b6deadbeef00112233445566778899aabbccddeeff00112233445566",
			ShowChannelID: "chan-456",
			AdminRole:     "Show Admin",
		},
		Calendar: CalendarConfig{
			CalendarID: "calendar@example.com",
		},
		DatabaseURL: "postgres://localhost/stagehand",
		Defaults:    DefaultsConfig{NeededBookers: 1, NeededDoors: 2, NeededSound: 1},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.ModeOverrides = []ModeOverride{
		{RRule: "FREQ=WEEKLY;BYDAY=MO", Mode: "MEETING"},
	}
	cfg.RoleStyles = map[string]RoleStyle{
		"BOOKER": {Emoji: "<:7th_Mammoth:858151066679640074>"},
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.BotToken = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidPublicKey(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.PublicKey = "not-hex"

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.ModeOverrides = []ModeOverride{
		{RRule: "INVALID_RRULE_SYNTAX", Mode: "MEETING"},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestValidate_InvalidOverrideMode(t *testing.T) {
	cfg := validConfig()
	cfg.ModeOverrides = []ModeOverride{
		{RRule: "FREQ=WEEKLY;BYDAY=MO", Mode: "PARTY"},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestValidate_UnknownStyleRole(t *testing.T) {
	cfg := validConfig()
	cfg.RoleStyles = map[string]RoleStyle{"ROADIE": {Emoji: "🚚"}}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stagehand_config.yaml")

	data := `
discord:
  botToken: tok
  applicationID: app
  publicKey: 3af2c0a5b6deadbeef00112233445566778899aabbccddeeff00112233445566
  showChannelID: chan
  adminRole: Show Admin
calendar:
  calendarID: cal@example.com
  timezone: America/New_York
databaseURL: postgres://localhost/stagehand
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "Show Admin", cfg.Discord.AdminRole)
	assert.Equal(t, "America/New_York", cfg.Calendar.Timezone)

	// Defaults fill in when the config omits them
	assert.Equal(t, DefaultsConfig{NeededBookers: 1, NeededDoors: 2, NeededSound: 1}, cfg.Defaults)
	assert.Equal(t, "@every 15m", cfg.Calendar.SyncCron)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/stagehand_config.yaml")
	assert.Error(t, err)
}

func TestStyles_Overrides(t *testing.T) {
	cfg := validConfig()
	cfg.RoleStyles = map[string]RoleStyle{
		"DOOR": {Emoji: "<:7CDoor:857389356893339648>", Label: "Door Crew"},
	}

	styles := cfg.Styles()
	assert.Equal(t, "<:7CDoor:857389356893339648>", styles[model.RoleDoor].Emoji)
	assert.Equal(t, "Door Crew", styles[model.RoleDoor].Label)

	// Untouched roles keep the stock style
	assert.Equal(t, "Booker", styles[model.RoleBooker].Label)
}
