package discordclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// Application command option types
const (
	optionString  = 3
	optionInteger = 4
	optionUser    = 6
)

type commandChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type commandOption struct {
	Type        int             `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required,omitempty"`
	MinValue    *int            `json:"min_value,omitempty"`
	Choices     []commandChoice `json:"choices,omitempty"`
}

type applicationCommand struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []commandOption `json:"options,omitempty"`
}

// RegisterCommands overwrites the application's global slash commands
// with the roster command set. Bulk PUT is idempotent, so this is safe
// to run on every startup.
func (c *Client) RegisterCommands(ctx context.Context, applicationID string) error {
	path := fmt.Sprintf("/applications/%s/commands", applicationID)
	if err := c.do(ctx, http.MethodPut, path, slashCommands(), nil); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

func slashCommands() []applicationCommand {
	zero := 0

	roleChoices := make([]commandChoice, 0, 8)
	for _, role := range []model.Role{
		model.RoleBooker, model.RoleDoor, model.RoleSound,
		model.RoleTrainingDoor, model.RoleTrainingSound,
		model.RoleOnCall, model.RoleVendor, model.RoleAttending,
	} {
		roleChoices = append(roleChoices, commandChoice{Name: string(role), Value: string(role)})
	}

	modeChoices := make([]commandChoice, 0, 4)
	for _, mode := range []model.Mode{
		model.ModeStandard, model.ModeFestival, model.ModeMeeting, model.ModeNone,
	} {
		modeChoices = append(modeChoices, commandChoice{Name: string(mode), Value: string(mode)})
	}

	return []applicationCommand{
		{
			Name:        "upcoming",
			Description: "List upcoming shows and the volunteers they still need",
		},
		{
			Name:        "threads",
			Description: "Post show cards for upcoming shows that don't have one",
		},
		{
			Name:        "adduser",
			Description: "Sign another user up for a role on this show",
			Options: []commandOption{
				{Type: optionUser, Name: "user", Description: "The user to sign up", Required: true},
				{Type: optionString, Name: "role", Description: "The role to assign", Required: true, Choices: roleChoices},
			},
		},
		{
			Name:        "setmode",
			Description: "Change this show's mode",
			Options: []commandOption{
				{Type: optionString, Name: "mode", Description: "The new mode", Required: true, Choices: modeChoices},
			},
		},
		{
			Name:        "setneeded",
			Description: "Set how many volunteers this show needs",
			Options: []commandOption{
				{Type: optionInteger, Name: "bookers", Description: "Bookers needed", Required: true, MinValue: &zero},
				{Type: optionInteger, Name: "doors", Description: "Door volunteers needed", Required: true, MinValue: &zero},
				{Type: optionInteger, Name: "sound", Description: "Sound volunteers needed", Required: true, MinValue: &zero},
			},
		},
		{
			Name:        "report",
			Description: "Count signups per volunteer over a date range",
			Options: []commandOption{
				{Type: optionString, Name: "start", Description: "Start date (YYYY-MM-DD)", Required: true},
				{Type: optionString, Name: "end", Description: "End date (YYYY-MM-DD)", Required: true},
			},
		},
	}
}
