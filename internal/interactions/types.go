package interactions

import "encoding/json"

// Interaction types, per the chat platform's interaction payloads
const (
	interactionPing               = 1
	interactionApplicationCommand = 2
	interactionMessageComponent   = 3
)

// Callback types for interaction responses
const (
	responsePong       = 1
	responseChannelMsg = 4
)

const flagEphemeral = 64

type interactionUser struct {
	ID string `json:"id"`
}

type interactionMember struct {
	User  interactionUser `json:"user"`
	Roles []string        `json:"roles"`
}

type commandOption struct {
	Name  string          `json:"name"`
	Type  int             `json:"type"`
	Value json.RawMessage `json:"value"`
}

type interactionData struct {
	// Slash commands
	Name    string          `json:"name,omitempty"`
	Options []commandOption `json:"options,omitempty"`
	// Message components
	CustomID string `json:"custom_id,omitempty"`
}

type interactionMessage struct {
	ID string `json:"id"`
}

type interaction struct {
	Type      int                `json:"type"`
	Data      interactionData    `json:"data"`
	Member    *interactionMember `json:"member"`
	User      *interactionUser   `json:"user"`
	ChannelID string             `json:"channel_id"`
	Message   interactionMessage `json:"message"`
}

// userID returns the acting user, set under member in guilds and at the
// top level in direct messages
func (i *interaction) userID() string {
	if i.Member != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// hasRole reports whether the acting member carries the given guild role
func (i *interaction) hasRole(roleID string) bool {
	if i.Member == nil {
		return false
	}
	for _, r := range i.Member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

func (i *interaction) option(name string) *commandOption {
	for idx := range i.Data.Options {
		if i.Data.Options[idx].Name == name {
			return &i.Data.Options[idx]
		}
	}
	return nil
}

func (i *interaction) stringOption(name string) string {
	opt := i.option(name)
	if opt == nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(opt.Value, &value); err != nil {
		return ""
	}
	return value
}

func (i *interaction) intOption(name string, fallback int) int {
	opt := i.option(name)
	if opt == nil {
		return fallback
	}
	var value int
	if err := json.Unmarshal(opt.Value, &value); err != nil {
		return fallback
	}
	return value
}

type responseData struct {
	Content string `json:"content,omitempty"`
	Flags   int    `json:"flags,omitempty"`
}

type response struct {
	Type int           `json:"type"`
	Data *responseData `json:"data,omitempty"`
}
