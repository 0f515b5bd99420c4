package discordclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// Button custom_id prefixes the interaction handler dispatches on
const (
	SignupCustomIDPrefix = "signup:"
	RemoveCustomID       = "remove"
)

const maxButtonsPerRow = 5

// PostCard publishes a new show card: the embed, its role buttons, and
// the companion discussion thread. Returns the card reference (the card
// message id, which is also the thread id).
func (c *Client) PostCard(ctx context.Context, event *model.Event, fields []roster.Field, styles roster.Styles) (string, error) {
	payload := messageCreate{
		Embeds:     []Embed{buildEmbed(event.Summary, fields)},
		Components: buildComponents(event.Mode, styles),
	}

	var msg Message
	if err := c.do(ctx, "POST", fmt.Sprintf("/channels/%s/messages", c.channelID), payload, &msg); err != nil {
		return "", fmt.Errorf("failed to post show card: %w", err)
	}

	thread := threadCreate{Name: event.Summary}
	if err := c.do(ctx, "POST", fmt.Sprintf("/channels/%s/messages/%s/threads", c.channelID, msg.ID), thread, nil); err != nil {
		return "", fmt.Errorf("failed to create discussion thread: %w", err)
	}

	return msg.ID, nil
}

// UpdateCard rewrites a published card's embed and buttons in full. The
// card is write-only output; state always flows from the store to here,
// never back.
func (c *Client) UpdateCard(ctx context.Context, cardRef string, event *model.Event, fields []roster.Field, styles roster.Styles) error {
	payload := messageEdit{
		Embeds:     []Embed{buildEmbed(event.Summary, fields)},
		Components: buildComponents(event.Mode, styles),
	}

	if err := c.do(ctx, "PATCH", fmt.Sprintf("/channels/%s/messages/%s", c.channelID, cardRef), payload, nil); err != nil {
		return fmt.Errorf("failed to update show card: %w", err)
	}
	return nil
}

// CardExists reports whether the card message is still present in the
// show channel
func (c *Client) CardExists(ctx context.Context, cardRef string) (bool, error) {
	err := c.do(ctx, "GET", fmt.Sprintf("/channels/%s/messages/%s", c.channelID, cardRef), nil, &Message{})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch show card: %w", err)
	}
	return true, nil
}

// AddThreadMember adds a user to the card's discussion thread
func (c *Client) AddThreadMember(ctx context.Context, cardRef, userID string) error {
	if err := c.do(ctx, "PUT", fmt.Sprintf("/channels/%s/thread-members/%s", cardRef, userID), nil, nil); err != nil {
		return fmt.Errorf("failed to add thread member: %w", err)
	}
	return nil
}

// RemoveThreadMember removes a user from the card's discussion thread
func (c *Client) RemoveThreadMember(ctx context.Context, cardRef, userID string) error {
	if err := c.do(ctx, "DELETE", fmt.Sprintf("/channels/%s/thread-members/%s", cardRef, userID), nil, nil); err != nil {
		return fmt.Errorf("failed to remove thread member: %w", err)
	}
	return nil
}

func buildEmbed(title string, fields []roster.Field) Embed {
	embed := Embed{
		Title:     title,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range fields {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// buildComponents produces one signup button per legal role for the mode,
// chunked into action rows, plus a remove button. A mode with no legal
// roles gets no components at all.
func buildComponents(mode model.Mode, styles roster.Styles) []Component {
	roles := roster.LegalRoles(mode)
	if len(roles) == 0 {
		return nil
	}

	var rows []Component
	var row []Component
	for _, role := range roles {
		style := styles[role]
		row = append(row, Component{
			Type:     componentButton,
			Style:    buttonStylePrimary,
			Label:    style.Label,
			Emoji:    parseEmoji(style.Emoji),
			CustomID: SignupCustomIDPrefix + string(role),
		})
		if len(row) == maxButtonsPerRow {
			rows = append(rows, Component{Type: componentActionRow, Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, Component{Type: componentActionRow, Components: row})
	}

	rows = append(rows, Component{
		Type: componentActionRow,
		Components: []Component{{
			Type:     componentButton,
			Style:    buttonStyleDanger,
			Label:    "Remove",
			CustomID: RemoveCustomID,
		}},
	})

	return rows
}

// parseEmoji handles both unicode emoji and Discord custom emoji in
// "<:name:id>" form
func parseEmoji(emoji string) *Emoji {
	if emoji == "" {
		return nil
	}

	if strings.HasPrefix(emoji, "<:") && strings.HasSuffix(emoji, ">") {
		parts := strings.Split(strings.Trim(emoji, "<>"), ":")
		if len(parts) == 3 {
			return &Emoji{Name: parts[1], ID: parts[2]}
		}
	}

	return &Emoji{Name: emoji}
}
