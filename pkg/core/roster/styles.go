package roster

import "github.com/avwhitney/stagehand/pkg/core/model"

// RoleStyle is the emoji and label a role renders with on a show card
type RoleStyle struct {
	Emoji string
	Label string
}

// Styles carries the per-role presentation catalog. It is injected into
// the renderer at construction rather than read from package state, so a
// deployment can swap its guild emoji without touching code.
type Styles map[model.Role]RoleStyle

// DefaultStyles returns the stock presentation catalog
func DefaultStyles() Styles {
	return Styles{
		model.RoleBooker:        {Emoji: "🎟️", Label: "Booker"},
		model.RoleDoor:          {Emoji: "🚪", Label: "Door"},
		model.RoleSound:         {Emoji: "🎚️", Label: "Sound"},
		model.RoleTrainingDoor:  {Emoji: "📖", Label: "Training: Door"},
		model.RoleTrainingSound: {Emoji: "📖", Label: "Training: Sound"},
		model.RoleOnCall:        {Emoji: "☎️", Label: "On-Call"},
		model.RoleVendor:        {Emoji: "🤝", Label: "Vendors"},
		model.RoleAttending:     {Emoji: "🙋", Label: "Attending"},
	}
}

// FieldName renders a role's field heading, e.g. "🚪 Door"
func (s Styles) FieldName(role model.Role) string {
	style, ok := s[role]
	if !ok {
		return string(role)
	}
	if style.Emoji == "" {
		return style.Label
	}
	return style.Emoji + " " + style.Label
}
