package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// Field is one labelled section of a rendered show card
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Fixed leading fields on every published card: live headcount plus the
// absolute and relative start-time markers. Role fields follow in
// display-slot order for the event's mode.
const fixedFieldCount = 3

// RenderFields computes the full show card field set for an event from
// its current signup list. The output is always recomputed from scratch;
// the rendered card is never read back to reconstruct state, so calling
// this twice over the same inputs yields identical fields.
func RenderFields(event *model.Event, signups []model.Signup, styles Styles) []Field {
	unix := event.StartTime.Unix()

	fields := []Field{
		{Value: fmt.Sprintf(":busts_in_silhouette: %d", len(signups))},
		{Value: fmt.Sprintf(":calendar: <t:%d:F>", unix)},
		{Value: fmt.Sprintf(":hourglass: <t:%d:R>", unix)},
	}

	if event.Mode == model.ModeNone {
		fields = append(fields, Field{
			Value: "Signups are closed for this show.",
		})
		return fields
	}

	// Mentions grouped by role, preserving signup order within a role
	byRole := make(map[model.Role][]model.Signup)
	for _, s := range signups {
		byRole[s.Role] = append(byRole[s.Role], s)
	}
	for _, group := range byRole {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
	}

	for _, role := range LegalRoles(event.Mode) {
		var mentions []string
		for _, s := range byRole[role] {
			mentions = append(mentions, fmt.Sprintf("<@%s>", s.UserID))
		}
		fields = append(fields, Field{
			Name:   styles.FieldName(role),
			Value:  strings.Join(mentions, "\n"),
			Inline: true,
		})
	}

	return fields
}

// RoleFieldIndex returns the card field index a role renders at under the
// given mode, accounting for the fixed leading fields
func RoleFieldIndex(mode model.Mode, role model.Role) int {
	slot := DisplaySlot(mode, role)
	if slot < 0 {
		return -1
	}
	return fixedFieldCount + slot
}
