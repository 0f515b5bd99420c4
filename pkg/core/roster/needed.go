package roster

import (
	"strings"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// Needed is the still-needed volunteer count per fulfillment bucket,
// floored at zero
type Needed struct {
	Bookers int
	Doors   int
	Sound   int
}

// None reports whether no volunteers are needed
func (n Needed) None() bool {
	return n.Bookers == 0 && n.Doors == 0 && n.Sound == 0
}

// ComputeNeeded counts signups per fulfillment bucket and subtracts them
// from the event's minimums. Modes without a volunteer concept (meeting,
// none) always report zero deficits.
func ComputeNeeded(event *model.Event, signups []model.Signup) Needed {
	if event.Mode == model.ModeMeeting || event.Mode == model.ModeNone {
		return Needed{}
	}

	var bookers, doors, sound int
	for _, s := range signups {
		switch FulfillmentBucket(s.Role) {
		case BucketBooker:
			bookers++
		case BucketDoor:
			doors++
		case BucketSound:
			sound++
		}
	}

	return Needed{
		Bookers: floorZero(event.NeededBookers - bookers),
		Doors:   floorZero(event.NeededDoors - doors),
		Sound:   floorZero(event.NeededSound - sound),
	}
}

// String renders the deficit as a run of role emoji, one per missing
// volunteer, or "None!" when fully staffed
func (n Needed) String(styles Styles) string {
	if n.None() {
		return "None!"
	}

	var parts []string
	for i := 0; i < n.Bookers; i++ {
		parts = append(parts, styles[model.RoleBooker].Emoji)
	}
	for i := 0; i < n.Doors; i++ {
		parts = append(parts, styles[model.RoleDoor].Emoji)
	}
	for i := 0; i < n.Sound; i++ {
		parts = append(parts, styles[model.RoleSound].Emoji)
	}
	return strings.Join(parts, " ")
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
