package roster

import "github.com/avwhitney/stagehand/pkg/core/model"

// Bucket is the coarse category a role's headcount contributes to when
// computing needed-volunteer deficits
type Bucket int

const (
	BucketNone Bucket = iota
	BucketBooker
	BucketDoor
	BucketSound
)

// legalRoles lists the selectable roles per mode, in display-slot order.
// Slot indices follow from position here, never from hard-coded field
// numbers at call sites.
var legalRoles = map[model.Mode][]model.Role{
	model.ModeStandard: {
		model.RoleBooker,
		model.RoleDoor,
		model.RoleSound,
		model.RoleTrainingDoor,
		model.RoleTrainingSound,
		model.RoleOnCall,
		model.RoleVendor,
	},
	model.ModeFestival: {
		model.RoleBooker,
		model.RoleDoor,
		model.RoleSound,
		model.RoleOnCall,
		model.RoleVendor,
	},
	model.ModeMeeting: {
		model.RoleAttending,
	},
	model.ModeNone: {},
}

// LegalRoles returns the selectable roles for a mode in display order
func LegalRoles(mode model.Mode) []model.Role {
	return legalRoles[mode]
}

// IsLegal reports whether a role may be taken on an event in the given mode
func IsLegal(mode model.Mode, role model.Role) bool {
	for _, r := range legalRoles[mode] {
		if r == role {
			return true
		}
	}
	return false
}

// DisplaySlot returns the role's field slot index under the given mode,
// or -1 when the role is not offered in that mode
func DisplaySlot(mode model.Mode, role model.Role) int {
	for i, r := range legalRoles[mode] {
		if r == role {
			return i
		}
	}
	return -1
}

// FulfillmentBucket maps a role to the deficit bucket it fills. Trainees
// count toward their base role; attending and on-call fill nothing.
func FulfillmentBucket(role model.Role) Bucket {
	switch role {
	case model.RoleBooker:
		return BucketBooker
	case model.RoleDoor, model.RoleTrainingDoor:
		return BucketDoor
	case model.RoleSound, model.RoleTrainingSound:
		return BucketSound
	}
	return BucketNone
}
