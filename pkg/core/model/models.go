package model

import "time"

// Mode constrains which volunteer roles a show offers
type Mode string

const (
	ModeStandard Mode = "STANDARD"
	ModeFestival Mode = "FESTIVAL"
	ModeMeeting  Mode = "MEETING"
	ModeNone     Mode = "NONE"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeStandard, ModeFestival, ModeMeeting, ModeNone:
		return true
	}
	return false
}

// Role identifies a volunteer role on a show
type Role string

const (
	RoleBooker        Role = "BOOKER"
	RoleDoor          Role = "DOOR"
	RoleSound         Role = "SOUND"
	RoleTrainingDoor  Role = "TRAINING_DOOR"
	RoleTrainingSound Role = "TRAINING_SOUND"
	RoleOnCall        Role = "ON_CALL"
	RoleVendor        Role = "VENDOR"
	RoleAttending     Role = "ATTENDING"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBooker, RoleDoor, RoleSound, RoleTrainingDoor,
		RoleTrainingSound, RoleOnCall, RoleVendor, RoleAttending:
		return true
	}
	return false
}

// Event represents a show pulled from the calendar feed.
// ID is the calendar's stable identifier and never changes once stored.
type Event struct {
	ID            string
	Summary       string
	StartTime     time.Time
	ThreadRef     string // empty until a show card is published
	Mode          Mode
	NeededBookers int
	NeededDoors   int
	NeededSound   int
}

// Published reports whether a show card exists for the event
func (e *Event) Published() bool {
	return e.ThreadRef != ""
}

// Signup is one user's role on one event. A user holds at most one
// role per event; taking a new role replaces the old signup.
type Signup struct {
	ID        string
	EventID   string
	UserID    string
	Role      Role
	CreatedAt time.Time
}
