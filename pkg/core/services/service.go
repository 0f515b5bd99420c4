package services

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/clients/calendarclient"
	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// EventStore is the persistence contract for show events
type EventStore interface {
	UpsertEventFromFeed(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	GetEventByThreadRef(ctx context.Context, threadRef string) (*model.Event, error)
	ListUpcomingEvents(ctx context.Context, from time.Time) ([]model.Event, error)
	ListEventsBetween(ctx context.Context, start, end time.Time) ([]model.Event, error)
	SetEventMode(ctx context.Context, id string, mode model.Mode) error
	SetEventThreadRef(ctx context.Context, id string, threadRef string) error
	SetEventNeeded(ctx context.Context, id string, bookers, doors, sound int) error
}

// SignupStore is the persistence contract for role signups
type SignupStore interface {
	UpsertSignup(ctx context.Context, signup *model.Signup) error
	GetSignup(ctx context.Context, eventID, userID string) (*model.Signup, error)
	DeleteSignup(ctx context.Context, eventID, userID string) (bool, error)
	DeleteSignupsByEvent(ctx context.Context, eventID string) error
	ListSignupsByEvent(ctx context.Context, eventID string) ([]model.Signup, error)
	ListSignupsForEvents(ctx context.Context, eventIDs []string) ([]model.Signup, error)
}

// ChatClient is the chat platform contract: publish and rewrite show
// cards, and mirror roster membership into the discussion thread
type ChatClient interface {
	PostCard(ctx context.Context, event *model.Event, fields []roster.Field, styles roster.Styles) (string, error)
	UpdateCard(ctx context.Context, cardRef string, event *model.Event, fields []roster.Field, styles roster.Styles) error
	CardExists(ctx context.Context, cardRef string) (bool, error)
	AddThreadMember(ctx context.Context, cardRef, userID string) error
	RemoveThreadMember(ctx context.Context, cardRef, userID string) error
}

// CalendarFeed supplies upcoming events from the external calendar
type CalendarFeed interface {
	UpcomingEvents(ctx context.Context, loc *time.Location) ([]calendarclient.FeedEvent, error)
}

// ModeRule assigns an initial mode to new events whose start falls on an
// occurrence of the rule
type ModeRule struct {
	Rule *rrule.RRule
	Mode model.Mode
}

// Defaults are the needed-volunteer minimums applied to newly created events
type Defaults struct {
	NeededBookers int
	NeededDoors   int
	NeededSound   int
}

// Service carries the injected collaborators for all roster operations.
// Nothing is read from ambient globals.
type Service struct {
	events    EventStore
	signups   SignupStore
	chat      ChatClient
	styles    roster.Styles
	defaults  Defaults
	modeRules []ModeRule
	location  *time.Location
	locks     *EventLocks
	logger    *zap.Logger
}

func NewService(
	events EventStore,
	signups SignupStore,
	chat ChatClient,
	styles roster.Styles,
	defaults Defaults,
	modeRules []ModeRule,
	location *time.Location,
	logger *zap.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		events:    events,
		signups:   signups,
		chat:      chat,
		styles:    styles,
		defaults:  defaults,
		modeRules: modeRules,
		location:  location,
		locks:     NewEventLocks(),
		logger:    logger,
	}
}

// RosterSnapshot is the authoritative roster state after an operation,
// recomputed in full from the signup store
type RosterSnapshot struct {
	Event           *model.Event
	Signups         []model.Signup
	Needed          roster.Needed
	Fields          []roster.Field
	AlreadyAssigned bool
}

// snapshot recomputes the roster state and pushes the rendered card to
// the chat platform. The store is the source of truth; the render is
// derived output.
func (s *Service) snapshot(ctx context.Context, event *model.Event) (*RosterSnapshot, error) {
	signups, err := s.signups.ListSignupsByEvent(ctx, event.ID)
	if err != nil {
		return nil, errStorage(err)
	}

	snap := &RosterSnapshot{
		Event:   event,
		Signups: signups,
		Needed:  roster.ComputeNeeded(event, signups),
		Fields:  roster.RenderFields(event, signups, s.styles),
	}

	if err := s.chat.UpdateCard(ctx, event.ThreadRef, event, snap.Fields, s.styles); err != nil {
		return nil, errCardNotFound().withCause(err)
	}

	return snap, nil
}
