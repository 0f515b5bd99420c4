package services

import (
	"context"
	"fmt"
	"time"

	"github.com/avwhitney/stagehand/pkg/clients/calendarclient"
	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// fakeStore is an in-memory test double for EventStore and SignupStore
// with read-your-writes semantics
type fakeStore struct {
	events  map[string]*model.Event
	signups []model.Signup

	eventErr  error
	signupErr error

	// runs after a thread-ref lookup resolves, before the result is
	// returned, to squeeze another operation into that window
	afterThreadRefLookup func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]*model.Event)}
}

func (f *fakeStore) addEvent(e model.Event) {
	copied := e
	f.events[e.ID] = &copied
}

func (f *fakeStore) UpsertEventFromFeed(ctx context.Context, event *model.Event) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	if existing, ok := f.events[event.ID]; ok {
		existing.Summary = event.Summary
		existing.StartTime = event.StartTime
		return nil
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	event, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (f *fakeStore) GetEventByThreadRef(ctx context.Context, threadRef string) (*model.Event, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	for _, event := range f.events {
		if event.ThreadRef != "" && event.ThreadRef == threadRef {
			copied := *event
			if f.afterThreadRefLookup != nil {
				f.afterThreadRefLookup()
			}
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListUpcomingEvents(ctx context.Context, from time.Time) ([]model.Event, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	var events []model.Event
	for _, event := range f.events {
		if !event.StartTime.Before(from) {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (f *fakeStore) ListEventsBetween(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	var events []model.Event
	for _, event := range f.events {
		if !event.StartTime.Before(start) && !event.StartTime.After(end) {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (f *fakeStore) SetEventMode(ctx context.Context, id string, mode model.Mode) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	f.events[id].Mode = mode
	return nil
}

func (f *fakeStore) SetEventThreadRef(ctx context.Context, id string, threadRef string) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	f.events[id].ThreadRef = threadRef
	return nil
}

func (f *fakeStore) SetEventNeeded(ctx context.Context, id string, bookers, doors, sound int) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	event := f.events[id]
	event.NeededBookers = bookers
	event.NeededDoors = doors
	event.NeededSound = sound
	return nil
}

func (f *fakeStore) UpsertSignup(ctx context.Context, signup *model.Signup) error {
	if f.signupErr != nil {
		return f.signupErr
	}
	// Replacing a role moves the signup to the end, like the real upsert
	for i, s := range f.signups {
		if s.EventID == signup.EventID && s.UserID == signup.UserID {
			f.signups = append(f.signups[:i], f.signups[i+1:]...)
			break
		}
	}
	f.signups = append(f.signups, *signup)
	return nil
}

func (f *fakeStore) GetSignup(ctx context.Context, eventID, userID string) (*model.Signup, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	for _, s := range f.signups {
		if s.EventID == eventID && s.UserID == userID {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteSignup(ctx context.Context, eventID, userID string) (bool, error) {
	if f.signupErr != nil {
		return false, f.signupErr
	}
	for i, s := range f.signups {
		if s.EventID == eventID && s.UserID == userID {
			f.signups = append(f.signups[:i], f.signups[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteSignupsByEvent(ctx context.Context, eventID string) error {
	if f.signupErr != nil {
		return f.signupErr
	}
	var kept []model.Signup
	for _, s := range f.signups {
		if s.EventID != eventID {
			kept = append(kept, s)
		}
	}
	f.signups = kept
	return nil
}

func (f *fakeStore) ListSignupsByEvent(ctx context.Context, eventID string) ([]model.Signup, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	var signups []model.Signup
	for _, s := range f.signups {
		if s.EventID == eventID {
			signups = append(signups, s)
		}
	}
	return signups, nil
}

func (f *fakeStore) ListSignupsForEvents(ctx context.Context, eventIDs []string) ([]model.Signup, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var signups []model.Signup
	for _, s := range f.signups {
		if wanted[s.EventID] {
			signups = append(signups, s)
		}
	}
	return signups, nil
}

// fakeChat records chat platform calls
type fakeChat struct {
	postedCards    int
	updateCalls    []string // card refs updated
	addedMembers   []string // "cardRef/userID"
	removedMembers []string

	missingCards map[string]bool

	postErr   error
	updateErr error
	existsErr error
	addErr    error
	removeErr error
}

func newFakeChat() *fakeChat {
	return &fakeChat{missingCards: make(map[string]bool)}
}

func (f *fakeChat) PostCard(ctx context.Context, event *model.Event, fields []roster.Field, styles roster.Styles) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.postedCards++
	return fmt.Sprintf("card-%d", f.postedCards), nil
}

func (f *fakeChat) UpdateCard(ctx context.Context, cardRef string, event *model.Event, fields []roster.Field, styles roster.Styles) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalls = append(f.updateCalls, cardRef)
	return nil
}

func (f *fakeChat) CardExists(ctx context.Context, cardRef string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return !f.missingCards[cardRef], nil
}

func (f *fakeChat) AddThreadMember(ctx context.Context, cardRef, userID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addedMembers = append(f.addedMembers, cardRef+"/"+userID)
	return nil
}

func (f *fakeChat) RemoveThreadMember(ctx context.Context, cardRef, userID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedMembers = append(f.removedMembers, cardRef+"/"+userID)
	return nil
}

// fakeFeed supplies canned calendar events
type fakeFeed struct {
	events []calendarclient.FeedEvent
	err    error
}

func (f *fakeFeed) UpcomingEvents(ctx context.Context, loc *time.Location) ([]calendarclient.FeedEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}
