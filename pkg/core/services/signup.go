package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// RequestRole signs a user up for a role on an event. If the user already
// holds a different role it is replaced; if they already hold this role
// the call is a no-op reported through AlreadyAssigned.
func (s *Service) RequestRole(ctx context.Context, eventID, userID string, role model.Role) (*RosterSnapshot, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	s.logger.Info("Role requested",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))

	event, err := s.liveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return s.assignRole(ctx, event, userID, role)
}

// AdminAssignRole assigns a role on behalf of another user, resolving the
// event from the show card reference. The same-role case is still
// reported as an explicit no-op rather than silently succeeding.
func (s *Service) AdminAssignRole(ctx context.Context, cardRef, userID string, role model.Role, actorIsAdmin bool) (*RosterSnapshot, error) {
	if !actorIsAdmin {
		return nil, errUnauthorized()
	}

	event, unlock, err := s.lockCardEvent(ctx, cardRef)
	if err != nil {
		if roleErr, ok := AsRoleError(err); ok && roleErr.Kind == KindEventNotFound {
			return nil, errCardNotFound()
		}
		return nil, err
	}
	defer unlock()

	s.logger.Info("Admin role assignment",
		zap.String("event_id", event.ID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))

	return s.assignRole(ctx, event, userID, role)
}

// RequestRoleByCard is RequestRole for callers that only know the show
// card reference, like a button press inside the card's thread
func (s *Service) RequestRoleByCard(ctx context.Context, cardRef, userID string, role model.Role) (*RosterSnapshot, error) {
	event, unlock, err := s.lockCardEvent(ctx, cardRef)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.logger.Info("Role requested",
		zap.String("event_id", event.ID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))

	return s.assignRole(ctx, event, userID, role)
}

// RemoveRole removes a user's signup from an event
func (s *Service) RemoveRole(ctx context.Context, eventID, userID string) (*RosterSnapshot, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.liveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return s.removeRole(ctx, event, userID)
}

// RemoveRoleByCard is RemoveRole resolved from the show card reference
func (s *Service) RemoveRoleByCard(ctx context.Context, cardRef, userID string) (*RosterSnapshot, error) {
	event, unlock, err := s.lockCardEvent(ctx, cardRef)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.removeRole(ctx, event, userID)
}

func (s *Service) removeRole(ctx context.Context, event *model.Event, userID string) (*RosterSnapshot, error) {
	s.logger.Info("Role removal requested",
		zap.String("event_id", event.ID),
		zap.String("user_id", userID))

	deleted, err := s.signups.DeleteSignup(ctx, event.ID, userID)
	if err != nil {
		return nil, errStorage(err)
	}
	if !deleted {
		return nil, errNotSignedUp()
	}

	snap, err := s.snapshot(ctx, event)
	if err != nil {
		return nil, err
	}

	// Thread membership is best-effort downstream of the roster state
	if err := s.chat.RemoveThreadMember(ctx, event.ThreadRef, userID); err != nil {
		s.logger.Warn("Failed to remove user from discussion thread",
			zap.String("event_id", event.ID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return snap, nil
}

// assignRole performs the shared validate, store, re-render, thread-add
// sequence. Mutation order is fixed: store first, then render, then
// thread membership, so a failed downstream step never corrupts the
// authoritative roster.
func (s *Service) assignRole(ctx context.Context, event *model.Event, userID string, role model.Role) (*RosterSnapshot, error) {
	if !roster.IsLegal(event.Mode, role) {
		return nil, errIllegalForMode(event.Mode, role)
	}

	existing, err := s.signups.GetSignup(ctx, event.ID, userID)
	if err != nil {
		return nil, errStorage(err)
	}

	if existing != nil && existing.Role == role {
		signups, err := s.signups.ListSignupsByEvent(ctx, event.ID)
		if err != nil {
			return nil, errStorage(err)
		}
		return &RosterSnapshot{
			Event:           event,
			Signups:         signups,
			Needed:          roster.ComputeNeeded(event, signups),
			Fields:          roster.RenderFields(event, signups, s.styles),
			AlreadyAssigned: true,
		}, nil
	}

	// The (event, user) uniqueness constraint turns a role change into an
	// atomic replace; the user is never double-booked
	signup := &model.Signup{
		ID:        uuid.New().String(),
		EventID:   event.ID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.signups.UpsertSignup(ctx, signup); err != nil {
		return nil, errStorage(err)
	}

	snap, err := s.snapshot(ctx, event)
	if err != nil {
		return nil, err
	}

	if err := s.chat.AddThreadMember(ctx, event.ThreadRef, userID); err != nil {
		s.logger.Warn("Failed to add user to discussion thread",
			zap.String("event_id", event.ID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	s.logger.Info("Role assigned",
		zap.String("event_id", event.ID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))

	return snap, nil
}

// lockCardEvent resolves the event behind a show card, locks it, then
// re-loads it under the lock. The card lookup races with mode
// transitions and healing, so the pre-lock copy is only trusted for its
// id; every decision downstream reads the state loaded here.
func (s *Service) lockCardEvent(ctx context.Context, cardRef string) (*model.Event, func(), error) {
	stale, err := s.events.GetEventByThreadRef(ctx, cardRef)
	if err != nil {
		return nil, nil, errStorage(err)
	}
	if stale == nil {
		return nil, nil, errEventNotFound()
	}

	unlock := s.locks.Lock(stale.ID)

	event, err := s.events.GetEvent(ctx, stale.ID)
	if err != nil {
		unlock()
		return nil, nil, errStorage(err)
	}
	if event == nil || !event.Published() {
		unlock()
		return nil, nil, errEventNotFound()
	}

	return event, unlock, nil
}

// liveEvent loads an event and requires it to have a published show card
func (s *Service) liveEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errStorage(err)
	}
	if event == nil || !event.Published() {
		return nil, errEventNotFound()
	}
	return event, nil
}
