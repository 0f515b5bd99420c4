package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// SetMode transitions a show to a new mode, culling signups whose role is
// no longer legal, and rewrites the card for the new mode's field layout.
// After the transition every surviving signup is legal under the new mode.
func (s *Service) SetMode(ctx context.Context, cardRef string, newMode model.Mode, actorIsAdmin bool) (*RosterSnapshot, error) {
	if !actorIsAdmin {
		return nil, errUnauthorized()
	}
	if !newMode.IsValid() {
		return nil, fmt.Errorf("invalid mode %q", newMode)
	}

	// Mode changes only apply to live show cards, so the event is
	// resolved from the card's own reference
	event, unlock, err := s.lockCardEvent(ctx, cardRef)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.logger.Info("Mode transition",
		zap.String("event_id", event.ID),
		zap.String("old_mode", string(event.Mode)),
		zap.String("new_mode", string(newMode)))

	if err := s.events.SetEventMode(ctx, event.ID, newMode); err != nil {
		return nil, errStorage(err)
	}
	event.Mode = newMode

	signups, err := s.signups.ListSignupsByEvent(ctx, event.ID)
	if err != nil {
		return nil, errStorage(err)
	}

	culled := 0
	for _, signup := range signups {
		if roster.IsLegal(newMode, signup.Role) {
			continue
		}
		if _, err := s.signups.DeleteSignup(ctx, event.ID, signup.UserID); err != nil {
			return nil, errStorage(err)
		}
		if err := s.chat.RemoveThreadMember(ctx, event.ThreadRef, signup.UserID); err != nil {
			s.logger.Warn("Failed to remove culled signup from thread",
				zap.String("event_id", event.ID),
				zap.String("user_id", signup.UserID),
				zap.Error(err))
		}
		culled++
	}

	s.logger.Info("Mode transition applied",
		zap.String("event_id", event.ID),
		zap.Int("culled_signups", culled))

	// The renderer rewrites the card in one pass from the surviving
	// signups, so the store and the display cannot drift
	return s.snapshot(ctx, event)
}
