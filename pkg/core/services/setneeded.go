package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SetVolunteersNeeded updates a show's needed-volunteer minimums and
// re-renders its card
func (s *Service) SetVolunteersNeeded(ctx context.Context, cardRef string, bookers, doors, sound int, actorIsAdmin bool) (*RosterSnapshot, error) {
	if !actorIsAdmin {
		return nil, errUnauthorized()
	}
	if bookers < 0 || doors < 0 || sound < 0 {
		return nil, fmt.Errorf("needed-volunteer minimums must be non-negative")
	}

	event, unlock, err := s.lockCardEvent(ctx, cardRef)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.logger.Info("Updating needed volunteers",
		zap.String("event_id", event.ID),
		zap.Int("bookers", bookers),
		zap.Int("doors", doors),
		zap.Int("sound", sound))

	if err := s.events.SetEventNeeded(ctx, event.ID, bookers, doors, sound); err != nil {
		return nil, errStorage(err)
	}
	event.NeededBookers = bookers
	event.NeededDoors = doors
	event.NeededSound = sound

	return s.snapshot(ctx, event)
}
