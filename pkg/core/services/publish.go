package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// PublishResult summarizes one card publishing pass
type PublishResult struct {
	Created int
	Healed  int
	Skipped int
}

// PublishCards posts show cards for upcoming events that don't have one.
// Events whose recorded card has gone missing are healed: the stale
// reference and any orphaned signups are dropped, and a fresh card is
// posted in the same pass.
func (s *Service) PublishCards(ctx context.Context) (*PublishResult, error) {
	s.logger.Info("Publishing show cards")

	events, err := s.events.ListUpcomingEvents(ctx, time.Now().UTC())
	if err != nil {
		return nil, errStorage(err)
	}

	result := &PublishResult{}
	for i := range events {
		event := &events[i]

		unlock := s.locks.Lock(event.ID)

		if event.Published() {
			exists, err := s.chat.CardExists(ctx, event.ThreadRef)
			if err != nil {
				unlock()
				return nil, errStorage(err)
			}
			if exists {
				result.Skipped++
				unlock()
				continue
			}

			// The card was deleted out from under us. Signups tied to it
			// are orphaned; drop them so the replacement starts clean.
			s.logger.Warn("Show card missing, healing",
				zap.String("event_id", event.ID),
				zap.String("stale_card", event.ThreadRef))

			if err := s.signups.DeleteSignupsByEvent(ctx, event.ID); err != nil {
				unlock()
				return nil, errStorage(err)
			}
			if err := s.events.SetEventThreadRef(ctx, event.ID, ""); err != nil {
				unlock()
				return nil, errStorage(err)
			}
			event.ThreadRef = ""
			result.Healed++
		}

		// Fresh cards always render an empty roster
		fields := roster.RenderFields(event, nil, s.styles)
		cardRef, err := s.chat.PostCard(ctx, event, fields, s.styles)
		if err != nil {
			unlock()
			return nil, errStorage(err)
		}

		if err := s.events.SetEventThreadRef(ctx, event.ID, cardRef); err != nil {
			unlock()
			return nil, errStorage(err)
		}

		s.logger.Info("Show card published",
			zap.String("event_id", event.ID),
			zap.String("card_ref", cardRef))

		result.Created++
		unlock()
	}

	s.logger.Info("Publishing complete",
		zap.Int("created", result.Created),
		zap.Int("healed", result.Healed),
		zap.Int("skipped", result.Skipped))

	return result, nil
}
