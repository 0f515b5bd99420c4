package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
)

// UpcomingItem is one upcoming show in the listing
type UpcomingItem struct {
	Event   model.Event
	Needed  roster.Needed
	HasCard bool
}

// NeededString renders the item's deficit for display
func (u *UpcomingItem) NeededString(styles roster.Styles) string {
	return u.Needed.String(styles)
}

// Upcoming lists upcoming shows with their needed-volunteer summaries.
// Events without a published card carry no roster information; their
// residual signups, if any, are ignored.
func (s *Service) Upcoming(ctx context.Context) ([]UpcomingItem, error) {
	events, err := s.events.ListUpcomingEvents(ctx, time.Now().UTC())
	if err != nil {
		return nil, errStorage(err)
	}

	items := make([]UpcomingItem, 0, len(events))
	for i := range events {
		event := events[i]
		item := UpcomingItem{Event: event, HasCard: event.Published()}

		if item.HasCard {
			signups, err := s.signups.ListSignupsByEvent(ctx, event.ID)
			if err != nil {
				return nil, errStorage(err)
			}
			item.Needed = roster.ComputeNeeded(&event, signups)
		}

		items = append(items, item)
	}

	s.logger.Debug("Upcoming events listed", zap.Int("count", len(items)))

	return items, nil
}
