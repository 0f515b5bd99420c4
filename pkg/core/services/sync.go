package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// SyncResult summarizes one calendar sync pass
type SyncResult struct {
	Created   int
	Refreshed int
}

// SyncEvents pulls upcoming events from the calendar feed and merges them
// into the event store. A new id creates an event with the configured
// default minimums and an initial mode from the mode rules; a known id
// only refreshes summary and start time — mode, minimums and the card
// reference always survive a re-sync.
func (s *Service) SyncEvents(ctx context.Context, feed CalendarFeed) (*SyncResult, error) {
	s.logger.Info("Syncing calendar events")

	feedEvents, err := feed.UpcomingEvents(ctx, s.location)
	if err != nil {
		return nil, errStorage(err)
	}

	s.logger.Debug("Calendar feed fetched", zap.Int("count", len(feedEvents)))

	result := &SyncResult{}
	for _, fe := range feedEvents {
		existing, err := s.events.GetEvent(ctx, fe.ID)
		if err != nil {
			return nil, errStorage(err)
		}

		event := &model.Event{
			ID:            fe.ID,
			Summary:       fe.Summary,
			StartTime:     fe.StartTime,
			Mode:          s.initialMode(fe.StartTime),
			NeededBookers: s.defaults.NeededBookers,
			NeededDoors:   s.defaults.NeededDoors,
			NeededSound:   s.defaults.NeededSound,
		}

		if err := s.events.UpsertEventFromFeed(ctx, event); err != nil {
			return nil, errStorage(err)
		}

		if existing == nil {
			result.Created++
			s.logger.Info("New event stored",
				zap.String("event_id", fe.ID),
				zap.String("summary", fe.Summary),
				zap.String("mode", string(event.Mode)))
		} else {
			result.Refreshed++
		}
	}

	s.logger.Info("Calendar sync complete",
		zap.Int("created", result.Created),
		zap.Int("refreshed", result.Refreshed))

	return result, nil
}

// initialMode returns the mode a brand-new event starts in: the first
// mode rule with an occurrence on the event's local day wins, otherwise
// STANDARD
func (s *Service) initialMode(start time.Time) model.Mode {
	local := start.In(s.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Second)

	for _, rule := range s.modeRules {
		if len(rule.Rule.Between(dayStart, dayEnd, true)) > 0 {
			return rule.Mode
		}
	}
	return model.ModeStandard
}
