package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ReportEntry is one user's signup count over the reported window
type ReportEntry struct {
	UserID string
	Count  int
}

// Report counts signups per user across events starting in [start, end],
// most active volunteers first
func (s *Service) Report(ctx context.Context, start, end time.Time) ([]ReportEntry, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errInvalidDateRange("Both a start and an end date are required.")
	}
	if end.Before(start) {
		return nil, errInvalidDateRange("The start date must be on or before the end date.")
	}

	events, err := s.events.ListEventsBetween(ctx, start, end)
	if err != nil {
		return nil, errStorage(err)
	}

	eventIDs := make([]string, len(events))
	for i, e := range events {
		eventIDs[i] = e.ID
	}

	signups, err := s.signups.ListSignupsForEvents(ctx, eventIDs)
	if err != nil {
		return nil, errStorage(err)
	}

	counts := make(map[string]int)
	for _, signup := range signups {
		counts[signup.UserID]++
	}

	entries := make([]ReportEntry, 0, len(counts))
	for userID, count := range counts {
		entries = append(entries, ReportEntry{UserID: userID, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].UserID < entries[j].UserID
	})

	s.logger.Info("Report generated",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("events", len(events)),
		zap.Int("volunteers", len(entries)))

	return entries, nil
}
