package calendarclient

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// FeedEvent is one upcoming calendar entry, normalized for the event store
type FeedEvent struct {
	ID        string
	Summary   string
	StartTime time.Time
}

// UpcomingEvents lists upcoming events on the configured calendar. The
// API expands recurring events into individual occurrences; only the
// next occurrence of each recurrence is kept so a weekly show produces
// one card at a time. All-day entries start at midnight in loc.
func (c *Client) UpcomingEvents(ctx context.Context, loc *time.Location) ([]FeedEvent, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := c.service.Events.List(c.calendarID).
		TimeMin(now).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	return normalizeEvents(result.Items, loc)
}

// normalizeEvents converts raw API items to feed events, dropping all but
// the first occurrence per recurringEventId
func normalizeEvents(items []*calendar.Event, loc *time.Location) ([]FeedEvent, error) {
	seenRecurrences := make(map[string]bool)

	var events []FeedEvent
	for _, item := range items {
		if item.RecurringEventId != "" {
			if seenRecurrences[item.RecurringEventId] {
				continue
			}
			seenRecurrences[item.RecurringEventId] = true
		}

		start, err := parseStart(item.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start of event %s: %w", item.Id, err)
		}

		events = append(events, FeedEvent{
			ID:        item.Id,
			Summary:   item.Summary,
			StartTime: start,
		})
	}

	return events, nil
}

// parseStart handles both timed entries (RFC3339 dateTime) and all-day
// entries (bare date, anchored to midnight local)
func parseStart(start *calendar.EventDateTime, loc *time.Location) (time.Time, error) {
	if start == nil {
		return time.Time{}, fmt.Errorf("event has no start")
	}

	if start.DateTime != "" {
		return time.Parse(time.RFC3339, start.DateTime)
	}

	if start.Date != "" {
		return time.ParseInLocation("2006-01-02", start.Date, loc)
	}

	return time.Time{}, fmt.Errorf("event start has neither dateTime nor date")
}
