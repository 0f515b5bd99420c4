package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// UpsertEventFromFeed inserts a calendar event or refreshes an existing
// row's display fields. The sync is a merge: mode, thread_ref and the
// needed-volunteer minimums are never touched for a known id.
func (db *DB) UpsertEventFromFeed(ctx context.Context, event *model.Event) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO events (id, summary, start_time, mode, needed_bookers, needed_doors, needed_sound)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			summary = EXCLUDED.summary,
			start_time = EXCLUDED.start_time
	`, event.ID, event.Summary, event.StartTime.UTC(), string(event.Mode),
		event.NeededBookers, event.NeededDoors, event.NeededSound)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	return nil
}

const eventColumns = `id, summary, start_time, thread_ref, mode, needed_bookers, needed_doors, needed_sound`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var mode string
	if err := row.Scan(&e.ID, &e.Summary, &e.StartTime, &e.ThreadRef, &mode,
		&e.NeededBookers, &e.NeededDoors, &e.NeededSound); err != nil {
		return nil, err
	}
	e.Mode = model.Mode(mode)
	return &e, nil
}

// GetEvent returns the event with the given calendar id, or nil when no
// such event is stored
func (db *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	row := db.pool.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events WHERE id = $1
	`, id)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// GetEventByThreadRef resolves a published show card reference back to
// its event, or nil when no event owns the reference
func (db *DB) GetEventByThreadRef(ctx context.Context, threadRef string) (*model.Event, error) {
	if threadRef == "" {
		return nil, nil
	}

	row := db.pool.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events WHERE thread_ref = $1
	`, threadRef)

	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by thread ref: %w", err)
	}
	return event, nil
}

// ListUpcomingEvents returns events starting at or after the given time,
// ordered by start time
func (db *DB) ListUpcomingEvents(ctx context.Context, from time.Time) ([]model.Event, error) {
	return db.listEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE start_time >= $1
		ORDER BY start_time
	`, from.UTC())
}

// ListEventsBetween returns events whose start time falls in [start, end],
// ordered by start time
func (db *DB) ListEventsBetween(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	return db.listEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE start_time >= $1 AND start_time <= $2
		ORDER BY start_time
	`, start.UTC(), end.UTC())
}

func (db *DB) listEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// SetEventMode persists a mode transition
func (db *DB) SetEventMode(ctx context.Context, id string, mode model.Mode) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE events SET mode = $2 WHERE id = $1
	`, id, string(mode))
	if err != nil {
		return fmt.Errorf("failed to set event mode: %w", err)
	}
	return nil
}

// SetEventThreadRef records or clears the published show card reference
func (db *DB) SetEventThreadRef(ctx context.Context, id string, threadRef string) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE events SET thread_ref = $2 WHERE id = $1
	`, id, threadRef)
	if err != nil {
		return fmt.Errorf("failed to set event thread ref: %w", err)
	}
	return nil
}

// SetEventNeeded persists the needed-volunteer minimums
func (db *DB) SetEventNeeded(ctx context.Context, id string, bookers, doors, sound int) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE events SET needed_bookers = $2, needed_doors = $3, needed_sound = $4 WHERE id = $1
	`, id, bookers, doors, sound)
	if err != nil {
		return fmt.Errorf("failed to set event minimums: %w", err)
	}
	return nil
}
