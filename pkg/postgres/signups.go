package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// UpsertSignup inserts a signup or replaces the user's existing role on
// the event. The (event_id, user_id) uniqueness constraint makes the
// replace atomic: a user is never double-booked on one show. A replaced
// signup moves to the end of its new role's listing.
func (db *DB) UpsertSignup(ctx context.Context, signup *model.Signup) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO signups (id, event_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			created_at = EXCLUDED.created_at
	`, signup.ID, signup.EventID, signup.UserID, string(signup.Role), signup.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert signup: %w", err)
	}
	return nil
}

// GetSignup returns the user's signup on the event, or nil when the user
// is not signed up
func (db *DB) GetSignup(ctx context.Context, eventID, userID string) (*model.Signup, error) {
	row := db.pool.QueryRow(ctx, `
		SELECT id, event_id, user_id, role, created_at
		FROM signups
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)

	var s model.Signup
	var role string
	err := row.Scan(&s.ID, &s.EventID, &s.UserID, &role, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signup: %w", err)
	}
	s.Role = model.Role(role)
	return &s, nil
}

// DeleteSignup removes the user's signup on the event and reports whether
// a row was deleted
func (db *DB) DeleteSignup(ctx context.Context, eventID, userID string) (bool, error) {
	tag, err := db.pool.Exec(ctx, `
		DELETE FROM signups WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete signup: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteSignupsByEvent removes every signup on the event, used when a
// lost show card orphans its roster
func (db *DB) DeleteSignupsByEvent(ctx context.Context, eventID string) error {
	_, err := db.pool.Exec(ctx, `
		DELETE FROM signups WHERE event_id = $1
	`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete signups for event: %w", err)
	}
	return nil
}

// ListSignupsByEvent returns the event's signups in signup order
func (db *DB) ListSignupsByEvent(ctx context.Context, eventID string) ([]model.Signup, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, event_id, user_id, role, created_at
		FROM signups
		WHERE event_id = $1
		ORDER BY created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups: %w", err)
	}
	defer rows.Close()

	return scanSignups(rows)
}

// ListSignupsForEvents returns all signups across the given events
func (db *DB) ListSignupsForEvents(ctx context.Context, eventIDs []string) ([]model.Signup, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx, `
		SELECT id, event_id, user_id, role, created_at
		FROM signups
		WHERE event_id = ANY($1)
		ORDER BY created_at
	`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups for events: %w", err)
	}
	defer rows.Close()

	return scanSignups(rows)
}

func scanSignups(rows pgx.Rows) ([]model.Signup, error) {
	var signups []model.Signup
	for rows.Next() {
		var s model.Signup
		var role string
		if err := rows.Scan(&s.ID, &s.EventID, &s.UserID, &role, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		s.Role = model.Role(role)
		signups = append(signups, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signups: %w", err)
	}

	return signups, nil
}
