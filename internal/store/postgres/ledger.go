package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pcastillom/presencia/internal/store"
)

func (s *Store) Exists(ctx context.Context, userID, eventID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendance WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking attendance: %w", err)
	}
	return exists, nil
}

// Create inserts the (user, event) record only if it is absent. The unique
// constraint plus ON CONFLICT DO NOTHING makes the insert conditional at
// the storage layer, so concurrent sessions cannot double-record a pair.
// When the pair already exists the prior record is returned unchanged.
func (s *Store) Create(ctx context.Context, userID, eventID int) (*store.Attendance, error) {
	var a store.Attendance
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO attendance (user_id, event_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, event_id) DO NOTHING
		 RETURNING id, user_id, event_id, recorded_at`,
		userID, eventID).Scan(&a.ID, &a.UserID, &a.EventID, &a.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict: another session already recorded the pair.
		return s.get(ctx, userID, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("recording attendance: %w", err)
	}
	return &a, nil
}

func (s *Store) get(ctx context.Context, userID, eventID int) (*store.Attendance, error) {
	var a store.Attendance
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, recorded_at FROM attendance
		 WHERE user_id = $1 AND event_id = $2`,
		userID, eventID).Scan(&a.ID, &a.UserID, &a.EventID, &a.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("fetching attendance: %w", err)
	}
	return &a, nil
}

func (s *Store) ListAttendance(ctx context.Context) ([]store.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, recorded_at FROM attendance ORDER BY recorded_at`)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	defer rows.Close()

	var records []store.Attendance
	for rows.Next() {
		var a store.Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.EventID, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
