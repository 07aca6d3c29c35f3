package mariadb

import (
	"context"
	"fmt"

	"github.com/pcastillom/presencia/internal/store"
)

func (s *Store) Exists(ctx context.Context, userID, eventID int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM attendance WHERE user_id = ? AND event_id = ?`,
		userID, eventID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking attendance: %w", err)
	}
	return n > 0, nil
}

// Create inserts the (user, event) record only if it is absent, relying
// on the unique pair key plus INSERT IGNORE. When the pair already exists
// the prior record is returned unchanged.
func (s *Store) Create(ctx context.Context, userID, eventID int) (*store.Attendance, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT IGNORE INTO attendance (user_id, event_id) VALUES (?, ?)`,
		userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("recording attendance: %w", err)
	}
	return s.get(ctx, userID, eventID)
}

func (s *Store) get(ctx context.Context, userID, eventID int) (*store.Attendance, error) {
	var a store.Attendance
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, recorded_at FROM attendance
		 WHERE user_id = ? AND event_id = ?`,
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
