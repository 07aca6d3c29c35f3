package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pcastillom/presencia/internal/store"
)

func (s *Store) UserByID(ctx context.Context, id int) (*store.User, error) {
	var u store.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, rut, COALESCE(program, '') FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.RUT, &u.Program)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

func (s *Store) EventByID(ctx context.Context, id int) (*store.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, COALESCE(description, ''), COALESCE(presenter, ''), active
		 FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

func (s *Store) ActiveEvent(ctx context.Context) (*store.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, COALESCE(description, ''), COALESCE(presenter, ''), active
		 FROM events WHERE active ORDER BY date DESC, id DESC LIMIT 1`)
	return scanEvent(row)
}

func scanEvent(row *sql.Row) (*store.Event, error) {
	var e store.Event
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Description, &e.Presenter, &e.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return &e, nil
}

func (s *Store) CreateUser(ctx context.Context, u *store.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, rut, program) VALUES (?, ?, ?)`,
		u.Name, u.RUT, u.Program)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new user id: %w", err)
	}
	u.ID = int(id)
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *store.User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, program = ? WHERE id = ?`,
		u.Name, u.Program, u.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, rut, COALESCE(program, '') FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		var u store.User
		if err := rows.Scan(&u.ID, &u.Name, &u.RUT, &u.Program); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) CreateEvent(ctx context.Context, e *store.Event) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (name, date, description, presenter, active)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.Date, e.Description, e.Presenter, e.Active)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new event id: %w", err)
	}
	e.ID = int(id)
	return nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *store.Event) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE events SET name = ?, date = ?, description = ?, presenter = ?, active = ?
		 WHERE id = ?`,
		e.Name, e.Date, e.Description, e.Presenter, e.Active, e.ID)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return nil
}

func (s *Store) SetEventActive(ctx context.Context, id int, active bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE events SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("setting event state: %w", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context) ([]store.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date, COALESCE(description, ''), COALESCE(presenter, ''), active
		 FROM events ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []store.Event
	for rows.Next() {
		var e store.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Description, &e.Presenter, &e.Active); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
