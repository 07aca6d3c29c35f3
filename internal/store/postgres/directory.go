package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pcastillom/presencia/internal/store"
)

func (s *Store) UserByID(ctx context.Context, id int) (*store.User, error) {
	var u store.User
	var program sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, rut, COALESCE(program, '') FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.RUT, &program)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.Program = program.String
	return &u, nil
}

func (s *Store) EventByID(ctx context.Context, id int) (*store.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, COALESCE(description, ''), COALESCE(presenter, ''), active
		 FROM events WHERE id = $1`, id)
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
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, rut, program) VALUES ($1, $2, $3) RETURNING id`,
		u.Name, u.RUT, u.Program).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *store.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = $1, program = $2 WHERE id = $3`,
		u.Name, u.Program, u.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return checkAffected(res)
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
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (name, date, description, presenter, active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.Name, e.Date, e.Description, e.Presenter, e.Active).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *store.Event) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET name = $1, date = $2, description = $3, presenter = $4, active = $5
		 WHERE id = $6`,
		e.Name, e.Date, e.Description, e.Presenter, e.Active, e.ID)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return checkAffected(res)
}

func (s *Store) SetEventActive(ctx context.Context, id int, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("setting event state: %w", err)
	}
	return checkAffected(res)
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

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
