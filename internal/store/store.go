// Package store defines the user, event and attendance records plus the
// Directory and Ledger interfaces the recognition pipeline consumes.
// Concrete backends live in the postgres and mariadb subpackages; mock
// holds the in-memory implementation used by tests.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested user or event does not exist.
var ErrNotFound = errors.New("store: not found")

type User struct {
	ID      int
	Name    string
	RUT     string // national id, unique per user
	Program string
}

type Event struct {
	ID          int
	Name        string
	Date        time.Time
	Description string
	Presenter   string
	Active      bool
}

// Attendance is immutable once created; at most one record exists per
// (user, event) pair.
type Attendance struct {
	ID         int
	UserID     int
	EventID    int
	RecordedAt time.Time
}

// Directory owns user and event records. The recognition pipeline only
// reads from it; the CRUD entry points serve the surrounding CLI and HTTP
// surfaces.
type Directory interface {
	UserByID(ctx context.Context, id int) (*User, error)
	EventByID(ctx context.Context, id int) (*Event, error)
	// ActiveEvent returns the most recent event with the active flag set,
	// or ErrNotFound when none exists.
	ActiveEvent(ctx context.Context) (*Event, error)

	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context) ([]User, error)

	CreateEvent(ctx context.Context, e *Event) error
	UpdateEvent(ctx context.Context, e *Event) error
	SetEventActive(ctx context.Context, id int, active bool) error
	ListEvents(ctx context.Context) ([]Event, error)
}

// Ledger records attendance. Create inserts only if the pair is absent
// and reports whether a record was written; the recognition session still
// re-checks Exists immediately before committing.
type Ledger interface {
	Exists(ctx context.Context, userID, eventID int) (bool, error)
	Create(ctx context.Context, userID, eventID int) (*Attendance, error)
	ListAttendance(ctx context.Context) ([]Attendance, error)
}
