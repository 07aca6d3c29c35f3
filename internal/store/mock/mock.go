// Package mock provides in-memory implementations of store.Directory and
// store.Ledger for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/pcastillom/presencia/internal/store"
)

// Directory is an in-memory store.Directory.
type Directory struct {
	mu     sync.RWMutex
	users  map[int]store.User
	events map[int]store.Event
	nextU  int
	nextE  int

	// Error injection
	UserByIDError    error
	EventByIDError   error
	ActiveEventError error
}

// NewDirectory creates an empty in-memory directory.
func NewDirectory() *Directory {
	return &Directory{
		users:  make(map[int]store.User),
		events: make(map[int]store.Event),
	}
}

// AddUser seeds a user with a fixed id.
func (d *Directory) AddUser(u store.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
	if u.ID > d.nextU {
		d.nextU = u.ID
	}
}

// AddEvent seeds an event with a fixed id.
func (d *Directory) AddEvent(e store.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events[e.ID] = e
	if e.ID > d.nextE {
		d.nextE = e.ID
	}
}

func (d *Directory) UserByID(ctx context.Context, id int) (*store.User, error) {
	if d.UserByIDError != nil {
		return nil, d.UserByIDError
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (d *Directory) EventByID(ctx context.Context, id int) (*store.Event, error) {
	if d.EventByIDError != nil {
		return nil, d.EventByIDError
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (d *Directory) ActiveEvent(ctx context.Context) (*store.Event, error) {
	if d.ActiveEventError != nil {
		return nil, d.ActiveEventError
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	var best *store.Event
	for id := range d.events {
		e := d.events[id]
		if !e.Active {
			continue
		}
		if best == nil || e.Date.After(best.Date) || (e.Date.Equal(best.Date) && e.ID > best.ID) {
			best = &e
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	out := *best
	return &out, nil
}

func (d *Directory) CreateUser(ctx context.Context, u *store.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextU++
	u.ID = d.nextU
	d.users[u.ID] = *u
	return nil
}

func (d *Directory) UpdateUser(ctx context.Context, u *store.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	d.users[u.ID] = *u
	return nil
}

func (d *Directory) ListUsers(ctx context.Context) ([]store.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	users := make([]store.User, 0, len(d.users))
	for id := 1; id <= d.nextU; id++ {
		if u, ok := d.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (d *Directory) CreateEvent(ctx context.Context, e *store.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextE++
	e.ID = d.nextE
	d.events[e.ID] = *e
	return nil
}

func (d *Directory) UpdateEvent(ctx context.Context, e *store.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.events[e.ID]; !ok {
		return store.ErrNotFound
	}
	d.events[e.ID] = *e
	return nil
}

func (d *Directory) SetEventActive(ctx context.Context, id int, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Active = active
	d.events[id] = e
	return nil
}

func (d *Directory) ListEvents(ctx context.Context) ([]store.Event, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	events := make([]store.Event, 0, len(d.events))
	for id := 1; id <= d.nextE; id++ {
		if e, ok := d.events[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

// Ledger is an in-memory store.Ledger.
type Ledger struct {
	mu      sync.Mutex
	records []store.Attendance
	next    int

	// Error injection
	ExistsError error
	CreateError error

	// Now supplies record timestamps; defaults to time.Now.
	Now func() time.Time
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Exists(ctx context.Context, userID, eventID int) (bool, error) {
	if l.ExistsError != nil {
		return false, l.ExistsError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.find(userID, eventID) != nil, nil
}

func (l *Ledger) Create(ctx context.Context, userID, eventID int) (*store.Attendance, error) {
	if l.CreateError != nil {
		return nil, l.CreateError
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if a := l.find(userID, eventID); a != nil {
		out := *a
		return &out, nil
	}

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	l.next++
	a := store.Attendance{ID: l.next, UserID: userID, EventID: eventID, RecordedAt: now}
	l.records = append(l.records, a)
	return &a, nil
}

func (l *Ledger) ListAttendance(ctx context.Context) ([]store.Attendance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]store.Attendance, len(l.records))
	copy(out, l.records)
	return out, nil
}

func (l *Ledger) find(userID, eventID int) *store.Attendance {
	for i := range l.records {
		if l.records[i].UserID == userID && l.records[i].EventID == eventID {
			return &l.records[i]
		}
	}
	return nil
}
