//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/store"
)

func setupTestContainer(t *testing.T) (*Store, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	s, err := New(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to migrate: %v", err)
	}

	return s, func() {
		s.Close()
		container.Terminate(ctx)
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	s, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	u := &store.User{Name: "Ana Pérez", RUT: "12345678-9", Program: "Informática"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}

	got, err := s.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if got.Name != u.Name || got.RUT != u.RUT {
		t.Errorf("UserByID = %+v; want %+v", got, u)
	}

	if _, err := s.UserByID(ctx, 9999); err != store.ErrNotFound {
		t.Errorf("UserByID(missing) error = %v; want ErrNotFound", err)
	}

	u.Program = "Ingeniería"
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].Program != "Ingeniería" {
		t.Errorf("ListUsers = %+v; want one updated user", users)
	}
}

func TestActiveEventSelection(t *testing.T) {
	s, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	day := 24 * time.Hour
	old := &store.Event{Name: "old", Date: time.Now().Add(-3 * day), Active: true}
	recent := &store.Event{Name: "recent", Date: time.Now(), Active: true}
	inactive := &store.Event{Name: "inactive", Date: time.Now().Add(day), Active: false}
	for _, e := range []*store.Event{old, recent, inactive} {
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	got, err := s.ActiveEvent(ctx)
	if err != nil {
		t.Fatalf("ActiveEvent failed: %v", err)
	}
	if got.ID != recent.ID {
		t.Errorf("ActiveEvent = %q; want most recent active event %q", got.Name, recent.Name)
	}

	for _, e := range []*store.Event{old, recent} {
		if err := s.SetEventActive(ctx, e.ID, false); err != nil {
			t.Fatalf("SetEventActive failed: %v", err)
		}
	}
	if _, err := s.ActiveEvent(ctx); err != store.ErrNotFound {
		t.Errorf("ActiveEvent with none active = %v; want ErrNotFound", err)
	}
}

func TestLedgerConditionalInsert(t *testing.T) {
	s, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	u := &store.User{Name: "Luis", RUT: "9876543-2"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	e := &store.Event{Name: "seminar", Date: time.Now(), Active: true}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	exists, err := s.Exists(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Fatal("Exists = true before any record")
	}

	first, err := s.Create(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := s.Create(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("duplicate Create produced a new record: ids %d and %d", first.ID, second.ID)
	}

	records, err := s.ListAttendance(ctx)
	if err != nil {
		t.Fatalf("ListAttendance failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("ListAttendance has %d records; want exactly 1", len(records))
	}
}
