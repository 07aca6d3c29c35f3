package session

import (
	"context"
	"errors"
	"image"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/lbph"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/store"
	"github.com/pcastillom/presencia/internal/store/mock"
	"github.com/pcastillom/presencia/internal/vault"
	"github.com/pcastillom/presencia/internal/vision"
)

// fakeCam scripts a camera session: one entry per frame, each listing
// the face boxes the detector reports. Present advances the script.
type fakeCam struct {
	frames [][]image.Rectangle
	idx    int
	quitAt int // frame index at which Present reports quit; -1 never
	closed bool
}

func newFakeCam(frames [][]image.Rectangle) *fakeCam {
	return &fakeCam{frames: frames, quitAt: -1}
}

func (c *fakeCam) Next() (*image.Gray, error) {
	if c.idx >= len(c.frames) {
		return nil, io.EOF
	}
	return image.NewGray(image.Rect(0, 0, 320, 240)), nil
}

func (c *fakeCam) Locate(frame *image.Gray) []image.Rectangle {
	return c.frames[c.idx]
}

func (c *fakeCam) Present(overlays []vision.Overlay, banner vision.Banner) (bool, error) {
	quit := c.idx == c.quitAt
	c.idx++
	return quit, nil
}

func (c *fakeCam) Close() error {
	c.closed = true
	return nil
}

// fakeClassifier answers every crop with a fixed label and distance.
type fakeClassifier struct {
	label    int
	distance float64
}

func (f *fakeClassifier) Predict(crop *image.Gray) (int, float64) {
	return f.label, f.distance
}

// fakeClock hands out timestamps one second apart per call.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Dataset: config.DatasetConfig{
			Root:    filepath.Join(dir, "dataset"),
			KeyPath: filepath.Join(dir, "key.key"),
			Cap:     5,
		},
		Model: config.ModelConfig{Path: filepath.Join(dir, "model.gob")},
		Recognizer: config.RecognizerConfig{
			ConfidenceThreshold: 40.0,
			ConfirmationWindow:  2 * time.Second,
		},
	}
}

func testPipeline(t *testing.T, cam *fakeCam, cls Classifier) (*Pipeline, *mock.Directory, *mock.Ledger) {
	t.Helper()
	cfg := testConfig(t)
	dir := mock.NewDirectory()
	led := mock.NewLedger()
	log := logger.Nop()

	p := New(cfg, vault.New(cfg.Dataset.Root, cfg.Dataset.KeyPath, log), dir, led, log)
	p.OpenSource = func(title string) (vision.Source, vision.Locator, error) {
		return cam, cam, nil
	}
	p.LoadClassifier = func() (Classifier, error) { return cls, nil }
	clock := &fakeClock{t: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
	p.Now = clock.Now
	return p, dir, led
}

func oneFace() []image.Rectangle {
	return []image.Rectangle{image.Rect(40, 40, 140, 140)}
}

func TestRecognizeRecordsOnceAfterWindow(t *testing.T) {
	// Five consecutive matching frames, one second apart: the third one
	// crosses the two second window and commits; the rest see the
	// existing record and never re-enter confirmation.
	cam := newFakeCam([][]image.Rectangle{
		oneFace(), oneFace(), oneFace(), oneFace(), oneFace(),
	})
	p, dir, led := testPipeline(t, cam, &fakeClassifier{label: 7, distance: 12})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})
	dir.AddEvent(store.Event{ID: 3, Name: "Charla", Active: true})

	if err := p.Recognize(context.Background(), 0); err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	records, _ := led.ListAttendance(context.Background())
	if len(records) != 1 {
		t.Fatalf("got %d attendance records, want 1", len(records))
	}
	if records[0].UserID != 7 || records[0].EventID != 3 {
		t.Fatalf("record = %+v, want user 7 event 3", records[0])
	}
	if !cam.closed {
		t.Fatal("camera was not closed")
	}
}

func TestRecognizeUnknownFaceNeverRecords(t *testing.T) {
	cam := newFakeCam([][]image.Rectangle{oneFace(), oneFace(), oneFace(), oneFace()})
	p, dir, led := testPipeline(t, cam, &fakeClassifier{label: 7, distance: 85})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})
	dir.AddEvent(store.Event{ID: 3, Name: "Charla", Active: true})

	if err := p.Recognize(context.Background(), 0); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	records, _ := led.ListAttendance(context.Background())
	if len(records) != 0 {
		t.Fatalf("got %d attendance records, want 0", len(records))
	}
}

func TestRecognizeResetsOnFaceLoss(t *testing.T) {
	// The empty frame in the middle drops the candidate, so the window
	// never elapses even though four matching frames were seen.
	cam := newFakeCam([][]image.Rectangle{
		oneFace(), oneFace(), nil, oneFace(), oneFace(),
	})
	p, dir, led := testPipeline(t, cam, &fakeClassifier{label: 7, distance: 12})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})
	dir.AddEvent(store.Event{ID: 3, Name: "Charla", Active: true})

	if err := p.Recognize(context.Background(), 0); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	records, _ := led.ListAttendance(context.Background())
	if len(records) != 0 {
		t.Fatalf("got %d attendance records, want 0", len(records))
	}
}

func TestRecognizeSkipsAlreadyRegistered(t *testing.T) {
	cam := newFakeCam([][]image.Rectangle{oneFace(), oneFace(), oneFace()})
	p, dir, led := testPipeline(t, cam, &fakeClassifier{label: 7, distance: 12})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})
	dir.AddEvent(store.Event{ID: 3, Name: "Charla", Active: true})
	if _, err := led.Create(context.Background(), 7, 3); err != nil {
		t.Fatal(err)
	}

	if err := p.Recognize(context.Background(), 0); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	records, _ := led.ListAttendance(context.Background())
	if len(records) != 1 {
		t.Fatalf("got %d attendance records, want 1", len(records))
	}
}

func TestRecognizeEventErrors(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(*mock.Directory)
		eventID int
		want    error
	}{
		{
			name:    "explicit event missing",
			seed:    func(d *mock.Directory) {},
			eventID: 42,
			want:    ErrEventNotFound,
		},
		{
			name: "explicit event inactive",
			seed: func(d *mock.Directory) {
				d.AddEvent(store.Event{ID: 3, Name: "Charla", Active: false})
			},
			eventID: 3,
			want:    ErrEventNotActive,
		},
		{
			name:    "no active event",
			seed:    func(d *mock.Directory) {},
			eventID: 0,
			want:    ErrNoActiveEvent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := newFakeCam(nil)
			p, dir, _ := testPipeline(t, cam, &fakeClassifier{})
			opened := false
			p.OpenSource = func(title string) (vision.Source, vision.Locator, error) {
				opened = true
				return cam, cam, nil
			}
			tc.seed(dir)

			err := p.Recognize(context.Background(), tc.eventID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if opened {
				t.Fatal("camera was opened despite event resolution failure")
			}
		})
	}
}

func TestCaptureStopsAtSampleCap(t *testing.T) {
	// Three faces per frame against a cap of five: the cap wins mid
	// frame and the session stores exactly five samples.
	three := []image.Rectangle{
		image.Rect(0, 0, 100, 100),
		image.Rect(100, 0, 200, 100),
		image.Rect(0, 100, 100, 200),
	}
	cam := newFakeCam([][]image.Rectangle{three, three, three})
	p, dir, _ := testPipeline(t, cam, &fakeClassifier{})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})

	var lastStored int
	p.OnCaptureProgress = func(stored, total int) { lastStored = stored }

	stored, err := p.Capture(context.Background(), 7)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if stored != 5 {
		t.Fatalf("stored = %d, want 5", stored)
	}
	if lastStored != 5 {
		t.Fatalf("last progress callback reported %d, want 5", lastStored)
	}
	if !cam.closed {
		t.Fatal("camera was not closed")
	}
}

func TestCaptureStopsOnQuit(t *testing.T) {
	cam := newFakeCam([][]image.Rectangle{oneFace(), oneFace(), oneFace()})
	cam.quitAt = 1
	p, dir, _ := testPipeline(t, cam, &fakeClassifier{})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})

	stored, err := p.Capture(context.Background(), 7)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if stored != 2 {
		t.Fatalf("stored = %d, want 2", stored)
	}
}

func TestCaptureUnknownUser(t *testing.T) {
	cam := newFakeCam(nil)
	p, _, _ := testPipeline(t, cam, &fakeClassifier{})

	if _, err := p.Capture(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestTrainEmptyVault(t *testing.T) {
	p, _, _ := testPipeline(t, newFakeCam(nil), &fakeClassifier{})

	if _, err := p.Train(context.Background()); !errors.Is(err, lbph.ErrEmptyDataset) {
		t.Fatalf("err = %v, want %v", err, lbph.ErrEmptyDataset)
	}
}

func TestCaptureThenTrain(t *testing.T) {
	cam := newFakeCam([][]image.Rectangle{oneFace(), oneFace(), oneFace(), oneFace(), oneFace()})
	p, dir, _ := testPipeline(t, cam, &fakeClassifier{})
	dir.AddUser(store.User{ID: 7, Name: "Ana Pérez"})

	stored, err := p.Capture(context.Background(), 7)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	report, err := p.Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if report.Samples != stored {
		t.Fatalf("trained on %d samples, want %d", report.Samples, stored)
	}
	if report.Classes != 1 {
		t.Fatalf("classes = %d, want 1", report.Classes)
	}

	model, err := lbph.LoadModel(p.Config.Model.Path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if model.Classes() != 1 {
		t.Fatalf("persisted model classes = %d, want 1", model.Classes())
	}
}
