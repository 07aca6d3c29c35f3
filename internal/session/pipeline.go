// Package session runs the capture and recognition loops: camera frames
// in, encrypted samples or attendance records out. The confirmation state
// machine lives in state.go as a pure function.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/lbph"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/store"
	"github.com/pcastillom/presencia/internal/vault"
	"github.com/pcastillom/presencia/internal/vision"
)

// Classifier maps a face crop to the best user id and its confidence
// distance (lower is more confident).
type Classifier interface {
	Predict(crop *image.Gray) (label int, distance float64)
}

// Pipeline wires the vault, the classifier and the store collaborators
// into the three blocking operations the CLI and HTTP surfaces invoke.
// The function fields default to the production implementations and are
// swapped by tests.
type Pipeline struct {
	Config    *config.Config
	Vault     *vault.Vault
	Directory store.Directory
	Ledger    store.Ledger
	Log       *logger.Logger

	// OpenSource acquires the camera and detector for one session.
	OpenSource func(windowTitle string) (vision.Source, vision.Locator, error)
	// LoadClassifier loads the persisted model artifact.
	LoadClassifier func() (Classifier, error)
	// Now supplies the confirmation clock.
	Now func() time.Time

	// OnCaptureProgress, when set, is called after every stored sample.
	OnCaptureProgress func(stored, total int)
}

// New builds a Pipeline with production defaults.
func New(cfg *config.Config, v *vault.Vault, dir store.Directory, led store.Ledger, log *logger.Logger) *Pipeline {
	p := &Pipeline{
		Config:    cfg,
		Vault:     v,
		Directory: dir,
		Ledger:    led,
		Log:       log,
		Now:       time.Now,
	}
	p.OpenSource = func(title string) (vision.Source, vision.Locator, error) {
		cam, err := vision.OpenCamera(cfg.Camera, cfg.Detector, title)
		if err != nil {
			return nil, nil, err
		}
		return cam, cam, nil
	}
	p.LoadClassifier = func() (Classifier, error) {
		return lbph.LoadModel(cfg.Model.Path)
	}
	return p
}

// TrainReport summarizes a training run.
type TrainReport struct {
	Samples int // samples the model was fitted on
	Skipped int // unreadable samples left out
	Classes int // distinct users in the model
}

// Train loads every vault sample, fits the classifier and atomically
// replaces the model artifact. Fails with lbph.ErrEmptyDataset when the
// vault holds nothing.
func (p *Pipeline) Train(ctx context.Context) (*TrainReport, error) {
	images, labels, stats, err := p.Vault.LoadAll()
	if err != nil {
		return nil, err
	}

	model, err := lbph.Train(images, labels)
	if err != nil {
		return nil, err
	}
	if err := model.Save(p.Config.Model.Path); err != nil {
		return nil, err
	}

	report := &TrainReport{
		Samples: stats.Loaded,
		Skipped: stats.Skipped,
		Classes: model.Classes(),
	}
	p.Log.Info().
		Int("samples", report.Samples).
		Int("skipped", report.Skipped).
		Int("classes", report.Classes).
		Str("artifact", p.Config.Model.Path).
		Msg("model trained")
	return report, nil
}

// ResolveEvent picks the session's event once, before any camera work:
// an explicit id must exist and be active; otherwise the most recent
// active event is used.
func (p *Pipeline) ResolveEvent(ctx context.Context, eventID int) (*store.Event, error) {
	if eventID != 0 {
		event, err := p.Directory.EventByID(ctx, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrEventNotFound, eventID)
		}
		if err != nil {
			return nil, err
		}
		if !event.Active {
			return nil, fmt.Errorf("%w: %q", ErrEventNotActive, event.Name)
		}
		return event, nil
	}

	event, err := p.Directory.ActiveEvent(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActiveEvent
	}
	return event, err
}
