package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pcastillom/presencia/internal/store"
	"github.com/pcastillom/presencia/internal/vision"
)

// Recognize resolves the session's event, loads the model, and runs the
// recognition loop until the operator quits or the stream ends. Event
// resolution failures surface before any camera resource is acquired.
func (p *Pipeline) Recognize(ctx context.Context, eventID int) error {
	event, err := p.ResolveEvent(ctx, eventID)
	if err != nil {
		return err
	}

	classifier, err := p.LoadClassifier()
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	src, loc, err := p.OpenSource("presencia - recognition (press q to quit)")
	if err != nil {
		return err
	}
	defer src.Close()

	runID := uuid.NewString()
	log := p.Log.With().Str("run", runID).Int("event", event.ID).Logger()
	log.Info().Str("event_name", event.Name).Msg("recognition session started")

	threshold := p.Config.Recognizer.ConfidenceThreshold
	window := p.Config.Recognizer.ConfirmationWindow
	names := map[int]string{}

	var state State
	for ctx.Err() == nil {
		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("frame read failed, stopping recognition")
			break
		}

		faces := loc.Locate(frame)
		if len(faces) == 0 {
			// Confirmation does not survive face loss, even for one frame.
			state = State{}
		}

		var overlays []vision.Overlay
		for _, box := range faces {
			label, distance := classifier.Predict(vision.Crop(frame, box))

			obs := Observation{Match: distance < threshold, Label: label}
			if obs.Match {
				obs.Duplicate, err = p.Ledger.Exists(ctx, label, event.ID)
				if err != nil {
					return fmt.Errorf("checking attendance: %w", err)
				}
			}

			var out Outcome
			state, out = Advance(state, obs, p.Now(), window)

			overlay := vision.Overlay{Box: box}
			switch out.Verdict {
			case VerdictUnknown:
				overlay.Caption = "Unknown"
				overlay.Tone = vision.ToneBad
			case VerdictAlreadyRegistered:
				overlay.Caption = p.userName(ctx, names, label) + " already registered"
				overlay.Tone = vision.ToneWarn
			case VerdictRecognizing:
				overlay.Caption = "Recognizing " + p.userName(ctx, names, label)
				overlay.Tone = vision.ToneInfo
			case VerdictConfirming:
				overlay.Caption = "Confirming " + p.userName(ctx, names, label) + "..."
				overlay.Tone = vision.ToneInfo
				overlay.Progress = out.Progress
			case VerdictCommit:
				overlay, err = p.commit(ctx, log, names, label, event)
				if err != nil {
					return err
				}
				overlay.Box = box
			}
			overlays = append(overlays, overlay)
		}

		quit, err := src.Present(overlays, vision.Banner{})
		if err != nil {
			log.Warn().Err(err).Msg("preview failed, stopping recognition")
			break
		}
		if quit {
			break
		}
	}

	log.Info().Msg("recognition session finished")
	return nil
}

// commit writes the attendance record after re-checking the duplicate
// condition. The re-check narrows (but cannot eliminate) the window
// between the confirmation gate and the insert; the storage backends
// additionally make the insert itself conditional.
func (p *Pipeline) commit(ctx context.Context, log zerolog.Logger, names map[int]string, userID int, event *store.Event) (vision.Overlay, error) {
	exists, err := p.Ledger.Exists(ctx, userID, event.ID)
	if err != nil {
		return vision.Overlay{}, fmt.Errorf("re-checking attendance: %w", err)
	}
	name := p.userName(ctx, names, userID)
	if exists {
		return vision.Overlay{Caption: name + " already registered", Tone: vision.ToneWarn}, nil
	}

	record, err := p.Ledger.Create(ctx, userID, event.ID)
	if err != nil {
		return vision.Overlay{}, fmt.Errorf("recording attendance: %w", err)
	}
	log.Info().
		Int("user", userID).
		Int("record", record.ID).
		Msg("attendance recorded")
	return vision.Overlay{Caption: name + " registered", Tone: vision.ToneGood}, nil
}

// userName resolves and caches a display name; unknown ids fall back to
// the numeric label so rendering never blocks on a directory gap.
func (p *Pipeline) userName(ctx context.Context, cache map[int]string, id int) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := fmt.Sprintf("user %d", id)
	if u, err := p.Directory.UserByID(ctx, id); err == nil {
		name = u.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		p.Log.Warn().Err(err).Int("user", id).Msg("directory lookup failed")
	}
	cache[id] = name
	return name
}
