package session

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pcastillom/presencia/internal/vision"
)

// Capture runs one capture session for the given user: every detected
// face is cropped and stored encrypted in the vault until the sample cap
// is reached or the operator quits. Returns how many samples were stored.
func (p *Pipeline) Capture(ctx context.Context, userID int) (int, error) {
	user, err := p.Directory.UserByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("looking up user %d: %w", userID, err)
	}

	writer, err := p.Vault.Begin(user.ID, user.Name)
	if err != nil {
		return 0, err
	}

	src, loc, err := p.OpenSource("presencia - capture (press q to stop)")
	if err != nil {
		return 0, err
	}
	defer src.Close()

	runID := uuid.NewString()
	limit := p.Config.Dataset.Cap
	log := p.Log.With().Str("run", runID).Int("user", user.ID).Logger()
	log.Info().Int("cap", limit).Msg("capture session started")

	for writer.Count() < limit && ctx.Err() == nil {
		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A failed read ends the session; the device is released by
			// the deferred Close and the samples so far are kept.
			log.Warn().Err(err).Msg("frame read failed, stopping capture")
			break
		}

		var overlays []vision.Overlay
		for _, box := range loc.Locate(frame) {
			if writer.Count() >= limit {
				break
			}
			if err := writer.Store(vision.Crop(frame, box)); err != nil {
				return writer.Count(), err
			}
			overlays = append(overlays, vision.Overlay{
				Box:     box,
				Caption: "captured",
				Tone:    vision.ToneGood,
			})
			if p.OnCaptureProgress != nil {
				p.OnCaptureProgress(writer.Count(), limit)
			}
		}

		banner := vision.Banner{
			Text: fmt.Sprintf("Progress: %d%%", writer.Count()*100/limit),
		}
		quit, err := src.Present(overlays, banner)
		if err != nil {
			log.Warn().Err(err).Msg("preview failed, stopping capture")
			break
		}
		if quit {
			log.Info().Msg("capture stopped by operator")
			break
		}
	}

	log.Info().Int("stored", writer.Count()).Msg("capture session finished")
	return writer.Count(), nil
}
