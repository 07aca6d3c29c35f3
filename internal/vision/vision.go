// Package vision wraps the camera device and the frontal-face detector.
// The Source and Locator interfaces keep the capture and recognition
// loops testable without hardware; Camera is the production
// implementation on top of OpenCV.
package vision

import (
	"errors"
	"image"
)

// ErrDeviceUnavailable reports a camera that could not be opened.
var ErrDeviceUnavailable = errors.New("vision: camera device unavailable")

// Tone selects the overlay color family, mirroring the status colors of
// the preview window.
type Tone int

const (
	ToneNeutral Tone = iota // white
	ToneGood                // green
	ToneWarn                // yellow
	ToneInfo                // cyan
	ToneBad                 // red
)

// Overlay is one annotation drawn onto the live preview: a face box with
// a caption and, optionally, a progress bar underneath (Progress in
// (0, 1]; zero draws no bar).
type Overlay struct {
	Box      image.Rectangle
	Caption  string
	Tone     Tone
	Progress float64
}

// Banner is a status line drawn in the window corner.
type Banner struct {
	Text string
}

// Source produces grayscale frames and presents annotated previews.
// Next returns io.EOF at end of stream. Present reports quit=true when
// the operator pressed the quit key or closed the window; every loop
// must honor that.
type Source interface {
	Next() (*image.Gray, error)
	Present(overlays []Overlay, banner Banner) (quit bool, err error)
	Close() error
}

// Locator finds face bounding boxes in a grayscale frame using a
// fixed-parameter frontal-face detector.
type Locator interface {
	Locate(frame *image.Gray) []image.Rectangle
}

// Crop extracts a face region from a frame. The returned image shares no
// pixels with the frame, so callers may keep it after the next read.
func Crop(frame *image.Gray, box image.Rectangle) *image.Gray {
	box = box.Intersect(frame.Bounds())
	crop := image.NewGray(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			crop.SetGray(x, y, frame.GrayAt(box.Min.X+x, box.Min.Y+y))
		}
	}
	return crop
}
