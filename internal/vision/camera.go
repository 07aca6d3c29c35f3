package vision

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"gocv.io/x/gocv"

	"github.com/pcastillom/presencia/internal/config"
)

// Well-known install locations of the OpenCV Haar cascade data, probed
// when no explicit cascade path is configured.
var cascadeSearchPaths = []string{
	"haarcascade_frontalface_default.xml",
	"/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/usr/local/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/opt/homebrew/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
}

// Camera implements Source and Locator on a physical device. It owns the
// capture handle, the Haar cascade and the preview window; Close releases
// all three on every exit path.
type Camera struct {
	capture  *gocv.VideoCapture
	cascade  gocv.CascadeClassifier
	window   *gocv.Window
	frame    gocv.Mat // last color frame, annotated by Present
	gray     gocv.Mat
	detector config.DetectorConfig
}

// OpenCamera opens the configured device and loads the frontal-face
// cascade. A device that cannot be opened yields ErrDeviceUnavailable.
func OpenCamera(cfg config.CameraConfig, det config.DetectorConfig, windowTitle string) (*Camera, error) {
	capture, err := gocv.VideoCaptureDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceUnavailable, cfg.Device, err)
	}

	cascade := gocv.NewCascadeClassifier()
	if !loadCascade(&cascade, cfg.CascadePath) {
		capture.Close()
		cascade.Close()
		return nil, fmt.Errorf("loading frontal-face cascade (set PRESENCIA_CASCADE_FILE)")
	}

	return &Camera{
		capture:  capture,
		cascade:  cascade,
		window:   gocv.NewWindow(windowTitle),
		frame:    gocv.NewMat(),
		gray:     gocv.NewMat(),
		detector: det,
	}, nil
}

func loadCascade(cascade *gocv.CascadeClassifier, explicit string) bool {
	if explicit != "" {
		return cascade.Load(explicit)
	}
	for _, path := range cascadeSearchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if cascade.Load(path) {
			return true
		}
	}
	return false
}

// Next reads one frame and returns its grayscale copy. A failed read is
// end-of-stream, not an error the caller should propagate.
func (c *Camera) Next() (*image.Gray, error) {
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, io.EOF
	}

	gocv.CvtColor(c.frame, &c.gray, gocv.ColorBGRToGray)
	img, err := c.gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected frame format %T", img)
	}
	return gray, nil
}

// Locate runs the Haar detector with the fixed deployment parameters.
func (c *Camera) Locate(_ *image.Gray) []image.Rectangle {
	minSize := image.Pt(c.detector.MinSize, c.detector.MinSize)
	return c.cascade.DetectMultiScaleWithParams(
		c.gray,
		c.detector.ScaleFactor,
		c.detector.MinNeighbors,
		0,
		minSize,
		image.Pt(0, 0),
	)
}

// Present draws the overlays on the last color frame, shows the window,
// and reports whether the operator asked to stop ('q' or window closed).
func (c *Camera) Present(overlays []Overlay, banner Banner) (bool, error) {
	for _, o := range overlays {
		tone := toneColor(o.Tone)
		gocv.Rectangle(&c.frame, o.Box, tone, 2)
		gocv.PutText(&c.frame, o.Caption,
			image.Pt(o.Box.Min.X, o.Box.Min.Y-10),
			gocv.FontHersheySimplex, 0.8, tone, 2)

		if o.Progress > 0 {
			// Progress bar under the face box: gray track, tone-colored fill.
			track := image.Rect(o.Box.Min.X, o.Box.Max.Y+5, o.Box.Max.X, o.Box.Max.Y+15)
			gocv.Rectangle(&c.frame, track, color.RGBA{R: 200, G: 200, B: 200, A: 0}, -1)
			fill := track
			fill.Max.X = track.Min.X + int(float64(track.Dx())*min(o.Progress, 1))
			gocv.Rectangle(&c.frame, fill, toneColor(ToneGood), -1)
		}
	}
	if banner.Text != "" {
		gocv.PutText(&c.frame, banner.Text, image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.7, toneColor(ToneNeutral), 2)
	}

	c.window.IMShow(c.frame)

	if key := c.window.WaitKey(1); key == 'q' {
		return true, nil
	}
	if c.window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		return true, nil
	}
	return false, nil
}

// Close releases the device, the cascade and the preview window.
func (c *Camera) Close() error {
	var first error
	for _, closer := range []func() error{
		c.capture.Close,
		c.cascade.Close,
		c.window.Close,
		c.frame.Close,
		c.gray.Close,
	} {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func toneColor(t Tone) color.RGBA {
	switch t {
	case ToneGood:
		return color.RGBA{G: 255, A: 0}
	case ToneWarn:
		return color.RGBA{R: 255, G: 255, A: 0}
	case ToneInfo:
		return color.RGBA{G: 255, B: 255, A: 0}
	case ToneBad:
		return color.RGBA{R: 255, A: 0}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 0}
	}
}
