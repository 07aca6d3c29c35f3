package vision

import (
	"image"
	"image/color"
	"testing"
)

func TestCropCopiesPixels(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 50, 50))
	frame.SetGray(12, 14, color.Gray{Y: 255})

	crop := Crop(frame, image.Rect(10, 10, 30, 30))
	if got := crop.Bounds(); got.Dx() != 20 || got.Dy() != 20 {
		t.Fatalf("crop bounds = %v, want 20x20", got)
	}
	if crop.GrayAt(2, 4).Y != 255 {
		t.Fatalf("crop pixel (2,4) = %d, want 255", crop.GrayAt(2, 4).Y)
	}

	// Mutating the frame must not change the crop.
	frame.SetGray(12, 14, color.Gray{})
	if crop.GrayAt(2, 4).Y != 255 {
		t.Fatal("crop shares pixels with the frame")
	}
}

func TestCropClampsToFrame(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 40, 40))

	crop := Crop(frame, image.Rect(30, 30, 60, 60))
	if got := crop.Bounds(); got.Dx() != 10 || got.Dy() != 10 {
		t.Fatalf("crop bounds = %v, want 10x10", got)
	}
}
