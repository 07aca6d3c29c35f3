// Package lbph implements a Local Binary Pattern Histogram face
// classifier. Crops are normalized to a fixed size, encoded as a spatial
// grid of LBP histograms, and classified by nearest neighbor under
// chi-square distance. Lower distance means a more confident match.
package lbph

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

const (
	// faceSize is the side of the normalized crop.
	faceSize = 100
	// gridSize is the number of histogram cells per axis.
	gridSize = 8
	// histBins is the number of LBP codes per cell histogram.
	histBins = 256
)

// ErrEmptyDataset is returned when training is attempted with no samples.
// A model with zero classes would classify everything as nothing, so
// training fails fast instead.
var ErrEmptyDataset = errors.New("lbph: no training samples")

// Model is a trained classifier: one labeled histogram per training
// sample. Prediction is a nearest-neighbor scan, which is exactly how the
// LBPH family works — the "model" is the labeled reference set.
type Model struct {
	Labels     []int
	Histograms [][]float64
}

// Train fits a model over all labeled samples. Deterministic: the same
// samples in the same order always produce the same model.
func Train(images []*image.Gray, labels []int) (*Model, error) {
	if len(images) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(images) != len(labels) {
		return nil, errors.New("lbph: images and labels length mismatch")
	}

	m := &Model{
		Labels:     make([]int, len(images)),
		Histograms: make([][]float64, len(images)),
	}
	copy(m.Labels, labels)
	for i, img := range images {
		m.Histograms[i] = histogram(img)
	}
	return m, nil
}

// Predict classifies a face crop and returns the best label with its
// chi-square distance. With an empty model the distance is +Inf-like
// large and the label -1; callers gate on their confidence threshold.
func (m *Model) Predict(crop *image.Gray) (label int, distance float64) {
	h := histogram(crop)

	label = -1
	distance = 1e18
	for i, ref := range m.Histograms {
		if d := chiSquare(h, ref); d < distance {
			distance = d
			label = m.Labels[i]
		}
	}
	return label, distance
}

// Classes returns the number of distinct labels in the model.
func (m *Model) Classes() int {
	seen := make(map[int]struct{}, len(m.Labels))
	for _, l := range m.Labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// histogram computes the spatial LBP histogram of a crop: resize to
// faceSize², LBP-code every interior pixel, then histogram the codes per
// grid cell with each cell normalized to unit mass.
func histogram(crop *image.Gray) []float64 {
	img := normalize(crop)

	hist := make([]float64, gridSize*gridSize*histBins)
	counts := make([]float64, gridSize*gridSize)

	for y := 1; y < faceSize-1; y++ {
		for x := 1; x < faceSize-1; x++ {
			code := lbpCode(img, x, y)
			cell := (y*gridSize/faceSize)*gridSize + x*gridSize/faceSize
			hist[cell*histBins+int(code)]++
			counts[cell]++
		}
	}

	for cell, n := range counts {
		if n == 0 {
			continue
		}
		for b := cell * histBins; b < (cell+1)*histBins; b++ {
			hist[b] /= n
		}
	}
	return hist
}

// lbpCode computes the classic 3x3 LBP code for the pixel at (x, y):
// each neighbor contributes a bit when it is at least as bright as the
// center, clockwise from the top-left corner.
func lbpCode(img *image.Gray, x, y int) uint8 {
	c := img.GrayAt(x, y).Y

	var code uint8
	neighbors := [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{1, 0}, {1, 1}, {0, 1},
		{-1, 1}, {-1, 0},
	}
	for i, n := range neighbors {
		if img.GrayAt(x+n[0], y+n[1]).Y >= c {
			code |= 1 << (7 - i)
		}
	}
	return code
}

// chiSquare is the symmetric chi-square distance between two histograms.
func chiSquare(a, b []float64) float64 {
	var d float64
	for i := range a {
		if s := a[i] + b[i]; s > 0 {
			diff := a[i] - b[i]
			d += diff * diff / s
		}
	}
	return d
}

// normalize scales a crop to the fixed classifier input size.
func normalize(crop *image.Gray) *image.Gray {
	bounds := crop.Bounds()
	if bounds.Dx() == faceSize && bounds.Dy() == faceSize {
		return crop
	}
	dst := image.NewGray(image.Rect(0, 0, faceSize, faceSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), crop, bounds, draw.Src, nil)
	return dst
}
