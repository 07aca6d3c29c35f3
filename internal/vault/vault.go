// Package vault is the encrypted on-disk store of labeled face-crop
// samples. Samples are JPEG-encoded in memory and only ever written as
// AES-GCM ciphertext, so the at-rest invariant holds even if the process
// dies mid-operation.
package vault

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/pcastillom/presencia/internal/logger"
)

const jpegQuality = 90

// Vault stores face samples under root, one directory per user named
// "{userID}_{slug}". The key file at keyPath seals every sample.
type Vault struct {
	root    string
	keyPath string
	log     *logger.Logger
}

func New(root, keyPath string, log *logger.Logger) *Vault {
	return &Vault{root: root, keyPath: keyPath, log: log}
}

// Writer appends samples for one user during a single capture session.
// Sample indexes come from the session counter, not from directory
// contents, so a session never races against partially written files.
type Writer struct {
	v    *Vault
	dir  string
	next int
}

// Begin prepares a capture session for the given user: the key file is
// created if absent and the per-user directory is ensured.
func (v *Vault) Begin(userID int, userName string) (*Writer, error) {
	if err := EnsureKey(v.keyPath); err != nil {
		return nil, err
	}

	dir := filepath.Join(v.root, dirName(userID, userName))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating user directory: %w", err)
	}

	return &Writer{v: v, dir: dir}, nil
}

// Store encodes the grayscale crop as JPEG, seals it and writes the
// ciphertext under the next sequential sample index.
func (w *Writer) Store(img *image.Gray) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding sample: %w", err)
	}

	key, err := loadKey(w.v.keyPath)
	if err != nil {
		return err
	}
	blob, err := seal(key, buf.Bytes())
	if err != nil {
		return err
	}

	name := fmt.Sprintf("face_%04d.jpg", w.next)
	if err := os.WriteFile(filepath.Join(w.dir, name), blob, 0o600); err != nil {
		return fmt.Errorf("writing sample: %w", err)
	}
	w.next++
	return nil
}

// Count returns how many samples this session has stored.
func (w *Writer) Count() int {
	return w.next
}

// LoadStats reports how a LoadAll run went; Skipped counts samples that
// failed to decrypt or decode and were left out of the result.
type LoadStats struct {
	Loaded  int
	Skipped int
}

// LoadAll decrypts and decodes every sample into memory and returns the
// images with their user-id labels. Files stay encrypted on disk the whole
// time. A sample that fails to decrypt or decode is logged and skipped;
// a directory whose name does not parse as "{id}_{name}" is an error.
func (v *Vault) LoadAll() ([]*image.Gray, []int, LoadStats, error) {
	var (
		images []*image.Gray
		labels []int
		stats  LoadStats
	)

	entries, err := os.ReadDir(v.root)
	if os.IsNotExist(err) {
		return nil, nil, stats, nil
	}
	if err != nil {
		return nil, nil, stats, fmt.Errorf("reading dataset root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label, err := parseLabel(entry.Name())
		if err != nil {
			return nil, nil, stats, err
		}

		dir := filepath.Join(v.root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("reading user directory: %w", err)
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}
			path := filepath.Join(dir, f.Name())
			img, err := v.loadSample(path)
			if err != nil {
				// A corrupt or tampered sample aborts only itself,
				// not the whole training run.
				v.log.Warn().Err(err).Str("sample", path).Msg("skipping unreadable sample")
				stats.Skipped++
				continue
			}
			images = append(images, img)
			labels = append(labels, label)
			stats.Loaded++
		}
	}

	return images, labels, stats, nil
}

func (v *Vault) loadSample(path string) (*image.Gray, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample: %w", err)
	}

	key, err := loadKey(v.keyPath)
	if err != nil {
		return nil, err
	}
	plaintext, err := open(key, blob)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(plaintext))
	if err != nil {
		return nil, fmt.Errorf("decoding sample: %w", err)
	}
	return toGray(img), nil
}

// toGray returns img as *image.Gray, converting only when the decoder
// produced some other color model.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}
