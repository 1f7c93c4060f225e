// Package sink persists the artifacts of a run: the sprite image, the
// stylesheet text, and optionally one PNG per surviving icon.
//
// [FileSink] writes every artifact to a temporary file next to its target
// and renames the files into place only after all of them were written.
// Targets that cannot be replaced abort the run before any file moves, and a
// failed rename restores the files already replaced, so a failed run never
// leaves a sprite paired with a stale stylesheet. Any
// failure is reported as OUTPUT_WRITE_FAILURE.
//
// [MemorySink] keeps the artifacts in memory.
package sink

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"

	"github.com/camalot/fyles/pkg/errors"
)

// Icon is one surviving catalog entry, exported under Name + ".png".
type Icon struct {
	Name  string
	Image image.Image
}

// Artifacts are the outputs of one run.
type Artifacts struct {
	Sprite image.Image
	CSS    []byte
	Icons  []Icon
}

// Sink persists artifacts.
type Sink interface {
	Write(ctx context.Context, a Artifacts) error
}

// EncodePNG writes img as PNG. A positive colors value reduces the image to
// a palette of at most that many colors first.
func EncodePNG(w io.Writer, img image.Image, colors int) error {
	if colors > 0 {
		img = Quantize(img, colors)
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// Quantize reduces img to a paletted image with at most colors entries,
// one of which is reserved for full transparency.
func Quantize(img image.Image, colors int) *image.Paletted {
	colors = min(max(colors, 2), 256)
	q := quantize.MedianCutQuantizer{AddTransparent: true}
	pal := q.Quantize(make(color.Palette, 0, colors), img)
	b := img.Bounds()
	out := image.NewPaletted(b, pal)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// FileSink writes artifacts to the local filesystem.
type FileSink struct {
	ImagePath string
	CSSPath   string
	IconsDir  string // empty disables per-icon export
	Palette   int    // 0 keeps full color
}

// FileOption configures a FileSink.
type FileOption func(*FileSink)

// WithIconsDir enables per-icon export into dir.
func WithIconsDir(dir string) FileOption { return func(s *FileSink) { s.IconsDir = dir } }

// WithPalette enables palette quantization of the sprite.
func WithPalette(colors int) FileOption { return func(s *FileSink) { s.Palette = colors } }

// NewFileSink creates a sink writing the sprite to imagePath and the
// stylesheet to cssPath.
func NewFileSink(imagePath, cssPath string, opts ...FileOption) *FileSink {
	s := &FileSink{ImagePath: imagePath, CSSPath: cssPath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pending struct {
	tmp, dst string
}

// Write encodes and persists a. Nothing is renamed into place unless every
// artifact was written successfully.
func (s *FileSink) Write(ctx context.Context, a Artifacts) error {
	if a.Sprite == nil {
		return errors.New(errors.ErrCodeOutputWrite, "no sprite to write")
	}

	var staged []pending
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p.tmp)
		}
	}

	var img bytes.Buffer
	if err := EncodePNG(&img, a.Sprite, s.Palette); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "encode sprite")
	}
	p, err := stage(s.ImagePath, img.Bytes())
	if err != nil {
		return err
	}
	staged = append(staged, p)

	p, err = stage(s.CSSPath, a.CSS)
	if err != nil {
		cleanup()
		return err
	}
	staged = append(staged, p)

	if s.IconsDir != "" {
		for _, ic := range a.Icons {
			if err := ctx.Err(); err != nil {
				cleanup()
				return errors.Wrap(errors.ErrCodeOutputWrite, err, "export icons")
			}
			var buf bytes.Buffer
			if err := EncodePNG(&buf, ic.Image, 0); err != nil {
				cleanup()
				return errors.Wrap(errors.ErrCodeOutputWrite, err, "encode icon %s", ic.Name)
			}
			p, err := stage(filepath.Join(s.IconsDir, ic.Name+".png"), buf.Bytes())
			if err != nil {
				cleanup()
				return err
			}
			staged = append(staged, p)
		}
	}

	if err := commit(staged); err != nil {
		cleanup()
		return err
	}
	return nil
}

// commit renames every staged file into place. Destinations that cannot be
// replaced are rejected before anything moves; a rename that fails anyway
// restores the targets committed so far from their backups.
func commit(staged []pending) error {
	for _, p := range staged {
		fi, err := os.Lstat(p.dst)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return errors.Wrap(errors.ErrCodeOutputWrite, err, "stat %s", p.dst)
		case !fi.Mode().IsRegular():
			return errors.New(errors.ErrCodeOutputWrite, "%s exists and is not a regular file", p.dst)
		}
	}

	type done struct {
		p      pending
		backup string
	}
	var committed []done
	rollback := func() {
		for i := len(committed) - 1; i >= 0; i-- {
			c := committed[i]
			if c.backup == "" {
				_ = os.Remove(c.p.dst)
				continue
			}
			_ = os.Rename(c.backup, c.p.dst)
		}
	}

	for _, p := range staged {
		backup := p.tmp + ".bak"
		if err := os.Rename(p.dst, backup); err != nil {
			if !os.IsNotExist(err) {
				rollback()
				return errors.Wrap(errors.ErrCodeOutputWrite, err, "back up %s", p.dst)
			}
			backup = ""
		}
		if err := os.Rename(p.tmp, p.dst); err != nil {
			if backup != "" {
				_ = os.Rename(backup, p.dst)
			}
			rollback()
			return errors.Wrap(errors.ErrCodeOutputWrite, err, "rename %s", p.dst)
		}
		committed = append(committed, done{p: p, backup: backup})
	}

	for _, c := range committed {
		if c.backup != "" {
			_ = os.Remove(c.backup)
		}
	}
	return nil
}

// stage writes data to a temporary file in the directory of dst.
func stage(dst string, data []byte) (pending, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pending{}, errors.Wrap(errors.ErrCodeOutputWrite, err, "create %s", dir)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return pending{}, errors.Wrap(errors.ErrCodeOutputWrite, err, "create %s", dst)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return pending{}, errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", dst)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return pending{}, errors.Wrap(errors.ErrCodeOutputWrite, err, "close %s", dst)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return pending{}, errors.Wrap(errors.ErrCodeOutputWrite, err, "chmod %s", dst)
	}
	return pending{tmp: f.Name(), dst: dst}, nil
}

// MemorySink keeps the last written artifacts.
type MemorySink struct {
	Artifacts Artifacts
	Writes    int
	Err       error // returned by Write when set
}

// Write stores a, or returns s.Err.
func (s *MemorySink) Write(_ context.Context, a Artifacts) error {
	if s.Err != nil {
		return s.Err
	}
	s.Artifacts = a
	s.Writes++
	return nil
}

// PNG returns the stored sprite encoded as PNG.
func (s *MemorySink) PNG() ([]byte, error) {
	if s.Artifacts.Sprite == nil {
		return nil, errors.New(errors.ErrCodeOutputWrite, "no sprite written")
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, s.Artifacts.Sprite, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	_ Sink = (*FileSink)(nil)
	_ Sink = (*MemorySink)(nil)
)
