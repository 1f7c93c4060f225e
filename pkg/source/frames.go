// Package source loads icon bitmaps from image files.
//
// It provides the frame loading and size selection shared by the concrete
// icon sources in [github.com/camalot/fyles/pkg/source/dir] and
// [github.com/camalot/fyles/pkg/source/manifest].
//
// # Formats
//
// ICO files contribute every frame they contain. PNG, GIF and BMP files
// contribute a single frame (the first frame for animated GIFs).
//
// # Size Selection
//
// For a size class with nominal width N, [Pick] returns the first N×N frame.
// Without one, and when resampling is enabled, the smallest square frame
// larger than N is downscaled with Lanczos3. Frames are never upscaled.
package source

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"

	"github.com/camalot/fyles/pkg/icon"
)

// Formats lists the supported file extensions, in lookup order.
var Formats = []string{".ico", ".png", ".gif", ".bmp"}

// Supported reports whether path has a supported image extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

// Decode reads every frame from r. format is the file extension of the data.
func Decode(r io.Reader, format string) ([]image.Image, error) {
	if strings.EqualFold(format, ".ico") {
		frames, err := ico.DecodeAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "decoding ico")
		}
		return frames, nil
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", strings.TrimPrefix(format, "."))
	}
	return []image.Image{img}, nil
}

// Load reads every frame of the image file at path.
func Load(path string) ([]image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading icon file %q", path)
	}
	frames, err := Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	return frames, nil
}

// Pick selects the frame for nominal width px.
func Pick(frames []image.Image, px int, resample bool) (image.Image, bool) {
	var larger image.Image
	for _, f := range frames {
		b := f.Bounds()
		if b.Dx() != b.Dy() || b.Empty() {
			continue
		}
		switch {
		case b.Dx() == px:
			return f, true
		case b.Dx() > px && (larger == nil || b.Dx() < larger.Bounds().Dx()):
			larger = f
		}
	}
	if !resample || larger == nil {
		return nil, false
	}
	return resize.Resize(uint(px), uint(px), larger, resize.Lanczos3), true
}

// Loader loads and caches frames for the lifetime of one run.
// It is not safe for concurrent use.
type Loader struct {
	Resample bool

	cache  map[string][]image.Image
	failed map[string]error
}

// NewLoader creates a loader.
func NewLoader(resample bool) *Loader {
	return &Loader{
		Resample: resample,
		cache:    make(map[string][]image.Image),
		failed:   make(map[string]error),
	}
}

// Frames returns the frames of path, reading the file at most once.
// A file that failed to load keeps failing with the same error.
func (l *Loader) Frames(path string) ([]image.Image, error) {
	if frames, ok := l.cache[path]; ok {
		return frames, nil
	}
	if err, ok := l.failed[path]; ok {
		return nil, err
	}
	frames, err := Load(path)
	if err != nil {
		l.failed[path] = err
		return nil, err
	}
	l.cache[path] = frames
	return frames, nil
}

// Icon resolves the variant of ext at size from the frames of paths, merged
// in order. It returns icon.ErrNotFound when no frame fits.
func (l *Loader) Icon(ctx context.Context, paths []string, ext string, size icon.SizeClass) (*icon.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var all []image.Image
	for _, p := range paths {
		frames, err := l.Frames(p)
		if err != nil {
			return nil, err
		}
		all = append(all, frames...)
	}
	img, ok := Pick(all, size.Pixels(), l.Resample)
	if !ok {
		return nil, icon.ErrNotFound
	}
	return icon.NewVariant(ext, size, img), nil
}
