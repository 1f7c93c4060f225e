// Package dir serves icons from a directory of image files.
//
// Files are named after the extension they depict, optionally followed by a
// size hint: "txt.ico", "txt.png", "txt-16.png" and "tar.gz-32.bmp" all
// belong to their extension ("txt" or "tar.gz"). Every file of an extension
// contributes its frames; [source.Pick] chooses among them per size class.
//
// The DEFAULT sentinel resolves to the files of the fallback name, "default"
// unless configured otherwise. The fallback name is not itself listed as an
// extension.
package dir

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/source"
)

// DefaultFallback is the base name of the DEFAULT icon files.
const DefaultFallback = "default"

var sizeSuffix = regexp.MustCompile(`-\d+$`)

// Option configures a Source.
type Option func(*Source)

// WithFallback sets the base name used for the DEFAULT sentinel.
func WithFallback(name string) Option { return func(s *Source) { s.fallback = strings.ToLower(name) } }

// WithResample enables downscaling of larger frames.
func WithResample(on bool) Option { return func(s *Source) { s.resample = on } }

// Source is an icon source and registry backed by one directory.
type Source struct {
	root     string
	fallback string
	resample bool
	loader   *source.Loader
	files    map[string][]string
}

// New scans root and returns a source over its image files.
func New(root string, opts ...Option) (*Source, error) {
	s := &Source{root: root, fallback: DefaultFallback, files: make(map[string][]string)}
	for _, opt := range opts {
		opt(s)
	}
	s.loader = source.NewLoader(s.resample)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading icon directory %q", root)
	}
	for _, e := range entries {
		if e.IsDir() || !source.Supported(e.Name()) {
			continue
		}
		base := Base(e.Name())
		if base == "" {
			continue
		}
		s.files[base] = append(s.files[base], filepath.Join(root, e.Name()))
	}
	for base := range s.files {
		slices.Sort(s.files[base])
	}
	return s, nil
}

// Base returns the extension name a file belongs to: the file name without
// its image extension and size hint, lower-cased.
func Base(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = sizeSuffix.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// Root returns the scanned directory.
func (s *Source) Root() string { return s.root }

// Extensions returns every extension with at least one file, sorted.
func (s *Source) Extensions(context.Context) ([]string, error) {
	out := make([]string, 0, len(s.files))
	for base := range s.files {
		if base == s.fallback {
			continue
		}
		out = append(out, "."+base)
	}
	slices.Sort(out)
	return out, nil
}

// Icon resolves ext at size.
func (s *Source) Icon(ctx context.Context, ext string, size icon.SizeClass) (*icon.Variant, error) {
	base := strings.ToLower(icon.KeyName(ext))
	if icon.IsDefault(ext) {
		base = s.fallback
	}
	paths, ok := s.files[base]
	if !ok {
		return nil, icon.ErrNotFound
	}
	return s.loader.Icon(ctx, paths, ext, size)
}

var (
	_ icon.Source   = (*Source)(nil)
	_ icon.Registry = (*Source)(nil)
)
