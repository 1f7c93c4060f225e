// Package manifest serves icons listed in a TOML manifest.
//
// A manifest maps extensions to icon files explicitly:
//
//	default  = "unknown.ico"
//	resample = true
//
//	[[types]]
//	extension = ".txt"
//	icon      = "text.ico"
//
//	[[types]]
//	extension = ".log"
//	icon      = "text.ico"
//
// Relative icon paths resolve against the manifest's directory. Extensions
// are processed in file order; an extension listed twice contributes the
// frames of both files.
package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/source"
)

type file struct {
	Default  string `toml:"default"`
	Resample bool   `toml:"resample"`
	Types    []struct {
		Extension string `toml:"extension"`
		Icon      string `toml:"icon"`
	} `toml:"types"`
}

// Manifest is an icon source and registry backed by a manifest file.
type Manifest struct {
	Path     string
	Resample bool

	order    []string
	files    map[string][]string
	fallback []string
	loader   *source.Loader
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read manifest %s", path)
	}
	return Parse(path, data)
}

// Parse parses manifest data. path locates the manifest for resolving
// relative icon paths.
func Parse(path string, data []byte) (*Manifest, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse manifest %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "manifest %s: unknown keys: %v", path, keys)
	}

	base := filepath.Dir(path)
	m := &Manifest{
		Path:     path,
		Resample: f.Resample,
		files:    make(map[string][]string),
		loader:   source.NewLoader(f.Resample),
	}
	if f.Default != "" {
		m.fallback = []string{resolve(base, f.Default)}
	}
	for i, t := range f.Types {
		ext := strings.ToLower(strings.TrimSpace(t.Extension))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if err := errors.ValidateExtension(ext); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest %s: types[%d]", path, i)
		}
		if icon.IsDefault(ext) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "manifest %s: types[%d]: reserved extension %s", path, i, ext)
		}
		if t.Icon == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "manifest %s: types[%d]: icon is required", path, i)
		}
		if _, ok := m.files[ext]; !ok {
			m.order = append(m.order, ext)
		}
		m.files[ext] = append(m.files[ext], resolve(base, t.Icon))
	}
	return m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Extensions returns the listed extensions in file order.
func (m *Manifest) Extensions(context.Context) ([]string, error) {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

// Icon resolves ext at size.
func (m *Manifest) Icon(ctx context.Context, ext string, size icon.SizeClass) (*icon.Variant, error) {
	paths := m.files[strings.ToLower(ext)]
	if icon.IsDefault(ext) {
		paths = m.fallback
	}
	if len(paths) == 0 {
		return nil, icon.ErrNotFound
	}
	return m.loader.Icon(ctx, paths, ext, size)
}

var (
	_ icon.Source   = (*Manifest)(nil)
	_ icon.Registry = (*Manifest)(nil)
)
