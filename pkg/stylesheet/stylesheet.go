// Package stylesheet turns a packed sprite layout into CSS rules.
//
// A generated sheet contains, in order:
//
//  1. a prologue rule for ".{ns}" that sets the sprite as background image,
//  2. one fallback rule ".{ns}-{w}" per width of the DEFAULT icon, ascending,
//  3. one rule per packed position, in packer order.
//
// A position whose key survives a duplicate group gets a comma-joined
// selector list covering the survivor and every member, so member keys stay
// addressable although they have no pixels of their own.
//
// Selectors are lower-case. Extension characters that are not valid in a CSS
// class name, such as the "+" of ".c++", are backslash-escaped.
//
// Coordinates print as negative pixel offsets; an offset of exactly 0 prints
// as a bare "0".
package stylesheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/camalot/fyles/pkg/catalog"
	"github.com/camalot/fyles/pkg/pack"
)

// DefaultNamespace is the class prefix used when none is configured.
const DefaultNamespace = "fyles"

// DefaultImageURL returns the sprite URL used for namespace ns when none is
// configured.
func DefaultImageURL(ns string) string {
	return "../images/" + ns + ".png"
}

// lower folds s to lower case. A Caser holds state, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// escapeIdent escapes the characters of s that cannot appear unescaped in a
// CSS identifier.
func escapeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 0x80, r == '-', r == '_',
			'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Rule is one CSS rule addressing a square sprite region.
type Rule struct {
	Selectors []string
	Keys      []catalog.Key // empty for fallback rules
	X, Y      int
	Size      int
}

// Selector returns the comma-joined selector list.
func (r Rule) Selector() string {
	return strings.Join(r.Selectors, ", ")
}

// Sheet is a generated stylesheet.
type Sheet struct {
	Namespace string
	ImageURL  string
	Fallbacks []Rule
	Rules     []Rule

	compat bool
}

// Option configures generation.
type Option func(*Sheet)

// WithNamespace sets the class prefix.
func WithNamespace(ns string) Option { return func(s *Sheet) { s.Namespace = ns } }

// WithImageURL sets the url() of the prologue rule.
func WithImageURL(u string) Option { return func(s *Sheet) { s.ImageURL = u } }

// WithCompat selects the legacy byte layout: a blank line after the header
// block, main rules written back to back, and fallback offsets always
// carrying a px suffix.
func WithCompat() Option { return func(s *Sheet) { s.compat = true } }

// Selector returns the class selector for key under namespace ns. Characters
// of the extension that are not valid in a class name are escaped.
func Selector(ns string, k catalog.Key) string {
	return "." + lower(ns) + "-" + escapeIdent(lower(k.String()))
}

// Generate builds the stylesheet for a layout and the duplicate groups of the
// catalog it was packed from.
func Generate(l pack.Layout, groups []catalog.Group, opts ...Option) *Sheet {
	s := &Sheet{Namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(s)
	}
	if s.ImageURL == "" {
		s.ImageURL = DefaultImageURL(s.Namespace)
	}

	for _, w := range l.DefaultWidths() {
		p := l.Defaults[w]
		s.Fallbacks = append(s.Fallbacks, Rule{
			Selectors: []string{lower(fmt.Sprintf(".%s-%d", s.Namespace, w))},
			X:         p.X,
			Y:         p.Y,
			Size:      w,
		})
	}

	bySurvivor := make(map[catalog.Key]catalog.Group, len(groups))
	for _, g := range groups {
		bySurvivor[g.Survivor] = g
	}

	s.Rules = make([]Rule, 0, len(l.Positions))
	for _, p := range l.Positions {
		keys := []catalog.Key{p.Key}
		if g, ok := bySurvivor[p.Key]; ok {
			keys = g.Keys()
		}
		sels := make([]string, len(keys))
		for i, k := range keys {
			sels[i] = Selector(s.Namespace, k)
		}
		s.Rules = append(s.Rules, Rule{Selectors: sels, Keys: keys, X: p.X, Y: p.Y, Size: p.Width})
	}
	return s
}

// Coord formats a sprite offset as a background-position component.
func Coord(v int) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("%dpx", -v)
}

// WriteTo writes the stylesheet text to w.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, ".%s{background-image: url(%s); background-repeat: no-repeat; display: inline-block;}\n",
		lower(s.Namespace), s.ImageURL)

	for _, r := range s.Fallbacks {
		x, y := Coord(r.X), Coord(r.Y)
		if s.compat {
			x, y = fmt.Sprintf("%dpx", -r.X), fmt.Sprintf("%dpx", -r.Y)
		}
		fmt.Fprintf(&buf, "%s{height: %dpx; width: %dpx; background-position: %s %s;}\n",
			r.Selector(), r.Size, r.Size, x, y)
	}

	if s.compat {
		buf.WriteByte('\n')
	}

	for _, r := range s.Rules {
		fmt.Fprintf(&buf, "%s {background-position: %s %s; height: %dpx; width: %dpx;}",
			r.Selector(), Coord(r.X), Coord(r.Y), r.Size, r.Size)
		if !s.compat {
			buf.WriteByte('\n')
		}
	}
	return buf.WriteTo(w)
}

// Bytes returns the stylesheet text.
func (s *Sheet) Bytes() []byte {
	var buf bytes.Buffer
	s.WriteTo(&buf)
	return buf.Bytes()
}

// Len returns the number of rules, prologue excluded.
func (s *Sheet) Len() int {
	return len(s.Fallbacks) + len(s.Rules)
}
