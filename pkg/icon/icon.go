// Package icon defines the shared vocabulary of the sprite pipeline: icon size
// classes, extracted icon variants, and the two collaborator interfaces that
// feed the pipeline ([Source] and [Registry]).
//
// # Size Classes
//
// A [SizeClass] is a resolution bucket requested from a Source. The classes are
// always visited in the fixed order given by [SizeClasses]:
//
//	Large (32px), Small (16px), ExtraLarge (48px), SysSmall (16px), Jumbo (256px)
//
// Two classes may resolve to the same pixel width; the catalog treats the
// second one as a repeat of the first.
//
// # DEFAULT Sentinel
//
// Every run processes one synthetic extension, [DefaultExtension], after all
// registered extensions. It stands for the "unknown file type" icon and backs
// the per-size fallback rules in the stylesheet.
package icon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrNotFound is returned by a Source when it has no icon for the requested
// extension and size class.
var ErrNotFound = errors.New("icon not found")

// DefaultName is the extension key of the DEFAULT sentinel (no leading dot).
const DefaultName = "___DEFAULT___"

// DefaultExtension is the synthetic extension appended to every run.
const DefaultExtension = "." + DefaultName

// IsDefault reports whether ext (with or without a leading dot) names the
// DEFAULT sentinel.
func IsDefault(ext string) bool {
	return KeyName(ext) == DefaultName
}

// KeyName returns the extension without its leading dot.
func KeyName(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

// SizeClass is an icon resolution bucket.
type SizeClass int

// Size classes, in the order a Source is queried.
const (
	Large SizeClass = iota
	Small
	ExtraLarge
	SysSmall
	Jumbo
)

// SizeClasses lists every size class in query order.
var SizeClasses = []SizeClass{Large, Small, ExtraLarge, SysSmall, Jumbo}

var sizeNames = map[SizeClass]string{
	Large:      "large",
	Small:      "small",
	ExtraLarge: "extralarge",
	SysSmall:   "syssmall",
	Jumbo:      "jumbo",
}

var sizePixels = map[SizeClass]int{
	Large:      32,
	Small:      16,
	ExtraLarge: 48,
	SysSmall:   16,
	Jumbo:      256,
}

// String returns the lower-case name of the size class.
func (s SizeClass) String() string {
	if n, ok := sizeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SizeClass(%d)", int(s))
}

// Pixels returns the nominal edge length of icons in this class.
func (s SizeClass) Pixels() int {
	return sizePixels[s]
}

// ParseSizeClass parses a size class name as returned by String.
func ParseSizeClass(name string) (SizeClass, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range SizeClasses {
		if sizeNames[s] == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown size class: %q", name)
}

// Variant is one icon bitmap for an extension at a size class. Variants are
// transient: produced by a Source and consumed immediately by the catalog.
type Variant struct {
	Extension string
	Size      SizeClass
	Width     int
	Height    int
	Image     image.Image
}

// NewVariant wraps img, taking Width and Height from its bounds.
func NewVariant(ext string, size SizeClass, img image.Image) *Variant {
	b := img.Bounds()
	return &Variant{
		Extension: ext,
		Size:      size,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Image:     img,
	}
}

// Valid reports whether the variant is a non-empty square.
func (v *Variant) Valid() bool {
	return v != nil && v.Image != nil && v.Width > 0 && v.Width == v.Height
}

// Source resolves icon bitmaps. Implementations must be idempotent: the same
// extension and size class always yield bit-identical pixels.
type Source interface {
	// Icon returns the icon for ext at size, or ErrNotFound.
	Icon(ctx context.Context, ext string, size SizeClass) (*Variant, error)
}

// Registry enumerates the extensions to process.
type Registry interface {
	// Extensions returns extensions in processing order, each starting with ".".
	Extensions(ctx context.Context) ([]string, error)
}

// StaticRegistry is a Registry over a fixed list of extensions.
type StaticRegistry []string

// Extensions returns a copy of the list.
func (r StaticRegistry) Extensions(context.Context) ([]string, error) {
	out := make([]string, len(r))
	copy(out, r)
	return out, nil
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, ext string, size SizeClass) (*Variant, error)

// Icon calls f.
func (f SourceFunc) Icon(ctx context.Context, ext string, size SizeClass) (*Variant, error) {
	return f(ctx, ext, size)
}

var (
	_ Registry = StaticRegistry(nil)
	_ Source   = SourceFunc(nil)
)
