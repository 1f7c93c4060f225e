// Package catalog stores extracted icons keyed by (extension, width) and
// resolves pixel-identical icons into duplicate groups.
//
// # Lifecycle
//
// A [Catalog] is filled during extraction with [Catalog.Add] and sealed with
// [Catalog.Finalize]. Finalize runs a two-pass resolution: it first groups
// every key by [Hash], then picks the earliest-inserted key of each group as
// the survivor. Members are removed from the active set and recorded on their
// [Group]; no artifact is ever produced for a member key.
//
// Keys belonging to the DEFAULT sentinel never take part in grouping, so a
// DEFAULT icon that happens to match another icon stays a separate entry.
//
// After Finalize the catalog is read-only.
package catalog

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/camalot/fyles/pkg/icon"
)

// ErrFinalized is returned by Add once the catalog has been finalized.
var ErrFinalized = errors.New("catalog is finalized")

// Key identifies one stored icon. Extension carries no leading dot.
type Key struct {
	Extension string
	Width     int
}

// KeyFor builds the key for an extension (with or without its leading dot).
func KeyFor(ext string, width int) Key {
	return Key{Extension: icon.KeyName(ext), Width: width}
}

// String returns the "ext-width" form used for selectors and file names.
func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Extension, k.Width)
}

// IsDefault reports whether k belongs to the DEFAULT sentinel.
func (k Key) IsDefault() bool {
	return icon.IsDefault(k.Extension)
}

// Compare orders keys by extension, then width.
func (k Key) Compare(o Key) int {
	if c := strings.Compare(k.Extension, o.Extension); c != 0 {
		return c
	}
	return k.Width - o.Width
}

// Entry is one stored icon. Entries are never mutated after insertion.
type Entry struct {
	Key   Key
	Hash  string
	Width int
	Image *image.NRGBA

	seq int
}

// Seq returns the insertion sequence number of the entry.
func (e *Entry) Seq() int { return e.seq }

// Group is a set of keys sharing one content hash.
type Group struct {
	Hash     string
	Survivor Key
	Members  []Key // insertion order, survivor excluded
}

// Keys returns the survivor followed by every member.
func (g Group) Keys() []Key {
	return append([]Key{g.Survivor}, g.Members...)
}

// Catalog is the per-run store of extracted icons.
// It is not safe for concurrent use.
type Catalog struct {
	entries   map[Key]*Entry
	order     []Key
	removed   map[Key]bool
	groups    []Group
	bySurv    map[Key]int
	finalized bool
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries: make(map[Key]*Entry),
		removed: make(map[Key]bool),
		bySurv:  make(map[Key]int),
	}
}

// Add stores img under key if the key is new.
//
// It returns false without error when the key already exists, so repeated
// extraction of the same pair is a no-op. Images that cannot be hashed fail
// with ENCODING_FAILURE and leave the catalog unchanged.
func (c *Catalog) Add(key Key, img image.Image) (bool, error) {
	if c.finalized {
		return false, ErrFinalized
	}
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	hash, canon, err := Hash(img)
	if err != nil {
		return false, err
	}
	if w := canon.Rect.Dx(); w != key.Width {
		return false, fmt.Errorf("key %s does not match image width %d", key, w)
	}
	c.entries[key] = &Entry{
		Key:   key,
		Hash:  hash,
		Width: canon.Rect.Dx(),
		Image: canon,
		seq:   len(c.order),
	}
	c.order = append(c.order, key)
	return true, nil
}

// Has reports whether key is in the active set.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.entries[key]
	return ok && !c.removed[key]
}

// Entry returns the active entry for key.
func (c *Catalog) Entry(key Key) (*Entry, bool) {
	e, ok := c.entries[key]
	if !ok || c.removed[key] {
		return nil, false
	}
	return e, true
}

// Len returns the number of active entries.
func (c *Catalog) Len() int {
	return len(c.order) - len(c.removed)
}

// Entries returns the active entries in insertion order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, c.Len())
	for _, k := range c.order {
		if !c.removed[k] {
			out = append(out, c.entries[k])
		}
	}
	return out
}

// Keys returns the active keys in insertion order.
func (c *Catalog) Keys() []Key {
	out := make([]Key, 0, c.Len())
	for _, k := range c.order {
		if !c.removed[k] {
			out = append(out, k)
		}
	}
	return out
}

// Widths returns the distinct widths of the active entries, ascending.
func (c *Catalog) Widths() []int {
	seen := make(map[int]bool)
	var out []int
	for _, k := range c.order {
		if c.removed[k] || seen[k.Width] {
			continue
		}
		seen[k.Width] = true
		out = append(out, k.Width)
	}
	slices.Sort(out)
	return out
}

// Finalize resolves duplicate groups and seals the catalog.
//
// Groups are returned ordered by survivor insertion. Calling Finalize again
// returns the same groups without further changes.
func (c *Catalog) Finalize() []Group {
	if c.finalized {
		return c.Groups()
	}
	c.finalized = true

	byHash := make(map[string][]Key)
	var hashes []string
	for _, k := range c.order {
		if k.IsDefault() {
			continue
		}
		h := c.entries[k].Hash
		if _, ok := byHash[h]; !ok {
			hashes = append(hashes, h)
		}
		byHash[h] = append(byHash[h], k)
	}

	for _, h := range hashes {
		keys := byHash[h]
		if len(keys) < 2 {
			continue
		}
		g := Group{Hash: h, Survivor: keys[0], Members: slices.Clone(keys[1:])}
		for _, m := range g.Members {
			c.removed[m] = true
		}
		c.bySurv[g.Survivor] = len(c.groups)
		c.groups = append(c.groups, g)
	}
	return c.Groups()
}

// Finalized reports whether Finalize has run.
func (c *Catalog) Finalized() bool {
	return c.finalized
}

// Groups returns the duplicate groups found by Finalize.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Hash: g.Hash, Survivor: g.Survivor, Members: slices.Clone(g.Members)}
	}
	return out
}

// GroupFor returns the group whose survivor is key.
func (c *Catalog) GroupFor(key Key) (Group, bool) {
	i, ok := c.bySurv[key]
	if !ok {
		return Group{}, false
	}
	g := c.groups[i]
	return Group{Hash: g.Hash, Survivor: g.Survivor, Members: slices.Clone(g.Members)}, true
}

// Members returns the number of keys removed as duplicate members.
func (c *Catalog) Members() int {
	return len(c.removed)
}
