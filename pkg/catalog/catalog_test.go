package catalog

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/camalot/fyles/pkg/icon"
)

func solid(w int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, w))
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyFor(".txt", 32), "txt-32"},
		{KeyFor("tar.gz", 16), "tar.gz-16"},
		{KeyFor(icon.DefaultExtension, 48), "___DEFAULT___-48"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeyCompare(t *testing.T) {
	a := KeyFor(".a", 32)
	b := KeyFor(".b", 16)
	a16 := KeyFor(".a", 16)
	if a.Compare(b) >= 0 {
		t.Error("a-32 should sort before b-16")
	}
	if a16.Compare(a) >= 0 {
		t.Error("a-16 should sort before a-32")
	}
	if a.Compare(a) != 0 {
		t.Error("key should compare equal to itself")
	}
}

func TestAddIdempotent(t *testing.T) {
	c := New()
	k := KeyFor(".txt", 16)

	added, err := c.Add(k, solid(16, red))
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v", added, err)
	}
	added, err = c.Add(k, solid(16, blue))
	if err != nil {
		t.Fatalf("second Add error: %v", err)
	}
	if added {
		t.Error("second Add should be a no-op")
	}

	e, ok := c.Entry(k)
	if !ok {
		t.Fatal("entry missing")
	}
	want, _, _ := Hash(solid(16, red))
	if e.Hash != want {
		t.Error("second Add must not replace the first image")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestAddRejectsBadImages(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		key  Key
		img  image.Image
	}{
		{"non-square", KeyFor(".a", 16), image.NewNRGBA(image.Rect(0, 0, 16, 8))},
		{"empty", KeyFor(".b", 0), image.NewNRGBA(image.Rect(0, 0, 0, 0))},
		{"nil", KeyFor(".c", 16), nil},
		{"width mismatch", KeyFor(".d", 32), solid(16, red)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Add(tt.key, tt.img); err == nil {
				t.Error("Add should fail")
			}
			if c.Has(tt.key) {
				t.Error("failed Add must not store the key")
			}
		})
	}
}

func TestAddAfterFinalize(t *testing.T) {
	c := New()
	if c.Finalized() {
		t.Error("new catalog should not be finalized")
	}
	c.Finalize()
	if !c.Finalized() {
		t.Error("Finalized() = false after Finalize")
	}
	if _, err := c.Add(KeyFor(".txt", 16), solid(16, red)); !errors.Is(err, ErrFinalized) {
		t.Errorf("Add after Finalize error = %v, want ErrFinalized", err)
	}
}

func TestFinalizeGroups(t *testing.T) {
	c := New()
	txt := KeyFor(".txt", 32)
	ini := KeyFor(".ini", 32)
	log := KeyFor(".log", 32)
	exe := KeyFor(".exe", 32)

	for _, in := range []struct {
		k   Key
		col color.Color
	}{
		{txt, red}, {exe, green}, {ini, red}, {log, red},
	} {
		if _, err := c.Add(in.k, solid(32, in.col)); err != nil {
			t.Fatalf("Add(%s): %v", in.k, err)
		}
	}

	groups := c.Finalize()
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.Survivor != txt {
		t.Errorf("Survivor = %s, want %s", g.Survivor, txt)
	}
	if len(g.Members) != 2 || g.Members[0] != ini || g.Members[1] != log {
		t.Errorf("Members = %v, want [ini-32 log-32]", g.Members)
	}

	if c.Has(ini) || c.Has(log) {
		t.Error("members must leave the active set")
	}
	if !c.Has(txt) || !c.Has(exe) {
		t.Error("survivor and unique entries must stay active")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Members() != 2 {
		t.Errorf("Members() = %d, want 2", c.Members())
	}

	if got, ok := c.GroupFor(txt); !ok || got.Hash != g.Hash {
		t.Error("GroupFor(survivor) should return the group")
	}
	if _, ok := c.GroupFor(exe); ok {
		t.Error("GroupFor(unique) should report no group")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	c := New()
	c.Add(KeyFor(".a", 16), solid(16, red))
	c.Add(KeyFor(".b", 16), solid(16, red))

	first := c.Finalize()
	second := c.Finalize()
	if len(first) != len(second) || first[0].Survivor != second[0].Survivor {
		t.Errorf("Finalize not idempotent: %v vs %v", first, second)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestFinalizeDefaultExempt(t *testing.T) {
	c := New()
	txt := KeyFor(".txt", 32)
	def := KeyFor(icon.DefaultExtension, 32)
	c.Add(txt, solid(32, red))
	c.Add(def, solid(32, red))

	if groups := c.Finalize(); len(groups) != 0 {
		t.Fatalf("DEFAULT must not join a group, got %v", groups)
	}
	if !c.Has(def) || !c.Has(txt) {
		t.Error("both entries must stay active")
	}
}

func TestFinalizeDefaultDoesNotSurvive(t *testing.T) {
	c := New()
	def := KeyFor(icon.DefaultExtension, 32)
	a := KeyFor(".a", 32)
	b := KeyFor(".b", 32)
	c.Add(def, solid(32, red))
	c.Add(a, solid(32, red))
	c.Add(b, solid(32, red))

	groups := c.Finalize()
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Survivor != a {
		t.Errorf("Survivor = %s, want %s", groups[0].Survivor, a)
	}
	for _, m := range groups[0].Members {
		if m.IsDefault() {
			t.Error("DEFAULT listed as member")
		}
	}
	if !c.Has(def) {
		t.Error("DEFAULT entry must stay active")
	}
}

func TestFinalizeSurvivorOrder(t *testing.T) {
	c := New()
	c.Add(KeyFor(".z", 16), solid(16, blue))
	c.Add(KeyFor(".a", 16), solid(16, red))
	c.Add(KeyFor(".y", 16), solid(16, blue))
	c.Add(KeyFor(".b", 16), solid(16, red))

	groups := c.Finalize()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Survivor.Extension != "z" || groups[1].Survivor.Extension != "a" {
		t.Errorf("groups out of insertion order: %v", groups)
	}
}

func TestSameImageDifferentWidths(t *testing.T) {
	c := New()
	c.Add(KeyFor(".a", 16), solid(16, red))
	c.Add(KeyFor(".a", 32), solid(32, red))
	if groups := c.Finalize(); len(groups) != 0 {
		t.Errorf("different sizes must not group: %v", groups)
	}
}

func TestWidths(t *testing.T) {
	c := New()
	c.Add(KeyFor(".a", 32), solid(32, red))
	c.Add(KeyFor(".a", 16), solid(16, red))
	c.Add(KeyFor(".b", 48), solid(48, green))
	c.Add(KeyFor(".c", 48), solid(48, green))
	c.Finalize()

	got := c.Widths()
	want := []int{16, 32, 48}
	if len(got) != len(want) {
		t.Fatalf("Widths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Widths()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEntriesInsertionOrder(t *testing.T) {
	c := New()
	keys := []Key{KeyFor(".c", 16), KeyFor(".a", 16), KeyFor(".b", 16)}
	for i, k := range keys {
		c.Add(k, solid(16, color.NRGBA{R: uint8(i), A: 255}))
	}
	for i, e := range c.Entries() {
		if e.Key != keys[i] {
			t.Errorf("Entries()[%d] = %s, want %s", i, e.Key, keys[i])
		}
		if e.Seq() != i {
			t.Errorf("Seq() = %d, want %d", e.Seq(), i)
		}
	}
}

func TestGroupsReturnsCopies(t *testing.T) {
	c := New()
	c.Add(KeyFor(".a", 16), solid(16, red))
	c.Add(KeyFor(".b", 16), solid(16, red))
	g := c.Finalize()
	g[0].Members[0] = KeyFor(".mutated", 16)

	if c.Groups()[0].Members[0].Extension != "b" {
		t.Error("Groups should return copies")
	}
}

func TestGroupKeys(t *testing.T) {
	g := Group{Survivor: KeyFor(".a", 16), Members: []Key{KeyFor(".b", 16)}}
	keys := g.Keys()
	if len(keys) != 2 || keys[0].Extension != "a" || keys[1].Extension != "b" {
		t.Errorf("Keys() = %v", keys)
	}
}
