package stylesheet

import (
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/camalot/fyles/pkg/catalog"
	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/pack"
)

func TestCoord(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{10, "-10px"},
		{37, "-37px"},
	}
	for _, tt := range tests {
		if got := Coord(tt.in); got != tt.want {
			t.Errorf("Coord(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelectorLowercase(t *testing.T) {
	got := Selector("Fyles", catalog.KeyFor(".TXT", 32))
	if got != ".fyles-txt-32" {
		t.Errorf("Selector() = %q", got)
	}
}

func TestSelectorEscapes(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".c++", `.fyles-c\+\+-16`},
		{".a:b", `.fyles-a\:b-16`},
		{".tar.gz", `.fyles-tar\.gz-16`},
		{".7z", ".fyles-7z-16"},
		{".my_ext-1", ".fyles-my_ext-1-16"},
	}
	for _, tt := range tests {
		if got := Selector("fyles", catalog.KeyFor(tt.ext, 16)); got != tt.want {
			t.Errorf("Selector(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestGenerateConcurrent(t *testing.T) {
	l := pack.Pack([]catalog.Key{catalog.KeyFor(".TXT", 16), catalog.KeyFor(".Ini", 32)})
	want := string(Generate(l, nil, WithNamespace("Icons")).Bytes())

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := string(Generate(l, nil, WithNamespace("Icons")).Bytes()); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent output differs:\n%s", got)
	}
}

func TestPrologue(t *testing.T) {
	css := string(Generate(pack.Layout{}, nil).Bytes())
	want := ".fyles{background-image: url(../images/fyles.png); background-repeat: no-repeat; display: inline-block;}\n"
	if css != want {
		t.Errorf("css = %q, want %q", css, want)
	}
}

func TestImageURLAndNamespace(t *testing.T) {
	css := string(Generate(pack.Layout{}, nil, WithNamespace("ico"), WithImageURL("/static/s.png")).Bytes())
	if !strings.HasPrefix(css, ".ico{background-image: url(/static/s.png);") {
		t.Errorf("css = %q", css)
	}
	css = string(Generate(pack.Layout{}, nil, WithNamespace("ico")).Bytes())
	if !strings.Contains(css, "url(../images/ico.png)") {
		t.Errorf("default url should follow the namespace: %q", css)
	}
}

// Two extensions with identical pixels share one rule.
func TestDuplicateGroupSelector(t *testing.T) {
	txt := catalog.KeyFor(".txt", 32)
	ini := catalog.KeyFor(".ini", 32)
	l := pack.Pack([]catalog.Key{txt})
	groups := []catalog.Group{{Hash: "h", Survivor: txt, Members: []catalog.Key{ini}}}

	css := string(Generate(l, groups).Bytes())
	want := ".fyles-txt-32, .fyles-ini-32 {background-position: 0 0; height: 32px; width: 32px;}\n"
	if !strings.Contains(css, want) {
		t.Errorf("css missing group rule:\n%s", css)
	}
	if n := strings.Count(css, ".fyles-ini-32"); n != 1 {
		t.Errorf("member selector emitted %d times, want 1", n)
	}
}

// DEFAULT at width 32 yields exactly one fallback rule regardless of how many
// other extensions share that width.
func TestFallbackRule(t *testing.T) {
	def := catalog.KeyFor(icon.DefaultExtension, 32)
	l := pack.Layout{
		CanvasWidth: 200,
		RowHeight:   37,
		Positions: []pack.Position{
			{Key: catalog.KeyFor(".a", 32), X: 0, Y: 0, Width: 32},
			{Key: def, X: 10, Y: 0, Width: 32},
			{Key: catalog.KeyFor(".b", 32), X: 47, Y: 0, Width: 32},
			{Key: catalog.KeyFor(".c", 32), X: 84, Y: 0, Width: 32},
		},
		Defaults: map[int]image.Point{32: {10, 0}},
	}
	css := string(Generate(l, nil).Bytes())

	want := ".fyles-32{height: 32px; width: 32px; background-position: -10px 0;}\n"
	if n := strings.Count(css, want); n != 1 {
		t.Errorf("fallback rule emitted %d times, want 1:\n%s", n, css)
	}
	if n := strings.Count(css, ".fyles-32{"); n != 1 {
		t.Errorf("fallback selectors = %d, want 1", n)
	}
}

func TestFallbacksAscending(t *testing.T) {
	l := pack.Layout{Defaults: map[int]image.Point{48: {0, 0}, 16: {5, 0}, 32: {0, 10}}}
	s := Generate(l, nil)
	if len(s.Fallbacks) != 3 {
		t.Fatalf("Fallbacks = %d, want 3", len(s.Fallbacks))
	}
	for i, w := range []int{16, 32, 48} {
		if s.Fallbacks[i].Size != w {
			t.Errorf("Fallbacks[%d].Size = %d, want %d", i, s.Fallbacks[i].Size, w)
		}
	}
}

func TestRuleOrderFollowsLayout(t *testing.T) {
	l := pack.Pack([]catalog.Key{
		catalog.KeyFor(".zip", 16),
		catalog.KeyFor(".bat", 16),
		catalog.KeyFor(".bat", 32),
	})
	s := Generate(l, nil)
	want := []string{".fyles-bat-16", ".fyles-bat-32", ".fyles-zip-16"}
	for i, r := range s.Rules {
		if r.Selector() != want[i] {
			t.Errorf("Rules[%d] = %q, want %q", i, r.Selector(), want[i])
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestRulePositions(t *testing.T) {
	l := pack.Pack([]catalog.Key{catalog.KeyFor(".a", 16), catalog.KeyFor(".b", 16)}, pack.WithSlotsPerRow(1))
	css := string(Generate(l, nil).Bytes())
	for _, want := range []string{
		".fyles-a-16 {background-position: 0 0; height: 16px; width: 16px;}\n",
		".fyles-b-16 {background-position: 0 -21px; height: 16px; width: 16px;}\n",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("css missing %q:\n%s", want, css)
		}
	}
}

func TestCompatLayout(t *testing.T) {
	def := catalog.KeyFor(icon.DefaultExtension, 16)
	a := catalog.KeyFor(".a", 16)
	l := pack.Pack([]catalog.Key{a, def})

	got := string(Generate(l, nil, WithCompat()).Bytes())
	want := ".fyles{background-image: url(../images/fyles.png); background-repeat: no-repeat; display: inline-block;}\n" +
		".fyles-16{height: 16px; width: 16px; background-position: 0px 0px;}\n" +
		"\n" +
		".fyles-___default___-16 {background-position: 0 0; height: 16px; width: 16px;}" +
		".fyles-a-16 {background-position: -21px 0; height: 16px; width: 16px;}"
	if got != want {
		t.Errorf("compat css =\n%q\nwant\n%q", got, want)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	keys := []catalog.Key{catalog.KeyFor(".b", 16), catalog.KeyFor(".a", 32), catalog.KeyFor(".a", 16)}
	first := Generate(pack.Pack(keys), nil).Bytes()
	second := Generate(pack.Pack(keys), nil).Bytes()
	if string(first) != string(second) {
		t.Error("generation is not deterministic")
	}
}
