package cli

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestWriteBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{G: 255, A: 255})

	var buf bytes.Buffer
	if err := writeBlocks(&buf, img); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (two pixel rows per line)", len(lines))
	}

	first := lines[0]
	if !strings.HasPrefix(first, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀") {
		t.Errorf("top and bottom pixels should share one cell: %q", first)
	}
	if !strings.Contains(first, "\x1b[38;2;0;255;0m▄") {
		t.Errorf("bottom-only pixel should use a lower block: %q", first)
	}
	if !strings.HasSuffix(first, " ") {
		t.Errorf("transparent cell should be blank: %q", first)
	}
	if strings.TrimSpace(lines[1]) != "" {
		t.Errorf("last row is transparent: %q", lines[1])
	}
}

func TestThumbnail(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))

	if got := thumbnail(img, 0); got != image.Image(img) {
		t.Error("width 0 keeps the image")
	}
	if got := thumbnail(img, 400); got != image.Image(img) {
		t.Error("images narrower than the limit are kept")
	}
	b := thumbnail(img, 50).Bounds()
	if b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("thumbnail = %v, want 50x25", b.Size())
	}
}

func TestPaletted(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), A: 255})
		}
	}
	p := paletted(img, 4)
	if p.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v", p.Bounds())
	}
	if len(p.Palette) == 0 || len(p.Palette) > 4 {
		t.Errorf("palette has %d colors, want 1..4", len(p.Palette))
	}
}

func TestValidatePreviewMode(t *testing.T) {
	for _, m := range []string{"auto", "kitty", "iterm", "sixel", "blocks"} {
		if err := validatePreviewMode(m); err != nil {
			t.Errorf("%s: %v", m, err)
		}
	}
	if validatePreviewMode("ascii") == nil {
		t.Error("ascii should be rejected")
	}
}
