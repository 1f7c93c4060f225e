package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camalot/fyles/pkg/errors"
)

func writePNG(t *testing.T, path string, w int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, w))
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// iconDir creates a small icon directory in which .ini and .txt share an
// icon.
func iconDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	red := color.NRGBA{R: 255, A: 255}
	writePNG(t, filepath.Join(dir, "txt.png"), 16, red)
	writePNG(t, filepath.Join(dir, "ini.png"), 16, red)
	writePNG(t, filepath.Join(dir, "exe.png"), 32, color.NRGBA{B: 255, A: 255})
	writePNG(t, filepath.Join(dir, "default.png"), 16, color.NRGBA{G: 255, A: 255})
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var logs, out bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	src := iconDir(t)
	out := t.TempDir()

	if _, err := execute(t, "generate", "--source", src, "--output", out, "--row-rounding", "ceil",
		"--icons-dir", filepath.Join(out, "icons")); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	css, err := os.ReadFile(filepath.Join(out, "css", "fyles.css"))
	if err != nil {
		t.Fatalf("stylesheet missing: %v", err)
	}
	for _, want := range []string{
		".fyles{background-image: url(../images/fyles.png);",
		".fyles-ini-16, .fyles-txt-16 {",
		".fyles-exe-32 {",
		".fyles-16{height: 16px; width: 16px;",
	} {
		if !strings.Contains(string(css), want) {
			t.Errorf("stylesheet missing %q:\n%s", want, css)
		}
	}

	f, err := os.Open(filepath.Join(out, "images", "fyles.png"))
	if err != nil {
		t.Fatalf("sprite missing: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("sprite is not a PNG: %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "icons", "txt-16.png")); !os.IsNotExist(err) {
		t.Error("merged icons must not be exported")
	}
	if _, err := os.Stat(filepath.Join(out, "icons", "ini-16.png")); err != nil {
		t.Errorf("survivor icon missing: %v", err)
	}
}

func TestGenerateErrors(t *testing.T) {
	src := iconDir(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing source", []string{"generate", "--source", filepath.Join(src, "nope")}, errors.ErrCodeInvalidInput},
		{"invalid option", []string{"generate", "--source", src, "--max-size", "-1"}, errors.ErrCodeInvalidConfig},
		{"bad namespace", []string{"generate", "--source", src, "--namespace", "1x"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "--output", t.TempDir())...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestInspectPlain(t *testing.T) {
	out, err := execute(t, "inspect", "--plain", "--source", iconDir(t), "--row-rounding", "ceil")
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"Rules (", "Fallbacks (1)", "Groups (1)", ".fyles-ini-16, .fyles-txt-16", "ini-16"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommandPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(cfgPath, []byte("padding = 2\nnamespace = \"fromfile\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FYLES_SLOTS_PER_ROW", "3")
	t.Setenv("FYLES_NAMESPACE", "fromenv")

	out, err := execute(t, "config", "--config", cfgPath, "--padding", "7")
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	for _, want := range []string{"padding = 7", "slots_per_row = 3", `namespace = "fromenv"`, "max_size = 48"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewFileBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	writePNG(t, path, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := execute(t, "preview", "--mode", "blocks", path)
	if err != nil {
		t.Fatalf("preview error: %v", err)
	}
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "38;2;10;20;30") {
		t.Errorf("preview output = %q", out)
	}
}

func TestPreviewInvalidMode(t *testing.T) {
	if _, err := execute(t, "preview", "--mode", "ascii", "x.png"); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "fyles") {
		t.Error("completion script should mention the command")
	}
}
