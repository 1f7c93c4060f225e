package cli

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/camalot/fyles/internal/config"
	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/source"
)

// Preview modes.
const (
	previewAuto   = "auto"
	previewKitty  = "kitty"
	previewIterm  = "iterm"
	previewSixel  = "sixel"
	previewBlocks = "blocks"
)

// defaultBlockWidth is the column budget of block previews.
const defaultBlockWidth = 80

// sixelColors is the palette size used for sixel output.
const sixelColors = 64

// previewCommand creates the preview command, which draws a sprite (or any
// icon file) in the terminal.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags *config.Config
		mode  string
		width uint
	)

	cmd := &cobra.Command{
		Use:   "preview [image]",
		Short: "Draw a sprite in the terminal",
		Long: `Draw an image in the terminal. Without an argument the sprite is rendered
in memory from the current configuration.

Kitty, iTerm2/WezTerm and sixel terminals get the real image; other
terminals get 24-bit colored half blocks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePreviewMode(mode); err != nil {
				return err
			}

			var img image.Image
			if len(args) == 1 {
				frames, err := source.Load(args[0])
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "preview")
				}
				if len(frames) == 0 {
					return errors.New(errors.ErrCodeInvalidInput, "preview: %s has no frames", args[0])
				}
				img = frames[0]
			} else {
				cfg, err := c.loadConfig(cmd.Flags(), flags)
				if err != nil {
					return err
				}
				st, err := c.render(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				img = st.Sprite
			}
			if img.Bounds().Empty() {
				printWarning("Nothing to preview: the image is empty")
				return nil
			}
			return previewImage(cmd.OutOrStdout(), img, mode, width)
		},
	}
	flags = addConfigFlags(cmd)
	cmd.Flags().StringVar(&mode, "mode", previewAuto, "output mode: auto, kitty, iterm, sixel, blocks")
	cmd.Flags().UintVar(&width, "width", 0, "scale the image down to at most this many pixels (blocks: columns) wide")

	return cmd
}

var validPreviewModes = map[string]bool{
	previewAuto: true, previewKitty: true, previewIterm: true, previewSixel: true, previewBlocks: true,
}

func validatePreviewMode(m string) error {
	if !validPreviewModes[m] {
		return fmt.Errorf("invalid mode: %s (must be 'auto', 'kitty', 'iterm', 'sixel' or 'blocks')", m)
	}
	return nil
}

// detectPreviewMode picks the best mode the terminal supports.
func detectPreviewMode() string {
	switch {
	case rasterm.IsTermKitty():
		return previewKitty
	case rasterm.IsTermItermWez():
		return previewIterm
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		return previewSixel
	}
	return previewBlocks
}

func previewImage(w io.Writer, img image.Image, mode string, width uint) error {
	if mode == previewAuto {
		mode = detectPreviewMode()
	}
	if mode == previewBlocks && width == 0 {
		width = defaultBlockWidth
	}
	img = thumbnail(img, width)

	switch mode {
	case previewKitty:
		rasterm.Settings{}.KittyWriteImage(w, img)
	case previewIterm:
		rasterm.Settings{}.ItermWriteImage(w, img)
	case previewSixel:
		rasterm.Settings{}.SixelWriteImage(w, paletted(img, sixelColors))
	default:
		return writeBlocks(w, img)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// thumbnail scales img down to at most width pixels wide. Zero keeps the
// original size.
func thumbnail(img image.Image, width uint) image.Image {
	b := img.Bounds()
	if width == 0 || uint(b.Dx()) <= width {
		return img
	}
	return resize.Thumbnail(width, uint(b.Dy()), img, resize.Lanczos3)
}

// paletted reduces img to at most n colors.
func paletted(img image.Image, n int) *image.Paletted {
	p := image.NewPaletted(img.Bounds(), nil)
	q := gogif.MedianCutQuantizer{NumColor: n}
	q.Quantize(p, img.Bounds(), img, img.Bounds().Min)
	return p
}

// writeBlocks draws img with upper half blocks, two pixel rows per line.
func writeBlocks(w io.Writer, img image.Image) error {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top, topOK := opaque(img.At(x, y))
			var bottom color.NRGBA
			bottomOK := false
			if y+1 < b.Max.Y {
				bottom, bottomOK = opaque(img.At(x, y+1))
			}

			switch {
			case topOK && bottomOK:
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m",
					top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
			case topOK:
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm▀\x1b[0m", top.R, top.G, top.B)
			case bottomOK:
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm▄\x1b[0m", bottom.R, bottom.G, bottom.B)
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// opaque converts c and reports whether it is at least half opaque.
func opaque(c color.Color) (color.NRGBA, bool) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n, n.A >= 0x80
}
