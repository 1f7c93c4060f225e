package pack

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/camalot/fyles/pkg/catalog"
)

// Composite draws every positioned entry of c onto a transparent canvas of
// the layout's size. Pixels falling outside the canvas are clipped.
func Composite(l Layout, c *catalog.Catalog) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(l.Bounds())
	for _, p := range l.Positions {
		e, ok := c.Entry(p.Key)
		if !ok {
			return nil, fmt.Errorf("composite: no entry for %s", p.Key)
		}
		draw.Copy(canvas, image.Pt(p.X, p.Y), e.Image, e.Image.Bounds(), draw.Src, nil)
	}
	return canvas, nil
}

