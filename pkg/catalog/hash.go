package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"

	"golang.org/x/image/draw"

	"github.com/camalot/fyles/pkg/errors"
)

// Canonical re-encodes img as an origin-anchored NRGBA image.
//
// Two images with identical visible pixels produce byte-identical canonical
// forms regardless of their original color model or bounds offset. The
// result never aliases img.
func Canonical(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeEncodingFailure, "nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New(errors.ErrCodeEncodingFailure, "empty image")
	}
	if b.Dx() != b.Dy() {
		return nil, errors.New(errors.ErrCodeEncodingFailure, "icon is not square: %dx%d", b.Dx(), b.Dy())
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}

// Hash computes the content hash of img: a SHA-256 over a width/height
// header followed by the canonical row-major NRGBA pixels.
// Returns the full 64-character hex string and the canonical image.
func Hash(img image.Image) (string, *image.NRGBA, error) {
	c, err := Canonical(img)
	if err != nil {
		return "", nil, err
	}
	h := sha256.New()
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(c.Rect.Dx()))
	binary.BigEndian.PutUint32(hdr[4:], uint32(c.Rect.Dy()))
	h.Write(hdr[:])
	h.Write(c.Pix)
	return hex.EncodeToString(h.Sum(nil)), c, nil
}
