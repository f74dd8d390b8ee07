package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Register decoders for the formats preview sources come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// MaxWidth is the widest a cached preview gets; wider sources are
	// downscaled proportionally.
	MaxWidth = 640

	// Quality is the lossy WebP quality for cached previews.
	Quality = 80
)

// Normalize decodes raw image bytes, flattens transparency, downscales
// wide images to MaxWidth, and writes the result to dst as lossy WebP.
// On failure nothing is written; the encoded image is buffered in full
// and lands at dst through a rename, so no partial file can remain.
func Normalize(data []byte, dst string) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	img = flatten(img)

	if w := img.Bounds().Dx(); w > MaxWidth {
		// Integer math floors the scaled height.
		h := img.Bounds().Dy() * MaxWidth / w
		if h < 1 {
			h = 1
		}
		img = imaging.Resize(img, MaxWidth, h, imaging.Lanczos)
	}

	out, err := webp.EncodeRGB(img, Quality)
	if err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	return writeAtomic(dst, out)
}

// NormalizeFile reads a local image and caches it at dst.
func NormalizeFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read preview: %w", err)
	}
	return Normalize(data, dst)
}

// flatten composites images carrying an alpha channel or an indexed
// palette onto an opaque black canvas. The cached format has no use for
// transparency and the encoder rejects indexed modes.
func flatten(img image.Image) image.Image {
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		if _, indexed := img.(*image.Paletted); !indexed {
			return img
		}
	}

	b := img.Bounds()
	rgb := image.NewRGBA(b)
	draw.Draw(rgb, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(rgb, b, img, b.Min, draw.Over)
	return rgb
}

func writeAtomic(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
