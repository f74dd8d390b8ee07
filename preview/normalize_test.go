package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

// noisePNG encodes a pseudo-random opaque image so the PNG stays well
// above trivial sizes regardless of filter compression.
func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*x*31 + y*y*17 + x*y) % 251),
				G: uint8((x*13 + y*y*7) % 251),
				B: uint8((x*y*3 + y*29) % 251),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func alphaPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 5) % 251),
				G: uint8((y * 9) % 251),
				B: 40,
				A: uint8((x + y) % 256),
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeWebP(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := xwebp.Decode(f)
	require.NoError(t, err)
	return img
}

func TestNormalizeDownscalesWideImages(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.webp")
	require.NoError(t, Normalize(noisePNG(t, 1280, 720), dst))

	out := decodeWebP(t, dst)
	require.Equal(t, MaxWidth, out.Bounds().Dx())
	require.Equal(t, 360, out.Bounds().Dy())
}

func TestNormalizeFloorsScaledHeight(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.webp")
	// 719 * 640 / 1280 = 359.5, floored to 359.
	require.NoError(t, Normalize(noisePNG(t, 1280, 719), dst))

	out := decodeWebP(t, dst)
	require.Equal(t, 359, out.Bounds().Dy())
}

func TestNormalizeKeepsNarrowImages(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.webp")
	require.NoError(t, Normalize(noisePNG(t, 320, 200), dst))

	out := decodeWebP(t, dst)
	require.Equal(t, 320, out.Bounds().Dx())
	require.Equal(t, 200, out.Bounds().Dy())
}

func TestNormalizeDropsAlpha(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.webp")
	require.NoError(t, Normalize(alphaPNG(t, 200, 100), dst))

	out := decodeWebP(t, dst)
	op, ok := out.(interface{ Opaque() bool })
	require.True(t, ok)
	require.True(t, op.Opaque(), "cached preview should carry no alpha channel")
}

func TestNormalizeDropsPalette(t *testing.T) {
	palette := color.Palette{
		color.NRGBA{0, 0, 0, 255},
		color.NRGBA{255, 0, 0, 128},
		color.NRGBA{0, 255, 0, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 64, 64), palette)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%3))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	dst := filepath.Join(t.TempDir(), "out.webp")
	require.NoError(t, Normalize(buf.Bytes(), dst))

	out := decodeWebP(t, dst)
	op, ok := out.(interface{ Opaque() bool })
	require.True(t, ok)
	require.True(t, op.Opaque())
}

func TestNormalizeRejectsUndecodableInput(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.webp")

	err := Normalize([]byte("<html>not an image</html>"), dst)
	require.Error(t, err)

	// Failure must leave nothing behind, not even a temp file.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Empty(t, entries)
}

func TestNormalizeOverwritesExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.webp")
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

	require.NoError(t, Normalize(noisePNG(t, 100, 100), dst))
	out := decodeWebP(t, dst)
	require.Equal(t, 100, out.Bounds().Dx())
}

func TestNormalizeFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "preview.png")
	require.NoError(t, os.WriteFile(src, noisePNG(t, 800, 400), 0o644))

	dst := filepath.Join(dir, "cache", "out.webp")
	require.NoError(t, NormalizeFile(src, dst))

	out := decodeWebP(t, dst)
	require.Equal(t, MaxWidth, out.Bounds().Dx())
	require.Equal(t, 320, out.Bounds().Dy())
}

func TestNormalizeFileMissing(t *testing.T) {
	dir := t.TempDir()
	err := NormalizeFile(filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.webp"))
	require.Error(t, err)
}
