package images

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mask.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format ImageFormat
		ok     bool
	}{
		{path: "a/b/mask.png", format: FormatPNG, ok: true},
		{path: "mask.TIF", format: FormatTIFF, ok: true},
		{path: "mask.tiff", format: FormatTIFF, ok: true},
		{path: "mask.bmp", format: FormatBMP, ok: true},
		{path: "mask.webp", format: FormatWebP, ok: true},
		{path: "mask.jpg", ok: false},
		{path: "mask", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.format, format)
		})
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(1, 0, color.Gray{Y: 255})
	gray.SetGray(2, 1, color.Gray{Y: 7})

	raw, converted := FromImage(gray)
	assert.False(t, converted)
	assert.Equal(t, masks.Uint8, raw.Type)
	assert.Equal(t, 3, raw.Width)
	assert.Equal(t, 2, raw.Height)
	assert.Equal(t, []uint32{0, 255, 0, 0, 0, 7}, raw.Data)

	gray16 := image.NewGray16(image.Rect(0, 0, 2, 1))
	gray16.SetGray16(0, 0, color.Gray16{Y: 1000})
	raw, converted = FromImage(gray16)
	assert.False(t, converted)
	assert.Equal(t, masks.Uint16, raw.Type)
	assert.Equal(t, []uint32{1000, 0}, raw.Data)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(1, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	raw, converted = FromImage(rgba)
	assert.True(t, converted)
	assert.Equal(t, masks.Uint8, raw.Type)
	assert.Equal(t, []uint32{0, 200}, raw.Data)
}

func TestFromImageSubImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(2, 2, color.Gray{Y: 9})

	sub := gray.SubImage(image.Rect(2, 2, 4, 4))
	raw, _ := FromImage(sub)
	assert.Equal(t, 2, raw.Width)
	assert.Equal(t, []uint32{9, 0, 0, 0}, raw.Data)
}

func TestLoadMaskPNG(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 2))
	gray.SetGray(0, 0, color.Gray{Y: 255})
	gray.SetGray(3, 1, color.Gray{Y: 255})

	raw, err := LoadMask(writePNG(t, gray), nil)
	require.NoError(t, err)
	assert.Equal(t, masks.Uint8, raw.Type)
	assert.Equal(t, 4, raw.Width)
	assert.Equal(t, 2, raw.Height)
	assert.Equal(t, []uint32{255, 0, 0, 0, 0, 0, 0, 255}, raw.Data)
}

// writeBilevelPNG encodes a 1-bit greyscale PNG, which image/png never produces.
func writeBilevelPNG(t *testing.T, width, height int, rows ...byte) string {
	t.Helper()

	var scanlines bytes.Buffer
	zw := zlib.NewWriter(&scanlines)
	for _, row := range rows {
		_, err := zw.Write([]byte{0, row})
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	var buf bytes.Buffer
	chunk := func(kind string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		buf.Write(n[:])
		buf.WriteString(kind)
		buf.Write(data)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(append([]byte(kind), data...)))
		buf.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(height))
	ihdr[8] = 1 // bit depth, colour type 0
	buf.Write(pngSignature)
	chunk("IHDR", ihdr)
	chunk("IDAT", scanlines.Bytes())
	chunk("IEND", nil)

	path := filepath.Join(t.TempDir(), "bilevel.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadMaskBilevelPNG(t *testing.T) {
	path := writeBilevelPNG(t, 3, 2, 0b10100000, 0b01100000)
	assert.True(t, isBilevelPNG(path))

	raw, err := LoadMask(path, nil)
	require.NoError(t, err)
	assert.Equal(t, masks.Bool, raw.Type)
	assert.Equal(t, []uint32{1, 0, 1, 0, 1, 1}, raw.Data)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m, err := masks.NewNormalizer(masks.WithLogger(logger)).Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, m.MaxLabel())
	assert.Empty(t, buf.String())
}

func TestIsBilevelPNG(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	assert.False(t, isBilevelPNG(writePNG(t, gray)))
	assert.False(t, isBilevelPNG(filepath.Join(t.TempDir(), "missing.png")))
}

func TestLoadMask16Bit(t *testing.T) {
	labels := image.NewGray16(image.Rect(0, 0, 3, 1))
	labels.SetGray16(0, 0, color.Gray16{Y: 1})
	labels.SetGray16(2, 0, color.Gray16{Y: 300})

	raw, err := LoadMask(writePNG(t, labels), nil)
	require.NoError(t, err)
	assert.Equal(t, masks.Uint16, raw.Type)
	assert.Equal(t, []uint32{1, 0, 300}, raw.Data)
}

func TestLoadMaskWebP(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(0, 0, color.Gray{Y: 1})
	gray.SetGray(2, 1, color.Gray{Y: 2})

	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, gray, &webp.Options{Lossless: true}))
	path := filepath.Join(t.TempDir(), "mask.webp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	raw, err := LoadMask(path, nil)
	require.NoError(t, err)
	assert.Equal(t, masks.Uint8, raw.Type)
	assert.Equal(t, []uint32{1, 0, 0, 0, 0, 2}, raw.Data)
}

func TestLoadMaskErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMask(filepath.Join(dir, "mask.jpg"), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = LoadMask(filepath.Join(dir, "missing.png"), nil)
	assert.True(t, errors.Is(err, ErrMaskNotFound))

	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a png"), 0o644))
	_, err = LoadMask(corrupt, nil)
	assert.True(t, errors.Is(err, ErrDecodeFailed))
}

func TestComputeMaskChecksum(t *testing.T) {
	a := masks.LabeledMask{Width: 2, Height: 1, Labels: []uint32{1, 0}}
	b := masks.LabeledMask{Width: 2, Height: 1, Labels: []uint32{1, 0}}
	c := masks.LabeledMask{Width: 1, Height: 2, Labels: []uint32{1, 0}}

	assert.Equal(t, ComputeMaskChecksum(a), ComputeMaskChecksum(b))
	assert.NotEqual(t, ComputeMaskChecksum(a), ComputeMaskChecksum(c))
	assert.Len(t, ComputeMaskChecksum(a), 32)
	assert.Equal(t, "empty", ComputeMaskChecksum(masks.LabeledMask{}))
}
