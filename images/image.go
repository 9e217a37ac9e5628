// Package images - Decoding of mask files into raw masks and OpenCV backed mask
// operations (labeling, alignment).
package images

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/chai2010/webp"
	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// LoadMask reads a mask file without altering its bit depth.
//
// PNG, TIFF and BMP files are read through OpenCV with IMReadUnchanged so 16-bit label
// images keep their labels. 1-bit greyscale PNGs load as Bool. WebP files are decoded
// with libwebp. Colour images are converted to grey with a warning.
//
// Arguments:
//   - path: The mask file path.
//   - logger: Logger for conversion warnings, nil for slog.Default().
//
// Returns:
//   - masks.Raw: The decoded mask with its element type.
//   - error: ErrMaskNotFound, ErrUnsupportedFormat or ErrDecodeFailed.
func LoadMask(path string, logger *slog.Logger) (masks.Raw, error) {
	if logger == nil {
		logger = slog.Default()
	}

	format, ok := FormatFromPath(path)
	if !ok {
		return masks.Raw{}, errors.Wrap(ErrUnsupportedFormat, path)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return masks.Raw{}, errors.Wrap(ErrMaskNotFound, path)
		}
		return masks.Raw{}, errors.Wrapf(err, "checking mask file %s", path)
	}

	if format == FormatWebP {
		data, err := os.ReadFile(path)
		if err != nil {
			return masks.Raw{}, errors.Wrapf(err, "reading mask file %s", path)
		}
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return masks.Raw{}, errors.Wrapf(ErrDecodeFailed, "%s: %v", path, err)
		}
		raw, converted := FromImage(img)
		if converted {
			logger.Warn("colour mask converted to grey", "path", path)
		}
		return raw, nil
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return masks.Raw{}, errors.Wrap(ErrDecodeFailed, path)
	}

	raw, err := FromMat(mat, logger)
	if err != nil {
		return masks.Raw{}, errors.Wrap(err, path)
	}

	// OpenCV expands 1-bit samples to 0/255.
	if format == FormatPNG && raw.Type == masks.Uint8 && isBilevelPNG(path) {
		raw.Type = masks.Bool
		for i, v := range raw.Data {
			if v > 0 {
				raw.Data[i] = 1
			}
		}
	}
	return raw, nil
}

// pngSignature starts every PNG file.
var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// isBilevelPNG reports whether the IHDR chunk declares 1-bit greyscale samples.
func isBilevelPNG(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// signature, IHDR length and type, width, height, bit depth, colour type
	var header [26]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return false
	}
	return bytes.Equal(header[:8], pngSignature) &&
		string(header[12:16]) == "IHDR" &&
		header[24] == 1 && header[25] == 0
}

// FromMat copies a single or multi channel Mat into a raw mask.
//
// 8-bit and 16-bit unsigned single channel Mats map to Uint8 and Uint16. Multi channel
// Mats are converted to grey first. Every other depth maps to Other with negative
// values clamped to 0 and fractional values truncated.
//
// Arguments:
//   - mat: The source Mat. It is not modified.
//   - logger: Logger for conversion warnings, nil for slog.Default().
//
// Returns:
//   - masks.Raw: The raw mask.
//   - error: An error if the Mat is empty or cannot be read.
func FromMat(mat gocv.Mat, logger *slog.Logger) (masks.Raw, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mat.Empty() {
		return masks.Raw{}, errors.Wrap(ErrDecodeFailed, "empty mat")
	}

	if channels := mat.Channels(); channels > 1 {
		code := gocv.ColorBGRToGray
		if channels == 4 {
			code = gocv.ColorBGRAToGray
		}
		gray := gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(mat, &gray, code); err != nil {
			return masks.Raw{}, errors.Wrap(err, "converting colour mask to grey")
		}
		logger.Warn("colour mask converted to grey", "channels", channels)
		return FromMat(gray, logger)
	}

	rows, cols := mat.Rows(), mat.Cols()
	raw := masks.Raw{Width: cols, Height: rows, Data: make([]uint32, rows*cols)}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		raw.Type = masks.Uint8
		data, err := mat.DataPtrUint8()
		if err != nil {
			return masks.Raw{}, errors.Wrap(err, "reading 8-bit mask")
		}
		for i, v := range data[:rows*cols] {
			raw.Data[i] = uint32(v)
		}
	case gocv.MatTypeCV16UC1:
		raw.Type = masks.Uint16
		data, err := mat.DataPtrUint16()
		if err != nil {
			return masks.Raw{}, errors.Wrap(err, "reading 16-bit mask")
		}
		for i, v := range data[:rows*cols] {
			raw.Data[i] = uint32(v)
		}
	default:
		raw.Type = masks.Other
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				raw.Data[y*cols+x] = clampLabel(valueAt(mat, y, x))
			}
		}
	}

	return raw, nil
}

// valueAt reads a single channel element of any supported depth as float64.
func valueAt(mat gocv.Mat, row, col int) float64 {
	switch mat.Type() {
	case gocv.MatTypeCV8SC1:
		return float64(mat.GetSCharAt(row, col))
	case gocv.MatTypeCV16SC1:
		return float64(mat.GetShortAt(row, col))
	case gocv.MatTypeCV32SC1:
		return float64(mat.GetIntAt(row, col))
	case gocv.MatTypeCV32FC1:
		return float64(mat.GetFloatAt(row, col))
	case gocv.MatTypeCV64FC1:
		return mat.GetDoubleAt(row, col)
	default:
		return 0
	}
}

// clampLabel truncates v into the label range.
func clampLabel(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	if v >= float64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

// FromImage copies a Go image into a raw mask.
//
// *image.Gray maps to Uint8 and *image.Gray16 to Uint16. Any other image is converted
// to 8-bit grey, which is reported through the second return value.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - masks.Raw: The raw mask.
//   - bool: true if a colour conversion took place.
func FromImage(img image.Image) (masks.Raw, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	raw := masks.Raw{Width: w, Height: h, Data: make([]uint32, w*h)}

	switch src := img.(type) {
	case *image.Gray:
		raw.Type = masks.Uint8
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				raw.Data[y*w+x] = uint32(v)
			}
		}
		return raw, false
	case *image.Gray16:
		raw.Type = masks.Uint16
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				raw.Data[y*w+x] = uint32(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return raw, false
	default:
		raw.Type = masks.Uint8
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				raw.Data[y*w+x] = uint32(g.Y)
			}
		}
		return raw, true
	}
}
