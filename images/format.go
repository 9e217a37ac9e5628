package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported mask file formats
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatTIFF ImageFormat = "tiff"
	FormatBMP  ImageFormat = "bmp"
	FormatWebP ImageFormat = "webp"
)

// extensions maps lower-case file extensions to their format.
var extensions = map[string]ImageFormat{
	".png":  FormatPNG,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
}

// FormatFromPath returns the mask format implied by the file extension.
//
// Arguments:
//   - path: The mask file path.
//
// Returns:
//   - ImageFormat: The detected format.
//   - bool: false if the extension is not a supported mask format.
func FormatFromPath(path string) (ImageFormat, bool) {
	format, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return format, ok
}
