package images

import "github.com/pkg/errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrMaskNotFound indicates the mask file does not exist.
	ErrMaskNotFound = errors.New("images: mask file not found")

	// ErrUnsupportedFormat indicates the file extension is not a known mask format.
	ErrUnsupportedFormat = errors.New("images: unsupported mask format")

	// ErrDecodeFailed indicates the mask file exists but could not be decoded.
	ErrDecodeFailed = errors.New("images: mask decoding failed")
)
