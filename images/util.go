package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/nvr-ai/go-maskeval/masks"
)

// ComputeMaskChecksum generates a deterministic checksum for a labeled mask so reports
// can identify the exact inputs that were evaluated.
//
// Arguments:
// - m: The mask to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := ComputeMaskChecksum(gold)
//	fmt.Printf("Gold checksum: %s\n", checksum)
//
// ```
func ComputeMaskChecksum(m masks.LabeledMask) string {
	if m.Size() == 0 {
		return "empty"
	}

	hash := md5.New()
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(m.Width))
	binary.LittleEndian.PutUint32(header[4:], uint32(m.Height))
	hash.Write(header[:])

	var cell [4]byte
	for _, l := range m.Labels {
		binary.LittleEndian.PutUint32(cell[:], l)
		hash.Write(cell[:])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
