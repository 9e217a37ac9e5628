package images

import (
	"encoding/binary"
	"image"

	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// AlignTo resamples a labeled mask to the given shape with nearest-neighbour
// interpolation, so no new label values are introduced. Components that vanish in the
// resampling leave gaps, which are closed by compacting the labels.
//
// Arguments:
//   - m: The labeled mask to resample.
//   - width: The target number of columns.
//   - height: The target number of rows.
//
// Returns:
//   - masks.LabeledMask: The resampled mask, or m itself when the shape already matches.
//   - error: An error if OpenCV fails to resample.
func AlignTo(m masks.LabeledMask, width, height int) (masks.LabeledMask, error) {
	if m.Width == width && m.Height == height {
		return m, nil
	}
	if m.Size() == 0 || width <= 0 || height <= 0 {
		return masks.LabeledMask{}, errors.Errorf("cannot align %s mask to %dx%d", m.Shape(), width, height)
	}

	buf := make([]byte, 4*len(m.Labels))
	for i, l := range m.Labels {
		binary.NativeEndian.PutUint32(buf[4*i:], l)
	}

	src, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV32SC1, buf)
	if err != nil {
		return masks.LabeledMask{}, errors.Wrap(err, "creating label mat")
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationNearestNeighbor); err != nil {
		return masks.LabeledMask{}, errors.Wrap(err, "resizing label mat")
	}

	labels := make([]uint32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			labels[y*width+x] = uint32(dst.GetIntAt(y, x))
		}
	}
	return masks.LabeledMask{Width: width, Height: height, Labels: labels}.Compact(), nil
}
