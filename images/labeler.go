package images

import (
	"log/slog"

	"github.com/nvr-ai/go-maskeval/masks"
	"gocv.io/x/gocv"
)

// OpenCVLabeler labels connected components with cv::connectedComponents.
//
// It satisfies masks.Labeler. If the native Mat cannot be created it falls back to
// masks.FloodFill so labeling never fails.
type OpenCVLabeler struct{}

// Label implements masks.Labeler.
//
// Arguments:
//   - binary: Row-major foreground flags.
//   - width: The number of columns.
//   - height: The number of rows.
//   - conn: 4 or 8 connectivity.
//
// Returns:
//   - masks.LabeledMask: Components numbered 1..N, background 0.
func (OpenCVLabeler) Label(binary []bool, width, height int, conn masks.Connectivity) masks.LabeledMask {
	if width == 0 || height == 0 {
		return masks.LabeledMask{Width: width, Height: height, Labels: []uint32{}}
	}

	data := make([]byte, len(binary))
	for i, v := range binary {
		if v {
			data[i] = 255
		}
	}

	src, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		slog.Default().Warn("opencv labeling unavailable, using flood fill", "error", err)
		return masks.FloodFill{}.Label(binary, width, height, conn)
	}
	defer src.Close()

	labelsMat := gocv.NewMat()
	defer labelsMat.Close()
	gocv.ConnectedComponentsWithParams(src, &labelsMat, int(conn), gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	labels := make([]uint32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			labels[y*width+x] = uint32(labelsMat.GetIntAt(y, x))
		}
	}
	return masks.LabeledMask{Width: width, Height: height, Labels: labels}
}
