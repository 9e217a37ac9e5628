package masks

import (
	"log/slog"

	"github.com/pkg/errors"
)

// ElementType records the element type a raw mask was decoded from.
type ElementType string

const (
	// Bool masks hold foreground/background flags encoded as 1/0.
	Bool ElementType = "bool"
	// Uint8 masks come from 8-bit single channel images.
	Uint8 ElementType = "uint8"
	// Uint16 masks come from 16-bit single channel images.
	Uint16 ElementType = "uint16"
	// Other covers every remaining depth (signed, 32-bit, floating point).
	Other ElementType = "other"
)

// Raw is a decoded mask before normalisation.
type Raw struct {
	// Type is the element type of the source data.
	Type ElementType
	// Width is the number of columns.
	Width int
	// Height is the number of rows.
	Height int
	// Data holds Width*Height cell values in row-major order.
	Data []uint32
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLabeler sets the connected component labeler (default: FloodFill).
func WithLabeler(l Labeler) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.labeler = l
		}
	}
}

// WithConnectivity sets the labeling connectivity (default: Eight).
func WithConnectivity(c Connectivity) Option {
	return func(n *Normalizer) {
		if c == Four || c == Eight {
			n.conn = c
		}
	}
}

// WithLogger sets the logger used for diagnostics (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// Normalizer converts raw masks into labeled masks with background 0 and one
// positive label per connected component.
type Normalizer struct {
	labeler Labeler
	conn    Connectivity
	logger  *slog.Logger
}

// NewNormalizer creates a Normalizer.
//
// Arguments:
//   - opts: Optional labeler, connectivity and logger overrides.
//
// Returns:
//   - *Normalizer: The configured normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		labeler: FloodFill{},
		conn:    Eight,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Connectivity returns the connectivity used for labeling.
func (n *Normalizer) Connectivity() Connectivity {
	return n.conn
}

// Normalize produces the labeled form of a raw mask.
//
// Boolean masks are labeled. Integer masks that carry a single foreground value are
// relabeled with a warning, integer masks with several labels pass through, and any
// other element type passes through with a warning. Type mismatches never fail.
//
// Arguments:
//   - raw: The decoded mask.
//
// Returns:
//   - LabeledMask: The normalised mask.
//   - error: ErrInvalidShape if the data length disagrees with the dimensions.
func (n *Normalizer) Normalize(raw Raw) (LabeledMask, error) {
	m, err := New(raw.Width, raw.Height, raw.Data)
	if err != nil {
		return LabeledMask{}, errors.Wrapf(err, "normalizing %s mask", raw.Type)
	}

	switch raw.Type {
	case Bool:
		return n.relabel(raw), nil
	case Uint8, Uint16:
		if distinctForeground(raw.Data, 2) == 1 {
			n.logger.Warn("only one label found other than background, relabeling",
				"type", raw.Type, "width", raw.Width, "height", raw.Height)
			return n.relabel(raw), nil
		}
	default:
		n.logger.Warn("mask type is different than bool|uint8|uint16, using values as labels",
			"type", raw.Type)
	}
	return m, nil
}

// relabel runs connected component labeling over the non-zero cells.
func (n *Normalizer) relabel(raw Raw) LabeledMask {
	binary := make([]bool, len(raw.Data))
	for i, v := range raw.Data {
		binary[i] = v > 0
	}
	return n.labeler.Label(binary, raw.Width, raw.Height, n.conn)
}

// distinctForeground counts distinct non-zero values, stopping once limit is reached.
func distinctForeground(data []uint32, limit int) int {
	seen := make(map[uint32]struct{}, limit)
	for _, v := range data {
		if v == 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}
