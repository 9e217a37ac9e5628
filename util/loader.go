package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-maskeval/images"
	"github.com/pkg/errors"
)

// MaskPair represents a computed mask file and the gold mask it is evaluated against.
type MaskPair struct {
	// Name is the file stem shared by both masks.
	Name string `json:"name" yaml:"name"`
	// ComputedPath is the path to the computed mask file.
	ComputedPath string `json:"computed_path" yaml:"computed_path"`
	// GoldPath is the path to the gold mask file.
	GoldPath string `json:"gold_path" yaml:"gold_path"`
}

// LoadMaskPairs pairs the mask files of two directories by file stem.
//
// Only files with a supported mask extension are considered; the extensions of a pair
// may differ (e.g. cell-01.png against cell-01.tif).
//
// Arguments:
// - computedDir: Directory containing the computed masks.
// - goldDir: Directory containing the gold masks.
//
// Returns:
// - []MaskPair: Pairs sorted by name.
// - []string: Stems found in only one of the directories, sorted.
// - error: Error if a directory cannot be read or holds two files with the same stem.
func LoadMaskPairs(computedDir, goldDir string) ([]MaskPair, []string, error) {
	computed, err := maskFiles(computedDir)
	if err != nil {
		return nil, nil, err
	}
	gold, err := maskFiles(goldDir)
	if err != nil {
		return nil, nil, err
	}

	var pairs []MaskPair
	var unmatched []string
	for name, computedPath := range computed {
		goldPath, ok := gold[name]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		pairs = append(pairs, MaskPair{
			Name:         name,
			ComputedPath: computedPath,
			GoldPath:     goldPath,
		})
	}
	for name := range gold {
		if _, ok := computed[name]; !ok {
			unmatched = append(unmatched, name)
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Name < pairs[j].Name
	})
	sort.Strings(unmatched)

	return pairs, unmatched, nil
}

// maskFiles maps file stems to paths for every mask file in dir.
func maskFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mask directory %s", dir)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := images.FormatFromPath(entry.Name()); !ok {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if prev, dup := files[stem]; dup {
			return nil, errors.Errorf("ambiguous mask %q in %s: %s and %s", stem, dir, filepath.Base(prev), entry.Name())
		}
		files[stem] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}
