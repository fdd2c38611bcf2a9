package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverImages returns the TIFF files in dir named *_<condition>_*.tif,
// sorted by path.
//
// The match is on the literal ".tif" extension. A directory with no matches
// yields an empty list and no error.
func DiscoverImages(dir, condition string) ([]string, error) {
	if condition == "" {
		return nil, fmt.Errorf("condition name must not be empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image directory %s is not a directory", dir)
	}

	pattern := filepath.Join(dir, "*_"+escapeGlob(condition)+"_*.tif")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// escapeGlob quotes glob metacharacters so the condition matches literally.
func escapeGlob(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
