package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/anime-filter/internal/imaging"
)

// Scan lists the regular files in dir with a supported image extension,
// sorted by name. Subdirectories are not descended into.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !imaging.SupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
