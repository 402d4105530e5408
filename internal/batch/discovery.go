package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
)

// Filter selects input images. Include and Exclude are filepath.Match
// patterns on the base name.
type Filter struct {
	Recursive bool
	Include   []string
	Exclude   []string
}

// Discover expands args into image paths in argument order. Directories
// contribute their matching files in lexical order; with no Include patterns
// a file matches when its extension is a supported image format. Files named
// explicitly are kept unless excluded so that loading reports what is wrong
// with them.
func (f Filter) Discover(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !matchAny(arg, f.Exclude) {
				out = append(out, arg)
			}
			continue
		}
		found, err := f.walk(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

func (f Filter) walk(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != root && !f.Recursive:
			return filepath.SkipDir
		case !d.IsDir() && f.accepts(path):
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return found, nil
}

func (f Filter) accepts(path string) bool {
	if matchAny(path, f.Exclude) {
		return false
	}
	if len(f.Include) == 0 {
		return pixbuf.IsSupportedImage(path)
	}
	return matchAny(path, f.Include)
}

func matchAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
