package texture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Index lists texture files and maps lowercase stems to paths for name
// lookups. OZT files take priority over OZJ for the same stem (alpha
// channel); other files sharing a stem all stay listed.
type Index struct {
	entries map[string]string   // stem.lower() → full path
	files   map[string]struct{} // every indexed path
}

func newIndex() *Index {
	return &Index{
		entries: make(map[string]string),
		files:   make(map[string]struct{}),
	}
}

// BuildIndex indexes every file in dir that LoadTexture can decode.
// Subdirectories are not descended into.
func BuildIndex(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("texture: read dir %s: %w", dir, err)
	}

	idx := newIndex()
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		idx.add(filepath.Join(dir, e.Name()))
	}
	return idx, nil
}

// IndexPaths indexes an explicit list of texture paths.
func IndexPaths(paths []string) *Index {
	idx := newIndex()
	for _, p := range paths {
		idx.add(p)
	}
	return idx
}

func (idx *Index) add(path string) {
	idx.files[path] = struct{}{}
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if existing, exists := idx.entries[stem]; !exists || preferred(path, existing) {
		idx.entries[stem] = path
	}
}

// preferred reports whether a should replace b for the same stem.
func preferred(a, b string) bool {
	ea := strings.ToLower(filepath.Ext(a))
	eb := strings.ToLower(filepath.Ext(b))
	switch {
	case ea == ".ozt" && eb == ".ozj":
		return true
	case ea == ".ozj" && eb == ".ozt":
		return false
	}
	return a < b
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directory prefixes and extensions in name are ignored.
func (idx *Index) ResolvePath(name string) (string, bool) {
	// Strip path prefix (e.g., "Monsters\\texture\\foo.jpg" → "foo")
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Paths returns the indexed paths sorted lexically. This is the atlas
// left-to-right order used by the CLI. An OZJ with an OZT sibling of the
// same name is left out.
func (idx *Index) Paths() []string {
	ozt := make(map[string]bool)
	for p := range idx.files {
		if strings.EqualFold(filepath.Ext(p), ".ozt") {
			ozt[strings.ToLower(strings.TrimSuffix(p, filepath.Ext(p)))] = true
		}
	}

	out := make([]string, 0, len(idx.files))
	for p := range idx.files {
		if strings.EqualFold(filepath.Ext(p), ".ozj") && ozt[strings.ToLower(strings.TrimSuffix(p, filepath.Ext(p)))] {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of textures Paths lists.
func (idx *Index) Len() int {
	return len(idx.Paths())
}
