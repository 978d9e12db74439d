package atlas

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
)

// ErrUnknownSource is returned by Translate for a path that was never
// registered.
var ErrUnknownSource = errors.New("atlas: unknown source image")

// Slot is the pixel rectangle one input image occupies, Max exclusive.
type Slot struct {
	Path string
	Min  Corner
	Max  Corner
}

// Atlas is the merged image plus one Mapper per distinct source path.
// It is not modified after Build returns.
type Atlas struct {
	buf     *Buffer
	mappers map[string]Mapper
	slots   []Slot
}

// Translate remaps c, given in the unit square of sourcePath, into the
// merged image's normalized space.
func (a *Atlas) Translate(c Coord, sourcePath string) (Coord, error) {
	m, ok := a.mappers[sourcePath]
	if !ok {
		return Coord{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourcePath)
	}
	return m.Map(c, a.buf.Width, a.buf.Height), nil
}

// Mapper returns the mapper registered for path.
func (a *Atlas) Mapper(path string) (Mapper, bool) {
	m, ok := a.mappers[path]
	return m, ok
}

// Paths returns the addressable source paths, sorted.
func (a *Atlas) Paths() []string {
	out := make([]string, 0, len(a.mappers))
	for p := range a.mappers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Slots returns every placement in input order, duplicates included.
func (a *Atlas) Slots() []Slot {
	return append([]Slot(nil), a.slots...)
}

// Image returns the merged buffer. Callers must not modify it.
func (a *Atlas) Image() *Buffer { return a.buf }

// Width and Height of the merged image in pixels.
func (a *Atlas) Width() int  { return a.buf.Width }
func (a *Atlas) Height() int { return a.buf.Height }

// Save encodes the merged image to path, chosen by extension
// (.png .jpg .jpeg .gif .bmp .tif .tiff .webp). The directory must exist.
// A failed save leaves the Atlas usable.
func (a *Atlas) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("atlas: create %s: %w", path, err)
	}

	if err := a.Encode(f, filepath.Ext(path)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("atlas: save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("atlas: close %s: %w", path, err)
	}

	Logger().Info("atlas saved",
		slog.String("path", path),
		slog.Int("width", a.buf.Width),
		slog.Int("height", a.buf.Height))
	return nil
}

// Encode writes the merged image in the format named by ext.
func (a *Atlas) Encode(w io.Writer, ext string) error {
	if strings.EqualFold(ext, ".webp") {
		return nativewebp.Encode(w, a.buf, nil)
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return err
	}
	return imaging.Encode(w, a.buf, format)
}
