package atlas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"texture-atlas/internal/texture"
)

// ErrEmptyInput is returned when Build is called without any paths.
var ErrEmptyInput = errors.New("atlas: no input images")

// Loader decodes a texture file. texture.Cache satisfies it.
type Loader interface {
	Load(path string) (*image.NRGBA, error)
}

// Build decodes paths in order and lays them out left to right.
// Duplicate paths are decoded once but still occupy their own slot.
func Build(paths []string) (*Atlas, error) {
	return BuildFrom(paths, texture.NewCache())
}

// BuildFrom is Build with an explicit loader.
func BuildFrom(paths []string, loader Loader) (*Atlas, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyInput
	}

	bufs := make([]*Buffer, len(paths))
	for k, path := range paths {
		img, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("atlas: load %s: %w", path, err)
		}
		bufs[k] = FromImage(img)
	}

	return merge(paths, bufs), nil
}

// merge expects len(paths) == len(bufs) > 0.
func merge(paths []string, bufs []*Buffer) *Atlas {
	height, width := 0, 0
	for _, b := range bufs {
		height = max(height, b.Height)
		width += b.Width
	}

	dst := NewBuffer(width, height)
	a := &Atlas{
		buf:     dst,
		mappers: make(map[string]Mapper, len(paths)),
		slots:   make([]Slot, 0, len(paths)),
	}

	log := Logger()
	offset := 0
	for k, src := range bufs {
		path := paths[k]
		topLeft := Corner{Row: 0, Col: offset}
		bottomRight := Corner{Row: src.Height, Col: offset + src.Width}

		if _, seen := a.mappers[path]; !seen {
			a.mappers[path] = NewMapper(topLeft, bottomRight)
		}
		a.slots = append(a.slots, Slot{Path: path, Min: topLeft, Max: bottomRight})

		rowBytes := src.Width * 3
		for row := 0; row < src.Height; row++ {
			si := row * rowBytes
			di := dst.Offset(row, offset)
			copy(dst.Pix[di:di+rowBytes], src.Pix[si:si+rowBytes])
		}

		log.Debug("placed texture",
			slog.String("path", path),
			slog.Int("width", src.Width),
			slog.Int("height", src.Height),
			slog.Int("offset", offset))

		offset += src.Width
	}

	log.Info("atlas built",
		slog.Int("images", len(bufs)),
		slog.Int("width", width),
		slog.Int("height", height))

	return a
}
