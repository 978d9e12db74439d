package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"texture-atlas/internal/atlas"
)

// Manifest describes an atlas image and where each source texture landed.
type Manifest struct {
	Image  string          `json:"image"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Slots  []ManifestEntry `json:"slots"`
}

// ManifestEntry represents one placement, in input order. Pixel bounds are
// [X0,X1) x [Y0,Y1); U/V are the same bounds normalized to the atlas.
// Addressable is false for repeated paths whose coordinates translate
// through the first occurrence.
type ManifestEntry struct {
	Path        string  `json:"path"`
	X0          int     `json:"x0"`
	Y0          int     `json:"y0"`
	X1          int     `json:"x1"`
	Y1          int     `json:"y1"`
	U0          float64 `json:"u0"`
	V0          float64 `json:"v0"`
	U1          float64 `json:"u1"`
	V1          float64 `json:"v1"`
	Addressable bool    `json:"addressable"`
}

// BuildManifest collects the placements of a.
func BuildManifest(a *atlas.Atlas, image string) Manifest {
	slots := a.Slots()
	m := Manifest{
		Image:  image,
		Width:  a.Width(),
		Height: a.Height(),
		Slots:  make([]ManifestEntry, len(slots)),
	}

	seen := make(map[string]bool, len(slots))
	for i, s := range slots {
		mp := atlas.NewMapper(s.Min, s.Max)
		lo := mp.Map(atlas.Coord{X: 0, Y: 0}, m.Width, m.Height)
		hi := mp.Map(atlas.Coord{X: 1, Y: 1}, m.Width, m.Height)
		m.Slots[i] = ManifestEntry{
			Path:        s.Path,
			X0:          s.Min.Col,
			Y0:          s.Min.Row,
			X1:          s.Max.Col,
			Y1:          s.Max.Row,
			U0:          lo.X,
			V0:          lo.Y,
			U1:          hi.X,
			V1:          hi.Y,
			Addressable: !seen[s.Path],
		}
		seen[s.Path] = true
	}
	return m
}

// WriteManifest writes the manifest of a as indented JSON.
func WriteManifest(path string, a *atlas.Atlas, image string) error {
	data, err := json.MarshalIndent(BuildManifest(a, image), "", "  ")
	if err != nil {
		return fmt.Errorf("batch: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
