package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds all configurable paths and atlas settings.
type Config struct {
	// Inputs
	TexturesDir string   `json:"textures_dir"`
	Paths       []string `json:"paths"` // explicit left-to-right order; overrides TexturesDir listing

	// Outputs
	OutputImage string `json:"output_image"`
	Manifest    string `json:"manifest"`

	// Mesh rewriting
	Meshes    []string `json:"meshes"`
	OutputDir string   `json:"output_dir"`
	TagMap    string   `json:"tag_map"`
	TagByName bool     `json:"tag_by_name"`

	Workers int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	TexturesDir string
	OutputImage string
	Manifest    string
	Meshes      []string
	OutputDir   string
	TagMap      string
	TagByName   bool
	Workers     int
}

// Resolve applies flags and fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.TexturesDir != "" {
		c.TexturesDir = flags.TexturesDir
	}
	if flags.OutputImage != "" {
		c.OutputImage = flags.OutputImage
	}
	if flags.Manifest != "" {
		c.Manifest = flags.Manifest
	}
	if len(flags.Meshes) > 0 {
		c.Meshes = flags.Meshes
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TagMap != "" {
		c.TagMap = flags.TagMap
	}
	if flags.TagByName {
		c.TagByName = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputImage == "" {
		c.OutputImage = filepath.Join("converted", "textures", atlasName(c.TexturesDir)+".png")
	}
	if c.Manifest == "" {
		c.Manifest = strings.TrimSuffix(c.OutputImage, filepath.Ext(c.OutputImage)) + ".json"
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join("converted", "objects")
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports configuration that cannot produce an atlas.
func (c *Config) Validate() error {
	if c.TexturesDir == "" && len(c.Paths) == 0 {
		return fmt.Errorf("config: no textures: set textures_dir or paths")
	}
	if len(c.Meshes) > 0 && c.TagMap == "" && !c.TagByName {
		return fmt.Errorf("config: meshes need tag_map or tag_by_name")
	}
	return nil
}

func atlasName(dir string) string {
	name := filepath.Base(filepath.Clean(dir))
	if dir == "" || name == "." || name == string(filepath.Separator) {
		return "atlas"
	}
	return name
}
