package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"texture-atlas/internal/atlas"
	"texture-atlas/internal/batch"
	"texture-atlas/internal/config"
	"texture-atlas/internal/mesh"
	"texture-atlas/internal/texture"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	texturesDir := flag.String("textures", "", "Directory of textures to merge")
	output := flag.String("output", "", "Atlas image path (default: converted/textures/<dir>.png)")
	manifest := flag.String("manifest", "", "Manifest JSON path (default: next to the atlas image)")
	outputDir := flag.String("objects", "", "Output directory for rewritten meshes (default: converted/objects)")
	tagMap := flag.String("tags", "", "JSON file mapping mesh object tags to texture paths")
	tagByName := flag.Bool("tag-by-name", false, "Resolve mesh object tags by texture file name")
	workers := flag.Int("workers", 0, "Number of mesh rewrite workers (default: NumCPU)")
	verbose := flag.Bool("v", false, "Debug logging")
	var meshes stringList
	flag.Var(&meshes, "mesh", "Mesh file to rewrite (repeatable)")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	atlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := atlas.Logger()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		TexturesDir: *texturesDir,
		OutputImage: *output,
		Manifest:    *manifest,
		Meshes:      meshes,
		OutputDir:   *outputDir,
		TagMap:      *tagMap,
		TagByName:   *tagByName,
		Workers:     *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Placement order: explicit list, else the sorted directory listing
	var index *texture.Index
	paths := cfg.Paths
	if len(paths) > 0 {
		index = texture.IndexPaths(paths)
	} else {
		var err error
		index, err = texture.BuildIndex(cfg.TexturesDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error indexing textures: %v\n", err)
			os.Exit(1)
		}
		paths = index.Paths()
	}
	log.Info("textures indexed", slog.Int("count", len(paths)))

	start := time.Now()

	a, err := atlas.Build(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building atlas: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputImage), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := a.Save(cfg.OutputImage); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving atlas: %v\n", err)
		os.Exit(1)
	}

	if err := batch.WriteManifest(cfg.Manifest, a, cfg.OutputImage); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		log.Info("manifest written", slog.String("path", cfg.Manifest))
	}

	if len(cfg.Meshes) == 0 {
		log.Info("done", slog.Duration("elapsed", time.Since(start)))
		return
	}

	var tags mesh.Chain
	if cfg.TagMap != "" {
		m, err := mesh.LoadTagMap(cfg.TagMap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading tag map: %v\n", err)
			os.Exit(1)
		}
		tags = append(tags, m)
	}
	if cfg.TagByName {
		tags = append(tags, index)
	}

	results := batch.Run(batch.Config{
		Atlas:     a,
		Tags:      tags,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
	}, cfg.Meshes)

	failed := 0
	for _, r := range results {
		if r.Success {
			log.Info("mesh rewritten", slog.String("dst", r.Dst), slog.Int("vt", r.Rewritten))
			continue
		}
		failed++
		log.Error("mesh failed", slog.String("src", r.Src), slog.String("error", r.Error))
	}

	log.Info("done",
		slog.Int("meshes", len(results)-failed),
		slog.Int("failed", failed),
		slog.Duration("elapsed", time.Since(start)))

	if failed > 0 {
		os.Exit(1)
	}
}
