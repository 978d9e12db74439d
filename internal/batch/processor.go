package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"texture-atlas/internal/atlas"
	"texture-atlas/internal/mesh"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Atlas     mesh.Translator
	Tags      mesh.TagResolver
	OutputDir string
	Workers   int
}

// Result holds the outcome of rewriting one mesh file.
type Result struct {
	Src       string
	Dst       string
	Lines     int
	Rewritten int
	Success   bool
	Error     string
}

// Run rewrites every mesh file into cfg.OutputDir using a worker pool.
// Files are independent; each rewrite is a single sequential pass.
// Results are returned in input order. A mesh whose output name is already
// claimed by an earlier one fails without being written.
func Run(cfg Config, meshes []string) []Result {
	total := len(meshes)
	results := make([]Result, total)
	if total == 0 {
		return results
	}

	var queue []int
	claimed := make(map[string]string, total)
	for i, src := range meshes {
		dst := outputPath(cfg, src)
		key := strings.ToLower(dst) // case-insensitive filesystems
		if first, ok := claimed[key]; ok {
			results[i] = Result{
				Src:   src,
				Dst:   dst,
				Error: fmt.Sprintf("output %s already written for %s", dst, first),
			}
			continue
		}
		claimed[key] = src
		queue = append(queue, i)
	}

	workers := max(1, min(cfg.Workers, total))

	var processed atomic.Int64
	start := time.Now()
	log := atlas.Logger()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					log.Info("rewriting meshes",
						slog.Int64("done", p),
						slog.Int("total", total),
						slog.Float64("per_sec", float64(p)/time.Since(start).Seconds()))
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processMesh(cfg, meshes[idx])
				processed.Add(1)
			}
		}()
	}

	for _, i := range queue {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func outputPath(cfg Config, src string) string {
	return filepath.Join(cfg.OutputDir, filepath.Base(src))
}

func processMesh(cfg Config, src string) Result {
	dst := outputPath(cfg, src)
	res := Result{Src: src, Dst: dst}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	st, err := mesh.RewriteFile(src, dst, cfg.Atlas, cfg.Tags)
	res.Lines = st.Lines
	res.Rewritten = st.Rewritten
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}
