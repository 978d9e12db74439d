// Package mesh rewrites the texture coordinates of line-oriented mesh files
// (Wavefront OBJ and similar) so they address a merged texture atlas.
//
// A file is processed in one forward pass. An "o <tag>" line sets the
// current tag; every following "vt x y" line is translated through the
// atlas using the texture the tag resolves to. All other lines are copied
// unchanged apart from line endings, which are normalized to "\n".
package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"texture-atlas/internal/atlas"
)

var (
	// ErrUndefinedTag means a vt line appeared before any o line.
	ErrUndefinedTag = errors.New("mesh: texture coordinate before any object tag")
	// ErrUnknownTag means the current tag has no texture.
	ErrUnknownTag = errors.New("mesh: no texture for tag")
)

// Translator remaps a coordinate given the texture it belonged to.
// *atlas.Atlas satisfies it.
type Translator interface {
	Translate(c atlas.Coord, sourcePath string) (atlas.Coord, error)
}

// Stats summarizes one rewrite.
type Stats struct {
	Lines     int
	Rewritten int
	Tags      []string // distinct object tags, sorted
}

const maxLineSize = 1 << 20

// Rewrite copies r to w, translating every vt line.
func Rewrite(r io.Reader, w io.Writer, tr Translator, tags TagResolver) (Stats, error) {
	var st Stats
	seen := make(map[string]struct{})
	tag, haveTag := "", false

	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	for sc.Scan() {
		st.Lines++
		line := strings.TrimSuffix(sc.Text(), "\r")
		fields := strings.Fields(line)

		if len(fields) == 0 || fields[0] != "vt" {
			if len(fields) > 0 && fields[0] == "o" {
				tag, haveTag = "", true
				if len(fields) > 1 {
					tag = fields[1]
				}
				seen[tag] = struct{}{}
			}
			bw.WriteString(line)
			bw.WriteByte('\n')
			continue
		}

		if !haveTag {
			return st, fmt.Errorf("%w (line %d)", ErrUndefinedTag, st.Lines)
		}
		out, err := rewriteVT(fields, tag, tr, tags)
		if err != nil {
			return st, fmt.Errorf("mesh: line %d: %w", st.Lines, err)
		}
		bw.WriteString(out)
		bw.WriteByte('\n')
		st.Rewritten++
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("mesh: read: %w", err)
	}

	st.Tags = make([]string, 0, len(seen))
	for t := range seen {
		st.Tags = append(st.Tags, t)
	}
	sort.Strings(st.Tags)

	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("mesh: write: %w", err)
	}
	return st, nil
}

func rewriteVT(fields []string, tag string, tr Translator, tags TagResolver) (string, error) {
	if len(fields) < 3 {
		return "", fmt.Errorf("vt needs two coordinates, got %d", len(fields)-1)
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", fmt.Errorf("parse vt: %w", err)
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return "", fmt.Errorf("parse vt: %w", err)
	}

	path, ok := tags.ResolvePath(tag)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownTag, tag)
	}
	c, err := tr.Translate(atlas.Coord{X: x, Y: y}, path)
	if err != nil {
		return "", fmt.Errorf("tag %q: %w", tag, err)
	}

	parts := append([]string{"vt", formatFloat(c.X), formatFloat(c.Y)}, fields[3:]...)
	return strings.Join(parts, " "), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RewriteFile rewrites src into dst. Output goes to a temporary file in
// dst's directory and is renamed over dst only on success, so a failed
// rewrite leaves nothing behind. src and dst may be the same file.
func RewriteFile(src, dst string, tr Translator, tags TagResolver) (Stats, error) {
	in, err := os.Open(src)
	if err != nil {
		return Stats{}, fmt.Errorf("mesh: open %s: %w", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("mesh: stat %s: %w", src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return Stats{}, fmt.Errorf("mesh: create temp for %s: %w", dst, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	st, err := Rewrite(in, tmp, tr, tags)
	if err != nil {
		return st, fmt.Errorf("%s: %w", src, err)
	}
	// CreateTemp uses 0600; the output keeps the source's permissions
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return st, fmt.Errorf("mesh: chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return st, fmt.Errorf("mesh: close %s: %w", tmp.Name(), err)
	}
	in.Close()
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return st, fmt.Errorf("mesh: rename to %s: %w", dst, err)
	}
	committed = true

	atlas.Logger().Debug("mesh rewritten",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.Int("lines", st.Lines),
		slog.Int("vt", st.Rewritten),
		slog.Int("tags", len(st.Tags)))
	return st, nil
}
