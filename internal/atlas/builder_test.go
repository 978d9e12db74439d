package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

// writeSolid encodes a w x h image of c as PNG under dir and returns its path.
func writeSolid(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func assertRGB(t *testing.T, b *Buffer, row, col int, want color.NRGBA) {
	t.Helper()
	r, g, bl := b.RGB(row, col)
	if r != want.R || g != want.G || bl != want.B {
		t.Errorf("pixel (%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
			row, col, r, g, bl, want.R, want.G, want.B)
	}
}

func TestBuild_RedBlue(t *testing.T) {
	dir := t.TempDir()
	redPath := writeSolid(t, dir, "red.png", 2, 2, red)
	bluePath := writeSolid(t, dir, "blue.png", 2, 2, blue)

	a, err := Build([]string{redPath, bluePath})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if a.Width() != 4 || a.Height() != 2 {
		t.Fatalf("dimensions: got %dx%d, want 4x2", a.Width(), a.Height())
	}
	if len(a.Image().Pix) != 4*2*3 {
		t.Errorf("Pix length: got %d, want 24", len(a.Image().Pix))
	}
	assertRGB(t, a.Image(), 0, 0, red)
	assertRGB(t, a.Image(), 1, 1, red)
	assertRGB(t, a.Image(), 0, 2, blue)
	assertRGB(t, a.Image(), 1, 3, blue)

	m, ok := a.Mapper(redPath)
	if !ok {
		t.Fatal("red path not registered")
	}
	if m.Pos1 != (Corner{0, 0}) || m.Pos2 != (Corner{2, 2}) {
		t.Errorf("red anchors: got %+v-%+v, want {0 0}-{2 2}", m.Pos1, m.Pos2)
	}

	got, err := a.Translate(Coord{X: 0.5, Y: 0.5}, redPath)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !approx(got.X, 0.25) || !approx(got.Y, 0.5) {
		t.Errorf("Translate(0.5,0.5) = %+v, want {0.25 0.5}", got)
	}

	got, err = a.Translate(Coord{X: 0, Y: 0}, bluePath)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !approx(got.X, 0.5) || !approx(got.Y, 0) {
		t.Errorf("Translate(0,0) for blue = %+v, want {0.5 0}", got)
	}
}

func TestBuild_Shape(t *testing.T) {
	dir := t.TempDir()
	sizes := [][2]int{{3, 5}, {2, 1}, {4, 3}, {1, 5}}
	var paths []string
	for i, s := range sizes {
		paths = append(paths, writeSolid(t, dir, string(rune('a'+i))+".png", s[0], s[1], green))
	}

	a, err := Build(paths)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Width() != 10 || a.Height() != 5 {
		t.Errorf("dimensions: got %dx%d, want 10x5", a.Width(), a.Height())
	}

	slots := a.Slots()
	offsets := []int{0, 3, 5, 9}
	for k, s := range slots {
		if s.Min.Col != offsets[k] || s.Max.Col != offsets[k]+sizes[k][0] {
			t.Errorf("slot %d columns: got [%d,%d), want [%d,%d)",
				k, s.Min.Col, s.Max.Col, offsets[k], offsets[k]+sizes[k][0])
		}
		if s.Min.Row != 0 || s.Max.Row != sizes[k][1] {
			t.Errorf("slot %d rows: got [%d,%d), want [0,%d)", k, s.Min.Row, s.Max.Row, sizes[k][1])
		}
	}
}

func TestBuild_PlacementAndPadding(t *testing.T) {
	dir := t.TempDir()
	tall := writeSolid(t, dir, "tall.png", 2, 3, green)
	short := writeSolid(t, dir, "short.png", 3, 1, blue)

	a, err := Build([]string{tall, short})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	buf := a.Image()

	for row := 0; row < 3; row++ {
		for col := 0; col < 2; col++ {
			assertRGB(t, buf, row, col, green)
		}
	}
	for col := 2; col < 5; col++ {
		assertRGB(t, buf, 0, col, blue)
		for row := 1; row < 3; row++ {
			assertRGB(t, buf, row, col, color.NRGBA{})
		}
	}
}

func TestBuild_Dedup(t *testing.T) {
	dir := t.TempDir()
	pa := writeSolid(t, dir, "a.png", 2, 2, red)
	pb := writeSolid(t, dir, "b.png", 3, 2, blue)

	a, err := Build([]string{pa, pb, pa})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := a.Paths(); len(got) != 2 {
		t.Fatalf("addressable paths: got %v, want 2", got)
	}
	if a.Width() != 7 {
		t.Errorf("width: got %d, want 7 (duplicates keep their slot)", a.Width())
	}
	if n := len(a.Slots()); n != 3 {
		t.Errorf("slots: got %d, want 3", n)
	}

	m, _ := a.Mapper(pa)
	if m.Pos1.Col != 0 || m.Pos2.Col != 2 {
		t.Errorf("a mapper: got cols [%d,%d), want first occurrence [0,2)", m.Pos1.Col, m.Pos2.Col)
	}
	assertRGB(t, a.Image(), 0, 5, red)
	assertRGB(t, a.Image(), 1, 6, red)
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Build(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestBuild_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeSolid(t, dir, "good.png", 2, 2, red)
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
	}{
		{"corrupt file", []string{good, bad}},
		{"missing file", []string{good, filepath.Join(dir, "missing.png")}},
		{"unknown extension", []string{filepath.Join(dir, "notes.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Build(tt.paths)
			if err == nil {
				t.Fatal("Build should fail")
			}
			if a != nil {
				t.Error("Build returned a partial atlas")
			}
		})
	}
}

func TestBuild_AlphaDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeSolid(t, dir, "clear.png", 1, 1, color.NRGBA{200, 10, 20, 0})

	a, err := Build([]string{path})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertRGB(t, a.Image(), 0, 0, color.NRGBA{200, 10, 20, 255})
}

func TestBuild_AlphaDropped16Bit(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	img.SetNRGBA64(0, 0, color.NRGBA64{R: 0xffff, B: 0x4000, A: 0})

	path := filepath.Join(t.TempDir(), "deep.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a, err := Build([]string{path})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assertRGB(t, a.Image(), 0, 0, color.NRGBA{255, 0, 0x40, 255})
}

type countingLoader struct {
	imgs  map[string]*image.NRGBA
	calls map[string]int
}

func (l *countingLoader) Load(path string) (*image.NRGBA, error) {
	l.calls[path]++
	img, ok := l.imgs[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return img, nil
}

func TestBuildFrom_Loader(t *testing.T) {
	l := &countingLoader{
		imgs: map[string]*image.NRGBA{
			"a": image.NewNRGBA(image.Rect(0, 0, 2, 1)),
			"b": image.NewNRGBA(image.Rect(0, 0, 1, 4)),
		},
		calls: make(map[string]int),
	}

	a, err := BuildFrom([]string{"a", "b"}, l)
	if err != nil {
		t.Fatalf("BuildFrom failed: %v", err)
	}
	if a.Width() != 3 || a.Height() != 4 {
		t.Errorf("dimensions: got %dx%d, want 3x4", a.Width(), a.Height())
	}

	_, err = BuildFrom([]string{"a", "c"}, l)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("BuildFrom error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestTranslate_UnknownSource(t *testing.T) {
	dir := t.TempDir()
	a, err := Build([]string{writeSolid(t, dir, "a.png", 1, 1, red)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_, err = a.Translate(Coord{}, filepath.Join(dir, "other.png"))
	if !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Translate error = %v, want ErrUnknownSource", err)
	}
}
