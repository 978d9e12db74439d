package atlas

import (
	"image"
	"image/color"

	"texture-atlas/internal/texture"
)

// Buffer is an 8-bit RGB pixel buffer stored row-major, 3 bytes per pixel.
// It implements image.Image so it can be handed straight to encoders.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGB interleaved, len = W*H*3
}

// NewBuffer allocates a zero-filled (black) buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*3),
	}
}

// FromImage converts any image to an RGB buffer. Alpha is dropped without
// compositing, so a transparent red pixel stays red.
func FromImage(src image.Image) *Buffer {
	n, ok := src.(*image.NRGBA)
	if !ok {
		n = texture.ToNRGBA(src)
	}
	b := n.Bounds()
	dst := NewBuffer(b.Dx(), b.Dy())
	for row := 0; row < dst.Height; row++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+row)
		di := row * dst.Width * 3
		for col := 0; col < dst.Width; col++ {
			copy(dst.Pix[di:di+3], n.Pix[si:si+3])
			si += 4
			di += 3
		}
	}
	return dst
}

// Offset returns the index of the pixel at (row, col) in Pix.
func (b *Buffer) Offset(row, col int) int {
	return (row*b.Width + col) * 3
}

// RGB returns the samples at (row, col).
func (b *Buffer) RGB(row, col int) (r, g, bl uint8) {
	i := b.Offset(row, col)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// SetRGB stores the samples at (row, col).
func (b *Buffer) SetRGB(row, col int, r, g, bl uint8) {
	i := b.Offset(row, col)
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
}

func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{}
	}
	r, g, bl := b.RGB(y, x)
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}
