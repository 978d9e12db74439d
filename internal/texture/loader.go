package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const (
	ozjHeaderSize = 24 // OZJ: 24-byte header + JPEG data
	oztHeaderSize = 4  // OZT: 4-byte header + TGA data
)

type decodeFunc func(io.Reader) (image.Image, error)

// decoders is keyed by lowercase extension. TGA has no magic number, so
// formats are picked by extension instead of image.Decode sniffing.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
	".ozj":  jpeg.Decode,
	".ozt":  tga.Decode,
}

// Supported reports whether path has an extension LoadTexture can decode.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadTexture reads an image file and returns it as NRGBA.
func LoadTexture(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("texture: unknown extension: %q", ext)
	}

	switch ext {
	case ".ozj":
		if len(raw) <= ozjHeaderSize {
			return nil, fmt.Errorf("texture: OZJ too short: %s", path)
		}
		raw = raw[ozjHeaderSize:]
	case ".ozt":
		if len(raw) <= oztHeaderSize {
			return nil, fmt.Errorf("texture: OZT too short: %s", path)
		}
		raw = raw[oztHeaderSize:]
	}

	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to NRGBA anchored at the origin. Colour
// samples of transparent pixels are kept, never premultiplied away.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		// No alpha, premultiplication is a no-op
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.SetNRGBA(x, y, straightNRGBA(src.At(b.Min.X+x, b.Min.Y+y)))
			}
		}
	}
	return dst
}

// straightNRGBA converts c to 8-bit non-premultiplied colour. Colours that
// are already non-premultiplied are narrowed directly; going through
// RGBA() would zero the channels of fully transparent pixels.
func straightNRGBA(c color.Color) color.NRGBA {
	switch c := c.(type) {
	case color.NRGBA:
		return c
	case color.NRGBA64:
		return color.NRGBA{uint8(c.R >> 8), uint8(c.G >> 8), uint8(c.B >> 8), uint8(c.A >> 8)}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
