package render

import (
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/medium"
)

// Image is a linear radiance framebuffer, row-major from the top-left.
type Image struct {
	Width, Height int
	Pix           []medium.RGB
}

// NewImage allocates a black image.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]medium.RGB, w*h)}
}

// At returns pixel (x, y).
func (im *Image) At(x, y int) medium.RGB { return im.Pix[y*im.Width+x] }

// toU16 maps a linear value to [0..65535] with gamma.
func toU16(v, gamma float64) uint16 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		v = 1
	}
	if gamma != 1 {
		v = math.Pow(v, 1.0/gamma)
	}
	x := math.Round(v * 65535.0)
	if x > 65535 {
		return 65535
	}
	return uint16(x)
}

// NRGBA64 converts the image with gamma encoding, clamping to [0,1].
func (im *Image) NRGBA64(gamma float64) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, im.Width, im.Height))
	const pxBytes = 8 // 4 channels * 2 bytes/channel
	for y := 0; y < im.Height; y++ {
		rowOff := y * img.Stride
		for x := 0; x < im.Width; x++ {
			c := im.At(x, y)
			r, g, b := toU16(c.R, gamma), toU16(c.G, gamma), toU16(c.B, gamma)
			p := rowOff + x*pxBytes
			// NRGBA64 stores big-endian uint16 per channel: R, G, B, A.
			img.Pix[p+0] = uint8(r >> 8)
			img.Pix[p+1] = uint8(r)
			img.Pix[p+2] = uint8(g >> 8)
			img.Pix[p+3] = uint8(g)
			img.Pix[p+4] = uint8(b >> 8)
			img.Pix[p+5] = uint8(b)
			img.Pix[p+6] = 0xFF
			img.Pix[p+7] = 0xFF
		}
	}
	return img
}

// EncodePNG16 writes a lossless 16-bit PNG.
func (im *Image) EncodePNG16(w io.Writer, gamma float64) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return errors.Wrap(enc.Encode(w, im.NRGBA64(gamma)), "encode png")
}

// SavePNG16 writes the image to path, creating parent directories.
func (im *Image) SavePNG16(path string, gamma float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	if err := im.EncodePNG16(f, gamma); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close png")
}
