package render

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// EncodeSlicesGIF writes an animated GIF with one frame per Z slice of the
// grid's density. Each slice is normalised by its own maximum; delay is in
// 100ths of a second.
func EncodeSlicesGIF(w io.Writer, g *volume.Grid, delay int, gamma float64) error {
	Nx, Ny, Nz := g.Size[0], g.Size[1], g.Size[2]
	out := &gif.GIF{
		Image: make([]*image.Paletted, 0, Nz),
		Delay: make([]int, 0, Nz),
	}
	rgba := image.NewNRGBA(image.Rect(0, 0, Nx, Ny))

	// helper: scalar → 0..255 with gamma
	toByte := func(v, scale float64) uint8 {
		if v <= 0 {
			return 0
		}
		n := v * scale
		if n > 1 {
			n = 1
		}
		if gamma != 1 {
			n = math.Pow(n, 1.0/gamma)
		}
		return uint8(math.Round(n * 255))
	}

	for k := 0; k < Nz; k++ {
		if k%max(1, Nz/10) == 0 {
			logger.WithFields(logrus.Fields{"slice": k, "percent": 100 * (k + 1) / Nz}).Debug("gif progress")
		}
		sliceMax := 0.0
		for j := 0; j < Ny; j++ {
			for i := 0; i < Nx; i++ {
				if v := float64(g.At(i, j, k)); v > sliceMax {
					sliceMax = v
				}
			}
		}
		if sliceMax == 0 {
			sliceMax = 1 // avoid div-by-zero, will be black anyway
		}
		scale := 1.0 / sliceMax

		// flip Y so up is up
		for j := 0; j < Ny; j++ {
			rowOff := (Ny - 1 - j) * rgba.Stride
			for i := 0; i < Nx; i++ {
				v := toByte(float64(g.At(i, j, k)), scale)
				p := rowOff + i*4
				rgba.Pix[p+0] = v
				rgba.Pix[p+1] = v
				rgba.Pix[p+2] = v
				rgba.Pix[p+3] = 255
			}
		}

		pimg := image.NewPaletted(rgba.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), rgba, image.Point{})
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}
	return errors.Wrap(gif.EncodeAll(w, out), "encode gif")
}

// SaveSlicesGIF writes EncodeSlicesGIF output to path.
func SaveSlicesGIF(path string, g *volume.Grid, delay int, gamma float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create gif")
	}
	defer f.Close()
	return EncodeSlicesGIF(f, g, delay, gamma)
}
