// Package render turns an indexed density grid and a medium into an image
// with a tile-parallel Monte-Carlo integrator.
package render

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/medium"
)

var logger = logrus.WithField("component", "render")

// Renderer renders one image. Integrator and Camera are shared read-only by
// every tile.
type Renderer struct {
	Integrator *Integrator
	Camera     *Camera
	Width      int
	Height     int
	Spp        int
	TileSize   int
	// Workers caps concurrent tiles; <= 0 uses GOMAXPROCS.
	Workers int
	Seed    int64
}

// Summary describes a finished render.
type Summary struct {
	RunID         string                  `json:"runId"`
	Rays          uint64                  `json:"rays"`
	Events        map[medium.Event]uint64 `json:"-"`
	Elapsed       time.Duration           `json:"elapsed"`
	Tiles         int                     `json:"tiles"`
	TileMean      time.Duration           `json:"tileMean"`
	TileP95       time.Duration           `json:"tileP95"`
	MeanLuminance float64                 `json:"meanLuminance"`
}

type tile struct {
	x0, y0, x1, y1 int
}

func (r *Renderer) tiles() []tile {
	ts := r.TileSize
	if ts <= 0 {
		ts = TileSize
	}
	var out []tile
	for y := 0; y < r.Height; y += ts {
		for x := 0; x < r.Width; x += ts {
			out = append(out, tile{x, y, min(x+ts, r.Width), min(y+ts, r.Height)})
		}
	}
	return out
}

// tileSeed gives every tile an independent, reproducible stream.
func tileSeed(seed int64, tile int) int64 {
	return seed ^ int64(uint64(tile)*0x9e3779b97f4a7c15)
}

// Render traces every pixel. Cancelling ctx stops the tiles between rows
// and returns the context error.
func (r *Renderer) Render(ctx context.Context) (*Image, *Summary, error) {
	if r.Width <= 0 || r.Height <= 0 || r.Spp <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "render %dx%d at %d spp", r.Width, r.Height, r.Spp)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	runID := uuid.New().String()
	log := logger.WithField("run", runID)

	img := NewImage(r.Width, r.Height)
	tiles := r.tiles()
	tallies := make([]medium.Tally, len(tiles))
	durations := make([]float64, len(tiles))
	var done atomic.Int64

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, t := range tiles {
		eg.Go(func() error {
			t0 := time.Now()
			if err := r.renderTile(ctx, t, tileSeed(r.Seed, i), img, &tallies[i]); err != nil {
				return err
			}
			durations[i] = time.Since(t0).Seconds()
			tileSeconds.Observe(durations[i])

			n := done.Add(1)
			if step := max(1, len(tiles)/10); n%int64(step) == 0 {
				log.WithField("percent", 100*n/int64(len(tiles))).Info("render progress")
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, "render")
	}
	elapsed := time.Since(start)
	renderSeconds.Observe(elapsed.Seconds())

	var tally medium.Tally
	for i := range tallies {
		tally.Merge(&tallies[i])
	}
	sum := &Summary{
		RunID:   runID,
		Rays:    uint64(r.Width * r.Height * r.Spp),
		Events:  make(map[medium.Event]uint64),
		Elapsed: elapsed,
		Tiles:   len(tiles),
	}
	raysTotal.Add(float64(sum.Rays))
	for _, e := range medium.Events() {
		sum.Events[e] = tally.Count(e)
		eventsTotal.WithLabelValues(e.String()).Add(float64(tally.Count(e)))
	}
	if mean, err := stats.Mean(durations); err == nil {
		sum.TileMean = time.Duration(mean * float64(time.Second))
	}
	if p95, err := stats.Percentile(durations, 95); err == nil {
		sum.TileP95 = time.Duration(p95 * float64(time.Second))
	}
	lum := make(stats.Float64Data, len(img.Pix))
	for i, c := range img.Pix {
		lum[i] = c.Luminance()
	}
	if mean, err := lum.Mean(); err == nil {
		sum.MeanLuminance = mean
	}

	log.WithFields(logrus.Fields{
		"elapsed":   elapsed,
		"rays":      sum.Rays,
		"tileMean":  sum.TileMean,
		"tileP95":   sum.TileP95,
		"scattered": sum.Events[medium.Scattered],
		"absorbed":  sum.Events[medium.Absorbed],
	}).Info("render finished")
	return img, sum, nil
}

// renderTile fills one tile into a local buffer and copies it out. Tiles do
// not overlap, so the copy needs no locking.
func (r *Renderer) renderTile(ctx context.Context, t tile, seed int64, img *Image, tally *medium.Tally) error {
	rng := rand.New(rand.NewSource(seed))
	w := t.x1 - t.x0
	buf := make([]medium.RGB, w*(t.y1-t.y0))
	inv := 1 / float64(r.Spp)
	for y := t.y0; y < t.y1; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := t.x0; x < t.x1; x++ {
			var acc medium.RGB
			for s := 0; s < r.Spp; s++ {
				ray := r.Camera.Ray(x, y, rng.Float64(), rng.Float64())
				acc = acc.Add(r.Integrator.Li(ray, rng, tally))
			}
			buf[(y-t.y0)*w+(x-t.x0)] = acc.Scale(inv)
		}
	}
	for y := t.y0; y < t.y1; y++ {
		copy(img.Pix[y*img.Width+t.x0:y*img.Width+t.x1], buf[(y-t.y0)*w:(y-t.y0+1)*w])
	}
	return nil
}
