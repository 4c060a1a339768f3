package main

import (
	"math"
	"time"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/render"
	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// gridOptions select the input grid for the subcommands that need one.
type gridOptions struct {
	path      string
	synthetic string
	size      int
	seed      int64
	fill      float64
}

func (o *gridOptions) installFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.path, "grid", "g", "", "Raw grid file (.raw or .raw.zst)")
	flags.StringVar(&o.synthetic, "synthetic", render.Synthetic, `Synthetic grid when no file is given ("cloud"|"sphere"|"box"|"noise"|"single")`)
	flags.IntVar(&o.size, "size", render.GridSize, "Synthetic grid extent per axis")
	flags.Int64Var(&o.seed, "seed", 1, "Synthetic grid seed")
	flags.Float64Var(&o.fill, "fill", render.NoiseFill, "Occupancy of the noise grid")
}

func (o *gridOptions) load() (*volume.Grid, error) {
	return render.LoadGrid(render.VolumeCfg{
		Path:      o.path,
		Synthetic: o.synthetic,
		Size:      o.size,
		Seed:      o.seed,
		Fill:      o.fill,
		Density:   1,
	})
}

type renderOptions struct {
	config  string
	output  string
	slices  string
	kind    string
	width   int
	height  int
	spp     int
	workers int
	seed    int64
	grid    gridOptions
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render [OPTIONS]",
		Short: "Render a density grid to a 16-bit PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := render.DefaultConfig()
			if opts.config != "" {
				var err error
				if cfg, err = render.LoadConfig(opts.config); err != nil {
					return err
				}
			}
			applyRenderFlags(cmd.Flags(), &opts, cfg)
			if err := cfg.ApplyDefaults(); err != nil {
				return err
			}
			sum, err := render.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"run":      sum.RunID,
				"elapsed":  sum.Elapsed.Round(time.Millisecond),
				"rays":     sum.Rays,
				"output":   cfg.Output,
				"tileMean": sum.TileMean,
			}).Info("done")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "Render configuration file (.json or .toml)")
	flags.StringVarP(&opts.output, "output", "o", render.Output, "Output PNG path")
	flags.StringVar(&opts.slices, "slices", "", "Also write a GIF of the density slices")
	flags.StringVar(&opts.kind, "index", string(volume.KindBucketed), `Index kind ("bucketed"|"brick")`)
	flags.IntVar(&opts.width, "width", render.Width, "Image width")
	flags.IntVar(&opts.height, "height", render.Height, "Image height")
	flags.IntVar(&opts.spp, "spp", render.Spp, "Samples per pixel")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent tiles (0 = GOMAXPROCS)")
	flags.Int64Var(&opts.seed, "render-seed", 0, "Sampler seed")
	opts.grid.installFlags(flags)
	return cmd
}

// applyRenderFlags overrides config fields with explicitly set flags.
func applyRenderFlags(flags *pflag.FlagSet, o *renderOptions, cfg *render.Config) {
	set := func(name string) bool { return flags.Changed(name) }
	if set("output") {
		cfg.Output = o.output
	}
	if set("slices") {
		cfg.SlicesOut = o.slices
	}
	if set("index") {
		cfg.Index.Kind = volume.Kind(o.kind)
	}
	if set("width") {
		cfg.Width = o.width
	}
	if set("height") {
		cfg.Height = o.height
	}
	if set("spp") {
		cfg.Spp = o.spp
	}
	if set("workers") {
		cfg.Workers = o.workers
	}
	if set("render-seed") {
		cfg.Seed = o.seed
	}
	if set("grid") {
		cfg.Volume.Path = o.grid.path
	}
	if set("synthetic") {
		cfg.Volume.Path = ""
		cfg.Volume.Synthetic = o.grid.synthetic
	}
	if set("size") {
		cfg.Volume.Size = o.grid.size
	}
	if set("seed") {
		cfg.Volume.Seed = o.grid.seed
	}
	if set("fill") {
		cfg.Volume.Fill = o.grid.fill
	}
}

type indexOptions struct {
	index  volume.Config
	kind   string
	dump   bool
	asJSON bool
	probe  int
	save   string
	grid   gridOptions
}

func newIndexCommand() *cobra.Command {
	var opts indexOptions
	cmd := &cobra.Command{
		Use:   "index [OPTIONS]",
		Short: "Build a spatial index over a grid and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, opts)
		},
	}
	flags := cmd.Flags()
	def := volume.DefaultConfig()
	flags.StringVar(&opts.kind, "kind", string(def.Kind), `Index kind ("bucketed"|"brick")`)
	flags.IntVar(&opts.index.Arity, "arity", def.Arity, "Bucketed tree arity (2, 4 or 8)")
	flags.IntVar(&opts.index.BucketCapacity, "capacity", def.BucketCapacity, "Keys per bucket")
	flags.IntVar(&opts.index.BrickSize, "brick", def.BrickSize, "Brick edge length in cells")
	flags.IntVar(&opts.index.Workers, "workers", 0, "Brick builder workers (0 = GOMAXPROCS)")
	flags.BoolVar(&opts.dump, "dump", false, "Print the tree")
	flags.BoolVar(&opts.asJSON, "json", false, "Print statistics as JSON")
	flags.IntVar(&opts.probe, "probe", 0, "Trace this many axis-aligned probe rays and report the hit rate")
	flags.StringVar(&opts.save, "save", "", "Write the grid to this raw file")
	opts.grid.installFlags(flags)
	return cmd
}

func runIndex(cmd *cobra.Command, opts indexOptions) error {
	kind, err := volume.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	opts.index.Kind = kind
	g, err := opts.grid.load()
	if err != nil {
		return err
	}
	if opts.save != "" {
		if err := volume.WriteRaw(opts.save, g); err != nil {
			return err
		}
	}

	start := time.Now()
	idx, err := volume.Build(g, opts.index)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	st := idx.Stats()

	out := cmd.OutOrStdout()
	if opts.asJSON {
		b, err := json.Marshal(struct {
			volume.Stats
			Size      [3]int `json:"size"`
			ElapsedMS int64  `json:"elapsedMs"`
		}{st, g.Size, elapsed.Milliseconds()})
		if err != nil {
			return errors.Wrap(err, "marshal stats")
		}
		_, err = out.Write(append(b, '\n'))
		return err
	}

	cmd.Printf("kind=%s size=%v occupied=%d nodes=%d leaves=%d empty=%d depth=%d memory=%s build=%s\n",
		st.Kind, g.Size, st.Occupied, st.Nodes, st.Leaves, st.Empty, st.Depth,
		units.BytesSize(float64(st.Bytes)), elapsed.Round(time.Microsecond))
	if opts.probe > 0 {
		hits := probe(idx, opts.probe)
		cmd.Printf("probe rays=%d hits=%d\n", opts.probe, hits)
	}
	if opts.dump {
		return volume.Dump(out, idx)
	}
	return nil
}

// probe traces n rays along +z through evenly spaced xy positions.
func probe(idx volume.Index, n int) int {
	g := idx.Grid()
	side := int(math.Ceil(math.Sqrt(float64(n))))
	hits := 0
	for i := 0; i < n; i++ {
		x := (float64(i%side) + 0.5) / float64(side) * float64(g.Size[0])
		y := (float64(i/side) + 0.5) / float64(side) * float64(g.Size[1])
		h := idx.Traverse(volume.Ray{Origin: volume.Vec3{X: x, Y: y, Z: -1}, Dir: volume.Vec3{Z: 1}}, math.Inf(1))
		if h.Valid() {
			hits++
		}
	}
	return hits
}

type slicesOptions struct {
	output string
	delay  int
	gamma  float64
	grid   gridOptions
}

func newSlicesCommand() *cobra.Command {
	var opts slicesOptions
	cmd := &cobra.Command{
		Use:   "slices [OPTIONS]",
		Short: "Write an animated GIF of the grid's Z slices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.grid.load()
			if err != nil {
				return err
			}
			if err := render.SaveSlicesGIF(opts.output, g, opts.delay, opts.gamma); err != nil {
				return err
			}
			logrus.WithField("path", opts.output).Info("saved density slices")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "slices.gif", "Output GIF path")
	flags.IntVar(&opts.delay, "delay", render.GIFDelay, "Frame delay in 100ths of a second")
	flags.Float64Var(&opts.gamma, "gamma", 1, "Display gamma")
	opts.grid.installFlags(flags)
	return cmd
}
