package render

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/medium"
	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// ErrInvalidConfig is returned for unusable render configurations.
var ErrInvalidConfig = errors.New("invalid render config")

// VolumeCfg selects the density grid: a raw file or a synthetic generator.
type VolumeCfg struct {
	Path      string  `json:"path,omitempty" toml:"path"`
	Synthetic string  `json:"synthetic,omitempty" toml:"synthetic"`
	Size      int     `json:"size,omitempty" toml:"size"`
	Seed      int64   `json:"seed,omitempty" toml:"seed"`
	Fill      float64 `json:"fill,omitempty" toml:"fill"`
	Density   float64 `json:"density,omitempty" toml:"density"`
}

type MediumCfg struct {
	SigmaA       []float64 `json:"sigmaA" toml:"sigmaA"`
	SigmaS       []float64 `json:"sigmaS" toml:"sigmaS"`
	Emission     []float64 `json:"emission,omitempty" toml:"emission"`
	Phase        string    `json:"phase,omitempty" toml:"phase"`
	G            float64   `json:"g,omitempty" toml:"g"`
	DensityScale float64   `json:"densityScale,omitempty" toml:"densityScale"`
}

// CameraCfg is a pinhole camera in grid space. An empty position frames
// the whole grid.
type CameraCfg struct {
	Position []float64 `json:"position,omitempty" toml:"position"`
	LookAt   []float64 `json:"lookAt,omitempty" toml:"lookAt"`
	Up       []float64 `json:"up,omitempty" toml:"up"`
	FovDeg   float64   `json:"fovDeg,omitempty" toml:"fovDeg"`
}

// LightCfg is a directional light; Direction points towards the light.
type LightCfg struct {
	Direction []float64 `json:"direction" toml:"direction"`
	Color     []float64 `json:"color,omitempty" toml:"color"`
	Intensity float64   `json:"intensity,omitempty" toml:"intensity"`
}

type ShadowCfg struct {
	Budget    float64 `json:"budget,omitempty" toml:"budget"`
	Threshold float64 `json:"threshold,omitempty" toml:"threshold"`
	MaxSteps  int     `json:"maxSteps,omitempty" toml:"maxSteps"`
}

type Config struct {
	Volume     VolumeCfg     `json:"volume" toml:"volume"`
	Index      volume.Config `json:"index" toml:"index"`
	Medium     MediumCfg     `json:"medium" toml:"medium"`
	Camera     CameraCfg     `json:"camera" toml:"camera"`
	Light      LightCfg      `json:"light" toml:"light"`
	Shadow     ShadowCfg     `json:"shadow" toml:"shadow"`
	Width      int           `json:"width" toml:"width"`
	Height     int           `json:"height" toml:"height"`
	Spp        int           `json:"spp" toml:"spp"`
	MaxBounces int           `json:"maxBounces,omitempty" toml:"maxBounces"`

	// Budget is the depth budget of primary traversals; 0 means unlimited.
	Budget     float64   `json:"budget,omitempty" toml:"budget"`
	Background []float64 `json:"background,omitempty" toml:"background"`
	Gamma      float64   `json:"gamma,omitempty" toml:"gamma"`
	Seed       int64     `json:"seed,omitempty" toml:"seed"`
	TileSize   int       `json:"tileSize,omitempty" toml:"tileSize"`
	Workers    int       `json:"workers,omitempty" toml:"workers"`
	Output     string    `json:"output,omitempty" toml:"output"`
	SlicesOut  string    `json:"slicesOut,omitempty" toml:"slicesOut"`
	GIFDelay   int       `json:"gifDelay,omitempty" toml:"gifDelay"`
}

// LoadConfig reads a JSON or TOML (by ".toml" extension) config file and
// fills defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"path":  path,
		"size":  []int{cfg.Width, cfg.Height},
		"spp":   cfg.Spp,
		"index": cfg.Index.Kind,
		"gamma": cfg.Gamma,
	}).Debug("config loaded")
	return &cfg, nil
}

// DefaultConfig is the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// ApplyDefaults fills zero-valued fields and validates the result.
func (c *Config) ApplyDefaults() error {
	if c.Width <= 0 {
		c.Width = Width
	}
	if c.Height <= 0 {
		c.Height = Height
	}
	if c.Spp <= 0 {
		c.Spp = Spp
	}
	if c.MaxBounces <= 0 {
		c.MaxBounces = MaxBounces
	}
	if c.Gamma <= 0 {
		c.Gamma = Gamma
	}
	if c.TileSize <= 0 {
		c.TileSize = TileSize
	}
	if c.GIFDelay <= 0 {
		c.GIFDelay = GIFDelay
	}
	if c.Output == "" {
		c.Output = Output
	}
	if c.Volume.Path == "" && c.Volume.Synthetic == "" {
		c.Volume.Synthetic = Synthetic
	}
	if c.Volume.Size <= 0 {
		c.Volume.Size = GridSize
	}
	if c.Volume.Fill <= 0 {
		c.Volume.Fill = NoiseFill
	}
	if c.Volume.Density <= 0 {
		c.Volume.Density = 1
	}

	def := volume.DefaultConfig()
	if c.Index.Kind == "" {
		c.Index.Kind = def.Kind
	}
	if c.Index.Arity == 0 {
		c.Index.Arity = def.Arity
	}
	if c.Index.BucketCapacity == 0 {
		c.Index.BucketCapacity = def.BucketCapacity
	}
	if c.Index.BrickSize == 0 {
		c.Index.BrickSize = def.BrickSize
	}
	if _, err := volume.ParseKind(string(c.Index.Kind)); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}

	if c.Medium.SigmaA == nil {
		c.Medium.SigmaA = []float64{0.05, 0.05, 0.05}
	}
	if c.Medium.SigmaS == nil {
		c.Medium.SigmaS = []float64{0.6, 0.7, 0.8}
	}
	if c.Medium.Phase == "" {
		c.Medium.Phase = PhaseName
		c.Medium.G = PhaseG
	}
	if c.Camera.FovDeg <= 0 {
		c.Camera.FovDeg = FovDeg
	}
	if c.Camera.Up == nil {
		c.Camera.Up = []float64{0, 1, 0}
	}
	if c.Light.Direction == nil {
		c.Light.Direction = []float64{-0.5, 1, -0.3}
	}
	if c.Light.Color == nil {
		c.Light.Color = []float64{1, 1, 1}
	}
	if c.Light.Intensity <= 0 {
		c.Light.Intensity = LightStrength
	}
	if c.Background == nil {
		c.Background = []float64{0.02, 0.03, 0.05}
	}
	if c.Shadow.Budget <= 0 {
		c.Shadow.Budget = ShadowBudget
	}
	if c.Shadow.Threshold <= 0 {
		c.Shadow.Threshold = ShadowCutoff
	}
	if c.Shadow.MaxSteps <= 0 {
		c.Shadow.MaxSteps = ShadowSteps
	}

	for name, v := range map[string][]float64{
		"medium.sigmaA":   c.Medium.SigmaA,
		"medium.sigmaS":   c.Medium.SigmaS,
		"medium.emission": c.Medium.Emission,
		"camera.position": c.Camera.Position,
		"camera.lookAt":   c.Camera.LookAt,
		"camera.up":       c.Camera.Up,
		"light.direction": c.Light.Direction,
		"light.color":     c.Light.Color,
		"background":      c.Background,
	} {
		if v != nil && len(v) != 3 {
			return errors.Wrapf(ErrInvalidConfig, "%s needs 3 components, got %d", name, len(v))
		}
	}
	return nil
}

// BuildMedium converts the medium section.
func (c *Config) BuildMedium() (*medium.Medium, error) {
	p, err := medium.ParsePhase(c.Medium.Phase, c.Medium.G)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return medium.New(rgb(c.Medium.SigmaA), rgb(c.Medium.SigmaS), p, rgb(c.Medium.Emission), c.Medium.DensityScale)
}

// ShadowOptions converts the shadow section.
func (c *Config) ShadowOptions() medium.TransmittanceOptions {
	return medium.TransmittanceOptions{
		Budget:    c.Shadow.Budget,
		Threshold: c.Shadow.Threshold,
		MaxSteps:  c.Shadow.MaxSteps,
	}
}

func rgb(v []float64) medium.RGB {
	if len(v) != 3 {
		return medium.RGB{}
	}
	return medium.RGB{R: v[0], G: v[1], B: v[2]}
}

func vec(v []float64) volume.Vec3 {
	if len(v) != 3 {
		return volume.Vec3{}
	}
	return volume.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
