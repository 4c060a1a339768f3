package render

// Defaults applied by LoadConfig to zero-valued fields.
const (
	Width         = 320
	Height        = 240
	Spp           = 16
	MaxBounces    = 8
	MaxSteps      = 256
	TileSize      = 32
	Gamma         = 2.2
	FovDeg        = 40
	GIFDelay      = 5 // 100ths of a second per frame
	Output        = "render.png"
	GridSize      = 64
	Synthetic     = "cloud"
	NoiseFill     = 0.2
	ShadowBudget  = 4
	ShadowCutoff  = 1e-3
	ShadowSteps   = 256
	LightStrength = 3
	PhaseName     = "hg"
	PhaseG        = 0.3
	// framing distance in grid diagonals for the automatic camera
	FrameDistance = 1.6
)
