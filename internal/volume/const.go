package volume

const (
	DefaultArity          = 2
	DefaultBucketCapacity = 64
	DefaultBrickSize      = 8

	// keys per worker task when building brick tree internal nodes
	brickChunk = 4096
)
