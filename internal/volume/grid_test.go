package volume

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridIndexCoord(t *testing.T) {
	g, err := NewGrid(3, 4, 5)
	require.NoError(t, err)
	require.Equal(t, 60, g.Cells())
	require.Equal(t, 1+3*2+12*3, g.Index(1, 2, 3))
	for i := 0; i < g.Cells(); i++ {
		x, y, z := g.Coord(i)
		require.Equal(t, i, g.Index(x, y, z))
	}
}

func TestGridRejectsBadExtent(t *testing.T) {
	for _, size := range [][3]int{{0, 1, 1}, {1, -2, 1}, {1, 1, MaxDim + 1}} {
		_, err := NewGrid(size[0], size[1], size[2])
		require.True(t, errors.Is(err, ErrInvalidGrid), "size %v", size)
	}
	_, err := WrapGrid([3]int{2, 2, 2}, make([]float32, 7))
	require.True(t, errors.Is(err, ErrInvalidGrid))
}

func TestGridOccupiedBounds(t *testing.T) {
	g, err := NewGrid(8, 8, 8)
	require.NoError(t, err)
	_, ok := g.OccupiedBounds()
	require.False(t, ok)

	g.Set(1, 2, 3, 0.5)
	g.Set(4, 0, 6, 2)
	b, ok := g.OccupiedBounds()
	require.True(t, ok)
	assert.Equal(t, Vec3{1, 0, 3}, b.Min)
	assert.Equal(t, Vec3{5, 3, 7}, b.Max)
	assert.Equal(t, 2, g.Occupied())
}

func TestGridCellOf(t *testing.T) {
	g, err := NewGrid(4, 4, 4)
	require.NoError(t, err)
	x, y, z, ok := g.CellOf(Vec3{1.5, 3.99, 0})
	require.True(t, ok)
	require.Equal(t, [3]int{1, 3, 0}, [3]int{x, y, z})
	_, _, _, ok = g.CellOf(Vec3{4, 0, 0})
	require.False(t, ok)
	_, _, _, ok = g.CellOf(Vec3{-0.1, 0, 0})
	require.False(t, ok)
}

func TestRawRoundTrip(t *testing.T) {
	g, err := Noise(5, 3, 7, 0.4, 11)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeRaw(&buf, g))
	require.Equal(t, 12+4*g.Cells(), buf.Len())
	got, err := DecodeRaw(&buf)
	require.NoError(t, err)
	require.Equal(t, g.Size, got.Size)
	require.Equal(t, g.Data, got.Data)
}

func TestRawFiles(t *testing.T) {
	g, err := Sphere(16, 16, 16, 0.8, 0.25)
	require.NoError(t, err)
	dir := t.TempDir()
	for _, name := range []string{"cloud.raw", "nested/cloud.raw.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteRaw(path, g))
		got, err := ReadRaw(path)
		require.NoError(t, err, name)
		require.Equal(t, g.Data, got.Data, name)
	}
}

func TestDecodeRawTruncated(t *testing.T) {
	g, err := Single(4, 1, 1, 1, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, EncodeRaw(&buf, g))
	_, err = DecodeRaw(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	require.Error(t, err)

	// header with an impossible extent
	_, err = DecodeRaw(bytes.NewReader([]byte{0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}))
	require.True(t, errors.Is(err, ErrInvalidGrid))
}

func TestSyntheticGrids(t *testing.T) {
	g, err := Block([3]int{6, 6, 6}, [3]int{1, 2, 3}, [3]int{3, 4, 9}, 1)
	require.NoError(t, err)
	require.Equal(t, 2*2*3, g.Occupied())

	a, err := Noise(8, 8, 8, 0.3, 5)
	require.NoError(t, err)
	b, err := Noise(8, 8, 8, 0.3, 5)
	require.NoError(t, err)
	require.Equal(t, a.Data, b.Data)
	for _, v := range a.Data {
		require.True(t, v >= 0 && v <= 1)
	}

	c, err := Cloud(16, 1)
	require.NoError(t, err)
	require.Positive(t, c.Occupied())
	require.Zero(t, c.At(0, 0, 0))
}
