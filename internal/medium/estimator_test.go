package medium

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// seq replays fixed uniform numbers.
type seq struct {
	v []float64
	i int
}

func (s *seq) Float64() float64 {
	x := s.v[s.i%len(s.v)]
	s.i++
	return x
}

func mustMedium(t *testing.T, sa, ss RGB, p Phase) *Medium {
	m, err := New(sa, ss, p, RGB{}, 1)
	require.NoError(t, err)
	return m
}

var alongZ = volume.Ray{Origin: volume.Vec3{X: 1.5, Y: 1.5, Z: -5}, Dir: volume.Vec3{Z: 1}}

func TestPureAbsorber(t *testing.T) {
	m := mustMedium(t, RGB{0.5, 1, 2}, RGB{}, Phase{})
	h := volume.Hit{Entry: 6, Exit: 7, Density: 0.8, Cells: 1}
	// channel, flight (collision at entry), absorption
	it := m.Sample(alongZ, h, &seq{v: []float64{0.1, 0, 0}})
	require.Equal(t, Absorbed, it.Event)
	assert.InDelta(t, math.Exp(-0.5*0.8), it.Attenuation.R, 1e-12)
	assert.InDelta(t, math.Exp(-1*0.8), it.Attenuation.G, 1e-12)
	assert.InDelta(t, math.Exp(-2*0.8), it.Attenuation.B, 1e-12)
	assert.Equal(t, alongZ.Dir, it.Ray.Dir)
	assert.Greater(t, it.Ray.Origin.Z, 2.0)
	assert.InDelta(t, 6, it.T, 1e-12)
}

func TestPureAbsorberAlwaysAbsorbsInside(t *testing.T) {
	m := mustMedium(t, Gray(1), RGB{}, Phase{})
	h := volume.Hit{Entry: 6, Exit: 7, Density: 1, Cells: 1}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		it := m.Sample(alongZ, h, rng)
		require.Contains(t, []Event{Absorbed, Escaped}, it.Event)
		require.Equal(t, alongZ.Dir, it.Ray.Dir)
	}
}

func TestEscapedPastExit(t *testing.T) {
	m := mustMedium(t, Gray(0.1), Gray(0.1), Phase{})
	h := volume.Hit{Entry: 6, Exit: 7, Density: 1, Cells: 1}
	it := m.Sample(alongZ, h, &seq{v: []float64{0.5, 0.999999, 0}})
	require.Equal(t, Escaped, it.Event)
	require.Equal(t, Gray(1), it.Attenuation)
	require.Greater(t, it.T, h.Exit)
	require.InDelta(t, 2+ExitEpsilon, it.Ray.Origin.Z, 1e-9)
}

func TestMissEscapesUnchanged(t *testing.T) {
	m := mustMedium(t, Gray(1), Gray(1), Phase{})
	it := m.Sample(alongZ, volume.Miss(), &seq{v: []float64{0.5}})
	require.Equal(t, Escaped, it.Event)
	require.Equal(t, alongZ, it.Ray)
}

func TestPassThroughOnZeroDensity(t *testing.T) {
	m := mustMedium(t, RGB{}, Gray(2), Phase{})
	h := volume.Hit{Entry: 0, Exit: 3, Density: 0}
	it := m.Sample(alongZ, h, &seq{v: []float64{0.2, 0.1, 0.5}})
	require.Equal(t, PassThrough, it.Event)
	require.Equal(t, alongZ.Dir, it.Ray.Dir)
	require.Equal(t, Gray(1), it.Attenuation)
}

func TestScatteredAtCollision(t *testing.T) {
	m := mustMedium(t, RGB{0.25, 0.5, 0}, RGB{0.75, 0.5, 1}, Phase{Kind: HenyeyGreenstein, G: 0.6})
	h := volume.Hit{Entry: 6, Exit: 7, Density: 1, Cells: 1}
	it := m.Sample(alongZ, h, &seq{v: []float64{0.9, 0.1, 0.99, 0.3, 0.7}})
	require.Equal(t, Scattered, it.Event)
	require.InDelta(t, 1, it.Ray.Dir.Len(), 1e-9)
	require.True(t, it.T >= 6 && it.T <= 7)
	require.InDelta(t, -5+it.T, it.Ray.Origin.Z, 1e-9)
	require.Equal(t, m.Albedo(), it.Attenuation)
	require.InDelta(t, 0.75, it.Attenuation.R, 1e-12)
}

func TestAbsorptionProbability(t *testing.T) {
	m := mustMedium(t, Gray(0.3), Gray(0.7), Phase{})
	// huge span: every flight collides
	h := volume.Hit{Entry: 0, Exit: 1e9, Density: 1}
	rng := rand.New(rand.NewSource(7))
	var tally Tally
	const n = 20000
	for i := 0; i < n; i++ {
		tally.Add(m.Sample(alongZ, h, rng).Event)
	}
	require.EqualValues(t, n, tally.Total())
	require.Zero(t, tally.Count(Escaped))
	require.InDelta(t, 0.3, float64(tally.Count(Absorbed))/n, 0.02)
}

func TestVacuumNeverInteracts(t *testing.T) {
	m := mustMedium(t, RGB{}, RGB{}, Phase{})
	require.True(t, m.Vacuum())
	it := m.Sample(alongZ, volume.Hit{Entry: 0, Exit: 1, Density: 1}, &seq{v: []float64{0.5}})
	require.Equal(t, Escaped, it.Event)
}

func TestNewRejectsBadCoefficients(t *testing.T) {
	_, err := New(RGB{-1, 0, 0}, RGB{}, Phase{}, RGB{}, 1)
	require.True(t, errors.Is(err, ErrInvalidMedium))
	_, err = New(RGB{}, RGB{}, Phase{}, RGB{}, -2)
	require.True(t, errors.Is(err, ErrInvalidMedium))
	_, err = New(RGB{}, RGB{}, Phase{Kind: HenyeyGreenstein, G: 1}, RGB{}, 1)
	require.True(t, errors.Is(err, ErrInvalidMedium))

	m, err := New(Gray(1), Gray(1), Phase{}, RGB{}, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, m.DensityScale)
}

func TestTallyMerge(t *testing.T) {
	var a, b Tally
	a.Add(Escaped)
	b.Add(Scattered)
	b.Add(Scattered)
	a.Merge(&b)
	require.EqualValues(t, 3, a.Total())
	require.EqualValues(t, 2, a.Count(Scattered))
	require.Equal(t, "pass_through", PassThrough.String())
	require.Len(t, Events(), int(numEvents))
}
