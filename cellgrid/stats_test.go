package cellgrid

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/denisovGIT/deplex/config"
)

func flatPlanePoints() [][3]float64 {
	var pts [][3]float64
	for x := 0.0; x < 5; x++ {
		for y := 0.0; y < 5; y++ {
			pts = append(pts, [3]float64{x, y, 100})
		}
	}
	return pts
}

func TestStatsRecomputeOnFlatPlane(t *testing.T) {
	s := NewStats()
	for _, p := range flatPlanePoints() {
		s.AddPoint(p[0], p[1], p[2])
	}

	cfg := config.Defaults()
	s.Recompute(cfg)

	test.That(t, s.Planar(), test.ShouldBeTrue)
	test.That(t, math.Abs(s.Normal().Z), test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, s.MSE(), test.ShouldBeLessThan, 1e-6)
	test.That(t, s.Normal().Dot(s.Mean()), test.ShouldBeLessThan, 0)
}

func TestStatsRejectsNoisyCell(t *testing.T) {
	s := NewStats()
	pts := flatPlanePoints()
	for i, p := range pts {
		z := p[2]
		if i%2 == 0 {
			z += 500
		}
		// Spread the points 100 units apart in x and y so the depth noise,
		// not the cell's small x/y extent, sets the smallest eigenvalue.
		s.AddPoint(p[0]*100, p[1]*100, z)
	}

	cfg := config.Defaults()
	s.Recompute(cfg)

	test.That(t, s.Planar(), test.ShouldBeFalse)
}

func TestStatsAddMatchesCombinedAccumulation(t *testing.T) {
	cfg := config.Defaults()

	combined := NewStats()
	for _, p := range flatPlanePoints() {
		combined.AddPoint(p[0], p[1], p[2])
	}
	combined.AddPoint(10, 10, 100)
	combined.Recompute(cfg)

	a := NewStats()
	for _, p := range flatPlanePoints() {
		a.AddPoint(p[0], p[1], p[2])
	}
	b := NewStats()
	b.AddPoint(10, 10, 100)
	a.Add(b)
	a.Recompute(cfg)

	test.That(t, a.Count(), test.ShouldEqual, combined.Count())
	test.That(t, a.MSE(), test.ShouldAlmostEqual, combined.MSE(), 1e-9)
	test.That(t, a.Mean().X, test.ShouldAlmostEqual, combined.Mean().X, 1e-9)
}

func TestStatsEmpty(t *testing.T) {
	s := NewStats()
	cfg := config.Defaults()
	s.Recompute(cfg)
	test.That(t, s.Planar(), test.ShouldBeFalse)
	test.That(t, s.Count(), test.ShouldEqual, 0)
}
