package cellgrid

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/denisovGIT/deplex/config"
)

// Stats is the additive first/second-moment accumulator for a cell. A merged
// plane segment is represented by the same type: growing and merging only
// ever add moments together and re-derive mean/normal/offset/MSE/score from
// the running sums, so a segment's Stats looks exactly like a cell's.
type Stats struct {
	sumX, sumY, sumZ                         float64
	sumXX, sumYY, sumZZ, sumXY, sumXZ, sumYZ float64
	n                                        int

	computed bool
	planar   bool
	mean     r3.Vector
	normal   r3.Vector
	offset   float64
	mse      float64
	score    float64
}

// NewStats returns a zero-valued accumulator.
func NewStats() *Stats {
	return &Stats{}
}

// NewPlaneStats returns a Stats that reports the given plane directly,
// without deriving it from accumulated moments. It is meant for injecting
// an already-known plane (e.g. in tests exercising merge logic in
// isolation); Add and Recompute on the result still operate on its
// (all-zero) moment sums, not the injected fields, so mixing injected and
// accumulated Stats in the same merge is not supported.
func NewPlaneStats(mean, normal r3.Vector, offset, mse, score float64, count int) *Stats {
	return &Stats{
		mean: mean, normal: normal, offset: offset, mse: mse, score: score,
		n: count, computed: true, planar: true,
	}
}

// Count returns the number of valid points folded into this accumulator.
func (s *Stats) Count() int { return s.n }

// AddPoint folds a single 3D point into the moment sums.
func (s *Stats) AddPoint(x, y, z float64) {
	s.sumX += x
	s.sumY += y
	s.sumZ += z
	s.sumXX += x * x
	s.sumYY += y * y
	s.sumZZ += z * z
	s.sumXY += x * y
	s.sumXZ += x * z
	s.sumYZ += y * z
	s.n++
	s.computed = false
}

// Add folds other's moments into s. The result is identical, up to floating
// tolerance, to constructing a single Stats over the union of both
// accumulators' points.
func (s *Stats) Add(other *Stats) {
	s.sumX += other.sumX
	s.sumY += other.sumY
	s.sumZ += other.sumZ
	s.sumXX += other.sumXX
	s.sumYY += other.sumYY
	s.sumZZ += other.sumZZ
	s.sumXY += other.sumXY
	s.sumXZ += other.sumXZ
	s.sumYZ += other.sumYZ
	s.n += other.n
	s.computed = false
}

// Planar reports whether this cell (or segment) passed the planarity gates
// the last time Recompute/the constructor ran.
func (s *Stats) Planar() bool { return s.planar }

// Mean returns the centroid of the accumulated points. Only meaningful once
// Recompute or CalculateStats has run, or for a Stats from NewPlaneStats.
func (s *Stats) Mean() r3.Vector { return s.mean }

// Normal returns the unit plane normal, signed to point toward the camera
// (n̂·mean < 0).
func (s *Stats) Normal() r3.Vector { return s.normal }

// Offset returns d = -n̂·m.
func (s *Stats) Offset() float64 { return s.offset }

// MSE returns the smallest eigenvalue of the covariance: the point variance
// along the normal direction, i.e. the planarity error.
func (s *Stats) MSE() float64 { return s.mse }

// Score returns λ_max/λ_min, the planarity strength.
func (s *Stats) Score() float64 { return s.score }

// Recompute re-derives mean, normal, offset, MSE and score from the current
// moment sums via a 3x3 symmetric eigendecomposition, and updates Planar()
// against the depth-noise threshold from cfg. It does not re-run the
// point-count / depth-continuity gates — those only make sense against a
// single cell's raw block and are applied once, when a cell's Stats is
// first built. A merged segment's planarity is instead governed purely by
// Score() against a minimum region planarity score, checked by the caller.
func (s *Stats) Recompute(cfg config.AttributeMap) {
	s.recomputeEigen()
	s.computed = true

	if s.n == 0 {
		s.planar = false
		return
	}
	depthSigmaCoeff := cfg.GetFloat(config.KeyDepthSigmaCoeff, 1.425e-6)
	depthSigmaMargin := cfg.GetFloat(config.KeyDepthSigmaMargin, 10)
	threshold := depthSigmaCoeff*s.mean.Z*s.mean.Z + depthSigmaMargin
	s.planar = s.mse <= threshold*threshold
}

// recomputeEigen derives mean/normal/offset/mse/score without touching the
// planarity flag; used both by Recompute (cell classification) and directly
// by segments after a merge, where planarity is governed by score alone,
// not the per-cell depth-noise gate.
func (s *Stats) recomputeEigen() {
	if s.n == 0 {
		s.mean = r3.Vector{}
		s.normal = r3.Vector{}
		s.offset = 0
		s.mse = 0
		s.score = 0
		return
	}
	nf := float64(s.n)
	mx, my, mz := s.sumX/nf, s.sumY/nf, s.sumZ/nf
	s.mean = r3.Vector{X: mx, Y: my, Z: mz}

	cxx := s.sumXX/nf - mx*mx
	cyy := s.sumYY/nf - my*my
	czz := s.sumZZ/nf - mz*mz
	cxy := s.sumXY/nf - mx*my
	cxz := s.sumXZ/nf - mx*mz
	cyz := s.sumYZ/nf - my*mz

	cov := mat.NewSymDense(3, []float64{
		cxx, cxy, cxz,
		cxy, cyy, cyz,
		cxz, cyz, czz,
	})

	var eig mat.EigenSym
	ok := eig.Factorize(cov, true)
	if !ok {
		s.normal = r3.Vector{}
		s.offset = 0
		s.mse = math.MaxFloat64
		s.score = 0
		return
	}
	values := eig.Values(nil) // ascending: values[0] = smallest
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	normal := r3.Vector{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)}.Normalize()
	if normal.Dot(s.mean) >= 0 {
		normal = normal.Mul(-1)
	}
	s.normal = normal
	s.offset = -normal.Dot(s.mean)
	s.mse = values[0]
	if values[0] != 0 {
		s.score = values[2] / values[0]
	} else {
		s.score = math.MaxFloat64
	}
}

// CalculateStats re-runs the eigendecomposition and refreshes Mean/Normal/
// Offset/MSE/Score from the current moment sums. It deliberately does not
// touch Planar(): a grown/merged segment's acceptance is governed by
// Score() against a minimum region planarity score, evaluated by the
// caller.
func (s *Stats) CalculateStats() {
	s.recomputeEigen()
	s.computed = true
}
