// Package histogram bins cell normals into a 2D polar/azimuth histogram,
// used to pick region-growing seeds in a deterministic, largest-bin-first
// order.
package histogram

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	minPolar   = 0
	maxPolar   = math.Pi
	minAzimuth = -math.Pi
	maxAzimuth = math.Pi
)

// Spherical bins normal directions into binsPerCoord x binsPerCoord cells
// of (polar angle, azimuth angle) space, and tracks which bin each input
// index landed in so a bin's members can be removed one at a time as they
// get consumed by region growing.
type Spherical struct {
	binsPerCoord int
	counts       []int // length binsPerCoord*binsPerCoord
	bins         []int // per-index bin, or -1 if not binned
}

// Build bins the normal of every index for which mask reports true.
// Indices outside mask are left unbinned.
func Build(binsPerCoord int, n int, mask func(id int) bool, normal func(id int) r3.Vector) *Spherical {
	h := &Spherical{
		binsPerCoord: binsPerCoord,
		counts:       make([]int, binsPerCoord*binsPerCoord),
		bins:         make([]int, n),
	}
	for i := range h.bins {
		h.bins[i] = -1
	}
	for id := 0; id < n; id++ {
		if !mask(id) {
			continue
		}
		bin := h.binOf(normal(id))
		h.bins[id] = bin
		h.counts[bin]++
	}
	return h
}

// binOf computes the (polar, azimuth) bin index for a unit normal, matching
// the pole-singularity handling of the original binning rule: when the
// polar quantization collapses to bin 0 (the normal points nearly straight
// at the camera), the azimuth angle is undefined, so the azimuth
// quantization is forced to 0 rather than computed.
func (h *Spherical) binOf(normal r3.Vector) int {
	projNorm := math.Hypot(normal.X, normal.Y)
	if projNorm < 1e-9 {
		projNorm = 1e-9
	}
	polar := math.Acos(-normal.Z)
	nx := normal.X / projNorm
	ny := normal.Y / projNorm

	xq := int(float64(h.binsPerCoord-1) * (polar - minPolar) / (maxPolar - minPolar))
	yq := 0
	if xq > 0 {
		azimuth := math.Atan2(nx, ny)
		yq = int(float64(h.binsPerCoord-1) * (azimuth - minAzimuth) / (maxAzimuth - minAzimuth))
	}
	return yq*h.binsPerCoord + xq
}

// Peak returns the ids falling in the currently most populated bin, and
// whether any bin is non-empty. Ties between bins are broken by lowest bin
// index, matching a single deterministic scan over counts.
func (h *Spherical) Peak() (ids []int, ok bool) {
	best := -1
	bestCount := 0
	for b, c := range h.counts {
		if c > bestCount {
			bestCount = c
			best = b
		}
	}
	if best < 0 || bestCount == 0 {
		return nil, false
	}
	for id, b := range h.bins {
		if b == best {
			ids = append(ids, id)
		}
	}
	return ids, true
}

// Remove takes id out of its bin, decrementing that bin's count. It is a
// no-op if id was never binned or was already removed.
func (h *Spherical) Remove(id int) {
	b := h.bins[id]
	if b < 0 {
		return
	}
	h.counts[b]--
	h.bins[id] = -1
}
