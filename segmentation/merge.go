package segmentation

import (
	"github.com/denisovGIT/deplex/cellgrid"
	"github.com/denisovGIT/deplex/config"
)

// adjacency builds, for each pair of distinct segments whose cells touch
// (share a horizontal or vertical cell-grid edge), a symmetric bit in the
// returned per-segment bitmaps: adjacency[i].Test(j) == adjacency[j].Test(i).
func adjacency(coarseLabels []int, rows, cols, nSegments int) []*cellgrid.BitSet {
	assoc := make([]*cellgrid.BitSet, nSegments)
	for i := range assoc {
		assoc[i] = cellgrid.NewBitSet(nSegments)
	}

	at := func(r, c int) int { return coarseLabels[r*cols+c] }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			label := at(r, c)
			if label <= 0 {
				continue
			}
			if c+1 < cols {
				if right := at(r, c+1); right > 0 && right != label {
					assoc[label-1].Set(right - 1)
				}
			}
			if r+1 < rows {
				if below := at(r+1, c); below > 0 && below != label {
					assoc[label-1].Set(below - 1)
				}
			}
		}
	}
	for i := 0; i < nSegments; i++ {
		for j := 0; j < nSegments; j++ {
			if assoc[j].Test(i) {
				assoc[i].Set(j)
			}
		}
	}
	return assoc
}

// mergePlanes folds segments into adjacent lower-index segments they are
// compatible with. Compatibility requires near-parallel normals and a
// small point-to-plane distance, evaluated only against higher-index
// neighbors (j > i) so every pair is judged exactly once; the chosen
// direction means a later segment can still be folded into an earlier one
// in the same pass it is first compared, but never the reverse. A segment
// already folded in an earlier row is still compared in later rows; if a
// later row accepts it too, its moments are added again there and
// mergeLabels keeps that later fold.
//
// It returns a merge-label slice: mergeLabels[i] is the index of the
// segment i was ultimately folded into (mergeLabels[i] == i means segment i
// survives as its own plane).
func mergePlanes(segments []*Segment, coarseLabels []int, rows, cols int, cfg config.AttributeMap) []int {
	n := len(segments)
	mergeLabels := make([]int, n)
	for i := range mergeLabels {
		mergeLabels[i] = i
	}
	if n == 0 {
		return mergeLabels
	}

	minCosAngle := cfg.GetFloat(config.KeyMinCosAngleForMerge, 0.93)
	maxMergeDist := cfg.GetFloat(config.KeyMaxMergeDist, 500)

	assoc := adjacency(coarseLabels, rows, cols, n)

	for i := 0; i < n; i++ {
		planeID := mergeLabels[i]
		expanded := false
		for j := i + 1; j < n; j++ {
			if !assoc[i].Test(j) {
				continue
			}
			normal1 := segments[planeID].Stats.Normal()
			normal2 := segments[j].Stats.Normal()
			cosAngle := normal1.Dot(normal2)
			d := normal1.Dot(segments[j].Stats.Mean()) + segments[planeID].Stats.Offset()
			distance := d * d
			if cosAngle > minCosAngle && distance < maxMergeDist {
				segments[planeID].Stats.Add(segments[j].Stats)
				mergeLabels[j] = planeID
				expanded = true
			}
		}
		if expanded {
			segments[planeID].Stats.CalculateStats()
		}
	}
	return mergeLabels
}
