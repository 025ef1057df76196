// Package cellgrid builds per-cell plane statistics over an organized point
// cloud tiled into patchSize x patchSize cells, and classifies each cell as
// planar or not.
package cellgrid

import (
	"github.com/golang/geo/r3"

	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/pointcloud"
)

// Grid holds one Stats per cell of a tiled frame, plus the Planar bitmap
// derived from classifying each cell.
type Grid struct {
	Rows, Cols int
	Cells      []*Stats
	Planar     *BitSet
}

// NumCells returns Rows*Cols.
func (g *Grid) NumCells() int { return g.Rows * g.Cols }

// Normal returns the unit normal of cell id. Only meaningful when
// Planar.Test(id) is true.
func (g *Grid) Normal(id int) r3.Vector { return g.Cells[id].Normal() }

// Classify builds a Grid from blocks: for every cell it accumulates the
// cell's points into a Stats, runs the point-count, depth-continuity, and
// planarity gates, and sets the corresponding Planar bit when all gates
// pass.
func Classify(blocks pointcloud.CellBlocks, cfg config.AttributeMap) *Grid {
	n := blocks.NumCells()
	g := &Grid{
		Rows:   blocks.CellRows,
		Cols:   blocks.CellCols,
		Cells:  make([]*Stats, n),
		Planar: NewBitSet(n),
	}

	minPts := cfg.GetInt(config.KeyMinPtsPerCell, 3)
	discThreshold := float32(cfg.GetFloat(config.KeyDepthDiscontinuityThreshold, 160))
	maxDisc := cfg.GetInt(config.KeyMaxNumberDepthDiscontinuity, 1)

	for id := 0; id < n; id++ {
		x, y, z := blocks.Cell(id)
		stats := NewStats()
		planar := buildCellStats(stats, blocks.PatchSize, x, y, z, minPts, discThreshold, maxDisc)
		g.Cells[id] = stats
		if planar {
			stats.Recompute(cfg)
			if stats.Planar() {
				g.Planar.Set(id)
			}
		}
	}
	return g
}

// buildCellStats accumulates x, y, z (a patchSize x patchSize, row-major
// block) into stats and runs the point-count and depth-continuity gates. It
// reports whether the cell is eligible for the planarity (eigenvalue) gate;
// callers still need to call stats.Recompute to know whether the cell is
// planar.
func buildCellStats(stats *Stats, patchSize int, x, y, z []float32, minPts int, discThreshold float32, maxDisc int) bool {
	count := 0
	for i, zv := range z {
		if zv == 0 {
			continue
		}
		stats.AddPoint(float64(x[i]), float64(y[i]), float64(z[i]))
		count++
	}
	if count < minPts {
		return false
	}

	mid := patchSize / 2
	if countDiscontinuities(rowAt(z, patchSize, mid), discThreshold) > maxDisc {
		return false
	}
	if countDiscontinuities(colAt(z, patchSize, mid), discThreshold) > maxDisc {
		return false
	}
	return true
}

// rowAt returns the mid-th row of a patchSize x patchSize row-major block.
func rowAt(z []float32, patchSize, mid int) []float32 {
	start := mid * patchSize
	return z[start : start+patchSize]
}

// colAt returns the mid-th column of a patchSize x patchSize row-major
// block, gathered into a fresh slice.
func colAt(z []float32, patchSize, mid int) []float32 {
	out := make([]float32, patchSize)
	for r := 0; r < patchSize; r++ {
		out[r] = z[r*patchSize+mid]
	}
	return out
}

// countDiscontinuities counts adjacent-pixel depth jumps in line: a pairing
// where both values are nonzero counts if their absolute difference exceeds
// threshold; a pairing where exactly one value is zero (an invalid pixel
// next to a valid one) always counts, regardless of the threshold.
func countDiscontinuities(line []float32, threshold float32) int {
	count := 0
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		if a == 0 || b == 0 {
			if a != b {
				count++
			}
			continue
		}
		d := b - a
		if d < 0 {
			d = -d
		}
		if d > threshold {
			count++
		}
	}
	return count
}
