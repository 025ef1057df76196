// Package segmentation grows, merges, and refines planar cell segments into
// a per-pixel label image.
package segmentation

import (
	"github.com/denisovGIT/deplex/cellgrid"
	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/histogram"
)

// Segment is a plane built by merging one or more planar cells. Cells
// records which cell ids were folded into Stats, for use by the refinement
// pass.
type Segment struct {
	Stats *cellgrid.Stats
	Cells *cellgrid.BitSet
}

// growFrame is one entry of the explicit work stack behind growSeed.
type growFrame struct {
	x, y, prevIndex int
}

// growSeed flood-fills outward from (x, y) across 4-connected neighbors,
// activating every reachable unassigned cell whose normal and mean stay
// within tolerance of the cell it was reached from. It is iterative rather
// than recursive, but visits neighbors in the same left, right, up, down
// order a direct recursive walk would, so results are identical regardless
// of call-stack depth limits.
func growSeed(x, y, seedIndex int, grid *cellgrid.Grid, unassigned *cellgrid.BitSet, activation *cellgrid.BitSet, tols []float64, minCosAngle float64) {
	cols := grid.Cols
	rows := grid.Rows
	stack := []growFrame{{x, y, seedIndex}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		index := f.x + cols*f.y
		if index < 0 || index >= grid.NumCells() {
			continue
		}
		if !unassigned.Test(index) || activation.Test(index) {
			continue
		}

		prev := grid.Cells[f.prevIndex]
		cur := grid.Cells[index]
		cosAngle := prev.Normal().Dot(cur.Normal())
		d := prev.Normal().Dot(cur.Mean()) + prev.Offset()
		mergeDist := d * d
		if cosAngle < minCosAngle || mergeDist > tols[index] {
			continue
		}

		activation.Set(index)

		if f.y < rows-1 {
			stack = append(stack, growFrame{f.x, f.y + 1, index})
		}
		if f.y > 0 {
			stack = append(stack, growFrame{f.x, f.y - 1, index})
		}
		if f.x < cols-1 {
			stack = append(stack, growFrame{f.x + 1, f.y, index})
		}
		if f.x > 0 {
			stack = append(stack, growFrame{f.x - 1, f.y, index})
		}
	}
}

// createPlaneSegments repeatedly seeds from the spherical histogram's
// currently most populated bin, grows a region around the seed with the
// lowest MSE among the candidates in that bin, and accepts the grown
// region as a plane segment once it passes the activation-size and
// planarity-score gates. It returns the accepted segments and a coarse
// per-cell label grid (0 = unassigned, else 1-based segment index).
func createPlaneSegments(hist *histogram.Spherical, grid *cellgrid.Grid, tols []float64, cfg config.AttributeMap) ([]*Segment, []int) {
	minCosAngle := cfg.GetFloat(config.KeyMinCosAngleForMerge, 0.93)
	minCandidateSize := cfg.GetInt(config.KeyMinRegionGrowingCandidateSize, 5)
	minCellsActivated := cfg.GetInt(config.KeyMinRegionGrowingCellsActivated, 4)
	minPlanarityScore := cfg.GetFloat(config.KeyMinRegionPlanarityScore, 50)

	nCells := grid.NumCells()
	unassigned := grid.Planar.Clone()
	coarseLabels := make([]int, nCells)

	var segments []*Segment

	for {
		candidates, ok := hist.Peak()
		if !ok || len(candidates) < minCandidateSize {
			return segments, coarseLabels
		}

		seedID := candidates[0]
		minMSE := grid.Cells[seedID].MSE()
		for _, c := range candidates[1:] {
			if grid.Cells[c].MSE() < minMSE {
				seedID = c
				minMSE = grid.Cells[c].MSE()
			}
		}

		seedY := seedID / grid.Cols
		seedX := seedID % grid.Cols

		activation := cellgrid.NewBitSet(nCells)
		growSeed(seedX, seedY, seedID, grid, unassigned, activation, tols, minCosAngle)

		merged := cellgrid.NewStats()
		activation.Each(func(id int) {
			merged.Add(grid.Cells[id])
			hist.Remove(id)
		})
		unassigned.AndNotInPlace(activation)

		if activation.Count() < minCellsActivated {
			continue
		}

		merged.CalculateStats()
		if merged.Score() <= minPlanarityScore {
			continue
		}

		segments = append(segments, &Segment{Stats: merged, Cells: activation})
		label := len(segments)
		activation.Each(func(id int) {
			coarseLabels[id] = label
		})
	}
}
