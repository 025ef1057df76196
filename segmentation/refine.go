package segmentation

import (
	"math"

	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/pointcloud"
)

// erodeCross shrinks mask with a 3x3 cross kernel (center plus the four
// edge-adjacent neighbors, no corners). Out-of-bounds neighbors are treated
// as set, so erosion never eats into the grid border on their account.
func erodeCross(mask []bool, rows, cols int) []bool {
	out := make([]bool, len(mask))
	at := func(r, c int) bool {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return true
		}
		return mask[r*cols+c]
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[r*cols+c] = at(r, c) && at(r-1, c) && at(r+1, c) && at(r, c-1) && at(r, c+1)
		}
	}
	return out
}

// dilateSquare grows mask with a full 3x3 square kernel. Out-of-bounds
// neighbors are treated as clear, so dilation never grows past the grid
// border.
func dilateSquare(mask []bool, rows, cols int) []bool {
	out := make([]bool, len(mask))
	at := func(r, c int) bool {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return false
		}
		return mask[r*cols+c]
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			set := false
			for dr := -1; dr <= 1 && !set; dr++ {
				for dc := -1; dc <= 1 && !set; dc++ {
					if at(r+dr, c+dc) {
						set = true
					}
				}
			}
			out[r*cols+c] = set
		}
	}
	return out
}

// refinePlanes shrinks each surviving merged segment's cell footprint to
// its erosion-stable core, drops segments that erode away entirely, and
// competes for the ring of cells between the eroded core and the dilated
// footprint at pixel granularity. It returns the surviving segments in
// final label order (1-based), the per-cell label of each surviving
// segment's eroded core (0 where no segment owns the cell outright), and
// the per-pixel labels assigned within the competed boundary rings.
func refinePlanes(segments []*Segment, mergeLabels []int, coarseLabels []int, blocks pointcloud.CellBlocks, rows, cols int, cfg config.AttributeMap) (final []*Segment, erodedCellLabels []int, pixelLabels []int) {
	nCells := rows * cols
	erodedCellLabels = make([]int, nCells)
	pixelLabels = make([]int, blocks.Height*blocks.Width)

	refinementCoeff := cfg.GetFloat(config.KeyRefinementMultiplierCoeff, 15)

	best := make([]float64, len(pixelLabels))
	for i := range best {
		best[i] = math.MaxFloat64
	}

	for i := 0; i < len(segments); i++ {
		if mergeLabels[i] != i {
			continue
		}
		mask := make([]bool, nCells)
		for j := i; j < len(segments); j++ {
			if mergeLabels[j] != i {
				continue
			}
			target := j + 1
			for id, label := range coarseLabels {
				if label == target {
					mask[id] = true
				}
			}
		}

		eroded := erodeCross(mask, rows, cols)
		anySet := false
		for _, v := range eroded {
			if v {
				anySet = true
				break
			}
		}
		if !anySet {
			continue
		}

		final = append(final, segments[i])
		finalLabel := len(final)

		dilated := dilateSquare(mask, rows, cols)
		for id := 0; id < nCells; id++ {
			if eroded[id] {
				erodedCellLabels[id] = finalLabel
			}
		}

		diff := make([]int, 0)
		for id := 0; id < nCells; id++ {
			if dilated[id] && !eroded[id] {
				diff = append(diff, id)
			}
		}
		refineCells(segments[i], finalLabel, diff, blocks, refinementCoeff, pixelLabels, best)
	}
	return final, erodedCellLabels, pixelLabels
}

// refineCells assigns label to every pixel of the cells in diff whose
// point-to-plane distance is both within refinementCoeff*MSE of the plane
// and closer than any label a previous plane already claimed for that
// pixel, so competing planes converge on the true boundary pixel by pixel.
// best holds the smallest squared distance recorded so far for each pixel,
// shared across every plane's call.
func refineCells(seg *Segment, label int, diff []int, blocks pointcloud.CellBlocks, refinementCoeff float64, pixelLabels []int, best []float64) {
	normal := seg.Stats.Normal()
	offset := seg.Stats.Offset()
	maxDist := refinementCoeff * seg.Stats.MSE()

	for _, cellID := range diff {
		x, y, z := blocks.Cell(cellID)
		cellRow := cellID / blocks.CellCols
		cellCol := cellID % blocks.CellCols
		for local := 0; local < len(x); local++ {
			localR := local / blocks.PatchSize
			localC := local % blocks.PatchSize
			pixR := cellRow*blocks.PatchSize + localR
			pixC := cellCol*blocks.PatchSize + localC
			pixIdx := pixR*blocks.Width + pixC

			d := float64(x[local])*normal.X + float64(y[local])*normal.Y + float64(z[local])*normal.Z + offset
			dist := d * d
			if dist < maxDist && dist < best[pixIdx] {
				best[pixIdx] = dist
				pixelLabels[pixIdx] = label
			}
		}
	}
}

// coarseToLabels expands a coarse per-cell label grid (pre-refinement, as
// produced by createPlaneSegments and collapsed through mergeLabels) into a
// full per-pixel label image, with no per-pixel competition.
func coarseToLabels(coarseLabels []int, mergeLabels []int, blocks pointcloud.CellBlocks) []int {
	out := make([]int, blocks.Height*blocks.Width)
	for cellID, label := range coarseLabels {
		if label <= 0 {
			continue
		}
		merged := mergeLabels[label-1] + 1
		cellRow := cellID / blocks.CellCols
		cellCol := cellID % blocks.CellCols
		for localR := 0; localR < blocks.PatchSize; localR++ {
			pixR := cellRow*blocks.PatchSize + localR
			rowBase := pixR * blocks.Width
			cBase := cellCol * blocks.PatchSize
			for localC := 0; localC < blocks.PatchSize; localC++ {
				out[rowBase+cBase+localC] = merged
			}
		}
	}
	return out
}

// toLabels expands the eroded-core cell labels and the competed pixel-level
// boundary labels into a full per-pixel label image: a cell with a
// positive eroded-core label paints its whole pixel block directly, every
// other pixel falls back to whatever refineCells assigned it (possibly
// nothing, i.e. unlabeled).
func toLabels(erodedCellLabels []int, pixelLabels []int, blocks pointcloud.CellBlocks) []int {
	out := make([]int, blocks.Height*blocks.Width)
	copy(out, pixelLabels)

	for cellID, label := range erodedCellLabels {
		if label <= 0 {
			continue
		}
		cellRow := cellID / blocks.CellCols
		cellCol := cellID % blocks.CellCols
		for localR := 0; localR < blocks.PatchSize; localR++ {
			pixR := cellRow*blocks.PatchSize + localR
			rowBase := pixR * blocks.Width
			cBase := cellCol * blocks.PatchSize
			for localC := 0; localC < blocks.PatchSize; localC++ {
				out[rowBase+cBase+localC] = label
			}
		}
	}
	return out
}
