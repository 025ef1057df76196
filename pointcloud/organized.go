// Package pointcloud holds the organized-grid point array types this module
// operates on: a dense H×W grid of back-projected depth points, addressed by
// pixel or by fixed-size cell, rather than an arbitrary sparse cloud.
package pointcloud

import (
	"math"

	"github.com/pkg/errors"
)

// Organized is a dense, pixel-major H×W grid of 3D points, stored as three
// coordinate planes. Pixel (r,c) lives at linear index r*Width+c in each
// plane. A zero Z marks an invalid pixel.
type Organized struct {
	Height, Width int
	X, Y, Z       []float32
}

// FromPixelMajor builds an Organized grid from an H*W*3 row-major tensor
// where each pixel contributes a contiguous (x, y, z) triple.
func FromPixelMajor(height, width int, data []float32) (Organized, error) {
	if height <= 0 || width <= 0 {
		return Organized{}, errors.Errorf("invalid dimensions %dx%d", height, width)
	}
	n := height * width
	if len(data) != n*3 {
		return Organized{}, errors.Errorf("expected %d floats (%dx%dx3), got %d", n*3, height, width, len(data))
	}
	out := Organized{Height: height, Width: width, X: make([]float32, n), Y: make([]float32, n), Z: make([]float32, n)}
	for i := 0; i < n; i++ {
		out.X[i] = data[3*i]
		out.Y[i] = data[3*i+1]
		out.Z[i] = data[3*i+2]
	}
	return out, nil
}

// CellBlocks is the cell-major re-lay of an Organized grid produced by
// OrganizeByCell: for cell id, the P*P points of that cell sit contiguously
// at [id*P*P, (id+1)*P*P) in each plane, in cell-local row-major order.
// Pixels outside the exact CellRows*P by CellCols*P tiled region are
// discarded.
type CellBlocks struct {
	Height, Width       int // original pixel dimensions, for output sizing
	PatchSize           int
	CellRows, CellCols  int
	X, Y, Z             []float32 // length CellRows*CellCols*PatchSize*PatchSize
}

// OrganizeByCell re-lays src into cell-major blocks of patchSize x patchSize
// points each.
func OrganizeByCell(src Organized, patchSize int) (CellBlocks, error) {
	if patchSize <= 0 {
		return CellBlocks{}, errors.Errorf("patchSize must be positive, got %d", patchSize)
	}
	cellRows := src.Height / patchSize
	cellCols := src.Width / patchSize
	if cellRows == 0 || cellCols == 0 {
		return CellBlocks{}, errors.Errorf(
			"patch size %d does not divide into at least one full cell row/column for a %dx%d frame",
			patchSize, src.Height, src.Width)
	}

	n := cellRows * cellCols * patchSize * patchSize
	out := CellBlocks{
		Height: src.Height, Width: src.Width,
		PatchSize: patchSize, CellRows: cellRows, CellCols: cellCols,
		X: make([]float32, n), Y: make([]float32, n), Z: make([]float32, n),
	}

	rowLimit := cellRows * patchSize
	colLimit := cellCols * patchSize
	for r := 0; r < rowLimit; r++ {
		cellR := r / patchSize
		localR := r % patchSize
		rowBase := r * src.Width
		for c := 0; c < colLimit; c++ {
			cellC := c / patchSize
			localC := c % patchSize
			srcIdx := rowBase + c
			dstIdx := (cellR*cellCols+cellC)*patchSize*patchSize + localR*patchSize + localC
			out.X[dstIdx] = src.X[srcIdx]
			out.Y[dstIdx] = src.Y[srcIdx]
			out.Z[dstIdx] = src.Z[srcIdx]
		}
	}
	return out, nil
}

// NumCells returns the total number of cells in the grid.
func (cb CellBlocks) NumCells() int { return cb.CellRows * cb.CellCols }

// PointsPerCell returns P*P, the number of points backing each cell.
func (cb CellBlocks) PointsPerCell() int { return cb.PatchSize * cb.PatchSize }

// Cell returns the contiguous (X, Y, Z) slices backing cell id's P*P block.
// The returned slices alias cb's storage; callers must not retain them past
// cb's lifetime if cb is reused.
func (cb CellBlocks) Cell(id int) (x, y, z []float32) {
	n := cb.PointsPerCell()
	start := id * n
	return cb.X[start : start+n], cb.Y[start : start+n], cb.Z[start : start+n]
}

// Diameter returns the Euclidean distance between the first and last 3D
// point of cell id's contiguous block, used by the region grower to size its
// per-cell distance tolerance.
func (cb CellBlocks) Diameter(id int) float64 {
	x, y, z := cb.Cell(id)
	n := len(x)
	dx := float64(x[n-1] - x[0])
	dy := float64(y[n-1] - y[0])
	dz := float64(z[n-1] - z[0])
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
