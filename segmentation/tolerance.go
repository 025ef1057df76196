package segmentation

import (
	"math"

	"github.com/denisovGIT/deplex/cellgrid"
	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/pointcloud"
)

// computeCellDistTols returns, for every planar cell, the squared distance
// tolerance the region grower allows between that cell's centroid and a
// neighboring plane. The tolerance scales with the cell's own diameter (a
// coarser cell tolerates more deviation) but is clamped between a fixed
// floor and the configured ceiling.
func computeCellDistTols(blocks pointcloud.CellBlocks, grid *cellgrid.Grid, cfg config.AttributeMap) []float64 {
	tols := make([]float64, grid.NumCells())
	cosAngle := cfg.GetFloat(config.KeyMinCosAngleForMerge, 0.93)
	sinAngle := math.Sqrt(1 - cosAngle*cosAngle)
	minDist := config.MinMergeDistFloor()
	maxDist := cfg.GetFloat(config.KeyMaxMergeDist, 500)

	grid.Planar.Each(func(id int) {
		diameter := blocks.Diameter(id)
		truncated := diameter * sinAngle
		if truncated < minDist {
			truncated = minDist
		}
		if truncated > maxDist {
			truncated = maxDist
		}
		tols[id] = truncated * truncated
	})
	return tols
}
