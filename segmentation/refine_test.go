package segmentation

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/denisovGIT/deplex/cellgrid"
	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/pointcloud"
)

func TestErodeCrossShrinksIsolatedCell(t *testing.T) {
	// 3x3 grid, only the center cell set.
	mask := []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	}
	eroded := erodeCross(mask, 3, 3)
	for _, v := range eroded {
		test.That(t, v, test.ShouldBeFalse)
	}
}

func TestErodeCrossKeepsFullyInteriorRegion(t *testing.T) {
	mask := make([]bool, 25)
	for i := range mask {
		mask[i] = true
	}
	eroded := erodeCross(mask, 5, 5)
	for _, v := range eroded {
		test.That(t, v, test.ShouldBeTrue)
	}
}

func TestDilateSquareGrowsIsolatedCell(t *testing.T) {
	mask := []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	}
	dilated := dilateSquare(mask, 3, 3)
	count := 0
	for _, v := range dilated {
		if v {
			count++
		}
	}
	test.That(t, count, test.ShouldEqual, 9) // whole 3x3 grid touches the center
}

func TestRefinePlanesDropsFullyErodedSegment(t *testing.T) {
	cfg, err := config.WithDefaults(config.AttributeMap{config.KeyPatchSize: 2})
	test.That(t, err, test.ShouldBeNil)

	// 3x3 cell grid, patch size 2 -> 6x6 pixel frame. Only the center cell
	// (id 4) belongs to the segment; its cross-erosion is empty.
	blocks := pointcloud.CellBlocks{Height: 6, Width: 6, PatchSize: 2, CellRows: 3, CellCols: 3,
		X: make([]float32, 36), Y: make([]float32, 36), Z: make([]float32, 36)}
	coarse := make([]int, 9)
	coarse[4] = 1
	segments := []*Segment{{Stats: cellgrid.NewPlaneStats(r3.Vector{}, r3.Vector{Z: -1}, 0, 1, 1000, 4)}}
	mergeLabels := []int{0}

	final, erodedCellLabels, pixelLabels := refinePlanes(segments, mergeLabels, coarse, blocks, 3, 3, cfg)
	test.That(t, len(final), test.ShouldEqual, 0)
	for _, v := range erodedCellLabels {
		test.That(t, v, test.ShouldEqual, 0)
	}
	for _, v := range pixelLabels {
		test.That(t, v, test.ShouldEqual, 0)
	}
}

func TestRefinePlanesKeepsFullyCoveredSegment(t *testing.T) {
	cfg, err := config.WithDefaults(config.AttributeMap{config.KeyPatchSize: 2})
	test.That(t, err, test.ShouldBeNil)

	blocks := pointcloud.CellBlocks{Height: 4, Width: 4, PatchSize: 2, CellRows: 2, CellCols: 2,
		X: make([]float32, 16), Y: make([]float32, 16), Z: make([]float32, 16)}
	coarse := []int{1, 1, 1, 1} // every cell belongs to segment 1
	segments := []*Segment{{Stats: cellgrid.NewPlaneStats(r3.Vector{}, r3.Vector{Z: -1}, 0, 1, 1000, 4)}}
	mergeLabels := []int{0}

	final, erodedCellLabels, _ := refinePlanes(segments, mergeLabels, coarse, blocks, 2, 2, cfg)
	test.That(t, len(final), test.ShouldEqual, 1)
	for _, v := range erodedCellLabels {
		test.That(t, v, test.ShouldEqual, 1)
	}
}
