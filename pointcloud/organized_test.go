package pointcloud

import (
	"testing"

	"go.viam.com/test"
)

func TestFromPixelMajorDeinterleaves(t *testing.T) {
	data := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	org, err := FromPixelMajor(1, 2, data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, org.X, test.ShouldResemble, []float32{1, 4})
	test.That(t, org.Y, test.ShouldResemble, []float32{2, 5})
	test.That(t, org.Z, test.ShouldResemble, []float32{3, 6})
}

func TestFromPixelMajorRejectsBadLength(t *testing.T) {
	_, err := FromPixelMajor(1, 2, []float32{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromPixelMajorRejectsBadDimensions(t *testing.T) {
	_, err := FromPixelMajor(0, 2, []float32{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOrganizeByCellRelaysIntoCellMajorBlocks(t *testing.T) {
	// A 4x4 image tiled into 2x2 cells of patch size 2.
	org := Organized{Height: 4, Width: 4, X: make([]float32, 16), Y: make([]float32, 16), Z: make([]float32, 16)}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			org.Z[r*4+c] = float32(r*10 + c)
		}
	}

	blocks, err := OrganizeByCell(org, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, blocks.NumCells(), test.ShouldEqual, 4)
	test.That(t, blocks.PointsPerCell(), test.ShouldEqual, 4)

	// Cell (0,0) should hold pixels (0,0),(0,1),(1,0),(1,1) -> z values 0,1,10,11.
	_, _, z := blocks.Cell(0)
	test.That(t, z, test.ShouldResemble, []float32{0, 1, 10, 11})

	// Cell (1,1) (bottom right) should hold pixels (2,2),(2,3),(3,2),(3,3).
	_, _, z = blocks.Cell(3)
	test.That(t, z, test.ShouldResemble, []float32{22, 23, 32, 33})
}

func TestOrganizeByCellDropsResidualPixels(t *testing.T) {
	org := Organized{Height: 5, Width: 5, X: make([]float32, 25), Y: make([]float32, 25), Z: make([]float32, 25)}
	blocks, err := OrganizeByCell(org, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, blocks.CellRows, test.ShouldEqual, 2)
	test.That(t, blocks.CellCols, test.ShouldEqual, 2)
}

func TestOrganizeByCellRejectsPatchTooLarge(t *testing.T) {
	org := Organized{Height: 1, Width: 1, X: []float32{0}, Y: []float32{0}, Z: []float32{0}}
	_, err := OrganizeByCell(org, 2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDiameter(t *testing.T) {
	org := Organized{Height: 2, Width: 2,
		X: []float32{0, 0, 0, 3},
		Y: []float32{0, 0, 0, 4},
		Z: []float32{0, 0, 0, 0},
	}
	blocks, err := OrganizeByCell(org, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, blocks.Diameter(0), test.ShouldAlmostEqual, 5.0, 1e-9)
}
