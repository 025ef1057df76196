package segmentation

import (
	"github.com/pkg/errors"

	"github.com/denisovGIT/deplex/cellgrid"
	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/histogram"
	"github.com/denisovGIT/deplex/logging"
	"github.com/denisovGIT/deplex/pointcloud"
)

// DebugSink receives intermediate artifacts from a Process call, one method
// per pipeline stage. Implementations that don't care about a stage can
// leave its method a no-op; Engine never blocks on or retries a sink.
type DebugSink interface {
	// PlanarCells receives the Hc x Wc planar/non-planar mask after cell
	// classification (1 planar, 0 not).
	PlanarCells(rows, cols int, mask []int)
	// RawSegments receives the Hc x Wc coarse label grid right after region
	// growing, before merging.
	RawSegments(rows, cols int, labels []int)
	// MergedSegments receives the Hc x Wc coarse label grid after merging.
	MergedSegments(rows, cols int, labels []int)
	// FinalLabels receives the H x W pixel label image, before the mod-256
	// conversion Process applies to its returned []byte.
	FinalLabels(height, width int, labels []int)
}

// NopDebugSink discards every stage emitted to it.
type NopDebugSink struct{}

func (NopDebugSink) PlanarCells(int, int, []int)    {}
func (NopDebugSink) RawSegments(int, int, []int)    {}
func (NopDebugSink) MergedSegments(int, int, []int) {}
func (NopDebugSink) FinalLabels(int, int, []int)    {}

// Engine extracts planar regions from successive frames of the same
// dimensions. It is not safe for concurrent use by multiple goroutines;
// callers running several cameras concurrently should use one Engine per
// stream.
type Engine struct {
	height, width int
	cfg           config.AttributeMap
	logger        logging.Logger
	debug         DebugSink
}

// NewEngine validates overrides and returns an Engine for height x width
// frames. overrides is merged over the engine's defaults; unknown keys in
// overrides are rejected.
func NewEngine(height, width int, overrides config.AttributeMap, logger logging.Logger) (*Engine, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%d", height, width)
	}
	cfg, err := config.WithDefaults(overrides)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	patchSize := cfg.GetInt(config.KeyPatchSize, 12)
	if patchSize <= 0 || height/patchSize == 0 || width/patchSize == 0 {
		return nil, errors.Errorf("patch size %d does not fit a single cell into a %dx%d frame", patchSize, height, width)
	}
	if logger == nil {
		logger = logging.NewLogger("segmentation")
	}
	return &Engine{height: height, width: width, cfg: cfg, logger: logger, debug: NopDebugSink{}}, nil
}

// SetDebugSink installs sink to receive intermediate per-frame artifacts.
// Passing nil restores the no-op sink.
func (e *Engine) SetDebugSink(sink DebugSink) {
	if sink == nil {
		sink = NopDebugSink{}
	}
	e.debug = sink
}

// Process runs the full pipeline over one frame's points (an H*W*3
// row-major tensor of (x, y, z) triples) and returns the per-pixel plane
// label image as an H*W byte slice; 0 means unlabeled. Label values wrap
// mod 256, matching the original's 8-bit output image; a single organized
// frame is expected to produce well under 256 segments.
func (e *Engine) Process(points []float32) ([]byte, error) {
	organized, err := pointcloud.FromPixelMajor(e.height, e.width, points)
	if err != nil {
		return nil, errors.Wrap(err, "organizing frame")
	}

	patchSize := e.cfg.GetInt(config.KeyPatchSize, 12)
	blocks, err := pointcloud.OrganizeByCell(organized, patchSize)
	if err != nil {
		return nil, errors.Wrap(err, "tiling frame into cells")
	}

	grid := cellgrid.Classify(blocks, e.cfg)
	e.logger.Debugw("classified cells", "total", grid.NumCells(), "planar", grid.Planar.Count())
	e.emitCellMask(grid)

	binsPerCoord := e.cfg.GetInt(config.KeyHistogramBinsPerCoord, 20)
	hist := histogram.Build(binsPerCoord, grid.NumCells(), grid.Planar.Test, grid.Normal)

	tols := computeCellDistTols(blocks, grid, e.cfg)

	segments, coarseLabels := createPlaneSegments(hist, grid, tols, e.cfg)
	e.logger.Debugw("grew plane segments", "count", len(segments))
	e.debug.RawSegments(grid.Rows, grid.Cols, coarseLabels)

	mergeLabels := mergePlanes(segments, coarseLabels, grid.Rows, grid.Cols, e.cfg)
	e.debug.MergedSegments(grid.Rows, grid.Cols, mergeCoarseLabels(coarseLabels, mergeLabels))

	var labels []int
	if e.cfg.GetBool(config.KeyDoRefinement, true) {
		_, erodedCellLabels, pixelLabels := refinePlanes(segments, mergeLabels, coarseLabels, blocks, grid.Rows, grid.Cols, e.cfg)
		labels = toLabels(erodedCellLabels, pixelLabels, blocks)
	} else {
		labels = coarseToLabels(coarseLabels, mergeLabels, blocks)
	}
	e.debug.FinalLabels(e.height, e.width, labels)

	out := make([]byte, len(labels))
	for i, l := range labels {
		out[i] = byte(l)
	}
	return out, nil
}

// emitCellMask renders the planar/non-planar bitmap as a 0/1 cell grid for
// the debug sink.
func (e *Engine) emitCellMask(grid *cellgrid.Grid) {
	mask := make([]int, grid.NumCells())
	grid.Planar.Each(func(id int) { mask[id] = 1 })
	e.debug.PlanarCells(grid.Rows, grid.Cols, mask)
}

// mergeCoarseLabels collapses a coarse per-cell label grid through
// mergeLabels, for debug visualization of the merge stage.
func mergeCoarseLabels(coarseLabels []int, mergeLabels []int) []int {
	out := make([]int, len(coarseLabels))
	for id, label := range coarseLabels {
		if label <= 0 {
			continue
		}
		out[id] = mergeLabels[label-1] + 1
	}
	return out
}
