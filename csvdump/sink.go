// Package csvdump writes an Engine's intermediate per-frame artifacts to
// one CSV file per stage, for one-off inspection of a single run.
package csvdump

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/denisovGIT/deplex/logging"
)

// Sink writes each stage's grid to dir/<stage>.csv, one row per grid row
// and one field per column. It implements segmentation.DebugSink. It is
// meant for one-off inspection, not a hot loop: every call opens, writes,
// and closes its own file.
type Sink struct {
	dir    string
	logger logging.Logger
}

// NewSink returns a Sink that writes into dir, creating it if necessary.
func NewSink(dir string, logger logging.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating debug directory %q", dir)
	}
	if logger == nil {
		logger = logging.NewLogger("csvdump")
	}
	return &Sink{dir: dir, logger: logger}, nil
}

func (s *Sink) PlanarCells(rows, cols int, mask []int) {
	s.write("dbg_1_planar_cells", rows, cols, mask)
}

func (s *Sink) RawSegments(rows, cols int, labels []int) {
	s.write("dbg_2_plane_segments_raw", rows, cols, labels)
}

func (s *Sink) MergedSegments(rows, cols int, labels []int) {
	s.write("dbg_3_plane_segments_merged", rows, cols, labels)
}

func (s *Sink) FinalLabels(height, width int, labels []int) {
	s.write("dbg_4_labels", height, width, labels)
}

func (s *Sink) write(stage string, rows, cols int, values []int) {
	path := filepath.Join(s.dir, stage+".csv")
	f, err := os.Create(path)
	if err != nil {
		s.logger.Warnw("failed to open debug dump", "stage", stage, "error", err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	row := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			row[c] = strconv.Itoa(values[r*cols+c])
		}
		if err := w.Write(row); err != nil {
			s.logger.Warnw("failed to write debug dump row", "stage", stage, "row", r, "error", err)
			return
		}
	}
}
