package main

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/denisovGIT/deplex/config"
	"github.com/denisovGIT/deplex/csvdump"
	"github.com/denisovGIT/deplex/logging"
	"github.com/denisovGIT/deplex/segmentation"
)

func newRootCmd(logger logging.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "deplex",
		Short: "Extract planar regions from an organized depth frame",
	}
	root.AddCommand(newRunCmd(logger), newDumpConfigCmd())
	return root
}

func newRunCmd(logger logging.Logger) *cobra.Command {
	var (
		height     int
		width      int
		inPath     string
		outPath    string
		configPath string
		debugDir   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run plane extraction over one frame and write the label image as a raw uint8 file",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			points, err := readFrame(inPath, height, width)
			if err != nil {
				return err
			}

			engine, err := segmentation.NewEngine(height, width, overrides, logger)
			if err != nil {
				return errors.Wrap(err, "constructing engine")
			}
			if debugDir != "" {
				sink, err := csvdump.NewSink(debugDir, logger)
				if err != nil {
					return err
				}
				engine.SetDebugSink(sink)
			}

			labels, err := engine.Process(points)
			if err != nil {
				return errors.Wrap(err, "processing frame")
			}
			return os.WriteFile(outPath, labels, 0o644)
		},
	}

	cmd.Flags().IntVar(&height, "height", 0, "frame height in pixels")
	cmd.Flags().IntVar(&width, "width", 0, "frame width in pixels")
	cmd.Flags().StringVar(&inPath, "in", "", "path to a little-endian float32 H*W*3 point tensor")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the H*W label image as a raw uint8 row-major file")
	cmd.Flags().StringVar(&configPath, "config", "", "optional JSON file of configuration overrides")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "optional directory to dump intermediate stage CSVs into")
	cmd.MarkFlagRequired("height")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")

	return cmd
}

func newDumpConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-config",
		Short: "Print the engine's default configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(config.Defaults())
		},
	}
}

// loadConfig reads a JSON object of configuration overrides from path, or
// returns an empty AttributeMap if path is empty.
func loadConfig(path string) (config.AttributeMap, error) {
	if path == "" {
		return config.AttributeMap{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}
	var overrides config.AttributeMap
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %q", path)
	}
	return overrides, nil
}

// readFrame reads height*width*3 little-endian float32 values from path.
func readFrame(path string, height, width int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening frame file %q", path)
	}
	defer f.Close()

	n := height * width * 3
	raw := make([]byte, n*4)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, errors.Wrapf(err, "reading frame file %q", path)
	}
	points := make([]float32, n)
	for i := range points {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		points[i] = math.Float32frombits(bits)
	}
	return points, nil
}

