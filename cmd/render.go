package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/uisync/internal/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a PNG wireframe of the foreground tree",
	Long: `Draw every extracted node of the foreground as a box: green when it is
sufficiently shown, red when it is clipped by its scrollable container or
the display.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("out", "", "Output PNG file (required)")
	renderCmd.Flags().Float64("scale", 1, "Scale factor")
	renderCmd.Flags().String("labels", "ids", "Node labels: none, ids, text")
}

// RenderResult is the output of the render command.
type RenderResult struct {
	OK     bool   `yaml:"ok"     json:"ok"`
	Path   string `yaml:"path"   json:"path"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
}

func runRender(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	scale, _ := cmd.Flags().GetFloat64("scale")
	labels, _ := cmd.Flags().GetString("labels")
	if out == "" {
		return fmt.Errorf("--out is required")
	}
	mode, err := render.ParseLabelMode(labels)
	if err != nil {
		return err
	}

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	img, err := d.Wireframe(scale, mode)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	b := img.Bounds()
	return printResult(cmd, RenderResult{OK: true, Path: out, Width: b.Dx(), Height: b.Dy()})
}
