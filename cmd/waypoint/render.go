package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/canvas/raster"
	"github.com/aretw0/waypoint/pkg/canvas/svg"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <journey-id|file>",
	Short: "Draw a journey as SVG, PNG or Mermaid",
	Long:  `Lays the journey out on the canvas grid and writes it in the chosen format.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")
		selected, _ := cmd.Flags().GetString("select")

		j, err := loadJourney(cmd.Context(), cfg, logger, args[0])
		if err != nil {
			return err
		}

		ctrl := canvas.NewController(
			canvas.WithLogger(logger),
			canvas.WithScaleBounds(cfg.Canvas.ScaleBounds()),
			canvas.WithSceneOptions(cfg.Canvas.SceneOptions()),
			canvas.WithViewportSize(float64(cfg.Canvas.Width), float64(cfg.Canvas.Height)),
		)
		ctrl.SetSnapshot(j)
		if selected != "" && !ctrl.Select(selected) {
			return fmt.Errorf("no node %q in journey %s", selected, j.ID)
		}

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}

		width, height := ctrl.Size()
		switch format {
		case "svg":
			return ctrl.Render(w, svg.New(int(width), int(height)))
		case "png":
			r, err := raster.New(int(width), int(height))
			if err != nil {
				return err
			}
			return ctrl.Render(w, r)
		case "mermaid":
			_, err := io.WriteString(w, graph.GenerateMermaid(j, &graph.GraphOverlay{SelectedNode: ctrl.Selected()}))
			return err
		}
		return fmt.Errorf("unknown format %q (want svg, png or mermaid)", format)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("format", "f", "svg", "Output format: svg, png or mermaid")
	renderCmd.Flags().StringP("output", "o", "-", "Output file ('-' for stdout)")
	renderCmd.Flags().String("select", "", "Node id to draw as selected")
}
