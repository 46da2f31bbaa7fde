package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openpmx/vpc/pkg/pipeline"
	"github.com/openpmx/vpc/pkg/plot"
)

// plotOpts holds the command-line flags for the plot command.
type plotOpts struct {
	output      string   // output file path (or base path for multiple formats)
	show        []string // layer visibility overrides (key=value)
	formats     []string // output formats: "svg", "json"
	smooth      bool     // draw simulated bands as smooth ribbons instead of bin rectangles
	logX        bool     // log-scale x axis
	logY        bool     // log-scale y axis
	title       string   // plot title
	xlab        string   // x axis label override
	ylab        string   // y axis label override
	facet       string   // facet orientation: "wrap", "rows", "columns"
	themePath   string   // TOML theme file
	percent     bool     // show survival as percentage (time-to-event)
	predCorr    bool     // bundle holds prediction-corrected observations
	width       float64  // viewport width in pixels
	height      float64  // viewport height in pixels
	noCache     bool     // disable the artifact cache
	refresh     bool     // bypass cached specs and reassemble
	interactive bool     // pick layer visibility interactively
}

// plotCommand creates the plot command for assembling and rendering bundles.
//
// Default settings:
//   - format: svg
//   - width: 800px, height: 600px
//   - output: input name with the format extension
func (c *CLI) plotCommand() *cobra.Command {
	var formatsStr string
	opts := plotOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "plot [bundle]",
		Short: "Assemble a result bundle into a rendered plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runPlot(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringArrayVar(&opts.show, "show", nil, "layer visibility override, e.g. --show pi=true (repeatable)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().BoolVar(&opts.smooth, "smooth", false, "draw simulated bands as smooth ribbons")
	cmd.Flags().BoolVar(&opts.logX, "log-x", false, "log-scale x axis")
	cmd.Flags().BoolVar(&opts.logY, "log-y", false, "log-scale y axis")
	cmd.Flags().StringVar(&opts.title, "title", "", "plot title")
	cmd.Flags().StringVar(&opts.xlab, "xlab", "", "x axis label")
	cmd.Flags().StringVar(&opts.ylab, "ylab", "", "y axis label")
	cmd.Flags().StringVar(&opts.facet, "facet", "", "facet orientation: wrap (default), rows, columns")
	cmd.Flags().StringVar(&opts.themePath, "theme", "", "TOML theme file")
	cmd.Flags().BoolVar(&opts.percent, "percent", false, "show survival as percentage (time-to-event)")
	cmd.Flags().BoolVar(&opts.predCorr, "pred-corrected", false, "label the y axis as prediction-corrected")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reassemble even when a cached spec exists")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick layer visibility interactively")

	return cmd
}

// runPlot executes the plot pipeline for one bundle file.
func (c *CLI) runPlot(ctx context.Context, input string, opts *plotOpts) error {
	show, err := parseShow(opts.show)
	if err != nil {
		return err
	}

	var theme *plot.Theme
	if opts.themePath != "" {
		loaded, err := plot.LoadThemeFile(opts.themePath)
		if err != nil {
			return err
		}
		theme = &loaded
	}

	if opts.interactive {
		picked, err := pickShowFlags(show)
		if err != nil {
			return err
		}
		if picked == nil {
			printInfo("Aborted")
			return nil
		}
		show = picked
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		Input:             input,
		Show:              show,
		Smooth:            opts.smooth,
		LogX:              opts.logX,
		LogY:              opts.logY,
		Title:             opts.title,
		XLab:              opts.xlab,
		YLab:              opts.ylab,
		Facet:             opts.facet,
		SurvivalAsPercent: opts.percent,
		PredCorrected:     opts.predCorr,
		Verbose:           c.Logger.GetLevel() <= LogDebug,
		Theme:             theme,
		Formats:           opts.formats,
		Width:             opts.width,
		Height:            opts.height,
		Refresh:           opts.refresh,
		Logger:            c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Assembling %s...", input))
	spinner.Start()
	res, err := runner.Execute(ctx, pipeOpts)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	printSuccess("Assembled %s plot", res.Bundle.Modality)
	printStats(res.Stats.LayerCount, len(res.Spec.Layers) > 0 && res.Spec.Facet.Kind != plot.FacetNone, res.CacheInfo.SpecHit)

	multi := len(opts.formats) > 1
	for _, format := range opts.formats {
		path := outputPath(opts.output, input, format, multi)
		if err := os.WriteFile(path, res.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	return nil
}

// pickShowFlags runs the interactive layer picker. It returns nil when the
// user aborted.
func pickShowFlags(overlay map[string]bool) (map[string]bool, error) {
	model := NewShowListModel(overlay)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("interactive picker: %w", err)
	}
	m, ok := final.(ShowListModel)
	if !ok || m.Aborted {
		return nil, nil
	}
	return m.Overlay(), nil
}
