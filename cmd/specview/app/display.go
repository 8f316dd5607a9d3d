package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roman-kulish/spectrum-viewer/internal/display"
	"github.com/roman-kulish/spectrum-viewer/internal/plot"
	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

// displayFlags are shared by the commands producing display series. Explicitly set
// flags override the configuration.
type displayFlags struct {
	db       string
	detrend  string
	rc       bool
	rcWeight float64
	start    float64
	stop     float64
	pan      float64
	refLevel float64
	scale    float64
	width    int
	exclude  []string
}

func (f *displayFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.db, "db", "", "Read records by name from this database instead of capture files")
	fs.StringVar(&f.detrend, "detrend", "", "Capture, or record name with --db, to use as the detrend baseline, enables detrending")
	fs.BoolVar(&f.rc, "rc", false, "Smooth series with the RC filter")
	fs.Float64Var(&f.rcWeight, "rc-weight", display.DefaultRCWeight, "RC filter weight of the previous output")
	fs.Float64Var(&f.start, "start", 0, "Visible start frequency in MHz")
	fs.Float64Var(&f.stop, "stop", 0, "Visible stop frequency in MHz")
	fs.Float64Var(&f.pan, "pan", 0, "Shift the visible range by this many MHz")
	fs.Float64Var(&f.refLevel, "ref-level", 0, "Reference level at the top of the power axis in dBm")
	fs.Float64Var(&f.scale, "scale", 0, "Power axis scale in dB per division")
	fs.IntVar(&f.width, "width", display.DefaultDisplayWidth, "Display width in pixels")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Names of loaded records to leave out of the output")
}

func (f *displayFlags) apply(fs *pflag.FlagSet, c *DisplayConfig) {
	if fs.Changed("detrend") {
		c.DetrendFile = f.detrend
		c.UseDetrend = f.detrend != ""
	}
	if fs.Changed("rc") {
		c.UseRCFilter = f.rc
	}
	if fs.Changed("rc-weight") {
		c.RCWeight = f.rcWeight
	}
	if fs.Changed("start") {
		c.StartFrequency = &f.start
	}
	if fs.Changed("stop") {
		c.StopFrequency = &f.stop
	}
	if fs.Changed("pan") {
		c.Pan = f.pan
	}
	if fs.Changed("ref-level") {
		c.ReferenceLevel = &f.refLevel
	}
	if fs.Changed("scale") {
		c.Scale = &f.scale
	}
	if fs.Changed("width") {
		c.Width = f.width
	}
	if fs.Changed("exclude") {
		c.Exclude = f.exclude
	}
}

// buildView loads the records into a view configured from c. The view ends up
// showing the range and levels of the last loaded record unless c pins them.
func (a *App) buildView(ctx context.Context, load recordLoader, c DisplayConfig, args []string) (*display.View, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	view := display.NewView()
	if _, err := a.forEachRecord(ctx, load, args, func(arg string, r *spectrum.Record) error {
		if !view.Load(r) {
			a.logger.Warn("duplicate record skipped", slog.String("name", r.Name()), slog.String("source", arg))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, name := range c.Exclude {
		if view.Remove(name) == 0 {
			a.logger.Warn("excluded record not loaded", slog.String("name", name))
		}
	}
	if len(view.Records()) == 0 {
		return nil, errNoRecords
	}

	view.DisplayWidth = c.Width
	view.UseDetrend = c.UseDetrend
	view.UseRCFilter = c.UseRCFilter
	view.RCWeight = c.RCWeight
	if c.ReferenceLevel != nil {
		view.ReferenceLevel = *c.ReferenceLevel
	}
	if c.Scale != nil {
		view.Scale = *c.Scale
	}

	if c.DetrendFile != "" {
		// a loaded record may serve as its own baseline
		reference, ok := view.Record(c.DetrendFile)
		if !ok {
			var err error
			if reference, err = load(ctx, c.DetrendFile); err != nil {
				return nil, fmt.Errorf("loading detrend reference: %w", err)
			}
		}
		view.SetDetrend(reference)
	}

	start, stop := view.VisibleStart, view.VisibleStop
	if c.StartFrequency != nil {
		start = *c.StartFrequency
	}
	if c.StopFrequency != nil {
		stop = *c.StopFrequency
	}
	if err := view.SetVisibleRange(start, stop); err != nil {
		return nil, err
	}
	view.Pan(c.Pan)

	bottom, top := view.PowerRange()
	a.logger.Debug("view ready",
		slog.Int("records", len(view.Records())),
		slog.Group("frequency",
			slog.Float64("start", view.VisibleStart),
			slog.Float64("stop", view.VisibleStop),
			slog.Float64("span", view.Span()),
		),
		slog.Group("power",
			slog.Float64("bottom", bottom),
			slog.Float64("top", top),
		),
	)
	return view, nil
}

func newSeriesCommand(a *App) *cobra.Command {
	var flags displayFlags

	cmd := &cobra.Command{
		Use:   "series FILE|NAME...",
		Short: "Print display series of captures or archived records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.config.Display
			flags.apply(cmd.Flags(), &c)

			load, closeLoader, err := a.loaderFor(cmd, flags.db)
			if err != nil {
				return err
			}
			defer closeLoader()

			view, err := a.buildView(cmd.Context(), load, c, args)
			if err != nil {
				return err
			}
			return writeSeries(a.out, view.Series())
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func writeSeries(w io.Writer, series []display.Series) error {
	var sb strings.Builder
	for _, s := range series {
		sb.WriteString("# ")
		sb.WriteString(s.Name)
		sb.WriteByte('\n')
		for _, p := range s.Points {
			fmt.Fprintf(&sb, "%f, %f\n", p.X, p.Y)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func newPlotCommand(a *App) *cobra.Command {
	var flags displayFlags
	var out, format string
	var height int

	cmd := &cobra.Command{
		Use:   "plot FILE|NAME...",
		Short: "Render captures or archived records into a chart image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.config.Display
			flags.apply(cmd.Flags(), &c)

			pc := a.config.Plot
			if cmd.Flags().Changed("format") {
				pc.Format = plot.ImageFormat(strings.ToLower(format))
			}
			if cmd.Flags().Changed("height") {
				pc.Height = height
			}
			if _, ok := validImageFormats[pc.Format]; !ok {
				return fmt.Errorf("invalid image format: %s", pc.Format)
			}
			if filepath.Ext(out) == "" {
				out = fmt.Sprintf("%s.%s", out, pc.Format)
			}

			load, closeLoader, err := a.loaderFor(cmd, flags.db)
			if err != nil {
				return err
			}
			defer closeLoader()

			view, err := a.buildView(cmd.Context(), load, c, args)
			if err != nil {
				return err
			}
			return a.renderView(view, pc, out)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to the output image")
	cmd.Flags().StringVarP(&format, "format", "f", string(plot.ImagePNG), "Output image format. [png, jpeg]")
	cmd.Flags().IntVar(&height, "height", 600, "Chart height in pixels")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *App) renderView(view *display.View, pc PlotConfig, path string) (err error) {
	renderer := plot.NewRenderer(plot.Config{
		Width:  view.DisplayWidth,
		Height: pc.Height,
	})

	img, err := renderer.Render(&plot.Chart{
		Series:         view.Series(),
		VisibleStart:   view.VisibleStart,
		VisibleStop:    view.VisibleStop,
		ReferenceLevel: view.ReferenceLevel,
		Scale:          view.Scale,
	})
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	if err = plot.Encode(f, img, pc.Format); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	a.logger.Info("chart written", slog.String("path", path), slog.Int("series", len(view.Records())))
	return nil
}
