package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandel/pkg/config"
	errs "github.com/matzehuels/mandel/pkg/errors"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/pipeline"
	"github.com/matzehuels/mandel/pkg/sink"
)

// renderOpts holds the command-line flags for the render command.
// Region flags override the config file only when set explicitly.
type renderOpts struct {
	configPath string  // TOML config file (default: user config dir)
	preset     string  // named region, see `mandel regions`
	lowerLeft  string  // "re,im"
	upperRight string  // "re,im"
	density    float64 // pixels per unit
	maxIter    uint64  // iteration cap
	output     string  // output file
	format     string  // png, tiff or bmp
	noCache    bool    // bypass the artifact cache entirely
	refresh    bool    // re-render even when cached
	progress   bool    // full-screen progress bar instead of a spinner
}

// renderCommand creates the render command.
//
// Without flags it renders (-1.5,-0.5)…(0,0) at 3000 px/unit with 15
// iterations to testimage.png.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a region of the Mandelbrot set to an image file",
		Example: `  mandel render
  mandel render --preset seahorse-valley -o seahorse.png
  mandel render --lower-left=-2,-1 --upper-right=1,1 --density 400 --max-iter 100 -f tiff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			po, output, err := opts.resolve(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), po, output, opts)
		},
	}

	bindRenderFlags(cmd, opts)
	return cmd
}

// bindRenderFlags registers the render flags on cmd.
func bindRenderFlags(cmd *cobra.Command, opts *renderOpts) {
	def := pipeline.DefaultRegion()
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default: ~/.config/mandel/config.toml if present)")
	f.StringVar(&opts.preset, "preset", "", "named region (see `mandel regions`)")
	f.StringVar(&opts.lowerLeft, "lower-left", formatPoint(def.LowerLeft), "lower-left corner as re,im")
	f.StringVar(&opts.upperRight, "upper-right", formatPoint(def.UpperRight), "upper-right corner as re,im")
	f.Float64Var(&opts.density, "density", def.Density, "pixels per unit of the complex plane")
	f.Uint64Var(&opts.maxIter, "max-iter", pipeline.DefaultMaxIter, "iteration cap")
	f.StringVarP(&opts.output, "output", "o", pipeline.DefaultOutput, "output file")
	f.StringVarP(&opts.format, "format", "f", "", "output format: png, tiff, bmp (default: from the file extension)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.refresh, "refresh", false, "render even if a cached image exists")
	f.BoolVar(&opts.progress, "progress", false, "show a progress bar while rendering")

	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func completePresets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, p := range fractal.Presets() {
		names = append(names, p.Name+"\t"+p.Description)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return sink.Formats(), cobra.ShellCompDirectiveNoFileComp
}

// resolve merges config file, preset and explicit flags, in that order of
// increasing precedence, into pipeline options and an output path.
func (o *renderOpts) resolve(changed func(string) bool) (pipeline.Options, string, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return pipeline.Options{}, "", err
	}

	region, maxIter, err := cfg.Render()
	if err != nil {
		return pipeline.Options{}, "", err
	}

	if changed("preset") {
		p, err := fractal.LookupPreset(o.preset)
		if err != nil {
			return pipeline.Options{}, "", err
		}
		region, maxIter = p.Region, p.MaxIter
	}
	if changed("lower-left") {
		if region.LowerLeft, err = parsePoint(o.lowerLeft); err != nil {
			return pipeline.Options{}, "", err
		}
	}
	if changed("upper-right") {
		if region.UpperRight, err = parsePoint(o.upperRight); err != nil {
			return pipeline.Options{}, "", err
		}
	}
	if changed("density") {
		region.Density = o.density
	}
	if changed("max-iter") {
		if err := fractal.ValidateIterations(o.maxIter); err != nil {
			return pipeline.Options{}, "", err
		}
		maxIter = o.maxIter
	}

	output := cfg.Output.Path
	format := cfg.OutputFormat()
	if changed("output") {
		output = o.output
		if f, ok := sink.FormatFromPath(output); ok {
			format = f
		}
	}
	if changed("format") {
		format = strings.ToLower(o.format)
	}
	if err := errs.ValidateOutputPath(output); err != nil {
		return pipeline.Options{}, "", err
	}

	po := pipeline.Options{
		Region:  region,
		MaxIter: maxIter,
		Format:  format,
		Refresh: o.refresh,
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, "", err
	}
	return po, output, nil
}

// loadConfig loads path, or the default config file when path is empty and
// the file exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	def, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.LoadOptional(def)
}

// runRender executes the pipeline and writes the image to output.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, flags *renderOpts) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	r := opts.Region
	logger.Debug("render request",
		"region", r.String(),
		"width", r.PixelWidth(),
		"height", r.PixelHeight(),
		"max_iter", opts.MaxIter,
		"format", opts.Format)

	prog := newProgress(logger)
	var result *pipeline.Result
	if flags.progress {
		result, err = runWithProgressBar(ctx, runner, opts)
	} else {
		result, err = runWithSpinner(ctx, runner, opts)
	}
	if err != nil {
		return err
	}

	if err := sink.WriteFile(output, result.Artifact); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d x %d", result.Stats.Width, result.Stats.Height))

	printSuccess("Wrote %s", output)
	printRenderStats(result)
	return nil
}

// runWithSpinner shows row progress as a percentage next to a spinner.
func runWithSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	s := newSpinner(ctx, "Rendering")
	s.Start()
	return renderWithSpinner(s, runner, opts)
}

func renderWithSpinner(s *Spinner, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	last := -1
	opts.Progress = func(done, total int) error {
		if pct := done * 100 / total; pct != last {
			last = pct
			s.SetMessage(fmt.Sprintf("Rendering %d%%", pct))
		}
		return nil
	}

	result, err := runner.Execute(s.ctx, opts)
	if err != nil {
		if s.Cancelled() {
			// Interrupted; main reports it through the exit code.
			s.Stop()
			return nil, err
		}
		s.StopWithError(fmt.Sprintf("%s: %s", s.Message(), errs.UserMessage(err)))
		return nil, err
	}
	if result.CacheInfo.RenderHit {
		s.StopWithSuccess("Loaded from cache")
		return result, nil
	}
	s.Stop()
	return result, nil
}

// parsePoint parses "re,im" into a complex number.
func parsePoint(s string) (complex128, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "point %q must be re,im", s)
	}
	re, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "real part of %q", s)
	}
	im, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "imaginary part of %q", s)
	}
	return complex(re, im), nil
}

// formatPoint is the inverse of parsePoint.
func formatPoint(z complex128) string {
	return strconv.FormatFloat(real(z), 'g', -1, 64) + "," + strconv.FormatFloat(imag(z), 'g', -1, 64)
}
