package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/clipforge/pkg/clipforge"
	"github.com/user/clipforge/pkg/config"
	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
	"github.com/user/clipforge/pkg/stages/effects"
	"github.com/user/clipforge/pkg/summarizer"
)

func summaryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "summary",
		Usage:    l10n.T("Output execution summary to file (Markdown format)"),
		Category: l10n.T(catOutput),
	}
}

func imageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: ".", Usage: l10n.T("Output directory for images"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "jpeg", Usage: l10n.T("Image format (jpeg, png, webp)"), Category: l10n.T(catImages)},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: clipforge.DefaultThumbnailWidth, Usage: l10n.T("Target width in pixels"), Category: l10n.T(catImages)},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: clipforge.DefaultThumbnailHeight, Usage: l10n.T("Target height in pixels"), Category: l10n.T(catImages)},
		&cli.StringFlag{Name: "fit", Value: "cover", Usage: l10n.T("Box fit (cover, contain)"), Category: l10n.T(catImages)},
		&cli.BoolFlag{Name: "crop-to-target", Usage: l10n.T("Center-crop cover results to the exact target size"), Category: l10n.T(catImages)},
		&cli.IntFlag{Name: "quality", Usage: l10n.T("Image quality (1-100)"), Category: l10n.T(catQuality)},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T(catQuality)},
		summaryFlag(),
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render an edited copy of a video"),
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output video file path (required)"), Category: l10n.T(catOutput)},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Output format (mp4, mov, webm); defaults to the output extension"), Category: l10n.T(catOutput)},
			summaryFlag(),

			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: l10n.T("Start time (e.g. 1.5s)"), Category: l10n.T(catEdit)},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: l10n.T("End time (e.g. 10s)"), Category: l10n.T(catEdit)},
			&cli.Float64Flag{Name: "speed", Value: 1, Usage: l10n.T("Playback speed multiplier"), Category: l10n.T(catEdit)},
			&cli.BoolFlag{Name: "no-audio", Usage: l10n.T("Drop the audio track"), Category: l10n.T(catEdit)},
			&cli.StringFlag{Name: "crop", Usage: l10n.T("Crop rectangle in source pixels (x,y,width,height)"), Category: l10n.T(catEdit)},
			&cli.IntFlag{Name: "rotate", Usage: l10n.T("Rotate by quarter turns clockwise"), Category: l10n.T(catEdit)},
			&cli.BoolFlag{Name: "flip-x", Usage: l10n.T("Mirror horizontally"), Category: l10n.T(catEdit)},
			&cli.BoolFlag{Name: "flip-y", Usage: l10n.T("Mirror vertically"), Category: l10n.T(catEdit)},
			&cli.Float64Flag{Name: "scale", Usage: l10n.T("Uniform scale factor"), Category: l10n.T(catEdit)},

			&cli.BoolFlag{Name: "grayscale", Usage: l10n.T("Convert to grayscale"), Category: l10n.T(catEffects)},
			&cli.Float64Flag{Name: "brightness", Usage: l10n.T("Brightness offset (-255 to 255)"), Category: l10n.T(catEffects)},
			&cli.Float64Flag{Name: "blur", Usage: l10n.T("Gaussian blur radius"), Category: l10n.T(catEffects)},

			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T(catQuality)},
			&cli.Float64Flag{Name: "bitrate", Usage: l10n.T("Target bitrate in Mbps (overrides quality preset)"), Category: l10n.T(catQuality)},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Output frame rate (default: source rate)"), Category: l10n.T(catQuality)},
		},
		Action: renderAction,
	}
}

func thumbnailsCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringSliceFlag{Name: "at", Aliases: []string{"t"}, Required: true, Usage: l10n.T("Timestamps to extract (repeatable, e.g. --at 1s --at 2.5)")},
		&cli.BoolFlag{Name: "clamp", Usage: l10n.T("Clamp timestamps past the end to the last frame")},
	}, imageFlags()...)
	return &cli.Command{
		Name:      "thumbnails",
		Usage:     l10n.T("Extract still images at given timestamps"),
		ArgsUsage: "INPUT",
		Flags:     flags,
		Action:    thumbnailsAction,
	}
}

func keyframesCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 8, Usage: l10n.T("Number of evenly spaced frames")},
	}, imageFlags()...)
	return &cli.Command{
		Name:      "keyframes",
		Usage:     l10n.T("Extract evenly spaced still images"),
		ArgsUsage: "INPUT",
		Flags:     flags,
		Action:    keyframesAction,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show video metadata"),
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: l10n.T("Print the report as JSON")},
			summaryFlag(),
		},
		Action: probeAction,
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     l10n.T("Run the jobs described in a job file"),
		ArgsUsage: "JOBFILE",
		Flags:     []cli.Flag{summaryFlag()},
		Action:    runAction,
	}
}

func inputArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%w: %s", pipeline.ErrInvalidRequest, l10n.T("Exactly one input argument is required"))
	}
	return c.Args().First(), nil
}

func renderAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}
	job, err := renderJobFromFlags(c, input)
	if err != nil {
		return err
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.engine.Close()

	sb := summarizer.NewBuilder().WithSource(ports.SourceFromPath(input).Name(), input)
	if err := r.render(c.Context, job, c.String("output"), sb); err != nil {
		return err
	}
	return r.writeSummary(c.Context, c.String("summary"), job.Source, sb)
}

func renderJobFromFlags(c *cli.Context, input string) (pipeline.RenderJob, error) {
	output := c.String("output")
	name := c.String("format")
	if name == "" {
		name = filepath.Ext(output)
	}
	format, err := ports.ParseOutputFormat(name)
	if err != nil {
		return pipeline.RenderJob{}, fmt.Errorf("%w: %w", pipeline.ErrUnsupportedOutputFormat, err)
	}

	b := clipforge.NewRenderBuilder(ports.SourceFromPath(input), format).
		WithSpeed(c.Float64("speed")).
		WithAudio(!c.Bool("no-audio"))

	if c.IsSet("start") {
		d, err := config.ParseDuration(c.String("start"))
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithStart(d)
	}
	if c.IsSet("end") {
		d, err := config.ParseDuration(c.String("end"))
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithEnd(d)
	}
	if c.IsSet("crop") {
		x, y, w, h, err := parseCrop(c.String("crop"))
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithCrop(x, y, w, h)
	}
	if c.IsSet("rotate") {
		b.WithRotation(c.Int("rotate"))
	}
	if c.Bool("flip-x") || c.Bool("flip-y") {
		b.WithFlip(c.Bool("flip-x"), c.Bool("flip-y"))
	}
	if c.IsSet("scale") {
		s := c.Float64("scale")
		b.WithScale(s, s)
	}

	if c.Bool("grayscale") {
		b.WithColorMatrix(effects.Grayscale())
	}
	if c.IsSet("brightness") {
		b.WithColorMatrix(effects.Brightness(c.Float64("brightness")))
	}
	if c.IsSet("blur") {
		b.WithBlur(c.Float64("blur"))
	}

	if c.IsSet("preset") {
		b.WithQualityPreset(clipforge.ParseQualityPreset(c.String("preset")))
	}
	if c.IsSet("bitrate") {
		b.WithBitrate(clipforge.MbpsToBps(c.Float64("bitrate")))
	}
	if c.IsSet("fps") {
		b.WithFrameRate(c.Float64("fps"))
	}
	return b.Build(), nil
}

// parseCrop parses "x,y,width,height".
func parseCrop(s string) (x, y, w, h int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("%w: crop must be x,y,width,height", pipeline.ErrInvalidCropBounds)
	}
	var v [4]int
	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			return 0, 0, 0, 0, fmt.Errorf("%w: %q", pipeline.ErrInvalidCropBounds, s)
		}
		v[i] = n
	}
	return v[0], v[1], v[2], v[3], nil
}

func imageOptions(c *cli.Context) (ports.ImageFormat, pipeline.BoxFit, error) {
	format, err := ports.ParseImageFormat(c.String("format"))
	if err != nil {
		return format, "", fmt.Errorf("%w: %w", pipeline.ErrInvalidRequest, err)
	}
	switch fit := pipeline.BoxFit(c.String("fit")); fit {
	case pipeline.BoxFitCover, pipeline.BoxFitContain:
		return format, fit, nil
	default:
		return format, "", fmt.Errorf("%w: unknown fit %q", pipeline.ErrInvalidRequest, fit)
	}
}

func thumbnailsAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}
	format, fit, err := imageOptions(c)
	if err != nil {
		return err
	}

	b := clipforge.NewThumbnailBuilder(ports.SourceFromPath(input)).
		WithFormat(format).
		WithSize(c.Int("width"), c.Int("height")).
		WithBoxFit(fit).
		WithCropToTarget(c.Bool("crop-to-target")).
		WithClamp(c.Bool("clamp"))
	if c.IsSet("preset") {
		b.WithQualityPreset(clipforge.ParseQualityPreset(c.String("preset")))
	}
	if c.IsSet("quality") {
		b.WithQuality(c.Int("quality"))
	}
	for _, s := range c.StringSlice("at") {
		d, err := config.ParseDuration(s)
		if err != nil {
			return err
		}
		b.At(d)
	}
	req := b.Build()

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.engine.Close()

	sb := summarizer.NewBuilder().WithSource(req.Source.Name(), input)
	if err := r.thumbnails(c.Context, req, c.String("output"), sb); err != nil {
		return err
	}
	return r.writeSummary(c.Context, c.String("summary"), req.Source, sb)
}

func keyframesAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}
	format, fit, err := imageOptions(c)
	if err != nil {
		return err
	}

	b := clipforge.NewKeyFrameBuilder(ports.SourceFromPath(input), c.Int("count")).
		WithFormat(format).
		WithSize(c.Int("width"), c.Int("height")).
		WithBoxFit(fit).
		WithCropToTarget(c.Bool("crop-to-target"))
	if c.IsSet("preset") {
		b.WithQualityPreset(clipforge.ParseQualityPreset(c.String("preset")))
	}
	if c.IsSet("quality") {
		b.WithQuality(c.Int("quality"))
	}
	req := b.Build()

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.engine.Close()

	sb := summarizer.NewBuilder().WithSource(req.Source.Name(), input)
	if err := r.keyframes(c.Context, req, c.String("output"), sb); err != nil {
		return err
	}
	return r.writeSummary(c.Context, c.String("summary"), req.Source, sb)
}

func probeAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}
	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.engine.Close()

	ctx, stop := r.signalContext(c.Context)
	defer stop()

	src := ports.SourceFromPath(input)
	meta, err := r.engine.Metadata(ctx, src)
	if err != nil {
		return err
	}

	summary := summarizer.NewBuilder().
		WithSource(src.Name(), input).
		WithMetadata(meta).
		Build()
	f := r.formatter()
	if c.Bool("json") {
		f = summarizer.JSONFormatter
	}
	fmt.Fprint(c.App.Writer, f.Format(summary))

	if path := c.String("summary"); path != "" {
		return r.saveSummary(path, summary)
	}
	return nil
}

func runAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: %s", pipeline.ErrInvalidRequest, l10n.T("A job file argument is required"))
	}
	jf, err := config.LoadJobFile(c.Args().First())
	if err != nil {
		return err
	}

	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.engine.Close()

	sb := summarizer.NewBuilder().WithSource(jf.Source().Name(), jf.Input)

	if jf.Render != nil {
		if jf.Render.Output == "" {
			return fmt.Errorf("%w: render output is required", config.ErrInvalidJobFile)
		}
		job, err := jf.ToRenderJob()
		if err != nil {
			return err
		}
		if err := r.render(c.Context, job, jf.Render.Output, sb); err != nil {
			return err
		}
	}
	if jf.Thumbnails != nil {
		req, err := jf.ToThumbnailRequest()
		if err != nil {
			return err
		}
		if err := r.thumbnails(c.Context, req, outputDir(jf.Thumbnails.OutputDir), sb); err != nil {
			return err
		}
	}
	if jf.KeyFrames != nil {
		req, err := jf.ToKeyFrameRequest()
		if err != nil {
			return err
		}
		if err := r.keyframes(c.Context, req, outputDir(jf.KeyFrames.OutputDir), sb); err != nil {
			return err
		}
	}
	return r.writeSummary(c.Context, c.String("summary"), jf.Source(), sb)
}

func outputDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func (r *runtime) render(ctx context.Context, job pipeline.RenderJob, output string, sb *summarizer.Builder) error {
	ctx, stop := r.signalContext(ctx)
	defer stop()

	started := time.Now()
	handle, err := r.engine.RenderDetailed(ctx, job)
	if err != nil {
		return err
	}
	showProgress(ctx, "render", handle.Progress())

	result, err := handle.Wait(ctx)
	if err != nil {
		return err
	}

	if err := r.writeFile(output, result.Data); err != nil {
		return err
	}
	r.log.Info("Output saved to %s", output)

	sb.WithRender(job).WithOutput(output, string(job.OutputFormat), result, time.Since(started))
	return nil
}

func (r *runtime) thumbnails(ctx context.Context, req pipeline.ThumbnailRequest, dir string, sb *summarizer.Builder) error {
	ctx, stop := r.signalContext(ctx)
	defer stop()

	handle, err := r.engine.Thumbnails(ctx, req)
	if err != nil {
		return err
	}
	showProgress(ctx, "thumbnails", handle.Progress())

	images, err := handle.Wait(ctx)
	if err != nil {
		return err
	}
	return r.saveImages(dir, "thumb", req.OutputFormat, images, req.Timestamps, sb)
}

func (r *runtime) keyframes(ctx context.Context, req pipeline.KeyFrameRequest, dir string, sb *summarizer.Builder) error {
	ctx, stop := r.signalContext(ctx)
	defer stop()

	handle, err := r.engine.KeyFrames(ctx, req)
	if err != nil {
		return err
	}
	showProgress(ctx, "keyframes", handle.Progress())

	images, err := handle.Wait(ctx)
	if err != nil {
		return err
	}

	var timestamps []time.Duration
	if meta, err := r.engine.Metadata(ctx, req.Source); err == nil {
		timestamps = req.Timestamps(meta.Duration)
	}
	return r.saveImages(dir, "keyframe", req.OutputFormat, images, timestamps, sb)
}

func (r *runtime) saveImages(dir, prefix string, format ports.ImageFormat, images [][]byte, timestamps []time.Duration, sb *summarizer.Builder) error {
	if err := r.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for i, data := range images {
		path := filepath.Join(dir, fmt.Sprintf("%s-%04d.%s", prefix, i, format.Extension()))
		if err := r.fs.WriteFile(path, data); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		var ts time.Duration
		if i < len(timestamps) {
			ts = timestamps[i]
		}
		sb.AddImage(path, ts, int64(len(data)))
	}
	r.log.Info("Saved %d images to %s", len(images), dir)
	return nil
}

func (r *runtime) writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := r.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := r.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (r *runtime) formatter() summarizer.Formatter {
	return summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
}

// writeSummary adds source metadata and writes the report when path is set.
func (r *runtime) writeSummary(ctx context.Context, path string, src ports.VideoSource, sb *summarizer.Builder) error {
	if path == "" {
		return nil
	}
	if meta, err := r.engine.Metadata(ctx, src); err == nil {
		sb.WithMetadata(meta)
	}
	return r.saveSummary(path, sb.Build())
}

func (r *runtime) saveSummary(path string, s *summarizer.Summary) error {
	if err := summarizer.NewWriter(summarizer.ForPath(path, r.formatter()), r.fs).Write(path, s); err != nil {
		r.log.Error("Failed to write summary: %s", err)
		return err
	}
	r.log.Info("Summary saved to %s", path)
	return nil
}
