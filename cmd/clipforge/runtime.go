package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/user/clipforge/pkg/adapters/ffmpegcodec"
	"github.com/user/clipforge/pkg/adapters/filesink"
	"github.com/user/clipforge/pkg/adapters/ggrenderer"
	"github.com/user/clipforge/pkg/adapters/logger"
	"github.com/user/clipforge/pkg/adapters/nullsink"
	"github.com/user/clipforge/pkg/adapters/osfilesystem"
	"github.com/user/clipforge/pkg/config"
	"github.com/user/clipforge/pkg/engine"
	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
	"github.com/user/clipforge/pkg/progress"
)

// runtime holds the adapters and engine shared by all commands.
type runtime struct {
	cfg      config.Config
	log      ports.Logger
	fs       ports.FileSystem
	renderer ports.Renderer
	engine   *engine.Engine
}

// loadConfig merges the config file with global flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("ffprobe") {
		cfg.FFprobePath = c.String("ffprobe")
	}
	if c.IsSet("jobs") {
		cfg.MaxConcurrentJobs = c.Int("jobs")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.Level())
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	locator := cfg.Locator()
	eng, err := engine.New(engine.Deps{
		Decoder:  ffmpegcodec.NewDecoder(locator),
		Encoders: ffmpegcodec.NewFactory(locator),
		Renderer: renderer,
		FS:       fs,
		Prober:   ffmpegcodec.NewProber(locator),
		Sink:     sink,
		Logger:   log,
	}, cfg.ToEngineOptions())
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, fs: fs, renderer: renderer, engine: eng}, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func (r *runtime) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			r.log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// showProgress draws a percentage line on a terminal until the channel closes.
func showProgress(ctx context.Context, label string, ch *progress.Channel) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	go func() {
		last := -1
		for ev := range ch.Subscribe(ctx) {
			pct := int(ev.Progress * 100)
			if pct == last {
				continue
			}
			last = pct
			fmt.Fprintf(os.Stderr, "\r%s %3d%%", label, pct)
		}
		fmt.Fprintln(os.Stderr)
	}()
}

// exitCode maps caller errors to 2 and everything else to 1.
func exitCode(err error) int {
	if pipeline.IsCallerError(err) {
		return 2
	}
	if errors.Is(err, pipeline.ErrCancelled) {
		return 130
	}
	return 1
}
