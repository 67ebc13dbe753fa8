// Package main provides the CLI entry point for clipforge.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

// Flag categories
const (
	catOutput  = "Output"
	catEdit    = "Editing"
	catEffects = "Effects"
	catQuality = "Video and Quality"
	catImages  = "Images"
	catDebug   = "Debug"
	catLogging = "Logging"
	catBackend = "Backend"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "clipforge",
		Usage:                l10n.T("Render, trim and inspect video clips"),
		Description:          l10n.T("clipforge applies transforms, timing edits and effects to videos and extracts thumbnails and metadata."),
		Version:              version,
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Commands: []*cli.Command{
			renderCommand(),
			thumbnailsCommand(),
			keyframesCommand(),
			probeCommand(),
			runCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("clipforge version %s", version))
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   l10n.T("Engine configuration file (YAML)"),
			EnvVars: []string{"CLIPFORGE_CONFIG"},
		},
		&cli.StringFlag{
			Name:     "ffmpeg",
			Usage:    l10n.T("Path to the ffmpeg executable"),
			Category: l10n.T(catBackend),
		},
		&cli.StringFlag{
			Name:     "ffprobe",
			Usage:    l10n.T("Path to the ffprobe executable"),
			Category: l10n.T(catBackend),
		},
		&cli.IntFlag{
			Name:     "jobs",
			Usage:    l10n.T("Maximum number of concurrent jobs"),
			Category: l10n.T(catBackend),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T(catDebug),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T(catDebug),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T(catLogging),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T(catLogging),
		},
	}
}
