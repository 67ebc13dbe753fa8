package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// parseRender runs the render flag set against args and returns the built job.
func parseRender(t *testing.T, args ...string) (pipeline.RenderJob, error) {
	t.Helper()
	var job pipeline.RenderJob
	var buildErr error
	app := &cli.App{
		Name: "clipforge",
		Commands: []*cli.Command{{
			Name:  "render",
			Flags: renderCommand().Flags,
			Action: func(c *cli.Context) error {
				job, buildErr = renderJobFromFlags(c, c.Args().First())
				return nil
			},
		}},
	}
	if err := app.Run(append([]string{"clipforge", "render"}, args...)); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	return job, buildErr
}

func TestRenderJobFromFlags(t *testing.T) {
	job, err := parseRender(t,
		"-o", "out.webm",
		"--start", "1s",
		"--end", "2.5",
		"--speed", "0.5",
		"--no-audio",
		"--crop", "10, 20, 300, 200",
		"--rotate", "3",
		"--flip-y",
		"--grayscale",
		"--blur", "2",
		"--bitrate", "1.5",
		"in.mp4",
	)
	if err != nil {
		t.Fatalf("renderJobFromFlags() error = %v", err)
	}

	if job.OutputFormat != ports.OutputWebM || job.Source.Path != "in.mp4" {
		t.Errorf("unexpected format/source: %q %q", job.OutputFormat, job.Source.Path)
	}
	if *job.StartTime != time.Second || *job.EndTime != 2500*time.Millisecond {
		t.Errorf("range = %v..%v", *job.StartTime, *job.EndTime)
	}
	if job.PlaybackSpeed != 0.5 || job.EnableAudio || job.BlurRadius != 2 {
		t.Errorf("unexpected job %+v", job)
	}
	if job.TargetBitrateBps != 1_500_000 {
		t.Errorf("TargetBitrateBps = %d", job.TargetBitrateBps)
	}
	tr := job.Transform
	if tr == nil || *tr.Crop != (pipeline.Rectangle{X: 10, Y: 20, Width: 300, Height: 200}) || tr.RotateTurns != 3 || !tr.FlipY || tr.FlipX {
		t.Errorf("unexpected transform %+v", tr)
	}
	if len(job.ColorMatrices) != 1 {
		t.Errorf("expected grayscale matrix")
	}
}

func TestRenderJobFromFlagsDefaults(t *testing.T) {
	job, err := parseRender(t, "-o", "clip.mov", "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if job.OutputFormat != ports.OutputMOV || !job.EnableAudio || job.Speed() != 1 {
		t.Errorf("unexpected defaults %+v", job)
	}
	if job.Transform != nil || job.StartTime != nil || len(job.ColorMatrices) != 0 {
		t.Errorf("no edits expected: %+v", job)
	}
}

func TestRenderJobFromFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown extension", []string{"-o", "out.avi", "in.mp4"}, pipeline.ErrUnsupportedOutputFormat},
		{"bad crop", []string{"-o", "out.mp4", "--crop", "1,2,3", "in.mp4"}, pipeline.ErrInvalidCropBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRender(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseCrop(t *testing.T) {
	x, y, w, h, err := parseCrop("1,2,3,4")
	if err != nil || x != 1 || y != 2 || w != 3 || h != 4 {
		t.Errorf("parseCrop() = %d %d %d %d %v", x, y, w, h, err)
	}
	if _, _, _, _, err := parseCrop("a,b,c,d"); !errors.Is(err, pipeline.ErrInvalidCropBounds) {
		t.Errorf("error = %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: speed 0", pipeline.ErrInvalidSpeed), 2},
		{pipeline.ErrCancelled, 130},
		{errors.New("disk full"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	if err := app.Run([]string{"clipforge", "version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "dev") {
		t.Errorf("output = %q", out.String())
	}
}
