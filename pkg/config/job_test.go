package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

const renderYAML = `
input: clip.mov
render:
  output: out/result.webm
  preset: high
  start: 1s
  end: "4.5"
  speed: 2
  audio: false
  crop: {x: 10, y: 20, width: 640, height: 360}
  rotate: 1
  flip_x: true
  effects:
    - name: grayscale
    - name: brightness
      amount: 20
  color_matrices:
    - [1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
  blur: 1.5
`

func TestParseJobFileRender(t *testing.T) {
	jf, err := ParseJobFile([]byte(renderYAML))
	if err != nil {
		t.Fatalf("ParseJobFile() error = %v", err)
	}
	job, err := jf.ToRenderJob()
	if err != nil {
		t.Fatalf("ToRenderJob() error = %v", err)
	}

	if job.OutputFormat != ports.OutputWebM {
		t.Errorf("OutputFormat = %q, want webm from extension", job.OutputFormat)
	}
	if job.Source.Path != "clip.mov" {
		t.Errorf("Source = %+v", job.Source)
	}
	if *job.StartTime != time.Second || *job.EndTime != 4500*time.Millisecond {
		t.Errorf("range = %v..%v", *job.StartTime, *job.EndTime)
	}
	if job.PlaybackSpeed != 2 || job.EnableAudio || job.BlurRadius != 1.5 {
		t.Errorf("unexpected job %+v", job)
	}
	if job.TargetBitrateBps != 8_000_000 {
		t.Errorf("TargetBitrateBps = %d, want high preset", job.TargetBitrateBps)
	}
	if job.Transform == nil || job.Transform.RotateTurns != 1 || !job.Transform.FlipX {
		t.Fatalf("Transform = %+v", job.Transform)
	}
	if *job.Transform.Crop != (pipeline.Rectangle{X: 10, Y: 20, Width: 640, Height: 360}) {
		t.Errorf("Crop = %+v", *job.Transform.Crop)
	}
	if len(job.ColorMatrices) != 3 {
		t.Fatalf("len(ColorMatrices) = %d, want 3", len(job.ColorMatrices))
	}
	if job.ColorMatrices[1][4] != 20 {
		t.Errorf("brightness offset = %v", job.ColorMatrices[1][4])
	}
	if len(job.ColorMatrices[2]) != 16 {
		t.Errorf("explicit matrix kept %d values", len(job.ColorMatrices[2]))
	}
}

func TestParseJobFileDefaults(t *testing.T) {
	jf, err := ParseJobFile([]byte("input: a.mp4\nrender:\n  output: b.mp4\n"))
	if err != nil {
		t.Fatal(err)
	}
	job, err := jf.ToRenderJob()
	if err != nil {
		t.Fatal(err)
	}
	if job.Speed() != 1 || !job.EnableAudio || job.Transform != nil || job.TargetBitrateBps != 0 {
		t.Errorf("unexpected defaults %+v", job)
	}
}

func TestParseJobFileErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "input: [a"},
		{"no input", "render:\n  output: a.mp4\n"},
		{"no sections", "input: a.mp4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobFile([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidJobFile) {
				t.Errorf("error = %v, want ErrInvalidJobFile", err)
			}
		})
	}
}

func TestToRenderJobErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad format", "input: a.mp4\nrender:\n  output: b.avi\n"},
		{"bad duration", "input: a.mp4\nrender:\n  output: b.mp4\n  start: soon\n"},
		{"bad effect", "input: a.mp4\nrender:\n  output: b.mp4\n  effects: [{name: sepia}]\n"},
		{"missing section", "input: a.mp4\nthumbnails:\n  at: [0s]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jf, err := ParseJobFile([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := jf.ToRenderJob(); !errors.Is(err, ErrInvalidJobFile) {
				t.Errorf("error = %v, want ErrInvalidJobFile", err)
			}
		})
	}
}

func TestToThumbnailRequest(t *testing.T) {
	jf, err := ParseJobFile([]byte(`
input: a.mp4
thumbnails:
  output_dir: thumbs
  format: webp
  fit: contain
  size: {width: 200, height: 100}
  quality: 60
  clamp: true
  at: [2s, 0s, 500ms]
`))
	if err != nil {
		t.Fatal(err)
	}
	req, err := jf.ToThumbnailRequest()
	if err != nil {
		t.Fatalf("ToThumbnailRequest() error = %v", err)
	}
	want := []time.Duration{2 * time.Second, 0, 500 * time.Millisecond}
	if len(req.Timestamps) != 3 {
		t.Fatalf("Timestamps = %v", req.Timestamps)
	}
	for i := range want {
		if req.Timestamps[i] != want[i] {
			t.Errorf("Timestamps = %v, want %v", req.Timestamps, want)
		}
	}
	if req.OutputFormat != ports.FormatWebP || req.BoxFit != pipeline.BoxFitContain {
		t.Errorf("unexpected request %+v", req)
	}
	if req.OutputSize != (pipeline.Dimension{Width: 200, Height: 100}) || req.Quality != 60 || !req.ClampToDuration {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestToThumbnailRequestBadFit(t *testing.T) {
	jf, err := ParseJobFile([]byte("input: a.mp4\nthumbnails:\n  fit: stretch\n  at: [0s]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jf.ToThumbnailRequest(); !errors.Is(err, ErrInvalidJobFile) {
		t.Errorf("error = %v, want ErrInvalidJobFile", err)
	}
}

func TestToKeyFrameRequest(t *testing.T) {
	jf, err := ParseJobFile([]byte("input: a.mp4\nkeyframes:\n  count: 6\n  format: png\n  preset: low\n"))
	if err != nil {
		t.Fatal(err)
	}
	req, err := jf.ToKeyFrameRequest()
	if err != nil {
		t.Fatalf("ToKeyFrameRequest() error = %v", err)
	}
	if req.MaxOutputFrames != 6 || req.OutputFormat != ports.FormatPNG || req.Quality != 70 {
		t.Errorf("unexpected request %+v", req)
	}
	if req.BoxFit != pipeline.BoxFitCover || req.OutputSize.Width != 320 {
		t.Errorf("unexpected defaults %+v", req)
	}

	jf.KeyFrames.Count = 0
	if _, err := jf.ToKeyFrameRequest(); !errors.Is(err, ErrInvalidJobFile) {
		t.Errorf("zero count error = %v", err)
	}
}

func TestLoadJobFileResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	data := []byte("input: clip.mp4\nrender:\n  output: /abs/out.mp4\nkeyframes:\n  count: 2\n  output_dir: frames\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	jf, err := LoadJobFile(path)
	if err != nil {
		t.Fatalf("LoadJobFile() error = %v", err)
	}
	if jf.Input != filepath.Join(dir, "clip.mp4") {
		t.Errorf("Input = %q", jf.Input)
	}
	if jf.Render.Output != "/abs/out.mp4" {
		t.Errorf("absolute output changed: %q", jf.Render.Output)
	}
	if jf.KeyFrames.OutputDir != filepath.Join(dir, "frames") {
		t.Errorf("OutputDir = %q", jf.KeyFrames.OutputDir)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7s", 7 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"2.5", 2500 * time.Millisecond, false},
		{" 250ms ", 250 * time.Millisecond, false},
		{"0", 0, false},
		{"later", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
