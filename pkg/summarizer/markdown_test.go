package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/clipforge/pkg/mocks"
	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

func probeSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Source:      SourceInfo{Name: "clip.mov", Path: "/videos/clip.mov"},
		Metadata: &pipeline.VideoMetadata{
			Duration:        12500 * time.Millisecond,
			Width:           1920,
			Height:          1080,
			RotationDegrees: 90,
			Extension:       "mov",
			FileSizeBytes:   1024 * 1024,
			BitrateBps:      4_200_000,
			VideoCodec:      "h264",
			FrameRate:       29.97,
			HasAudio:        true,
		},
	}
}

func TestMarkdownFormatter_Format_Probe(t *testing.T) {
	result := NewMarkdownFormatter().Format(probeSummary())

	checks := []string{
		"# Clip Summary",
		"2024-01-15T10:30:00Z",
		"| File | clip.mov |",
		"12.50 s",
		"1920x1080",
		"90°",
		"| Container | mov |",
		"h264",
		"29.97 fps",
		"| Audio | Yes |",
		"4.20 Mbps",
		"1.00 MB",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	for _, absent := range []string{"## Render Settings", "## Output", "## Images"} {
		if strings.Contains(result, absent) {
			t.Errorf("probe summary should not contain %q", absent)
		}
	}
}

func TestMarkdownFormatter_Format_MissingFields(t *testing.T) {
	s := probeSummary()
	s.Metadata.VideoCodec = ""
	s.Metadata.FrameRate = 0
	s.Metadata.BitrateBps = 0
	s.Metadata.HasAudio = false

	result := NewMarkdownFormatter().Format(s)
	if strings.Count(result, "N/A") != 3 {
		t.Errorf("expected codec, frame rate and bitrate to be N/A:\n%s", result)
	}
	if !strings.Contains(result, "| Audio | No |") {
		t.Error("expected audio No")
	}
}

func TestMarkdownFormatter_Format_Render(t *testing.T) {
	start, end := time.Second, 4500*time.Millisecond
	job := pipeline.DefaultRenderJob(ports.SourceFromPath("clip.mov"), ports.OutputWebM)
	job.StartTime = &start
	job.EndTime = &end
	job.PlaybackSpeed = 2
	job.EnableAudio = false
	job.TargetBitrateBps = 800_000
	job.BlurRadius = 1.5
	job.ColorMatrices = []pipeline.ColorMatrix{{1}, {2}}
	job.Transform = &pipeline.ExportTransform{
		Crop:        &pipeline.Rectangle{X: 10, Y: 20, Width: 640, Height: 360},
		RotateTurns: 1,
		FlipX:       true,
		ScaleX:      0.5,
	}

	s := probeSummary()
	s.Render = &job
	s.Output = &OutputInfo{Path: "out.webm", Format: "webm", Width: 180, Height: 320, FrameCount: 53, DurationMs: 1750, FileSize: 1536, ElapsedMs: 900}

	result := NewMarkdownFormatter().Format(s)
	checks := []string{
		"## Render Settings",
		"| Output Format | webm |",
		"1.00 s - 4.50 s",
		"2.00x",
		"| Audio | Disabled |",
		"800 kbps",
		"640x360+10+20",
		"| Flip | Horizontal |",
		"0.50 x 1.00",
		"| Color Matrices | 2 |",
		"## Output",
		"180x320",
		"| Frames | 53 |",
		"1.75 s",
		"1.50 KB",
		"900 ms",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Format_OpenRange(t *testing.T) {
	s := probeSummary()
	job := pipeline.DefaultRenderJob(ports.SourceFromPath("clip.mov"), ports.OutputMP4)
	s.Render = &job

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "| Range | Start - End |") {
		t.Error("expected open range")
	}
	if strings.Contains(result, "| Crop |") {
		t.Error("no crop row without a transform")
	}
}

func TestMarkdownFormatter_Format_Images(t *testing.T) {
	s := NewBuilder().
		WithSource("clip.mp4", "clip.mp4").
		AddImage("thumbs/thumb-0000.jpg", 2*time.Second, 2048).
		Build()

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "| 1 | 2.00 s | thumbs/thumb-0000.jpg | 2.00 KB |") {
		t.Errorf("missing image row:\n%s", result)
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Clip Summary": "クリップサマリー",
			"Resolution":   "解像度",
			"Yes":          "あり",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(probeSummary())

	for _, want := range []string{"クリップサマリー", "解像度", "あり"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(probeSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "report" }), fs)

	if err := w.Write("reports/run.md", NewSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, ok := fs.GetFile("reports/run.md")
	if !ok || string(data) != "report" {
		t.Errorf("file = %q, %v", data, ok)
	}
	if !fs.HasDir("reports") {
		t.Error("expected parent directory to be created")
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }
	w := NewWriter(NewMarkdownFormatter(), fs)

	err := w.Write("run.md", NewSummary())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error = %v, want wrapped disk full", err)
	}
}
