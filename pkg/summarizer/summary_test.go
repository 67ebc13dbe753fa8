package summarizer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithMetadata(t *testing.T) {
	meta := pipeline.VideoMetadata{Duration: 2 * time.Second, Width: 640, Height: 480}
	summary := NewBuilder().
		WithSource("clip.mp4", "/videos/clip.mp4").
		WithMetadata(meta).
		Build()

	if summary.Source.Name != "clip.mp4" || summary.Source.Path != "/videos/clip.mp4" {
		t.Errorf("unexpected source %+v", summary.Source)
	}
	if summary.Metadata == nil || summary.Metadata.Width != 640 {
		t.Errorf("unexpected metadata %+v", summary.Metadata)
	}
	if summary.Render != nil || summary.Output != nil {
		t.Error("render and output must stay nil")
	}
}

func TestBuilder_WithOutput(t *testing.T) {
	result := pipeline.RenderResult{
		Output:     pipeline.Dimension{Width: 320, Height: 240},
		DurationMs: 1500,
		FrameCount: 45,
		FileSize:   2048,
	}
	summary := NewBuilder().
		WithRender(pipeline.DefaultRenderJob(ports.SourceFromPath("a.mp4"), ports.OutputMP4)).
		WithOutput("out.mp4", "mp4", result, 1200*time.Millisecond).
		Build()

	o := summary.Output
	if o == nil {
		t.Fatal("Output not set")
	}
	if o.Width != 320 || o.Height != 240 || o.FrameCount != 45 || o.DurationMs != 1500 || o.FileSize != 2048 {
		t.Errorf("unexpected output %+v", o)
	}
	if o.ElapsedMs != 1200 {
		t.Errorf("ElapsedMs = %d, want 1200", o.ElapsedMs)
	}
	if summary.Render == nil || summary.Render.OutputFormat != ports.OutputMP4 {
		t.Errorf("unexpected render %+v", summary.Render)
	}
}

func TestBuilder_AddImage(t *testing.T) {
	summary := NewBuilder().
		AddImage("thumb-0000.jpg", 0, 100).
		AddImage("thumb-0001.jpg", time.Second, 200).
		Build()

	if len(summary.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2", len(summary.Images))
	}
	if summary.Images[1].Timestamp != time.Second || summary.Images[1].Size != 200 {
		t.Errorf("unexpected image %+v", summary.Images[1])
	}
}

func TestJSONFormatter(t *testing.T) {
	summary := NewBuilder().
		WithSource("clip.mp4", "/videos/clip.mp4").
		WithMetadata(pipeline.VideoMetadata{Width: 1920, Height: 1080, Duration: 2 * time.Second}).
		AddImage("thumb-0000.jpg", 0, 100).
		Build()

	out := JSONFormatter.Format(summary)
	var decoded struct {
		Source   SourceInfo             `json:"source"`
		Metadata pipeline.VideoMetadata `json:"metadata"`
		Images   []ImageInfo            `json:"images"`
		Output   *OutputInfo            `json:"output"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if decoded.Source.Path != "/videos/clip.mp4" || decoded.Metadata.Width != 1920 || len(decoded.Images) != 1 {
		t.Errorf("unexpected decode %+v", decoded)
	}
	if decoded.Output != nil {
		t.Error("output should be omitted")
	}
}

func TestForPath(t *testing.T) {
	md := NewMarkdownFormatter()
	if ForPath("report.JSON", md) != JSONFormatter {
		t.Error("json path should pick JSONFormatter")
	}
	if ForPath("report.md", md) != Formatter(md) {
		t.Error("other paths should keep markdown")
	}
}
