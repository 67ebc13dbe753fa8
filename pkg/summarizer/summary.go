package summarizer

import (
	"time"

	"github.com/user/clipforge/pkg/pipeline"
)

// Summary contains everything known about one clipforge run.
type Summary struct {
	GeneratedAt time.Time `json:"generatedAt"`

	// Source video
	Source   SourceInfo              `json:"source"`
	Metadata *pipeline.VideoMetadata `json:"metadata,omitempty"`

	// Render settings, nil for probe and image runs
	Render *pipeline.RenderJob `json:"render,omitempty"`

	// Render output, nil when nothing was rendered
	Output *OutputInfo `json:"output,omitempty"`

	// Extracted still images
	Images []ImageInfo `json:"images,omitempty"`
}

// SourceInfo identifies the input.
type SourceInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// OutputInfo describes a rendered video.
type OutputInfo struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FrameCount int    `json:"frameCount"`
	DurationMs int    `json:"durationMs"`
	FileSize   int64  `json:"fileSize"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// ImageInfo describes one extracted still image.
type ImageInfo struct {
	Path      string        `json:"path"`
	Timestamp time.Duration `json:"timestamp"`
	Size      int64         `json:"size"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the input description.
func (b *Builder) WithSource(name, path string) *Builder {
	b.summary.Source = SourceInfo{Name: name, Path: path}
	return b
}

// WithMetadata sets the probed source metadata.
func (b *Builder) WithMetadata(meta pipeline.VideoMetadata) *Builder {
	b.summary.Metadata = &meta
	return b
}

// WithRender records the render settings.
func (b *Builder) WithRender(job pipeline.RenderJob) *Builder {
	b.summary.Render = &job
	return b
}

// WithOutput records the render result written to path.
func (b *Builder) WithOutput(path string, format string, result pipeline.RenderResult, elapsed time.Duration) *Builder {
	b.summary.Output = &OutputInfo{
		Path:       path,
		Format:     format,
		Width:      result.Output.Width,
		Height:     result.Output.Height,
		FrameCount: result.FrameCount,
		DurationMs: result.DurationMs,
		FileSize:   result.FileSize,
		ElapsedMs:  int(elapsed.Milliseconds()),
	}
	return b
}

// AddImage records an extracted image.
func (b *Builder) AddImage(path string, ts time.Duration, size int64) *Builder {
	b.summary.Images = append(b.summary.Images, ImageInfo{Path: path, Timestamp: ts, Size: size})
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
