// Package clipforge provides a high-level API for describing render,
// thumbnail and key frame jobs.
package clipforge

import (
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// QualityPreset represents an output quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains the parameters a preset controls.
type QualitySettings struct {
	BitrateBps   int64 // Video bitrate target
	ImageQuality int   // Still image quality (1-100)
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			BitrateBps:   MbpsToBps(1),
			ImageQuality: 70,
		}
	case QualityHigh:
		return QualitySettings{
			BitrateBps:   MbpsToBps(8),
			ImageQuality: 95,
		}
	default: // medium
		return QualitySettings{
			BitrateBps:   MbpsToBps(4),
			ImageQuality: 85,
		}
	}
}

// ParseQualityPreset returns the preset for name. Unknown names yield medium.
func ParseQualityPreset(name string) QualityPreset {
	switch QualityPreset(name) {
	case QualityLow, QualityHigh:
		return QualityPreset(name)
	default:
		return QualityMedium
	}
}

// MbpsToBps converts megabits per second to bits per second.
// Accepts float64 for fractional values (e.g., 1.5 Mbps).
func MbpsToBps(mbps float64) int64 {
	return int64(mbps * 1000 * 1000)
}

// RenderBuilder provides a fluent interface for building a RenderJob.
type RenderBuilder struct {
	job       pipeline.RenderJob
	transform pipeline.ExportTransform
	touched   bool
}

// NewRenderBuilder starts a render job with defaults: full range, speed 1.0,
// audio kept, encoder-default bitrate.
func NewRenderBuilder(src ports.VideoSource, format ports.OutputFormat) *RenderBuilder {
	return &RenderBuilder{job: pipeline.DefaultRenderJob(src, format)}
}

// Build returns the final RenderJob. The transform is only attached when a
// geometric option was set.
func (b *RenderBuilder) Build() pipeline.RenderJob {
	job := b.job
	if b.touched {
		t := b.transform
		if t.Crop != nil {
			c := *t.Crop
			t.Crop = &c
		}
		job.Transform = &t
	}
	job.ColorMatrices = append([]pipeline.ColorMatrix(nil), b.job.ColorMatrices...)
	return job
}

// WithRange trims the source to [start, end).
func (b *RenderBuilder) WithRange(start, end time.Duration) *RenderBuilder {
	b.job.StartTime = &start
	b.job.EndTime = &end
	return b
}

// WithStart trims the beginning of the source.
func (b *RenderBuilder) WithStart(start time.Duration) *RenderBuilder {
	b.job.StartTime = &start
	return b
}

// WithEnd trims the end of the source.
func (b *RenderBuilder) WithEnd(end time.Duration) *RenderBuilder {
	b.job.EndTime = &end
	return b
}

// WithSpeed sets the playback speed multiplier.
func (b *RenderBuilder) WithSpeed(speed float64) *RenderBuilder {
	b.job.PlaybackSpeed = speed
	return b
}

// WithCrop crops to the rectangle, in source pixels.
func (b *RenderBuilder) WithCrop(x, y, width, height int) *RenderBuilder {
	b.transform.Crop = &pipeline.Rectangle{X: x, Y: y, Width: width, Height: height}
	b.touched = true
	return b
}

// WithRotation rotates by quarter turns clockwise.
func (b *RenderBuilder) WithRotation(turns int) *RenderBuilder {
	b.transform.RotateTurns = turns
	b.touched = true
	return b
}

// WithFlip mirrors horizontally and/or vertically.
func (b *RenderBuilder) WithFlip(flipX, flipY bool) *RenderBuilder {
	b.transform.FlipX = flipX
	b.transform.FlipY = flipY
	b.touched = true
	return b
}

// WithScale scales the cropped frame.
func (b *RenderBuilder) WithScale(scaleX, scaleY float64) *RenderBuilder {
	b.transform.ScaleX = scaleX
	b.transform.ScaleY = scaleY
	b.touched = true
	return b
}

// WithColorMatrix appends a color matrix. Matrices apply in insertion order.
func (b *RenderBuilder) WithColorMatrix(m pipeline.ColorMatrix) *RenderBuilder {
	b.job.ColorMatrices = append(b.job.ColorMatrices, m)
	return b
}

// WithBlur sets the gaussian blur radius.
func (b *RenderBuilder) WithBlur(radius float64) *RenderBuilder {
	b.job.BlurRadius = radius
	return b
}

// WithAudio keeps or drops the audio track.
func (b *RenderBuilder) WithAudio(enabled bool) *RenderBuilder {
	b.job.EnableAudio = enabled
	return b
}

// WithBitrate sets the target video bitrate in bits per second.
func (b *RenderBuilder) WithBitrate(bps int64) *RenderBuilder {
	b.job.TargetBitrateBps = bps
	return b
}

// WithFrameRate forces the output frame rate.
func (b *RenderBuilder) WithFrameRate(fps float64) *RenderBuilder {
	b.job.FrameRate = fps
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *RenderBuilder) WithQualityPreset(preset QualityPreset) *RenderBuilder {
	b.job.TargetBitrateBps = GetQualitySettings(preset).BitrateBps
	return b
}
