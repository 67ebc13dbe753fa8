package pipeline

import (
	"iter"
	"math"
	"time"

	"github.com/user/clipforge/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// AspectRatio returns width/height, or 0 for an empty dimension.
func (d Dimension) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// IsEmpty reports whether either side is non-positive.
func (d Dimension) IsEmpty() bool {
	return d.Width <= 0 || d.Height <= 0
}

// Rectangle represents a rectangular area.
type Rectangle struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Size returns the rectangle dimensions.
func (r Rectangle) Size() Dimension {
	return Dimension{Width: r.Width, Height: r.Height}
}

// =============================================================================
// Metadata
// =============================================================================

// VideoMetadata describes a video asset.
// Width and Height are the coded pixel dimensions; RotationDegrees carries the
// display rotation tag separately and is never pre-applied to the resolution.
type VideoMetadata struct {
	Duration        time.Duration `json:"duration"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	RotationDegrees int           `json:"rotation"`
	Extension       string        `json:"extension"`
	FileSizeBytes   int64         `json:"fileSize"`
	BitrateBps      int64         `json:"bitrate"`

	VideoCodec string  `json:"videoCodec,omitempty"`
	FrameRate  float64 `json:"frameRate,omitempty"`
	HasAudio   bool    `json:"hasAudio"`
}

// Resolution returns the coded resolution.
func (m VideoMetadata) Resolution() Dimension {
	return Dimension{Width: m.Width, Height: m.Height}
}

// =============================================================================
// Render Job Types
// =============================================================================

// ExportTransform is the geometric edit intent of a render job.
// A zero ScaleX or ScaleY means 1.0.
type ExportTransform struct {
	Crop        *Rectangle `json:"crop,omitempty"`
	RotateTurns int        `json:"rotateTurns"`
	FlipX       bool       `json:"flipX"`
	FlipY       bool       `json:"flipY"`
	ScaleX      float64    `json:"scaleX"`
	ScaleY      float64    `json:"scaleY"`
}

// Scale returns the effective scale factors.
func (t ExportTransform) Scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// ColorMatrix is a 4x5 (20 values) or 4x4 (16 values) row-major matrix applied
// to each pixel's [R G B A] vector in 0..255 units. The fifth column of a 4x5
// matrix is an additive offset.
type ColorMatrix []float64

// RenderJob describes one render.
type RenderJob struct {
	Source           ports.VideoSource  `json:"-"`
	OutputFormat     ports.OutputFormat `json:"outputFormat"`
	Transform        *ExportTransform   `json:"transform,omitempty"`
	StartTime        *time.Duration     `json:"startTime,omitempty"`
	EndTime          *time.Duration     `json:"endTime,omitempty"`
	PlaybackSpeed    float64            `json:"playbackSpeed"`
	EnableAudio      bool               `json:"enableAudio"`
	ColorMatrices    []ColorMatrix      `json:"colorMatrices,omitempty"`
	BlurRadius       float64            `json:"blurRadius,omitempty"`
	TargetBitrateBps int64              `json:"targetBitrate,omitempty"`
	FrameRate        float64            `json:"frameRate,omitempty"` // 0 keeps the source rate
}

// DefaultRenderJob returns a RenderJob with default values.
func DefaultRenderJob(src ports.VideoSource, format ports.OutputFormat) RenderJob {
	return RenderJob{
		Source:        src,
		OutputFormat:  format,
		PlaybackSpeed: 1.0,
		EnableAudio:   true,
	}
}

// Speed returns the playback speed, treating 0 as 1.0.
func (j RenderJob) Speed() float64 {
	if j.PlaybackSpeed == 0 {
		return 1.0
	}
	return j.PlaybackSpeed
}

// =============================================================================
// Frame Extraction Types
// =============================================================================

// BoxFit is the policy for resizing a frame into a target box.
type BoxFit string

const (
	// BoxFitCover scales so both sides are at least the target.
	BoxFitCover BoxFit = "cover"
	// BoxFitContain scales so the frame fits entirely within the target.
	BoxFitContain BoxFit = "contain"
)

// ThumbnailRequest extracts frames at explicit timestamps.
type ThumbnailRequest struct {
	Source       ports.VideoSource `json:"-"`
	OutputFormat ports.ImageFormat `json:"outputFormat"`
	OutputSize   Dimension         `json:"outputSize"`
	BoxFit       BoxFit            `json:"boxFit"`
	Timestamps   []time.Duration   `json:"timestamps"`
	Quality      int               `json:"quality,omitempty"` // 1-100, 0 = default

	// CropToTarget center-crops cover results to exactly OutputSize.
	CropToTarget bool `json:"cropToTarget,omitempty"`
	// ClampToDuration clamps out-of-range timestamps to the last frame instead of failing.
	ClampToDuration bool `json:"clampToDuration,omitempty"`
}

// KeyFrameRequest extracts MaxOutputFrames evenly spaced frames.
type KeyFrameRequest struct {
	Source          ports.VideoSource `json:"-"`
	OutputFormat    ports.ImageFormat `json:"outputFormat"`
	OutputSize      Dimension         `json:"outputSize"`
	BoxFit          BoxFit            `json:"boxFit"`
	MaxOutputFrames int               `json:"maxOutputFrames"`
	Quality         int               `json:"quality,omitempty"`
	CropToTarget    bool              `json:"cropToTarget,omitempty"`
}

// Timestamps derives t_i = i * duration / MaxOutputFrames for i in [0, MaxOutputFrames).
func (r KeyFrameRequest) Timestamps(duration time.Duration) []time.Duration {
	if r.MaxOutputFrames <= 0 {
		return nil
	}
	k := int64(r.MaxOutputFrames)
	out := make([]time.Duration, 0, r.MaxOutputFrames)
	for i := int64(0); i < k; i++ {
		out = append(out, time.Duration(i*int64(duration)/k))
	}
	return out
}

// ThumbnailRequest converts the key frame request into an explicit timestamp request.
func (r KeyFrameRequest) ThumbnailRequest(duration time.Duration) ThumbnailRequest {
	return ThumbnailRequest{
		Source:       r.Source,
		OutputFormat: r.OutputFormat,
		OutputSize:   r.OutputSize,
		BoxFit:       r.BoxFit,
		Timestamps:   r.Timestamps(duration),
		Quality:      r.Quality,
		CropToTarget: r.CropToTarget,
	}
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput is the input for the encode stage. Frames are produced lazily
// and must all share Width x Height.
type EncodeInput struct {
	Width   int
	Height  int
	FPS     float64
	Options ports.EncoderOptions
	Frames  iter.Seq2[ports.VideoFrame, error]
	Total   int // expected frame count, for progress

	// OnFrame is called after each encoded frame.
	OnFrame func(done, total int)
}

// EncodeResult is the output of the encode stage.
type EncodeResult struct {
	VideoData  []byte
	DurationMs int
	FrameCount int
	FileSize   int64
}

// =============================================================================
// Results
// =============================================================================

// RenderResult summarizes a finished render.
type RenderResult struct {
	Data       []byte
	Output     Dimension
	DurationMs int
	FrameCount int
	FileSize   int64
}

// SampledFrame is a decoded frame together with the timestamp that requested it.
type SampledFrame struct {
	Index     int
	Requested time.Duration
	Frame     ports.VideoFrame
}

// RoundDurationMs converts a duration to whole milliseconds, rounding half away from zero.
func RoundDurationMs(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Millisecond)))
}
