package clipforge

import (
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Default still image output.
const (
	DefaultThumbnailWidth  = 320
	DefaultThumbnailHeight = 180
)

func defaultSize() pipeline.Dimension {
	return pipeline.Dimension{Width: DefaultThumbnailWidth, Height: DefaultThumbnailHeight}
}

// ThumbnailBuilder provides a fluent interface for building a ThumbnailRequest.
type ThumbnailBuilder struct {
	req pipeline.ThumbnailRequest
}

// NewThumbnailBuilder starts a JPEG cover thumbnail request.
func NewThumbnailBuilder(src ports.VideoSource) *ThumbnailBuilder {
	return &ThumbnailBuilder{req: pipeline.ThumbnailRequest{
		Source:       src,
		OutputFormat: ports.FormatJPEG,
		OutputSize:   defaultSize(),
		BoxFit:       pipeline.BoxFitCover,
	}}
}

// Build returns the final ThumbnailRequest.
func (b *ThumbnailBuilder) Build() pipeline.ThumbnailRequest {
	req := b.req
	req.Timestamps = append([]time.Duration(nil), b.req.Timestamps...)
	return req
}

// At appends timestamps. Output order follows call order.
func (b *ThumbnailBuilder) At(timestamps ...time.Duration) *ThumbnailBuilder {
	b.req.Timestamps = append(b.req.Timestamps, timestamps...)
	return b
}

// WithFormat sets the image format.
func (b *ThumbnailBuilder) WithFormat(format ports.ImageFormat) *ThumbnailBuilder {
	b.req.OutputFormat = format
	return b
}

// WithSize sets the target box.
func (b *ThumbnailBuilder) WithSize(width, height int) *ThumbnailBuilder {
	b.req.OutputSize = pipeline.Dimension{Width: width, Height: height}
	return b
}

// WithBoxFit sets the resize policy.
func (b *ThumbnailBuilder) WithBoxFit(fit pipeline.BoxFit) *ThumbnailBuilder {
	b.req.BoxFit = fit
	return b
}

// WithQuality sets the image quality (1-100).
func (b *ThumbnailBuilder) WithQuality(quality int) *ThumbnailBuilder {
	b.req.Quality = quality
	return b
}

// WithQualityPreset applies a quality preset.
func (b *ThumbnailBuilder) WithQualityPreset(preset QualityPreset) *ThumbnailBuilder {
	b.req.Quality = GetQualitySettings(preset).ImageQuality
	return b
}

// WithCropToTarget center-crops cover results to exactly the target size.
func (b *ThumbnailBuilder) WithCropToTarget(crop bool) *ThumbnailBuilder {
	b.req.CropToTarget = crop
	return b
}

// WithClamp pulls out-of-range timestamps onto the first or last frame.
func (b *ThumbnailBuilder) WithClamp(clamp bool) *ThumbnailBuilder {
	b.req.ClampToDuration = clamp
	return b
}

// KeyFrameBuilder provides a fluent interface for building a KeyFrameRequest.
type KeyFrameBuilder struct {
	req pipeline.KeyFrameRequest
}

// NewKeyFrameBuilder starts a request for count evenly spaced JPEG frames.
func NewKeyFrameBuilder(src ports.VideoSource, count int) *KeyFrameBuilder {
	return &KeyFrameBuilder{req: pipeline.KeyFrameRequest{
		Source:          src,
		OutputFormat:    ports.FormatJPEG,
		OutputSize:      defaultSize(),
		BoxFit:          pipeline.BoxFitCover,
		MaxOutputFrames: count,
	}}
}

// Build returns the final KeyFrameRequest. A count below 1 is raised to 1.
func (b *KeyFrameBuilder) Build() pipeline.KeyFrameRequest {
	req := b.req
	if req.MaxOutputFrames < 1 {
		req.MaxOutputFrames = 1
	}
	return req
}

// WithFormat sets the image format.
func (b *KeyFrameBuilder) WithFormat(format ports.ImageFormat) *KeyFrameBuilder {
	b.req.OutputFormat = format
	return b
}

// WithSize sets the target box.
func (b *KeyFrameBuilder) WithSize(width, height int) *KeyFrameBuilder {
	b.req.OutputSize = pipeline.Dimension{Width: width, Height: height}
	return b
}

// WithBoxFit sets the resize policy.
func (b *KeyFrameBuilder) WithBoxFit(fit pipeline.BoxFit) *KeyFrameBuilder {
	b.req.BoxFit = fit
	return b
}

// WithQuality sets the image quality (1-100).
func (b *KeyFrameBuilder) WithQuality(quality int) *KeyFrameBuilder {
	b.req.Quality = quality
	return b
}

// WithQualityPreset applies a quality preset.
func (b *KeyFrameBuilder) WithQualityPreset(preset QualityPreset) *KeyFrameBuilder {
	b.req.Quality = GetQualitySettings(preset).ImageQuality
	return b
}

// WithCropToTarget center-crops cover results to exactly the target size.
func (b *KeyFrameBuilder) WithCropToTarget(crop bool) *KeyFrameBuilder {
	b.req.CropToTarget = crop
	return b
}
