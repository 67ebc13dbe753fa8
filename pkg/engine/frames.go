package engine

import (
	"context"
	"fmt"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/stages/boxfit"
	"github.com/user/clipforge/pkg/stages/sample"
)

// Thumbnails starts a job extracting one image per requested timestamp, in
// request order.
func (e *Engine) Thumbnails(ctx context.Context, req pipeline.ThumbnailRequest) (*Job[[][]byte], error) {
	if err := validateFrameOutput(req.Source.IsEmpty(), req.OutputSize, req.BoxFit, req.Quality); err != nil {
		return nil, err
	}
	return submit(e, ctx, "thumbnails", req, func(ctx context.Context, j *Job[[][]byte]) ([][]byte, error) {
		meta, err := e.extractor.Extract(ctx, req.Source)
		if err != nil {
			return nil, err
		}
		return e.extractFrames(ctx, j.id, j.progress.Publish, req, meta)
	})
}

// KeyFrames starts a job extracting MaxOutputFrames evenly spaced images.
func (e *Engine) KeyFrames(ctx context.Context, req pipeline.KeyFrameRequest) (*Job[[][]byte], error) {
	if err := validateFrameOutput(req.Source.IsEmpty(), req.OutputSize, req.BoxFit, req.Quality); err != nil {
		return nil, err
	}
	if req.MaxOutputFrames <= 0 {
		return nil, fmt.Errorf("%w: max output frames %d", pipeline.ErrInvalidRequest, req.MaxOutputFrames)
	}
	return submit(e, ctx, "keyframes", req, func(ctx context.Context, j *Job[[][]byte]) ([][]byte, error) {
		meta, err := e.extractor.Extract(ctx, req.Source)
		if err != nil {
			return nil, err
		}
		return e.extractFrames(ctx, j.id, j.progress.Publish, req.ThumbnailRequest(meta.Duration), meta)
	})
}

func validateFrameOutput(noSource bool, size pipeline.Dimension, fit pipeline.BoxFit, quality int) error {
	if noSource {
		return fmt.Errorf("%w: request has no source", pipeline.ErrInvalidRequest)
	}
	if size.IsEmpty() {
		return fmt.Errorf("%w: output size %dx%d", pipeline.ErrInvalidRequest, size.Width, size.Height)
	}
	switch fit {
	case pipeline.BoxFitCover, pipeline.BoxFitContain, "":
	default:
		return fmt.Errorf("%w: box fit %q", pipeline.ErrInvalidRequest, fit)
	}
	if quality < 0 || quality > 100 {
		return fmt.Errorf("%w: quality %d", pipeline.ErrInvalidRequest, quality)
	}
	return nil
}

func (e *Engine) extractFrames(ctx context.Context, jobID string, publish func(float64), req pipeline.ThumbnailRequest, meta pipeline.VideoMetadata) ([][]byte, error) {
	fit := req.BoxFit
	if fit == "" {
		fit = pipeline.BoxFitCover
	}
	quality := req.Quality
	if quality == 0 {
		quality = e.opts.ImageQuality
	}

	sampler := sample.NewSampler(e.deps.Decoder, e.deps.Logger)
	resizer := boxfit.NewResizer(e.deps.Renderer)
	total := len(req.Timestamps)
	out := make([][]byte, 0, total)

	e.logger.Info("Extracting %d frames from %s", total, req.Source.Name())

	for sf, err := range sampler.Sample(ctx, req.Source, meta, req.Timestamps, req.ClampToDuration) {
		if err != nil {
			return nil, err
		}

		img := resizer.Resize(sf.Frame.Image, req.OutputSize, fit, req.CropToTarget)
		data, err := e.deps.Renderer.EncodeImage(img, req.OutputFormat, quality)
		if err != nil {
			return nil, fmt.Errorf("%w: thumbnail %d: %v", pipeline.ErrEncodeFailure, sf.Index, err)
		}
		if e.deps.Sink.Enabled() {
			if err := e.deps.Sink.SaveThumbnail(jobID, sf.Index, req.OutputFormat, data); err != nil {
				e.logger.Warn("Failed to save debug output: %v", err)
			}
		}

		out = append(out, data)
		publish(frameProgress(len(out), total))
	}

	return out, nil
}
