package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
	"github.com/user/clipforge/pkg/stages/effects"
	"github.com/user/clipforge/pkg/stages/encode"
	"github.com/user/clipforge/pkg/stages/timing"
	"github.com/user/clipforge/pkg/stages/transform"
)

// Render starts a render job producing the encoded container bytes.
func (e *Engine) Render(ctx context.Context, job pipeline.RenderJob) (*Job[[]byte], error) {
	fx, err := e.validateRender(job)
	if err != nil {
		return nil, err
	}
	return submit(e, ctx, "render", job, func(ctx context.Context, j *Job[[]byte]) ([]byte, error) {
		res, err := e.render(ctx, j.id, j.progress.Publish, job, fx)
		return res.Data, err
	})
}

// RenderDetailed is Render with the output geometry and timing in the result.
func (e *Engine) RenderDetailed(ctx context.Context, job pipeline.RenderJob) (*Job[pipeline.RenderResult], error) {
	fx, err := e.validateRender(job)
	if err != nil {
		return nil, err
	}
	return submit(e, ctx, "render", job, func(ctx context.Context, j *Job[pipeline.RenderResult]) (pipeline.RenderResult, error) {
		return e.render(ctx, j.id, j.progress.Publish, job, fx)
	})
}

// validateRender checks everything that does not need the source.
func (e *Engine) validateRender(job pipeline.RenderJob) (*effects.Stage, error) {
	if job.Source.IsEmpty() {
		return nil, fmt.Errorf("%w: render job has no source", pipeline.ErrInvalidRequest)
	}
	if !e.deps.Encoders.Supports(job.OutputFormat) {
		return nil, fmt.Errorf("%w: %q", pipeline.ErrUnsupportedOutputFormat, job.OutputFormat)
	}
	if err := timing.ValidateSpeed(job.Speed()); err != nil {
		return nil, err
	}
	if job.FrameRate < 0 {
		return nil, fmt.Errorf("%w: frame rate %g", pipeline.ErrInvalidRequest, job.FrameRate)
	}
	if job.TargetBitrateBps < 0 {
		return nil, fmt.Errorf("%w: bitrate %d", pipeline.ErrInvalidRequest, job.TargetBitrateBps)
	}
	if job.BlurRadius < 0 {
		return nil, fmt.Errorf("%w: blur radius %g", pipeline.ErrInvalidRequest, job.BlurRadius)
	}
	return effects.NewStage(job.ColorMatrices, job.BlurRadius)
}

// render runs the fixed stage order: trim, speed, transform, color matrix,
// blur, audio, bitrate target, encode.
func (e *Engine) render(ctx context.Context, jobID string, publish func(float64), job pipeline.RenderJob, fx *effects.Stage) (pipeline.RenderResult, error) {
	var result pipeline.RenderResult

	meta, err := e.extractor.Extract(ctx, job.Source)
	if err != nil {
		return result, err
	}
	e.saveJSON(jobID, "metadata", meta)

	// trim
	rng, err := timing.ResolveRange(job.StartTime, job.EndTime, meta.Duration)
	if err != nil {
		return result, err
	}

	// speed
	speed := job.Speed()
	outDur, err := timing.OutputDuration(rng.Duration(), speed)
	if err != nil {
		return result, err
	}
	if outDur <= 0 {
		return result, fmt.Errorf("%w: %v at %gx is shorter than a millisecond", pipeline.ErrInvalidTimeRange, rng.Duration(), speed)
	}

	// geometry
	var xf pipeline.ExportTransform
	if job.Transform != nil {
		xf = *job.Transform
	}
	geo, err := transform.Compose(xf, meta.Resolution())
	if err != nil {
		return result, err
	}

	session, err := e.deps.Decoder.Open(ctx, job.Source, ports.DecodeOptions{
		StartMs: int(rng.Start.Milliseconds()),
		EndMs:   int(rng.End.Milliseconds()),
		FPS:     job.FrameRate,
	})
	if err != nil {
		if ctx.Err() != nil {
			return result, pipeline.Cancelled(ctx.Err())
		}
		return result, fmt.Errorf("%w: open %s: %v", pipeline.ErrUnsupportedFormat, job.Source.Name(), err)
	}
	defer session.Close()

	info := session.Info()
	if info.Width > 0 && info.Height > 0 && (info.Width != meta.Width || info.Height != meta.Height) {
		e.logger.Warn("Decoder reports %dx%d, metadata %dx%d", info.Width, info.Height, meta.Width, meta.Height)
		if geo, err = transform.Compose(xf, pipeline.Dimension{Width: info.Width, Height: info.Height}); err != nil {
			return result, err
		}
	}

	fps := e.outputFPS(job, meta, info)
	retimer, err := timing.NewRetimer(speed, fps, outDur)
	if err != nil {
		return result, err
	}
	total := retimer.TickCount()

	// audio
	var audio *ports.AudioTrack
	if job.EnableAudio && (meta.HasAudio || info.HasAudio) {
		track, err := session.Audio(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return result, pipeline.Cancelled(ctx.Err())
			}
			return result, fmt.Errorf("%w: audio: %v", pipeline.ErrSourceUnreadable, err)
		}
		// the session already starts at the trim point
		track = timing.TrimAudio(track, timing.Range{End: rng.Duration()})
		if audio, err = timing.ResampleAudio(track, speed); err != nil {
			return result, err
		}
	}

	encoder, err := e.deps.Encoders.NewEncoder(job.OutputFormat)
	if err != nil {
		return result, fmt.Errorf("%w: %v", pipeline.ErrUnsupportedOutputFormat, err)
	}

	e.logger.Info("Rendering %s to %s: %dx%d, %d frames", job.Source.Name(), job.OutputFormat, geo.Output.Width, geo.Output.Height, total)

	var stage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = encode.NewStage(encoder, e.deps.Logger)
	encoded, err := stage.Execute(ctx, pipeline.EncodeInput{
		Width:  geo.Output.Width,
		Height: geo.Output.Height,
		FPS:    fps,
		Options: ports.EncoderOptions{
			BitrateBps: job.TargetBitrateBps,
			DurationMs: int(outDur.Milliseconds()),
			Audio:      audio,
		},
		Frames: e.renderFrames(ctx, jobID, session, retimer, total, geo, fx),
		Total:  total,
		OnFrame: func(done, total int) {
			publish(frameProgress(done, total))
		},
	})
	if err != nil {
		return result, err
	}

	result = pipeline.RenderResult{
		Data:       encoded.VideoData,
		Output:     geo.Output,
		DurationMs: encoded.DurationMs,
		FrameCount: encoded.FrameCount,
		FileSize:   encoded.FileSize,
	}
	e.saveJSON(jobID, "result", struct {
		Output     pipeline.Dimension `json:"output"`
		DurationMs int                `json:"durationMs"`
		FrameCount int                `json:"frameCount"`
		FileSize   int64              `json:"fileSize"`
	}{result.Output, result.DurationMs, result.FrameCount, result.FileSize})

	return result, nil
}

// outputFPS picks the job rate, then the container rate, then the decoder rate.
func (e *Engine) outputFPS(job pipeline.RenderJob, meta pipeline.VideoMetadata, info ports.StreamInfo) float64 {
	switch {
	case job.FrameRate > 0:
		return job.FrameRate
	case meta.FrameRate > 0:
		return meta.FrameRate
	case info.FPS > 0:
		return info.FPS
	default:
		return e.opts.DefaultFPS
	}
}

// renderFrames lazily produces one processed frame per output tick.
func (e *Engine) renderFrames(ctx context.Context, jobID string, session ports.DecodeSession, retimer *timing.Retimer, total int, geo transform.Result, fx *effects.Stage) iter.Seq2[ports.VideoFrame, error] {
	xform := transform.NewStage(e.deps.Renderer, e.deps.Logger)
	frameMs := int(retimer.OutputTime(1).Milliseconds())

	return func(yield func(ports.VideoFrame, error) bool) {
		var cursor timing.Cursor
		eof := false

		for i := 0; i < total; i++ {
			t := retimer.SourceTime(i)
			for !eof && cursor.NeedsFrame(t) {
				f, err := session.Next(ctx)
				if errors.Is(err, io.EOF) {
					eof = true
					break
				}
				if err != nil {
					yield(ports.VideoFrame{}, pipeline.Classify(err, pipeline.ErrSourceUnreadable, "decode frame"))
					return
				}
				cursor.Feed(f)
			}

			src, ok := cursor.At(t)
			if !ok {
				yield(ports.VideoFrame{}, fmt.Errorf("%w: no frame decoded at %v", pipeline.ErrSourceUnreadable, t))
				return
			}

			img := xform.Apply(src.Image, geo)
			if fx.Active() {
				var err error
				if img, err = fx.Apply(img); err != nil {
					yield(ports.VideoFrame{}, err)
					return
				}
			}

			if e.deps.Sink.Enabled() {
				if err := e.deps.Sink.SaveFrame(jobID, i, img); err != nil {
					e.logger.Warn("Failed to save debug output: %v", err)
				}
			}

			frame := ports.VideoFrame{
				Image:       img,
				TimestampMs: int(retimer.OutputTime(i).Milliseconds()),
				Duration:    frameMs,
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}
