// Package sample decodes still frames at requested timestamps.
package sample

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// DefaultFrameInterval is used for clamping when the metadata carries no frame rate.
const DefaultFrameInterval = time.Second / 30

// Sampler seeks and decodes frames from a source.
type Sampler struct {
	decoder ports.VideoDecoder
	logger  ports.Logger
}

// NewSampler creates a new Sampler.
func NewSampler(decoder ports.VideoDecoder, logger ports.Logger) *Sampler {
	return &Sampler{
		decoder: decoder,
		logger:  logger.WithComponent("sample"),
	}
}

// KeyFrameTimestamps returns k timestamps evenly spaced over [0, duration).
func KeyFrameTimestamps(duration time.Duration, k int) []time.Duration {
	return pipeline.KeyFrameRequest{MaxOutputFrames: k}.Timestamps(duration)
}

// LastFrameTime returns the timestamp of the final frame of meta.
func LastFrameTime(meta pipeline.VideoMetadata) time.Duration {
	interval := DefaultFrameInterval
	if meta.FrameRate > 0 {
		interval = time.Duration(float64(time.Second) / meta.FrameRate)
	}
	return max(0, meta.Duration-interval)
}

// Resolve validates timestamps against meta.Duration. Out-of-range values
// fail with ErrSeekOutOfRange, or are pulled into [0, last frame] when clamp is set.
func Resolve(meta pipeline.VideoMetadata, timestamps []time.Duration, clamp bool) ([]time.Duration, error) {
	last := LastFrameTime(meta)
	out := make([]time.Duration, len(timestamps))
	for i, ts := range timestamps {
		switch {
		case ts >= 0 && ts <= meta.Duration:
			out[i] = min(ts, last)
		case !clamp:
			return nil, fmt.Errorf("%w: %v not in [0, %v]", pipeline.ErrSeekOutOfRange, ts, meta.Duration)
		case ts < 0:
			out[i] = 0
		default:
			out[i] = last
		}
	}
	return out, nil
}

// Sample lazily decodes one frame per timestamp, in request order. Every call
// opens its own decode session, which is closed when iteration finishes or
// the consumer stops early. After an error the sequence ends.
func (s *Sampler) Sample(ctx context.Context, src ports.VideoSource, meta pipeline.VideoMetadata, timestamps []time.Duration, clamp bool) iter.Seq2[pipeline.SampledFrame, error] {
	return func(yield func(pipeline.SampledFrame, error) bool) {
		resolved, err := Resolve(meta, timestamps, clamp)
		if err != nil {
			yield(pipeline.SampledFrame{}, err)
			return
		}
		if len(resolved) == 0 {
			return
		}

		session, err := s.decoder.Open(ctx, src, ports.DecodeOptions{})
		if err != nil {
			yield(pipeline.SampledFrame{}, pipeline.Classify(err, pipeline.ErrUnsupportedFormat, "open "+src.Name()))
			return
		}
		defer session.Close()

		s.logger.Debug("Sampling %d frames from %s", len(resolved), src.Name())

		for i, ts := range resolved {
			if err := ctx.Err(); err != nil {
				yield(pipeline.SampledFrame{}, pipeline.Cancelled(err))
				return
			}

			frame, err := session.SeekFrame(ctx, int(ts/time.Millisecond))
			if err != nil {
				yield(pipeline.SampledFrame{}, pipeline.Classify(err, pipeline.ErrSourceUnreadable, fmt.Sprintf("seek to %v", ts)))
				return
			}

			if !yield(pipeline.SampledFrame{Index: i, Requested: timestamps[i], Frame: frame}, nil) {
				return
			}
		}
	}
}
