// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Stage streams frames into a single encoder instance.
type Stage struct {
	encoder ports.VideoEncoder
	logger  ports.Logger
}

// NewStage creates a new encode stage. The encoder must be fresh; the stage
// finalizes or aborts it before returning.
func NewStage(encoder ports.VideoEncoder, logger ports.Logger) *Stage {
	return &Stage{
		encoder: encoder,
		logger:  logger.WithComponent("encode"),
	}
}

// Execute encodes every frame of the input. Encoder failures are wrapped in
// ErrEncodeFailure; cancellation yields ErrCancelled. On any failure after
// Begin the encoder is aborted and no bytes are returned.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if input.Width <= 0 || input.Height <= 0 {
		return result, fmt.Errorf("%w: frame size %dx%d", pipeline.ErrInvalidRequest, input.Width, input.Height)
	}
	if input.Frames == nil {
		return result, fmt.Errorf("%w: no frames to encode", pipeline.ErrInvalidRequest)
	}

	s.logger.Info("Encoding %dx%d at %.1f fps", input.Width, input.Height, input.FPS)

	if err := s.encoder.Begin(input.Width, input.Height, input.FPS, input.Options); err != nil {
		return result, fmt.Errorf("%w: begin encoding: %v", pipeline.ErrEncodeFailure, err)
	}

	finished := false
	defer func() {
		if !finished {
			s.encoder.Abort()
		}
	}()

	count := 0
	lastTs := 0
	for frame, ferr := range input.Frames {
		if ferr != nil {
			return pipeline.EncodeResult{}, pipeline.Cancelled(ferr)
		}
		if err := ctx.Err(); err != nil {
			return pipeline.EncodeResult{}, pipeline.Cancelled(err)
		}

		b := frame.Image.Bounds()
		if b.Dx() != input.Width || b.Dy() != input.Height {
			return pipeline.EncodeResult{}, fmt.Errorf("%w: frame %d is %dx%d, want %dx%d",
				pipeline.ErrEncodeFailure, count, b.Dx(), b.Dy(), input.Width, input.Height)
		}
		if err := s.encoder.EncodeFrame(frame.Image, frame.TimestampMs); err != nil {
			return pipeline.EncodeResult{}, fmt.Errorf("%w: encode frame at %dms: %v", pipeline.ErrEncodeFailure, frame.TimestampMs, err)
		}

		count++
		lastTs = frame.TimestampMs
		if input.OnFrame != nil {
			input.OnFrame(count, input.Total)
		}
		s.logger.Debug("Encoded frame %d/%d", count, input.Total)
	}

	if count == 0 {
		return pipeline.EncodeResult{}, fmt.Errorf("%w: no frames to encode", pipeline.ErrEncodeFailure)
	}

	data, err := s.encoder.End()
	finished = true
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			return pipeline.EncodeResult{}, err
		}
		return pipeline.EncodeResult{}, fmt.Errorf("%w: end encoding: %v", pipeline.ErrEncodeFailure, err)
	}

	durationMs := input.Options.DurationMs
	if durationMs == 0 && input.FPS > 0 {
		durationMs = lastTs + int(1000/input.FPS)
	}

	result.VideoData = data
	result.DurationMs = durationMs
	result.FrameCount = count
	result.FileSize = int64(len(data))

	s.logger.Info("Video encoded: %d bytes", result.FileSize)
	return result, nil
}
