package ports

import (
	"fmt"
	"image"
	"strings"
)

// OutputFormat identifies the container/codec pair of a rendered video.
type OutputFormat string

const (
	OutputMP4  OutputFormat = "mp4"
	OutputMOV  OutputFormat = "mov"
	OutputWebM OutputFormat = "webm"
)

// ParseOutputFormat parses a container name such as "mp4" or ".webm".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "mp4", "m4v":
		return OutputMP4, nil
	case "mov", "qt":
		return OutputMOV, nil
	case "webm":
		return OutputWebM, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Extension returns the file extension without the leading dot.
func (f OutputFormat) Extension() string {
	return string(f)
}

// VideoEncoder abstracts video encoding operations.
// An encoder instance serves exactly one job.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the video data.
	End() ([]byte, error)

	// Abort discards any partial output and releases resources.
	// It is a no-op after End.
	Abort()
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	BitrateBps int64       // Target bitrate in bits per second (0 = encoder default)
	Quality    int         // CRF: 0-63 (lower is higher quality, 0 = encoder default)
	DurationMs int         // Exact output duration (0 = derived from frames)
	Audio      *AudioTrack // Audio to mux; nil drops the audio track
}

// EncoderFactory creates encoders for output formats.
type EncoderFactory interface {
	// Supports reports whether an encoder exists for the format.
	Supports(format OutputFormat) bool

	// NewEncoder returns a fresh encoder instance for the format.
	NewEncoder(format OutputFormat) (VideoEncoder, error)
}
