// Package ports defines interfaces for external dependencies: codec backends,
// image rendering, probing, logging, file access and debug output.
package ports

import (
	"context"
	"image"
	"path/filepath"
)

// VideoSource references input video bytes or an asset path.
// Exactly one of Path or Data is expected to be set.
type VideoSource struct {
	Path string
	Data []byte
}

// SourceFromPath creates a VideoSource backed by a file path.
func SourceFromPath(path string) VideoSource {
	return VideoSource{Path: path}
}

// SourceFromBytes creates a VideoSource backed by an in-memory buffer.
func SourceFromBytes(data []byte) VideoSource {
	return VideoSource{Data: data}
}

// Name returns a short display name for logs.
func (s VideoSource) Name() string {
	if s.Path != "" {
		return filepath.Base(s.Path)
	}
	return "<memory>"
}

// IsEmpty reports whether the source references nothing.
func (s VideoSource) IsEmpty() bool {
	return s.Path == "" && len(s.Data) == 0
}

// VideoFrame represents a decoded video frame with timing information.
type VideoFrame struct {
	Image       image.Image
	TimestampMs int
	Duration    int // Duration in milliseconds
}

// AudioTrack holds interleaved signed 16-bit PCM samples.
type AudioTrack struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames (samples per channel).
func (a *AudioTrack) Frames() int {
	if a == nil || a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// DurationMs returns the track duration in milliseconds.
func (a *AudioTrack) DurationMs() int {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return a.Frames() * 1000 / a.SampleRate
}

// StreamInfo describes the video stream of an open decode session.
type StreamInfo struct {
	Width      int
	Height     int
	FPS        float64
	DurationMs int
	HasAudio   bool
}

// DecodeOptions restricts a decode session to a time range.
// EndMs of 0 means until the end of the stream.
type DecodeOptions struct {
	StartMs int
	EndMs   int
	// FPS forces a constant output frame rate. 0 keeps the source rate.
	FPS float64
}

// VideoDecoder abstracts video decoding operations.
// Each Open call returns an independent session; sessions are never shared between jobs.
type VideoDecoder interface {
	// Open prepares a decode session for the source.
	Open(ctx context.Context, src VideoSource, opts DecodeOptions) (DecodeSession, error)
}

// DecodeSession is a single-owner handle on a decoding source.
type DecodeSession interface {
	// Info returns the stream description.
	Info() StreamInfo

	// Next decodes the next frame. Returns io.EOF after the last frame.
	// Timestamps are relative to DecodeOptions.StartMs.
	Next(ctx context.Context) (VideoFrame, error)

	// SeekFrame decodes the frame displayed at the absolute timestamp.
	SeekFrame(ctx context.Context, timestampMs int) (VideoFrame, error)

	// Audio returns the audio of the session range, or nil when the source has none.
	Audio(ctx context.Context) (*AudioTrack, error)

	// Close releases decoder resources. It is safe to call more than once.
	Close() error
}
