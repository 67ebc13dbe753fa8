package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// VideoDecoder is a scripted implementation of ports.VideoDecoder.
// It synthesizes solid frames whose red channel carries the frame index
// (modulo 256) at a constant frame rate.
type VideoDecoder struct {
	Width      int
	Height     int
	FPS        float64
	DurationMs int
	AudioTrack *ports.AudioTrack

	OpenFunc func(ctx context.Context, src ports.VideoSource, opts ports.DecodeOptions) (ports.DecodeSession, error)
	// BeforeFrame runs before each Next/SeekFrame returns; a non-nil error is returned instead.
	BeforeFrame func(index int) error

	mu       sync.Mutex
	Sessions []*DecodeSession
}

// NewVideoDecoder creates a decoder for a w x h stream of the given length.
func NewVideoDecoder(w, h int, fps float64, durationMs int) *VideoDecoder {
	return &VideoDecoder{Width: w, Height: h, FPS: fps, DurationMs: durationMs}
}

func (m *VideoDecoder) Open(ctx context.Context, src ports.VideoSource, opts ports.DecodeOptions) (ports.DecodeSession, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, src, opts)
	}
	if src.IsEmpty() {
		return nil, fmt.Errorf("empty source")
	}

	end := m.DurationMs
	if opts.EndMs > 0 && opts.EndMs < end {
		end = opts.EndMs
	}
	s := &DecodeSession{decoder: m, startMs: opts.StartMs, endMs: end}

	m.mu.Lock()
	m.Sessions = append(m.Sessions, s)
	m.mu.Unlock()
	return s, nil
}

// OpenCount returns the number of sessions opened so far.
func (m *VideoDecoder) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sessions)
}

// AllClosed reports whether every opened session was closed.
func (m *VideoDecoder) AllClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Sessions {
		if !s.Closed() {
			return false
		}
	}
	return true
}

// FrameIndex returns the index encoded in a synthesized frame.
func FrameIndex(img image.Image) int {
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return int(r >> 8)
}

func (m *VideoDecoder) frame(index int) ports.VideoFrame {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	c := color.RGBA{R: uint8(index % 256), G: 64, B: 128, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return ports.VideoFrame{
		Image:       img,
		TimestampMs: m.timestamp(index),
		Duration:    int(math.Round(1000 / m.FPS)),
	}
}

func (m *VideoDecoder) timestamp(index int) int {
	return int(math.Round(float64(index) * 1000 / m.FPS))
}

// DecodeSession is the session returned by VideoDecoder.
type DecodeSession struct {
	decoder *VideoDecoder
	startMs int
	endMs   int
	next    int

	mu     sync.Mutex
	closed bool
	Seeks  []int
}

func (s *DecodeSession) Info() ports.StreamInfo {
	return ports.StreamInfo{
		Width:      s.decoder.Width,
		Height:     s.decoder.Height,
		FPS:        s.decoder.FPS,
		DurationMs: s.endMs - s.startMs,
		HasAudio:   s.decoder.AudioTrack != nil,
	}
}

func (s *DecodeSession) Next(ctx context.Context) (ports.VideoFrame, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if s.Closed() {
		return ports.VideoFrame{}, fmt.Errorf("session closed")
	}

	first := int(math.Ceil(float64(s.startMs) * s.decoder.FPS / 1000))
	index := first + s.next
	if s.decoder.timestamp(index) >= s.endMs {
		return ports.VideoFrame{}, io.EOF
	}
	if hook := s.decoder.BeforeFrame; hook != nil {
		if err := hook(index); err != nil {
			return ports.VideoFrame{}, err
		}
	}
	s.next++

	f := s.decoder.frame(index)
	f.TimestampMs -= s.startMs
	return f, nil
}

func (s *DecodeSession) SeekFrame(ctx context.Context, timestampMs int) (ports.VideoFrame, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if timestampMs < 0 || timestampMs > s.decoder.DurationMs {
		return ports.VideoFrame{}, fmt.Errorf("seek %dms outside stream", timestampMs)
	}

	s.mu.Lock()
	s.Seeks = append(s.Seeks, timestampMs)
	s.mu.Unlock()

	index := int(math.Floor(float64(timestampMs) * s.decoder.FPS / 1000))
	if hook := s.decoder.BeforeFrame; hook != nil {
		if err := hook(index); err != nil {
			return ports.VideoFrame{}, err
		}
	}
	return s.decoder.frame(index), nil
}

func (s *DecodeSession) Audio(ctx context.Context) (*ports.AudioTrack, error) {
	a := s.decoder.AudioTrack
	if a == nil {
		return nil, nil
	}
	from := min(a.Frames(), s.startMs*a.SampleRate/1000)
	to := min(a.Frames(), s.endMs*a.SampleRate/1000)
	return &ports.AudioTrack{
		SampleRate: a.SampleRate,
		Channels:   a.Channels,
		Samples:    append([]int16(nil), a.Samples[from*a.Channels:to*a.Channels]...),
	}, nil
}

func (s *DecodeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *DecodeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var (
	_ ports.VideoDecoder  = (*VideoDecoder)(nil)
	_ ports.DecodeSession = (*DecodeSession)(nil)
)
