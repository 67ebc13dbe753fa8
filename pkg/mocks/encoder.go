package mocks

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)

	// Format selects the container signature End returns by default.
	Format ports.OutputFormat

	// Recorded calls for verification
	BeginCalled      bool
	BeginWidth       int
	BeginHeight      int
	BeginFPS         float64
	BeginOptions     ports.EncoderOptions
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
	AbortCalled      bool
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	TimestampMs int
	Width       int
	Height      int
	FrameIndex  int
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.BeginCalled = true
	m.BeginWidth, m.BeginHeight, m.BeginFPS, m.BeginOptions = width, height, fps, opts
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	b := img.Bounds()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{
		TimestampMs: timestampMs,
		Width:       b.Dx(),
		Height:      b.Dy(),
		FrameIndex:  FrameIndex(img),
	})
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

// End returns a minimal container for Format unless EndFunc is set: an
// ISO-BMFF file from the MP4 fixture builder for mp4/mov, or an EBML header
// for webm.
func (m *VideoEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	switch m.Format {
	case ports.OutputWebM:
		return WebMHeader(), nil
	case ports.OutputMP4, ports.OutputMOV, "":
		durationMs := m.BeginOptions.DurationMs
		if durationMs == 0 {
			durationMs = 1000
		}
		return NewMP4(Track{
			Width:      m.BeginWidth,
			Height:     m.BeginHeight,
			DurationMs: durationMs,
			SampleType: "avc1",
			FrameRate:  m.BeginFPS,
		}).QuickTime(m.Format == ports.OutputMOV).WithAudio(m.BeginOptions.Audio != nil).Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", m.Format)
	}
}

func (m *VideoEncoder) Abort() {
	m.AbortCalled = true
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// EncoderFactory is a mock implementation of ports.EncoderFactory.
type EncoderFactory struct {
	Formats        []ports.OutputFormat
	NewEncoderFunc func(format ports.OutputFormat) (ports.VideoEncoder, error)

	mu       sync.Mutex
	Encoders []*VideoEncoder
}

// NewEncoderFactory creates a factory supporting the given formats.
// With no formats, every format is supported.
func NewEncoderFactory(formats ...ports.OutputFormat) *EncoderFactory {
	return &EncoderFactory{Formats: formats}
}

func (m *EncoderFactory) Supports(format ports.OutputFormat) bool {
	if len(m.Formats) == 0 {
		return true
	}
	for _, f := range m.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (m *EncoderFactory) NewEncoder(format ports.OutputFormat) (ports.VideoEncoder, error) {
	if m.NewEncoderFunc != nil {
		return m.NewEncoderFunc(format)
	}
	if !m.Supports(format) {
		return nil, fmt.Errorf("no encoder for %s", format)
	}
	enc := &VideoEncoder{Format: format}
	m.mu.Lock()
	m.Encoders = append(m.Encoders, enc)
	m.mu.Unlock()
	return enc, nil
}

// Last returns the most recently created encoder.
func (m *EncoderFactory) Last() *VideoEncoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Encoders) == 0 {
		return nil
	}
	return m.Encoders[len(m.Encoders)-1]
}

var _ ports.EncoderFactory = (*EncoderFactory)(nil)
