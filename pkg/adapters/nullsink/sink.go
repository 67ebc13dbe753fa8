// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/clipforge/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveJobJSON does nothing.
func (s *Sink) SaveJobJSON(jobID string, name string, data []byte) error {
	return nil
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(jobID string, index int, img image.Image) error {
	return nil
}

// SaveThumbnail does nothing.
func (s *Sink) SaveThumbnail(jobID string, index int, format ports.ImageFormat, data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
