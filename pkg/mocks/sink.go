package mocks

import (
	"image"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	JobJSON    map[string][]byte // key: jobID + "/" + name
	Frames     map[string]map[int]image.Image
	Thumbnails map[string]map[int][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:    enabled,
		JobJSON:    make(map[string][]byte),
		Frames:     make(map[string]map[int]image.Image),
		Thumbnails: make(map[string]map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveJobJSON(jobID string, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobJSON[jobID+"/"+name] = data
	return nil
}

func (m *DebugSink) SaveFrame(jobID string, index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Frames[jobID] == nil {
		m.Frames[jobID] = make(map[int]image.Image)
	}
	m.Frames[jobID][index] = img
	return nil
}

func (m *DebugSink) SaveThumbnail(jobID string, index int, format ports.ImageFormat, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Thumbnails[jobID] == nil {
		m.Thumbnails[jobID] = make(map[int][]byte)
	}
	m.Thumbnails[jobID][index] = data
	return nil
}

// FrameCount returns the number of frames saved for a job.
func (m *DebugSink) FrameCount(jobID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames[jobID])
}

// ThumbnailCount returns the number of thumbnails saved for a job.
func (m *DebugSink) ThumbnailCount(jobID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Thumbnails[jobID])
}

// JSON returns the saved JSON for a job.
func (m *DebugSink) JSON(jobID, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.JobJSON[jobID+"/"+name]
	return data, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)
