package mocks

import (
	"context"

	"github.com/user/clipforge/pkg/ports"
)

// MediaProber is a mock implementation of ports.MediaProber.
type MediaProber struct {
	Result    ports.ProbeResult
	Err       error
	ProbeFunc func(ctx context.Context, src ports.VideoSource) (ports.ProbeResult, error)

	Calls int
}

func (m *MediaProber) Probe(ctx context.Context, src ports.VideoSource) (ports.ProbeResult, error) {
	m.Calls++
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, src)
	}
	return m.Result, m.Err
}

var _ ports.MediaProber = (*MediaProber)(nil)
