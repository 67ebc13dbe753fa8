package ports

import "context"

// ProbeResult is the container-level description reported by a MediaProber.
type ProbeResult struct {
	Format     string // Container name as reported by the prober (e.g. "matroska,webm")
	DurationMs int64
	Width      int
	Height     int
	Rotation   int
	BitrateBps int64 // 0 when the container carries no explicit bitrate
	VideoCodec string
	FrameRate  float64
	HasAudio   bool
}

// MediaProber inspects containers the built-in parsers do not understand.
type MediaProber interface {
	// Probe reads stream and format information from the source.
	Probe(ctx context.Context, src VideoSource) (ProbeResult, error)
}
