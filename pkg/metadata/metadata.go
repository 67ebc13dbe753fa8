// Package metadata extracts structural metadata from video sources.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Extractor reports duration, resolution, rotation, container and bitrate
// for a video source. ISO-BMFF containers are parsed in-process; everything
// else is delegated to the optional MediaProber.
type Extractor struct {
	fs     ports.FileSystem
	prober ports.MediaProber
	logger ports.Logger
}

// New creates an Extractor. prober may be nil.
func New(fs ports.FileSystem, prober ports.MediaProber, logger ports.Logger) *Extractor {
	return &Extractor{
		fs:     fs,
		prober: prober,
		logger: logger.WithComponent("metadata"),
	}
}

// Extract reads the source and describes it.
func (e *Extractor) Extract(ctx context.Context, src ports.VideoSource) (pipeline.VideoMetadata, error) {
	var meta pipeline.VideoMetadata

	sb, err := e.read(src)
	if err != nil {
		return meta, err
	}
	if err := ctx.Err(); err != nil {
		return meta, pipeline.Cancelled(err)
	}

	mtype := mimetype.Detect(sb.head)
	ext, ok := ContainerExtension(mtype)
	if !ok {
		return meta, fmt.Errorf("%w: %s is %s, not a video", pipeline.ErrSourceUnreadable, src.Name(), mtype.String())
	}
	meta.Extension = ext
	meta.FileSizeBytes = sb.size

	e.logger.Debug("Detected %s container for %s", ext, src.Name())

	var probe *ports.ProbeResult
	if isISOBMFF(sb.head) {
		info, err := parseISOBMFF(sb.header)
		if err != nil {
			return meta, err
		}
		if info.durationMs == 0 && e.prober != nil {
			// fragmented files often leave mvhd duration unset
			p, err := e.probe(ctx, src)
			if err != nil {
				return meta, err
			}
			info.durationMs = p.DurationMs
			probe = &p
		}
		meta.Duration = time.Duration(info.durationMs) * time.Millisecond
		meta.Width = info.width
		meta.Height = info.height
		meta.RotationDegrees = info.rotation
		meta.VideoCodec = info.codec
		meta.FrameRate = info.frameRate
		meta.HasAudio = info.hasAudio
	} else {
		if e.prober == nil {
			return meta, fmt.Errorf("%w: no prober for %s containers", pipeline.ErrUnsupportedFormat, ext)
		}
		p, err := e.probe(ctx, src)
		if err != nil {
			return meta, err
		}
		if p.Width <= 0 || p.Height <= 0 {
			return meta, fmt.Errorf("%w: %s has no video stream", pipeline.ErrUnsupportedFormat, src.Name())
		}
		meta.Duration = time.Duration(p.DurationMs) * time.Millisecond
		meta.Width = p.Width
		meta.Height = p.Height
		meta.RotationDegrees = NormalizeRotation(p.Rotation)
		meta.VideoCodec = p.VideoCodec
		meta.FrameRate = p.FrameRate
		meta.HasAudio = p.HasAudio
		probe = &p
	}

	if probe != nil && probe.BitrateBps > 0 {
		meta.BitrateBps = probe.BitrateBps
	} else {
		meta.BitrateBps = Bitrate(meta.FileSizeBytes, meta.Duration)
	}

	e.logger.Debug("Metadata for %s: %dx%d, %v, %d bps", src.Name(), meta.Width, meta.Height, meta.Duration, meta.BitrateBps)
	return meta, nil
}

func (e *Extractor) probe(ctx context.Context, src ports.VideoSource) (ports.ProbeResult, error) {
	p, err := e.prober.Probe(ctx, src)
	if err == nil {
		return p, nil
	}
	if ctx.Err() != nil {
		return p, pipeline.Cancelled(ctx.Err())
	}
	if errors.Is(err, pipeline.ErrUnsupportedFormat) || errors.Is(err, pipeline.ErrSourceUnreadable) {
		return p, err
	}
	return p, fmt.Errorf("%w: probe %s: %v", pipeline.ErrSourceUnreadable, src.Name(), err)
}

// Bitrate derives bits per second from size and duration, truncating.
// It returns 0 for a zero duration.
func Bitrate(sizeBytes int64, d time.Duration) int64 {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return sizeBytes * 8 * 1000 / ms
}

// ContainerExtension maps a sniffed MIME type to a container extension
// without the dot. ok is false for non-video content.
func ContainerExtension(m *mimetype.MIME) (string, bool) {
	switch {
	case m.Is("video/mp4"):
		return "mp4", true
	case m.Is("video/quicktime"):
		return "mov", true
	case m.Is("video/webm"):
		return "webm", true
	}
	for cur := m; cur != nil; cur = cur.Parent() {
		if strings.HasPrefix(cur.String(), "video/") {
			return strings.TrimPrefix(cur.Extension(), "."), true
		}
	}
	return "", false
}

func isISOBMFF(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	switch string(data[4:8]) {
	case "ftyp", "moov", "mdat", "free", "wide":
		return true
	}
	return false
}

// NormalizeRotation maps any angle to one of 0, 90, 180, 270.
func NormalizeRotation(deg int) int {
	r := ((deg % 360) + 360) % 360
	return (r + 45) / 90 * 90 % 360
}
