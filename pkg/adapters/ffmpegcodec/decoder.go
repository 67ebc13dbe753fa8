package ffmpegcodec

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// DefaultFPS is used when neither the caller nor the container states a frame rate.
const DefaultFPS = 30.0

// Decoder implements ports.VideoDecoder by streaming raw RGBA frames out of
// an ffmpeg process. Auto-rotation is disabled, so frames keep the coded
// pixel orientation.
type Decoder struct {
	locator Locator
	prober  *Prober
}

// NewDecoder creates a new ffmpeg-backed decoder.
func NewDecoder(locator Locator) *Decoder {
	return &Decoder{
		locator: locator,
		prober:  NewProber(locator),
	}
}

// Open probes the source and prepares a session. In-memory sources are
// spooled to a temporary file because most containers need seeking.
func (d *Decoder) Open(ctx context.Context, src ports.VideoSource, opts ports.DecodeOptions) (ports.DecodeSession, error) {
	ffmpeg, err := d.locator.FFmpeg()
	if err != nil {
		return nil, err
	}

	input, cleanup, err := materialize(src)
	if err != nil {
		return nil, err
	}

	probe, err := d.prober.Probe(ctx, ports.SourceFromPath(input))
	if err != nil {
		cleanup()
		return nil, err
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = probe.FrameRate
	}
	if fps <= 0 {
		fps = DefaultFPS
	}

	end := int(probe.DurationMs)
	if opts.EndMs > 0 && opts.EndMs < end {
		end = opts.EndMs
	}

	return &session{
		ffmpeg:  ffmpeg,
		input:   input,
		cleanup: cleanup,
		opts:    opts,
		info: ports.StreamInfo{
			Width:      probe.Width,
			Height:     probe.Height,
			FPS:        fps,
			DurationMs: max(0, end-opts.StartMs),
			HasAudio:   probe.HasAudio,
		},
	}, nil
}

func materialize(src ports.VideoSource) (string, func(), error) {
	if src.Path != "" {
		return src.Path, func() {}, nil
	}
	if len(src.Data) == 0 {
		return "", nil, fmt.Errorf("empty source")
	}

	tmp, err := os.CreateTemp("", "clipforge_src_*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(src.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()
	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

type session struct {
	ffmpeg  string
	input   string
	cleanup func()
	opts    ports.DecodeOptions
	info    ports.StreamInfo

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	index  int
	done   bool
	closed bool
}

func (s *session) Info() ports.StreamInfo {
	return s.info
}

func (s *session) frameSize() int {
	return s.info.Width * s.info.Height * 4
}

func (s *session) start() error {
	s.cmd = exec.Command(s.ffmpeg, DecodeArgs(s.input, s.opts, s.info.FPS)...)
	s.cmd.Stderr = &s.stderr
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	s.stdout = stdout
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return nil
}

// Next reads the next frame of the stream.
func (s *session) Next(ctx context.Context) (ports.VideoFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ports.VideoFrame{}, ErrSessionClosed
	}
	if s.done {
		return ports.VideoFrame{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if s.cmd == nil {
		if err := s.start(); err != nil {
			return ports.VideoFrame{}, err
		}
	}

	buf := make([]byte, s.frameSize())
	if _, err := io.ReadFull(s.stdout, buf); err != nil {
		s.done = true
		waitErr := s.cmd.Wait()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if waitErr != nil && s.index == 0 {
				return ports.VideoFrame{}, fmt.Errorf("ffmpeg decoding failed: %w\nstderr: %s", waitErr, s.stderr.String())
			}
			return ports.VideoFrame{}, io.EOF
		}
		return ports.VideoFrame{}, fmt.Errorf("read frame: %w", err)
	}

	frame := ports.VideoFrame{
		Image:       s.toImage(buf),
		TimestampMs: int(float64(s.index) * 1000 / s.info.FPS),
		Duration:    int(1000 / s.info.FPS),
	}
	s.index++
	return frame, nil
}

// SeekFrame decodes the frame shown at an absolute timestamp with a
// one-shot ffmpeg run.
func (s *session) SeekFrame(ctx context.Context, timestampMs int) (ports.VideoFrame, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ports.VideoFrame{}, ErrSessionClosed
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpeg, SeekArgs(s.input, timestampMs)...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return ports.VideoFrame{}, ctx.Err()
		}
		return ports.VideoFrame{}, fmt.Errorf("ffmpeg seek failed: %w\nstderr: %s", err, stderr.String())
	}
	if len(out) < s.frameSize() {
		return ports.VideoFrame{}, fmt.Errorf("no frame at %dms", timestampMs)
	}

	return ports.VideoFrame{
		Image:       s.toImage(out[:s.frameSize()]),
		TimestampMs: timestampMs,
		Duration:    int(1000 / s.info.FPS),
	}, nil
}

// Audio extracts interleaved stereo PCM for the session range.
func (s *session) Audio(ctx context.Context) (*ports.AudioTrack, error) {
	if !s.info.HasAudio {
		return nil, nil
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpeg, AudioArgs(s.input, s.opts)...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg audio extraction failed: %w\nstderr: %s", err, stderr.String())
	}

	samples := make([]int16, len(out)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(out[i*2:]))
	}
	return &ports.AudioTrack{
		SampleRate: AudioSampleRate,
		Channels:   AudioChannels,
		Samples:    samples,
	}, nil
}

func (s *session) toImage(pix []byte) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	copy(img.Pix, pix)
	return img
}

// Close stops the ffmpeg process and removes temporary files.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd != nil && s.cmd.Process != nil && !s.done {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	s.cleanup()
	return nil
}

var (
	_ ports.VideoDecoder  = (*Decoder)(nil)
	_ ports.DecodeSession = (*session)(nil)
)
