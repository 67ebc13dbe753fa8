package ffmpegcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// Encoder implements ports.VideoEncoder by piping raw RGBA frames into an
// ffmpeg process that writes the container to a temporary file.
type Encoder struct {
	locator Locator
	format  ports.OutputFormat

	width  int
	height int

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	tempPath  string
	audioPath string
	frames    int
	finished  bool
}

// NewEncoder creates an encoder for one output format.
func NewEncoder(locator Locator, format ports.OutputFormat) *Encoder {
	return &Encoder{locator: locator, format: format}
}

// Begin starts the ffmpeg process.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ffmpeg, err := e.locator.FFmpeg()
	if err != nil {
		return err
	}

	e.width = width
	e.height = height
	e.frames = 0
	e.finished = false

	tmpFile, err := os.CreateTemp("", "clipforge_out_*."+e.format.Extension())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	if opts.Audio != nil && opts.Audio.Frames() > 0 {
		path, err := writePCM(opts.Audio)
		if err != nil {
			e.removeTemp()
			return err
		}
		e.audioPath = path
	}

	args, err := EncodeArgs(e.format, width, height, fps, opts, opts.Audio, e.audioPath, e.tempPath)
	if err != nil {
		e.removeTemp()
		return err
	}

	e.cmd = exec.Command(ffmpeg, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		e.removeTemp()
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		e.removeTemp()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return nil
}

func writePCM(track *ports.AudioTrack) (string, error) {
	tmp, err := os.CreateTemp("", "clipforge_audio_*.pcm")
	if err != nil {
		return "", fmt.Errorf("failed to create audio temp file: %w", err)
	}
	defer tmp.Close()

	buf := make([]byte, len(track.Samples)*2)
	for i, s := range track.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := tmp.Write(buf); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	return tmp.Name(), nil
}

// EncodeFrame writes one frame. Timestamps are implied by the constant frame rate.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.finished {
		return ErrNotInitialized
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds() != image.Rect(0, 0, e.width, e.height) || rgba.Stride != e.width*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, e.width, e.height))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	if _, err := e.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("failed to write frame: %w\nstderr: %s", err, e.stderr.String())
	}
	e.frames++
	return nil
}

// End closes the input, waits for ffmpeg and returns the container bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.finished {
		return nil, ErrNotInitialized
	}
	defer e.removeTemp()

	e.stdin.Close()
	e.stdin = nil
	e.finished = true

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// Abort kills ffmpeg and discards partial output. It is a no-op after End.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return
	}
	e.finished = true

	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
	}
	e.removeTemp()
}

func (e *Encoder) removeTemp() {
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
	if e.audioPath != "" {
		os.Remove(e.audioPath)
		e.audioPath = ""
	}
}

var _ ports.VideoEncoder = (*Encoder)(nil)

// Factory creates ffmpeg encoders and reports which output formats the
// local ffmpeg build can produce.
type Factory struct {
	locator Locator

	once     sync.Once
	encoders map[string]bool
}

// NewFactory creates a new encoder factory.
func NewFactory(locator Locator) *Factory {
	return &Factory{locator: locator}
}

// Supports reports whether ffmpeg has the video and audio encoders for format.
func (f *Factory) Supports(format ports.OutputFormat) bool {
	codecs, ok := formatCodecs[format]
	if !ok {
		return false
	}
	f.once.Do(f.discover)
	return f.encoders[codecs.video] && f.encoders[codecs.audio]
}

func (f *Factory) discover() {
	f.encoders = map[string]bool{}
	ffmpeg, err := f.locator.FFmpeg()
	if err != nil {
		return
	}
	out, err := exec.Command(ffmpeg, "-hide_banner", "-encoders").Output()
	if err != nil {
		return
	}
	f.encoders = ParseEncoders(string(out))
}

// NewEncoder returns a fresh encoder for format.
func (f *Factory) NewEncoder(format ports.OutputFormat) (ports.VideoEncoder, error) {
	if !f.Supports(format) {
		return nil, fmt.Errorf("ffmpeg cannot encode %s", format)
	}
	return NewEncoder(f.locator, format), nil
}

var _ ports.EncoderFactory = (*Factory)(nil)
