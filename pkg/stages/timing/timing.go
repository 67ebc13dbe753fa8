// Package timing resolves trim ranges and retimes video frames and audio for
// playback speed changes.
package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Range is a resolved [Start, End) window of the source timeline.
type Range struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End - r.Start
}

// ResolveRange applies trim defaults: a missing start is 0 and a missing end
// is the source duration.
func ResolveRange(start, end *time.Duration, duration time.Duration) (Range, error) {
	r := Range{Start: 0, End: duration}
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = *end
	}

	switch {
	case r.Start < 0 || r.End < 0:
		return Range{}, fmt.Errorf("%w: negative bound %v-%v", pipeline.ErrInvalidTimeRange, r.Start, r.End)
	case r.Start > duration || r.End > duration:
		return Range{}, fmt.Errorf("%w: %v-%v exceeds duration %v", pipeline.ErrInvalidTimeRange, r.Start, r.End, duration)
	case r.Start >= r.End:
		return Range{}, fmt.Errorf("%w: start %v not before end %v", pipeline.ErrInvalidTimeRange, r.Start, r.End)
	}
	return r, nil
}

// ValidateSpeed rejects non-positive and non-finite playback speeds.
func ValidateSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: %g", pipeline.ErrInvalidSpeed, speed)
	}
	return nil
}

// OutputDuration returns floor(trimmed/speed) truncated to whole milliseconds.
func OutputDuration(trimmed time.Duration, speed float64) (time.Duration, error) {
	if err := ValidateSpeed(speed); err != nil {
		return 0, err
	}
	ms := math.Floor(float64(trimmed.Milliseconds()) / speed)
	return time.Duration(ms) * time.Millisecond, nil
}

// Retimer maps constant-rate output ticks onto source frames.
type Retimer struct {
	speed    float64
	fps      float64
	duration time.Duration
}

// NewRetimer creates a Retimer producing fps ticks over outputDuration.
func NewRetimer(speed, fps float64, outputDuration time.Duration) (*Retimer, error) {
	if err := ValidateSpeed(speed); err != nil {
		return nil, err
	}
	if fps <= 0 || math.IsNaN(fps) {
		return nil, fmt.Errorf("%w: frame rate %g", pipeline.ErrInvalidRequest, fps)
	}
	return &Retimer{speed: speed, fps: fps, duration: outputDuration}, nil
}

// TickCount returns the number of output frames before the output duration.
func (r *Retimer) TickCount() int {
	n := int(math.Ceil(r.duration.Seconds()*r.fps - 1e-9))
	return max(n, 0)
}

// OutputTime returns the presentation time of output tick i.
func (r *Retimer) OutputTime(i int) time.Duration {
	return time.Duration(math.Round(float64(i) / r.fps * float64(time.Second)))
}

// SourceTime returns the trimmed-source time shown at output tick i.
func (r *Retimer) SourceTime(i int) time.Duration {
	return time.Duration(math.Round(float64(i) / r.fps * r.speed * float64(time.Second)))
}

// Cursor walks a forward-only stream of source frames and selects, for each
// output tick, the latest frame whose timestamp is at or before the tick's
// source time. Usage per tick:
//
//	for cur.NeedsFrame(t) {
//		f, err := session.Next(ctx) // stop on io.EOF
//		cur.Feed(f)
//	}
//	frame, ok := cur.At(t)
type Cursor struct {
	current *ports.VideoFrame
	next    *ports.VideoFrame
}

// NeedsFrame reports whether another frame must be read before the cursor
// can answer for source time t.
func (c *Cursor) NeedsFrame(t time.Duration) bool {
	c.promote(t)
	return c.next == nil
}

// Feed offers the next decoded frame. Frames must arrive in timestamp order.
func (c *Cursor) Feed(f ports.VideoFrame) {
	if c.current == nil {
		c.current = &f
		return
	}
	c.next = &f
}

// At returns the frame for source time t. ok is false before any frame was fed.
func (c *Cursor) At(t time.Duration) (ports.VideoFrame, bool) {
	c.promote(t)
	if c.current == nil {
		return ports.VideoFrame{}, false
	}
	return *c.current, true
}

func (c *Cursor) promote(t time.Duration) {
	if c.next != nil && frameTime(*c.next) <= t {
		c.current, c.next = c.next, nil
	}
}

func frameTime(f ports.VideoFrame) time.Duration {
	return time.Duration(f.TimestampMs) * time.Millisecond
}

// TrimAudio cuts the track to r by sample index. A nil track returns nil.
func TrimAudio(track *ports.AudioTrack, r Range) *ports.AudioTrack {
	if track == nil || track.Channels <= 0 || track.SampleRate <= 0 {
		return nil
	}
	frames := track.Frames()
	from := min(frames, int(r.Start.Seconds()*float64(track.SampleRate)))
	to := min(frames, int(r.End.Seconds()*float64(track.SampleRate)))
	if to < from {
		to = from
	}
	return &ports.AudioTrack{
		SampleRate: track.SampleRate,
		Channels:   track.Channels,
		Samples:    append([]int16(nil), track.Samples[from*track.Channels:to*track.Channels]...),
	}
}

// ResampleAudio stretches the track to floor(frames/speed) frames using
// linear interpolation, which changes both tempo and pitch.
func ResampleAudio(track *ports.AudioTrack, speed float64) (*ports.AudioTrack, error) {
	if err := ValidateSpeed(speed); err != nil {
		return nil, err
	}
	if track == nil || track.Channels <= 0 {
		return nil, nil
	}

	ch := track.Channels
	in := track.Frames()
	if speed == 1 || in == 0 {
		return &ports.AudioTrack{
			SampleRate: track.SampleRate,
			Channels:   ch,
			Samples:    append([]int16(nil), track.Samples[:in*ch]...),
		}, nil
	}

	out := int(math.Floor(float64(in) / speed))
	samples := make([]int16, out*ch)
	for i := 0; i < out; i++ {
		pos := float64(i) * speed
		i0 := int(pos)
		if i0 >= in-1 {
			copy(samples[i*ch:(i+1)*ch], track.Samples[(in-1)*ch:in*ch])
			continue
		}
		frac := pos - float64(i0)
		for c := 0; c < ch; c++ {
			a := float64(track.Samples[i0*ch+c])
			b := float64(track.Samples[(i0+1)*ch+c])
			samples[i*ch+c] = int16(math.Round(a + (b-a)*frac))
		}
	}

	return &ports.AudioTrack{SampleRate: track.SampleRate, Channels: ch, Samples: samples}, nil
}
