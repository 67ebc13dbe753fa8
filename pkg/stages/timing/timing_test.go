package timing

import (
	"errors"
	"testing"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

func dur(d time.Duration) *time.Duration { return &d }

func TestResolveRange(t *testing.T) {
	const total = 20 * time.Second

	tests := []struct {
		name       string
		start, end *time.Duration
		want       Range
		wantErr    bool
	}{
		{"defaults", nil, nil, Range{0, total}, false},
		{"start only", dur(4 * time.Second), nil, Range{4 * time.Second, total}, false},
		{"end only", nil, dur(13 * time.Second), Range{0, 13 * time.Second}, false},
		{"both", dur(7 * time.Second), dur(13 * time.Second), Range{7 * time.Second, 13 * time.Second}, false},
		{"inverted", dur(13 * time.Second), dur(7 * time.Second), Range{}, true},
		{"empty", dur(5 * time.Second), dur(5 * time.Second), Range{}, true},
		{"negative", dur(-time.Second), nil, Range{}, true},
		{"beyond duration", nil, dur(21 * time.Second), Range{}, true},
		{"start beyond duration", dur(25 * time.Second), nil, Range{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(tt.start, tt.end, total)
			if tt.wantErr {
				if !errors.Is(err, pipeline.ErrInvalidTimeRange) {
					t.Errorf("expected ErrInvalidTimeRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOutputDuration(t *testing.T) {
	tests := []struct {
		name        string
		trimmed     time.Duration
		speed       float64
		wantSeconds int
	}{
		{"trim only", 13 * time.Second, 1.0, 13},
		{"trim 7-13", 6 * time.Second, 1.0, 6},
		{"slow motion", 13 * time.Second, 0.8, 16},
		{"double speed", 13 * time.Second, 2.0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputDuration(tt.trimmed, tt.speed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int(got/time.Second) != tt.wantSeconds {
				t.Errorf("expected %ds, got %v", tt.wantSeconds, got)
			}
		})
	}

	got, _ := OutputDuration(13*time.Second, 0.8)
	if got != 16250*time.Millisecond {
		t.Errorf("expected 16.25s, got %v", got)
	}
}

func TestOutputDuration_InvalidSpeed(t *testing.T) {
	for _, speed := range []float64{0, -1} {
		_, err := OutputDuration(time.Second, speed)
		if !errors.Is(err, pipeline.ErrInvalidSpeed) {
			t.Errorf("speed %g: expected ErrInvalidSpeed, got %v", speed, err)
		}
	}
}

func TestRetimer(t *testing.T) {
	r, err := NewRetimer(2.0, 10, 3*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := r.TickCount(); n != 30 {
		t.Errorf("expected 30 ticks, got %d", n)
	}
	if got := r.OutputTime(5); got != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", got)
	}
	if got := r.SourceTime(5); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}

	r, _ = NewRetimer(0.8, 30, 16250*time.Millisecond)
	if n := r.TickCount(); n != 488 {
		t.Errorf("expected 488 ticks, got %d", n)
	}

	if _, err := NewRetimer(1, 0, time.Second); !errors.Is(err, pipeline.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCursor_SelectsLatestFrameAtOrBefore(t *testing.T) {
	source := []int{0, 100, 200, 300, 400}
	pos := 0
	var cur Cursor

	lookup := func(ms int) int {
		at := time.Duration(ms) * time.Millisecond
		for cur.NeedsFrame(at) && pos < len(source) {
			cur.Feed(ports.VideoFrame{TimestampMs: source[pos]})
			pos++
		}
		f, ok := cur.At(at)
		if !ok {
			t.Fatalf("no frame for %dms", ms)
		}
		return f.TimestampMs
	}

	tests := []struct{ at, want int }{
		{0, 0}, {50, 0}, {100, 100}, {150, 100}, {150, 100}, {399, 300}, {400, 400}, {900, 400},
	}
	for _, tt := range tests {
		if got := lookup(tt.at); got != tt.want {
			t.Errorf("at %dms: expected frame %d, got %d", tt.at, tt.want, got)
		}
	}
}

func TestCursor_Empty(t *testing.T) {
	var cur Cursor
	if _, ok := cur.At(time.Second); ok {
		t.Error("expected no frame")
	}
}

func TestTrimAudio(t *testing.T) {
	track := &ports.AudioTrack{SampleRate: 10, Channels: 2}
	for i := 0; i < 100; i++ {
		track.Samples = append(track.Samples, int16(i), int16(-i))
	}

	got := TrimAudio(track, Range{Start: 2 * time.Second, End: 4 * time.Second})
	if got.Frames() != 20 {
		t.Fatalf("expected 20 frames, got %d", got.Frames())
	}
	if got.Samples[0] != 20 || got.Samples[1] != -20 {
		t.Errorf("expected first frame (20,-20), got (%d,%d)", got.Samples[0], got.Samples[1])
	}
	if TrimAudio(nil, Range{}) != nil {
		t.Error("expected nil for nil track")
	}
}

func TestResampleAudio(t *testing.T) {
	track := &ports.AudioTrack{SampleRate: 8000, Channels: 1}
	for i := 0; i < 1000; i++ {
		track.Samples = append(track.Samples, int16(i))
	}

	tests := []struct {
		speed      float64
		wantFrames int
	}{
		{1.0, 1000},
		{2.0, 500},
		{0.8, 1250},
		{3.0, 333},
	}
	for _, tt := range tests {
		got, err := ResampleAudio(track, tt.speed)
		if err != nil {
			t.Fatalf("speed %g: unexpected error: %v", tt.speed, err)
		}
		if got.Frames() != tt.wantFrames {
			t.Errorf("speed %g: expected %d frames, got %d", tt.speed, tt.wantFrames, got.Frames())
		}
		if got.SampleRate != 8000 {
			t.Errorf("speed %g: sample rate changed to %d", tt.speed, got.SampleRate)
		}
	}

	half, _ := ResampleAudio(track, 0.5)
	// interpolated midpoint between samples 10 and 11
	if half.Samples[21] != 11 && half.Samples[21] != 10 {
		t.Errorf("expected interpolated value near 10.5, got %d", half.Samples[21])
	}
	if half.Samples[20] != 10 {
		t.Errorf("expected sample 10 at index 20, got %d", half.Samples[20])
	}

	if _, err := ResampleAudio(track, 0); !errors.Is(err, pipeline.ErrInvalidSpeed) {
		t.Errorf("expected ErrInvalidSpeed, got %v", err)
	}
}
