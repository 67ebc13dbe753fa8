package ffmpegcodec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/user/clipforge/pkg/ports"
)

// Prober implements ports.MediaProber with ffprobe.
type Prober struct {
	locator Locator
}

// NewProber creates a new ffprobe-backed prober.
func NewProber(locator Locator) *Prober {
	return &Prober{locator: locator}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	Duration     string            `json:"duration"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSide     `json:"side_data_list"`
}

type ffprobeSide struct {
	Rotation *float64 `json:"rotation"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

// Probe runs ffprobe against the source. In-memory sources are piped on stdin.
func (p *Prober) Probe(ctx context.Context, src ports.VideoSource) (ports.ProbeResult, error) {
	ffprobe, err := p.locator.FFprobe()
	if err != nil {
		return ports.ProbeResult{}, err
	}

	input := src.Path
	if input == "" {
		input = "pipe:0"
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		input,
	)
	if src.Path == "" {
		cmd.Stdin = bytes.NewReader(src.Data)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return ports.ProbeResult{}, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}
	return ParseProbeOutput(output)
}

// ParseProbeOutput converts ffprobe JSON into a ProbeResult.
func ParseProbeOutput(data []byte) (ports.ProbeResult, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(data, &ff); err != nil {
		return ports.ProbeResult{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	res := ports.ProbeResult{Format: ff.Format.FormatName}
	if dur, err := strconv.ParseFloat(ff.Format.Duration, 64); err == nil {
		res.DurationMs = int64(math.Round(dur * 1000))
	}
	if br, err := strconv.ParseInt(ff.Format.BitRate, 10, 64); err == nil {
		res.BitrateBps = br
	}

	videoSeen := false
	for _, s := range ff.Streams {
		switch s.CodecType {
		case "video":
			if videoSeen {
				continue
			}
			videoSeen = true
			res.VideoCodec = s.CodecName
			res.Width = s.Width
			res.Height = s.Height
			res.FrameRate = ParseFrameRate(s.AvgFrameRate)
			if res.FrameRate == 0 {
				res.FrameRate = ParseFrameRate(s.RFrameRate)
			}
			res.Rotation = streamRotation(s)
			if res.DurationMs == 0 {
				if dur, err := strconv.ParseFloat(s.Duration, 64); err == nil {
					res.DurationMs = int64(math.Round(dur * 1000))
				}
			}
		case "audio":
			res.HasAudio = true
		}
	}

	if !videoSeen {
		return res, ErrNoVideoStream
	}
	return res, nil
}

// streamRotation reads the display rotation. The display matrix side data
// reports counter-clockwise degrees; the legacy rotate tag is clockwise.
func streamRotation(s ffprobeStream) int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			return int(math.Round(-*sd.Rotation))
		}
	}
	if v, ok := s.Tags["rotate"]; ok {
		if deg, err := strconv.Atoi(v); err == nil {
			return deg
		}
	}
	return 0
}

var _ ports.MediaProber = (*Prober)(nil)
