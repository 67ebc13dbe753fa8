package ffmpegcodec

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/clipforge/pkg/ports"
)

// Audio parameters used for PCM extraction and muxing.
const (
	AudioSampleRate = 48000
	AudioChannels   = 2
)

// codecSet is the encoder pair ffmpeg needs for an output format.
type codecSet struct {
	video  string
	audio  string
	muxer  string
	tuning []string
}

var formatCodecs = map[ports.OutputFormat]codecSet{
	ports.OutputMP4:  {video: "libx264", audio: "aac", muxer: "mp4", tuning: []string{"-preset", "fast", "-movflags", "+faststart"}},
	ports.OutputMOV:  {video: "libx264", audio: "aac", muxer: "mov", tuning: []string{"-preset", "fast", "-movflags", "+faststart"}},
	ports.OutputWebM: {video: "libvpx-vp9", audio: "libopus", muxer: "webm", tuning: []string{"-deadline", "good", "-row-mt", "1"}},
}

// PixelFormat returns the output pixel format. 4:2:0 chroma subsampling
// needs even dimensions; odd sizes fall back to 4:4:4.
func PixelFormat(width, height int) string {
	if width%2 == 0 && height%2 == 0 {
		return "yuv420p"
	}
	return "yuv444p"
}

// crf maps the 0-63 quality scale onto the codec's CRF range.
func crf(format ports.OutputFormat, quality int) int {
	maxCRF := 51
	if format == ports.OutputWebM {
		maxCRF = 63
	}
	if quality <= 0 || quality > 63 {
		if format == ports.OutputWebM {
			return 32
		}
		return 23
	}
	return min(maxCRF, quality*maxCRF/63)
}

// EncodeArgs builds the ffmpeg command line for an encoder. audioPath is
// a raw s16le file or "" for no audio.
func EncodeArgs(format ports.OutputFormat, width, height int, fps float64, opts ports.EncoderOptions, audio *ports.AudioTrack, audioPath, outPath string) ([]string, error) {
	codecs, ok := formatCodecs[format]
	if !ok {
		return nil, fmt.Errorf("no codec for output format %q", format)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", formatFloat(fps),
		"-i", "pipe:0",
	}
	if audioPath != "" && audio != nil {
		args = append(args,
			"-f", "s16le",
			"-ar", strconv.Itoa(audio.SampleRate),
			"-ac", strconv.Itoa(audio.Channels),
			"-i", audioPath,
		)
	}

	args = append(args, "-map", "0:v:0")
	if audioPath != "" && audio != nil {
		args = append(args, "-map", "1:a:0", "-c:a", codecs.audio)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", codecs.video,
		"-pix_fmt", PixelFormat(width, height),
		"-crf", strconv.Itoa(crf(format, opts.Quality)),
	)
	if opts.BitrateBps > 0 {
		args = append(args, "-b:v", strconv.FormatInt(opts.BitrateBps, 10))
		if format != ports.OutputWebM {
			args = append(args,
				"-maxrate", strconv.FormatInt(opts.BitrateBps, 10),
				"-bufsize", strconv.FormatInt(opts.BitrateBps*2, 10))
		}
	} else if format == ports.OutputWebM {
		args = append(args, "-b:v", "0")
	}
	args = append(args, codecs.tuning...)

	if opts.DurationMs > 0 {
		args = append(args, "-t", formatSeconds(opts.DurationMs))
	}

	args = append(args, "-f", codecs.muxer, outPath)
	return args, nil
}

// DecodeArgs builds the command line that streams RGBA frames of input to stdout.
func DecodeArgs(input string, opts ports.DecodeOptions, fps float64) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-noautorotate"}
	if opts.StartMs > 0 {
		args = append(args, "-ss", formatSeconds(opts.StartMs))
	}
	if opts.EndMs > 0 {
		args = append(args, "-to", formatSeconds(opts.EndMs))
	}
	args = append(args, "-i", input, "-map", "0:v:0", "-an", "-sn")
	if fps > 0 {
		args = append(args, "-fps_mode", "cfr", "-r", formatFloat(fps))
	}
	return append(args, "-f", "rawvideo", "-pix_fmt", "rgba", "pipe:1")
}

// SeekArgs builds the command line that decodes the single frame shown at timestampMs.
func SeekArgs(input string, timestampMs int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-noautorotate",
		"-ss", formatSeconds(timestampMs),
		"-i", input,
		"-map", "0:v:0", "-an", "-sn",
		"-frames:v", "1",
		"-f", "rawvideo", "-pix_fmt", "rgba", "pipe:1",
	}
}

// AudioArgs builds the command line that extracts s16le PCM for a range.
func AudioArgs(input string, opts ports.DecodeOptions) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if opts.StartMs > 0 {
		args = append(args, "-ss", formatSeconds(opts.StartMs))
	}
	if opts.EndMs > 0 {
		args = append(args, "-to", formatSeconds(opts.EndMs))
	}
	return append(args,
		"-i", input,
		"-map", "0:a:0", "-vn", "-sn",
		"-f", "s16le",
		"-ar", strconv.Itoa(AudioSampleRate),
		"-ac", strconv.Itoa(AudioChannels),
		"pipe:1",
	)
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output.
func ParseEncoders(output string) map[string]bool {
	encoders := make(map[string]bool)
	started := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !started {
			// capability table ends with a dashed separator
			if strings.HasPrefix(line, "------") {
				started = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && len(fields[0]) == 6 {
			encoders[fields[1]] = true
		}
	}
	return encoders
}

// ParseFrameRate parses ffprobe rates such as "30000/1001" or "25".
func ParseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func formatSeconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
