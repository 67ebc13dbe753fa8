package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/user/clipforge/pkg/clipforge"
	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
	"github.com/user/clipforge/pkg/stages/effects"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJobFile is returned for job files that cannot be turned into a job.
var ErrInvalidJobFile = errors.New("config: invalid job file")

// JobFile is a declarative description of one or more jobs on one input.
//
//	input: clip.mov
//	render:
//	  output: out.webm
//	  start: 1s
//	  end: 4.5s
//	  speed: 2
//	  rotate: 1
//	  effects:
//	    - name: grayscale
//	thumbnails:
//	  output_dir: thumbs
//	  at: [0s, 2s, 4s]
//	  size: {width: 320, height: 180}
type JobFile struct {
	Input      string         `yaml:"input"`
	Render     *RenderSpec    `yaml:"render"`
	Thumbnails *ThumbnailSpec `yaml:"thumbnails"`
	KeyFrames  *KeyFrameSpec  `yaml:"keyframes"`
}

// RenderSpec describes a render job.
type RenderSpec struct {
	Output  string  `yaml:"output"`
	Format  string  `yaml:"format"` // defaults to the output extension
	Preset  string  `yaml:"preset"`
	Start   string  `yaml:"start"`
	End     string  `yaml:"end"`
	Speed   float64 `yaml:"speed"`
	Audio   *bool   `yaml:"audio"`
	FPS     float64 `yaml:"fps"`
	Bitrate float64 `yaml:"bitrate_mbps"`

	Crop   *pipeline.Rectangle `yaml:"crop"`
	Rotate int                 `yaml:"rotate"` // quarter turns clockwise
	FlipX  bool                `yaml:"flip_x"`
	FlipY  bool                `yaml:"flip_y"`
	ScaleX float64             `yaml:"scale_x"`
	ScaleY float64             `yaml:"scale_y"`

	Effects  []EffectSpec `yaml:"effects"`
	Matrices [][]float64  `yaml:"color_matrices"`
	Blur     float64      `yaml:"blur"`
}

// EffectSpec names a built-in color effect.
type EffectSpec struct {
	Name   string  `yaml:"name"`   // grayscale, brightness
	Amount float64 `yaml:"amount"` // brightness delta in 0..255 units
}

// ImageSpec holds the still image options shared by thumbnails and key frames.
type ImageSpec struct {
	OutputDir    string             `yaml:"output_dir"`
	Format       string             `yaml:"format"`
	Size         pipeline.Dimension `yaml:"size"`
	Fit          string             `yaml:"fit"`
	Quality      int                `yaml:"quality"`
	Preset       string             `yaml:"preset"`
	CropToTarget bool               `yaml:"crop_to_target"`
}

// ThumbnailSpec describes thumbnails at explicit timestamps.
type ThumbnailSpec struct {
	ImageSpec `yaml:",inline"`
	At        []string `yaml:"at"`
	Clamp     bool     `yaml:"clamp"`
}

// KeyFrameSpec describes evenly spaced key frames.
type KeyFrameSpec struct {
	ImageSpec `yaml:",inline"`
	Count     int `yaml:"count"`
}

// LoadJobFile reads a job file. Relative paths are resolved against the
// directory that contains it.
func LoadJobFile(path string) (JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobFile{}, err
	}
	job, err := ParseJobFile(data)
	if err != nil {
		return JobFile{}, err
	}
	job.resolvePaths(filepath.Dir(path))
	return job, nil
}

// ParseJobFile parses job file YAML.
func ParseJobFile(data []byte) (JobFile, error) {
	var job JobFile
	if err := yaml.Unmarshal(data, &job); err != nil {
		return JobFile{}, fmt.Errorf("%w: %w", ErrInvalidJobFile, err)
	}
	if job.Input == "" {
		return JobFile{}, fmt.Errorf("%w: input is required", ErrInvalidJobFile)
	}
	if job.Render == nil && job.Thumbnails == nil && job.KeyFrames == nil {
		return JobFile{}, fmt.Errorf("%w: no render, thumbnails or keyframes section", ErrInvalidJobFile)
	}
	return job, nil
}

func (j *JobFile) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	j.Input = abs(j.Input)
	if j.Render != nil {
		j.Render.Output = abs(j.Render.Output)
	}
	if j.Thumbnails != nil {
		j.Thumbnails.OutputDir = abs(j.Thumbnails.OutputDir)
	}
	if j.KeyFrames != nil {
		j.KeyFrames.OutputDir = abs(j.KeyFrames.OutputDir)
	}
}

// Source returns the job input as a VideoSource.
func (j JobFile) Source() ports.VideoSource {
	return ports.SourceFromPath(j.Input)
}

// OutputFormat resolves the render format from Format or the output extension.
func (r RenderSpec) OutputFormat() (ports.OutputFormat, error) {
	name := r.Format
	if name == "" {
		name = filepath.Ext(r.Output)
	}
	if name == "" {
		return ports.OutputMP4, nil
	}
	return ports.ParseOutputFormat(name)
}

// ToRenderJob converts the render section into a RenderJob.
func (j JobFile) ToRenderJob() (pipeline.RenderJob, error) {
	r := j.Render
	if r == nil {
		return pipeline.RenderJob{}, fmt.Errorf("%w: no render section", ErrInvalidJobFile)
	}
	format, err := r.OutputFormat()
	if err != nil {
		return pipeline.RenderJob{}, fmt.Errorf("%w: %w", ErrInvalidJobFile, err)
	}

	b := clipforge.NewRenderBuilder(j.Source(), format)
	if r.Preset != "" {
		b.WithQualityPreset(clipforge.ParseQualityPreset(r.Preset))
	}
	if r.Bitrate > 0 {
		b.WithBitrate(clipforge.MbpsToBps(r.Bitrate))
	}
	if r.Start != "" {
		start, err := ParseDuration(r.Start)
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithStart(start)
	}
	if r.End != "" {
		end, err := ParseDuration(r.End)
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithEnd(end)
	}
	if r.Speed != 0 {
		b.WithSpeed(r.Speed)
	}
	if r.Audio != nil {
		b.WithAudio(*r.Audio)
	}
	if r.FPS > 0 {
		b.WithFrameRate(r.FPS)
	}

	if r.Crop != nil {
		b.WithCrop(r.Crop.X, r.Crop.Y, r.Crop.Width, r.Crop.Height)
	}
	if r.Rotate != 0 {
		b.WithRotation(r.Rotate)
	}
	if r.FlipX || r.FlipY {
		b.WithFlip(r.FlipX, r.FlipY)
	}
	if r.ScaleX != 0 || r.ScaleY != 0 {
		b.WithScale(r.ScaleX, r.ScaleY)
	}

	for _, e := range r.Effects {
		m, err := e.Matrix()
		if err != nil {
			return pipeline.RenderJob{}, err
		}
		b.WithColorMatrix(m)
	}
	for _, m := range r.Matrices {
		b.WithColorMatrix(pipeline.ColorMatrix(m))
	}
	if r.Blur > 0 {
		b.WithBlur(r.Blur)
	}
	return b.Build(), nil
}

// Matrix returns the color matrix for a named effect.
func (e EffectSpec) Matrix() (pipeline.ColorMatrix, error) {
	switch strings.ToLower(e.Name) {
	case "grayscale", "greyscale":
		return effects.Grayscale(), nil
	case "brightness":
		return effects.Brightness(e.Amount), nil
	default:
		return nil, fmt.Errorf("%w: unknown effect %q", ErrInvalidJobFile, e.Name)
	}
}

func (s ImageSpec) parse() (ports.ImageFormat, pipeline.BoxFit, error) {
	format := ports.FormatJPEG
	if s.Format != "" {
		f, err := ports.ParseImageFormat(s.Format)
		if err != nil {
			return format, "", fmt.Errorf("%w: %w", ErrInvalidJobFile, err)
		}
		format = f
	}
	fit := pipeline.BoxFitCover
	switch strings.ToLower(s.Fit) {
	case "", "cover":
	case "contain":
		fit = pipeline.BoxFitContain
	default:
		return format, "", fmt.Errorf("%w: unknown fit %q", ErrInvalidJobFile, s.Fit)
	}
	return format, fit, nil
}

func (s ImageSpec) size() (int, int) {
	w, h := s.Size.Width, s.Size.Height
	if w == 0 && h == 0 {
		return clipforge.DefaultThumbnailWidth, clipforge.DefaultThumbnailHeight
	}
	return w, h
}

// ToThumbnailRequest converts the thumbnails section into a ThumbnailRequest.
func (j JobFile) ToThumbnailRequest() (pipeline.ThumbnailRequest, error) {
	t := j.Thumbnails
	if t == nil {
		return pipeline.ThumbnailRequest{}, fmt.Errorf("%w: no thumbnails section", ErrInvalidJobFile)
	}
	format, fit, err := t.parse()
	if err != nil {
		return pipeline.ThumbnailRequest{}, err
	}

	b := clipforge.NewThumbnailBuilder(j.Source()).
		WithFormat(format).
		WithSize(t.size()).
		WithBoxFit(fit).
		WithCropToTarget(t.CropToTarget).
		WithClamp(t.Clamp)
	if t.Preset != "" {
		b.WithQualityPreset(clipforge.ParseQualityPreset(t.Preset))
	}
	if t.Quality > 0 {
		b.WithQuality(t.Quality)
	}
	for _, s := range t.At {
		ts, err := ParseDuration(s)
		if err != nil {
			return pipeline.ThumbnailRequest{}, err
		}
		b.At(ts)
	}
	return b.Build(), nil
}

// ToKeyFrameRequest converts the keyframes section into a KeyFrameRequest.
func (j JobFile) ToKeyFrameRequest() (pipeline.KeyFrameRequest, error) {
	k := j.KeyFrames
	if k == nil {
		return pipeline.KeyFrameRequest{}, fmt.Errorf("%w: no keyframes section", ErrInvalidJobFile)
	}
	if k.Count <= 0 {
		return pipeline.KeyFrameRequest{}, fmt.Errorf("%w: keyframes count must be positive", ErrInvalidJobFile)
	}
	format, fit, err := k.parse()
	if err != nil {
		return pipeline.KeyFrameRequest{}, err
	}

	b := clipforge.NewKeyFrameBuilder(j.Source(), k.Count).
		WithFormat(format).
		WithSize(k.size()).
		WithBoxFit(fit).
		WithCropToTarget(k.CropToTarget)
	if k.Preset != "" {
		b.WithQualityPreset(clipforge.ParseQualityPreset(k.Preset))
	}
	if k.Quality > 0 {
		b.WithQuality(k.Quality)
	}
	return b.Build(), nil
}

// ParseDuration parses "7s", "1m30s" or a bare number of seconds ("2.5").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrInvalidJobFile, s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
