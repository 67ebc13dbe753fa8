// Package effects implements per-frame color matrix and blur filters.
package effects

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/user/clipforge/pkg/pipeline"
)

// ValidateMatrices checks that every matrix is 4x5 or 4x4.
func ValidateMatrices(matrices []pipeline.ColorMatrix) error {
	for i, m := range matrices {
		if len(m) != 20 && len(m) != 16 {
			return fmt.Errorf("%w: matrix %d has %d values, want 20 or 16", pipeline.ErrInvalidColorMatrix, i, len(m))
		}
		for _, v := range m {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: matrix %d has a non-finite value", pipeline.ErrInvalidColorMatrix, i)
			}
		}
	}
	return nil
}

// ApplyColorMatrices maps every pixel through the matrices in order,
// clamping to 0..255 after each one. An empty list returns img unchanged.
func ApplyColorMatrices(img image.Image, matrices []pipeline.ColorMatrix) (image.Image, error) {
	if len(matrices) == 0 {
		return img, nil
	}
	if err := ValidateMatrices(matrices); err != nil {
		return nil, err
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
		for _, m := range matrices {
			v = multiply(m, v)
		}
		return color.NRGBA{R: clamp8(v[0]), G: clamp8(v[1]), B: clamp8(v[2]), A: clamp8(v[3])}
	}), nil
}

func multiply(m pipeline.ColorMatrix, v [4]float64) [4]float64 {
	cols := len(m) / 4
	var out [4]float64
	for row := 0; row < 4; row++ {
		r := m[row*cols : (row+1)*cols]
		sum := r[0]*v[0] + r[1]*v[1] + r[2]*v[2] + r[3]*v[3]
		if cols == 5 {
			sum += r[4]
		}
		out[row] = math.Max(0, math.Min(255, sum))
	}
	return out
}

func clamp8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// Blur applies a Gaussian blur with sigma equal to radius.
// A non-positive radius returns img unchanged.
func Blur(img image.Image, radius float64) image.Image {
	if radius <= 0 || math.IsNaN(radius) {
		return img
	}
	return imaging.Blur(img, radius)
}

// Identity returns the 4x5 identity color matrix.
func Identity() pipeline.ColorMatrix {
	return pipeline.ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Grayscale returns a 4x5 luminance matrix (Rec. 709 weights).
func Grayscale() pipeline.ColorMatrix {
	const r, g, b = 0.2126, 0.7152, 0.0722
	return pipeline.ColorMatrix{
		r, g, b, 0, 0,
		r, g, b, 0, 0,
		r, g, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness returns a 4x5 matrix adding delta (0..255 units) to each color channel.
func Brightness(delta float64) pipeline.ColorMatrix {
	return pipeline.ColorMatrix{
		1, 0, 0, 0, delta,
		0, 1, 0, 0, delta,
		0, 0, 1, 0, delta,
		0, 0, 0, 1, 0,
	}
}

// Stage applies the effects of a render job to frames: color matrices
// first, then blur.
type Stage struct {
	matrices []pipeline.ColorMatrix
	radius   float64
}

// NewStage validates the job effects and creates a Stage.
func NewStage(matrices []pipeline.ColorMatrix, blurRadius float64) (*Stage, error) {
	if err := ValidateMatrices(matrices); err != nil {
		return nil, err
	}
	return &Stage{matrices: matrices, radius: blurRadius}, nil
}

// Active reports whether the stage changes frames at all.
func (s *Stage) Active() bool {
	return len(s.matrices) > 0 || s.radius > 0
}

// Apply runs the color matrices and blur on one frame.
func (s *Stage) Apply(img image.Image) (image.Image, error) {
	out, err := ApplyColorMatrices(img, s.matrices)
	if err != nil {
		return nil, err
	}
	return Blur(out, s.radius), nil
}
