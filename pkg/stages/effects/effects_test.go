package effects

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/clipforge/pkg/pipeline"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func at(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestApplyColorMatrices(t *testing.T) {
	src := solid(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	tests := []struct {
		name     string
		matrices []pipeline.ColorMatrix
		want     color.NRGBA
	}{
		{"identity", []pipeline.ColorMatrix{Identity()}, color.NRGBA{R: 200, G: 100, B: 50, A: 255}},
		{"brightness clamps", []pipeline.ColorMatrix{Brightness(100)}, color.NRGBA{R: 255, G: 200, B: 150, A: 255}},
		{"swap red and blue 4x4", []pipeline.ColorMatrix{{
			0, 0, 1, 0,
			0, 1, 0, 0,
			1, 0, 0, 0,
			0, 0, 0, 1,
		}}, color.NRGBA{R: 50, G: 100, B: 200, A: 255}},
		{"clamped between matrices", []pipeline.ColorMatrix{Brightness(100), Brightness(-100)}, color.NRGBA{R: 155, G: 100, B: 50, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyColorMatrices(src, tt.matrices)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := at(out, 2, 2); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplyColorMatrices_Grayscale(t *testing.T) {
	out, err := ApplyColorMatrices(solid(2, 2, color.NRGBA{R: 255, G: 0, B: 0, A: 255}), []pipeline.ColorMatrix{Grayscale()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := at(out, 0, 0)
	if got.R != got.G || got.G != got.B {
		t.Errorf("expected equal channels, got %v", got)
	}
	if got.R != 54 {
		t.Errorf("expected luminance 54, got %d", got.R)
	}
}

func TestApplyColorMatrices_InvalidLength(t *testing.T) {
	_, err := ApplyColorMatrices(solid(1, 1, color.NRGBA{}), []pipeline.ColorMatrix{{1, 2, 3}})
	if !errors.Is(err, pipeline.ErrInvalidColorMatrix) {
		t.Errorf("expected ErrInvalidColorMatrix, got %v", err)
	}
	if !pipeline.IsCallerError(err) {
		t.Error("expected a caller error")
	}
}

func TestApplyColorMatrices_EmptyIsNoop(t *testing.T) {
	src := solid(1, 1, color.NRGBA{R: 1, A: 255})
	out, err := ApplyColorMatrices(src, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != image.Image(src) {
		t.Error("expected input image to be returned")
	}
}

// edgeContrast is the red difference across a hard vertical edge.
func edgeContrast(img image.Image) int {
	return int(at(img, 9, 10).R) - int(at(img, 10, 10).R)
}

func TestBlur_MonotonicSoftening(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				src.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}

	prev := edgeContrast(src)
	if prev != 255 {
		t.Fatalf("expected hard edge, got contrast %d", prev)
	}
	for _, radius := range []float64{0.5, 1, 2, 4} {
		c := edgeContrast(Blur(src, radius))
		if c > prev {
			t.Errorf("radius %g: contrast %d exceeds previous %d", radius, c, prev)
		}
		prev = c
	}
	if prev >= 255 {
		t.Error("expected blur to soften the edge")
	}
}

func TestBlur_NonPositiveIsNoop(t *testing.T) {
	src := solid(2, 2, color.NRGBA{A: 255})
	for _, r := range []float64{0, -3} {
		if Blur(src, r) != image.Image(src) {
			t.Errorf("radius %g: expected input image", r)
		}
	}
}

func TestStage(t *testing.T) {
	if _, err := NewStage([]pipeline.ColorMatrix{{1}}, 0); !errors.Is(err, pipeline.ErrInvalidColorMatrix) {
		t.Errorf("expected ErrInvalidColorMatrix, got %v", err)
	}

	s, err := NewStage(nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Active() {
		t.Error("expected empty stage to be inactive")
	}

	s, err = NewStage([]pipeline.ColorMatrix{Brightness(10)}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := s.Apply(solid(8, 8, color.NRGBA{R: 10, G: 10, B: 10, A: 255}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := at(out, 4, 4); got.R != 20 {
		t.Errorf("expected R=20 after brightness and blur of a flat image, got %d", got.R)
	}
}
