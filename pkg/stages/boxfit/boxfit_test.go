package boxfit

import (
	"image"
	"math"
	"testing"

	"github.com/user/clipforge/pkg/adapters/ggrenderer"
	"github.com/user/clipforge/pkg/mocks"
	"github.com/user/clipforge/pkg/pipeline"
)

func dim(w, h int) pipeline.Dimension {
	return pipeline.Dimension{Width: w, Height: h}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name   string
		source pipeline.Dimension
		target pipeline.Dimension
		fit    pipeline.BoxFit
		want   pipeline.Dimension
	}{
		{"cover landscape", dim(1280, 720), dim(100, 100), pipeline.BoxFitCover, dim(178, 100)},
		{"cover portrait", dim(720, 1280), dim(100, 100), pipeline.BoxFitCover, dim(100, 178)},
		{"contain landscape", dim(1280, 720), dim(100, 100), pipeline.BoxFitContain, dim(100, 56)},
		{"contain portrait", dim(720, 1280), dim(100, 100), pipeline.BoxFitContain, dim(56, 100)},
		{"same aspect", dim(1920, 1080), dim(640, 360), pipeline.BoxFitCover, dim(640, 360)},
		{"upscale contain", dim(16, 9), dim(320, 320), pipeline.BoxFitContain, dim(320, 180)},
		{"empty fit defaults to cover", dim(400, 200), dim(100, 100), "", dim(200, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.source, tt.target, tt.fit)
			if got != tt.want {
				t.Errorf("expected %dx%d, got %dx%d", tt.want.Width, tt.want.Height, got.Width, got.Height)
			}
		})
	}
}

func TestFit_Properties(t *testing.T) {
	sources := []pipeline.Dimension{
		dim(1280, 720), dim(720, 1280), dim(1920, 1080), dim(640, 480), dim(333, 777), dim(100, 100), dim(4096, 17),
	}
	target := dim(100, 100)

	for _, src := range sources {
		cover := Fit(src, target, pipeline.BoxFitCover)
		if !((cover.Width == 100 && cover.Height >= 100) || (cover.Width >= 100 && cover.Height == 100)) {
			t.Errorf("cover %v: got %v", src, cover)
		}

		contain := Fit(src, target, pipeline.BoxFitContain)
		if !((contain.Width == 100 && contain.Height <= 100) || (contain.Width <= 100 && contain.Height == 100)) {
			t.Errorf("contain %v: got %v", src, contain)
		}

		// One-pixel rounding on the short side bounds the aspect error.
		for _, out := range []pipeline.Dimension{cover, contain} {
			short := math.Min(float64(out.Width), float64(out.Height))
			tol := src.AspectRatio() / short * 1.01
			if math.Abs(out.AspectRatio()-src.AspectRatio()) > math.Max(tol, 0.05) {
				t.Errorf("%v -> %v: aspect %f vs %f", src, out, out.AspectRatio(), src.AspectRatio())
			}
		}
	}
}

func TestResizer_Resize(t *testing.T) {
	r := NewResizer(ggrenderer.New())
	src := image.NewRGBA(image.Rect(0, 0, 1280, 720))

	out := r.Resize(src, dim(100, 100), pipeline.BoxFitCover, false)
	if b := out.Bounds(); b.Dx() != 178 || b.Dy() != 100 {
		t.Errorf("cover: expected 178x100, got %dx%d", b.Dx(), b.Dy())
	}

	out = r.Resize(src, dim(100, 100), pipeline.BoxFitCover, true)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("cover cropped: expected 100x100, got %dx%d", b.Dx(), b.Dy())
	}

	out = r.Resize(src, dim(100, 100), pipeline.BoxFitContain, true)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 56 {
		t.Errorf("contain ignores crop: expected 100x56, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestResizer_SkipsResizeAtTargetSize(t *testing.T) {
	renderer := &mocks.Renderer{}
	r := NewResizer(renderer)
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))

	out := r.Resize(src, dim(200, 100), pipeline.BoxFitContain, false)
	if out != image.Image(src) {
		t.Error("expected the input image to be returned unchanged")
	}
	if len(renderer.ResizeCalls) != 0 {
		t.Errorf("expected no resize calls, got %d", len(renderer.ResizeCalls))
	}
}
