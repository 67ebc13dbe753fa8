// Package transform composes the geometric edit of a render job into a
// single source-to-destination matrix and applies it to frames.
package transform

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Result is the composed geometry for one source resolution.
type Result struct {
	Matrix     Affine
	Output     pipeline.Dimension
	SourceRect pipeline.Rectangle
}

// IsIdentity reports whether applying r would return the frame unchanged.
func (r Result) IsIdentity() bool {
	return r.Matrix.IsIdentity() &&
		r.SourceRect.X == 0 && r.SourceRect.Y == 0 &&
		r.SourceRect.Width == r.Output.Width && r.SourceRect.Height == r.Output.Height
}

// Compose builds the transform for a source of the given size. Steps are
// applied in a fixed order: crop, scale, rotate, flip.
func Compose(t pipeline.ExportTransform, source pipeline.Dimension) (Result, error) {
	if source.IsEmpty() {
		return Result{}, fmt.Errorf("%w: empty source %dx%d", pipeline.ErrInvalidCropBounds, source.Width, source.Height)
	}

	m := Identity()
	w, h := source.Width, source.Height
	rect := pipeline.Rectangle{Width: w, Height: h}

	// 1. Crop
	if c := t.Crop; c != nil {
		if c.X < 0 || c.Y < 0 || c.Width <= 0 || c.Height <= 0 ||
			c.X+c.Width > source.Width || c.Y+c.Height > source.Height {
			return Result{}, fmt.Errorf("%w: crop %dx%d+%d+%d outside %dx%d source",
				pipeline.ErrInvalidCropBounds, c.Width, c.Height, c.X, c.Y, source.Width, source.Height)
		}
		rect = *c
		m = Translate(-float64(c.X), -float64(c.Y)).Mul(m)
		w, h = c.Width, c.Height
	}

	// 2. Scale
	sx, sy := t.Scale()
	if sx <= 0 || sy <= 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return Result{}, fmt.Errorf("%w: scale %gx%g", pipeline.ErrInvalidCropBounds, sx, sy)
	}
	nw := int(math.Round(float64(w) * sx))
	nh := int(math.Round(float64(h) * sy))
	if nw <= 0 || nh <= 0 {
		return Result{}, fmt.Errorf("%w: scale %gx%g collapses %dx%d", pipeline.ErrInvalidCropBounds, sx, sy, w, h)
	}
	if nw != w || nh != h {
		m = Scale(float64(nw)/float64(w), float64(nh)/float64(h)).Mul(m)
		w, h = nw, nh
	}

	// 3. Rotate clockwise
	fw, fh := float64(w), float64(h)
	switch NormalizeTurns(t.RotateTurns) {
	case 1:
		m = Affine{0, -1, fh, 1, 0, 0}.Mul(m)
		w, h = h, w
	case 2:
		m = Affine{-1, 0, fw, 0, -1, fh}.Mul(m)
	case 3:
		m = Affine{0, 1, 0, -1, 0, fw}.Mul(m)
		w, h = h, w
	}

	// 4. Flip
	if t.FlipX {
		m = Affine{-1, 0, float64(w), 0, 1, 0}.Mul(m)
	}
	if t.FlipY {
		m = Affine{1, 0, 0, 0, -1, float64(h)}.Mul(m)
	}

	return Result{
		Matrix:     m,
		Output:     pipeline.Dimension{Width: w, Height: h},
		SourceRect: rect,
	}, nil
}

// NormalizeTurns maps any number of quarter turns into [0, 4).
func NormalizeTurns(turns int) int {
	return ((turns % 4) + 4) % 4
}

// Stage draws frames through a composed transform.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new transform stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("transform"),
	}
}

// Apply renders frame through r. Identity transforms return frame as-is.
func (s *Stage) Apply(frame image.Image, r Result) image.Image {
	b := frame.Bounds()
	if r.IsIdentity() && b.Dx() == r.Output.Width && b.Dy() == r.Output.Height {
		return frame
	}

	m := r.Matrix
	if b.Min != (image.Point{}) {
		m = m.Mul(Translate(-float64(b.Min.X), -float64(b.Min.Y)))
	}
	sr := image.Rect(r.SourceRect.X, r.SourceRect.Y,
		r.SourceRect.X+r.SourceRect.Width, r.SourceRect.Y+r.SourceRect.Height).Add(b.Min)

	canvas := s.renderer.CreateCanvas(r.Output.Width, r.Output.Height, color.Black)
	canvas.DrawImageTransformed(frame, sr, m.Aff3())
	return canvas.ToImage()
}
