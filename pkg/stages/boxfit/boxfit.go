// Package boxfit sizes decoded frames into a target box under a cover or
// contain policy while preserving the source aspect ratio.
package boxfit

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// Fit computes the uniformly scaled size of source for target.
//
// Cover: both sides are at least the target and one side equals it.
// Contain: both sides are at most the target and one side equals it.
// Empty inputs return target unchanged.
func Fit(source, target pipeline.Dimension, fit pipeline.BoxFit) pipeline.Dimension {
	if source.IsEmpty() || target.IsEmpty() {
		return target
	}

	rx := float64(target.Width) / float64(source.Width)
	ry := float64(target.Height) / float64(source.Height)

	var out pipeline.Dimension
	if fit == pipeline.BoxFitContain {
		if rx <= ry {
			out.Width = target.Width
			out.Height = min(target.Height, scaled(source.Height, rx))
		} else {
			out.Height = target.Height
			out.Width = min(target.Width, scaled(source.Width, ry))
		}
	} else {
		if rx >= ry {
			out.Width = target.Width
			out.Height = max(target.Height, scaled(source.Height, rx))
		} else {
			out.Height = target.Height
			out.Width = max(target.Width, scaled(source.Width, ry))
		}
	}
	return out
}

func scaled(n int, s float64) int {
	return max(1, int(math.Round(float64(n)*s)))
}

// Resizer applies Fit to images.
type Resizer struct {
	renderer ports.Renderer
}

// NewResizer creates a Resizer backed by the renderer's scaler.
func NewResizer(renderer ports.Renderer) *Resizer {
	return &Resizer{renderer: renderer}
}

// Resize scales img into target. With cropToTarget, cover results are
// center-cropped to exactly target.
func (r *Resizer) Resize(img image.Image, target pipeline.Dimension, fit pipeline.BoxFit, cropToTarget bool) image.Image {
	b := img.Bounds()
	size := Fit(pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}, target, fit)

	out := img
	if size.Width != b.Dx() || size.Height != b.Dy() {
		out = r.renderer.ResizeImage(img, size.Width, size.Height)
	}

	if cropToTarget && fit != pipeline.BoxFitContain && size != target {
		out = imaging.CropCenter(out, target.Width, target.Height)
	}
	return out
}
