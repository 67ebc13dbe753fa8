package mocks

import (
	"image"
	"image/color"
	"strconv"
	"sync"

	"golang.org/x/image/math/f64"

	"github.com/user/clipforge/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu          sync.Mutex
	EncodeCalls []EncodeImageCall
	ResizeCalls []ResizeImageCall
}

// EncodeImageCall records a call to EncodeImage.
type EncodeImageCall struct {
	Width, Height int
	Format        ports.ImageFormat
	Quality       int
}

// ResizeImageCall records a call to ResizeImage.
type ResizeImageCall struct {
	Width, Height int
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return &Canvas{width: width, height: height}
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

// EncodeImage returns a short marker "<format>:<w>x<h>" unless EncodeImageFunc is set.
func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	b := img.Bounds()
	m.mu.Lock()
	m.EncodeCalls = append(m.EncodeCalls, EncodeImageCall{Width: b.Dx(), Height: b.Dy(), Format: format, Quality: quality})
	m.mu.Unlock()
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte(format.String() + ":" + strconv.Itoa(b.Dx()) + "x" + strconv.Itoa(b.Dy())), nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	m.mu.Lock()
	m.ResizeCalls = append(m.ResizeCalls, ResizeImageCall{Width: width, Height: height})
	m.mu.Unlock()
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas.
type Canvas struct {
	width  int
	height int
	img    *image.RGBA

	TransformCalls []TransformCall
}

// TransformCall records a call to DrawImageTransformed.
type TransformCall struct {
	SourceRect image.Rectangle
	Matrix     f64.Aff3
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {}

func (m *Canvas) DrawImageTransformed(img image.Image, sr image.Rectangle, s2d f64.Aff3) {
	m.TransformCalls = append(m.TransformCalls, TransformCall{SourceRect: sr, Matrix: s2d})
}

func (m *Canvas) ToImage() image.Image {
	if m.img != nil {
		return m.img
	}
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

var _ ports.Canvas = (*Canvas)(nil)
