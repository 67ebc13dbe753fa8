// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/clipforge/pkg/ports"
)

// Sink saves debug output to files, one directory per job:
//
//	<baseDir>/<jobID>/<name>.json
//	<baseDir>/<jobID>/frames/frame-0001.png
//	<baseDir>/<jobID>/thumbnails/thumb-0001.<ext>
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveJobJSON saves a job description or result as JSON.
func (s *Sink) SaveJobJSON(jobID string, name string, data []byte) error {
	dir := filepath.Join(s.baseDir, jobID)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, name+".json"), data)
}

// SaveFrame saves a processed frame as PNG.
func (s *Sink) SaveFrame(jobID string, index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, jobID, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// SaveThumbnail saves an encoded thumbnail unchanged.
func (s *Sink) SaveThumbnail(jobID string, index int, format ports.ImageFormat, data []byte) error {
	dir := filepath.Join(s.baseDir, jobID, "thumbnails")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("thumb-%04d.%s", index, format.Extension()))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
