package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveJobJSON saves a job description or result as JSON under the job ID.
	SaveJobJSON(jobID string, name string, data []byte) error

	// SaveFrame saves a processed video frame.
	SaveFrame(jobID string, index int, img image.Image) error

	// SaveThumbnail saves an encoded thumbnail as produced.
	SaveThumbnail(jobID string, index int, format ImageFormat, data []byte) error
}
