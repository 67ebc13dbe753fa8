package ffmpegcodec

import "errors"

var (
	// ErrFFmpegNotFound is returned when the ffmpeg or ffprobe binary cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpegcodec: ffmpeg not found")

	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("ffmpegcodec: encoder not initialized")

	// ErrSessionClosed is returned when a decode session is used after Close.
	ErrSessionClosed = errors.New("ffmpegcodec: session closed")

	// ErrNoVideoStream is returned when the probed source has no video stream.
	ErrNoVideoStream = errors.New("ffmpegcodec: no video stream")
)
