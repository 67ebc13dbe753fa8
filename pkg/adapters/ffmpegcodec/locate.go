// Package ffmpegcodec implements the codec ports on top of the ffmpeg and
// ffprobe command line tools.
package ffmpegcodec

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Locator resolves the ffmpeg and ffprobe binaries.
// Priority: 1) explicit path, 2) FFMPEG_PATH / FFPROBE_PATH env, 3) PATH, 4) common locations.
type Locator struct {
	FFmpegPath  string
	FFprobePath string
}

// FFmpeg returns the ffmpeg binary path.
func (l Locator) FFmpeg() (string, error) {
	return find("ffmpeg", l.FFmpegPath, "FFMPEG_PATH")
}

// FFprobe returns the ffprobe binary path.
func (l Locator) FFprobe() (string, error) {
	return find("ffprobe", l.FFprobePath, "FFPROBE_PATH")
}

// Available reports whether ffmpeg can be found.
func (l Locator) Available() bool {
	_, err := l.FFmpeg()
	return err == nil
}

func find(name, custom, envVar string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv(envVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", ErrFFmpegNotFound, envVar, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonDirs []string
	switch runtime.GOOS {
	case "windows":
		commonDirs = []string{`C:\ffmpeg\bin`, `C:\Program Files\ffmpeg\bin`, `C:\Program Files (x86)\ffmpeg\bin`}
	case "darwin":
		commonDirs = []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		commonDirs = []string{"/usr/bin", "/usr/local/bin", "/opt/homebrew/bin", "/snap/bin"}
	}
	for _, dir := range commonDirs {
		p := dir + string(os.PathSeparator) + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, name)
}
