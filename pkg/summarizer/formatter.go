// Package summarizer renders reports of probe and render runs.
package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders a Summary as indented JSON with a trailing newline.
var JSONFormatter Formatter = jsonFormatter{}

type jsonFormatter struct{}

func (jsonFormatter) Format(s *Summary) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(data) + "\n"
}

// ForPath picks JSONFormatter for .json paths and markdown otherwise.
func ForPath(path string, markdown Formatter) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter
	}
	return markdown
}
