package logger

import "github.com/user/clipforge/pkg/ports"

// Discard drops every message. The CLI uses it for --quiet and tests use it
// wherever log output is irrelevant.
var Discard ports.Logger = discard{}

type discard struct{}

// NewNoop returns Discard.
func NewNoop() ports.Logger {
	return Discard
}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}

func (d discard) WithComponent(string) ports.Logger { return d }
