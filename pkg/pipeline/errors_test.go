package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	plain := errors.New("corrupt packet")

	tests := []struct {
		name     string
		err      error
		kind     error
		wantKind error
	}{
		{"plain error takes the kind", plain, ErrSourceUnreadable, ErrSourceUnreadable},
		{"context cancel", context.Canceled, ErrSourceUnreadable, ErrCancelled},
		{"wrapped deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), ErrUnsupportedFormat, ErrCancelled},
		{"existing kind is kept", fmt.Errorf("%w: 5s", ErrSeekOutOfRange), ErrSourceUnreadable, ErrSeekOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, tt.kind, "decode frame")
			if Kind(got) != tt.wantKind {
				t.Errorf("Kind(%v) = %v, want %v", got, Kind(got), tt.wantKind)
			}
		})
	}

	if Classify(nil, ErrSourceUnreadable, "x") != nil {
		t.Error("nil error must stay nil")
	}
}

func TestKind(t *testing.T) {
	if Kind(errors.New("other")) != nil {
		t.Error("unclassified error should have no kind")
	}
	if Kind(fmt.Errorf("open: %w", ErrUnsupportedFormat)) != ErrUnsupportedFormat {
		t.Error("wrapped kind not found")
	}
}

func TestIsCallerError(t *testing.T) {
	if !IsCallerError(fmt.Errorf("%w: 2x", ErrInvalidSpeed)) {
		t.Error("invalid speed is a caller error")
	}
	if IsCallerError(Classify(errors.New("corrupt"), ErrSourceUnreadable, "seek")) {
		t.Error("unreadable source is not a caller error")
	}
}
