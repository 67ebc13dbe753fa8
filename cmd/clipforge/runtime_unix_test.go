//go:build unix

package main

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/user/clipforge/pkg/mocks"
)

func TestSignalContext_Interrupt(t *testing.T) {
	log := mocks.NewLogger()
	r := &runtime{log: log}

	ctx, stop := r.signalContext(context.Background())
	defer stop()

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled by SIGINT")
	}

	// the console logger translates, so the raw key is logged
	if !log.Has("warn", "Interrupted, shutting down...") {
		t.Errorf("expected interrupt warning, got %+v", log.Entries())
	}
}

func TestSignalContext_StopIsQuiet(t *testing.T) {
	log := mocks.NewLogger()
	r := &runtime{log: log}

	ctx, stop := r.signalContext(context.Background())
	stop()
	<-ctx.Done()

	time.Sleep(10 * time.Millisecond)
	if n := len(log.Entries()); n != 0 {
		t.Errorf("normal stop logged %d entries", n)
	}
}
