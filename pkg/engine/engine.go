// Package engine runs render, thumbnail, key frame and metadata jobs
// against the codec ports. Each job runs on its own goroutine, owns its
// decode session and encoder, and reports through its own progress channel.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/user/clipforge/pkg/adapters/logger"
	"github.com/user/clipforge/pkg/adapters/nullsink"
	"github.com/user/clipforge/pkg/adapters/osfilesystem"
	"github.com/user/clipforge/pkg/metadata"
	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// ErrEngineClosed is returned for jobs submitted after Close.
var ErrEngineClosed = errors.New("engine closed")

// Deps are the adapters the engine drives. Decoder, Encoders and Renderer
// are required; the rest fall back to defaults.
type Deps struct {
	Decoder  ports.VideoDecoder
	Encoders ports.EncoderFactory
	Renderer ports.Renderer
	FS       ports.FileSystem
	Prober   ports.MediaProber
	Sink     ports.DebugSink
	Logger   ports.Logger
}

// Options tune the engine.
type Options struct {
	// MaxConcurrentJobs bounds the number of jobs holding codec sessions at once.
	MaxConcurrentJobs int
	// DefaultFPS is the render rate when neither the job nor the source states one.
	DefaultFPS float64
	// ImageQuality is used for thumbnails that do not set a quality. 0 = renderer default.
	ImageQuality int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxConcurrentJobs: 2,
		DefaultFPS:        30,
	}
}

// Engine schedules jobs. Create one with New and release it with Close.
type Engine struct {
	deps      Deps
	opts      Options
	extractor *metadata.Extractor
	sem       *semaphore.Weighted
	logger    ports.Logger

	mu     sync.Mutex
	closed bool
	jobs   map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine.
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Decoder == nil || deps.Encoders == nil || deps.Renderer == nil {
		return nil, fmt.Errorf("%w: decoder, encoder factory and renderer are required", pipeline.ErrInvalidRequest)
	}
	if deps.FS == nil {
		deps.FS = osfilesystem.New()
	}
	if deps.Sink == nil {
		deps.Sink = nullsink.New()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoop()
	}

	defaults := DefaultOptions()
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = defaults.MaxConcurrentJobs
	}
	if opts.DefaultFPS <= 0 {
		opts.DefaultFPS = defaults.DefaultFPS
	}

	return &Engine{
		deps:      deps,
		opts:      opts,
		extractor: metadata.New(deps.FS, deps.Prober, deps.Logger),
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrentJobs)),
		logger:    deps.Logger.WithComponent("engine"),
		jobs:      make(map[string]context.CancelFunc),
	}, nil
}

// Metadata describes a source synchronously.
func (e *Engine) Metadata(ctx context.Context, src ports.VideoSource) (pipeline.VideoMetadata, error) {
	if e.isClosed() {
		return pipeline.VideoMetadata{}, ErrEngineClosed
	}
	return e.extractor.Extract(ctx, src)
}

// Close cancels running jobs, waits for them to finish and rejects new ones.
// It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	for _, cancel := range e.jobs {
		cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// ActiveJobs returns the number of jobs not yet finished.
func (e *Engine) ActiveJobs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

// submit registers a job and runs fn on a new goroutine once a codec slot is free.
func submit[T any](e *Engine, ctx context.Context, kind string, description any, fn func(ctx context.Context, j *Job[T]) (T, error)) (*Job[T], error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	jobCtx, cancel := context.WithCancel(ctx)
	j := newJob[T](cancel)
	e.jobs[j.id] = cancel
	e.wg.Add(1)
	e.mu.Unlock()

	j.progress.Publish(0)
	e.saveJSON(j.id, kind, description)

	go func() {
		defer e.wg.Done()
		defer close(j.done)
		defer j.progress.Close()
		defer func() {
			cancel()
			e.mu.Lock()
			delete(e.jobs, j.id)
			e.mu.Unlock()
		}()

		if err := e.sem.Acquire(jobCtx, 1); err != nil {
			j.err = pipeline.Cancelled(err)
			e.logger.Info("Job %s cancelled", j.id)
			return
		}
		defer e.sem.Release(1)

		e.logger.Debug("Job %s started (%s)", j.id, kind)
		result, err := fn(jobCtx, j)
		if err == nil && j.progress.Cancelled() {
			err = fmt.Errorf("%w: %w", pipeline.ErrCancelled, context.Canceled)
		}
		if err != nil {
			if ctxErr := jobCtx.Err(); ctxErr != nil && !errors.Is(err, pipeline.ErrCancelled) {
				err = fmt.Errorf("%w: %w", pipeline.ErrCancelled, ctxErr)
			}
			j.err = err
			if errors.Is(err, pipeline.ErrCancelled) {
				e.logger.Info("Job %s cancelled", j.id)
			} else {
				e.logger.Error("Job %s failed: %v", j.id, err)
			}
			return
		}

		j.result = result
		j.progress.Publish(1)
		e.logger.Debug("Job %s completed", j.id)
	}()

	return j, nil
}

// frameProgress maps i of n finished units onto the [0.05, 0.95] band.
func frameProgress(i, n int) float64 {
	if n <= 0 {
		return 0.95
	}
	return 0.05 + 0.9*float64(i)/float64(n)
}

func (e *Engine) saveJSON(jobID, name string, v any) {
	if !e.deps.Sink.Enabled() || v == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		e.logger.Warn("Failed to save debug output: %v", err)
		return
	}
	if err := e.deps.Sink.SaveJobJSON(jobID, name, data); err != nil {
		e.logger.Warn("Failed to save debug output: %v", err)
	}
}
