package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/progress"
)

// Job is the handle of a running job. T is the job's result type.
type Job[T any] struct {
	id       string
	progress *progress.Channel
	done     chan struct{}

	// written by the job goroutine before done is closed
	result T
	err    error
}

func newJob[T any](cancel context.CancelFunc) *Job[T] {
	j := &Job[T]{
		id:       uuid.NewString(),
		progress: progress.New(),
		done:     make(chan struct{}),
	}
	j.progress.OnCancel(cancel)
	return j
}

// ID returns the job identifier.
func (j *Job[T]) ID() string {
	return j.id
}

// Progress returns the job's progress channel.
func (j *Job[T]) Progress() *progress.Channel {
	return j.progress
}

// Done is closed when the job has finished.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done. A ctx error does not
// cancel the job.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.result, j.err
	case <-ctx.Done():
		var zero T
		return zero, pipeline.Cancelled(ctx.Err())
	}
}

// Cancel stops the job. The job ends with ErrCancelled unless it already finished.
func (j *Job[T]) Cancel() {
	j.progress.Cancel()
}
