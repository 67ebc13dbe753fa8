// Package pipeline provides the job model, error taxonomy and stage
// infrastructure shared by the clipforge engine and its stages.
package pipeline

import (
	"context"
)

// Stage is a blocking processing step with a typed input and output.
// Stages that consume a frame sequence own it until Execute returns.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}
