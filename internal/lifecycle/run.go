package lifecycle

import (
	"context"

	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// IOFunc performs the host's physical I/O over the classified files.
type IOFunc func(ctx context.Context, files project.FileSet) (Outcome, error)

// Run drives an operation end to end: Begin, AwaitHostIO, io, then
// Complete, or Fail when io returns an error. The operation is returned in
// its final state together with the first error encountered.
func (r *Runner) Run(ctx context.Context, d *Descriptor, io IOFunc) (*Operation, error) {
	op := r.Start(d)

	ctx, err := op.Begin(ctx)
	if err != nil {
		return op, err
	}
	if err := op.AwaitHostIO(ctx); err != nil {
		return op, err
	}

	outcome, err := io(ctx, op.Files())
	if err != nil {
		_ = op.Fail(ctx, err)
		return op, err
	}
	return op, op.Complete(ctx, outcome)
}
