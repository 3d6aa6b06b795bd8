package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// Outcome is what the host reports after performing the I/O.
type Outcome struct {
	// NewName is the resulting base name for rename, move and copy.
	NewName string

	// Original is the project the operation started from. Defaults to the
	// descriptor's project.
	Original *project.Project

	// OriginalPath is the root before the I/O. Defaults to the path
	// recorded by Begin.
	OriginalPath string
}

// Runner creates operations sharing a tracer, metrics and logger.
type Runner struct {
	tracer  trace.Tracer
	metrics *Metrics
	logger  *logging.Logger
}

// Option configures a Runner.
type Option func(*runnerOptions)

type runnerOptions struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger *logging.Logger
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *runnerOptions) { o.tracer = t }
}

// WithMeter sets the meter lifecycle metrics are created on.
func WithMeter(m metric.Meter) Option {
	return func(o *runnerOptions) { o.meter = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *runnerOptions) { o.logger = l }
}

// NewRunner creates a Runner. Unset options fall back to the global OTEL
// providers and a nop logger.
func NewRunner(opts ...Option) (*Runner, error) {
	o := runnerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(InstrumentationName)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	metrics, err := NewMetrics(o.meter)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle metrics: %w", err)
	}

	return &Runner{tracer: o.tracer, metrics: metrics, logger: o.logger}, nil
}

// Start returns a new operation in the Idle state.
func (r *Runner) Start(d *Descriptor) *Operation {
	return &Operation{desc: d, runner: r, state: StateIdle}
}

// Operation is one invocation moving through the lifecycle. Methods are
// safe for concurrent use, though hosts drive them sequentially.
type Operation struct {
	desc   *Descriptor
	runner *Runner

	mu           sync.Mutex
	state        State
	files        project.FileSet
	originalPath string
	err          error
	span         trace.Span
	started      time.Time
}

// Descriptor returns the operation's descriptor.
func (o *Operation) Descriptor() *Descriptor {
	return o.desc
}

// State returns the current state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the error that failed the operation, if any.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// OriginalPath returns the project root recorded by Begin.
func (o *Operation) OriginalPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.originalPath
}

// Files returns a copy of the classified file set.
func (o *Operation) Files() project.FileSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return project.FileSet{
		Metadata: append([]fsys.FileRef{}, o.files.Metadata...),
		Data:     append([]fsys.FileRef{}, o.files.Data...),
	}
}

// Begin classifies the project and fires the pre-notification. The returned
// context carries the operation span and correlation fields and must be
// passed to the remaining steps. A classification or hook failure moves
// the operation to Failed; in the classification case the pre-notification
// never fires.
func (o *Operation) Begin(ctx context.Context) (context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StateClassifying); err != nil {
		return ctx, err
	}

	p := o.desc.Project
	ctx = logging.WithProject(ctx, p.Path())
	ctx = logging.WithOperation(ctx, o.desc.ID, string(o.desc.Command))
	ctx, o.span = o.runner.tracer.Start(ctx, "crxproject.operation."+string(o.desc.Command),
		trace.WithAttributes(
			attribute.String("crxproject.operation.id", o.desc.ID),
			attribute.String("crxproject.operation.command", string(o.desc.Command)),
			attribute.String("crxproject.project.path", p.Path()),
		),
	)
	o.started = time.Now()
	o.originalPath = p.Path()
	o.runner.metrics.recordStarted(ctx, o.desc.Command)
	o.runner.logger.Debug(ctx, "operation started")

	if err := ctx.Err(); err != nil {
		return ctx, o.failLocked(ctx, err)
	}

	files, err := o.capability().Classify()
	if err != nil {
		return ctx, o.failLocked(ctx, err)
	}
	o.files = files
	o.span.SetAttributes(attribute.Int("crxproject.classified.files", files.Len()))
	o.runner.metrics.recordClassified(ctx, o.desc.Command, files.Len())

	if err := o.preNotify(ctx); err != nil {
		return ctx, o.failLocked(ctx, err)
	}
	if err := o.advance(StatePreNotified); err != nil {
		return ctx, err
	}

	o.runner.logger.Debug(ctx, "operation pre-notified",
		zap.Int("metadata", len(files.Metadata)),
		zap.Int("data", len(files.Data)),
	)
	return ctx, nil
}

// AwaitHostIO hands control to the host for the physical I/O.
func (o *Operation) AwaitHostIO(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StatePreNotified {
		if err := ctx.Err(); err != nil {
			return o.failLocked(ctx, err)
		}
	}
	return o.advance(StateAwaitingHostIO)
}

// Complete records the host's outcome, fires the post-notification and
// finishes the operation. The operation reaches Done even when a post hook
// fails; that failure is returned.
func (o *Operation) Complete(ctx context.Context, outcome Outcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.advance(StatePostNotified); err != nil {
		return err
	}
	if outcome.Original == nil {
		outcome.Original = o.desc.Project
	}
	if outcome.OriginalPath == "" {
		outcome.OriginalPath = o.originalPath
	}

	hookErr := o.postNotify(ctx, outcome)
	if hookErr != nil {
		o.runner.logger.Warn(ctx, "post-notification failed", zap.Error(hookErr))
		o.span.RecordError(hookErr)
	}

	if err := o.advance(StateDone); err != nil {
		return err
	}
	o.span.SetStatus(codes.Ok, "")
	o.span.End()
	o.runner.logger.Info(ctx, "operation done",
		zap.Duration("duration", time.Since(o.started)),
		zap.String("new_name", outcome.NewName),
	)
	return hookErr
}

// Fail moves a non-terminal operation to Failed.
func (o *Operation) Fail(ctx context.Context, cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.state, StateFailed)
	}
	_ = o.failLocked(ctx, cause)
	return nil
}

// advance moves to the next state. Caller holds o.mu.
func (o *Operation) advance(to State) error {
	if err := checkTransition(o.state, to); err != nil {
		return err
	}
	o.state = to
	return nil
}

// failLocked records cause and returns it. Caller holds o.mu.
func (o *Operation) failLocked(ctx context.Context, cause error) error {
	from := o.state
	o.state = StateFailed
	o.err = cause
	o.runner.metrics.recordFailed(ctx, o.desc.Command)
	o.runner.logger.Error(ctx, "operation failed",
		zap.String("state", from.String()),
		zap.Error(cause),
	)
	if o.span != nil {
		o.span.RecordError(cause)
		o.span.SetStatus(codes.Error, cause.Error())
		o.span.End()
	}
	return cause
}

// capability returns the operation capability for the command. Rename
// shares the move capability.
func (o *Operation) capability() project.Operation {
	p := o.desc.Project
	switch o.desc.Command {
	case Copy:
		return p.CopyOperation()
	case Delete:
		return p.DeleteOperation()
	default:
		return p.MoveOperation()
	}
}

func (o *Operation) preNotify(ctx context.Context) error {
	p := o.desc.Project
	switch o.desc.Command {
	case Rename:
		return p.MoveOperation().NotifyRenaming(ctx, o.desc.NewName)
	case Move:
		return p.MoveOperation().NotifyMoving(ctx)
	case Copy:
		return p.CopyOperation().NotifyCopying(ctx)
	default:
		return p.DeleteOperation().NotifyDeleting(ctx)
	}
}

// postNotify fires on the originating project's capability.
func (o *Operation) postNotify(ctx context.Context, out Outcome) error {
	p := o.desc.Project
	switch o.desc.Command {
	case Rename:
		return p.MoveOperation().NotifyRenamed(ctx, out.NewName)
	case Move:
		return p.MoveOperation().NotifyMoved(ctx, out.Original, out.OriginalPath, out.NewName)
	case Copy:
		return p.CopyOperation().NotifyCopied(ctx, out.Original, out.OriginalPath, out.NewName)
	default:
		return p.DeleteOperation().NotifyDeleted(ctx)
	}
}
