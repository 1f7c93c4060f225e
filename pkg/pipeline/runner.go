package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/observability"
	"github.com/camalot/fyles/pkg/sink"
)

// Runner wires the pipeline's collaborators together.
//
// The Runner is stateless apart from its collaborators and logger: every run
// gets a fresh [State], so nothing carries over between runs.
type Runner struct {
	Source   icon.Source
	Registry icon.Registry
	Sink     sink.Sink
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If logger is nil, log.Default() is used.
// If snk is nil, a MemorySink is used.
func NewRunner(src icon.Source, reg icon.Registry, snk sink.Sink, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if snk == nil {
		snk = &sink.MemorySink{}
	}
	return &Runner{
		Source:   src,
		Registry: reg,
		Sink:     snk,
		Logger:   logger,
	}
}

// Execute runs the complete pipeline and writes the artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*State, error) {
	st, err := r.Render(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Write(ctx, st); err != nil {
		return st, fmt.Errorf("write: %w", err)
	}
	return st, nil
}

// Render runs every stage except Write.
func (r *Runner) Render(ctx context.Context, opts Options) (*State, error) {
	r.applyLogger(&opts)
	st, err := NewState(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.Logger.Debug("starting run", "run", st.RunID)

	r.Extract(ctx, st)
	r.Finalize(ctx, st)
	if err := r.Pack(ctx, st); err != nil {
		return st, fmt.Errorf("pack: %w", err)
	}
	if err := r.Style(ctx, st); err != nil {
		return st, fmt.Errorf("style: %w", err)
	}
	return st, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// stage reports a stage to the observability hooks and returns a func that
// completes it.
func stage(ctx context.Context, name string) func(items int, err error) time.Duration {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	return func(items int, err error) time.Duration {
		d := time.Since(start)
		hooks.OnStageComplete(ctx, name, items, d, err)
		return d
	}
}
