package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SterlingPeet/fprime-extras/pkg/topology"
)

// Options select what a Runner reports.
type Options struct {
	Excluded func(id string) bool
	Filters  []string
	Args     map[string]string
}

// Outcome is what a Runner produced for one model.
type Outcome struct {
	Problems []Problem

	// Skipped names checks not run because an extra argument was missing.
	Skipped []string

	// Failed names checks that returned an error or panicked.
	Failed []string
}

// AllClear reports whether every check ran and none failed.
func (o *Outcome) AllClear() bool {
	return len(o.Failed) == 0
}

// Runner runs the registered checks over models.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRunner creates a runner over reg.
func NewRunner(reg *Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{registry: reg, logger: logger}
}

// Run runs every applicable check over m. A failing check is logged and
// recorded in the outcome; the others still run.
func (r *Runner) Run(ctx context.Context, m *topology.Model, opts Options) *Outcome {
	out := &Outcome{}
	res := NewResult()

	for _, c := range r.registry.Checkers(opts.Excluded) {
		if ctx.Err() != nil {
			out.Failed = append(out.Failed, c.Name())
			continue
		}
		args, missing := collectArgs(c, opts.Args)
		if missing != "" {
			r.logger.Warn("check skipped, missing extra argument",
				slog.String("check", c.Name()),
				slog.String("arg", missing))
			out.Skipped = append(out.Skipped, c.Name())
			continue
		}

		res.check = c
		if err := runOne(ctx, c, res, m, args); err != nil {
			r.logger.Error("check failed", slog.String("check", c.Name()), slog.Any("error", err))
			out.Failed = append(out.Failed, c.Name())
		}
	}
	for _, err := range res.Errors() {
		r.logger.Error("check result", slog.Any("error", err))
	}

	for _, p := range res.FilteredProblems(opts.Filters) {
		if opts.Excluded != nil && opts.Excluded(p.Identifier) {
			continue
		}
		out.Problems = append(out.Problems, p)
	}
	return out
}

func runOne(ctx context.Context, c Check, res *Result, m *topology.Model, args map[string]string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return c.Run(ctx, res, m, args)
}

func collectArgs(c Check, supplied map[string]string) (map[string]string, string) {
	args := make(map[string]string)
	for _, spec := range c.ExtraArgs() {
		v, ok := supplied[spec.Name]
		if !ok {
			return nil, spec.Name
		}
		args[spec.Name] = v
	}
	return args, ""
}
