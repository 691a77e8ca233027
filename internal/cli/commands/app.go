// Package commands implements the fprime-extras subcommands.
package commands

import (
	"errors"
	"log/slog"

	"github.com/SterlingPeet/fprime-extras/internal/cli/config"
	"github.com/SterlingPeet/fprime-extras/internal/cli/output"
	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/check/checks"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/lint/rules"
	"github.com/spf13/cobra"
)

// ErrLintFailed is returned when a lint run found diagnostics or a rule
// failed. The results have already been printed.
var ErrLintFailed = errors.New("linting found problems")

// App holds the registries every command works from.
type App struct {
	Rules  *lint.Registry
	Checks *check.Registry
	Hooks  *lint.Hooks

	known map[string]bool
}

// NewApp registers the shipped rules and checks and binds the rules to a
// fresh hook table.
func NewApp(logger *slog.Logger) (*App, error) {
	checkReg := check.NewRegistry(logger)
	checks.Register(checkReg)

	ruleReg := lint.NewRegistry(logger)
	rules.Register(ruleReg, checkReg)

	hooks := lint.DefaultHooks()
	if err := lint.Bind(hooks, ruleReg); err != nil {
		return nil, err
	}
	return &App{
		Rules:  ruleReg,
		Checks: checkReg,
		Hooks:  hooks,
		known:  rules.Identifiers(ruleReg, checkReg),
	}, nil
}

// Known reports whether id is a rule or check identifier.
func (a *App) Known(id string) bool {
	return a.known[id]
}

// ArgNames lists the extra argument names the bound rules accept.
func (a *App) ArgNames() ([]string, error) {
	args, err := lint.ConfigArgs(a.Hooks)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(args))
	for _, arg := range args {
		names = append(names, arg.Name)
	}
	return names, nil
}

// Infos lists the rules, then the pipeline's own identifiers, then the
// identifiers of the checks.
func (a *App) Infos() []core.RuleInfo {
	infos := append(a.Rules.Infos(), lint.PipelineInfos()...)
	return append(infos, a.Checks.Infos()...)
}

// CommandContext bundles what a command needs from the root command.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	App      *App
}

// NewCommandContext collects the config and logger stored by the root
// command and builds the registries.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	app, err := NewApp(logger)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		App:      app,
	}, nil
}
