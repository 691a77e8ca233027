package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SterlingPeet/fprime-extras/internal/cli/output"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Fix         bool              // Apply rule fixes
	PrintPIs    bool              // Print processing instructions
	Watch       bool              // Re-lint on change
	Exclude     []string          // Identifiers to exclude, added to the config
	Filters     []string          // Filter patterns, added to the config
	Args        map[string]string // Extra check arguments
	FprimeRoot  string            // Framework root
	Jobs        int               // Files linted in parallel
	dirPatterns []string
}

// defaultDirPattern selects the descriptors linted when a directory is given.
const defaultDirPattern = "**/*Ai.xml"

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint <path>... [fprime_root]",
		Short: "Lint F Prime component and topology XML",
		Long: `Lint F Prime XML descriptors.

Each file goes through the raw, tree and model stages. A CRITICAL finding
stops the later stages for that file. Paths may be files, directories
(every *Ai.xml below them) or doublestar globs such as 'Ref/**/*AppAi.xml'.

When more than one path is given and the last one is a directory, it is
used as the F Prime root for resolving imports. Otherwise the root comes
from --fprime-root, the config file, or a search upward from each file
for cmake/FPrime.cmake.

Exit status is 0 when every file is clean and 1 otherwise.`,
		Example: `  # Lint one topology
  fprime-extras lint Ref/Top/RefTopologyAppAi.xml

  # Lint every descriptor under Ref against an explicit root
  fprime-extras lint Ref ~/fprime

  # Remove dangling connections, keeping a backup
  fprime-extras lint --fix Ref/Top/RefTopologyAppAi.xml

  # Report unconnected output ports except telemetry
  fprime-extras lint --arg port-ignore='*.tlmOut' Ref/Top/RefTopologyAppAi.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "Apply available fixes, backing up each file first")
	cmd.Flags().BoolVarP(&opts.PrintPIs, "print-processing-instructions", "p", false, "Print the processing instructions of each document")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint files when they or their imports change")
	cmd.Flags().StringSliceVarP(&opts.Exclude, "exclude", "x", nil, "Identifiers to exclude")
	cmd.Flags().StringSliceVar(&opts.Filters, "filter", nil, "Drop topology problems matching these patterns")
	cmd.Flags().StringToStringVar(&opts.Args, "arg", nil, argFlagHelp())
	cmd.Flags().StringSliceVar(&opts.dirPatterns, "pattern", []string{defaultDirPattern}, "Files selected inside directory arguments")

	return cmd
}

func runLint(cmd *cobra.Command, args []string, opts *LintOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	cfg.Exclusions = append(cfg.Exclusions, opts.Exclude...)
	if err := cfg.Validate(cmdCtx.App.Known); err != nil {
		return err
	}

	accepted, err := cmdCtx.App.ArgNames()
	if err != nil {
		return err
	}
	if err := checkArgs(opts.Args, accepted); err != nil {
		return err
	}
	for name := range cfg.Args {
		if !slices.Contains(accepted, name) {
			logger.Warn("config argument is not used by any rule", slog.String("arg", name))
		}
	}

	lintCfg := cfg.LintConfig()
	lintCfg.Filters = append(lintCfg.Filters, opts.Filters...)
	for name, value := range opts.Args {
		lintCfg.SetArg(name, value)
	}

	inputs, root := splitRoot(args)
	opts.FprimeRoot = root
	opts.Jobs = cfg.Jobs

	paths, err := expandInputs(inputs, opts.dirPatterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no XML files match %s", strings.Join(inputs, " "))
	}

	resolver := topology.NewResolver(logger)
	pipeline := lint.NewPipeline(cmdCtx.App.Hooks, lintCfg,
		lint.WithLogger(logger),
		lint.WithResolver(resolver),
		lint.WithFix(opts.Fix),
		lint.WithFprimeRoot(opts.FprimeRoot),
	)

	ctx := cmd.Context()
	results, err := lintOnce(ctx, pipeline, cmdCtx.Renderer, paths, opts)
	if err != nil {
		return err
	}

	if opts.Watch {
		w := &watcher{
			pipeline: pipeline,
			resolver: resolver,
			renderer: cmdCtx.Renderer,
			logger:   logger,
			opts:     opts,
		}
		return w.run(ctx, paths, results)
	}

	if lint.ExitCode(results) != 0 {
		return ErrLintFailed
	}
	return nil
}

// lintOnce lints paths and renders the results.
func lintOnce(ctx context.Context, p *lint.Pipeline, r *output.Renderer, paths []string, opts *LintOptions) ([]*lint.Result, error) {
	results, err := p.RunAll(ctx, paths, opts.Jobs)
	if err != nil {
		return nil, err
	}
	if err := r.Lint(results, output.LintOptions{ProcessingInstructions: opts.PrintPIs}); err != nil {
		return nil, err
	}
	if len(results) > 1 && r.EffectiveMode() == output.ModeText {
		r.Println(r.Styles().Bold.Render(output.SummaryLine(output.Summarize(results))))
	}
	return results, nil
}

// argFlagHelp names the accepted --arg names in the flag usage.
func argFlagHelp() string {
	const help = "Extra check argument, name=value"
	app, err := NewApp(slog.New(slog.DiscardHandler))
	if err != nil {
		return help
	}
	names, err := app.ArgNames()
	if err != nil || len(names) == 0 {
		return help
	}
	return fmt.Sprintf("%s (accepted: %s)", help, strings.Join(names, ", "))
}

// checkArgs rejects --arg names no rule declares.
func checkArgs(args map[string]string, accepted []string) error {
	var unknown []string
	for name := range args {
		if !slices.Contains(accepted, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("unknown --arg %s, accepted: %s", strings.Join(unknown, ", "), strings.Join(accepted, ", "))
}

// splitRoot separates a trailing F Prime root from the inputs. The last
// argument is a root when there is more than one argument and it is a
// directory.
func splitRoot(args []string) ([]string, string) {
	if len(args) < 2 {
		return args, ""
	}
	last := args[len(args)-1]
	if info, err := os.Stat(last); err == nil && info.IsDir() {
		return args[:len(args)-1], last
	}
	return args, ""
}

// expandInputs turns files, directories and glob patterns into a list of
// files in argument order, without duplicates.
func expandInputs(inputs, dirPatterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			paths = append(paths, clean)
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		switch {
		case err == nil && info.IsDir():
			for _, pattern := range dirPatterns {
				matches, err := doublestar.Glob(os.DirFS(in), pattern)
				if err != nil {
					return nil, fmt.Errorf("pattern %q: %w", pattern, err)
				}
				for _, m := range matches {
					add(filepath.Join(in, filepath.FromSlash(m)))
				}
			}
		case err == nil:
			add(in)
		case doublestar.ValidatePathPattern(in) && strings.ContainsAny(in, "*?[{"):
			matches, err := doublestar.FilepathGlob(in, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", in, err)
			}
			for _, m := range matches {
				add(m)
			}
		default:
			// Missing files surface as an error from the pipeline.
			add(in)
		}
	}
	return paths, nil
}
