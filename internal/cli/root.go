// Package cli provides the command-line interface for fprime-extras.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/SterlingPeet/fprime-extras/internal/cli/commands"
	"github.com/SterlingPeet/fprime-extras/internal/cli/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "fprime-extras",
		Short: "fprime-extras - F Prime XML linter",
		Long: `fprime-extras checks F Prime component, port and topology XML
descriptors for structural mistakes before code generation sees them.

Documents are checked in stages. Raw file rules see the bytes, tree rules
see the parsed document, and model rules see the linked topology with every
imported component and port resolved against the F Prime root.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			if used := config.GetConfigFileUsed(); used != "" {
				logger.Info("using config file", slog.String("path", used))
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
F Prime XML linting and topology checks
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: fplint.yml searched upward)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (DEBUG|INFO|WARNING|ERROR|CRITICAL)")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (auto|text|json)")
	rootCmd.PersistentFlags().String("fprime-root", "", "F Prime root used to resolve imports")
	rootCmd.PersistentFlags().IntP("jobs", "j", config.DefaultJobs, "Files linted in parallel (0 for one per CPU)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("fprime-root")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewNormalizeCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. Lint failures have already been
// reported, so only other errors are printed.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrLintFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for fprime-extras.

Bash:
  $ source <(fprime-extras completion bash)

Zsh:
  $ fprime-extras completion zsh > "${fpath[1]}/_fprime-extras"

Fish:
  $ fprime-extras completion fish | source

PowerShell:
  PS> fprime-extras completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
