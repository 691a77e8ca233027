package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SterlingPeet/fprime-extras/internal/cli/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter fplint.yml",
		Long: `Write a commented fplint.yml listing every rule and topology check
identifier, with empty exclusions, filters, severity overrides and check
arguments ready to fill in.

The linter finds the file by searching upward from the working directory.`,
		Example: `  # Create fplint.yml in the current directory
  fprime-extras init

  # Create it at the root of a deployment
  fprime-extras init Ref

  # Regenerate an existing file
  fprime-extras init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.FileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	data, err := config.Starter(cmdCtx.App.Infos())
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.Success("Wrote " + configPath)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set fprime_root if imports live outside this tree")
	r.Println("  2. Add identifiers to exclusions, or filters for topology paths")
	r.Println("  3. Run 'fprime-extras lint' on your topologies")
	return nil
}
