package commands

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
	"github.com/spf13/cobra"
)

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "normalize <path>...",
		Short: "Rewrite XML descriptors in a canonical layout",
		Long: `Rewrite each file with an XML declaration and two-space indentation.
Processing instructions ahead of the root element are kept and comments
are dropped. The original is saved next to the file as a hidden
.<name>.0.bak backup before the first write.

With --check nothing is written, and the command fails if any file would
change.`,
		Example: `  # Normalize a topology in place
  fprime-extras normalize Ref/Top/RefTopologyAppAi.xml

  # Verify formatting in CI
  fprime-extras normalize --check 'Ref/**/*Ai.xml'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args, check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report files that would change without writing them")

	return cmd
}

func runNormalize(cmd *cobra.Command, args []string, check bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	logger := cmdCtx.Logger

	paths, err := expandInputs(args, []string{defaultDirPattern})
	if err != nil {
		return err
	}

	var changed int
	for _, path := range paths {
		f, err := source.Open(path)
		if err != nil {
			return err
		}
		out, err := xmldoc.Normalize(f.Bytes())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if bytes.Equal(out, f.Bytes()) {
			logger.Debug("already normalized", slog.String("file", path))
			continue
		}
		changed++
		if check {
			r.Println(r.Styles().Warning.Render("would normalize " + path))
			continue
		}
		if err := f.Write(out); err != nil {
			return err
		}
		r.Println("normalized " + path)
	}

	if check && changed > 0 {
		return fmt.Errorf("%d of %d files need normalizing", changed, len(paths))
	}
	if changed == 0 {
		r.Success("All files already normalized.")
	}
	return nil
}
