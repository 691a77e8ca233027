package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SterlingPeet/fprime-extras/internal/cli/output"
	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Tag   string // Filter by tag
	Stage string // Filter by stage: raw, tree, model
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [identifier]",
		Short: "List lint rules and topology check identifiers",
		Long: `List every rule and topology check identifier with its stage and
default severity. Any listed identifier can be excluded in fplint.yml or
with --exclude, and have its severity overridden under 'severity'.

Model stage identifiers belong to a topology check, shown in the Check column.`,
		Example: `  # List everything
  fprime-extras rules

  # Rules that resolve imports
  fprime-extras rules --tag imports

  # One identifier in detail
  fprime-extras rules unconnected-port

  # Machine readable
  fprime-extras --output json rules`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			infos := filterInfos(cmdCtx.App.Infos(), opts)
			if len(args) > 0 {
				return showRule(cmdCtx.Renderer, infos, args[0])
			}
			return listRules(cmdCtx.Renderer, infos)
		},
	}

	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().StringVar(&opts.Stage, "stage", "", "Filter by stage: raw, tree, model")

	return cmd
}

func filterInfos(infos []core.RuleInfo, opts *RulesOptions) []core.RuleInfo {
	if opts.Tag == "" && opts.Stage == "" {
		return infos
	}
	var filtered []core.RuleInfo
	for _, info := range infos {
		if opts.Tag != "" && !slices.Contains(info.Tags, opts.Tag) {
			continue
		}
		if opts.Stage != "" && string(info.Stage) != opts.Stage {
			continue
		}
		filtered = append(filtered, info)
	}
	return filtered
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count int             `json:"count"`
}

func listRules(r *output.Renderer, infos []core.RuleInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		if infos == nil {
			infos = []core.RuleInfo{}
		}
		return r.JSON(RulesJSONOutput{Rules: infos, Count: len(infos)})
	}

	titleCaser := cases.Title(language.English)
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Identifier", "Stage", "Severity", "Check", "Description"})
	for _, info := range infos {
		t.AppendRow(table.Row{
			info.ID,
			titleCaser.String(string(info.Stage)),
			info.DefaultSeverity.String(),
			info.Check,
			firstSentence(info.Description),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(infos)})
	t.Render()

	r.Println(r.Styles().Muted.Render("Use 'fprime-extras rules <identifier>' for details"))
	return nil
}

func showRule(r *output.Renderer, infos []core.RuleInfo, id string) error {
	idx := slices.IndexFunc(infos, func(info core.RuleInfo) bool { return info.ID == id })
	if idx < 0 {
		return fmt.Errorf("rule %q not found", id)
	}
	info := infos[idx]

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}

	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Println(styles.Header.Render(info.ID))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Stage"), titleCaser.String(string(info.Stage)))
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), info.DefaultSeverity.String())
	if info.Check != "" {
		r.Printf("  %s: %s\n", styles.Bold.Render("Check"), info.Check)
	}
	if len(info.Tags) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Tags"), strings.Join(info.Tags, ", "))
	}
	if len(info.ExtraArgs) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Arguments"), strings.Join(info.ExtraArgs, ", "))
	}
	if info.Fixable {
		r.Printf("  %s: yes\n", styles.Bold.Render("Fixable"))
	}
	r.Println("")
	r.Println("  " + info.Description)
	return nil
}

// firstSentence keeps table rows to one line.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
