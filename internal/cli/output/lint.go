package output

import (
	"fmt"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/charmbracelet/lipgloss"
)

// FileBanner starts the text output of every linted file.
const FileBanner = "****************"

// LintSummary holds summary statistics for a lint run.
type LintSummary struct {
	Files    int `json:"files"`
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// LintFileResult is the JSON form of one file's result.
type LintFileResult struct {
	Path                   string            `json:"path"`
	FprimeRoot             string            `json:"fprime_root,omitempty"`
	HaltedAt               core.Stage        `json:"halted_at,omitempty"`
	Failed                 bool              `json:"failed,omitempty"`
	Fixed                  bool              `json:"fixed,omitempty"`
	ProcessingInstructions []string          `json:"processing_instructions,omitempty"`
	Diagnostics            []lint.Diagnostic `json:"diagnostics"`
}

// LintOutput is the JSON document written for a lint run.
type LintOutput struct {
	Files   []LintFileResult `json:"files"`
	Summary LintSummary      `json:"summary"`
}

// LintOptions controls what is shown besides diagnostics.
type LintOptions struct {
	// ProcessingInstructions prints the processing instructions of each document.
	ProcessingInstructions bool
}

// Summarize counts the diagnostics of results.
func Summarize(results []*lint.Result) LintSummary {
	s := LintSummary{Files: len(results)}
	for _, res := range results {
		if res.Failed {
			s.Failed++
		}
		for _, d := range res.Diagnostics {
			s.Total++
			switch d.Severity {
			case core.SeverityCritical:
				s.Critical++
			case core.SeverityError:
				s.Errors++
			case core.SeverityWarning:
				s.Warnings++
			}
		}
	}
	return s
}

// Lint renders results in the renderer's mode.
func (r *Renderer) Lint(results []*lint.Result, opts LintOptions) error {
	if r.EffectiveMode() == ModeJSON {
		return r.lintJSON(results, opts)
	}
	for _, res := range results {
		r.lintFile(res, opts)
	}
	return nil
}

func (r *Renderer) lintFile(res *lint.Result, opts LintOptions) {
	r.Println(r.styles.Header.Render(FileBanner + " " + res.Path))

	if opts.ProcessingInstructions && res.Document != nil {
		for _, pi := range res.Document.ProcInsts {
			r.Println(r.styles.Muted.Render("Processing instruction: " + pi.String()))
		}
	}

	for _, d := range res.Diagnostics {
		r.Println(r.diagnosticLine(d))
	}
	if res.Fixed {
		r.Println(r.styles.Muted.Render("Fixes written, original saved to " + res.File.BackupPath()))
	}
	if res.Failed {
		r.Println(r.styles.Error.Render("One or more rules failed to run, see the log for details."))
	}
	if res.Clean() {
		r.Success(lint.SummaryPassed)
	}
}

// diagnosticLine renders d in the diagnostic format. Only the severity
// and rule id are styled, so the plain text is unchanged.
func (r *Renderer) diagnosticLine(d lint.Diagnostic) string {
	plain := lint.Format(lint.ToolTag, d)
	sev := "[" + d.Severity.String() + "]"
	head, ok := strings.CutSuffix(plain, sev)
	if !ok {
		return plain
	}
	head = strings.Replace(head, " "+d.RuleID+" ", " "+r.styles.RuleID.Render(d.RuleID)+" ", 1)
	return head + r.severityStyle(d.Severity).Render(sev)
}

func (r *Renderer) severityStyle(sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityCritical:
		return r.styles.Critical
	case core.SeverityError:
		return r.styles.Error
	default:
		return r.styles.Warning
	}
}

func (r *Renderer) lintJSON(results []*lint.Result, opts LintOptions) error {
	out := LintOutput{
		Files:   make([]LintFileResult, 0, len(results)),
		Summary: Summarize(results),
	}
	for _, res := range results {
		fr := LintFileResult{
			Path:        res.Path,
			FprimeRoot:  res.FprimeRoot,
			Failed:      res.Failed,
			Fixed:       res.Fixed,
			Diagnostics: res.Diagnostics,
		}
		if res.Halted {
			fr.HaltedAt = res.HaltedAt
		}
		if fr.Diagnostics == nil {
			fr.Diagnostics = []lint.Diagnostic{}
		}
		if opts.ProcessingInstructions && res.Document != nil {
			for _, pi := range res.Document.ProcInsts {
				fr.ProcessingInstructions = append(fr.ProcessingInstructions, pi.String())
			}
		}
		out.Files = append(out.Files, fr)
	}
	return r.JSON(out)
}

// SummaryLine describes a multi-file run in one line.
func SummaryLine(s LintSummary) string {
	parts := []string{fmt.Sprintf("%d issues", s.Total)}
	if s.Critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", s.Critical))
	}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d files with failed rules", s.Failed))
	}
	return fmt.Sprintf("Summary: %s in %d files", strings.Join(parts, ", "), s.Files)
}
