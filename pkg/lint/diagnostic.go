package lint

import (
	"fmt"
	"sort"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
)

// ToolTag prefixes every rendered diagnostic.
const ToolTag = "FP-LINT"

// SummaryPassed is printed when a run produces no diagnostics.
const SummaryPassed = "All linting checks passed."

// Diagnostic is one lint finding.
type Diagnostic struct {
	File     string        `json:"file"`
	RuleID   string        `json:"rule_id"`
	Line     int           `json:"line"`
	Column   int           `json:"column"`
	Message  string        `json:"message"`
	Severity core.Severity `json:"severity"`
}

// String renders the diagnostic in the one-line report format.
func (d Diagnostic) String() string {
	return Format(ToolTag, d)
}

// Format renders d as "[tag] (L<line>,C<col>) <rule> -> <message> [<SEVERITY>]".
func Format(tag string, d Diagnostic) string {
	return fmt.Sprintf("[%s] (L%d,C%d) %s -> %s [%s]", tag, d.Line, d.Column, d.RuleID, d.Message, d.Severity)
}

// SortDiagnostics orders diagnostics by line. Diagnostics on the same line
// keep the order they were found in.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Line < diags[j].Line
	})
}

// HasCritical reports whether any diagnostic is CRITICAL.
func HasCritical(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity.IsCritical() {
			return true
		}
	}
	return false
}
