package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a lint diagnostic.
// Higher values are more severe.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning Severity = iota
	// SeverityError indicates a defect that should be fixed.
	SeverityError
	// SeverityCritical indicates the document cannot be trusted by later stages.
	// A critical diagnostic halts the lint pipeline after the stage that produced it.
	SeverityCritical
)

// String returns the upper-case name used in lint output, e.g. "ERROR".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// IsCritical reports whether the severity halts later pipeline stages.
func (s Severity) IsCritical() bool {
	return s >= SeverityCritical
}

// ParseSeverity converts a string to a Severity value. Matching is case-insensitive.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning", "warn":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "critical":
		return SeverityCritical, true
	default:
		return SeverityWarning, false
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity %q", name)
	}
	*s = sev
	return nil
}

// =============================================================================
// RuleInfo
// =============================================================================

// Stage names a lint pipeline stage.
type Stage string

// Pipeline stages, in execution order.
const (
	StageRaw   Stage = "raw"
	StageParse Stage = "parse"
	StageTree  Stage = "tree"
	StageModel Stage = "model"
)

// RuleInfo provides metadata about a rule or topology check for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	Stage           Stage    `json:"stage"`
	Tags            []string `json:"tags,omitempty"`
	Check           string   `json:"check,omitempty"`      // Owning check, model stage only
	ExtraArgs       []string `json:"extra_args,omitempty"` // Required check arguments
	Fixable         bool     `json:"fixable,omitempty"`
}
