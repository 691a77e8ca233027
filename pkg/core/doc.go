// Package core defines the shared language of the fprime-extras linter.
//
// This package contains:
//   - Severity levels shared by rules and topology checks
//   - RuleInfo, the catalog entry rendered by the CLI
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
