package topology

import (
	"fmt"
	"strings"
)

// InconsistencyError reports a document that cannot be linked into a
// consistent model. It is not fatal to a lint run.
type InconsistencyError struct {
	Reason  string
	Element string
	Line    int
}

func (e *InconsistencyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("inconsistent model at line %d (%s): %s", e.Line, e.Element, e.Reason)
	}
	return fmt.Sprintf("inconsistent model: %s", e.Reason)
}

// ImportFailure classifies why an import could not be used.
type ImportFailure int

// Import failures.
const (
	ImportMissing ImportFailure = iota
	ImportWrongKind
	ImportMalformed
)

// ImportError reports an import_* reference that did not resolve.
type ImportError struct {
	Failure ImportFailure
	Path    string // resolved file path
	Ref     string // reference text as written
	Want    string // expected root element
	Got     string // actual root element, for ImportWrongKind
	Line    int    // position of the syntax error, for ImportMalformed
	Column  int
	Err     error
}

func (e *ImportError) Error() string {
	switch e.Failure {
	case ImportMissing:
		return fmt.Sprintf("imported file (%s) does not exist", e.Path)
	case ImportWrongKind:
		return fmt.Sprintf("imported file %s is a %q document, expected %q", e.Ref, e.Got, e.Want)
	default:
		return fmt.Sprintf("imported file %s is malformed: %v", e.Ref, e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// CycleError reports an import chain that leads back to itself.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "cyclic import: " + strings.Join(e.Chain, " -> ")
}
