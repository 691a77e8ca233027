package xmldoc

import "fmt"

// SyntaxError reports a document that is not well-formed XML.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Common error messages
const (
	ErrEmptyDocument    = "document has no root element"
	ErrMultipleRoots    = "extra content at the end of the document"
	ErrTextOutsideRoot  = "text content outside of the root element"
	ErrUnclosedElements = "premature end of data, unclosed element %q"
)
