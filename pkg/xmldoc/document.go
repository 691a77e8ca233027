// Package xmldoc parses F Prime XML descriptors into a tree that remembers
// where every element came from.
//
// Each Node carries its 1-based line and column and the byte span of the
// element in the source. Positions are what lint diagnostics report and
// spans are what fixes edit. Parse also collects the processing
// instructions found before and around the root element, such as the
// xml-model reference to a RelaxNG schema.
package xmldoc

import (
	"regexp"
	"strings"
)

// Node is one element of a parsed document.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Parent   *Node

	// Line and Column locate the element's start tag (1-based).
	Line   int
	Column int

	// Start and End are byte offsets of the element, End exclusive.
	Start int64
	End   int64

	text strings.Builder
}

// Attr is a single attribute. Namespace prefixes are dropped.
type Attr struct {
	Name  string
	Value string
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when it is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Text returns the element's own character data with surrounding space trimmed.
func (n *Node) Text() string {
	return strings.TrimSpace(n.text.String())
}

// ChildrenByTag returns the direct children with the given tag, in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == tag {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child with the given tag.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Name == tag {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Document is a parsed XML document.
type Document struct {
	Root      *Node
	ProcInsts []ProcInst
}

// ProcInst is a processing instruction other than the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
	Line   int
	Column int
}

var pseudoAttrPattern = regexp.MustCompile(`([A-Za-z_][\w.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// PseudoAttrs parses the name="value" pairs of a processing instruction,
// e.g. the href and schematypens of an xml-model instruction.
func (p ProcInst) PseudoAttrs() map[string]string {
	out := make(map[string]string)
	for _, m := range pseudoAttrPattern.FindAllStringSubmatch(p.Inst, -1) {
		val := m[2]
		if val == "" {
			val = m[3]
		}
		out[m[1]] = val
	}
	return out
}

// String renders the instruction as it appears in a document.
func (p ProcInst) String() string {
	if p.Inst == "" {
		return "<?" + p.Target + "?>"
	}
	return "<?" + p.Target + " " + p.Inst + "?>"
}

// ProcInstsByTarget returns the processing instructions with the given target.
func (d *Document) ProcInstsByTarget(target string) []ProcInst {
	var out []ProcInst
	for _, p := range d.ProcInsts {
		if p.Target == target {
			out = append(out, p)
		}
	}
	return out
}

// Find returns every element in the document with the given tag.
func (d *Document) Find(tag string) []*Node {
	if d == nil || d.Root == nil {
		return nil
	}
	var out []*Node
	d.Root.Walk(func(n *Node) bool {
		if n.Name == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

// RootName returns the tag of the root element, or "" for an empty document.
func (d *Document) RootName() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.Root.Name
}
