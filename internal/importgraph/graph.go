// Package importgraph tracks which XML descriptors import which.
// It supports cycle detection over the in-progress resolution set,
// import-first ordering, and finding every document affected by a change.
package importgraph

import (
	"fmt"
	"sort"
)

// Edge is one import_* reference from a document to another file.
type Edge struct {
	From string
	To   string
	Tag  string // import element name, e.g. "import_port_type"
	Line int    // line of the import element in From
}

// Graph is a directed graph of documents. An edge points from the
// importing document to the imported one.
type Graph struct {
	nodes     map[string]bool
	order     []string          // insertion order, for deterministic walks
	imports   map[string][]Edge // importer -> imported
	importers map[string][]string
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]bool),
		imports:   make(map[string][]Edge),
		importers: make(map[string][]string),
	}
}

// AddDocument adds a document. Adding an existing document is a no-op.
func (g *Graph) AddDocument(path string) {
	if g.nodes[path] {
		return
	}
	g.nodes[path] = true
	g.order = append(g.order, path)
}

// HasDocument reports whether path was added.
func (g *Graph) HasDocument(path string) bool {
	return g.nodes[path]
}

// AddImport records that e.From imports e.To. Both documents are added
// if missing. A document may import itself; FindCycle reports it.
func (g *Graph) AddImport(e Edge) {
	g.AddDocument(e.From)
	g.AddDocument(e.To)
	for _, existing := range g.imports[e.From] {
		if existing.To == e.To {
			return
		}
	}
	g.imports[e.From] = append(g.imports[e.From], e)
	if !contains(g.importers[e.To], e.From) {
		g.importers[e.To] = append(g.importers[e.To], e.From)
	}
}

// Imports returns the outgoing imports of path in the order they were added.
func (g *Graph) Imports(path string) []Edge {
	return g.imports[path]
}

// Importers returns the documents that import path directly.
func (g *Graph) Importers(path string) []string {
	return g.importers[path]
}

// Documents returns every document in the order it was added.
func (g *Graph) Documents() []string {
	return append([]string(nil), g.order...)
}

// DocumentCount returns the number of documents in the graph.
func (g *Graph) DocumentCount() int {
	return len(g.nodes)
}

// ImportCount returns the number of import edges.
func (g *Graph) ImportCount() int {
	count := 0
	for _, edges := range g.imports {
		count += len(edges)
	}
	return count
}

// FindCycle walks the imports reachable from start and returns the first
// cycle found as a path that begins and ends with the same document.
// It returns nil when the reachable graph is acyclic.
func (g *Graph) FindCycle(start string) []string {
	done := make(map[string]bool)
	inProgress := make(map[string]bool)
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		if inProgress[id] {
			idx := indexOf(stack, id)
			cycle = append(append([]string{}, stack[idx:]...), id)
			return true
		}
		if done[id] {
			return false
		}
		inProgress[id] = true
		stack = append(stack, id)
		for _, e := range g.imports[id] {
			if visit(e.To) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		inProgress[id] = false
		done[id] = true
		return false
	}

	if visit(start) {
		return cycle
	}
	return nil
}

// Order returns every document with imported documents before their importers.
// Returns an error if the graph contains a cycle.
func (g *Graph) Order() ([]string, error) {
	for _, id := range g.order {
		if cycle := g.FindCycle(id); cycle != nil {
			return nil, fmt.Errorf("import cycle: %v", cycle)
		}
	}

	visited := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range g.imports[id] {
			visit(e.To)
		}
		result = append(result, id)
	}

	for _, id := range g.order {
		visit(id)
	}
	return result, nil
}

// Affected returns the changed documents plus everything that imports
// them directly or transitively, sorted.
func (g *Graph) Affected(changed []string) []string {
	affected := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, importer := range g.importers[id] {
			mark(importer)
		}
	}

	for _, id := range changed {
		if g.nodes[id] {
			mark(id)
		}
	}

	result := make([]string, 0, len(affected))
	for id := range affected {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Merge copies every document and import of other into g.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for _, id := range other.order {
		g.AddDocument(id)
		for _, e := range other.imports[id] {
			g.AddImport(e)
		}
	}
}

func contains(slice []string, str string) bool {
	return indexOf(slice, str) >= 0
}

func indexOf(slice []string, str string) int {
	for i, s := range slice {
		if s == str {
			return i
		}
	}
	return -1
}
