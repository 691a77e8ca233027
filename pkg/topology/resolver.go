package topology

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aqwari.net/xml/xmltree"
	"github.com/SterlingPeet/fprime-extras/internal/importgraph"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
	gocache "github.com/patrickmn/go-cache"
)

// RootMarker is the file whose presence identifies an F Prime checkout.
const RootMarker = "cmake/FPrime.cmake"

const (
	defaultExpiration = 10 * time.Minute
	cleanupInterval   = 15 * time.Minute
)

// FindRoot walks up from start looking for a directory containing RootMarker.
func FindRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Interface is an imported port type descriptor.
type Interface struct {
	Name      string
	Namespace string
	Path      string
}

// FullName returns the namespace-qualified type name, e.g. "Svc::Sched".
func (i *Interface) FullName() string {
	return qualify(i.Namespace, i.Name)
}

// ComponentType is an imported component descriptor.
type ComponentType struct {
	Name      string
	Namespace string
	Path      string
	Ports     []PortDef
}

// FullName returns the namespace-qualified component type name.
func (c *ComponentType) FullName() string {
	return qualify(c.Namespace, c.Name)
}

// PortDef is a port declared by a component descriptor.
type PortDef struct {
	Name      string
	DataType  string
	RawKind   string
	Kind      PortKind
	MaxNumber int
}

// Resolver loads imported descriptors relative to a framework root.
// Parsed descriptors are cached by path, modification time and size, so
// the same Resolver can be shared by concurrent lint runs.
type Resolver struct {
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewResolver creates a resolver with an empty cache.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		cache:  gocache.New(defaultExpiration, cleanupInterval),
		logger: logger,
	}
}

type cachedDoc struct {
	root *xmltree.Element
	err  error
}

// ImportPath resolves an import reference against the framework root.
func ImportPath(root, ref string) string {
	ref = strings.TrimSpace(ref)
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(root, ref)
}

// load parses the descriptor at path. Missing files return an error
// satisfying os.IsNotExist. Entries are immutable once cached.
func (r *Resolver) load(path string) (*xmltree.Element, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, os.ErrNotExist)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if v, ok := r.cache.Get(key); ok {
		entry := v.(*cachedDoc)
		return entry.root, entry.err
	}

	data, err := os.ReadFile(path) //nolint:gosec // import paths come from the linted project
	if err != nil {
		return nil, err
	}
	root, perr := xmltree.Parse(data)
	r.cache.Set(key, &cachedDoc{root: root, err: perr}, gocache.DefaultExpiration)
	r.logger.Debug("parsed import", slog.String("path", path), slog.Bool("ok", perr == nil))
	return root, perr
}

func (r *Resolver) loadKind(ctx context.Context, root, ref, want string) (*xmltree.Element, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	path := ImportPath(root, ref)
	el, err := r.load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, path, &ImportError{Failure: ImportMissing, Path: path, Ref: ref, Want: want, Err: err}
		}
		ie := &ImportError{Failure: ImportMalformed, Path: path, Ref: ref, Want: want, Err: err}
		var se *xml.SyntaxError
		if errors.As(err, &se) {
			ie.Line = se.Line
		}
		return nil, path, ie
	}
	if el.Name.Local != want {
		return nil, path, &ImportError{Failure: ImportWrongKind, Path: path, Ref: ref, Want: want, Got: el.Name.Local}
	}
	return el, path, nil
}

// LoadInterface loads the port type descriptor named by an import_port_type reference.
func (r *Resolver) LoadInterface(ctx context.Context, root, ref string) (*Interface, error) {
	el, path, err := r.loadKind(ctx, root, ref, RootInterface)
	if err != nil {
		return nil, err
	}
	return &Interface{
		Name:      el.Attr("", "name"),
		Namespace: el.Attr("", "namespace"),
		Path:      path,
	}, nil
}

// LoadComponentType loads the component descriptor named by an import_component_type reference.
func (r *Resolver) LoadComponentType(ctx context.Context, root, ref string) (*ComponentType, error) {
	el, path, err := r.loadKind(ctx, root, ref, RootComponent)
	if err != nil {
		return nil, err
	}
	ct := &ComponentType{
		Name:      el.Attr("", "name"),
		Namespace: el.Attr("", "namespace"),
		Path:      path,
	}
	for i := range el.Children {
		ports := &el.Children[i]
		if ports.Name.Local != "ports" {
			continue
		}
		for j := range ports.Children {
			p := &ports.Children[j]
			if p.Name.Local != "port" {
				continue
			}
			raw := p.Attr("", "kind")
			kind, _ := ParsePortKind(raw)
			ct.Ports = append(ct.Ports, PortDef{
				Name:      p.Attr("", "name"),
				DataType:  p.Attr("", "data_type"),
				RawKind:   raw,
				Kind:      kind,
				MaxNumber: parseMaxNumber(p.Attr("", "max_number")),
			})
		}
	}
	return ct, nil
}

// ImportGraph walks every import_* reference reachable from the document
// at docPath and returns the resulting graph. References that do not
// resolve end the walk along that branch. A reference chain that leads
// back to a document still being resolved returns a *CycleError.
func (r *Resolver) ImportGraph(ctx context.Context, root, docPath string, doc *xmldoc.Document) (*importgraph.Graph, error) {
	g := importgraph.New()
	start := filepath.Clean(docPath)
	g.AddDocument(start)
	if doc == nil || doc.Root == nil {
		return g, nil
	}

	for _, child := range doc.Root.Children {
		if ref, ok := importRef(child.Name, child.Text()); ok {
			g.AddImport(importgraph.Edge{From: start, To: ImportPath(root, ref), Tag: child.Name, Line: child.Line})
		}
	}

	inProgress := map[string]bool{start: true}
	done := make(map[string]bool)

	var walk func(path string, chain []string) error
	walk = func(path string, chain []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		chain = append(chain, path)
		for _, e := range g.Imports(path) {
			if inProgress[e.To] {
				return &CycleError{Chain: append(append([]string{}, chain...), e.To)}
			}
			if done[e.To] {
				continue
			}
			el, err := r.load(e.To)
			if err != nil {
				done[e.To] = true
				continue
			}
			for i := range el.Children {
				c := &el.Children[i]
				if ref, ok := importRef(c.Name.Local, string(c.Content)); ok {
					g.AddImport(importgraph.Edge{From: e.To, To: ImportPath(root, ref), Tag: c.Name.Local})
				}
			}
			inProgress[e.To] = true
			if err := walk(e.To, chain); err != nil {
				return err
			}
			inProgress[e.To] = false
			done[e.To] = true
		}
		return nil
	}

	if err := walk(start, nil); err != nil {
		return g, err
	}
	return g, nil
}

func importRef(tag, text string) (string, bool) {
	if !strings.HasPrefix(tag, "import_") {
		return "", false
	}
	ref := strings.TrimSpace(text)
	if !strings.HasSuffix(strings.ToLower(ref), ".xml") {
		return "", false
	}
	return ref, true
}

func parseMaxNumber(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}
