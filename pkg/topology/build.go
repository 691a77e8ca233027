package topology

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

// Element names read by the builder.
const (
	TagInstance            = "instance"
	TagConnection          = "connection"
	TagSource              = "source"
	TagTarget              = "target"
	TagPorts               = "ports"
	TagPort                = "port"
	TagImportPortType      = "import_port_type"
	TagImportComponentType = "import_component_type"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Path of the document being built, recorded on the model.
	Path string
	// FprimeRoot is the directory import references are resolved against.
	// Imports are not followed when it is empty.
	FprimeRoot string
	// Resolver loads imported component types. Optional.
	Resolver *Resolver
	Logger   *slog.Logger
}

// Build links a parsed document into a Model.
//
// Topology documents produce one Component per instance element, with
// every connection folded into its source port. Component documents
// produce a single Component carrying the declared ports. Any other root
// yields an empty model.
//
// Structural contradictions (duplicate instance names, connections to
// unknown components or ports) return an *InconsistencyError. Imports
// that fail to resolve do not: the affected instances are left unresolved
// and their ports are synthesized from the connections that use them.
func Build(ctx context.Context, doc *xmldoc.Document, opts BuildOptions) (*Model, error) {
	if doc == nil || doc.Root == nil {
		return nil, &InconsistencyError{Reason: "document has no root element"}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	root := doc.Root
	m := &Model{
		Name:      root.AttrOr("name", ""),
		Namespace: root.AttrOr("namespace", ""),
		Kind:      ClassifyRoot(root.Name),
		Path:      opts.Path,
	}

	switch m.Kind {
	case DocumentTopology:
		b := &topologyBuilder{model: m, opts: opts}
		if err := b.build(ctx, root); err != nil {
			return nil, err
		}
	case DocumentComponent:
		if err := buildComponent(m, root, opts.Path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type topologyBuilder struct {
	model *Model
	opts  BuildOptions
	types map[string]*ComponentType
}

func (b *topologyBuilder) build(ctx context.Context, root *xmldoc.Node) error {
	if err := b.loadTypes(ctx, root); err != nil {
		return err
	}
	for _, inst := range root.ChildrenByTag(TagInstance) {
		if err := b.addInstance(inst); err != nil {
			return err
		}
	}
	for _, conn := range root.ChildrenByTag(TagConnection) {
		if err := b.addConnection(conn); err != nil {
			return err
		}
	}
	return nil
}

func (b *topologyBuilder) loadTypes(ctx context.Context, root *xmldoc.Node) error {
	b.types = make(map[string]*ComponentType)
	if b.opts.Resolver == nil || b.opts.FprimeRoot == "" {
		return nil
	}
	for _, imp := range root.ChildrenByTag(TagImportComponentType) {
		ct, err := b.opts.Resolver.LoadComponentType(ctx, b.opts.FprimeRoot, imp.Text())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			b.opts.Logger.Debug("component type import unresolved",
				slog.String("ref", imp.Text()),
				slog.Any("error", err))
			continue
		}
		if _, ok := b.types[ct.FullName()]; !ok {
			b.types[ct.FullName()] = ct
		}
		if _, ok := b.types[ct.Name]; !ok {
			b.types[ct.Name] = ct
		}
	}
	return nil
}

func (b *topologyBuilder) lookupType(namespace, typ string) *ComponentType {
	if ct, ok := b.types[qualify(namespace, typ)]; ok {
		return ct
	}
	return b.types[typ]
}

func (b *topologyBuilder) addInstance(n *xmldoc.Node) error {
	name := n.AttrOr("name", "")
	if name == "" {
		return &InconsistencyError{Reason: "instance has no name", Element: TagInstance, Line: n.Line}
	}
	if b.model.CompByName(name) != nil {
		return &InconsistencyError{
			Reason:  fmt.Sprintf("duplicate component name %q", name),
			Element: TagInstance,
			Line:    n.Line,
		}
	}

	c := &Component{
		Name:      name,
		Namespace: n.AttrOr("namespace", ""),
		Type:      n.AttrOr("type", ""),
		Line:      n.Line,
	}
	if ct := b.lookupType(c.Namespace, c.Type); ct != nil {
		c.TypeFile = ct.Path
		for _, def := range ct.Ports {
			c.addPort(&Port{
				Name:      def.Name,
				Direction: def.Kind.Direction(),
				Kind:      def.Kind,
				RawKind:   def.RawKind,
				DataType:  def.DataType,
				MaxNumber: def.MaxNumber,
				Line:      n.Line,
			})
		}
	}
	b.model.addComponent(c)
	return nil
}

func (b *topologyBuilder) addConnection(n *xmldoc.Node) error {
	name := n.AttrOr("name", "")
	srcNode, tgtNode := n.Child(TagSource), n.Child(TagTarget)
	if srcNode == nil || tgtNode == nil {
		return &InconsistencyError{
			Reason:  fmt.Sprintf("connection %q must have a source and a target", name),
			Element: TagConnection,
			Line:    n.Line,
		}
	}
	src, err := endpointOf(srcNode)
	if err != nil {
		return err
	}
	tgt, err := endpointOf(tgtNode)
	if err != nil {
		return err
	}
	conn := &Connection{Name: name, Source: src, Target: tgt, Line: n.Line}
	b.model.Connections = append(b.model.Connections, conn)

	srcPort, err := b.port(conn, src, DirectionOutput)
	if err != nil {
		return err
	}
	if _, err := b.port(conn, tgt, DirectionInput); err != nil {
		return err
	}

	// First connection wins. Later ones naming the same source position
	// stay in Connections for the duplicate-source check.
	if srcPort.Target == nil {
		t := tgt
		srcPort.Target = &t
		srcPort.Line = src.Line
	}
	return nil
}

// port returns the record for the endpoint's (port, index), creating it
// from the port definition or, for unresolved components, synthesizing it.
// An unknown component is reported on the connection element's line.
func (b *topologyBuilder) port(conn *Connection, ep Endpoint, dir Direction) (*Port, error) {
	c := b.model.CompByName(ep.Component)
	if c == nil {
		return nil, &InconsistencyError{
			Reason:  fmt.Sprintf("connection %q references unknown component %q", conn.Name, ep.Component),
			Element: TagConnection,
			Line:    conn.Line,
		}
	}
	if p := c.PortAt(ep.Port, ep.Number); p != nil {
		return p, nil
	}
	if def := c.PortByName(ep.Port); def != nil {
		clone := *def
		clone.Number = ep.Number
		clone.Target = nil
		clone.Line = ep.Line
		return c.addPort(&clone), nil
	}
	if c.Resolved() {
		return nil, &InconsistencyError{
			Reason:  fmt.Sprintf("connection %q references port %q which component %q (%s) does not have", conn.Name, ep.Port, c.Name, c.Type),
			Element: TagConnection,
			Line:    ep.Line,
		}
	}

	p := &Port{
		Name:      ep.Port,
		Number:    ep.Number,
		Direction: dir,
		DataType:  ep.Type,
		Line:      ep.Line,
	}
	if dir == DirectionOutput {
		p.Kind, p.RawKind = KindOutput, string(KindOutput)
	}
	return c.addPort(p), nil
}

func endpointOf(n *xmldoc.Node) (Endpoint, error) {
	ep := Endpoint{
		Component: n.AttrOr("component", ""),
		Port:      n.AttrOr("port", ""),
		Type:      n.AttrOr("type", ""),
		Line:      n.Line,
	}
	if ep.Component == "" || ep.Port == "" {
		return ep, &InconsistencyError{
			Reason:  fmt.Sprintf("%s must name a component and a port", n.Name),
			Element: n.Name,
			Line:    n.Line,
		}
	}
	if raw, ok := n.Attr("num"); ok && strings.TrimSpace(raw) != "" {
		num, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || num < 0 {
			return ep, &InconsistencyError{
				Reason:  fmt.Sprintf("%s has invalid port number %q", n.Name, raw),
				Element: n.Name,
				Line:    n.Line,
			}
		}
		ep.Number = num
	}
	return ep, nil
}

func buildComponent(m *Model, root *xmldoc.Node, path string) error {
	c := &Component{
		Name:      m.Name,
		Namespace: m.Namespace,
		Type:      qualify(m.Namespace, m.Name),
		TypeFile:  path,
		Line:      root.Line,
	}
	if c.TypeFile == "" {
		c.TypeFile = c.Type
	}
	for _, ports := range root.ChildrenByTag(TagPorts) {
		for _, n := range ports.ChildrenByTag(TagPort) {
			name := n.AttrOr("name", "")
			if name != "" && c.PortByName(name) != nil {
				return &InconsistencyError{
					Reason:  fmt.Sprintf("duplicate port name %q", name),
					Element: TagPort,
					Line:    n.Line,
				}
			}
			raw := n.AttrOr("kind", "")
			kind, _ := ParsePortKind(raw)
			c.addPort(&Port{
				Name:      name,
				Direction: kind.Direction(),
				Kind:      kind,
				RawKind:   raw,
				DataType:  n.AttrOr("data_type", ""),
				MaxNumber: parseMaxNumber(n.AttrOr("max_number", "")),
				Line:      n.Line,
			})
		}
	}
	m.addComponent(c)
	return nil
}
