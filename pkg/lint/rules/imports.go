package rules

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/source"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/SterlingPeet/fprime-extras/pkg/xmldoc"
)

type importFailure struct {
	node *xmldoc.Node
	err  *topology.ImportError
}

// portTypes resolves the import_port_type references of a component
// document. It returns the qualified names of the resolved types and
// the references that failed.
func portTypes(ctx context.Context, env *lint.Env, doc *xmldoc.Document) (map[string]bool, []importFailure, error) {
	types := make(map[string]bool)
	var failures []importFailure
	for _, imp := range doc.Root.ChildrenByTag(topology.TagImportPortType) {
		iface, err := env.Resolver.LoadInterface(ctx, env.FprimeRoot, imp.Text())
		if err != nil {
			var ie *topology.ImportError
			if !errors.As(err, &ie) {
				return nil, nil, err
			}
			failures = append(failures, importFailure{node: imp, err: ie})
			continue
		}
		env.Logger.Debug("found port type", "type", iface.FullName())
		types[iface.FullName()] = true
	}
	return types, failures, nil
}

func formatTypes(types map[string]bool) string {
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	slices.Sort(names)
	return "[" + strings.Join(names, " ") + "]"
}

// importMessage describes a failed import. owner is "Component" or
// "Topology"; what names the expected descriptor.
func importMessage(owner, what string, ie *topology.ImportError) string {
	switch ie.Failure {
	case topology.ImportMissing:
		return fmt.Sprintf("%s imported file (%s) which does not exist.", owner, ie.Path)
	case topology.ImportWrongKind:
		return fmt.Sprintf("%s imported invalid %s: %s", owner, what, ie.Ref)
	default:
		return fmt.Sprintf("%s imported malformed %s %s: %v", owner, what, ie.Ref, ie.Err)
	}
}

// PortTypeImports reports import_port_type references that do not
// resolve to an interface descriptor under the framework root.
type PortTypeImports struct {
	lint.BaseRule
}

// NewPortTypeImports creates the rule.
func NewPortTypeImports() *PortTypeImports {
	return &PortTypeImports{lint.BaseRule{
		Name:     IDInvalidPortTypeImport,
		Desc:     "Imported port types must exist and be interface descriptors",
		Severity: core.SeverityCritical,
		Labels:   []string{TagComponent, TagImports},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *PortTypeImports) CheckTree(ctx context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	if env.FprimeRoot == "" || doc.RootName() != topology.RootComponent {
		return nil, nil
	}
	_, failures, err := portTypes(ctx, env, doc)
	if err != nil {
		return nil, err
	}
	var diags []lint.Diagnostic
	for _, fail := range failures {
		diags = append(diags, r.Diag(f, fail.node.Line, 0, importMessage("Component", "port type", fail.err)))
	}
	return diags, nil
}

// InvalidPortType reports component ports whose data type is not among
// the imported port types. It stays silent while any import is broken,
// since the set of known types is then incomplete.
type InvalidPortType struct {
	lint.BaseRule
}

// NewInvalidPortType creates the rule.
func NewInvalidPortType() *InvalidPortType {
	return &InvalidPortType{lint.BaseRule{
		Name:     IDInvalidPortType,
		Desc:     "Port data types must be imported with import_port_type",
		Severity: core.SeverityCritical,
		Labels:   []string{TagComponent, TagImports},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *InvalidPortType) CheckTree(ctx context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	ports := componentPorts(doc)
	if env.FprimeRoot == "" || len(ports) == 0 {
		return nil, nil
	}
	types, failures, err := portTypes(ctx, env, doc)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		return nil, nil
	}

	namespace := doc.Root.AttrOr("namespace", "")
	var diags []lint.Diagnostic
	for _, port := range ports {
		dt := port.AttrOr("data_type", "")
		if types[dt] || (namespace != "" && types[namespace+"::"+dt]) {
			continue
		}
		msg := fmt.Sprintf("Port %q specifies invalid type %q. Imported types are %s.",
			port.AttrOr("name", ""), dt, formatTypes(types))
		diags = append(diags, r.Diag(f, port.Line, 0, msg))
	}
	return diags, nil
}

// ComponentTypeImports reports import_component_type references of a
// topology that do not resolve to a component descriptor.
type ComponentTypeImports struct {
	lint.BaseRule
}

// NewComponentTypeImports creates the rule.
func NewComponentTypeImports() *ComponentTypeImports {
	return &ComponentTypeImports{lint.BaseRule{
		Name:     IDInvalidComponentImport,
		Desc:     "Imported component types must exist and be component descriptors",
		Severity: core.SeverityCritical,
		Labels:   []string{TagTopology, TagImports},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *ComponentTypeImports) CheckTree(ctx context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	if env.FprimeRoot == "" || doc.RootName() != topology.RootAssembly {
		return nil, nil
	}
	var diags []lint.Diagnostic
	for _, imp := range doc.Root.ChildrenByTag(topology.TagImportComponentType) {
		_, err := env.Resolver.LoadComponentType(ctx, env.FprimeRoot, imp.Text())
		if err == nil {
			continue
		}
		var ie *topology.ImportError
		if !errors.As(err, &ie) {
			return diags, err
		}
		diags = append(diags, r.Diag(f, imp.Line, 0, importMessage("Topology", "component type", ie)))
	}
	return diags, nil
}

// FprimeStructure warns when a document has imports or typed ports but
// no framework root could be found to resolve them against.
type FprimeStructure struct {
	lint.BaseRule
}

// NewFprimeStructure creates the rule.
func NewFprimeStructure() *FprimeStructure {
	return &FprimeStructure{lint.BaseRule{
		Name:     IDInvalidFprimeStructure,
		Desc:     "Documents with imports must be linted inside an F Prime checkout",
		Severity: core.SeverityWarning,
		Labels:   []string{TagImports},
	}}
}

// CheckTree implements lint.TreeRule.
func (r *FprimeStructure) CheckTree(_ context.Context, env *lint.Env, f *source.File, doc *xmldoc.Document) ([]lint.Diagnostic, error) {
	if env.FprimeRoot != "" || !needsRoot(doc) {
		return nil, nil
	}
	msg := "Cannot check imported types. Missing valid F Prime root." +
		" Run from inside an F Prime checkout or pass the root as an argument."
	return []lint.Diagnostic{r.Diag(f, 0, 0, msg)}, nil
}

func needsRoot(doc *xmldoc.Document) bool {
	if len(componentPorts(doc)) > 0 {
		return true
	}
	return doc.Root.Child(topology.TagImportPortType) != nil ||
		doc.Root.Child(topology.TagImportComponentType) != nil
}
