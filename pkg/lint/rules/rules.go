// Package rules holds the lint rules shipped with fprime-extras.
//
// Register adds them to a registry in a fixed order. Model-stage findings
// come from the topology checks in pkg/check/checks, run through
// TopologyChecks.
package rules

import (
	"github.com/SterlingPeet/fprime-extras/pkg/check"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
)

// Rule identifiers.
const (
	IDDocumentNotValid       = lint.RuleDocumentNotValid
	IDDanglingConnections    = "dangling-port-connections"
	IDInvalidPortKind        = "invalid-port-kind"
	IDInvalidPortType        = "invalid-port-type"
	IDInvalidPortTypeImport  = "invalid-port-type-import"
	IDInvalidComponentImport = "invalid-component-type-import"
	IDInvalidFprimeStructure = "invalid-fprime-structure"
	IDInvalidSchemaReference = "invalid-schema-reference"
	IDCyclicImport           = "cyclic-import"
	IDTopologyChecks         = "topology-checks"
)

// Capability tags.
const (
	TagXML       = "xml"
	TagTopology  = "topology"
	TagComponent = "component"
	TagImports   = "imports"
)

// All returns a new instance of every rule. Model checks run against
// checks.
func All(checks *check.Registry) []lint.Rule {
	return []lint.Rule{
		NewDocumentNotValid(),
		NewDanglingConnections(),
		NewInvalidPortKind(),
		NewPortTypeImports(),
		NewInvalidPortType(),
		NewComponentTypeImports(),
		NewFprimeStructure(),
		NewSchemaReference(),
		NewCyclicImport(),
		NewTopologyChecks(checks),
	}
}

// Register adds every rule to reg.
func Register(reg *lint.Registry, checks *check.Registry) {
	for _, r := range All(checks) {
		reg.Register(r)
	}
}

// Identifiers returns every diagnostic identifier the rules can report,
// including those of the topology checks and of the pipeline itself.
func Identifiers(reg *lint.Registry, checks *check.Registry) map[string]bool {
	ids := make(map[string]bool)
	for _, r := range reg.All() {
		ids[r.ID()] = true
	}
	for _, info := range lint.PipelineInfos() {
		ids[info.ID] = true
	}
	for id := range checks.AllIdentifiers() {
		ids[id] = true
	}
	return ids
}
