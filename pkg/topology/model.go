// Package topology builds the in-memory graph of components, ports and
// connections described by an F Prime topology or component document.
//
// A Model is built fresh for each linted document. Connections are folded
// into the Port that is their source, so each outgoing port record holds at
// most one target. Ports are keyed by name and index: an output array port
// used at several indexes gets one record per index.
package topology

import (
	"fmt"
)

// Model is the linked representation of one document.
type Model struct {
	Name        string
	Namespace   string
	Kind        DocumentKind
	Path        string
	Components  []*Component
	Connections []*Connection

	byName map[string]*Component
}

// Component is a component instance (topology) or the component itself
// (component document).
type Component struct {
	Name      string
	Namespace string
	Type      string // type reference, e.g. "SignalGen" or "Svc::RateGroupDriver"
	TypeFile  string // descriptor the type resolved to, "" when unresolved
	Line      int
	Ports     []*Port
}

// Resolved reports whether the component's type descriptor was loaded.
// Ports of an unresolved component are synthesized from connections.
func (c *Component) Resolved() bool {
	return c.TypeFile != ""
}

// Port is one (name, index) position of a component port.
type Port struct {
	Name      string
	Number    int
	Direction Direction
	Kind      PortKind
	RawKind   string // kind attribute as written
	DataType  string
	MaxNumber int // array arity; 0 when absent
	Line      int

	// Target is the peer this port's outgoing connection lands on; nil when unconnected.
	Target *Endpoint

	owner *Component
}

// Owner returns the component the port belongs to.
func (p *Port) Owner() *Component { return p.owner }

// IsArray reports whether the port accepts more than one indexed connection.
func (p *Port) IsArray() bool { return p.MaxNumber > 1 }

// Connected reports whether the port has an outgoing target.
func (p *Port) Connected() bool { return p.Target != nil }

// Endpoint is one side of a connection.
type Endpoint struct {
	Component string
	Port      string
	Type      string
	Number    int
	Line      int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s.%s[%d]", e.Component, e.Port, e.Number)
}

// Connection is one connection element of a topology.
type Connection struct {
	Name   string
	Source Endpoint
	Target Endpoint
	Line   int
}

// CompByName returns the component with the given instance name.
func (m *Model) CompByName(name string) *Component {
	if m.byName != nil {
		return m.byName[name]
	}
	for _, c := range m.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PortByName returns the first port record with the given name.
func (c *Component) PortByName(name string) *Port {
	for _, p := range c.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PortAt returns the port record for the given name and index.
func (c *Component) PortAt(name string, number int) *Port {
	for _, p := range c.Ports {
		if p.Name == name && p.Number == number {
			return p
		}
	}
	return nil
}

// Peer resolves the component and port the given port's target lands on.
// Both are nil when the port is unconnected or its target does not exist.
func (m *Model) Peer(p *Port) (*Component, *Port) {
	if p.Target == nil {
		return nil, nil
	}
	comp := m.CompByName(p.Target.Component)
	if comp == nil {
		return nil, nil
	}
	port := comp.PortAt(p.Target.Port, p.Target.Number)
	if port == nil {
		port = comp.PortByName(p.Target.Port)
	}
	return comp, port
}

// Identifier returns the canonical dotted name of a port position,
// "<model>.<component>.<port>:<index>".
func (m *Model) Identifier(component, port string, number int) string {
	return fmt.Sprintf("%s.%s.%s:%d", m.Name, component, port, number)
}

// StandardIdentifier returns the canonical name of the port record p of c.
func (m *Model) StandardIdentifier(c *Component, p *Port) string {
	return m.Identifier(c.Name, p.Name, p.Number)
}

func (m *Model) addComponent(c *Component) {
	if m.byName == nil {
		m.byName = make(map[string]*Component)
	}
	m.byName[c.Name] = c
	m.Components = append(m.Components, c)
}

func (c *Component) addPort(p *Port) *Port {
	p.owner = c
	c.Ports = append(c.Ports, p)
	return p
}
