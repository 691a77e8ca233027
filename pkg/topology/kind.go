package topology

// DocumentKind is the kind of descriptor, taken from its root element.
type DocumentKind int

// Document kinds.
const (
	DocumentUnknown DocumentKind = iota
	DocumentTopology
	DocumentComponent
	DocumentInterface
)

// Root element names of the descriptors the model understands.
const (
	RootAssembly  = "assembly"
	RootComponent = "component"
	RootInterface = "interface"
)

// ClassifyRoot maps a root element name to a DocumentKind.
func ClassifyRoot(root string) DocumentKind {
	switch root {
	case RootAssembly:
		return DocumentTopology
	case RootComponent:
		return DocumentComponent
	case RootInterface:
		return DocumentInterface
	default:
		return DocumentUnknown
	}
}

func (k DocumentKind) String() string {
	switch k {
	case DocumentTopology:
		return "topology"
	case DocumentComponent:
		return "component"
	case DocumentInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Direction is the data-flow direction of a port.
type Direction int

// Port directions.
const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// PortKind is the declared kind of a component port.
type PortKind string

// Valid port kinds.
const (
	KindOutput       PortKind = "output"
	KindSyncInput    PortKind = "sync_input"
	KindAsyncInput   PortKind = "async_input"
	KindGuardedInput PortKind = "guarded_input"
	KindInvalid      PortKind = ""
)

const validKindsDisplay = "[output sync_input async_input guarded_input]"

// ValidPortKinds lists every accepted kind, in declaration order.
func ValidPortKinds() []PortKind {
	return []PortKind{KindOutput, KindSyncInput, KindAsyncInput, KindGuardedInput}
}

// ValidPortKindsString renders ValidPortKinds for messages.
func ValidPortKindsString() string {
	return validKindsDisplay
}

// ParsePortKind returns the kind named by s, or KindInvalid and false.
func ParsePortKind(s string) (PortKind, bool) {
	for _, k := range ValidPortKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// Direction returns the direction implied by the kind. Every kind other
// than output is an input.
func (k PortKind) Direction() Direction {
	if k == KindOutput {
		return DirectionOutput
	}
	return DirectionInput
}
