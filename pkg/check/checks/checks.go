// Package checks holds the topology checks shipped with the linter.
package checks

import (
	"github.com/SterlingPeet/fprime-extras/pkg/check"
)

// Diagnostic identifiers reported by the checks in this package.
const (
	IDArrayPortCollision        = "array-port-collision"
	IDDuplicateSourceConnection = "duplicate-source-connection"
	IDUnconnectedPort           = "unconnected-port"
)

// ArgPortIgnore is the extra argument of the unconnected port check.
const ArgPortIgnore = "port-ignore"

// All returns a new instance of every check, in report order.
func All() []check.Check {
	return []check.Check{
		&ArrayPortCollision{},
		&DuplicateSourceConnection{},
		&UnconnectedPort{},
	}
}

// Register adds every check to reg.
func Register(reg *check.Registry) {
	for _, c := range All() {
		reg.Register(c)
	}
}
