// Package check is the framework for checks that run over a linked
// topology.Model.
//
// Each Check declares the identifiers it can report, with their default
// severities, and any extra arguments it needs. Problems are collected in
// a Result; the Runner decides which checks run and which problems survive
// the configured exclusions and filters.
package check

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/bmatcuk/doublestar/v4"
)

// ArgSpec names an extra argument a check needs.
type ArgSpec struct {
	Name string
	Help string
}

// Check inspects a topology model.
type Check interface {
	// Name identifies the check in logs and listings.
	Name() string

	// Identifiers maps every identifier the check reports to its default severity.
	Identifiers() map[string]core.Severity

	// ExtraArgs lists arguments that must be supplied for the check to run.
	ExtraArgs() []ArgSpec

	// Run records problems found in m. args holds the supplied extra arguments.
	Run(ctx context.Context, res *Result, m *topology.Model, args map[string]string) error
}

// Problem is one finding of a check.
type Problem struct {
	Identifier string
	Message    string

	// Module locates the problem in the model, e.g. "Top.D.portX:2".
	Module string

	// Line is the source line when the check knows it, otherwise 0.
	Line int
}

// Description renders the problem as reported: the module then the message.
func (p Problem) Description() string {
	if p.Module == "" {
		return p.Message
	}
	return p.Module + " " + p.Message
}

// Result accumulates the problems of the checks run over one model.
type Result struct {
	check    Check
	problems []Problem
	errs     []error
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{}
}

// AddProblem records a problem for the running check. An identifier the
// check did not declare is recorded as an error instead.
func (r *Result) AddProblem(identifier, message, module string) {
	r.Add(Problem{Identifier: identifier, Message: message, Module: module})
}

// Add records p. See AddProblem.
func (r *Result) Add(p Problem) {
	if r.check != nil {
		if _, ok := r.check.Identifiers()[p.Identifier]; !ok {
			r.errs = append(r.errs, fmt.Errorf("check %s reported undeclared identifier %q", r.check.Name(), p.Identifier))
			return
		}
	}
	r.problems = append(r.problems, p)
}

// Problems returns every recorded problem in discovery order.
func (r *Result) Problems() []Problem {
	return slices.Clone(r.problems)
}

// Errors returns the errors recorded while checks ran.
func (r *Result) Errors() []error {
	return slices.Clone(r.errs)
}

// FilteredProblems returns the problems whose module and identifier match
// none of the doublestar patterns in filters. Module paths are matched
// with "." replaced by "/", so "Top/rateGroup*/**" selects every port of
// the rate group instances.
func (r *Result) FilteredProblems(filters []string) []Problem {
	if len(filters) == 0 {
		return r.Problems()
	}
	out := make([]Problem, 0, len(r.problems))
	for _, p := range r.problems {
		if !matchesAny(filters, p) {
			out = append(out, p)
		}
	}
	return out
}

func matchesAny(filters []string, p Problem) bool {
	module := strings.ReplaceAll(p.Module, ".", "/")
	for _, f := range filters {
		if f == p.Identifier || f == p.Module {
			return true
		}
		if ok, err := doublestar.Match(f, module); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(f, p.Identifier); err == nil && ok {
			return true
		}
	}
	return false
}
