package check

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
)

// Registry is the catalog of topology checks.
type Registry struct {
	mu     sync.RWMutex
	checks []Check
	names  map[string]bool
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{names: make(map[string]bool), logger: logger}
}

// Register adds c. Registering a check with a name already present logs
// a warning and keeps the first.
func (r *Registry) Register(c Check) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[c.Name()] {
		r.logger.Warn("check registered twice, ignoring duplicate", slog.String("check", c.Name()))
		return false
	}
	r.names[c.Name()] = true
	r.checks = append(r.checks, c)
	return true
}

// All returns every check in registration order.
func (r *Registry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.checks)
}

// Checkers returns the checks that can still report something once the
// excluded identifiers are removed.
func (r *Registry) Checkers(excluded func(id string) bool) []Check {
	var out []Check
	for _, c := range r.All() {
		if excluded == nil {
			out = append(out, c)
			continue
		}
		for id := range c.Identifiers() {
			if !excluded(id) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// AllIdentifiers maps every declared identifier to its default severity.
func (r *Registry) AllIdentifiers() map[string]core.Severity {
	ids := make(map[string]core.Severity)
	for _, c := range r.All() {
		maps.Copy(ids, c.Identifiers())
	}
	return ids
}

// Owner returns the check that declares id.
func (r *Registry) Owner(id string) (Check, bool) {
	for _, c := range r.All() {
		if _, ok := c.Identifiers()[id]; ok {
			return c, true
		}
	}
	return nil, false
}

// Infos returns one entry per identifier, ordered by check registration
// then identifier.
func (r *Registry) Infos() []core.RuleInfo {
	var infos []core.RuleInfo
	for _, c := range r.All() {
		var args []string
		for _, a := range c.ExtraArgs() {
			args = append(args, a.Name)
		}
		for _, id := range slices.Sorted(maps.Keys(c.Identifiers())) {
			infos = append(infos, core.RuleInfo{
				ID:              id,
				Description:     describe(c),
				DefaultSeverity: c.Identifiers()[id],
				Stage:           core.StageModel,
				Check:           c.Name(),
				ExtraArgs:       args,
			})
		}
	}
	return infos
}

type describer interface {
	Description() string
}

func describe(c Check) string {
	if d, ok := c.(describer); ok {
		return d.Description()
	}
	return strings.ReplaceAll(c.Name(), "-", " ")
}

// ConfigurationError reports configuration that names identifiers no
// check declares.
type ConfigurationError struct {
	Unknown []string
}

func (e *ConfigurationError) Error() string {
	return "unknown diagnostic identifiers in configuration: " + strings.Join(e.Unknown, ", ")
}

// ValidateIdentifiers returns a *ConfigurationError listing the ids that
// are not known. known is consulted for each id.
func ValidateIdentifiers(ids []string, known func(id string) bool) error {
	var unknown []string
	for _, id := range ids {
		if !known(id) && !slices.Contains(unknown, id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return &ConfigurationError{Unknown: unknown}
	}
	return nil
}
