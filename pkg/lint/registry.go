package lint

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
)

// Registry is the catalog of rules available to a process. It is filled
// once at startup and only read while files are linted.
type Registry struct {
	mu     sync.RWMutex
	rules  []Rule
	byID   map[string]Rule
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		byID:   make(map[string]Rule),
		logger: logger,
	}
}

// Register adds rule. A second rule with the same ID is ignored with a
// warning and Register returns false.
func (r *Registry) Register(rule Rule) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rule.ID()]; ok {
		r.logger.Warn("rule registered twice, ignoring duplicate", slog.String("rule", rule.ID()))
		return false
	}
	r.byID[rule.ID()] = rule
	r.rules = append(r.rules, rule)
	return true
}

// All returns, in registration order, every rule whose tags include all
// of the given tags. No tags returns every rule.
func (r *Registry) All(tags ...string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if hasTags(rule.Tags(), tags) {
			out = append(out, rule)
		}
	}
	return out
}

// ByID returns the rule with the given ID.
func (r *Registry) ByID(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byID[id]
	return rule, ok
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Infos returns metadata for every registered rule.
func (r *Registry) Infos() []core.RuleInfo {
	rules := r.All()
	infos := make([]core.RuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, Info(rule))
	}
	return infos
}

func hasTags(have, want []string) bool {
	for _, t := range want {
		if !slices.Contains(have, t) {
			return false
		}
	}
	return true
}

// Bind registers the XML classifier and every rule in reg at the hook
// point for its stage. Rules that take extra arguments are also bound to
// PointConfigArgs.
func Bind(h *Hooks, reg *Registry) error {
	if err := h.Register(PointFileTypeCheck, FileTypeClassifier(XMLClassifier)); err != nil {
		return err
	}
	for _, rule := range reg.All() {
		var point string
		switch rule.(type) {
		case RawFileRule:
			point = PointRawFileRules
		case TreeRule:
			point = PointDocumentModelRules
		case ModelRule:
			point = PointFprimeModelRules
		default:
			reg.logger.Warn("rule implements no stage, not bound", slog.String("rule", rule.ID()))
			continue
		}
		if err := h.Register(point, rule); err != nil {
			return err
		}
		if ap, ok := rule.(ArgsProvider); ok {
			if err := h.Register(PointConfigArgs, ap); err != nil {
				return err
			}
		}
	}
	return nil
}
