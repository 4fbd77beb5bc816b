// Package catalog reads and writes the plain-text exercise catalog and keeps
// the parsed rule sets available to concurrent readers.
package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claude/posecoach/internal/models"
)

// NormalizeName converts a human exercise name to its catalog key:
// "Left Arm Raise" -> "LEFT_ARM_RAISE".
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), " ", "_")
}

// DisplayName converts a catalog key to a human name:
// "LEFT_ARM_RAISE" -> "Left Arm Raise".
func DisplayName(key string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.ReplaceAll(key, "_", " ")))
}

// SpokenName is the lower-case form used inside spoken feedback.
func SpokenName(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", " "))
}

// Exercise is a named, ordered rule set.
type Exercise struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"display_name"`
	Rules       []models.PostureRule `json:"rules"`
}

// Registry maps canonical exercise names to their rules, remembering the
// order in which exercises were defined. A Registry is not modified after it
// has been published; use With to derive a changed copy.
type Registry struct {
	names []string
	rules map[string][]models.PostureRule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string][]models.PostureRule)}
}

// define registers an empty rule list under key, keeping the position of an
// earlier definition with the same key.
func (r *Registry) define(key string) {
	if _, ok := r.rules[key]; !ok {
		r.names = append(r.names, key)
	}
	r.rules[key] = []models.PostureRule{}
}

func (r *Registry) add(key string, rule models.PostureRule) {
	r.rules[key] = append(r.rules[key], rule)
}

// Rules returns the rules for an exercise, normalizing the name first.
// The returned slice must not be modified.
func (r *Registry) Rules(name string) ([]models.PostureRule, bool) {
	rules, ok := r.rules[NormalizeName(name)]
	return rules, ok
}

// Has reports whether the exercise is defined.
func (r *Registry) Has(name string) bool {
	_, ok := r.rules[NormalizeName(name)]
	return ok
}

// Names returns exercise keys in definition order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of exercises.
func (r *Registry) Len() int {
	return len(r.names)
}

// Exercises returns every exercise in definition order.
func (r *Registry) Exercises() []Exercise {
	out := make([]Exercise, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, Exercise{
			Name:        name,
			DisplayName: DisplayName(name),
			Rules:       slices.Clone(r.rules[name]),
		})
	}
	return out
}

// With returns a copy of the registry with the exercise set to rules.
func (r *Registry) With(name string, rules []models.PostureRule) *Registry {
	next := &Registry{
		names: slices.Clone(r.names),
		rules: make(map[string][]models.PostureRule, len(r.rules)+1),
	}
	for k, v := range r.rules {
		next.rules[k] = v
	}
	key := NormalizeName(name)
	if _, ok := next.rules[key]; !ok {
		next.names = append(next.names, key)
	}
	next.rules[key] = slices.Clone(rules)
	return next
}

// Equal reports whether both registries define the same exercises, in the
// same order, with equal rules.
func (r *Registry) Equal(o *Registry) bool {
	if r == nil || o == nil {
		return r == o
	}
	if !slices.Equal(r.names, o.names) {
		return false
	}
	for _, name := range r.names {
		if !slices.Equal(r.rules[name], o.rules[name]) {
			return false
		}
	}
	return true
}
