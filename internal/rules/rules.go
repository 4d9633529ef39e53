package rules

import (
	"fmt"
	"os"
	"sort"

	"github.com/ndmitriev/docsweep/internal/models"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive numeric bound for a field.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// RuleSet is the declarative rule set for one entity type. Rule sets live in
// version-controlled YAML; custom checks reference predicates registered in
// code so the rules themselves stay data.
//
// A rule set is immutable once resolved. A scan takes one snapshot and uses
// it throughout.
type RuleSet struct {
	EntityType string                      `yaml:"-" json:"entity_type"`
	Required   []string                    `yaml:"required" json:"required"`
	Types      map[string]models.FieldKind `yaml:"types" json:"types"`
	Allowed    map[string][]any            `yaml:"allowed" json:"allowed"`
	Ranges     map[string]Range            `yaml:"ranges" json:"ranges"`
	Defaults   map[string]any              `yaml:"defaults" json:"defaults"`
	Custom     map[string]string           `yaml:"custom" json:"custom"`

	predicates map[string]Predicate
}

// Default returns the configured default value for a field.
func (rs *RuleSet) Default(field string) (any, bool) {
	v, ok := rs.Defaults[field]
	return v, ok
}

// Predicate returns the resolved custom predicate for a field.
func (rs *RuleSet) Predicate(field string) (Predicate, bool) {
	p, ok := rs.predicates[field]
	return p, ok
}

// RequiredFields returns the required field names in declaration order.
func (rs *RuleSet) RequiredFields() []string {
	return rs.Required
}

// resolve checks the rule set for internal consistency and binds predicate
// names to registered predicates.
func (rs *RuleSet) resolve(entityType string) error {
	rs.EntityType = entityType

	for field, kind := range rs.Types {
		switch kind {
		case models.KindString, models.KindNumber, models.KindBoolean:
		default:
			return fmt.Errorf("rule set %q: field %q has unknown kind %q", entityType, field, kind)
		}
	}

	for field, r := range rs.Ranges {
		if r.Min > r.Max {
			return fmt.Errorf("rule set %q: field %q has min %v above max %v", entityType, field, r.Min, r.Max)
		}
	}

	rs.predicates = make(map[string]Predicate, len(rs.Custom))
	for field, name := range rs.Custom {
		p, ok := Lookup(name)
		if !ok {
			return fmt.Errorf("rule set %q: field %q references unregistered predicate %q", entityType, field, name)
		}
		rs.predicates[field] = p
	}

	return nil
}

// rulesFile is the on-disk shape of a rules document.
type rulesFile struct {
	Version  string              `yaml:"version"`
	Entities map[string]*RuleSet `yaml:"entities"`
}

// Registry holds the resolved rule sets keyed by entity type. It is built
// once at startup and read-only afterwards, which is what makes rule sets
// stable for the duration of a scan.
type Registry struct {
	sets map[string]*RuleSet
}

// NewRegistry returns a registry preloaded with the built-in rule sets.
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[string]*RuleSet)}
	users := builtinUsers()
	if err := users.resolve("users"); err != nil {
		// Built-in rules only reference built-in predicates; a resolution
		// failure here is a programming error.
		panic(err)
	}
	r.sets["users"] = users
	return r
}

// LoadFile merges rule sets from a YAML file into the registry, replacing
// any built-in set for the same entity type.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse rules file: %w", err)
	}

	for entityType, rs := range f.Entities {
		if rs == nil {
			return fmt.Errorf("rules file %s: entity %q has no rules", path, entityType)
		}
		if err := rs.resolve(entityType); err != nil {
			return err
		}
		r.sets[entityType] = rs
	}

	return nil
}

// Get returns the rule set for an entity type, or nil when none is
// configured. The validator treats nil as a reportable condition, not an
// error.
func (r *Registry) Get(entityType string) *RuleSet {
	return r.sets[entityType]
}

// EntityTypes returns the configured entity type names, sorted.
func (r *Registry) EntityTypes() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinUsers is the rule set for the one entity type modeled end to end.
func builtinUsers() *RuleSet {
	return &RuleSet{
		Required: []string{"name", "email", "status"},
		Types: map[string]models.FieldKind{
			"name":   models.KindString,
			"email":  models.KindString,
			"age":    models.KindNumber,
			"active": models.KindBoolean,
		},
		Allowed: map[string][]any{
			"role":   {"admin", "editor", "viewer"},
			"status": {"active", "inactive", "pending"},
			// plan has no default: a bad plan is irreparable and marks the
			// document for deletion.
			"plan": {"free", "pro", "enterprise"},
		},
		Ranges: map[string]Range{
			"age": {Min: 0, Max: 120},
		},
		Defaults: map[string]any{
			"email":  "missing@example.com",
			"role":   "viewer",
			"status": "active",
		},
		Custom: map[string]string{
			"email": "email_format",
		},
	}
}
