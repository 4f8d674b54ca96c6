// Package confusion holds the probabilistic tables used by the matchers to
// discount near-miss alignments: how likely a pattern predicate of one type is
// to surface as another type in a document, and likewise for argument roles.
package confusion

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
)

type typePair struct {
	source, target predicate.Type
}

type rolePair struct {
	source, target string
}

// Model stores P(target|source) for predicate types and argument roles.
// Self-confusion is always 1.0 and absent pairs are 0. A Model is read-only
// after loading and safe for concurrent readers.
type Model struct {
	types map[typePair]float64
	roles map[rolePair]float64
}

// New returns a model containing only the identity entries.
func New() *Model {
	return &Model{
		types: make(map[typePair]float64),
		roles: make(map[rolePair]float64),
	}
}

// Default returns the built-in tables.
func Default() *Model {
	m := New()
	for _, e := range defaultTypes {
		if err := m.SetType(e.Source, e.Target, e.P); err != nil {
			panic(err)
		}
	}
	for _, e := range defaultRoles {
		if err := m.SetRole(e.Source, e.Target, e.P); err != nil {
			panic(err)
		}
	}
	return m
}

func checkProb(p float64) error {
	if p < 0 || p > 1 || p != p {
		return fmt.Errorf("probability %v outside [0,1]: %w", p, internalerr.ErrInvalidConfig)
	}
	return nil
}

// SetType records P(target|source) for predicate types.
func (m *Model) SetType(source, target predicate.Type, p float64) error {
	if err := checkProb(p); err != nil {
		return fmt.Errorf("type %s->%s: %w", source, target, err)
	}
	if !knownType(source) || !knownType(target) {
		return fmt.Errorf("type %s->%s: unknown predicate type: %w", source, target, internalerr.ErrInvalidConfig)
	}
	if source == target {
		if p != 1 {
			return fmt.Errorf("type %s self-confusion must be 1: %w", source, internalerr.ErrInvalidConfig)
		}
		return nil
	}
	m.types[typePair{source, target}] = p
	return nil
}

// SetRole records P(target|source) for argument roles.
func (m *Model) SetRole(source, target string, p float64) error {
	if err := checkProb(p); err != nil {
		return fmt.Errorf("role %s->%s: %w", source, target, err)
	}
	if source == "" || target == "" {
		return fmt.Errorf("empty role: %w", internalerr.ErrInvalidConfig)
	}
	if source == target {
		if p != 1 {
			return fmt.Errorf("role %s self-confusion must be 1: %w", source, internalerr.ErrInvalidConfig)
		}
		return nil
	}
	m.roles[rolePair{source, target}] = p
	return nil
}

func knownType(t predicate.Type) bool {
	for _, k := range predicate.Types {
		if k == t {
			return true
		}
	}
	return false
}

// TypeProb returns P(target|source). A nil model only knows the identity.
func (m *Model) TypeProb(source, target predicate.Type) float64 {
	if source == target {
		return 1
	}
	if m == nil {
		return 0
	}
	return m.types[typePair{source, target}]
}

// RoleProb returns P(target|source). Roots have no role, so an empty role on
// either side is neutral and yields 1.
func (m *Model) RoleProb(source, target string) float64 {
	if source == "" || target == "" || source == target {
		return 1
	}
	if m == nil {
		return 0
	}
	return m.roles[rolePair{source, target}]
}

// ExactRoleProb is RoleProb without confusion: equal or empty roles give 1,
// anything else 0.
func ExactRoleProb(source, target string) float64 {
	if source == "" || target == "" || source == target {
		return 1
	}
	return 0
}

// TypeEntry is one row of the type table.
type TypeEntry struct {
	Source predicate.Type `yaml:"source"`
	Target predicate.Type `yaml:"target"`
	P      float64        `yaml:"p"`
}

// RoleEntry is one row of the role table.
type RoleEntry struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	P      float64 `yaml:"p"`
}

// Types lists the non-identity type entries ordered by source then target.
func (m *Model) Types() []TypeEntry {
	out := make([]TypeEntry, 0, len(m.types))
	for k, p := range m.types {
		out = append(out, TypeEntry{Source: k.source, Target: k.target, P: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Roles lists the non-identity role entries ordered by source then target.
func (m *Model) Roles() []RoleEntry {
	out := make([]RoleEntry, 0, len(m.roles))
	for k, p := range m.roles {
		out = append(out, RoleEntry{Source: k.source, Target: k.target, P: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Tables is the YAML form of a model.
type Tables struct {
	Types []TypeEntry `yaml:"types"`
	Roles []RoleEntry `yaml:"roles"`
}

// Parse decodes YAML tables into a model. Only listed pairs are set; start
// from Default by setting inherit_defaults: true.
func Parse(data []byte) (*Model, error) {
	var doc struct {
		InheritDefaults bool `yaml:"inherit_defaults"`
		Tables          `yaml:",inline"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode confusion tables: %w", err)
	}
	m := New()
	if doc.InheritDefaults {
		m = Default()
	}
	for _, e := range doc.Types {
		if err := m.SetType(e.Source, e.Target, e.P); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Roles {
		if err := m.SetRole(e.Source, e.Target, e.P); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadYAML reads confusion tables from a YAML file.
func LoadYAML(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
