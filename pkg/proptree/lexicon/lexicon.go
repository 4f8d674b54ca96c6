// Package lexicon stores the vocabulary used to widen predicate symbols:
// synonym groups (car, automobile, auto) and weaker, graded relations
// (attack -> assault at 0.6).
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
)

// Lexicon maps symbols to their synonyms and related terms. Lookups are
// case-insensitive. A Lexicon is not safe for concurrent mutation; once
// loaded it may be read from many goroutines.
type Lexicon struct {
	// canonical -> group members, canonical first
	groups map[string][]string
	// member -> canonical
	reverse map[string]string
	// term -> graded relations
	related map[string][]Relation
}

// Relation is a directed, graded link between two terms.
type Relation struct {
	Term     string  `yaml:"term"`
	Strength float64 `yaml:"strength"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:  make(map[string][]string),
		reverse: make(map[string]string),
		related: make(map[string][]Relation),
	}
}

type fileFormat struct {
	Synonyms []struct {
		Canonical string   `yaml:"canonical"`
		Variants  []string `yaml:"variants"`
	} `yaml:"synonyms"`
	Related []struct {
		Term    string     `yaml:"term"`
		Related []Relation `yaml:"related"`
	} `yaml:"related"`
}

// LoadFromYAML reads a lexicon file.
//
//	synonyms:
//	  - canonical: car
//	    variants: [automobile, auto]
//	related:
//	  - term: attack
//	    related: [{term: assault, strength: 0.6}]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a lexicon from YAML.
func Parse(data []byte) (*Lexicon, error) {
	var cfg fileFormat
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}

	lex := New()
	for _, g := range cfg.Synonyms {
		if strings.TrimSpace(g.Canonical) == "" {
			return nil, fmt.Errorf("synonym group without canonical form: %w", internalerr.ErrInvalidConfig)
		}
		lex.AddSynonymGroup(g.Canonical, g.Variants)
	}
	for _, r := range cfg.Related {
		for _, rel := range r.Related {
			if rel.Strength <= 0 || rel.Strength > 1 {
				return nil, fmt.Errorf("relation %s -> %s strength %v: %w", r.Term, rel.Term, rel.Strength, internalerr.ErrInvalidConfig)
			}
			lex.AddRelated(r.Term, rel)
		}
	}
	return lex, nil
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AddSynonymGroup registers canonical and its variants as one group,
// replacing any earlier group with the same canonical form.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = key(canonical)
	for _, old := range l.groups[canonical] {
		delete(l.reverse, old)
	}

	members := []string{canonical}
	seen := map[string]bool{canonical: true}
	for _, v := range variants {
		v = key(v)
		if v != "" && !seen[v] {
			members = append(members, v)
			seen[v] = true
		}
	}
	l.groups[canonical] = members
	for _, m := range members {
		l.reverse[m] = canonical
	}
}

// Canonical returns the canonical form of term, or term itself when it is
// not in any group.
func (l *Lexicon) Canonical(term string) string {
	term = key(term)
	if c, ok := l.reverse[term]; ok {
		return c
	}
	return term
}

// Synonyms returns the other members of term's group, without term itself.
func (l *Lexicon) Synonyms(term string) []string {
	if l == nil {
		return nil
	}
	term = key(term)
	c, ok := l.reverse[term]
	if !ok {
		return nil
	}
	var out []string
	for _, m := range l.groups[c] {
		if m != term {
			out = append(out, m)
		}
	}
	return out
}

// HasSynonyms reports whether term belongs to a group.
func (l *Lexicon) HasSynonyms(term string) bool {
	_, ok := l.reverse[key(term)]
	return ok
}

// AddRelated records a graded relation from term. A repeated target keeps the
// stronger relation.
func (l *Lexicon) AddRelated(term string, rel Relation) {
	term = key(term)
	rel.Term = key(rel.Term)
	if rel.Term == "" || rel.Term == term {
		return
	}
	rels := l.related[term]
	for i, r := range rels {
		if r.Term == rel.Term {
			if rel.Strength > r.Strength {
				rels[i] = rel
			}
			return
		}
	}
	l.related[term] = append(rels, rel)
}

// Related returns the relations from term, strongest first.
func (l *Lexicon) Related(term string) []Relation {
	if l == nil {
		return nil
	}
	rels := append([]Relation(nil), l.related[key(term)]...)
	sort.SliceStable(rels, func(i, j int) bool { return rels[i].Strength > rels[j].Strength })
	return rels
}

// Terms lists the terms with at least one relation, sorted.
func (l *Lexicon) Terms() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.related))
	for t := range l.related {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Stats summarizes the lexicon contents.
type Stats struct {
	SynonymGroups int
	TotalMembers  int
	RelatedTerms  int
	Relations     int
}

// Stats returns counts of groups and relations.
func (l *Lexicon) Stats() Stats {
	var s Stats
	s.SynonymGroups = len(l.groups)
	for _, g := range l.groups {
		s.TotalMembers += len(g)
	}
	s.RelatedTerms = len(l.related)
	for _, r := range l.related {
		s.Relations += len(r)
	}
	return s
}
