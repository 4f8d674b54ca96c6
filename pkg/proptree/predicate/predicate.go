// Package predicate defines the atomic annotation carried by proposition-tree
// nodes: a (type, symbol, negation) triple with a total order.
package predicate

import (
	"cmp"
	"sort"
	"strings"
)

// Type classifies a predicate by the linguistic unit it was derived from.
type Type string

const (
	Name     Type = "NAME"
	Desc     Type = "DESC"
	Pron     Type = "PRON"
	Verb     Type = "VERB"
	Mod      Type = "MOD"
	Modal    Type = "MODAL"
	Particle Type = "PARTICLE"
	Adv      Type = "ADV"
)

// Types lists every known predicate type in a stable order.
var Types = []Type{Name, Desc, Pron, Verb, Mod, Modal, Particle, Adv}

// EmptySymbol replaces symbols that normalize to the empty string.
const EmptySymbol = "-empty-"

// Predicate is an immutable (type, symbol, negation) triple. It is a value
// type and may be used directly as a map key.
type Predicate struct {
	Type    Type
	Symbol  string
	Negated bool
}

// New creates a predicate.
func New(t Type, symbol string, negated bool) Predicate {
	return Predicate{Type: t, Symbol: symbol, Negated: negated}
}

// Compare orders predicates by symbol, then type, then negation (false first).
func Compare(a, b Predicate) int {
	if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
		return c
	}
	return cmp.Compare(boolRank(a.Negated), boolRank(b.Negated))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Less reports whether p sorts before q.
func (p Predicate) Less(q Predicate) bool {
	return Compare(p, q) < 0
}

func (p Predicate) String() string {
	var b strings.Builder
	if p.Negated {
		b.WriteString("!")
	}
	b.WriteString(p.Symbol)
	b.WriteString("-")
	b.WriteString(string(p.Type))
	return b.String()
}

// Normalize trims the symbol and collapses internal whitespace runs to a
// single space. Symbols that end up empty become EmptySymbol.
func Normalize(symbol string) string {
	s := strings.Join(strings.Fields(symbol), " ")
	if s == "" {
		return EmptySymbol
	}
	return s
}

// Weighted pairs a predicate with its weight.
type Weighted struct {
	Predicate Predicate
	Weight    float64
}

// Set is a weighted predicate set.
type Set map[Predicate]float64

// Union records p with weight w, keeping the larger weight when p is already
// present. It reports whether the set changed.
func (s Set) Union(p Predicate, w float64) bool {
	if old, ok := s[p]; ok && old >= w {
		return false
	}
	s[p] = w
	return true
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for p, w := range s {
		out[p] = w
	}
	return out
}

// Equal reports whether both sets hold the same predicates with the same weights.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for p, w := range s {
		if ow, ok := o[p]; !ok || ow != w {
			return false
		}
	}
	return true
}

// Sorted returns the entries ordered by predicate.
func (s Set) Sorted() []Weighted {
	out := make([]Weighted, 0, len(s))
	for p, w := range s {
		out = append(out, Weighted{Predicate: p, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Predicate.Less(out[j].Predicate)
	})
	return out
}

// Best returns the highest-weight entry. Ties go to the predicate that sorts
// first so the result does not depend on map iteration order.
func (s Set) Best() (Weighted, bool) {
	var best Weighted
	found := false
	for p, w := range s {
		if !found || w > best.Weight || (w == best.Weight && p.Less(best.Predicate)) {
			best = Weighted{Predicate: p, Weight: w}
			found = true
		}
	}
	return best, found
}
