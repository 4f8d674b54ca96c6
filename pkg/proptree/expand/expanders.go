package expand

import (
	"math"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"github.com/cognicore/proptree/pkg/proptree/builder"
	"github.com/cognicore/proptree/pkg/proptree/lexicon"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Acronym adds the period-free form of dotted acronyms: U.S. gains US at the
// same weight.
type Acronym struct{}

func (Acronym) Name() string { return "acronym" }

func (Acronym) Expand(_ *theory.Document, nodes []*propnode.Node) {
	for _, n := range nodes {
		for _, wp := range n.Predicates().Sorted() {
			if short, ok := stripAcronym(wp.Predicate.Symbol); ok {
				p := wp.Predicate
				p.Symbol = short
				n.AddPredicate(p, wp.Weight)
			}
		}
	}
}

func stripAcronym(symbol string) (string, bool) {
	if !strings.Contains(symbol, ".") {
		return "", false
	}
	short := strings.ReplaceAll(symbol, ".", "")
	letters := 0
	for _, r := range short {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return "", false
			}
			letters++
		}
	}
	if letters == 0 {
		return "", false
	}
	return short, true
}

// Stem adds the English Snowball stem of descriptor, verb and modifier
// symbols, discounted by Weight.
type Stem struct {
	Weight float64
}

func (Stem) Name() string { return "stem" }

func (s Stem) Expand(_ *theory.Document, nodes []*propnode.Node) {
	for _, n := range nodes {
		for _, wp := range n.Predicates().Sorted() {
			switch wp.Predicate.Type {
			case predicate.Desc, predicate.Verb, predicate.Mod:
			default:
				continue
			}
			stem, ok := stemSymbol(wp.Predicate.Symbol)
			if !ok {
				continue
			}
			p := wp.Predicate
			p.Symbol = stem
			n.AddPredicate(p, wp.Weight*s.Weight)
		}
	}
}

// stemSymbol stems every word of a possibly multi-word symbol.
func stemSymbol(symbol string) (string, bool) {
	words := strings.Fields(strings.ToLower(symbol))
	if len(words) == 0 {
		return "", false
	}
	for i, w := range words {
		st, err := snowball.Stem(w, "english", true)
		if err != nil || st == "" {
			return "", false
		}
		words[i] = st
	}
	stem := strings.Join(words, " ")
	if stem == symbol {
		return "", false
	}
	return stem, true
}

// Synonyms adds lexicon synonyms at Weight and graded relations at their
// strength, both scaled by the source predicate's weight.
type Synonyms struct {
	Lexicon *lexicon.Lexicon
	Weight  float64
}

func (Synonyms) Name() string { return "synonym" }

func (s Synonyms) Expand(_ *theory.Document, nodes []*propnode.Node) {
	if s.Lexicon == nil {
		return
	}
	for _, n := range nodes {
		for _, wp := range n.Predicates().Sorted() {
			switch wp.Predicate.Type {
			case predicate.Desc, predicate.Verb, predicate.Mod:
			default:
				continue
			}
			p := wp.Predicate
			for _, syn := range s.Lexicon.Synonyms(p.Symbol) {
				p.Symbol = syn
				n.AddPredicate(p, wp.Weight*s.Weight)
			}
			for _, rel := range s.Lexicon.Related(wp.Predicate.Symbol) {
				p.Symbol = rel.Term
				n.AddPredicate(p, wp.Weight*rel.Strength)
			}
		}
	}
}

// Names adds equivalent names whose score reaches MinScore. The new weight is
// the source weight times the equivalence score.
type Names struct {
	Dict     NameLookup
	MinScore float64
}

func (Names) Name() string { return "names" }

func (e Names) Expand(_ *theory.Document, nodes []*propnode.Node) {
	if e.Dict == nil {
		return
	}
	for _, n := range nodes {
		for _, wp := range n.Predicates().Sorted() {
			if wp.Predicate.Type != predicate.Name {
				continue
			}
			for _, eq := range e.Dict.Lookup(wp.Predicate.Symbol) {
				if eq.Score < e.MinScore {
					continue
				}
				p := wp.Predicate
				p.Symbol = eq.Name
				n.AddPredicate(p, wp.Weight*eq.Score)
			}
		}
	}
}

// Coref gives mention nodes the name and descriptor predicates of the other
// mentions of their entity, discounted by Weight. Aggressive takes every
// coreferent mention; otherwise only the nearest informative one, by
// sentence distance and then token distance.
type Coref struct {
	Weight     float64
	Aggressive bool
	Filter     *predicate.Filter
}

func (c Coref) Name() string {
	if c.Aggressive {
		return "coref-aggressive"
	}
	return "coref"
}

func (c Coref) Expand(doc *theory.Document, nodes []*propnode.Node) {
	if doc == nil {
		return
	}
	for _, n := range nodes {
		m := n.Mention()
		if m == nil {
			continue
		}
		self := theory.MentionRef{Sentence: n.Sentence(), Mention: m.Index}
		ent := doc.EntityByMention(self)
		if ent == nil {
			continue
		}

		var (
			best     predicate.Set
			bestDist [2]int
		)
		for _, ref := range ent.Mentions {
			if ref == self {
				continue
			}
			other, ok := doc.Mention(ref)
			if !ok {
				continue
			}
			preds := informative(builder.MentionPredicates(doc.Sentences[ref.Sentence], other, c.Filter))
			if len(preds) == 0 {
				continue
			}
			if c.Aggressive {
				addAll(n, preds, c.Weight)
				continue
			}
			dist := [2]int{abs(ref.Sentence - self.Sentence), tokenDistance(m, other)}
			if best == nil || dist[0] < bestDist[0] || (dist[0] == bestDist[0] && dist[1] < bestDist[1]) {
				best, bestDist = preds, dist
			}
		}
		if best != nil {
			addAll(n, best, c.Weight)
		}
	}
}

// informative drops pronoun predicates, which say nothing about identity.
func informative(preds predicate.Set) predicate.Set {
	for p := range preds {
		if p.Type == predicate.Pron {
			delete(preds, p)
		}
	}
	return preds
}

func addAll(n *propnode.Node, preds predicate.Set, weight float64) {
	for _, wp := range preds.Sorted() {
		n.AddPredicate(wp.Predicate, wp.Weight*weight)
	}
}

func tokenDistance(a, b *theory.Mention) int {
	ha, hb := a.Head(), b.Head()
	if ha == nil || hb == nil {
		return math.MaxInt
	}
	return abs(ha.Start - hb.Start)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
