// Package corpus gathers predicate statistics over built forests: how many
// sentences mention each symbol and which symbols occur together. The
// counts yield empirical predicate weights and related-term suggestions for
// the lexicon.
package corpus

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/proptree/pkg/proptree/forest"
	"github.com/cognicore/proptree/pkg/proptree/lexicon"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

// Pair is an ordered pair of symbols (A < B).
type Pair struct {
	A, B string
}

func newPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Counter maintains sentence frequencies and co-occurrence counts. Each
// sentence is one unit; a symbol counts once per sentence.
type Counter struct {
	n      int64
	df     map[string]int64
	pairs  map[Pair]int64
	filter *predicate.Filter
}

// NewCounter creates a counter. Symbols rejected by filter are ignored; a
// nil filter applies the built-in blacklist only.
func NewCounter(filter *predicate.Filter) *Counter {
	return &Counter{
		df:     make(map[string]int64),
		pairs:  make(map[Pair]int64),
		filter: filter,
	}
}

// AddForest counts every sentence of f using the nodes' base predicates.
func (c *Counter) AddForest(f *forest.DocForest) {
	for i := 0; i < f.NSentences(); i++ {
		roots, err := f.Sentence(i)
		if err != nil {
			continue
		}
		var symbols []string
		for _, n := range propnode.EnumAllNodes(roots) {
			for p := range n.BasePredicates() {
				symbols = append(symbols, p.Symbol)
			}
		}
		c.AddSymbols(symbols)
	}
}

// AddSymbols counts one unit containing symbols. Duplicates are collapsed
// and symbols are lowercased.
func (c *Counter) AddSymbols(symbols []string) {
	c.n++

	seen := make(map[string]struct{}, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToLower(s)
		if !c.filter.Valid(s) {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}

	for _, s := range unique {
		c.df[s]++
	}
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.pairs[newPair(unique[i], unique[j])]++
		}
	}
}

// TotalUnits returns the number of sentences counted.
func (c *Counter) TotalUnits() int64 { return c.n }

// DF returns the number of sentences containing symbol.
func (c *Counter) DF(symbol string) int64 { return c.df[strings.ToLower(symbol)] }

// PairCount returns the number of sentences containing both symbols.
func (c *Counter) PairCount(a, b string) int64 {
	return c.pairs[newPair(strings.ToLower(a), strings.ToLower(b))]
}

// NPMI returns the normalized pointwise mutual information of a and b in
// [-1,1], smoothed by one. Symbols that never co-occur get 0.
//
//	PMI(a,b) = log((N_ab + 1) * N / ((N_a + 1)(N_b + 1)))
//	NPMI(a,b) = PMI(a,b) / -log((N_ab + 1) / N)
func (c *Counter) NPMI(a, b string) float64 {
	nAB := c.PairCount(a, b)
	if c.n == 0 || nAB == 0 {
		return 0
	}
	nA, nB, n := float64(c.DF(a)), float64(c.DF(b)), float64(c.n)
	pmi := math.Log((float64(nAB) + 1) * n / ((nA + 1) * (nB + 1)))
	logPAB := math.Log((float64(nAB) + 1) / n)
	if logPAB >= 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, pmi / -logPAB))
}

// Weights returns an inverse-frequency prior for every symbol seen in at
// least two sentences:
//
//	w = log((N+1)/df) / log(N+1)
//
// clamped to [minWeight, 1]. Rare symbols approach 1; a symbol present in
// every sentence approaches 0.
func (c *Counter) Weights(minWeight float64) map[string]float64 {
	out := make(map[string]float64)
	if c.n < 2 {
		return out
	}
	norm := math.Log(float64(c.n) + 1)
	for s, df := range c.df {
		if df < 2 {
			continue
		}
		w := math.Log((float64(c.n)+1)/float64(df)) / norm
		out[s] = math.Max(minWeight, math.Min(1, w))
	}
	return out
}

// Association is a related-term suggestion.
type Association struct {
	Pair    Pair
	NPMI    float64
	Support int64
}

// Related returns symbol pairs seen together in at least minSupport
// sentences with an NPMI of at least minNPMI, strongest first.
func (c *Counter) Related(minSupport int64, minNPMI float64) []Association {
	var out []Association
	for p, count := range c.pairs {
		if count < minSupport {
			continue
		}
		npmi := c.NPMI(p.A, p.B)
		if npmi < minNPMI || npmi <= 0 {
			continue
		}
		out = append(out, Association{Pair: p, NPMI: npmi, Support: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NPMI != out[j].NPMI {
			return out[i].NPMI > out[j].NPMI
		}
		if out[i].Pair.A != out[j].Pair.A {
			return out[i].Pair.A < out[j].Pair.A
		}
		return out[i].Pair.B < out[j].Pair.B
	})
	return out
}

// AddToLexicon records each association in both directions with its NPMI
// as strength.
func AddToLexicon(lex *lexicon.Lexicon, assocs []Association) {
	for _, a := range assocs {
		lex.AddRelated(a.Pair.A, lexicon.Relation{Term: a.Pair.B, Strength: a.NPMI})
		lex.AddRelated(a.Pair.B, lexicon.Relation{Term: a.Pair.A, Strength: a.NPMI})
	}
}
