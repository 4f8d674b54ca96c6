package predicate

import "strings"

// Weights maps predicate symbols to an empirical prior weight. Very common,
// uninformative symbols get weights below one.
type Weights struct {
	table map[string]float64
}

// NewWeights creates a weight table. Keys are matched case-insensitively.
func NewWeights(table map[string]float64) *Weights {
	t := make(map[string]float64, len(table))
	for k, v := range table {
		t[strings.ToLower(k)] = v
	}
	return &Weights{table: t}
}

// DefaultWeights discounts light verbs and a handful of high-frequency nouns.
func DefaultWeights() *Weights {
	return NewWeights(map[string]float64{
		"be":     0.2,
		"have":   0.3,
		"do":     0.3,
		"say":    0.5,
		"get":    0.4,
		"make":   0.5,
		"take":   0.5,
		"go":     0.5,
		"become": 0.4,
		"people": 0.5,
		"thing":  0.3,
		"time":   0.4,
		"year":   0.4,
		"way":    0.4,
	})
}

// Weight returns the prior for symbol, or 1.0 when the symbol is unknown or
// the table is nil.
func (w *Weights) Weight(symbol string) float64 {
	if w == nil {
		return 1.0
	}
	if v, ok := w.table[strings.ToLower(symbol)]; ok {
		return v
	}
	return 1.0
}

// Len returns the number of entries.
func (w *Weights) Len() int {
	if w == nil {
		return 0
	}
	return len(w.table)
}

// With returns a copy of w with table's entries added or overriding.
func (w *Weights) With(table map[string]float64) *Weights {
	merged := make(map[string]float64, w.Len()+len(table))
	if w != nil {
		for k, v := range w.table {
			merged[k] = v
		}
	}
	for k, v := range table {
		merged[k] = v
	}
	return NewWeights(merged)
}
