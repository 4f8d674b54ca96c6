package predicate

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareOrder(t *testing.T) {
	preds := []Predicate{
		New(Verb, "attack", true),
		New(Desc, "bomb", false),
		New(Verb, "attack", false),
		New(Desc, "attack", false),
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].Less(preds[j]) })

	want := []Predicate{
		New(Desc, "attack", false),
		New(Verb, "attack", false),
		New(Verb, "attack", true),
		New(Desc, "bomb", false),
	}
	assert.Equal(t, want, preds)
}

func TestCompareEquality(t *testing.T) {
	a := New(Verb, "attack", false)
	b := New(Verb, "attack", false)
	assert.Equal(t, 0, Compare(a, b))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, New(Verb, "attack", true))
}

func TestValid(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"attack", true},
		{"'s", false},
		{"'", false},
		{"’s", false},
		{"", false},
		{"  ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.symbol), "Valid(%q)", tt.symbol)
	}
}

func TestFilter(t *testing.T) {
	f := NewFilter([]string{"Thing"})
	assert.False(t, f.Valid("thing"))
	assert.False(t, f.Valid("'s"))
	assert.True(t, f.Valid("attack"))

	var nilFilter *Filter
	assert.True(t, nilFilter.Valid("thing"))
	assert.False(t, nilFilter.Valid("'s"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "new york", Normalize("  new   york "))
	assert.Equal(t, EmptySymbol, Normalize("   "))
	assert.Equal(t, EmptySymbol, Normalize(""))
}

func TestWeights(t *testing.T) {
	w := DefaultWeights()
	assert.Less(t, w.Weight("be"), 1.0)
	assert.Equal(t, w.Weight("BE"), w.Weight("be"))
	assert.Equal(t, 1.0, w.Weight("attack"))

	var nilWeights *Weights
	assert.Equal(t, 1.0, nilWeights.Weight("be"))

	merged := w.With(map[string]float64{"Bank": 0.7, "be": 0.1})
	assert.Equal(t, 0.7, merged.Weight("bank"))
	assert.Equal(t, 0.1, merged.Weight("be"))
	assert.Equal(t, 0.5, merged.Weight("say"))
	assert.Equal(t, 0.2, w.Weight("be"))
	assert.Equal(t, 1, nilWeights.With(map[string]float64{"x": 0.5}).Len())
}

func TestSetUnionKeepsMax(t *testing.T) {
	p := New(Desc, "car", false)
	s := Set{p: 0.5}

	assert.True(t, s.Union(p, 0.8))
	assert.Equal(t, 0.8, s[p])
	assert.False(t, s.Union(p, 0.3))
	assert.Equal(t, 0.8, s[p])
}

func TestSetBestTieBreak(t *testing.T) {
	s := Set{
		New(Desc, "zebra", false): 1.0,
		New(Desc, "apple", false): 1.0,
		New(Desc, "mango", false): 0.5,
	}
	for i := 0; i < 20; i++ {
		best, ok := s.Best()
		require.True(t, ok)
		assert.Equal(t, "apple", best.Predicate.Symbol)
	}

	_, ok := Set{}.Best()
	assert.False(t, ok)
}

func TestSetCloneIndependent(t *testing.T) {
	p := New(Desc, "car", false)
	s := Set{p: 1.0}
	c := s.Clone()
	c[New(Desc, "auto", false)] = 0.8

	assert.Len(t, s, 1)
	assert.True(t, s.Equal(Set{p: 1.0}))
	assert.False(t, s.Equal(c))
}
