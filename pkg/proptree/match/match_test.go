package match

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

func pset(t predicate.Type, sym string) predicate.Set {
	return predicate.Set{predicate.New(t, sym, false): 1.0}
}

func leaf(t *testing.T, a *propnode.Arena, tok int, preds predicate.Set) *propnode.Node {
	t.Helper()
	n, err := a.NewNode(propnode.Spec{Predicates: preds, Span: &propnode.Span{Start: tok, End: tok}})
	require.NoError(t, err)
	return n
}

func inner(t *testing.T, a *propnode.Arena, preds predicate.Set, children []*propnode.Node, roles []string) *propnode.Node {
	t.Helper()
	n, err := a.NewNode(propnode.Spec{Predicates: preds, Children: children, Roles: roles, Span: &propnode.Span{Start: 1, End: 1}})
	require.NoError(t, err)
	return n
}

// attackTree builds "John attacked the bank"; the object is optional.
func attackTree(t *testing.T, withObject bool, subRole string) []*propnode.Node {
	t.Helper()
	a := propnode.NewArena("doc")
	john := leaf(t, a, 0, pset(predicate.Name, "John"))
	children := []*propnode.Node{john}
	roles := []string{subRole}
	if withObject {
		children = append(children, leaf(t, a, 3, pset(predicate.Desc, "bank")))
		roles = append(roles, "<obj>")
	}
	inner(t, a, pset(predicate.Verb, "attack"), children, roles)
	return a.Nodes()
}

func TestNodeMatcherPerNodeCoverage(t *testing.T) {
	pattern := attackTree(t, false, "<sub>")
	m, err := NewNodeMatcher(pattern, []float64{1, 0.5}, nil)
	require.NoError(t, err)

	score := m.CompareToTarget(attackTree(t, false, "<sub>"), false)
	assert.Equal(t, []float64{1, 0.5}, m.Covered())
	assert.InDelta(t, 0.75, score, 1e-9)
	for _, c := range m.Covering() {
		assert.NotNil(t, c)
	}
	assert.Equal(t, 2, m.NEntries())
	assert.Equal(t, "John", m.NthPredicateSymbol(0))
}

func TestNodeMatcherIsOrderInvariant(t *testing.T) {
	pattern := attackTree(t, true, "<sub>")
	m, err := NewNodeMatcher(pattern, nil, confusion.Default())
	require.NoError(t, err)

	cands := attackTree(t, false, "<obj>")
	forward := m.CompareToTarget(cands, false)

	reversed := []*propnode.Node{cands[1], cands[0]}
	assert.Equal(t, forward, m.CompareToTarget(reversed, false))
	// John as object instead of subject goes through the role table.
	assert.InDelta(t, 0.2, m.Covered()[0], 1e-9)
}

func TestNodeMatcherTypeConfusionAndNegation(t *testing.T) {
	pa := propnode.NewArena("p")
	leaf(t, pa, 0, pset(predicate.Name, "john"))
	pattern := pa.Nodes()

	ca := propnode.NewArena("c")
	leaf(t, ca, 0, pset(predicate.Pron, "john"))
	cands := ca.Nodes()

	m, err := NewNodeMatcher(pattern, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.CompareToTarget(cands, false))

	m, err = NewNodeMatcher(pattern, nil, confusion.Default())
	require.NoError(t, err)
	assert.InDelta(t, 0.6, m.CompareToTarget(cands, false), 1e-9)

	na := propnode.NewArena("n")
	leaf(t, na, 0, predicate.Set{predicate.New(predicate.Name, "john", true): 1})
	assert.Equal(t, 0.0, m.CompareToTarget(na.Nodes(), false))
}

func TestMultiplicativeReduction(t *testing.T) {
	pattern := attackTree(t, true, "<sub>")
	m, err := NewNodeMatcher(pattern, nil, nil)
	require.NoError(t, err)

	cands := attackTree(t, false, "<sub>")
	assert.InDelta(t, 2.0/3.0, m.CompareToTarget(cands, false), 1e-9)
	assert.Equal(t, 0.0, m.CompareToTarget(cands, true))
	assert.InDelta(t, 1.0, m.CompareToTarget(attackTree(t, true, "<sub>"), true), 1e-9)
}

func TestEdgeMatcherStructure(t *testing.T) {
	pattern := attackTree(t, false, "<sub>")
	m, err := NewEdgeMatcher(pattern, nil, confusion.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, m.NEdges())
	assert.Equal(t, 0, m.NRoots())
	// coverage is attributed to the child; the verb has no slot of its own
	assert.Equal(t, []bool{true, false}, m.Valid())

	assert.InDelta(t, 1.0, m.CompareToTarget(attackTree(t, true, "<sub>"), false), 1e-9)
	assert.Equal(t, "attack", m.Covering()[0].Predicates().Sorted()[0].Predicate.Symbol)

	assert.InDelta(t, 0.2, m.CompareToTarget(attackTree(t, false, "<obj>"), false), 1e-9)
}

func TestEdgeMatcherIgnoresIsolatedCandidates(t *testing.T) {
	pattern := attackTree(t, false, "<sub>")
	m, err := NewEdgeMatcher(pattern, nil, nil)
	require.NoError(t, err)

	a := propnode.NewArena("c")
	leaf(t, a, 0, pset(predicate.Name, "John"))
	leaf(t, a, 1, pset(predicate.Verb, "attack"))
	assert.Equal(t, 0.0, m.CompareToTarget(a.Nodes(), false))
}

func TestEdgeMatcherFallsBackToRoots(t *testing.T) {
	// A parent sharing its predicate with the child produces no edge.
	a := propnode.NewArena("p")
	x := leaf(t, a, 0, pset(predicate.Desc, "bank"))
	inner(t, a, pset(predicate.Desc, "bank"), []*propnode.Node{x}, []string{"<mod>"})

	m, err := NewEdgeMatcher(a.Nodes(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NEdges())
	assert.Equal(t, 1, m.NRoots())
	assert.Equal(t, []bool{false, true}, m.Valid())

	ca := propnode.NewArena("c")
	leaf(t, ca, 0, pset(predicate.Desc, "bank"))
	assert.InDelta(t, 1.0, m.CompareToTarget(ca.Nodes(), false), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))
	assert.Equal(t, "bank: 1\n", buf.String())
}

func TestFullMatcherIdenticalSingleNode(t *testing.T) {
	pa := propnode.NewArena("p")
	leaf(t, pa, 0, pset(predicate.Desc, "bank"))
	ca := propnode.NewArena("c")
	leaf(t, ca, 0, pset(predicate.Desc, "bank"))

	for _, rootsOnly := range []bool{false, true} {
		m, err := NewFullMatcher(pa.Nodes(), nil, nil, rootsOnly)
		require.NoError(t, err)
		assert.Equal(t, rootsOnly, m.RootsOnly())
		assert.InDelta(t, 1.0, m.CompareToTarget(ca.Nodes(), false), 1e-9)
	}
}

func TestFullMatcherPartialSubtree(t *testing.T) {
	pattern := attackTree(t, true, "<sub>")
	m, err := NewFullMatcher(pattern, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, m.Valid())

	// one of two children aligned: (1+1)/(1+2)
	assert.InDelta(t, 2.0/3.0, m.CompareToTarget(attackTree(t, false, "<sub>"), false), 1e-9)
	assert.InDelta(t, 1.0, m.CompareToTarget(attackTree(t, true, "<sub>"), false), 1e-9)

	roots, err := NewFullMatcher(pattern, nil, nil, true)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, roots.CompareToTarget(attackTree(t, false, "<sub>"), false), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))
	assert.Contains(t, buf.String(), "attack")
}

func TestScoresStayInRange(t *testing.T) {
	pattern := attackTree(t, true, "<sub>")
	targets := [][]*propnode.Node{
		nil,
		attackTree(t, false, "<sub>"),
		attackTree(t, true, "<obj>"),
		attackTree(t, true, "<sub>"),
	}
	for _, kind := range []Kind{KindNode, KindEdge, KindFull} {
		m, err := New(kind, pattern, []float64{0.3, 1, 0.7}, confusion.Default())
		require.NoError(t, err)
		assert.Equal(t, kind, m.Kind())
		for _, target := range targets {
			for _, mult := range []bool{false, true} {
				s := m.CompareToTarget(target, mult)
				assert.GreaterOrEqual(t, s, 0.0, "%s", kind)
				assert.LessOrEqual(t, s, 1.0, "%s", kind)
			}
		}
	}
}

func TestAssignPrefersGlobalOptimum(t *testing.T) {
	gain := [][]float64{
		{0.9, 0.8},
		{0.85, 0},
	}
	assert.InDelta(t, 1.65, assign(gain), 1e-9)
	assert.InDelta(t, 0.9, assignGreedy(gain), 1e-9)
	assert.Equal(t, 0.0, assign([][]float64{{}}))
}

func TestConstructorErrors(t *testing.T) {
	pattern := attackTree(t, false, "<sub>")
	tests := []struct {
		name    string
		pattern []*propnode.Node
		weights []float64
	}{
		{"unsorted", []*propnode.Node{pattern[1], pattern[0]}, nil},
		{"nil node", []*propnode.Node{nil}, nil},
		{"nil after node", []*propnode.Node{pattern[0], nil}, nil},
		{"weight count", pattern, []float64{1}},
		{"weight range", pattern, []float64{1, 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range []Kind{KindNode, KindEdge, KindFull} {
				_, err := New(kind, tt.pattern, tt.weights, nil)
				require.Error(t, err)
				assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
			}
		})
	}

	_, err := New(Kind(7), pattern, nil, nil)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("edge")
	require.NoError(t, err)
	assert.Equal(t, KindEdge, k)

	_, err = ParseKind("tree")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestNodeWeights(t *testing.T) {
	a := propnode.NewArena("doc")
	say := leaf(t, a, 0, pset(predicate.Verb, "say"))
	bank := leaf(t, a, 1, pset(predicate.Desc, "bank"))
	list := inner(t, a, nil, []*propnode.Node{say, bank}, []string{"<member>", "<member>"})

	w := NodeWeights([]*propnode.Node{say, bank, list}, predicate.DefaultWeights())
	assert.Equal(t, []float64{0.5, 1, 0}, w)
}
