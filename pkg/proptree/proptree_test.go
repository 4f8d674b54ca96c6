package proptree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/proptree/pkg/proptree/config"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/match"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

const attackSentence = `
  - tokens: [John, attacked, the, bank]
    parse:
      - {tag: S, start: 0, end: 3, head: 1, children: [1, 3]}
      - {tag: NP, start: 0, end: 0, children: [2]}
      - {tag: NNP, start: 0, end: 0}
      - {tag: VP, start: 1, end: 3, head: 0, children: [4, 5]}
      - {tag: VBD, start: 1, end: 1}
      - {tag: NP, start: 2, end: 3, head: 1, children: [6, 7]}
      - {tag: DT, start: 2, end: 2}
      - {tag: NN, start: 3, end: 3}
    mentions:
      - {type: name, entity_type: PER, node: 1}
      - {type: desc, entity_type: ORG, node: 5}
    propositions:
      - {type: verb, pred: attack, head: 4, args: [{role: <sub>, mention: 0}, {role: <obj>, mention: 1}]}`

const newsDoc = `
id: news-1
sentences:` + attackSentence + `
  - tokens: [He, fled]
    parse:
      - {tag: S, start: 0, end: 1, head: 1, children: [1, 3]}
      - {tag: NP, start: 0, end: 0, children: [2]}
      - {tag: PRP, start: 0, end: 0}
      - {tag: VBD, start: 1, end: 1}
    mentions:
      - {type: pron, entity_type: PER, node: 1}
    propositions:
      - {type: verb, pred: flee, head: 3, args: [{role: <sub>, mention: 0}]}
entities:
  - {id: 0, type: PER, mentions: [{sentence: 0, mention: 0}, {sentence: 1, mention: 0}]}
`

const queryDoc = `
id: query-1
sentences:` + attackSentence + `
`

func decode(t *testing.T, src string) *theory.Document {
	t.Helper()
	doc, err := theory.Decode([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestScorePerSentence(t *testing.T) {
	for _, kind := range []match.Kind{match.KindNode, match.KindEdge, match.KindFull} {
		t.Run(kind.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Kind = kind
			engine := New(opts)

			f, err := engine.Forest(decode(t, newsDoc))
			require.NoError(t, err)
			p, err := engine.CompilePattern(decode(t, queryDoc))
			require.NoError(t, err)

			scores, err := engine.Score(p, f)
			require.NoError(t, err)
			require.Len(t, scores, 2)

			assert.InDelta(t, 1.0, scores[0].Score, 1e-9)
			assert.NotEmpty(t, scores[0].Explain)
			assert.Less(t, scores[1].Score, scores[0].Score)

			best := Best(scores, 1)
			require.Len(t, best, 1)
			assert.Equal(t, 0, best[0].Sentence)
		})
	}
}

func TestRootsOnlyAndMultiplicative(t *testing.T) {
	opts := DefaultOptions()
	opts.RootsOnly = true
	opts.Multiplicative = true
	engine := New(opts)

	m, err := engine.Matcher(mustPattern(t, engine))
	require.NoError(t, err)
	full, ok := m.(*match.FullMatcher)
	require.True(t, ok)
	assert.True(t, full.RootsOnly())

	f, err := engine.Forest(decode(t, newsDoc))
	require.NoError(t, err)
	scores, err := engine.Score(mustPattern(t, engine), f)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0].Score, 1e-9)
	assert.Equal(t, 0.0, scores[1].Score)
}

func mustPattern(t *testing.T, e *Engine) *Pattern {
	t.Helper()
	p, err := e.CompilePattern(decode(t, queryDoc))
	require.NoError(t, err)
	return p
}

func TestForestIsCached(t *testing.T) {
	engine := New(DefaultOptions())
	doc := decode(t, newsDoc)

	f1, err := engine.Forest(doc)
	require.NoError(t, err)
	f2, err := engine.Forest(doc)
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	f3, err := engine.Rebuild(doc)
	require.NoError(t, err)
	assert.NotEqual(t, f1.ID(), f3.ID())

	p1 := mustPattern(t, engine)
	p2 := mustPattern(t, engine)
	assert.NotEqual(t, p1.ID(), p2.ID())
}

func TestBaseForestLeavesCacheExpanded(t *testing.T) {
	engine := New(DefaultOptions())
	doc := decode(t, newsDoc)

	cached, err := engine.Forest(doc)
	require.NoError(t, err)
	base, err := engine.BaseForest(doc)
	require.NoError(t, err)
	assert.NotSame(t, cached, base)

	for _, n := range base.AllNodes() {
		assert.True(t, n.Predicates().Equal(n.BasePredicates()))
	}

	again, err := engine.Forest(doc)
	require.NoError(t, err)
	assert.Same(t, cached, again)
	expanded := false
	for _, n := range again.AllNodes() {
		if !n.Predicates().Equal(n.BasePredicates()) {
			expanded = true
		}
	}
	assert.True(t, expanded)
}

func TestWithComponents(t *testing.T) {
	comp, err := (&config.Loader{}).Load(context.Background())
	require.NoError(t, err)
	comp.Filter = predicate.NewFilter([]string{"bank"})

	engine := New(DefaultOptions().WithComponents(comp))
	p := mustPattern(t, engine)
	for _, n := range p.Nodes {
		for pred := range n.Predicates() {
			assert.NotEqual(t, "bank", pred.Symbol)
		}
	}
	assert.Len(t, p.Weights, len(p.Nodes))

	opts := DefaultOptions()
	assert.Equal(t, opts, opts.WithComponents(nil))
}

func TestScoreErrors(t *testing.T) {
	engine := New(DefaultOptions())
	_, err := engine.Score(nil, nil)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = engine.CompilePattern(&theory.Document{ID: "empty"})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = engine.CompilePattern(nil)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}
