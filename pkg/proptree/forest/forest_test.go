package forest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/proptree/pkg/proptree/builder"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

const twoSentences = `
id: news-1
sentences:
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
      - {type: verb, pred: attack, head: 4, args: [{role: <sub>, mention: 0}, {role: <obj>, mention: 1}]}
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

func loadDoc(t *testing.T) *theory.Document {
	t.Helper()
	doc, err := theory.Decode([]byte(twoSentences))
	require.NoError(t, err)
	return doc
}

func TestBuild(t *testing.T) {
	f, err := Build(loadDoc(t), builder.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "news-1", f.DocumentID())
	assert.NotEmpty(t, f.ID())
	assert.Equal(t, 2, f.NSentences())
	assert.Len(t, f.AllNodes(), 5)
	assert.Len(t, f.Roots(), 2)

	s1, err := f.Sentence(1)
	require.NoError(t, err)
	require.Len(t, s1, 1)
	assert.Equal(t, 1, s1[0].Sentence())
	assert.Equal(t, "news-1", s1[0].DocumentID())

	_, err = f.Sentence(2)
	assert.True(t, errors.Is(err, internalerr.ErrOutOfRange))
	_, err = Build(nil, builder.DefaultOptions())
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

type tagExpander struct{ calls int }

func (e *tagExpander) Expand(_ *theory.Document, nodes []*propnode.Node) {
	e.calls++
	for _, n := range nodes {
		n.AddPredicate(predicate.New(predicate.Desc, "tagged", false), 0.5)
	}
}

func TestCacheReusesForest(t *testing.T) {
	exp := &tagExpander{}
	c := NewCache(time.Minute, builder.DefaultOptions(), exp)
	doc := loadDoc(t)

	first, err := c.Get(doc, false)
	require.NoError(t, err)
	second, err := c.Get(doc, false)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, 1, c.Len())

	for _, n := range first.AllNodes() {
		assert.Contains(t, n.Predicates(), predicate.New(predicate.Desc, "tagged", false))
	}

	forced, err := c.Get(doc, true)
	require.NoError(t, err)
	assert.NotSame(t, first, forced)
	assert.NotEqual(t, first.ID(), forced.ID())
	assert.Equal(t, 2, exp.calls)

	got, err := c.Lookup("news-1")
	require.NoError(t, err)
	assert.Same(t, forced, got)

	c.Invalidate("news-1")
	_, err = c.Lookup("news-1")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))
}

func TestClearExpansions(t *testing.T) {
	c := NewCache(0, builder.DefaultOptions(), &tagExpander{})
	f, err := c.Get(loadDoc(t), false)
	require.NoError(t, err)

	f.ClearExpansions()
	for _, n := range f.AllNodes() {
		assert.True(t, n.Predicates().Equal(n.BasePredicates()))
	}
}

func TestCacheSeparatesDocumentsSharingAnID(t *testing.T) {
	c := NewCache(time.Minute, builder.DefaultOptions(), nil)
	docA := loadDoc(t)
	docB, err := theory.Decode([]byte(`
id: news-1
sentences:
  - tokens: [Bob]
    parse:
      - {tag: NP, start: 0, end: 0, children: [1]}
      - {tag: NNP, start: 0, end: 0}
    mentions:
      - {type: name, entity_type: PER, node: 0}
`))
	require.NoError(t, err)

	fa, err := c.Get(docA, false)
	require.NoError(t, err)
	fb, err := c.Get(docB, false)
	require.NoError(t, err)

	assert.NotSame(t, fa, fb)
	assert.Same(t, docB, fb.Document())
	assert.Equal(t, 1, fb.NSentences())

	again, err := c.Get(docB, false)
	require.NoError(t, err)
	assert.Same(t, fb, again)
}
