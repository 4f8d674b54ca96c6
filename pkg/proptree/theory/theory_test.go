package theory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
)

const sampleDoc = `
id: doc-1
sentences:
  - tokens: [John, attacked, the, bank]
    parse:
      - {tag: S, start: 0, end: 3, head: 1, children: [1, 3]}
      - {tag: NP, start: 0, end: 0, children: [2]}
      - {tag: NPP, start: 0, end: 0}
      - {tag: VP, start: 1, end: 3, head: 0, children: [4, 5]}
      - {tag: VBD, start: 1, end: 1}
      - {tag: NP, start: 2, end: 3, head: 1, children: [6, 7]}
      - {tag: DT, start: 2, end: 2}
      - {tag: NN, start: 3, end: 3}
    mentions:
      - {type: name, entity_type: PER, node: 1}
      - {type: desc, entity_type: ORG, node: 5}
    propositions:
      - type: verb
        pred: attack
        head: 4
        args:
          - {role: <sub>, mention: 0}
          - {role: <obj>, mention: 1}
entities:
  - {id: 0, type: PER, mentions: [{sentence: 0, mention: 0}]}
`

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Sentences, 1)

	s := doc.Sentences[0]
	assert.Equal(t, "S", s.Root.Tag)
	assert.Equal(t, "attacked", s.Root.HeadWord())
	assert.Equal(t, "bank", s.Mentions[1].Head().Word)
	assert.Equal(t, "the bank", s.Text(s.Mentions[1].Node))
	assert.True(t, s.Mentions[0].IsPerson())

	p := s.Propositions[0]
	assert.True(t, p.Type.IsVerb())
	assert.Equal(t, "attacked", p.PredHead.Word)
	require.Len(t, p.Args, 2)
	assert.Same(t, s.Mentions[1], p.Args[1].Mention)

	ent := doc.EntityByMention(MentionRef{Sentence: 0, Mention: 0})
	require.NotNil(t, ent)
	assert.Equal(t, "PER", ent.Type)
	assert.Nil(t, doc.EntityByMention(MentionRef{Sentence: 0, Mention: 1}))
}

func TestDecodeRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad child", `sentences: [{tokens: [a], parse: [{tag: S, children: [3]}]}]`},
		{"bad mention node", `sentences: [{tokens: [a], parse: [{tag: S}], mentions: [{type: name, node: 9}]}]`},
		{"bad mention type", `sentences: [{tokens: [a], parse: [{tag: S}], mentions: [{type: weird, node: 0}]}]`},
		{"mention parent self", `sentences: [{tokens: [a], parse: [{tag: S}], mentions: [{type: name, node: 0, parent: 0}]}]`},
		{"mention parent cycle", `sentences: [{tokens: [a], parse: [{tag: S}], mentions: [{type: name, node: 0, parent: 1}, {type: desc, node: 0, parent: 0}]}]`},
		{"parse cycle", `sentences: [{tokens: [a], parse: [{tag: S, children: [1]}, {tag: NP, children: [0]}]}]`},
		{"bad entity", `sentences: [{tokens: [a]}]
entities: [{id: 1, mentions: [{sentence: 0, mention: 4}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, internalerr.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMentionType(t *testing.T) {
	mt, ok := ParseMentionType("LIST")
	assert.True(t, ok)
	assert.Equal(t, MentionList, mt)
	assert.Equal(t, "list", mt.String())

	_, ok = ParseMentionType("bogus")
	assert.False(t, ok)
}

func TestLoadCorpus(t *testing.T) {
	lines := []string{
		`{"id": "a", "sentences": [{"tokens": ["Hi"], "parse": [{"tag": "S"}]}]}`,
		`{"sentences": [{"tokens": ["Bye"]}]}`,
		`{"sentences": [{"tokens": ["x"], "parse": [{"tag": "S", "children": [7]}]}]}`,
		``,
	}
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	docs, err := LoadCorpus(path, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, path+":2", docs[1].ID)
	assert.Equal(t, "S", docs[0].Sentences[0].Root.Tag)

	empty := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o644))
	_, err = LoadCorpus(empty, nil)
	assert.Error(t, err)
}
