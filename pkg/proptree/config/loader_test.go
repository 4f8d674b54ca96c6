package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/proptree/pkg/proptree/predicate"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load(context.Background())
	require.NoError(t, err)

	require.NotNil(t, comp.Model)
	assert.Greater(t, comp.Model.TypeProb(predicate.Name, predicate.Pron), 0.0)
	assert.Less(t, comp.Weights.Weight("be"), 1.0)
	require.NotNil(t, comp.Filter)
	assert.Equal(t, 0, comp.Filter.Len())
	assert.Nil(t, comp.Lexicon)
	assert.Nil(t, comp.Names)
}

func TestLoaderAllFiles(t *testing.T) {
	loader := &Loader{
		ConfusionPath: writeFile(t, "confusion.yaml", `types:
  - {source: NAME, target: DESC, p: 0.4}
roles:
  - {source: <sub>, target: <obj>, p: 0.1}
`),
		WeightsPath:  writeFile(t, "weights.yaml", "weights:\n  bank: 0.6\n"),
		StoplistPath: writeFile(t, "stoplist.yaml", "terms: [thing]\n"),
		LexiconPath: writeFile(t, "lexicon.yaml", `synonyms:
  - canonical: car
    variants: [automobile]
`),
		NamesPath: writeFile(t, "names.yaml", `names:
  - name: Bill Clinton
    equivalents:
      - {name: William Clinton, score: 0.9}
`),
	}

	comp, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.4, comp.Model.TypeProb(predicate.Name, predicate.Desc))
	assert.Equal(t, 0.6, comp.Weights.Weight("bank"))
	assert.False(t, comp.Filter.Valid("thing"))
	assert.True(t, comp.Lexicon.HasSynonyms("automobile"))
	assert.Equal(t, 1, comp.Names.Len())
}

func TestLoaderMissingFile(t *testing.T) {
	loader := &Loader{StoplistPath: filepath.Join(t.TempDir(), "nonexistent.yaml")}
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
