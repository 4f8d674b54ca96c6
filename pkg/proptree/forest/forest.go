// Package forest assembles the per-sentence proposition trees of a document
// into one forest sharing a single arena.
package forest

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/proptree/pkg/proptree/builder"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh, time-ordered identifier for a forest or pattern.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// DocForest holds the root nodes of every sentence of one document.
type DocForest struct {
	id        string
	doc       *theory.Document
	arena     *propnode.Arena
	sentences [][]*propnode.Node
}

// Build constructs the forest of every sentence in doc.
func Build(doc *theory.Document, opts builder.Options) (*DocForest, error) {
	if doc == nil {
		return nil, fmt.Errorf("build forest: %w", internalerr.ErrInvalidInput)
	}
	f := &DocForest{
		id:        NewID(),
		doc:       doc,
		arena:     propnode.NewArena(doc.ID),
		sentences: make([][]*propnode.Node, len(doc.Sentences)),
	}
	for i := range doc.Sentences {
		b, err := builder.New(doc, i, f.arena, opts)
		if err != nil {
			return nil, err
		}
		roots, err := b.FromSentence()
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		f.sentences[i] = roots
	}
	return f, nil
}

// ID returns the forest's unique identifier. Rebuilding a document yields a
// new ID.
func (f *DocForest) ID() string { return f.id }

// DocumentID returns the source document's identifier.
func (f *DocForest) DocumentID() string { return f.doc.ID }

// Document returns the analysis the forest was built from.
func (f *DocForest) Document() *theory.Document { return f.doc }

// Arena returns the arena owning every node of the forest.
func (f *DocForest) Arena() *propnode.Arena { return f.arena }

// NSentences returns the number of sentences.
func (f *DocForest) NSentences() int { return len(f.sentences) }

// Sentence returns the roots of sentence i.
func (f *DocForest) Sentence(i int) ([]*propnode.Node, error) {
	if i < 0 || i >= len(f.sentences) {
		return nil, fmt.Errorf("sentence %d of %d: %w", i, len(f.sentences), internalerr.ErrOutOfRange)
	}
	return f.sentences[i], nil
}

// Roots returns the roots of all sentences in sentence order.
func (f *DocForest) Roots() []*propnode.Node {
	var out []*propnode.Node
	for _, s := range f.sentences {
		out = append(out, s...)
	}
	return out
}

// AllNodes returns every node in the forest, sorted by ID.
func (f *DocForest) AllNodes() []*propnode.Node {
	return f.arena.Nodes()
}

// ClearExpansions resets every node's predicates to its base set.
func (f *DocForest) ClearExpansions() {
	for _, n := range f.arena.Nodes() {
		n.ClearExpansions()
	}
}
