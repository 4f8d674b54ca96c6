// Package proptree turns resolved sentence analyses into proposition-tree
// forests and scores how well a pattern forest is matched by each sentence
// of a document.
package proptree

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/cognicore/proptree/pkg/proptree/builder"
	"github.com/cognicore/proptree/pkg/proptree/config"
	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/expand"
	"github.com/cognicore/proptree/pkg/proptree/forest"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/match"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Engine is the main matching facade
type Engine struct {
	opts  Options
	cache *forest.Cache
	query *expand.Pipeline
	log   *slog.Logger
}

// Options configures an Engine
type Options struct {
	Builder builder.Options
	Expand  expand.Options
	Model   *confusion.Model
	Weights *predicate.Weights
	Kind    match.Kind
	// RootsOnly restricts the full matcher to subtree roots.
	RootsOnly      bool
	Multiplicative bool
	CacheTTL       time.Duration
	Logger         *slog.Logger
}

// DefaultOptions returns the standard builder and expansion settings with
// the default confusion model, weights and the full matcher.
func DefaultOptions() Options {
	return Options{
		Builder: builder.DefaultOptions(),
		Expand:  expand.DefaultOptions(),
		Model:   confusion.Default(),
		Weights: predicate.DefaultWeights(),
		Kind:    match.KindFull,
	}
}

// WithComponents returns a copy of o using loaded configuration components.
// Nil components leave the corresponding setting untouched.
func (o Options) WithComponents(c *config.Components) Options {
	if c == nil {
		return o
	}
	if c.Model != nil {
		o.Model = c.Model
	}
	if c.Weights != nil {
		o.Weights = c.Weights
	}
	if c.Filter != nil {
		o.Builder.Filter = c.Filter
		o.Expand.Filter = c.Filter
	}
	if c.Lexicon != nil {
		o.Expand.Lexicon = c.Lexicon
	}
	if c.Names != nil {
		o.Expand.Names = c.Names
	}
	return o
}

// New creates an Engine. Document forests are built with the document
// expansion pipeline and cached by document ID.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Builder.Logger == nil {
		opts.Builder.Logger = opts.Logger
	}
	if opts.Expand.Logger == nil {
		opts.Expand.Logger = opts.Logger
	}
	return &Engine{
		opts:  opts,
		cache: forest.NewCache(opts.CacheTTL, opts.Builder, expand.DocPipeline(opts.Expand)),
		query: expand.QueryPipeline(opts.Expand),
		log:   opts.Logger,
	}
}

// Forest returns the expanded forest of doc, building it on first use. The
// forest is shared through the cache: callers must not clear its expansions
// or add predicates to it. Use BaseForest for an unexpanded copy.
func (e *Engine) Forest(doc *theory.Document) (*forest.DocForest, error) {
	return e.cache.Get(doc, false)
}

// BaseForest builds an unexpanded forest of doc outside the cache.
func (e *Engine) BaseForest(doc *theory.Document) (*forest.DocForest, error) {
	return forest.Build(doc, e.opts.Builder)
}

// Rebuild discards any cached forest of doc and builds a fresh one.
func (e *Engine) Rebuild(doc *theory.Document) (*forest.DocForest, error) {
	return e.cache.Get(doc, true)
}

// Pattern is a compiled query: an expanded forest plus one prior per node.
type Pattern struct {
	Forest  *forest.DocForest
	Nodes   []*propnode.Node
	Weights []float64
}

// ID returns the pattern's unique identifier.
func (p *Pattern) ID() string { return p.Forest.ID() }

// CompilePattern builds doc into a pattern forest and applies the wider
// query expansion pipeline. Patterns are never cached.
func (e *Engine) CompilePattern(doc *theory.Document) (*Pattern, error) {
	f, err := forest.Build(doc, e.opts.Builder)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	nodes := f.AllNodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("compile pattern %s: no nodes: %w", doc.ID, internalerr.ErrInvalidInput)
	}
	stats := e.query.Run(doc, nodes)
	e.log.Debug("compiled pattern", "document", doc.ID, "pattern", f.ID(), "nodes", len(nodes), "stages", len(stats))
	return &Pattern{
		Forest:  f,
		Nodes:   nodes,
		Weights: match.NodeWeights(nodes, e.opts.Weights),
	}, nil
}

// Matcher constructs a matcher of the configured kind for p.
func (e *Engine) Matcher(p *Pattern) (match.Matcher, error) {
	if e.opts.Kind == match.KindFull && e.opts.RootsOnly {
		return match.NewFullMatcher(p.Nodes, p.Weights, e.opts.Model, true)
	}
	return match.New(e.opts.Kind, p.Nodes, p.Weights, e.opts.Model)
}

// SentenceScore is the match of a pattern against one sentence.
type SentenceScore struct {
	Sentence int
	Score    float64
	Explain  []Alignment
}

// Alignment shows which candidate node covered a pattern node.
type Alignment struct {
	Pattern  string
	Covered  float64
	Covering string
}

// Score matches p against every sentence of f. Each sentence's candidates
// are all nodes reachable from its roots. Results keep sentence order.
func (e *Engine) Score(p *Pattern, f *forest.DocForest) ([]SentenceScore, error) {
	if p == nil || f == nil {
		return nil, fmt.Errorf("score: %w", internalerr.ErrInvalidInput)
	}
	m, err := e.Matcher(p)
	if err != nil {
		return nil, err
	}

	out := make([]SentenceScore, 0, f.NSentences())
	for i := 0; i < f.NSentences(); i++ {
		roots, err := f.Sentence(i)
		if err != nil {
			return nil, err
		}
		score := m.CompareToTarget(propnode.EnumAllNodes(roots), e.opts.Multiplicative)
		out = append(out, SentenceScore{Sentence: i, Score: score, Explain: explain(m)})
	}
	e.log.Debug("scored document",
		"pattern", p.ID(), "document", f.DocumentID(), "kind", m.Kind().String(), "sentences", len(out))
	return out, nil
}

func explain(m match.Matcher) []Alignment {
	var out []Alignment
	covering := m.Covering()
	for i, n := range m.Pattern() {
		if !m.Valid()[i] || covering[i] == nil {
			continue
		}
		out = append(out, Alignment{
			Pattern:  label(n),
			Covered:  m.Covered()[i],
			Covering: label(covering[i]),
		})
	}
	return out
}

func label(n *propnode.Node) string {
	if rep, ok := n.RepresentativePredicate(); ok {
		return rep.String()
	}
	return fmt.Sprintf("<node %d>", n.ID())
}

// Best returns the top k scores, highest first. Ties keep sentence order.
func Best(scores []SentenceScore, k int) []SentenceScore {
	sorted := append([]SentenceScore(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if k > 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
