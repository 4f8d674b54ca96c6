// Package expand widens the predicate sets of freshly built nodes so that
// surface variation (acronyms, inflection, synonyms, alternative names,
// coreferent mentions) does not block a match. Expanders only add
// predicates; node.ClearExpansions undoes them.
package expand

import (
	"io"
	"log/slog"

	"github.com/cognicore/proptree/pkg/proptree/lexicon"
	"github.com/cognicore/proptree/pkg/proptree/namedb"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// Expander adds predicates to nodes built from doc. doc may be nil for
// expanders that do not need document context.
type Expander interface {
	Name() string
	Expand(doc *theory.Document, nodes []*propnode.Node)
}

// NameLookup returns alternative forms of a name.
type NameLookup interface {
	Lookup(name string) []namedb.Equivalent
}

// StageStats reports how many predicates one stage added.
type StageStats struct {
	Stage string
	Added int
}

// Pipeline applies expanders in order.
type Pipeline struct {
	stages []Expander
	log    *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(logger *slog.Logger, stages ...Expander) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{stages: stages, log: logger}
}

func (p *Pipeline) Name() string { return "pipeline" }

// Stages returns the stage names in application order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name()
	}
	return out
}

// Expand runs every stage.
func (p *Pipeline) Expand(doc *theory.Document, nodes []*propnode.Node) {
	p.Run(doc, nodes)
}

// Run runs every stage and reports what each added.
func (p *Pipeline) Run(doc *theory.Document, nodes []*propnode.Node) []StageStats {
	stats := make([]StageStats, 0, len(p.stages))
	for _, s := range p.stages {
		before := countPredicates(nodes)
		s.Expand(doc, nodes)
		added := countPredicates(nodes) - before
		stats = append(stats, StageStats{Stage: s.Name(), Added: added})
		p.log.Debug("expanded predicates", "stage", s.Name(), "nodes", len(nodes), "added", added)
	}
	return stats
}

func countPredicates(nodes []*propnode.Node) int {
	n := 0
	for _, node := range nodes {
		n += len(node.Predicates())
	}
	return n
}

// Options configures the standard pipelines.
type Options struct {
	StemWeight    float64
	SynonymWeight float64
	CorefWeight   float64
	NameMinScore  float64
	Lexicon       *lexicon.Lexicon
	Names         NameLookup
	Filter        *predicate.Filter
	Logger        *slog.Logger
}

// DefaultOptions returns the standard discounts.
func DefaultOptions() Options {
	return Options{
		StemWeight:    0.9,
		SynonymWeight: 0.8,
		CorefWeight:   0.7,
		NameMinScore:  0.5,
	}
}

// DocPipeline is applied to document forests: acronyms, stems and the
// nearest coreferent mention.
func DocPipeline(opts Options) *Pipeline {
	return NewPipeline(opts.Logger,
		Acronym{},
		Stem{Weight: opts.StemWeight},
		Coref{Weight: opts.CorefWeight, Filter: opts.Filter},
	)
}

// QueryPipeline is applied to patterns, which are short and benefit from
// wider expansion: acronyms, stems, equivalent names, synonyms and every
// coreferent mention.
func QueryPipeline(opts Options) *Pipeline {
	stages := []Expander{Acronym{}, Stem{Weight: opts.StemWeight}}
	if opts.Names != nil {
		stages = append(stages, Names{Dict: opts.Names, MinScore: opts.NameMinScore})
	}
	if opts.Lexicon != nil {
		stages = append(stages, Synonyms{Lexicon: opts.Lexicon, Weight: opts.SynonymWeight})
	}
	stages = append(stages, Coref{Weight: opts.CorefWeight, Aggressive: true, Filter: opts.Filter})
	return NewPipeline(opts.Logger, stages...)
}
