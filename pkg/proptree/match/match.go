// Package match scores how well a compiled pattern forest is covered by a
// candidate node set. Three algorithms of increasing structural strictness
// share one coverage model: every pattern node records the best probability
// with which some candidate node covers it, and the per-node values are
// reduced to a single score in [0,1].
package match

import (
	"fmt"
	"io"
	"math"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

// Kind selects a matching algorithm.
type Kind int

const (
	// KindNode ignores structure and matches predicates one node at a time.
	KindNode Kind = iota
	// KindEdge matches parent-child predicate pairs.
	KindEdge
	// KindFull aligns whole subtrees recursively.
	KindFull
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindFull:
		return "full"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindNode, KindEdge, KindFull} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("match kind %q: %w", s, internalerr.ErrInvalidInput)
}

// Matcher is implemented by NodeMatcher, EdgeMatcher and FullMatcher.
type Matcher interface {
	Kind() Kind
	// CompareToTarget recomputes coverage against candidates and reduces it
	// to a score in [0,1]: the mean of the valid, positively weighted
	// coverage values, or their geometric mean when multiplicative is set.
	CompareToTarget(candidates []*propnode.Node, multiplicative bool) float64
	// Pattern returns the pattern nodes, sorted by ID.
	Pattern() []*propnode.Node
	// Covered returns the best coverage of each pattern node.
	Covered() []float64
	// Covering returns the candidate node that produced each coverage value,
	// or nil.
	Covering() []*propnode.Node
	// Valid reports which pattern nodes take part in the score.
	Valid() []bool
	Print(w io.Writer) error
}

// New constructs a matcher of the given kind. weights holds one prior per
// pattern node (nil means 1.0 everywhere); model may be nil, in which case
// only identical types and roles match.
func New(kind Kind, pattern []*propnode.Node, weights []float64, model *confusion.Model) (Matcher, error) {
	switch kind {
	case KindNode:
		return NewNodeMatcher(pattern, weights, model)
	case KindEdge:
		return NewEdgeMatcher(pattern, weights, model)
	case KindFull:
		return NewFullMatcher(pattern, weights, model, false)
	}
	return nil, fmt.Errorf("match kind %d: %w", int(kind), internalerr.ErrInvalidInput)
}

// NodeWeights returns a prior per node: the empirical weight of its
// representative predicate's symbol. Nodes without predicates get 0.
func NodeWeights(nodes []*propnode.Node, weights *predicate.Weights) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		if rep, ok := n.RepresentativePredicate(); ok {
			out[i] = weights.Weight(rep.Symbol)
		}
	}
	return out
}

// coverage is the state shared by all matchers.
type coverage struct {
	pattern  []*propnode.Node
	weights  []float64
	model    *confusion.Model
	covered  []float64
	covering []*propnode.Node
	valid    []bool
}

func newCoverage(pattern []*propnode.Node, weights []float64, model *confusion.Model) (coverage, error) {
	for i, n := range pattern {
		if n == nil {
			return coverage{}, fmt.Errorf("pattern node %d is nil: %w", i, internalerr.ErrInvalidInput)
		}
	}
	if !propnode.IsSortedByID(pattern) {
		return coverage{}, fmt.Errorf("pattern nodes must be sorted by ID: %w", internalerr.ErrInvalidInput)
	}
	w := make([]float64, len(pattern))
	switch {
	case weights == nil:
		for i := range w {
			w[i] = 1
		}
	case len(weights) != len(pattern):
		return coverage{}, fmt.Errorf("%d weights for %d pattern nodes: %w", len(weights), len(pattern), internalerr.ErrInvalidInput)
	default:
		for i, v := range weights {
			if v < 0 || v > 1 || math.IsNaN(v) {
				return coverage{}, fmt.Errorf("weight %v of pattern node %d outside [0,1]: %w", v, i, internalerr.ErrInvalidInput)
			}
			w[i] = v
		}
	}
	c := coverage{
		pattern:  append([]*propnode.Node(nil), pattern...),
		weights:  w,
		model:    model,
		covered:  make([]float64, len(pattern)),
		covering: make([]*propnode.Node, len(pattern)),
		valid:    make([]bool, len(pattern)),
	}
	for i := range c.valid {
		c.valid[i] = true
	}
	return c, nil
}

func (c *coverage) Pattern() []*propnode.Node  { return c.pattern }
func (c *coverage) Covered() []float64         { return c.covered }
func (c *coverage) Covering() []*propnode.Node { return c.covering }
func (c *coverage) Valid() []bool              { return c.valid }

func (c *coverage) reset() {
	for i := range c.covered {
		c.covered[i] = 0
		c.covering[i] = nil
	}
}

// record keeps prob, scaled by the node's prior, if it beats the current
// coverage of pattern node i.
func (c *coverage) record(i int, prob float64, cand *propnode.Node) {
	prob = clamp(prob * c.weights[i])
	if prob > c.covered[i] {
		c.covered[i] = prob
		c.covering[i] = cand
	}
}

func (c *coverage) reduce(multiplicative bool) float64 {
	n := 0
	sum, logSum := 0.0, 0.0
	for i, v := range c.covered {
		if !c.valid[i] || c.weights[i] <= 0 {
			continue
		}
		n++
		sum += v
		if v <= 0 {
			logSum = math.Inf(-1)
		} else {
			logSum += math.Log(v)
		}
	}
	if n == 0 {
		return 0
	}
	if multiplicative {
		return clamp(math.Exp(logSum / float64(n)))
	}
	return clamp(sum / float64(n))
}

// typeProb is P(candidate type | pattern type); negation must agree.
func (c *coverage) typeProb(pat, cand predicate.Predicate) float64 {
	if pat.Negated != cand.Negated {
		return 0
	}
	return c.model.TypeProb(pat.Type, cand.Type)
}

func (c *coverage) roleProb(patRole, candRole string, exact bool) float64 {
	if exact {
		return confusion.ExactRoleProb(patRole, candRole)
	}
	return c.model.RoleProb(patRole, candRole)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
