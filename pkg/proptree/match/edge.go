package match

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

type locatedEdge struct {
	parent, child predicate.Predicate
	role          string
	prior         float64
	exact         bool
	source        int
}

type locatedRoot struct {
	pred   predicate.Predicate
	prior  float64
	source int
}

// EdgeMatcher scores parent-child predicate pairs. An edge's coverage is
// attributed to the pattern child. Pattern roots are matched on their own
// only when the pattern has no edges at all.
type EdgeMatcher struct {
	coverage
	edges []locatedEdge
	roots []locatedRoot
}

// NewEdgeMatcher flattens pattern into located edges. Children are taken
// through conjunctions, so a list's members hang directly off the list's
// parent. A parent predicate that also occurs on the child contributes no
// edges for that child.
func NewEdgeMatcher(pattern []*propnode.Node, weights []float64, model *confusion.Model) (*EdgeMatcher, error) {
	cov, err := newCoverage(pattern, weights, model)
	if err != nil {
		return nil, err
	}
	m := &EdgeMatcher{coverage: cov}

	var extraRoots []*propnode.Node
	for i, parent := range m.pattern {
		for _, cr := range parent.ChildRolesThroughConjunctions() {
			j := propnode.Search(m.pattern[:i], cr.Child.ID())
			if j < 0 {
				continue
			}
			for _, pp := range parent.Predicates().Sorted() {
				commit := len(m.edges)
				abort := false
				for _, cp := range cr.Child.Predicates().Sorted() {
					if cp.Predicate == pp.Predicate {
						abort = true
						break
					}
					m.edges = append(m.edges, locatedEdge{
						parent: pp.Predicate,
						child:  cp.Predicate,
						role:   cr.Role,
						prior:  pp.Weight * cp.Weight,
						exact:  cr.Child.ExactRoleMatch(),
						source: j,
					})
				}
				if abort {
					m.edges = m.edges[:commit]
				}
			}
		}
		if !parent.HasPredicates() {
			m.weights[i] = 0
			extraRoots = append(extraRoots, parent.Children()...)
		}
	}

	if len(m.edges) == 0 {
		roots := append(propnode.EnumRootNodes(m.pattern), extraRoots...)
		for _, r := range roots {
			j := propnode.Search(m.pattern, r.ID())
			if j < 0 {
				continue
			}
			for _, rp := range r.Predicates().Sorted() {
				m.roots = append(m.roots, locatedRoot{pred: rp.Predicate, prior: rp.Weight, source: j})
			}
		}
	}

	referenced := make([]bool, len(m.pattern))
	for _, e := range m.edges {
		referenced[e.source] = true
	}
	for _, r := range m.roots {
		referenced[r.source] = true
	}
	for i := range m.valid {
		m.valid[i] = referenced[i]
	}

	sort.SliceStable(m.edges, func(a, b int) bool {
		ea, eb := m.edges[a], m.edges[b]
		if ea.parent.Symbol != eb.parent.Symbol {
			return ea.parent.Symbol < eb.parent.Symbol
		}
		return ea.child.Symbol < eb.child.Symbol
	})
	sort.SliceStable(m.roots, func(a, b int) bool { return m.roots[a].pred.Symbol < m.roots[b].pred.Symbol })
	return m, nil
}

func (m *EdgeMatcher) Kind() Kind { return KindEdge }

// NEdges returns the number of located edges.
func (m *EdgeMatcher) NEdges() int { return len(m.edges) }

// NRoots returns the number of located roots.
func (m *EdgeMatcher) NRoots() int { return len(m.roots) }

func (m *EdgeMatcher) edgeRange(parentSym, childSym string) []locatedEdge {
	less := func(e locatedEdge) bool {
		if e.parent.Symbol != parentSym {
			return e.parent.Symbol < parentSym
		}
		return e.child.Symbol < childSym
	}
	lo := sort.Search(len(m.edges), func(i int) bool { return !less(m.edges[i]) })
	hi := lo
	for hi < len(m.edges) && m.edges[hi].parent.Symbol == parentSym && m.edges[hi].child.Symbol == childSym {
		hi++
	}
	return m.edges[lo:hi]
}

func (m *EdgeMatcher) rootRange(sym string) []locatedRoot {
	lo := sort.Search(len(m.roots), func(i int) bool { return m.roots[i].pred.Symbol >= sym })
	hi := lo
	for hi < len(m.roots) && m.roots[hi].pred.Symbol == sym {
		hi++
	}
	return m.roots[lo:hi]
}

// CompareToTarget expects candidates to be a full enumeration: every child
// of a candidate is itself examined as a parent.
func (m *EdgeMatcher) CompareToTarget(candidates []*propnode.Node, multiplicative bool) float64 {
	m.reset()
	for _, parent := range candidates {
		if len(m.edges) > 0 {
			for _, cr := range parent.ChildRolesThroughConjunctions() {
				for pp, pw := range parent.Predicates() {
					for cp, cw := range cr.Child.Predicates() {
						for _, e := range m.edgeRange(pp.Symbol, cp.Symbol) {
							prob := m.typeProb(e.parent, pp) * m.typeProb(e.child, cp) *
								m.roleProb(e.role, cr.Role, e.exact) * pw * cw * e.prior
							m.record(e.source, prob, parent)
						}
					}
				}
			}
		}
		for cp, cw := range parent.Predicates() {
			for _, r := range m.rootRange(cp.Symbol) {
				m.record(r.source, m.typeProb(r.pred, cp)*cw*r.prior, parent)
			}
		}
	}
	return m.reduce(multiplicative)
}

func (m *EdgeMatcher) Print(w io.Writer) error {
	counts := make(map[string]int)
	for _, r := range m.roots {
		counts[r.pred.Symbol]++
	}
	for _, e := range m.edges {
		counts[fmt.Sprintf("%s <%s> %s", e.parent.Symbol, strings.Trim(e.role, "<>"), e.child.Symbol)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %d\n", k, counts[k])
	}
	_, err := io.WriteString(w, b.String())
	return err
}
