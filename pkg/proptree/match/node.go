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

type nodeEntry struct {
	pred   predicate.Predicate
	weight float64
	role   string
	exact  bool
	source int
}

// NodeMatcher is the bag-of-predicates matcher: each candidate node is
// compared with the pattern predicates sharing one of its symbols, without
// regard to tree structure. The score does not depend on the order of either
// node sequence.
type NodeMatcher struct {
	coverage
	entries []nodeEntry
}

// NewNodeMatcher compiles pattern into symbol-sorted entries. Pattern nodes
// without predicates cannot be covered and are marked invalid.
func NewNodeMatcher(pattern []*propnode.Node, weights []float64, model *confusion.Model) (*NodeMatcher, error) {
	cov, err := newCoverage(pattern, weights, model)
	if err != nil {
		return nil, err
	}
	m := &NodeMatcher{coverage: cov}
	for i, n := range m.pattern {
		if !n.HasPredicates() {
			m.valid[i] = false
			continue
		}
		roles := n.RolesPlayed()
		if len(roles) == 0 {
			roles = []string{""}
		}
		for _, wp := range n.Predicates().Sorted() {
			for _, r := range roles {
				m.entries = append(m.entries, nodeEntry{
					pred:   wp.Predicate,
					weight: wp.Weight,
					role:   r,
					exact:  n.ExactRoleMatch(),
					source: i,
				})
			}
		}
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].pred.Less(m.entries[j].pred)
	})
	return m, nil
}

func (m *NodeMatcher) Kind() Kind { return KindNode }

// NEntries returns the number of compiled (predicate, role) entries.
func (m *NodeMatcher) NEntries() int { return len(m.entries) }

// NthPredicateSymbol returns the symbol of the i'th entry in symbol order.
func (m *NodeMatcher) NthPredicateSymbol(i int) string { return m.entries[i].pred.Symbol }

// symbolRange returns the entries whose symbol equals sym.
func (m *NodeMatcher) symbolRange(sym string) []nodeEntry {
	lo := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].pred.Symbol >= sym })
	hi := lo
	for hi < len(m.entries) && m.entries[hi].pred.Symbol == sym {
		hi++
	}
	return m.entries[lo:hi]
}

func (m *NodeMatcher) CompareToTarget(candidates []*propnode.Node, multiplicative bool) float64 {
	m.reset()
	for _, c := range candidates {
		roles := c.RolesPlayed()
		for cp, cw := range c.Predicates() {
			for _, e := range m.symbolRange(cp.Symbol) {
				prob := e.weight * cw * m.typeProb(e.pred, cp) * m.bestRoleProb(e, roles)
				m.record(e.source, prob, c)
			}
		}
	}
	return m.reduce(multiplicative)
}

// bestRoleProb is the best role match over the roles the candidate plays.
// Either side playing no role is neutral.
func (m *NodeMatcher) bestRoleProb(e nodeEntry, candRoles []string) float64 {
	if e.role == "" || len(candRoles) == 0 {
		return 1
	}
	best := 0.0
	for _, r := range candRoles {
		best = max(best, m.roleProb(e.role, r, e.exact))
	}
	return best
}

func (m *NodeMatcher) Print(w io.Writer) error {
	var b strings.Builder
	for _, e := range m.entries {
		fmt.Fprintf(&b, "%s", e.pred)
		if e.role != "" {
			fmt.Fprintf(&b, " %s", e.role)
		}
		fmt.Fprintf(&b, " %.3f [%d]\n", e.weight, e.source)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
