package match

import (
	"io"
	"sort"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
	"github.com/cognicore/proptree/pkg/proptree/propnode"
)

// maxExactChildren bounds the pattern fan-out for which child alignment is
// solved exactly. Wider nodes fall back to a greedy assignment.
const maxExactChildren = 12

type nodePair struct {
	pattern, candidate *propnode.Node
}

// FullMatcher aligns pattern subtrees with candidate subtrees. A pair of
// nodes scores the best local predicate match scaled by how well the pattern
// children can be assigned, one to one, to the candidate children:
//
//	score = local * (1 + sum(aligned)) / (1 + k)
//
// where k is the number of pattern children. Only the pattern's subtree
// roots take part in the final score.
type FullMatcher struct {
	coverage
	rootsOnly bool
	memo      map[nodePair]float64
}

// NewFullMatcher builds a full-tree matcher. With rootsOnly set, children
// are ignored and a pair scores its local predicate match alone.
func NewFullMatcher(pattern []*propnode.Node, weights []float64, model *confusion.Model, rootsOnly bool) (*FullMatcher, error) {
	cov, err := newCoverage(pattern, weights, model)
	if err != nil {
		return nil, err
	}
	m := &FullMatcher{coverage: cov, rootsOnly: rootsOnly, memo: make(map[nodePair]float64)}
	for i := range m.valid {
		m.valid[i] = false
	}
	for _, r := range propnode.EnumRootNodes(m.pattern) {
		m.valid[propnode.Search(m.pattern, r.ID())] = true
	}
	return m, nil
}

func (m *FullMatcher) Kind() Kind { return KindFull }

// RootsOnly reports whether subtree alignment is disabled.
func (m *FullMatcher) RootsOnly() bool { return m.rootsOnly }

func (m *FullMatcher) CompareToTarget(candidates []*propnode.Node, multiplicative bool) float64 {
	m.reset()
	clear(m.memo)
	for i, p := range m.pattern {
		for _, c := range candidates {
			m.record(i, m.score(p, c), c)
		}
	}
	return m.reduce(multiplicative)
}

// local is the best same-symbol predicate match between two nodes. A
// pattern node without predicates matches anything.
func (m *FullMatcher) local(p, c *propnode.Node) float64 {
	if !p.HasPredicates() {
		return 1
	}
	best := 0.0
	cands := c.Predicates()
	for pp, pw := range p.Predicates() {
		for cp, cw := range cands {
			if cp.Symbol != pp.Symbol {
				continue
			}
			best = max(best, pw*cw*m.typeProb(pp, cp))
		}
	}
	return best
}

func (m *FullMatcher) score(p, c *propnode.Node) float64 {
	key := nodePair{p, c}
	if v, ok := m.memo[key]; ok {
		return v
	}
	v := m.local(p, c)
	if v > 0 && !m.rootsOnly {
		pcs := p.ChildRolesThroughConjunctions()
		if k := len(pcs); k > 0 {
			ccs := c.ChildRolesThroughConjunctions()
			gain := make([][]float64, k)
			for i, pc := range pcs {
				gain[i] = make([]float64, len(ccs))
				for j, cc := range ccs {
					rp := m.roleProb(pc.Role, cc.Role, pc.Child.ExactRoleMatch())
					if rp > 0 {
						gain[i][j] = rp * m.score(pc.Child, cc.Child)
					}
				}
			}
			v *= (1 + assign(gain)) / float64(1+k)
		}
	}
	v = clamp(v)
	m.memo[key] = v
	return v
}

// assign returns the largest total gain of a one-to-one assignment of rows
// (pattern children) to columns (candidate children). Rows may stay
// unassigned.
func assign(gain [][]float64) float64 {
	k := len(gain)
	if k == 0 || len(gain[0]) == 0 {
		return 0
	}
	if k > maxExactChildren {
		return assignGreedy(gain)
	}

	// dp[mask] is the best total with the rows in mask assigned to columns
	// seen so far.
	dp := make([]float64, 1<<k)
	next := make([]float64, 1<<k)
	for j := range gain[0] {
		copy(next, dp)
		for mask, base := range dp {
			for i := 0; i < k; i++ {
				if mask&(1<<i) != 0 || gain[i][j] <= 0 {
					continue
				}
				to := mask | 1<<i
				next[to] = max(next[to], base+gain[i][j])
			}
		}
		dp, next = next, dp
	}
	best := 0.0
	for _, v := range dp {
		best = max(best, v)
	}
	return best
}

func assignGreedy(gain [][]float64) float64 {
	type cell struct {
		i, j int
		v    float64
	}
	var cells []cell
	for i, row := range gain {
		for j, v := range row {
			if v > 0 {
				cells = append(cells, cell{i, j, v})
			}
		}
	}
	sort.Slice(cells, func(a, b int) bool { return cells[a].v > cells[b].v })

	rowUsed := make([]bool, len(gain))
	colUsed := make([]bool, len(gain[0]))
	total := 0.0
	for _, c := range cells {
		if rowUsed[c.i] || colUsed[c.j] {
			continue
		}
		rowUsed[c.i], colUsed[c.j] = true, true
		total += c.v
	}
	return total
}

func (m *FullMatcher) Print(w io.Writer) error {
	for _, r := range propnode.EnumRootNodes(m.pattern) {
		if err := r.CompactPrint(w, propnode.PrintOptions{Types: true}); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
