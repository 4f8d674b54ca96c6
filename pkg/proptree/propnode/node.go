// Package propnode implements proposition-tree nodes. Nodes form a DAG: a node
// may be listed as a child by several parents. Every node lives in an Arena
// that assigns IDs in construction order, and a node can only reference
// children that already exist, so a child's ID is always smaller than its
// parent's.
package propnode

import (
	"fmt"
	"math"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
	"github.com/cognicore/proptree/pkg/proptree/predicate"
	"github.com/cognicore/proptree/pkg/proptree/theory"
)

// ID identifies a node within its arena.
type ID int

// Arena owns every node built for one document (or one pattern).
type Arena struct {
	docID string
	nodes []*Node
}

// NewArena creates an empty arena for the given document.
func NewArena(docID string) *Arena {
	return &Arena{docID: docID}
}

// DocumentID returns the document the arena belongs to.
func (a *Arena) DocumentID() string { return a.docID }

// Len returns the number of nodes built so far.
func (a *Arena) Len() int { return len(a.nodes) }

// Node returns the node with the given ID.
func (a *Arena) Node(id ID) (*Node, error) {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil, fmt.Errorf("node %d of %d: %w", id, len(a.nodes), internalerr.ErrOutOfRange)
	}
	return a.nodes[id], nil
}

// Nodes returns all nodes in ID order.
func (a *Arena) Nodes() []*Node {
	return append([]*Node(nil), a.nodes...)
}

// Span is an inclusive token range.
type Span struct {
	Start int
	End   int
}

// Spec describes a node to construct. Children must already belong to the
// arena. At least one of Proposition, Mention, SynNode, Span or Children must
// be provided.
type Spec struct {
	Sentence       int
	Predicates     predicate.Set
	Children       []*Node
	Roles          []string
	Proposition    *theory.Proposition
	Mention        *theory.Mention
	SynNode        *theory.SynNode
	Span           *Span
	ExactRoleMatch bool
}

// Node is a proposition-tree node. Structure is fixed at construction; only
// the extended predicate set changes afterwards, and it only grows until
// ClearExpansions resets it.
type Node struct {
	id       ID
	arena    *Arena
	sentence int

	base predicate.Set
	ext  predicate.Set

	children    []ID
	roles       []string
	parents     []ID
	rolesPlayed []string

	prop *theory.Proposition
	ment *theory.Mention
	syn  *theory.SynNode

	start, end         int
	headStart, headEnd int
	exactRoleMatch     bool
}

// ChildRole pairs a child with the role it plays under its parent.
type ChildRole struct {
	Child *Node
	Role  string
}

// NewNode validates spec, appends a node to the arena and links it to its
// children.
func (a *Arena) NewNode(spec Spec) (*Node, error) {
	if len(spec.Children) != len(spec.Roles) {
		return nil, fmt.Errorf("%d children but %d roles: %w", len(spec.Children), len(spec.Roles), internalerr.ErrInvalidNode)
	}
	for i, c := range spec.Children {
		if c == nil {
			return nil, fmt.Errorf("child %d is nil: %w", i, internalerr.ErrInvalidNode)
		}
		if c.arena != a {
			return nil, fmt.Errorf("child %d belongs to another arena: %w", i, internalerr.ErrInvalidNode)
		}
	}
	if spec.Proposition == nil && spec.Mention == nil && spec.SynNode == nil && spec.Span == nil && len(spec.Children) == 0 {
		return nil, fmt.Errorf("node without children, mention, proposition, syn-node or span: %w", internalerr.ErrInvalidNode)
	}

	n := &Node{
		id:             ID(len(a.nodes)),
		arena:          a,
		sentence:       spec.Sentence,
		prop:           spec.Proposition,
		ment:           spec.Mention,
		syn:            spec.SynNode,
		start:          math.MaxInt,
		end:            -1,
		headStart:      math.MaxInt,
		headEnd:        -1,
		exactRoleMatch: spec.ExactRoleMatch,
		roles:          append([]string(nil), spec.Roles...),
	}
	if spec.Predicates != nil {
		n.base = spec.Predicates.Clone()
	} else {
		n.base = predicate.Set{}
	}
	n.ext = n.base.Clone()

	n.children = make([]ID, len(spec.Children))
	for i, c := range spec.Children {
		n.children[i] = c.id
	}

	switch {
	case spec.Span != nil:
		n.start, n.end = spec.Span.Start, spec.Span.End
		n.headStart, n.headEnd = spec.Span.Start, spec.Span.End
	case n.prop != nil && n.prop.PredHead != nil:
		n.setSpan(n.prop.PredHead)
	case n.ment != nil && n.ment.Head() != nil:
		n.setSpan(n.ment.Head())
	case n.syn != nil:
		n.start, n.end = n.syn.Start, n.syn.End
		head := n.syn.HeadPreterm()
		n.headStart, n.headEnd = head.Start, head.End
	}

	// Unheaded nodes (lists, typically) take the extent of their children's heads.
	if n.headEnd < n.headStart {
		if len(spec.Children) == 0 {
			return nil, fmt.Errorf("unheaded node without children: %w", internalerr.ErrInvalidNode)
		}
		for _, c := range spec.Children {
			n.headStart = min(n.headStart, c.headStart)
			n.headEnd = max(n.headEnd, c.headEnd)
		}
	}

	for i, c := range spec.Children {
		c.addParent(n.id)
		n.start = min(n.start, c.start)
		n.end = max(n.end, c.end)
		c.addRolePlayed(spec.Roles[i])
	}

	a.nodes = append(a.nodes, n)
	return n, nil
}

func (n *Node) setSpan(s *theory.SynNode) {
	n.start, n.end = s.Start, s.End
	n.headStart, n.headEnd = s.Start, s.End
}

func (n *Node) addParent(id ID) {
	for _, p := range n.parents {
		if p == id {
			return
		}
	}
	n.parents = append(n.parents, id)
}

func (n *Node) addRolePlayed(role string) {
	for _, r := range n.rolesPlayed {
		if r == role {
			return
		}
	}
	n.rolesPlayed = append(n.rolesPlayed, role)
}

// ID returns the node's arena-assigned identifier.
func (n *Node) ID() ID { return n.id }

// Arena returns the owning arena.
func (n *Node) Arena() *Arena { return n.arena }

// DocumentID returns the owning document's identifier.
func (n *Node) DocumentID() string { return n.arena.docID }

// Sentence returns the sentence number the node was built from.
func (n *Node) Sentence() int { return n.sentence }

func (n *Node) Proposition() *theory.Proposition { return n.prop }
func (n *Node) Mention() *theory.Mention         { return n.ment }
func (n *Node) SynNode() *theory.SynNode         { return n.syn }

func (n *Node) StartToken() int     { return n.start }
func (n *Node) EndToken() int       { return n.end }
func (n *Node) HeadStartToken() int { return n.headStart }
func (n *Node) HeadEndToken() int   { return n.headEnd }

// Length is the token distance between the node's start and end.
func (n *Node) Length() int { return n.end - n.start }

// ExactRoleMatch reports whether matchers must compare this node's role exactly.
func (n *Node) ExactRoleMatch() bool { return n.exactRoleMatch }

// NChildren returns the number of direct children.
func (n *Node) NChildren() int { return len(n.children) }

// Child returns the i'th direct child.
func (n *Node) Child(i int) *Node { return n.arena.nodes[n.children[i]] }

// Children returns the direct children in construction order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	for i, id := range n.children {
		out[i] = n.arena.nodes[id]
	}
	return out
}

// Roles returns the roles of the direct children, parallel to Children.
func (n *Node) Roles() []string { return append([]string(nil), n.roles...) }

// Role returns the role of the i'th child.
func (n *Node) Role(i int) string { return n.roles[i] }

// ChildRoles returns the direct (child, role) pairs as stored.
func (n *Node) ChildRoles() []ChildRole {
	out := make([]ChildRole, len(n.children))
	for i, id := range n.children {
		out[i] = ChildRole{Child: n.arena.nodes[id], Role: n.roles[i]}
	}
	return out
}

// ChildRolesThroughConjunctions returns the child roles with predicate-less
// children (conjunctions and lists) replaced by their own children. Each
// replacement inherits the role the conjunction played under this node.
func (n *Node) ChildRolesThroughConjunctions() []ChildRole {
	result := n.ChildRoles()
	for {
		expanded := false
		next := make([]ChildRole, 0, len(result))
		for _, cr := range result {
			if cr.Child.HasPredicates() {
				next = append(next, cr)
				continue
			}
			expanded = true
			for _, gc := range cr.Child.ChildRoles() {
				next = append(next, ChildRole{Child: gc.Child, Role: cr.Role})
			}
		}
		result = next
		if !expanded {
			return result
		}
	}
}

// Parents returns every node listing this node as a child.
func (n *Node) Parents() []*Node {
	out := make([]*Node, len(n.parents))
	for i, id := range n.parents {
		out[i] = n.arena.nodes[id]
	}
	return out
}

// HasParent reports whether any node lists this node as a child.
func (n *Node) HasParent() bool { return len(n.parents) > 0 }

// Root follows first parents up to a node without parents.
func (n *Node) Root() *Node {
	cur := n
	for cur.HasParent() {
		cur = cur.arena.nodes[cur.parents[0]]
	}
	return cur
}

// RolesPlayed lists the distinct roles under which parents reference this node.
func (n *Node) RolesPlayed() []string { return append([]string(nil), n.rolesPlayed...) }

// RoleForChild returns the role under which child is listed.
func (n *Node) RoleForChild(child *Node) (string, error) {
	for i, id := range n.children {
		if id == child.id && child.arena == n.arena {
			return n.roles[i], nil
		}
	}
	return "", fmt.Errorf("node %d is not a child of %d: %w", child.id, n.id, internalerr.ErrNotFound)
}

// FirstChildOfRole returns the first child listed under role, or nil.
func (n *Node) FirstChildOfRole(role string) *Node {
	for i, r := range n.roles {
		if r == role {
			return n.Child(i)
		}
	}
	return nil
}

// TreeDepth returns the number of nodes on the longest downward path.
func (n *Node) TreeDepth() int {
	depth := 0
	for i := range n.children {
		depth = max(depth, n.Child(i).TreeDepth())
	}
	return depth + 1
}

// TreeSize counts nodes reachable from n, counting shared nodes once per path.
func (n *Node) TreeSize() int {
	size := 1
	for i := range n.children {
		size += n.Child(i).TreeSize()
	}
	return size
}

// Predicates returns the extended predicate set. The map must be treated as
// read-only; use AddPredicate to extend it.
func (n *Node) Predicates() predicate.Set { return n.ext }

// BasePredicates returns the predicates computed at construction. The map must
// be treated as read-only.
func (n *Node) BasePredicates() predicate.Set { return n.base }

// HasPredicates reports whether the extended set is non-empty.
func (n *Node) HasPredicates() bool { return len(n.ext) > 0 }

// RepresentativePredicate returns the highest-weight extended predicate.
// Equal weights are resolved by predicate order.
func (n *Node) RepresentativePredicate() (predicate.Predicate, bool) {
	best, ok := n.ext.Best()
	return best.Predicate, ok
}

// AddPredicate records p with weight w, keeping the larger weight if p is
// already present. It reports whether the extended set changed.
func (n *Node) AddPredicate(p predicate.Predicate, w float64) bool {
	return n.ext.Union(p, w)
}

// ClearExpansions restores the extended predicates to the base set.
func (n *Node) ClearExpansions() {
	n.ext = n.base.Clone()
}
