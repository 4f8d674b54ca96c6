package propnode

import "sort"

// SortByID orders nodes by ID in place. Nodes are expected to share an arena.
func SortByID(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
}

// IsSortedByID reports whether nodes are in strictly increasing ID order.
func IsSortedByID(nodes []*Node) bool {
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].id >= nodes[i].id {
			return false
		}
	}
	return true
}

// Search returns the position of the node with the given ID in a sorted slice,
// or -1.
func Search(sorted []*Node, id ID) int {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i].id >= id })
	if i < len(sorted) && sorted[i].id == id {
		return i
	}
	return -1
}

// EnumAllNodes returns roots and every node reachable from them, without
// duplicates, sorted by ID.
func EnumAllNodes(roots []*Node) []*Node {
	seen := make(map[*Node]struct{}, len(roots)*3)
	all := make([]*Node, 0, len(roots)*3)
	for _, r := range roots {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			all = append(all, r)
		}
	}
	for i := 0; i < len(all); i++ {
		for _, c := range all[i].Children() {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				all = append(all, c)
			}
		}
	}
	SortByID(all)
	return all
}

// EnumRootNodes returns the rootmost nodes of the disjoint subtrees in a
// sorted node set: those not listed as a child of any other node in the set.
// The result keeps the input order.
func EnumRootNodes(sorted []*Node) []*Node {
	childIDs := make(map[ID]struct{})
	for _, n := range sorted {
		for _, c := range n.children {
			childIDs[c] = struct{}{}
		}
	}
	var roots []*Node
	for _, n := range sorted {
		if _, isChild := childIDs[n.id]; !isChild {
			roots = append(roots, n)
		}
	}
	return roots
}

// EnumNullParentNodes returns the nodes without any parent at all.
func EnumNullParentNodes(nodes []*Node) []*Node {
	var roots []*Node
	for _, n := range nodes {
		if !n.HasParent() {
			roots = append(roots, n)
		}
	}
	return roots
}

// CoveredHeadTokens adds the head tokens of n and all its descendants to tokens.
func CoveredHeadTokens(n *Node, tokens map[int]struct{}) {
	for t := n.headStart; t <= n.headEnd; t++ {
		tokens[t] = struct{}{}
	}
	for _, c := range n.Children() {
		CoveredHeadTokens(c, tokens)
	}
}

// EnumSpanRootNodes returns the disjoint-subtree roots of a sorted node set
// that are the longest covering root for at least one head token. The result
// is sorted by ID.
func EnumSpanRootNodes(sorted []*Node) []*Node {
	roots := EnumRootNodes(sorted)
	if len(roots) == 0 {
		return nil
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Length() > roots[j].Length() })

	covered := make(map[int]struct{})
	var kept []*Node
	for _, r := range roots {
		tokens := make(map[int]struct{})
		CoveredHeadTokens(r, tokens)
		fresh := false
		for t := range tokens {
			if _, ok := covered[t]; !ok {
				fresh = true
			}
			covered[t] = struct{}{}
		}
		if fresh {
			kept = append(kept, r)
		}
	}
	SortByID(kept)
	return kept
}
