// Package unionfind implements a disjoint-set structure with path
// compression and union by rank.
//
// The resolution pipeline uses it to build connected components over
// auto-merge match pairs: transitivity (A-B merged, B-C merged implies A, B,
// C share a component) holds regardless of the order unions are applied.
package unionfind

// UnionFind tracks disjoint sets over the integers [0, n).
type UnionFind struct {
	parent []int
	rank   []int
}

// New creates n singleton sets.
func New(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Find returns the representative of x's set, compressing the path walked.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing a and b. Returns false if they were
// already in the same set.
func (uf *UnionFind) Union(a, b int) bool {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return false
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
	return true
}

// Same reports whether a and b are in the same set.
func (uf *UnionFind) Same(a, b int) bool {
	return uf.Find(a) == uf.Find(b)
}
