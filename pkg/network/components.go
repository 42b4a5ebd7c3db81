package network

// disjointSet is a union-find over node indices with path halving and
// union by rank.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(u int) int {
	for ds.parent[u] != u {
		ds.parent[u] = ds.parent[ds.parent[u]]
		u = ds.parent[u]
	}
	return u
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	default:
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
}

// assignGroups labels every node with its connected component. Components
// are numbered 0..G-1 in order of their first node in input order, so the
// component containing node 0 is always group 0.
func assignGroups(n int, edges [][2]int) (groups []int, count int) {
	ds := newDisjointSet(n)
	for _, e := range edges {
		ds.union(e[0], e[1])
	}

	groups = make([]int, n)
	dense := make(map[int]int)
	for i := range n {
		root := ds.find(i)
		g, ok := dense[root]
		if !ok {
			g = len(dense)
			dense[root] = g
		}
		groups[i] = g
	}
	return groups, len(dense)
}
