package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisjointSet(t *testing.T) {
	ds := newDisjointSet(5)
	ds.union(0, 1)
	ds.union(3, 4)
	ds.union(1, 0)

	assert.Equal(t, ds.find(0), ds.find(1))
	assert.Equal(t, ds.find(3), ds.find(4))
	assert.NotEqual(t, ds.find(0), ds.find(3))
	assert.Equal(t, 2, ds.find(2))
}

func TestAssignGroups(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		edges     [][2]int
		want      []int
		wantCount int
	}{
		{"no nodes", 0, nil, []int{}, 0},
		{"isolated", 3, nil, []int{0, 1, 2}, 3},
		{"one component", 3, [][2]int{{0, 1}, {1, 2}}, []int{0, 0, 0}, 1},
		{"input order numbering", 4, [][2]int{{3, 1}}, []int{0, 1, 2, 1}, 3},
		{"late merge", 5, [][2]int{{4, 3}, {2, 1}, {3, 2}}, []int{0, 1, 1, 1, 1}, 2},
		{"self loop", 2, [][2]int{{1, 1}}, []int{0, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := assignGroups(tt.n, tt.edges)
			require.Len(t, got, tt.n)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

// Components must not depend on the order links are listed in.
func TestAssignGroupsOrderIndependent(t *testing.T) {
	edges := [][2]int{{0, 5}, {5, 2}, {3, 4}, {6, 6}, {1, 3}}
	want, wantCount := assignGroups(7, edges)

	reversed := make([][2]int, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = [2]int{e[1], e[0]}
	}
	got, count := assignGroups(7, reversed)

	assert.Equal(t, want, got)
	assert.Equal(t, wantCount, count)
}
