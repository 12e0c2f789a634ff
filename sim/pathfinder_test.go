package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFinder_NearestWalkable(t *testing.T) {
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"walkable cell is returned unchanged", Point{1, 3}, Point{1, 3}},
		// (2,1) has (2,0), (1,1), (3,1) at distance 1; (2,0) comes first in scan order.
		{"shelf snaps to first cell in scan order", Point{2, 1}, Point{2, 0}},
		{"middle shelf snaps left", Point{2, 2}, Point{1, 2}},
		{"out of bounds snaps onto grid", Point{-3, 0}, Point{0, 0}},
		{"far out of bounds", Point{9, 9}, Point{4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pf.NearestWalkable(tt.in))
		})
	}
}

func TestPathFinder_ShortestPath_SameCell(t *testing.T) {
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	assert.Equal(t, []Point{{1, 3}}, pf.ShortestPath(Point{1, 3}, Point{1, 3}))
	// Both endpoints snap to (2,0).
	assert.Equal(t, []Point{{2, 0}}, pf.ShortestPath(Point{2, 0}, Point{2, 1}))
}

func TestPathFinder_ShortestPath_ScenarioRoute(t *testing.T) {
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	loc, _ := topo.Location(1)
	path := pf.ShortestPath(topo.PickingStation(), loc)
	assert.Equal(t, []Point{{1, 3}, {1, 2}, {1, 1}, {1, 0}, {2, 0}}, path)
}

func TestPathFinder_ShortestPath_OptimalForAllPairs(t *testing.T) {
	// GIVEN a layout with shelves and cross-aisles
	topo, err := NewTopology(9, 10)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	// WHEN querying every pair of cells, shelves included
	var all []Point
	for y := 0; y < topo.Height(); y++ {
		for x := 0; x < topo.Width(); x++ {
			all = append(all, Point{x, y})
		}
	}
	for _, a := range all {
		for _, b := range all {
			path := pf.ShortestPath(a, b)
			want, ok := pf.Distance(a, b)
			require.True(t, ok)

			// THEN the path length matches the BFS hop count between the snapped endpoints
			require.Len(t, path, want+1, "path %v -> %v", a, b)
			assert.Equal(t, pf.NearestWalkable(a), path[0])
			assert.Equal(t, pf.NearestWalkable(b), path[len(path)-1])
			// AND every step is a move to an adjacent walkable cell
			for i := 1; i < len(path); i++ {
				require.Equal(t, 1, Manhattan(path[i-1], path[i]), "path %v -> %v jumps at %d", a, b, i)
				require.True(t, topo.IsWalkable(path[i].X, path[i].Y))
			}
		}
	}
}

func TestPathFinder_ShortestPath_Deterministic(t *testing.T) {
	topo, err := NewTopology(20, 15)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	first := pf.ShortestPath(Point{0, 0}, Point{19, 14})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, pf.ShortestPath(Point{0, 0}, Point{19, 14}))
	}
}

func TestPathFinder_Unreachable_ReturnsNil(t *testing.T) {
	topo, err := NewTopologyFromRows(disconnectedRows)
	require.NoError(t, err)
	pf := NewPathFinder(topo)

	assert.Nil(t, pf.ShortestPath(topo.PickingStation(), Point{4, 0}))
	_, ok := pf.Distance(topo.PickingStation(), Point{4, 0})
	assert.False(t, ok)

	// Within one component routing still works.
	assert.Len(t, pf.ShortestPath(Point{3, 0}, Point{4, 2}), 4)
}
