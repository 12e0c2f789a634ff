package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disconnectedRows has a full shelf column at x=2 splitting the floor in two.
// Product 3 sits at (4,1), reachable only from the right-hand side.
var disconnectedRows = []string{
	"..#..",
	".P#.#",
	"..#..",
}

func TestNewTopology_FiveByFive_Layout(t *testing.T) {
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)

	want := "" +
		".....\n" +
		"..#..\n" +
		"..#..\n" +
		".P#..\n" +
		".....\n"
	assert.Equal(t, want, topo.String())
	assert.Equal(t, Point{X: 1, Y: 3}, topo.PickingStation())
	assert.Equal(t, 3, topo.NumProducts())

	// Products are numbered row-major over shelf cells.
	for id, want := range map[ProductID]Point{1: {2, 1}, 2: {2, 2}, 3: {2, 3}} {
		got, ok := topo.Location(id)
		require.True(t, ok, "product %d", id)
		assert.Equal(t, want, got, "product %d", id)
	}
}

func TestNewTopology_DefaultSize_ShelfColumnsAndCrossAisles(t *testing.T) {
	topo, err := NewTopology(20, 15)
	require.NoError(t, err)

	// Columns x=2,5,...,17 times rows 1..13 minus cross-aisles at y=4,8,12.
	assert.Equal(t, 6*10, topo.NumProducts())
	for _, y := range []int{0, 4, 8, 12, 14} {
		for x := 0; x < 20; x++ {
			assert.True(t, topo.IsWalkable(x, y), "row %d must be a cross-aisle, (%d,%d) is not walkable", y, x, y)
		}
	}
	p1, _ := topo.Location(1)
	p2, _ := topo.Location(2)
	assert.Equal(t, Point{X: 2, Y: 1}, p1)
	assert.Equal(t, Point{X: 5, Y: 1}, p2)
	assert.Equal(t, Point{X: 1, Y: 13}, topo.PickingStation())
}

func TestNewTopology_TooSmall_ReturnsInvalidLayout(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {1, 1}, {1, 5}, {-3, 4}} {
		_, err := NewTopology(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidLayout, "dims %v", dims)
	}
}

func TestTopology_Cell_OutOfBounds(t *testing.T) {
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)

	tests := []struct {
		x, y int
	}{{-1, 0}, {0, -1}, {5, 0}, {0, 5}, {100, 100}}
	for _, tt := range tests {
		_, err := topo.Cell(tt.x, tt.y)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Cell(%d,%d) error = %v, want ErrOutOfBounds", tt.x, tt.y, err)
		}
		assert.False(t, topo.IsWalkable(tt.x, tt.y))
	}

	c, err := topo.Cell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, CellPickingStation, c)
	c, err = topo.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, CellShelf, c)
	assert.False(t, topo.IsWalkable(2, 2))
}

func TestTopology_StorageLocations_AreDistinctShelfCells(t *testing.T) {
	topo, err := NewTopology(23, 17)
	require.NoError(t, err)

	seen := make(map[Point]ProductID)
	for id, p := range topo.StorageLocations() {
		c, err := topo.Cell(p.X, p.Y)
		require.NoError(t, err)
		assert.Equal(t, CellShelf, c, "product %d stored on %v", id, c)
		if other, dup := seen[p]; dup {
			t.Errorf("products %d and %d share cell %v", id, other, p)
		}
		seen[p] = id
	}
	assert.Len(t, seen, topo.NumProducts())
	assert.Len(t, topo.ProductIDs(), topo.NumProducts())

	_, ok := topo.Location(0)
	assert.False(t, ok)
	_, ok = topo.Location(ProductID(topo.NumProducts() + 1))
	assert.False(t, ok)
}

func TestTopology_Adjacency_OnlyWalkableInBounds(t *testing.T) {
	topo, err := NewTopology(14, 11)
	require.NoError(t, err)

	for _, p := range topo.WalkableCells() {
		for _, nb := range topo.Neighbors(p) {
			assert.True(t, topo.IsWalkable(nb.X, nb.Y), "neighbor %v of %v not walkable", nb, p)
			assert.Equal(t, 1, Manhattan(p, nb), "neighbor %v of %v not adjacent", nb, p)
		}
	}
	loc, _ := topo.Location(1)
	assert.Nil(t, topo.Neighbors(loc), "shelf cells have no adjacency entry")
}

func TestNewTopology_Connectivity_StationReachesEveryWalkableCell(t *testing.T) {
	sizes := [][2]int{{2, 2}, {5, 5}, {6, 9}, {7, 13}, {20, 15}, {31, 9}, {40, 40}}
	for _, sz := range sizes {
		topo, err := NewTopology(sz[0], sz[1])
		require.NoError(t, err)
		pf := NewPathFinder(topo)
		reached := pf.Reachable(topo.PickingStation())
		assert.Equal(t, topo.WalkableCells(), reached, "%dx%d: BFS from station must reach every walkable cell", sz[0], sz[1])
	}
}

func TestNewTopologyFromRows_RoundTrip(t *testing.T) {
	topo, err := NewTopology(11, 9)
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSuffix(topo.String(), "\n"), "\n")
	again, err := NewTopologyFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, topo.String(), again.String())
	assert.Equal(t, topo.StorageLocations(), again.StorageLocations())
	assert.Equal(t, topo.PickingStation(), again.PickingStation())
}

func TestNewTopologyFromRows_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"empty", nil},
		{"empty row", []string{""}},
		{"ragged", []string{"P..", ".."}},
		{"unknown glyph", []string{"P.x"}},
		{"no station", []string{"...", ".#."}},
		{"two stations", []string{"P.P"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopologyFromRows(tt.rows)
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

func TestNewTopology_NoWalkableCells(t *testing.T) {
	_, err := newTopology(2, 1, []Cell{CellShelf, CellShelf}, Point{})
	assert.ErrorIs(t, err, ErrNoWalkableCells)
}

func TestCell_String(t *testing.T) {
	assert.Equal(t, "aisle", CellAisle.String())
	assert.Equal(t, "shelf", CellShelf.String())
	assert.Equal(t, "picking_station", CellPickingStation.String())
}
