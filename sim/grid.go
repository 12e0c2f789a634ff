// Defines the static warehouse layout: the cell grid, the picking station,
// product storage locations and the cached 4-neighbor adjacency used for path search.

package sim

import (
	"fmt"
	"strings"
)

// Point is a grid coordinate. X grows to the right, Y grows with the row index.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns |a.X-b.X| + |a.Y-b.Y|.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Cell is the content of a single grid cell.
type Cell uint8

const (
	CellAisle Cell = iota
	CellShelf
	CellPickingStation
)

func (c Cell) String() string {
	switch c {
	case CellAisle:
		return "aisle"
	case CellShelf:
		return "shelf"
	case CellPickingStation:
		return "picking_station"
	default:
		return fmt.Sprintf("cell(%d)", uint8(c))
	}
}

// glyph is the layout character used by NewTopologyFromRows and Topology.String.
func (c Cell) glyph() byte {
	switch c {
	case CellShelf:
		return '#'
	case CellPickingStation:
		return 'P'
	default:
		return '.'
	}
}

// ProductID identifies a stocked product. IDs start at 1.
type ProductID int

// neighborList is a fixed-capacity adjacency entry; a grid cell has at most 4 neighbors.
type neighborList struct {
	n   uint8
	pts [4]Point
}

// Neighbor expansion order. Path search results depend on it, so it is fixed.
var neighborOffsets = [4]Point{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Topology is the immutable warehouse layout.
// All per-cell data is stored in flat row-major slices indexed by y*width+x.
// A Topology is never mutated after construction and may be shared freely.
type Topology struct {
	width, height  int
	cells          []Cell
	adjacency      []neighborList
	walkable       []Point // walkable cells in row-major scan order
	pickingStation Point
	locations      []Point // locations[id-1] is the shelf cell storing product id
}

// NewTopology generates the default layout for a width x height warehouse.
//
// Shelf columns are placed at x = 2, 5, 8, ... (while x < width-2) spanning rows 1..height-2,
// leaving every fourth row (y%4 == 0) open as a cross-aisle. The picking station sits at
// (1, height-2). Products are numbered from 1 in row-major order over the shelf cells.
func NewTopology(width, height int) (*Topology, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d warehouse is too small (need at least 2x2)", ErrInvalidLayout, width, height)
	}
	cells := make([]Cell, width*height)
	for x := 2; x < width-2; x += 3 {
		for y := 1; y < height-1; y++ {
			if y%4 != 0 {
				cells[y*width+x] = CellShelf
			}
		}
	}
	station := Point{X: 1, Y: height - 2}
	cells[station.Y*width+station.X] = CellPickingStation
	return newTopology(width, height, cells, station)
}

// NewTopologyFromRows builds a layout from ASCII rows: '.' aisle, '#' shelf, 'P' picking station.
// Row 0 is y=0. Exactly one picking station is required and all rows must have equal length.
func NewTopologyFromRows(rows []string) (*Topology, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	width, height := len(rows[0]), len(rows)
	cells := make([]Cell, width*height)
	var station Point
	stations := 0
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalidLayout, y, len(row), width)
		}
		for x := 0; x < width; x++ {
			switch row[x] {
			case '.':
				cells[y*width+x] = CellAisle
			case '#':
				cells[y*width+x] = CellShelf
			case 'P':
				cells[y*width+x] = CellPickingStation
				station = Point{X: x, Y: y}
				stations++
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at (%d,%d)", ErrInvalidLayout, row[x], x, y)
			}
		}
	}
	if stations != 1 {
		return nil, fmt.Errorf("%w: want exactly one picking station, found %d", ErrInvalidLayout, stations)
	}
	return newTopology(width, height, cells, station)
}

func newTopology(width, height int, cells []Cell, station Point) (*Topology, error) {
	t := &Topology{
		width:          width,
		height:         height,
		cells:          cells,
		adjacency:      make([]neighborList, width*height),
		pickingStation: station,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch cells[y*width+x] {
			case CellShelf:
				t.locations = append(t.locations, Point{X: x, Y: y})
			default:
				t.walkable = append(t.walkable, Point{X: x, Y: y})
			}
		}
	}
	if len(t.walkable) == 0 {
		return nil, ErrNoWalkableCells
	}
	t.buildAdjacency()
	return t, nil
}

// buildAdjacency computes the neighbor list of every walkable cell. Called once.
func (t *Topology) buildAdjacency() {
	for _, p := range t.walkable {
		nl := &t.adjacency[t.index(p)]
		for _, d := range neighborOffsets {
			q := Point{X: p.X + d.X, Y: p.Y + d.Y}
			if t.IsWalkable(q.X, q.Y) {
				nl.pts[nl.n] = q
				nl.n++
			}
		}
	}
}

func (t *Topology) index(p Point) int {
	return p.Y*t.width + p.X
}

// Width returns the number of columns.
func (t *Topology) Width() int { return t.width }

// Height returns the number of rows.
func (t *Topology) Height() int { return t.height }

// InBounds reports whether (x, y) lies on the grid.
func (t *Topology) InBounds(x, y int) bool {
	return x >= 0 && x < t.width && y >= 0 && y < t.height
}

// Cell returns the content of (x, y), or ErrOutOfBounds.
func (t *Topology) Cell(x, y int) (Cell, error) {
	if !t.InBounds(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfBounds, x, y, t.width, t.height)
	}
	return t.cells[y*t.width+x], nil
}

// IsWalkable reports whether a worker may occupy (x, y). Out-of-bounds cells are not walkable.
func (t *Topology) IsWalkable(x, y int) bool {
	return t.InBounds(x, y) && t.cells[y*t.width+x] != CellShelf
}

// PickingStation returns the cell where orders are delivered.
func (t *Topology) PickingStation() Point { return t.pickingStation }

// NumProducts returns the number of stocked products (one per shelf cell).
func (t *Topology) NumProducts() int { return len(t.locations) }

// Location returns the shelf cell storing a product.
func (t *Topology) Location(id ProductID) (Point, bool) {
	if id < 1 || int(id) > len(t.locations) {
		return Point{}, false
	}
	return t.locations[id-1], true
}

// ProductIDs returns all product IDs in ascending order.
func (t *Topology) ProductIDs() []ProductID {
	ids := make([]ProductID, len(t.locations))
	for i := range ids {
		ids[i] = ProductID(i + 1)
	}
	return ids
}

// StorageLocations returns a copy of the product -> shelf cell mapping.
func (t *Topology) StorageLocations() map[ProductID]Point {
	m := make(map[ProductID]Point, len(t.locations))
	for i, p := range t.locations {
		m[ProductID(i+1)] = p
	}
	return m
}

// Neighbors returns the walkable 4-neighbors of a walkable cell, or nil.
// The returned slice aliases topology storage and must not be modified.
func (t *Topology) Neighbors(p Point) []Point {
	if !t.IsWalkable(p.X, p.Y) {
		return nil
	}
	nl := &t.adjacency[t.index(p)]
	return nl.pts[:nl.n]
}

// WalkableCells returns a copy of all walkable cells in row-major scan order.
func (t *Topology) WalkableCells() []Point {
	return append([]Point(nil), t.walkable...)
}

// String renders the layout using the same glyphs NewTopologyFromRows accepts.
func (t *Topology) String() string {
	var sb strings.Builder
	sb.Grow((t.width + 1) * t.height)
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			sb.WriteByte(t.cells[y*t.width+x].glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
