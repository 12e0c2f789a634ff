package sim

import "container/heap"

// PathFinder answers shortest-path queries over a Topology's cached adjacency.
// It holds no per-query state and never mutates the topology.
type PathFinder struct {
	topo *Topology
}

// NewPathFinder returns a PathFinder over t.
func NewPathFinder(t *Topology) *PathFinder {
	return &PathFinder{topo: t}
}

// NearestWalkable returns the walkable cell closest to p by Manhattan distance.
// Ties go to the cell that comes first in row-major scan order.
// p itself is returned when it is walkable.
func (pf *PathFinder) NearestWalkable(p Point) Point {
	t := pf.topo
	if t.IsWalkable(p.X, p.Y) {
		return p
	}
	// Topology construction guarantees at least one walkable cell.
	best := t.walkable[0]
	bestDist := Manhattan(p, best)
	for _, w := range t.walkable[1:] {
		if d := Manhattan(p, w); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}

// ShortestPath returns a minimum-hop path between the walkable cells nearest to start and end,
// computed with A* under the Manhattan heuristic. The path includes both snapped endpoints,
// so a query whose endpoints snap to the same cell returns a single-cell path.
// Returns nil when no route exists.
func (pf *PathFinder) ShortestPath(start, end Point) []Point {
	from := pf.NearestWalkable(start)
	to := pf.NearestWalkable(end)
	if from == to {
		return []Point{from}
	}

	t := pf.topo
	n := t.width * t.height
	gScore := make([]int, n)
	for i := range gScore {
		gScore[i] = -1
	}
	cameFrom := make([]int, n)
	closed := make([]bool, n)

	open := &searchQueue{}
	var seq uint64
	fromIdx := t.index(from)
	gScore[fromIdx] = 0
	cameFrom[fromIdx] = -1
	heap.Push(open, searchNode{p: from, f: Manhattan(from, to), g: 0, seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(searchNode)
		ci := t.index(cur.p)
		if closed[ci] {
			continue
		}
		if cur.p == to {
			return pf.reconstruct(cameFrom, ci)
		}
		closed[ci] = true
		for _, nb := range t.Neighbors(cur.p) {
			ni := t.index(nb)
			if closed[ni] {
				continue
			}
			g := cur.g + 1
			if gScore[ni] >= 0 && g >= gScore[ni] {
				continue
			}
			gScore[ni] = g
			cameFrom[ni] = ci
			seq++
			heap.Push(open, searchNode{p: nb, f: g + Manhattan(nb, to), g: g, seq: seq})
		}
	}
	return nil
}

func (pf *PathFinder) reconstruct(cameFrom []int, last int) []Point {
	w := pf.topo.width
	var rev []Point
	for i := last; i >= 0; i = cameFrom[i] {
		rev = append(rev, Point{X: i % w, Y: i / w})
	}
	path := make([]Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// Distance returns the hop count between the walkable cells nearest to start and end
// using breadth-first search, and false when they are disconnected.
func (pf *PathFinder) Distance(start, end Point) (int, bool) {
	from := pf.NearestWalkable(start)
	to := pf.NearestWalkable(end)
	dist := pf.distancesFrom(from)
	d := dist[pf.topo.index(to)]
	return d, d >= 0
}

// Reachable returns every walkable cell connected to p (including the snapped p itself).
func (pf *PathFinder) Reachable(p Point) []Point {
	dist := pf.distancesFrom(pf.NearestWalkable(p))
	var out []Point
	for _, w := range pf.topo.walkable {
		if dist[pf.topo.index(w)] >= 0 {
			out = append(out, w)
		}
	}
	return out
}

// distancesFrom runs BFS from a walkable cell. Unreached cells hold -1.
func (pf *PathFinder) distancesFrom(from Point) []int {
	t := pf.topo
	dist := make([]int, t.width*t.height)
	for i := range dist {
		dist[i] = -1
	}
	dist[t.index(from)] = 0
	queue := []Point{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range t.Neighbors(cur) {
			if ni := t.index(nb); dist[ni] < 0 {
				dist[ni] = dist[t.index(cur)] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

type searchNode struct {
	p   Point
	f   int
	g   int
	seq uint64
}

// searchQueue implements heap.Interface ordered by f, then by larger g
// (prefer nodes closer to the goal), then by insertion sequence.
type searchQueue []searchNode

func (q searchQueue) Len() int { return len(q) }
func (q searchQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].g != q[j].g {
		return q[i].g > q[j].g
	}
	return q[i].seq < q[j].seq
}
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue) Push(x any) {
	*q = append(*q, x.(searchNode))
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}
