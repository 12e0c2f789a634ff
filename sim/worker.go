// Defines the Worker: a per-agent state machine that plans a route to each item of its
// order, walks it one cell per tick, picks the item on arrival and finally returns to the
// picking station to complete the order.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// WorkerID identifies a worker. Workers are numbered from 1 and advanced in ID order.
type WorkerID int

// WorkerState is the state machine position of a worker.
// Planning and Completing are transient: they are only observable while a transition runs.
type WorkerState string

const (
	WorkerIdle       WorkerState = "idle"
	WorkerPlanning   WorkerState = "planning"
	WorkerMoving     WorkerState = "moving"
	WorkerCompleting WorkerState = "completing"
	WorkerStalled    WorkerState = "stalled"
)

// Movement is one entry of a worker's movement history.
type Movement struct {
	Time int64 `json:"time"`
	X    int   `json:"x"`
	Y    int   `json:"y"`
}

// Activity is one entry of a worker's activity log.
type Activity struct {
	Time    int64  `json:"time"`
	Message string `json:"message"`
}

// Worker moves through the warehouse fulfilling one order at a time.
// Invariants: Busy() ⇔ CurrentOrder() != nil; the position is always walkable;
// pathIndex ≤ len(path).
type Worker struct {
	id     WorkerID
	topo   *Topology
	paths  *PathFinder
	policy StallPolicy

	state        WorkerState
	position     Point
	currentOrder *Order
	path         []Point // cells still to enter, excluding the cell the route started from
	pathIndex    int
	pickedItems  []ProductID
	startTime    int64

	totalDistance    int
	totalItemsPicked int
	movementHistory  []Movement
	activityLog      []Activity
}

// NewWorker places a worker at the walkable cell nearest to start.
func NewWorker(id WorkerID, topo *Topology, paths *PathFinder, start Point, policy StallPolicy) *Worker {
	if policy == "" {
		policy = StallPolicyFail
	}
	return &Worker{
		id:       id,
		topo:     topo,
		paths:    paths,
		policy:   policy,
		state:    WorkerIdle,
		position: paths.NearestWalkable(start),
	}
}

func (w *Worker) ID() WorkerID          { return w.id }
func (w *Worker) State() WorkerState    { return w.state }
func (w *Worker) Position() Point       { return w.position }
func (w *Worker) Busy() bool            { return w.currentOrder != nil }
func (w *Worker) CurrentOrder() *Order  { return w.currentOrder }
func (w *Worker) TotalDistance() int    { return w.totalDistance }
func (w *Worker) TotalItemsPicked() int { return w.totalItemsPicked }

// StartTime returns the tick the current order was received.
func (w *Worker) StartTime() int64 { return w.startTime }

// PickedItems returns a copy of the current order's pick buffer.
func (w *Worker) PickedItems() []ProductID {
	return append([]ProductID(nil), w.pickedItems...)
}

// RemainingPath returns a copy of the cells the worker has yet to enter on its current route.
func (w *Worker) RemainingPath() []Point {
	return append([]Point(nil), w.path[w.pathIndex:]...)
}

// MovementHistory returns a copy of all recorded moves.
func (w *Worker) MovementHistory() []Movement {
	return append([]Movement(nil), w.movementHistory...)
}

// ActivityLog returns a copy of the activity log.
func (w *Worker) ActivityLog() []Activity {
	return append([]Activity(nil), w.activityLog...)
}

// Assign hands an order to an idle worker and plans the first route.
// Assigning to a busy worker is a programming error.
func (w *Worker) Assign(o *Order, now int64) {
	if w.Busy() {
		panic(fmt.Sprintf("Assign: worker %d is busy with order %d", w.id, w.currentOrder.ID()))
	}
	o.assignTo(w.id)
	w.currentOrder = o
	w.startTime = now
	w.logf(now, "received order %d with %d items", o.ID(), o.Remaining())
	w.planNext(now)
}

// Advance performs one tick of movement. It returns true if the worker entered a cell.
// Idle and stalled workers do nothing.
func (w *Worker) Advance(now int64) bool {
	if w.state != WorkerMoving || w.pathIndex >= len(w.path) {
		return false
	}
	next := w.path[w.pathIndex]
	w.totalDistance += Manhattan(w.position, next)
	w.position = next
	w.pathIndex++
	w.movementHistory = append(w.movementHistory, Movement{Time: now, X: next.X, Y: next.Y})

	if w.pathIndex < len(w.path) {
		return true
	}

	// Reached the end of the route.
	if item, ok := w.currentOrder.popFront(); ok {
		w.pickedItems = append(w.pickedItems, item)
		w.totalItemsPicked++
		w.logf(now, "picked item %d at %v", item, w.position)
		w.planNext(now)
		return true
	}
	if w.position == w.topo.PickingStation() {
		w.complete(now)
		return true
	}
	// The route home ended somewhere else; nothing left to walk.
	w.handleNoRoute(now, w.topo.PickingStation())
	return true
}

// planNext routes the worker to the next backlog item, or to the picking station when the
// backlog is empty. Items without a storage location are dropped without moving.
func (w *Worker) planNext(now int64) {
	w.state = WorkerPlanning
	o := w.currentOrder
	var target Point
	for {
		item, ok := o.peek()
		if !ok {
			target = w.topo.PickingStation()
			w.logf(now, "all items picked for order %d; returning to picking station", o.ID())
			break
		}
		loc, found := w.topo.Location(item)
		if found {
			target = loc
			w.logf(now, "planned route to item %d at %v", item, loc)
			break
		}
		w.logf(now, "item %d has no storage location; skipping it", item)
		logrus.Warnf("[tick %07d] worker %d: unknown location for item %d in order %d, dropping it", now, w.id, item, o.ID())
		o.skipFront()
	}

	route := w.paths.ShortestPath(w.position, target)
	if len(route) == 0 {
		w.handleNoRoute(now, target)
		return
	}
	if len(route) > 1 {
		// The route starts at the current position, which is not a move.
		route = route[1:]
	}
	w.path = route
	w.pathIndex = 0
	w.state = WorkerMoving
}

// handleNoRoute applies the stall policy when the target cannot be reached.
func (w *Worker) handleNoRoute(now int64, target Point) {
	o := w.currentOrder
	w.path = nil
	w.pathIndex = 0
	w.logf(now, "no route from %v to %v", w.position, target)
	switch w.policy {
	case StallPolicyStall:
		w.state = WorkerStalled
		logrus.Warnf("[tick %07d] worker %d stalled on order %d: %v unreachable from %v", now, w.id, o.ID(), target, w.position)
	default:
		o.markFailed(now)
		w.logf(now, "abandoned order %d with %d items remaining", o.ID(), o.Remaining())
		logrus.Warnf("[tick %07d] worker %d abandoned order %d: %v unreachable from %v", now, w.id, o.ID(), target, w.position)
		w.release()
	}
}

func (w *Worker) complete(now int64) {
	w.state = WorkerCompleting
	o := w.currentOrder
	o.markCompleted(now)
	w.logf(now, "completed order %d", o.ID())
	logrus.Debugf("[tick %07d] worker %d completed order %d (%d items, %d ticks)", now, w.id, o.ID(), o.OriginalItemCount(), now-w.startTime)
	w.release()
}

func (w *Worker) release() {
	w.currentOrder = nil
	w.pickedItems = nil
	w.path = nil
	w.pathIndex = 0
	w.state = WorkerIdle
}

func (w *Worker) logf(now int64, format string, args ...any) {
	w.activityLog = append(w.activityLog, Activity{Time: now, Message: fmt.Sprintf(format, args...)})
}
