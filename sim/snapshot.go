// Read-only views of simulator state for analytics, export and persistence.
// Snapshots are deep copies; mutating them never affects the simulation.

package sim

// WorkerSnapshot is a copy of a worker's observable state.
type WorkerSnapshot struct {
	ID               WorkerID    `json:"id"`
	State            WorkerState `json:"state"`
	Busy             bool        `json:"busy"`
	Position         Point       `json:"position"`
	CurrentOrder     *OrderID    `json:"current_order,omitempty"`
	PickedItems      []ProductID `json:"picked_items,omitempty"`
	TotalDistance    int         `json:"total_distance"`
	TotalItemsPicked int         `json:"total_items_picked"`
	MovementHistory  []Movement  `json:"movement_history"`
	ActivityLog      []Activity  `json:"activity_log"`
}

// OrderSnapshot is a copy of an order's observable state.
type OrderSnapshot struct {
	ID             OrderID     `json:"id"`
	Priority       int         `json:"priority"`
	Status         OrderStatus `json:"status"`
	OriginalItems  int         `json:"original_items"`
	Remaining      int         `json:"remaining_items"`
	Skipped        int         `json:"skipped_items"`
	CreatedAt      int64       `json:"created_at"`
	CompletedAt    *int64      `json:"completed_at,omitempty"`
	FailedAt       *int64      `json:"failed_at,omitempty"`
	AssignedWorker *WorkerID   `json:"assigned_worker,omitempty"`
	Completed      bool        `json:"completed"`
}

// Snapshot is everything an external collaborator may read after a tick.
type Snapshot struct {
	Clock          int64            `json:"clock"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	PickingStation Point            `json:"picking_station"`
	Workers        []WorkerSnapshot `json:"workers"`
	Orders         []OrderSnapshot  `json:"orders"`
	Stats          Stats            `json:"stats"`
	Hotspots       []HotspotCount   `json:"hotspots"`
	Summary        Summary          `json:"summary"`
}

func snapshotWorker(w *Worker) WorkerSnapshot {
	ws := WorkerSnapshot{
		ID:               w.id,
		State:            w.state,
		Busy:             w.Busy(),
		Position:         w.position,
		PickedItems:      w.PickedItems(),
		TotalDistance:    w.totalDistance,
		TotalItemsPicked: w.totalItemsPicked,
		MovementHistory:  w.MovementHistory(),
		ActivityLog:      w.ActivityLog(),
	}
	if w.currentOrder != nil {
		id := w.currentOrder.ID()
		ws.CurrentOrder = &id
	}
	return ws
}

func snapshotOrder(o *Order) OrderSnapshot {
	snap := OrderSnapshot{
		ID:            o.id,
		Priority:      o.priority,
		Status:        o.Status(),
		OriginalItems: o.originalCount,
		Remaining:     len(o.items),
		Skipped:       o.skipped,
		CreatedAt:     o.createdAt,
		Completed:     o.IsCompleted(),
	}
	if t, ok := o.CompletedAt(); ok {
		snap.CompletedAt = &t
	}
	if t, ok := o.FailedAt(); ok {
		snap.FailedAt = &t
	}
	if w, ok := o.AssignedWorker(); ok {
		snap.AssignedWorker = &w
	}
	return snap
}

// WorkerTick is a worker's position at the end of a tick.
type WorkerTick struct {
	ID    WorkerID    `json:"id"`
	State WorkerState `json:"state"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Order *OrderID    `json:"order,omitempty"`
}

// Assignment records an order handed to a worker.
type Assignment struct {
	Order  OrderID  `json:"order"`
	Worker WorkerID `json:"worker"`
}

// TickRecord describes what happened during one tick.
type TickRecord struct {
	Tick             int          `json:"tick"`
	Clock            int64        `json:"clock"`
	Generated        []OrderID    `json:"generated,omitempty"`
	Finished         []OrderID    `json:"finished,omitempty"`
	Assigned         []Assignment `json:"assigned,omitempty"`
	Workers          []WorkerTick `json:"workers"`
	PendingOrders    int          `json:"pending_orders"`
	CompletedOrders  int          `json:"completed_orders"`
	FailedOrders     int          `json:"failed_orders"`
	TotalItemsPicked int          `json:"total_items_picked"`
	TotalDistance    int          `json:"total_distance"`
}

// TickObserver receives a record after every tick. Observers must not retain
// references into simulator state; records are freshly allocated each tick.
type TickObserver interface {
	OnTick(rec TickRecord) error
}
