// Defines the Order record: an item backlog consumed front-first by its assigned worker,
// with creation/completion timestamps in ticks.

package sim

import "fmt"

// OrderID identifies an order. IDs are assigned by the Simulator starting at 1.
type OrderID int

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAssigned  OrderStatus = "assigned"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
)

// Order is a picking task. Lower Priority values are served first.
//
// Optional fields (completion time, failure time, assigned worker) are exposed as
// (value, ok) pairs. The assigned worker is set once and never cleared, so attribution
// survives completion.
type Order struct {
	id            OrderID
	items         []ProductID // backlog, consumed from the front
	originalCount int
	skipped       int // items dropped because they have no storage location
	priority      int
	createdAt     int64

	completedAt int64
	completed   bool
	failedAt    int64
	failed      bool

	assignedWorker WorkerID
	assigned       bool
}

// NewOrder creates an order in the pending state. The item slice is copied.
func NewOrder(id OrderID, items []ProductID, priority int, createdAt int64) *Order {
	return &Order{
		id:            id,
		items:         append([]ProductID(nil), items...),
		originalCount: len(items),
		priority:      priority,
		createdAt:     createdAt,
	}
}

func (o *Order) ID() OrderID      { return o.id }
func (o *Order) Priority() int    { return o.priority }
func (o *Order) CreatedAt() int64 { return o.createdAt }

// Items returns a copy of the remaining backlog.
func (o *Order) Items() []ProductID {
	return append([]ProductID(nil), o.items...)
}

// Remaining returns the backlog length.
func (o *Order) Remaining() int { return len(o.items) }

// OriginalItemCount returns the number of items the order was created with.
func (o *Order) OriginalItemCount() int { return o.originalCount }

// Skipped returns how many items were dropped from the backlog without being picked.
func (o *Order) Skipped() int { return o.skipped }

// CompletedAt returns the completion tick, if the order has completed.
func (o *Order) CompletedAt() (int64, bool) { return o.completedAt, o.completed }

// FailedAt returns the tick the order was abandoned, if it failed.
func (o *Order) FailedAt() (int64, bool) { return o.failedAt, o.failed }

// AssignedWorker returns the worker the order was assigned to, if any.
func (o *Order) AssignedWorker() (WorkerID, bool) { return o.assignedWorker, o.assigned }

// IsCompleted reports whether the backlog is empty and a completion time is set.
func (o *Order) IsCompleted() bool {
	return len(o.items) == 0 && o.completed
}

// IsFailed reports whether the order was abandoned.
func (o *Order) IsFailed() bool { return o.failed }

// Status derives the lifecycle state.
func (o *Order) Status() OrderStatus {
	switch {
	case o.IsCompleted():
		return OrderCompleted
	case o.failed:
		return OrderFailed
	case o.assigned:
		return OrderAssigned
	default:
		return OrderPending
	}
}

// ProcessingTime returns completedAt-createdAt for completed orders,
// otherwise the time elapsed up to now. Never negative.
func (o *Order) ProcessingTime(now int64) int64 {
	end := now
	if o.completed {
		end = o.completedAt
	}
	return max(0, end-o.createdAt)
}

func (o *Order) String() string {
	return fmt.Sprintf("Order: (ID: %d, Status: %s, Remaining: %d, Priority: %d)", o.id, o.Status(), len(o.items), o.priority)
}

// assignTo records the assigned worker. Orders are assigned exactly once.
func (o *Order) assignTo(w WorkerID) {
	if o.assigned {
		panic(fmt.Sprintf("assignTo: order %d already assigned to worker %d", o.id, o.assignedWorker))
	}
	o.assignedWorker = w
	o.assigned = true
}

// peek returns the front of the backlog.
func (o *Order) peek() (ProductID, bool) {
	if len(o.items) == 0 {
		return 0, false
	}
	return o.items[0], true
}

// popFront removes and returns the front of the backlog.
func (o *Order) popFront() (ProductID, bool) {
	id, ok := o.peek()
	if ok {
		o.items = o.items[1:]
	}
	return id, ok
}

// skipFront drops the front of the backlog without a pick.
func (o *Order) skipFront() (ProductID, bool) {
	id, ok := o.popFront()
	if ok {
		o.skipped++
	}
	return id, ok
}

func (o *Order) markCompleted(now int64) {
	if len(o.items) != 0 {
		panic(fmt.Sprintf("markCompleted: order %d still has %d items", o.id, len(o.items)))
	}
	o.completedAt = now
	o.completed = true
}

func (o *Order) markFailed(now int64) {
	o.failedAt = now
	o.failed = true
}
