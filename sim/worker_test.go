package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFiveByFive(t *testing.T) (*Topology, *PathFinder) {
	t.Helper()
	topo, err := NewTopology(5, 5)
	require.NoError(t, err)
	return topo, NewPathFinder(topo)
}

func hasActivity(w *Worker, substr string) bool {
	for _, a := range w.ActivityLog() {
		if strings.Contains(a.Message, substr) {
			return true
		}
	}
	return false
}

func TestWorker_NewWorker_StartsIdleAtSnappedPosition(t *testing.T) {
	topo, pf := newFiveByFive(t)
	w := NewWorker(1, topo, pf, Point{2, 1}, "")

	assert.Equal(t, WorkerIdle, w.State())
	assert.False(t, w.Busy())
	assert.Equal(t, Point{2, 0}, w.Position())
	assert.False(t, w.Advance(1), "idle workers do not move")
}

func TestWorker_SingleItemRoundTrip(t *testing.T) {
	// GIVEN a worker at the picking station and an order for product 1 (snapped to (2,0))
	topo, pf := newFiveByFive(t)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	o := NewOrder(1, []ProductID{1}, 1, 0)

	// WHEN the order is assigned
	w.Assign(o, 0)

	// THEN the worker is moving with a 4-cell route (the start cell is not re-entered)
	assert.Equal(t, WorkerMoving, w.State())
	assert.True(t, w.Busy())
	assert.Len(t, w.RemainingPath(), 4)

	// WHEN advanced 4 ticks it reaches the item and picks it
	for tick := int64(1); tick <= 4; tick++ {
		assert.True(t, w.Advance(tick))
	}
	assert.Equal(t, Point{2, 0}, w.Position())
	assert.Equal(t, []ProductID{1}, w.PickedItems())
	assert.Equal(t, 1, w.TotalItemsPicked())
	assert.Equal(t, 0, o.Remaining())
	assert.False(t, o.IsCompleted())

	// AND 4 more ticks bring it home, completing the order
	for tick := int64(5); tick <= 8; tick++ {
		assert.True(t, w.Advance(tick))
	}
	assert.True(t, o.IsCompleted())
	at, _ := o.CompletedAt()
	assert.Equal(t, int64(8), at)
	assert.Equal(t, 8, w.TotalDistance())
	assert.Len(t, w.MovementHistory(), 8)
	assert.Equal(t, WorkerIdle, w.State())
	assert.False(t, w.Busy())
	assert.Nil(t, w.CurrentOrder())
	assert.Empty(t, w.PickedItems())
	assert.True(t, hasActivity(w, "picked item 1"))
	assert.True(t, hasActivity(w, "completed order 1"))
}

func TestWorker_UnknownItem_SkippedWithoutMoving(t *testing.T) {
	topo, pf := newFiveByFive(t)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	o := NewOrder(1, []ProductID{999}, 1, 0)

	w.Assign(o, 0)

	// The unknown item is dropped at planning time; the route home is a one-tick dwell.
	assert.Equal(t, 0, o.Remaining())
	assert.True(t, hasActivity(w, "item 999 has no storage location"))
	assert.Equal(t, []Point{topo.PickingStation()}, w.RemainingPath())

	w.Advance(1)
	assert.True(t, o.IsCompleted())
	assert.Equal(t, 0, w.TotalDistance())
	assert.Equal(t, 0, w.TotalItemsPicked())
}

func TestWorker_UnknownItemThenKnown_DistanceOnlyForKnown(t *testing.T) {
	topo, pf := newFiveByFive(t)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	o := NewOrder(1, []ProductID{0, 1, 500}, 1, 0)

	w.Assign(o, 0)
	for tick := int64(1); !o.IsCompleted() && tick <= 20; tick++ {
		w.Advance(tick)
	}

	assert.True(t, o.IsCompleted())
	assert.Equal(t, 8, w.TotalDistance())
	assert.Equal(t, 1, w.TotalItemsPicked())
	assert.True(t, hasActivity(w, "item 0 has no storage location"))
	assert.True(t, hasActivity(w, "item 500 has no storage location"))
}

func TestWorker_MultiItem_PicksInBacklogOrder(t *testing.T) {
	topo, err := NewTopology(20, 15)
	require.NoError(t, err)
	pf := NewPathFinder(topo)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	o := NewOrder(1, []ProductID{40, 3, 17}, 1, 0)

	w.Assign(o, 0)
	tick := int64(0)
	for !o.IsCompleted() {
		tick++
		require.Less(t, tick, int64(500), "order never completed")
		w.Advance(tick)
		assert.True(t, topo.IsWalkable(w.Position().X, w.Position().Y))
		assert.Equal(t, w.Busy(), w.CurrentOrder() != nil)
	}

	assert.Equal(t, 3, w.TotalItemsPicked())
	assert.Equal(t, topo.PickingStation(), w.Position())
	assert.Equal(t, int(tick), len(w.MovementHistory()), "one move per tick")
	// Picks happen in backlog order.
	var picks []string
	for _, a := range w.ActivityLog() {
		if strings.HasPrefix(a.Message, "picked item") {
			picks = append(picks, strings.Fields(a.Message)[2])
		}
	}
	assert.Equal(t, []string{"40", "3", "17"}, picks)
}

func TestWorker_Unreachable_FailPolicy_AbandonsOrder(t *testing.T) {
	topo, err := NewTopologyFromRows(disconnectedRows)
	require.NoError(t, err)
	pf := NewPathFinder(topo)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	o := NewOrder(1, []ProductID{3}, 1, 0)

	w.Assign(o, 2)

	assert.True(t, o.IsFailed())
	at, _ := o.FailedAt()
	assert.Equal(t, int64(2), at)
	assert.False(t, w.Busy())
	assert.Equal(t, WorkerIdle, w.State())
	assert.True(t, hasActivity(w, "no route"))
	assignee, ok := o.AssignedWorker()
	assert.True(t, ok)
	assert.Equal(t, WorkerID(1), assignee)
}

func TestWorker_Unreachable_StallPolicy_StaysBusy(t *testing.T) {
	topo, err := NewTopologyFromRows(disconnectedRows)
	require.NoError(t, err)
	pf := NewPathFinder(topo)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyStall)
	o := NewOrder(1, []ProductID{3}, 1, 0)

	w.Assign(o, 0)

	assert.Equal(t, WorkerStalled, w.State())
	assert.True(t, w.Busy())
	for tick := int64(1); tick <= 5; tick++ {
		assert.False(t, w.Advance(tick))
	}
	assert.Empty(t, w.MovementHistory())
	assert.False(t, o.IsFailed())
	assert.False(t, o.IsCompleted())
}

func TestWorker_AssignWhileBusy_Panics(t *testing.T) {
	topo, pf := newFiveByFive(t)
	w := NewWorker(1, topo, pf, topo.PickingStation(), StallPolicyFail)
	w.Assign(NewOrder(1, []ProductID{1}, 1, 0), 0)
	assert.Panics(t, func() { w.Assign(NewOrder(2, []ProductID{2}, 1, 0), 0) })
}
