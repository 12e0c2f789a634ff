// sim/simulator.go
package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Simulator is the tick orchestrator. It owns the topology, the workers and every order,
// and advances them one tick at a time:
//
//  1. maybe generate a random order
//  2. advance the clock
//  3. advance every busy worker once, in worker-ID order
//  4. sweep finished orders into the completed/failed partitions
//  5. assign pending orders (priority-sorted) to idle workers, first fit by worker ID
//  6. refresh statistics
//
// A Simulator is single-threaded; nothing inside a tick blocks or yields.
type Simulator struct {
	cfg   Config
	clock int64
	tick  int

	topo    *Topology
	paths   *PathFinder
	workers []*Worker // ordered by ID

	orders    []*Order // master log, in creation order
	pending   []*Order
	completed []*Order
	failed    []*Order
	finished  map[OrderID]bool

	stats       *Stats
	historySeen []int // per worker: movement history entries already counted as hotspots

	rng       *PartitionedRNG
	observers []TickObserver

	// per-tick scratch for TickRecord
	tickGenerated []OrderID
	tickFinished  []OrderID
	tickAssigned  []Assignment
}

// NewSimulator builds a simulator over the default generated layout.
func NewSimulator(cfg Config) (*Simulator, error) {
	topo, err := NewTopology(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}
	return NewSimulatorWithTopology(topo, cfg)
}

// NewSimulatorWithTopology builds a simulator over an existing layout.
// cfg.Width and cfg.Height are ignored. All workers start at the picking station.
func NewSimulatorWithTopology(topo *Topology, cfg Config) (*Simulator, error) {
	if topo == nil {
		return nil, fmt.Errorf("new simulator: %w: nil topology", ErrInvalidLayout)
	}
	if cfg.TickDuration == 0 {
		cfg.TickDuration = 1
	}
	if cfg.StallPolicy == "" {
		cfg.StallPolicy = StallPolicyFail
	}
	cfg.Width, cfg.Height = topo.Width(), topo.Height()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new simulator: %w", err)
	}

	s := &Simulator{
		cfg:         cfg,
		topo:        topo,
		paths:       NewPathFinder(topo),
		finished:    make(map[OrderID]bool),
		stats:       newStats(topo.Width(), topo.Height()),
		historySeen: make([]int, cfg.NumWorkers),
		rng:         NewPartitionedRNG(cfg.Seed),
	}
	for i := 1; i <= cfg.NumWorkers; i++ {
		w := NewWorker(WorkerID(i), topo, s.paths, topo.PickingStation(), cfg.StallPolicy)
		s.workers = append(s.workers, w)
		s.stats.WorkerUtilization[w.ID()] = 0
		s.stats.BusyTicks[w.ID()] = 0
	}
	return s, nil
}

// AddObserver registers a per-tick observer. The simulation behaves identically with or
// without observers; observer errors are logged and ignored.
func (s *Simulator) AddObserver(o TickObserver) {
	s.observers = append(s.observers, o)
}

// Clock returns the current simulation time.
func (s *Simulator) Clock() int64 { return s.clock }

// Ticks returns the number of ticks executed.
func (s *Simulator) Ticks() int { return s.tick }

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Topology returns the shared, immutable layout.
func (s *Simulator) Topology() *Topology { return s.topo }

// PathFinder returns the path finder used by the workers.
func (s *Simulator) PathFinder() *PathFinder { return s.paths }

// GenerateOrder creates a random order: an item count drawn uniformly from
// [MinItems, MaxItems] (capped at the number of products), items sampled without
// replacement, and a priority drawn uniformly from {1, 2, 3}.
// Returns nil when the layout stocks no products.
func (s *Simulator) GenerateOrder() *Order {
	ids := s.topo.ProductIDs()
	if len(ids) == 0 {
		return nil
	}
	rng := s.rng.ForSubsystem(SubsystemOrders)
	n := s.cfg.MinItems + rng.Intn(s.cfg.MaxItems-s.cfg.MinItems+1)
	n = min(n, len(ids))
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	priority := 1 + rng.Intn(3)
	return s.AddOrder(ids[:n], priority)
}

// AddOrder appends an order to the pending set with the given items and priority.
// Items need not be stocked: workers skip unknown products when planning.
func (s *Simulator) AddOrder(items []ProductID, priority int) *Order {
	o := NewOrder(OrderID(len(s.orders)+1), items, priority, s.clock)
	s.orders = append(s.orders, o)
	s.pending = append(s.pending, o)
	s.tickGenerated = append(s.tickGenerated, o.ID())
	logrus.Debugf("[tick %07d] new order %d: %d items, priority %d", s.clock, o.ID(), len(items), priority)
	return o
}

// Step executes one tick.
func (s *Simulator) Step() {
	if s.rng.ForSubsystem(SubsystemArrivals).Float64() < s.cfg.OrderProbability {
		s.GenerateOrder()
	}

	s.clock += s.cfg.TickDuration
	s.tick++

	for _, w := range s.workers {
		if w.Busy() {
			w.Advance(s.clock)
		}
	}

	s.SweepFinished()
	s.AssignOrders()
	// Orders abandoned while planning their first route finish inside AssignOrders.
	s.SweepFinished()
	s.updateStats()
	s.notify()
}

// RunSteps executes n ticks.
func (s *Simulator) RunSteps(n int) {
	for i := 0; i < n; i++ {
		s.Step()
		if s.tick%10 == 0 {
			logrus.Debugf("[tick %07d] progress: %d ticks, %d pending, %d completed", s.clock, s.tick, len(s.pending), len(s.completed))
		}
	}
}

// Run executes the configured number of ticks and returns the summary.
// A run always completes; stalls and unfinished orders show up in the summary.
func (s *Simulator) Run() Summary {
	logrus.Infof("Starting simulation: %dx%d warehouse, %d workers, %d steps, seed=%d",
		s.topo.Width(), s.topo.Height(), len(s.workers), s.cfg.Steps, s.cfg.Seed)
	s.RunSteps(s.cfg.Steps)
	logrus.Infof("[tick %07d] Simulation ended", s.clock)
	return s.Summary()
}

// SweepFinished moves completed and failed orders out of the master log into their
// partitions. Orders already swept are skipped, so calling it repeatedly is harmless.
func (s *Simulator) SweepFinished() {
	for _, o := range s.orders {
		if s.finished[o.ID()] {
			continue
		}
		switch {
		case o.IsCompleted():
			s.completed = append(s.completed, o)
		case o.IsFailed():
			s.failed = append(s.failed, o)
		default:
			continue
		}
		s.finished[o.ID()] = true
		s.tickFinished = append(s.tickFinished, o.ID())
	}
}

// AssignOrders hands pending orders to idle workers. Pending orders are stable-sorted by
// ascending priority, and each goes to the lowest-ID idle worker. Orders left over when
// every worker is busy stay pending.
func (s *Simulator) AssignOrders() {
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].Priority() < s.pending[j].Priority()
	})
	kept := make([]*Order, 0, len(s.pending))
	for _, o := range s.pending {
		w := s.firstIdleWorker()
		if w == nil {
			kept = append(kept, o)
			continue
		}
		w.Assign(o, s.clock)
		s.tickAssigned = append(s.tickAssigned, Assignment{Order: o.ID(), Worker: w.ID()})
		logrus.Debugf("[tick %07d] assigned order %d (priority %d) to worker %d", s.clock, o.ID(), o.Priority(), w.ID())
	}
	s.pending = kept
}

func (s *Simulator) firstIdleWorker() *Worker {
	for _, w := range s.workers {
		if !w.Busy() {
			return w
		}
	}
	return nil
}

// updateStats refreshes aggregates from the current worker and order state.
// Hotspot counts equal the number of history entries per cell; only entries appended since
// the previous refresh are added.
func (s *Simulator) updateStats() {
	st := s.stats
	st.Ticks = s.tick
	st.TotalOrders = len(s.orders)
	st.PendingOrders = len(s.pending)
	st.CompletedOrders = len(s.completed)
	st.FailedOrders = len(s.failed)

	st.TotalItemsPicked, st.TotalDistance, st.StalledWorkers = 0, 0, 0
	for i, w := range s.workers {
		st.TotalItemsPicked += w.totalItemsPicked
		st.TotalDistance += w.totalDistance
		if w.Busy() {
			st.WorkerUtilization[w.id] = 1
			st.BusyTicks[w.id]++
		} else {
			st.WorkerUtilization[w.id] = 0
		}
		if w.state == WorkerStalled {
			st.StalledWorkers++
		}
		for _, m := range w.movementHistory[s.historySeen[i]:] {
			st.hotspots[m.Y*st.width+m.X]++
		}
		s.historySeen[i] = len(w.movementHistory)
	}

	var total int64
	var n int
	for _, o := range s.completed {
		if t, ok := o.CompletedAt(); ok {
			total += t - o.CreatedAt()
			n++
		}
	}
	st.AvgOrderCompletionTime = 0
	if n > 0 {
		st.AvgOrderCompletionTime = float64(total) / float64(n)
	}
}

func (s *Simulator) notify() {
	if len(s.observers) > 0 {
		rec := s.tickRecord()
		for _, o := range s.observers {
			if err := o.OnTick(rec); err != nil {
				logrus.Warnf("[tick %07d] tick observer %T failed: %v", s.clock, o, err)
			}
		}
	}
	s.tickGenerated, s.tickFinished, s.tickAssigned = nil, nil, nil
}

func (s *Simulator) tickRecord() TickRecord {
	rec := TickRecord{
		Tick:             s.tick,
		Clock:            s.clock,
		Generated:        append([]OrderID(nil), s.tickGenerated...),
		Finished:         append([]OrderID(nil), s.tickFinished...),
		Assigned:         append([]Assignment(nil), s.tickAssigned...),
		Workers:          make([]WorkerTick, 0, len(s.workers)),
		PendingOrders:    s.stats.PendingOrders,
		CompletedOrders:  s.stats.CompletedOrders,
		FailedOrders:     s.stats.FailedOrders,
		TotalItemsPicked: s.stats.TotalItemsPicked,
		TotalDistance:    s.stats.TotalDistance,
	}
	for _, w := range s.workers {
		wt := WorkerTick{ID: w.id, State: w.state, X: w.position.X, Y: w.position.Y}
		if w.currentOrder != nil {
			id := w.currentOrder.ID()
			wt.Order = &id
		}
		rec.Workers = append(rec.Workers, wt)
	}
	return rec
}

// Stats returns a copy of the aggregate statistics as of the last tick.
func (s *Simulator) Stats() Stats { return s.stats.clone() }

// Worker returns the worker with the given ID, or nil.
func (s *Simulator) Worker(id WorkerID) *Worker {
	if id < 1 || int(id) > len(s.workers) {
		return nil
	}
	return s.workers[id-1]
}

// Order returns the order with the given ID, or nil.
func (s *Simulator) Order(id OrderID) *Order {
	if id < 1 || int(id) > len(s.orders) {
		return nil
	}
	return s.orders[id-1]
}

// WorkerSnapshots returns copies of all workers in ID order.
func (s *Simulator) WorkerSnapshots() []WorkerSnapshot {
	out := make([]WorkerSnapshot, len(s.workers))
	for i, w := range s.workers {
		out[i] = snapshotWorker(w)
	}
	return out
}

// OrderSnapshots returns copies of all orders in creation order.
func (s *Simulator) OrderSnapshots() []OrderSnapshot {
	out := make([]OrderSnapshot, len(s.orders))
	for i, o := range s.orders {
		out[i] = snapshotOrder(o)
	}
	return out
}

// Pending returns the IDs of unassigned orders in queue order.
func (s *Simulator) Pending() []OrderID { return orderIDs(s.pending) }

// Completed returns the IDs of completed orders in completion-sweep order.
func (s *Simulator) Completed() []OrderID { return orderIDs(s.completed) }

// Failed returns the IDs of abandoned orders in sweep order.
func (s *Simulator) Failed() []OrderID { return orderIDs(s.failed) }

func orderIDs(orders []*Order) []OrderID {
	ids := make([]OrderID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID()
	}
	return ids
}

// Summary builds the report for the current state.
func (s *Simulator) Summary() Summary {
	st := s.stats
	sum := Summary{
		SimulationTime:         s.clock,
		Ticks:                  s.tick,
		TotalOrders:            len(s.orders),
		CompletedOrders:        len(s.completed),
		FailedOrders:           len(s.failed),
		PendingOrders:          len(s.pending),
		CompletionRate:         ratio(len(s.completed), len(s.orders)),
		TotalItemsPicked:       st.TotalItemsPicked,
		TotalDistance:          st.TotalDistance,
		ItemsPerDistance:       ratio(st.TotalItemsPicked, st.TotalDistance),
		AvgOrderCompletionTime: st.AvgOrderCompletionTime,
		StalledWorkers:         st.StalledWorkers,
		WorkerStats:            make([]WorkerSummary, 0, len(s.workers)),
	}
	for _, w := range s.workers {
		sum.WorkerStats = append(sum.WorkerStats, WorkerSummary{
			WorkerID:         w.id,
			TotalItemsPicked: w.totalItemsPicked,
			TotalDistance:    w.totalDistance,
			Efficiency:       ratio(w.totalItemsPicked, w.totalDistance),
			ActivityCount:    len(w.activityLog),
			Utilization:      ratio(st.BusyTicks[w.id], int64(s.tick)),
			Busy:             w.Busy(),
			State:            string(w.state),
		})
	}
	return sum
}

// Snapshot returns a deep copy of everything external collaborators may read.
func (s *Simulator) Snapshot() Snapshot {
	return Snapshot{
		Clock:          s.clock,
		Width:          s.topo.Width(),
		Height:         s.topo.Height(),
		PickingStation: s.topo.PickingStation(),
		Workers:        s.WorkerSnapshots(),
		Orders:         s.OrderSnapshots(),
		Stats:          s.Stats(),
		Hotspots:       s.stats.Hotspots(),
		Summary:        s.Summary(),
	}
}
