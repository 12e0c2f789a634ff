// Package sim provides the tick-driven warehouse simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - grid.go: the immutable Topology (shelves, aisles, picking station, adjacency)
//   - pathfinder.go: nearest-walkable snapping and A* shortest paths
//   - worker.go: the per-worker state machine (idle → planning → moving → completing)
//   - simulator.go: the tick loop, order generation and first-fit assignment
//
// # Architecture
//
// The sim package owns all mutable state. Downstream collaborators only read
// Snapshot values or receive TickRecord values through a TickObserver:
//   - sim/layout/: YAML layout files (generated or explicit rows)
//   - sim/analysis/: efficiency, travel-pattern, congestion and hotspot tables
//   - sim/export/: CSV, JSON and Markdown reports plus a compressed tick trace
//   - sim/store/: SQL run index (SQLite or Postgres)
//
// Runs are reproducible: all randomness flows through PartitionedRNG, and workers
// are advanced in ID order within each tick.
package sim
