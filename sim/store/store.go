// Package store keeps an index of finished simulation runs in a SQL database.
// SQLite (modernc.org/sqlite, driver "sqlite") and Postgres (pgx, driver "pgx")
// are supported.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrUnknownDriver is returned by Open for drivers other than DriverSQLite and DriverPostgres.
var ErrUnknownDriver = errors.New("unknown database driver")

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// WorkerRecord is the persisted per-worker outcome of a run.
type WorkerRecord struct {
	WorkerID         sim.WorkerID
	TotalItemsPicked int
	TotalDistance    int
	Utilization      float64
	State            string
}

// RunRecord is one row of the runs table plus its worker rows.
type RunRecord struct {
	ID                     int64
	RecordedAt             time.Time
	Seed                   int64
	Width                  int
	Height                 int
	NumWorkers             int
	Steps                  int
	OrderProbability       float64
	StallPolicy            string
	TotalOrders            int
	CompletedOrders        int
	FailedOrders           int
	PendingOrders          int
	TotalItemsPicked       int
	TotalDistance          int
	AvgOrderCompletionTime float64
	Workers                []WorkerRecord
}

// NewRunRecord captures cfg and the end-of-run summary.
func NewRunRecord(cfg sim.Config, sum sim.Summary, at time.Time) RunRecord {
	r := RunRecord{
		RecordedAt:             at.UTC().Truncate(time.Second),
		Seed:                   cfg.Seed,
		Width:                  cfg.Width,
		Height:                 cfg.Height,
		NumWorkers:             cfg.NumWorkers,
		Steps:                  cfg.Steps,
		OrderProbability:       cfg.OrderProbability,
		StallPolicy:            string(cfg.StallPolicy),
		TotalOrders:            sum.TotalOrders,
		CompletedOrders:        sum.CompletedOrders,
		FailedOrders:           sum.FailedOrders,
		PendingOrders:          sum.PendingOrders,
		TotalItemsPicked:       sum.TotalItemsPicked,
		TotalDistance:          sum.TotalDistance,
		AvgOrderCompletionTime: sum.AvgOrderCompletionTime,
	}
	for _, w := range sum.WorkerStats {
		r.Workers = append(r.Workers, WorkerRecord{
			WorkerID:         w.WorkerID,
			TotalItemsPicked: w.TotalItemsPicked,
			TotalDistance:    w.TotalDistance,
			Utilization:      w.Utilization,
			State:            w.State,
		})
	}
	return r
}

// Store is a run index backed by database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema if needed.
// For SQLite, dsn is a file path; its directory is created.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open store: empty dsn")
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("open store: %w %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, driver: driver}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open store: open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open store: %s: %w", p, err)
		}
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: open postgres database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: verify postgres connection: %w", err)
	}
	return db, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

func (s *Store) initSchema(ctx context.Context) error {
	idCol, realCol := "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	if s.driver == DriverPostgres {
		idCol, realCol = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + idCol + `,
			recorded_at TEXT NOT NULL,
			seed BIGINT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			num_workers INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			order_probability ` + realCol + ` NOT NULL,
			stall_policy TEXT NOT NULL,
			total_orders INTEGER NOT NULL,
			completed_orders INTEGER NOT NULL,
			failed_orders INTEGER NOT NULL,
			pending_orders INTEGER NOT NULL,
			total_items_picked INTEGER NOT NULL,
			total_distance INTEGER NOT NULL,
			avg_order_completion_time ` + realCol + ` NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_workers (
			run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			worker_id INTEGER NOT NULL,
			total_items_picked INTEGER NOT NULL,
			total_distance INTEGER NOT NULL,
			utilization ` + realCol + ` NOT NULL,
			state TEXT NOT NULL,
			PRIMARY KEY (run_id, worker_id)
		);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SaveRun inserts r and its workers in one transaction and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, r RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := s.rebind(`
	INSERT INTO runs (
		recorded_at, seed, width, height, num_workers, steps, order_probability, stall_policy,
		total_orders, completed_orders, failed_orders, pending_orders,
		total_items_picked, total_distance, avg_order_completion_time
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`)
	var id int64
	err = tx.QueryRowContext(ctx, query,
		r.RecordedAt.UTC().Format(time.RFC3339), r.Seed, r.Width, r.Height, r.NumWorkers, r.Steps,
		r.OrderProbability, r.StallPolicy, r.TotalOrders, r.CompletedOrders, r.FailedOrders,
		r.PendingOrders, r.TotalItemsPicked, r.TotalDistance, r.AvgOrderCompletionTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO run_workers (run_id, worker_id, total_items_picked, total_distance, utilization, state)
	VALUES (?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return 0, fmt.Errorf("save run: prepare worker insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range r.Workers {
		if _, err := stmt.ExecContext(ctx, id, int(w.WorkerID), w.TotalItemsPicked, w.TotalDistance, w.Utilization, w.State); err != nil {
			return 0, fmt.Errorf("save run: insert worker_id=%d: %w", w.WorkerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save run: commit tx: %w", err)
	}
	return id, nil
}

const runColumns = `id, recorded_at, seed, width, height, num_workers, steps, order_probability, stall_policy,
	total_orders, completed_orders, failed_orders, pending_orders,
	total_items_picked, total_distance, avg_order_completion_time`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		r  RunRecord
		at string
	)
	err := row.Scan(&r.ID, &at, &r.Seed, &r.Width, &r.Height, &r.NumWorkers, &r.Steps,
		&r.OrderProbability, &r.StallPolicy, &r.TotalOrders, &r.CompletedOrders, &r.FailedOrders,
		&r.PendingOrders, &r.TotalItemsPicked, &r.TotalDistance, &r.AvgOrderCompletionTime)
	if err != nil {
		return r, err
	}
	if r.RecordedAt, err = time.Parse(time.RFC3339, at); err != nil {
		return r, fmt.Errorf("parse recorded_at %q: %w", at, err)
	}
	return r, nil
}

// ListRuns returns every stored run without worker rows, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list runs: query runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0, 16)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its worker rows.
func (s *Store) GetRun(ctx context.Context, id int64) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?;`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
	SELECT worker_id, total_items_picked, total_distance, utilization, state
	FROM run_workers
	WHERE run_id = ?
	ORDER BY worker_id;
	`), id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %d: query workers: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			w   WorkerRecord
			wid int
		)
		if err := rows.Scan(&wid, &w.TotalItemsPicked, &w.TotalDistance, &w.Utilization, &w.State); err != nil {
			return RunRecord{}, fmt.Errorf("get run %d: scan worker: %w", id, err)
		}
		w.WorkerID = sim.WorkerID(wid)
		r.Workers = append(r.Workers, w)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, fmt.Errorf("get run %d: row iteration: %w", id, err)
	}
	return r, nil
}
