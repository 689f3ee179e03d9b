// Package store records scheduling runs in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/vinhtrinh326/cpusched/internal/metrics"
)

var (
	ErrNoBatch = errors.New("no runs recorded for batch")
	ErrNoRun   = errors.New("no processes recorded for run")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	algorithm      TEXT NOT NULL,
	quantum        INTEGER NOT NULL,
	avg_response   REAL NOT NULL,
	avg_turnaround REAL NOT NULL,
	avg_wait       REAL NOT NULL,
	throughput     REAL NOT NULL,
	makespan       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_batch ON runs (batch_id);
CREATE TABLE IF NOT EXISTS processes (
	run_id     TEXT NOT NULL REFERENCES runs (id),
	pid        INTEGER NOT NULL,
	arrival    INTEGER NOT NULL,
	burst      INTEGER NOT NULL,
	start_time INTEGER NOT NULL,
	end_time   INTEGER NOT NULL,
	wait       INTEGER NOT NULL,
	PRIMARY KEY (run_id, pid)
);`

// Run is one recorded discipline run.
type Run struct {
	ID                    string  `json:"id"`
	BatchID               string  `json:"batch_id"`
	Algorithm             string  `json:"algorithm"`
	Quantum               int64   `json:"quantum"`
	AverageResponseTime   float64 `json:"average_response_time"`
	AverageTurnAroundTime float64 `json:"average_turn_around_time"`
	AverageWaitingTime    float64 `json:"average_waiting_time"`
	Throughput            float64 `json:"cpu_throughput"`
	Makespan              int64   `json:"total_time"`
}

// Recorder writes batches of runs to a SQLite file.
type Recorder struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and makes sure the tables exist.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tables in %s: %w", path, err)
	}
	return &Recorder{DB: db, path: path}, nil
}

// Path is the database file.
func (r *Recorder) Path() string { return r.path }

// Record stores summaries as one batch in a single transaction and returns
// the batch id.
func (r *Recorder) Record(summaries []metrics.Summary) (string, error) {
	batchID := xid.New().String()

	tx, err := r.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	runStmt, err := tx.Prepare(`INSERT INTO runs
		(id, batch_id, seq, algorithm, quantum, avg_response, avg_turnaround, avg_wait, throughput, makespan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer runStmt.Close()

	procStmt, err := tx.Prepare(`INSERT INTO processes
		(run_id, pid, arrival, burst, start_time, end_time, wait)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer procStmt.Close()

	for seq, s := range summaries {
		runID := xid.New().String()
		_, err := runStmt.Exec(runID, batchID, seq, s.Algorithm, s.Quantum,
			s.AverageResponseTime, s.AverageTurnAroundTime, s.AverageWaitingTime,
			s.Throughput, s.Makespan)
		if err != nil {
			return "", fmt.Errorf("inserting %s run: %w", s.Algorithm, err)
		}
		for _, d := range s.Details {
			_, err := procStmt.Exec(runID, d.PID, d.Arrival, d.Burst, d.Start, d.End, d.WaitingTime)
			if err != nil {
				return "", fmt.Errorf("inserting process %d of %s run: %w", d.PID, s.Algorithm, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return batchID, nil
}

// Runs returns the runs of a batch in the order they were recorded.
func (r *Recorder) Runs(batchID string) ([]Run, error) {
	rows, err := r.Query(`SELECT id, batch_id, algorithm, quantum,
		avg_response, avg_turnaround, avg_wait, throughput, makespan
		FROM runs WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(&run.ID, &run.BatchID, &run.Algorithm, &run.Quantum,
			&run.AverageResponseTime, &run.AverageTurnAroundTime, &run.AverageWaitingTime,
			&run.Throughput, &run.Makespan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBatch, batchID)
	}
	return runs, nil
}

// Processes returns the per-process outcome of one run ordered by pid.
func (r *Recorder) Processes(runID string) ([]metrics.Detail, error) {
	rows, err := r.Query(`SELECT pid, arrival, burst, start_time, end_time, wait
		FROM processes WHERE run_id = ? ORDER BY pid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []metrics.Detail
	for rows.Next() {
		var d metrics.Detail
		if err := rows.Scan(&d.PID, &d.Arrival, &d.Burst, &d.Start, &d.End, &d.WaitingTime); err != nil {
			return nil, err
		}
		d.ResponseTime = d.Start - d.Arrival
		d.TurnAroundTime = d.End - d.Arrival
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
	}
	return details, nil
}
