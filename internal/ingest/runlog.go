package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sberindex/ndi-cli/internal/db"
)

// RunEntry represents a row in sberindex.ingest_runs.
type RunEntry struct {
	ID          string     `json:"id"`
	Dataset     string     `json:"dataset"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RowsLoaded  int64      `json:"rows_loaded"`
	Error       string     `json:"error,omitempty"`
}

// RunLog records ingestion runs in sberindex.ingest_runs.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a run and returns its id.
func (r *RunLog) Start(ctx context.Context, dataset string) (string, error) {
	id := uuid.New().String()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sberindex.ingest_runs (id, dataset, status, started_at)
		 VALUES ($1, $2, 'running', now())`,
		id, dataset,
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start run for %s", dataset)
	}
	return id, nil
}

// Complete marks a run as successfully finished.
func (r *RunLog) Complete(ctx context.Context, runID string, rowsLoaded int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sberindex.ingest_runs
		 SET status = 'complete', completed_at = now(), rows_loaded = $1
		 WHERE id = $2`,
		rowsLoaded, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (r *RunLog) Fail(ctx context.Context, runID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sberindex.ingest_runs
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// List returns all runs, most recent first.
func (r *RunLog) List(ctx context.Context) ([]RunEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, dataset, status, started_at, completed_at, rows_loaded, error
		 FROM sberindex.ingest_runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var completedAt *time.Time
		var errStr *string
		if err := rows.Scan(&e.ID, &e.Dataset, &e.Status, &e.StartedAt, &completedAt, &e.RowsLoaded, &errStr); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		e.CompletedAt = completedAt
		if errStr != nil {
			e.Error = *errStr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
