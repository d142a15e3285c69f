// Package store archives evaluation runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/score"
)

// ErrRunNotFound is returned by Load for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    elapsed_ms INTEGER NOT NULL,
    records INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    mean_rouge1 REAL,
    mean_rouge2 REAL,
    mean_rougel REAL,
    mean_bleu REAL
);

CREATE TABLE IF NOT EXISTS records (
    run_id TEXT NOT NULL,
    row INTEGER NOT NULL,
    reference TEXT NOT NULL,
    candidate TEXT NOT NULL,
    rouge1 REAL NOT NULL,
    rouge2 REAL NOT NULL,
    rougel REAL NOT NULL,
    bleu REAL NOT NULL,
    PRIMARY KEY (run_id, row)
);

CREATE TABLE IF NOT EXISTS skipped (
    run_id TEXT NOT NULL,
    row INTEGER NOT NULL,
    reason TEXT NOT NULL,
    PRIMARY KEY (run_id, row)
);
`

// Run describes one archived evaluation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Elapsed   time.Duration
	Records   int
	Skipped   int

	// Means are NaN for runs with no scored rows.
	Means map[score.Metric]float64
}

// Store is a SQLite-backed run archive. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes the run, its records and its skipped rows in one transaction.
// Saving the same run twice fails.
func (s *Store) SaveRun(ctx context.Context, res *eval.Result) error {
	if res == nil {
		return errors.New("save run: nil result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	sum := res.Summary
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, created_at, elapsed_ms, records, skipped, mean_rouge1, mean_rouge2, mean_rougel, mean_bleu)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		res.ID(),
		time.Now().UTC().Format(time.RFC3339Nano),
		res.Elapsed().Milliseconds(),
		sum.Count,
		sum.Skipped,
		nullable(sum.MeanROUGE1),
		nullable(sum.MeanROUGE2),
		nullable(sum.MeanROUGEL),
		nullable(sum.MeanBLEU),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range res.Records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records(run_id, row, reference, candidate, rouge1, rouge2, rougel, bleu) VALUES(?,?,?,?,?,?,?,?)`,
			res.ID(), r.Row, r.Reference, r.Candidate,
			r.Scores.ROUGE1, r.Scores.ROUGE2, r.Scores.ROUGEL, r.Scores.BLEU,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", r.Row, err)
		}
	}

	for _, sk := range res.Skipped {
		reason := ""
		if sk.Err != nil {
			reason = sk.Err.Error()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skipped(run_id, row, reason) VALUES(?,?,?)`,
			res.ID(), sk.Row, reason,
		); err != nil {
			return fmt.Errorf("insert skipped row %d: %w", sk.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, elapsed_ms, records, skipped, mean_rouge1, mean_rouge2, mean_rougel, mean_bleu
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			created   string
			elapsedMS int64
			means     [4]sql.NullFloat64
		)
		if err := rows.Scan(&run.ID, &created, &elapsedMS, &run.Records, &run.Skipped,
			&means[0], &means[1], &means[2], &means[3]); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", run.ID, created, err)
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.Means = make(map[score.Metric]float64, len(score.Metrics))
		for i, m := range score.Metrics {
			run.Means[m] = fromNullable(means[i])
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Load rebuilds an archived run. Skipped rows come back with their reason as
// a plain error; the summary is recomputed from the stored records.
func (s *Store) Load(ctx context.Context, runID string) (*eval.Result, error) {
	var elapsedMS int64
	err := s.db.QueryRowContext(ctx, `SELECT elapsed_ms FROM runs WHERE id = ?`, runID).Scan(&elapsedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	records, err := s.records(ctx, runID)
	if err != nil {
		return nil, err
	}
	skipped, err := s.skipped(ctx, runID)
	if err != nil {
		return nil, err
	}
	return eval.NewResult(runID, records, skipped, time.Duration(elapsedMS)*time.Millisecond), nil
}

func (s *Store) records(ctx context.Context, runID string) ([]eval.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, reference, candidate, rouge1, rouge2, rougel, bleu FROM records WHERE run_id = ? ORDER BY row`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []eval.Record
	for rows.Next() {
		var r eval.Record
		if err := rows.Scan(&r.Row, &r.Reference, &r.Candidate,
			&r.Scores.ROUGE1, &r.Scores.ROUGE2, &r.Scores.ROUGEL, &r.Scores.BLEU); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *Store) skipped(ctx context.Context, runID string) ([]eval.Skipped, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row, reason FROM skipped WHERE run_id = ? ORDER BY row`, runID)
	if err != nil {
		return nil, fmt.Errorf("query skipped: %w", err)
	}
	defer rows.Close()

	var skipped []eval.Skipped
	for rows.Next() {
		var (
			row    int
			reason string
		)
		if err := rows.Scan(&row, &reason); err != nil {
			return nil, fmt.Errorf("scan skipped: %w", err)
		}
		skipped = append(skipped, eval.Skipped{Row: row, Err: errors.New(reason)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped: %w", err)
	}
	return skipped, nil
}

// SQLite has no NaN; empty runs store NULL means.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
