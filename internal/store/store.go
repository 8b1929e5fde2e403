// Package store handles SQLite persistence of evaluation results.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Evaluation is a persisted layout evaluation.
type Evaluation struct {
	ID        int64
	CreatedAt time.Time
	Layout    string
	Corpus    string
	Total     float64
}

// MetricRow is one metric's persisted contribution to an evaluation.
type MetricRow struct {
	Metric     string
	Class      string
	Raw        float64
	Normalized float64
	Weighted   float64
}

// ListFilter narrows and bounds ListEvaluations.
type ListFilter struct {
	// Layout restricts to one layout name; empty matches all.
	Layout string
	// Corpus restricts to one corpus name; empty matches all.
	Corpus string
	// Limit bounds the result count; zero means no bound.
	Limit int
}

// Store wraps SQLite access for evaluation data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			layout_name TEXT NOT NULL,
			corpus TEXT NOT NULL,
			total REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS evaluation_metrics (
			evaluation_id INTEGER NOT NULL,
			metric TEXT NOT NULL,
			class TEXT NOT NULL,
			raw REAL NOT NULL,
			normalized REAL NOT NULL,
			weighted REAL NOT NULL,
			PRIMARY KEY (evaluation_id, metric)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_total ON evaluations(total);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_layout ON evaluations(layout_name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvaluation stores an evaluation and its per-metric rows.
func (s *Store) InsertEvaluation(ctx context.Context, ev Evaluation, rows []MetricRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO evaluations (created_at, layout_name, corpus, total)
		 VALUES (?, ?, ?, ?)`,
		ev.CreatedAt.Format(time.RFC3339Nano),
		ev.Layout,
		ev.Corpus,
		ev.Total,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO evaluation_metrics (evaluation_id, metric, class, raw, normalized, weighted)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, mr := range rows {
			if _, err := stmt.ExecContext(ctx, id, mr.Metric, mr.Class, mr.Raw, mr.Normalized, mr.Weighted); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

// ListEvaluations returns stored evaluations ordered by ascending total.
func (s *Store) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Layout != "" {
		clauses = append(clauses, "layout_name = ?")
		args = append(args, filter.Layout)
	}
	if filter.Corpus != "" {
		clauses = append(clauses, "corpus = ?")
		args = append(args, filter.Corpus)
	}
	query := fmt.Sprintf(`SELECT id, created_at, layout_name, corpus, total
		FROM evaluations
		WHERE %s
		ORDER BY total ASC, created_at ASC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []Evaluation
	for rows.Next() {
		var ev Evaluation
		var createdAt string
		if err := rows.Scan(&ev.ID, &createdAt, &ev.Layout, &ev.Corpus, &ev.Total); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		ev.CreatedAt = parsed
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListEvaluationMetrics returns one evaluation's metric rows ordered by
// class then metric name.
func (s *Store) ListEvaluationMetrics(ctx context.Context, evaluationID int64) ([]MetricRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, class, raw, normalized, weighted
		 FROM evaluation_metrics
		 WHERE evaluation_id = ?
		 ORDER BY class, metric`, evaluationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []MetricRow
	for rows.Next() {
		var mr MetricRow
		if err := rows.Scan(&mr.Metric, &mr.Class, &mr.Raw, &mr.Normalized, &mr.Weighted); err != nil {
			return nil, err
		}
		result = append(result, mr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
