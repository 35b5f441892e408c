package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhoram/dutbench/internal/report"
)

// SessionRecord is a stored session summary.
type SessionRecord struct {
	Token      string    `json:"token"`
	Suite      string    `json:"suite"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Passed     bool      `json:"passed"`
	Vectors    int       `json:"vectors"`
	Failures   int       `json:"failures"`
}

// Sessions returns stored session summaries, newest first. A limit of 0
// returns everything.
func (s *Store) Sessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	q := `
		SELECT token, suite, started_at, finished_at, passed, vectors, failures
		FROM sessions
		ORDER BY started_at DESC, token DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started, finished string
		var passed int
		if err := rows.Scan(&rec.Token, &rec.Suite, &started, &finished,
			&passed, &rec.Vectors, &rec.Failures); err != nil {
			return nil, fmt.Errorf("read sessions: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("read sessions: bad started_at %q: %w", started, err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("read sessions: bad finished_at %q: %w", finished, err)
		}
		rec.Passed = passed != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Outcomes returns the stored outcomes of one session in execution
// order.
func (s *Store) Outcomes(ctx context.Context, token string) ([]report.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, input_a, input_b, status, result, edges
		FROM outcomes
		WHERE session_token = ?
		ORDER BY position
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	defer rows.Close()

	var out []report.Outcome
	for rows.Next() {
		var o report.Outcome
		var status string
		var result sql.NullInt64
		if err := rows.Scan(&o.Label, &o.InputA, &o.InputB, &status, &result, &o.Edges); err != nil {
			return nil, fmt.Errorf("read outcomes: %w", err)
		}
		o.Status = report.Status(status)
		if result.Valid {
			o.Result = uint8(result.Int64)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
