package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mhoram/dutbench/internal/report"
)

// SaveSession writes a finalized session and its outcomes in one
// transaction. Outcome rows keep their execution position so report
// order survives the round trip. Saving the same token twice is an
// error; tokens are unique per run.
func (s *Store) SaveSession(ctx context.Context, sess *report.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions
		(token, suite, started_at, finished_at, passed, vectors, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sess.Token,
		sess.Suite,
		sess.StartedAt.UTC().Format(time.RFC3339Nano),
		sess.FinishedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(sess.Passed),
		len(sess.Outcomes),
		sess.Failures(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	for i, o := range sess.Outcomes {
		var result any
		if o.Status == report.StatusCompleted {
			result = int64(o.Result)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outcomes
			(session_token, position, label, input_a, input_b, status, result, edges)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			sess.Token, i, o.Label, o.InputA, o.InputB, string(o.Status), result, o.Edges,
		)
		if err != nil {
			return fmt.Errorf("save outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
