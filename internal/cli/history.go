package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhoram/dutbench/internal/report"
	"github.com/mhoram/dutbench/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Session  string
}

// HistoryResult holds the listed sessions for JSON output.
type HistoryResult struct {
	Sessions []store.SessionRecord `json:"sessions"`
	Outcomes []report.Outcome      `json:"outcomes,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted sessions",
		Long: `List sessions persisted by 'run --db', newest first.

With --session, show the per-vector outcomes of one session in report
order instead.

Exit codes:
  0 - Listed without problems
  2 - Command error (database not found, unknown session, etc.)

Examples:
  dutbench history --db ./dutbench.db
  dutbench history --db ./dutbench.db --limit 5
  dutbench history --db ./dutbench.db --session 0190cafe-...
  dutbench history --db ./dutbench.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum sessions to list (0 = all)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show outcomes of one session token")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if opts.Session != "" {
		outcomes, err := st.Outcomes(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read outcomes", err)
		}
		if len(outcomes) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("no outcomes for session %s", opts.Session))
		}
		if opts.Format == "json" {
			return outputJSON(w, HistoryResult{Outcomes: outcomes})
		}
		for _, o := range outcomes {
			mark := "✓"
			if o.Status != report.StatusCompleted {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s %s (0x%02X, 0x%02X) %s [%d edges]\n",
				mark, o.Label, o.InputA, o.InputB, o.Status, o.Edges)
		}
		return nil
	}

	sessions, err := st.Sessions(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}
	if opts.Format == "json" {
		return outputJSON(w, HistoryResult{Sessions: sessions})
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, rec := range sessions {
		verdict := "PASS"
		if !rec.Passed {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s  %s  %d vectors, %d failed: %s\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Token, rec.Suite, rec.Vectors, rec.Failures, verdict)
	}
	return nil
}
