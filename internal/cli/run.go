package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhoram/dutbench/internal/dut"
	"github.com/mhoram/dutbench/internal/engine"
	"github.com/mhoram/dutbench/internal/store"
	"github.com/mhoram/dutbench/internal/suite"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Period   time.Duration
	Trace    bool
	Latency  int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [suite.yaml]",
		Short: "Run a verification suite against the behavioral core",
		Long: `Run a suite of test vectors against the built-in behavioral core.

Without a suite file the built-in reference vectors are run. Each vector
is reset, stimulated, and polled for readiness under a bounded timeout;
the session report lists every outcome in input order.

Exit codes:
  0 - All vectors completed
  1 - One or more vectors timed out
  2 - Command error (unreadable suite, invalid definition, etc.)

Examples:
  dutbench run
  dutbench run suites/smoke.yaml
  dutbench run suites/smoke.yaml --db ./dutbench.db --trace
  dutbench run suites/smoke.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSuite(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the session to this SQLite database")
	cmd.Flags().DurationVar(&opts.Period, "period", engine.DefaultPeriod, "clock period")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "dump the edge-stamped trace after the report")
	cmd.Flags().IntVar(&opts.Latency, "sim-latency", dut.DefaultLatency, "behavioral core latency in cycles")

	return cmd
}

func runSuite(opts *RunOptions, path string, cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	s, err := loadSuiteArg(path)
	if err != nil {
		return err
	}

	dev := dut.NewSimCore(dut.WithLatency(opts.Latency))
	clk := engine.NewClock(dev, opts.Period)
	eng := engine.New(dev, clk, engine.WithLogger(logger))

	// The clock free-runs until its context is cancelled; stop it once
	// the session is over.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess, err := eng.RunSuite(ctx, s)
	if err != nil {
		return WrapExitError(ExitCommandError, "suite run aborted", err)
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		if err := st.SaveSession(cmd.Context(), sess); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist session", err)
		}
		logger.Info("session persisted", "db", opts.Database, "token", sess.Token)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := outputJSON(w, sess); err != nil {
			return err
		}
	} else {
		if err := sess.WriteText(w); err != nil {
			return err
		}
		if opts.Trace {
			data, err := sess.TraceJSON()
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
		}
	}

	if !sess.Passed {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d vectors failed", sess.Failures(), len(sess.Outcomes)))
	}
	return nil
}

// loadSuiteArg loads the suite file, or the built-in reference suite
// when no path is given.
func loadSuiteArg(path string) (*suite.Suite, error) {
	if path == "" {
		return suite.Reference(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("suite file not found: %s", path))
	}
	s, err := suite.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load suite", err)
	}
	return s, nil
}
