package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/paddock/internal/config"
	"github.com/roach88/paddock/internal/contract"
	"github.com/roach88/paddock/internal/engine"
	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Days      int
	Decisions string
}

// RunResult is the output of a run.
type RunResult struct {
	RunID       string `json:"run_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Days        int    `json:"days"`
	Races       int    `json:"races"`
	Interrupted bool   `json:"interrupted,omitempty"`
	Digest      string `json:"digest"`
}

func (r RunResult) renderText(w io.Writer) error {
	status := "✓ Simulated"
	if r.Interrupted {
		status = "! Interrupted after"
	}
	_, err := fmt.Fprintf(w, "%s %d day(s) of %s: %s to %s, %d race(s)\n",
		status, r.Days, r.RunID, r.From, r.To, r.Races)
	return err
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance the game by a number of days",
		Long: `Advance the saved game one day at a time and save it again.

Human team decisions are read from a YAML file keyed by team id. A team
without a decision leaves its slots open. Ctrl-C stops at the next day
boundary and saves the days already simulated.

Tunables are read from the "tunables" section of the config file.

Example:
  paddock run --db ./1950.db --days 30
  paddock run --db ./1950.db --days 7 --decisions ./week1.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 1, "number of days to simulate")
	cmd.Flags().StringVar(&opts.Decisions, "decisions", "", "YAML file with human team decisions")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.Logger()

	if opts.Days < 1 {
		return fail(f, ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--days must be positive, got %d", opts.Days), nil)
	}

	tunables, err := config.LoadTunables(opts.viper)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeBadFlag, "invalid tunables", err)
	}

	var intake *contract.Intake
	if opts.Decisions != "" {
		intake, err = config.LoadIntake(opts.Decisions)
		if err != nil {
			return fail(f, ExitCommandError, codeFor(err), "invalid decisions", err)
		}
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	st, tables, err := openGame(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.RootOptions)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping at day boundary", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	from := tables.Meta.Date
	resultsBefore := len(tables.Results)
	eng := engine.New(tables, rng.ForSession(tables.Meta.Seed, tables.Meta.Date),
		engine.WithLogger(logger),
		engine.WithConfig(tunables.EngineConfig()),
	)

	logger.Info("simulation starting", "run", tables.Meta.RunID, "date", from.Format("2006-01-02"), "days", opts.Days)
	runErr := eng.Run(ctx, opts.Days, intake)
	interrupted := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	if runErr != nil && !interrupted {
		// A failed day may have left partial writes; the saved game stays as it was.
		return fail(f, ExitFailure, codeFor(runErr), "simulation failed", runErr)
	}

	// Save on a fresh context so an interrupt still persists finished days.
	digest, err := st.Save(context.WithoutCancel(ctx), tables)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, "failed to save game", err)
	}

	to := eng.Today()
	logger.Info("simulation saved", "run", tables.Meta.RunID, "date", to.Format("2006-01-02"), "digest", digest)

	return f.SuccessForRun(tables.Meta.RunID, RunResult{
		RunID:       tables.Meta.RunID,
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		Days:        int(to.Sub(from).Hours() / 24),
		Races:       countRacesRun(tables.Results[resultsBefore:]),
		Interrupted: interrupted,
		Digest:      digest,
	})
}

// countRacesRun counts the distinct races among result rows.
func countRacesRun(results []entity.RaceResult) int {
	return len(lo.UniqBy(results, func(r entity.RaceResult) int { return r.RaceID }))
}
