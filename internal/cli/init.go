package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/paddock/internal/config"
	"github.com/roach88/paddock/internal/engine"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
}

// InitResult is the output of a successful init.
type InitResult struct {
	RunID   string `json:"run_id"`
	Start   string `json:"start"`
	Seed    int64  `json:"seed"`
	Series  int    `json:"series"`
	Teams   int    `json:"teams"`
	Drivers int    `json:"drivers"`
	Digest  string `json:"digest"`
}

func (r InitResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ Created game %s starting %s (%d series, %d teams, %d drivers)\n",
		r.RunID, r.Start, r.Series, r.Teams, r.Drivers)
	return err
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <world>",
		Short: "Create a game from a world definition",
		Long: `Create a new game from a CUE world definition and save it to the database.

The world is a .cue file, or a directory holding one CUE package, checked
against the built-in #World schema. An existing game is only replaced
with --force.

Example:
  paddock init --db ./1950.db ./worlds/1950
  paddock init --db ./1950.db --force ./worlds/1950/world.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "replace an existing game")

	return cmd
}

func runInit(ctx context.Context, opts *InitOptions, worldPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.Logger()

	world, err := config.LoadWorld(worldPath)
	if err != nil {
		return fail(f, ExitCommandError, codeFor(err), "invalid world", err)
	}
	tables, err := world.Tables()
	if err != nil {
		return fail(f, ExitCommandError, codeFor(err), "invalid world", err)
	}
	f.VerboseLog("Loaded world %s: %d series, %d teams, %d drivers", worldPath, len(tables.Series), len(tables.Teams), len(tables.Drivers))

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer closeStore(st, opts.RootOptions)

	existing, err := st.StoredDigest(ctx)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeDatabase, "failed to read database", err)
	}
	if existing != "" && !opts.Force {
		return fail(f, ExitCommandError, ErrCodeGameExists,
			fmt.Sprintf("%s already holds a game (use --force to replace it)", opts.Database), nil)
	}

	// New stamps the run id and the start date on the tables.
	engine.New(tables, rng.New(tables.Meta.Seed),
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(opts.runIDs()),
	)

	digest, err := st.Save(ctx, tables)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, "failed to save game", err)
	}
	logger.Info("game created", "run", tables.Meta.RunID, "db", opts.Database, "digest", digest)

	return f.SuccessForRun(tables.Meta.RunID, InitResult{
		RunID:   tables.Meta.RunID,
		Start:   tables.Meta.Date.Format("2006-01-02"),
		Seed:    tables.Meta.Seed,
		Series:  len(tables.Series),
		Teams:   len(tables.Teams),
		Drivers: len(tables.Drivers),
		Digest:  digest,
	})
}
