package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/paddock/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogFormat  string // "text" | "json"
	Database   string
	ConfigFile string

	// RunIDs overrides the run id generator used by init (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator

	viper  *viper.Viper
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the paddock CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.viper == nil {
		opts.viper = viper.New()
	}

	cmd := &cobra.Command{
		Use:   "paddock",
		Short: "paddock - motorsport management simulation",
		Long: `Run a motorsport world one day at a time: driver and part contracts,
race days, championship standings and team finances.

A game lives in a SQLite database. Create one from a CUE world definition
with "paddock init", advance it with "paddock run" and inspect it with
"paddock standings" and "paddock contracts". Scripted scenarios run
against throwaway games with "paddock test".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(opts.viper, opts.ConfigFile, cmd.ErrOrStderr()); err != nil {
				return WrapExitError(ExitCommandError, "failed to read config", err)
			}
			bindFlags(cmd, opts.viper, cmd.ErrOrStderr())

			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidFormats, opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.LogFormat, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format on stderr (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "paddock.db", "path to the game database")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default is $HOME/.paddock.yaml or ./.paddock.yaml)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStandingsCommand(opts))
	cmd.AddCommand(NewContractsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Logger returns the logger configured by the global flags.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) runIDs() engine.RunIDGenerator {
	if o.RunIDs == nil {
		return engine.UUIDv7Generator{}
	}
	return o.RunIDs
}
