package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/paddock/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Decisions string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid         bool   `json:"valid"`
	Start         string `json:"start"`
	Series        int    `json:"series"`
	Rules         int    `json:"rules"`
	Tracks        int    `json:"tracks"`
	Manufacturers int    `json:"manufacturers"`
	Parts         int    `json:"parts"`
	Teams         int    `json:"teams"`
	Drivers       int    `json:"drivers"`
	Decisions     int    `json:"decisions,omitempty"`
}

func (r ValidationResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ World valid: starts %s with %d series, %d teams, %d drivers, %d parts\n",
		r.Start, r.Series, r.Teams, r.Drivers, r.Parts)
	if err == nil && r.Decisions > 0 {
		_, err = fmt.Fprintf(w, "✓ %d decision(s) readable\n", r.Decisions)
	}
	return err
}

// ValidationErrorDetails locates a world error.
type ValidationErrorDetails struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <world>",
		Short: "Validate a world definition without creating a game",
		Long: `Validate a CUE world definition without touching any database.

Performs schema validation against #World, cross-reference checks and a
dry build of the initial tables. With --decisions, a decisions file is
parsed as well.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Decisions, "decisions", "", "YAML decisions file to check as well")

	return cmd
}

func runValidate(opts *ValidateOptions, worldPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	world, err := config.LoadWorld(worldPath)
	if err != nil {
		return outputValidateError(f, err)
	}
	f.VerboseLog("World %s matches the schema", worldPath)

	tables, err := world.Tables()
	if err != nil {
		return outputValidateError(f, err)
	}

	result := ValidationResult{
		Valid:         true,
		Start:         world.Start,
		Series:        len(tables.Series),
		Rules:         len(tables.Rules),
		Tracks:        len(tables.Tracks),
		Manufacturers: len(tables.Manufacturers),
		Parts:         len(tables.Parts),
		Teams:         len(tables.Teams),
		Drivers:       len(tables.Drivers),
	}

	if opts.Decisions != "" {
		intake, err := config.LoadIntake(opts.Decisions)
		if err != nil {
			return outputValidateError(f, err)
		}
		result.Decisions = countDecisions(intake.Drivers) + countDecisions(intake.NextYear) + countDecisions(intake.Parts) + countDecisions(intake.Terminate)
	}

	return f.Success(result)
}

func countDecisions[T any](m map[int][]T) int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}

func outputValidateError(f *OutputFormatter, err error) error {
	code := codeFor(err)
	message := err.Error()
	var details any
	var le *config.LoadError
	if errors.As(err, &le) {
		message = le.Message
		if d := positionDetails(le.Pos); d != nil {
			details = d
		}
	}

	if outErr := f.Error(code, message, details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: validation failed", code), err)
}

func positionDetails(pos token.Pos) *ValidationErrorDetails {
	if !pos.IsValid() {
		return nil
	}
	return &ValidationErrorDetails{File: pos.Filename(), Line: pos.Line(), Column: pos.Column()}
}
