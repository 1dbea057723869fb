package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/ir"
	"github.com/roach88/paddock/internal/standings"
)

// StandingsOptions holds flags for the standings command.
type StandingsOptions struct {
	*RootOptions
	SeriesID int
	Year     int
	Type     string
}

// StandingRow is one line of a championship table.
type StandingRow struct {
	Position  int    `json:"position"`
	SubjectID int    `json:"subject_id"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
}

// SeriesStandings is the latest table of one series season.
type SeriesStandings struct {
	SeriesID int           `json:"series_id"`
	Series   string        `json:"series"`
	Year     int           `json:"year"`
	Type     string        `json:"type"`
	Round    int           `json:"round"`
	Rows     []StandingRow `json:"rows"`
	Digest   string        `json:"digest"`
}

// StandingsResult is the output of the standings command.
type StandingsResult struct {
	Tables []SeriesStandings `json:"tables"`
}

func (r StandingsResult) renderText(w io.Writer) error {
	if len(r.Tables) == 0 {
		_, err := fmt.Fprintln(w, "No championship rounds run yet.")
		return err
	}
	for i, t := range r.Tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %d, %s standings after round %d\n", t.Series, t.Year, t.Type, t.Round)
		rows := lo.Map(t.Rows, func(row StandingRow, _ int) []string {
			return []string{strconv.Itoa(row.Position), row.Name, strconv.Itoa(row.Points)}
		})
		if err := writeTable(w, []string{"pos", "name", "points"}, rows); err != nil {
			return err
		}
	}
	return nil
}

// NewStandingsCommand creates the standings command.
func NewStandingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StandingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Show championship standings",
		Long: `Show the latest championship table of each series.

Without --year the most recent season with a championship round is shown.
Each table carries a content digest, so two games can be compared without
dumping them.

Example:
  paddock standings --db ./1950.db
  paddock standings --db ./1950.db --series 1 --year 1951 --type team`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandings(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.SeriesID, "series", 0, "series id (default all series)")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "season (default latest with results)")
	cmd.Flags().StringVar(&opts.Type, "type", string(entity.SubjectDriver), "classification (driver|team|engine|chassis|tyre)")

	return cmd
}

func runStandings(opts *StandingsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	st := entity.SubjectType(opts.Type)
	if !slices.Contains(entity.SubjectTypes, st) {
		return fail(f, ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("unknown classification %q", opts.Type), nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, tables, err := openGame(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer closeStore(store, opts.RootOptions)

	if opts.SeriesID != 0 {
		if _, ok := tables.Series[opts.SeriesID]; !ok {
			return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("series %d not found", opts.SeriesID), nil)
		}
	}

	eng := standings.New(tables, standings.WithLogger(opts.Logger()))
	result := StandingsResult{Tables: []SeriesStandings{}}
	for _, s := range entity.Sorted(tables.Series) {
		if opts.SeriesID != 0 && s.ID != opts.SeriesID {
			continue
		}
		year := opts.Year
		if year == 0 {
			year = latestSeason(tables, s.ID)
		}
		round := eng.LatestRound(s.ID, year)
		if round == 0 {
			continue
		}
		table, err := buildStandings(tables, eng, s, year, st)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeGeneric, "failed to digest standings", err)
		}
		table.Round = round
		result.Tables = append(result.Tables, table)
	}

	return f.SuccessForRun(tables.Meta.RunID, result)
}

func buildStandings(tables *entity.Tables, eng *standings.Engine, s *entity.Series, year int, st entity.SubjectType) (SeriesStandings, error) {
	rows := eng.Table(s.ID, year, st)
	digest, err := ir.Digest(ir.DomainStandings, rows)
	if err != nil {
		return SeriesStandings{}, err
	}
	return SeriesStandings{
		SeriesID: s.ID,
		Series:   s.Name,
		Year:     year,
		Type:     string(st),
		Rows: lo.Map(rows, func(row entity.Standing, _ int) StandingRow {
			return StandingRow{
				Position:  row.Position,
				SubjectID: row.SubjectID,
				Name:      subjectName(tables, st, row.SubjectID),
				Points:    row.Points,
			}
		}),
		Digest: digest,
	}, nil
}

// latestSeason returns the last season of a series with standings, or 0.
func latestSeason(tables *entity.Tables, seriesID int) int {
	year := 0
	for _, s := range tables.Standings {
		if s.SeriesID == seriesID && s.Year > year {
			year = s.Year
		}
	}
	return year
}

// subjectName names a classified subject. Parts are named after their
// manufacturer.
func subjectName(tables *entity.Tables, st entity.SubjectType, id int) string {
	switch st {
	case entity.SubjectDriver:
		if d, ok := tables.Drivers[id]; ok {
			return d.Name
		}
	case entity.SubjectTeam:
		if t, ok := tables.Teams[id]; ok {
			return t.Name
		}
	default:
		if p, ok := tables.Parts[id]; ok {
			if m, ok := tables.Manufacturers[p.ManufacturerID]; ok {
				return m.Name
			}
		}
	}
	return fmt.Sprintf("#%d", id)
}
