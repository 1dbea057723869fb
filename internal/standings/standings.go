// Package standings turns championship race results into cumulative
// per-subject points tables.
//
// Each championship race produces one round. Every subject type (driver,
// team, engine, chassis, tyre) gets a full table for that round: subjects
// from the previous round that did not race are carried forward with their
// points unchanged.
package standings

import (
	"cmp"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
)

// Engine appends standings to a set of tables.
type Engine struct {
	tables *entity.Tables
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates a standings engine.
func New(tables *entity.Tables, opts ...Option) *Engine {
	e := &Engine{tables: tables, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply records the standings produced by a championship race.
//
// results are the rows the race produced; they all carry the race's round.
// The round must follow the latest recorded round for the series season,
// otherwise a ROUND_GAP state error is returned and nothing is appended.
func (e *Engine) Apply(r *entity.Race, results []entity.RaceResult) ([]entity.Standing, error) {
	if !r.Championship || len(results) == 0 {
		return []entity.Standing{}, nil
	}

	round := results[0].Round
	prior := e.LatestRound(r.SeriesID, r.Season)
	if round != prior+1 {
		return nil, entity.NewStateError(entity.ErrCodeRoundGap, "championship round out of sequence",
			"series", r.SeriesID, "season", r.Season, "round", round, "latest", prior)
	}

	var points []int
	if rule, ok := e.tables.RuleFor(r.SeriesID, r.Season); ok {
		points = rule.PointSystem
	} else {
		e.logger.Debug("no rule for championship race, awarding no points",
			"race", r.ID, "series", r.SeriesID, "season", r.Season)
	}
	scoring := &entity.SeriesRule{PointSystem: points}

	var rows []entity.Standing
	for _, st := range entity.SubjectTypes {
		rows = append(rows, e.tableFor(r, st, round, prior, scoring, results)...)
	}
	e.tables.Standings = append(e.tables.Standings, rows...)

	e.logger.Debug("standings updated",
		"series", r.SeriesID,
		"season", r.Season,
		"round", round,
		"rows", len(rows))
	return rows, nil
}

func (e *Engine) tableFor(r *entity.Race, st entity.SubjectType, round, prior int, scoring *entity.SeriesRule, results []entity.RaceResult) []entity.Standing {
	totals := make(map[int]int)
	if prior > 0 {
		for _, s := range e.rowsAt(r.SeriesID, r.Season, st, prior) {
			totals[s.SubjectID] = s.Points
		}
	}

	present := mapset.NewThreadUnsafeSet[int]()
	for i := range results {
		id := results[i].SubjectID(st)
		if id == 0 {
			continue
		}
		present.Add(id)
		totals[id] += scoring.Points(results[i].Position)
	}

	rows := make([]entity.Standing, 0, len(totals))
	for id, pts := range totals {
		rows = append(rows, entity.Standing{
			SeriesID:    r.SeriesID,
			Year:        r.Season,
			SubjectType: st,
			SubjectID:   id,
			Round:       round,
			Points:      pts,
		})
	}
	sortTable(rows)
	return rows
}

// sortTable orders by points descending, then subject id, and assigns
// 1-based positions.
func sortTable(rows []entity.Standing) {
	slices.SortFunc(rows, func(a, b entity.Standing) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.SubjectID, b.SubjectID)
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}

func (e *Engine) rowsAt(seriesID, year int, st entity.SubjectType, round int) []entity.Standing {
	return lo.Filter(e.tables.Standings, func(s entity.Standing, _ int) bool {
		return s.SeriesID == seriesID && s.Year == year && s.SubjectType == st && s.Round == round
	})
}

// LatestRound returns the most recent standings round of a series season,
// or 0 before the first championship race.
func (e *Engine) LatestRound(seriesID, year int) int {
	latest := 0
	for i := range e.tables.Standings {
		s := &e.tables.Standings[i]
		if s.SeriesID == seriesID && s.Year == year && s.Round > latest {
			latest = s.Round
		}
	}
	return latest
}

// Table returns the latest standings of one subject type, by position.
func (e *Engine) Table(seriesID, year int, st entity.SubjectType) []entity.Standing {
	round := e.LatestRound(seriesID, year)
	if round == 0 {
		return []entity.Standing{}
	}
	rows := e.rowsAt(seriesID, year, st, round)
	slices.SortFunc(rows, func(a, b entity.Standing) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return rows
}

// CheckRounds verifies that every series season subject type carries the
// dense round sequence 1..N.
func (e *Engine) CheckRounds() error {
	type key struct {
		series, year int
		st           entity.SubjectType
	}
	rounds := make(map[key]mapset.Set[int])
	for _, s := range e.tables.Standings {
		k := key{s.SeriesID, s.Year, s.SubjectType}
		if rounds[k] == nil {
			rounds[k] = mapset.NewThreadUnsafeSet[int]()
		}
		rounds[k].Add(s.Round)
	}
	for k, set := range rounds {
		n := set.Cardinality()
		for r := 1; r <= n; r++ {
			if !set.Contains(r) {
				return entity.NewStateError(entity.ErrCodeRoundGap, "standings rounds are not dense",
					"series", k.series, "year", k.year, "subject_type", k.st, "missing", r)
			}
		}
	}
	return nil
}
