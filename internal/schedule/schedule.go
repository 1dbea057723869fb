// Package schedule plans each season's races: dates, championship status,
// venue and weather.
package schedule

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// Config holds the calendar tunables.
type Config struct {
	// Weekday is the day of the week races run on.
	Weekday time.Weekday

	// StartMonth/StartDay and EndMonth/EndDay bound the season window.
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int

	// MinChampionshipYear is the first season whose races can count
	// toward a championship.
	MinChampionshipYear int

	// WetOdds gives a 1-in-WetOdds chance of a wet race, with wetness
	// drawn from [WetMin, WetMax] percent.
	WetOdds int
	WetMin  int
	WetMax  int
}

// DefaultConfig returns the stock calendar.
func DefaultConfig() Config {
	return Config{
		Weekday:             time.Sunday,
		StartMonth:          time.March,
		StartDay:            1,
		EndMonth:            time.November,
		EndDay:              30,
		MinChampionshipYear: 1950,
		WetOdds:             8,
		WetMin:              110,
		WetMax:              150,
	}
}

// Scheduler creates races in a set of tables.
type Scheduler struct {
	tables *entity.Tables
	src    rng.Source
	logger *slog.Logger
	cfg    Config
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithConfig replaces the calendar tunables.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg
	}
}

// New creates a scheduler.
func New(tables *entity.Tables, src rng.Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		tables: tables,
		src:    src,
		logger: slog.Default(),
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RaceDates returns every configured weekday inside the season window.
func (s *Scheduler) RaceDates(year int) []time.Time {
	start := time.Date(year, s.cfg.StartMonth, s.cfg.StartDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, s.cfg.EndMonth, s.cfg.EndDay, 0, 0, 0, 0, time.UTC)
	offset := (int(s.cfg.Weekday) - int(start.Weekday()) + 7) % 7
	dates := []time.Time{}
	for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

// SpreadIndices picks count indices of a pool of n as evenly as possible,
// in ascending order. Index i of the result is round(i*(n-1)/(count-1)).
// When count exceeds n, indices are reused round-robin.
func SpreadIndices(n, count int) []int {
	if n <= 0 || count <= 0 {
		return []int{}
	}
	if count > n {
		out := make([]int, count)
		for i := range out {
			out[i] = i % n
		}
		slices.Sort(out)
		return out
	}
	if count == 1 {
		return []int{0}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = int(math.Round(float64(i*(n-1)) / float64(count-1)))
	}
	return out
}

// Spread picks count elements of pool as evenly as possible.
func Spread[T any](pool []T, count int) []T {
	return lo.Map(SpreadIndices(len(pool), count), func(i, _ int) T {
		return pool[i]
	})
}

// PlanSeason creates the races of year for every active series with a
// rule. Series without a rule, without any track, or already planned for
// year are skipped.
func (s *Scheduler) PlanSeason(year int) ([]*entity.Race, error) {
	pool := s.RaceDates(year)
	tracks := lo.Filter(entity.Sorted(s.tables.Tracks), func(t *entity.Track, _ int) bool {
		return len(s.tables.LayoutsOf(t.ID)) > 0
	})
	planned := []*entity.Race{}

	for _, series := range s.tables.ActiveSeries(year) {
		rule, ok := s.tables.RuleFor(series.ID, year)
		if !ok {
			s.logger.Debug("no rule for series, no races", "series", series.ID, "year", year)
			continue
		}
		if s.alreadyPlanned(series.ID, year) {
			s.logger.Debug("season already planned", "series", series.ID, "year", year)
			continue
		}
		if len(tracks) == 0 {
			s.logger.Info("no tracks with layouts, no races", "series", series.ID, "year", year)
			continue
		}

		champCount := rule.ChampionshipRaces
		if year < s.cfg.MinChampionshipYear {
			champCount = 0
		}
		dates := Spread(pool, rule.ChampionshipRaces+rule.NonChampionshipRaces)
		champ := lo.SliceToMap(SpreadIndices(len(dates), champCount), func(i int) (int, bool) {
			return i, true
		})

		for i, date := range dates {
			r, err := s.plan(series, rule, year, date, champ[i], tracks)
			if err != nil {
				return nil, err
			}
			planned = append(planned, r)
		}
		s.logger.Info("season planned",
			"series", series.ID,
			"year", year,
			"races", len(dates),
			"championship", len(champ))
	}
	return planned, nil
}

func (s *Scheduler) plan(series *entity.Series, rule *entity.SeriesRule, year int, date time.Time, championship bool, tracks []*entity.Track) (*entity.Race, error) {
	track, _ := rng.Pick(s.src, tracks)
	layout, _ := rng.Pick(s.src, s.tables.LayoutsOf(track.ID))

	wetness := entity.DryWetness
	if s.cfg.WetOdds > 0 && s.src.IntN(s.cfg.WetOdds) == 0 {
		wetness = rng.Between(s.src, s.cfg.WetMin, s.cfg.WetMax)
	}

	weight, reward := series.Reputation, rule.RaceReward
	if !championship {
		weight, reward = weight/2, reward/2
	}
	r := &entity.Race{
		SeriesID:         series.ID,
		Season:           year,
		TrackID:          track.ID,
		LayoutID:         layout.ID,
		Date:             date,
		Championship:     championship,
		ReputationWeight: weight,
		Reward:           reward,
		Wetness:          wetness,
		Safety:           layout.Safety,
	}
	if err := s.tables.AddRace(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Scheduler) alreadyPlanned(seriesID, year int) bool {
	for _, r := range s.tables.Races {
		if r.SeriesID == seriesID && r.Season == year {
			return true
		}
	}
	return false
}
