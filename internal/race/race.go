// Package race turns a prepared grid into a finishing order, crashes and
// fatalities, and records one result row per entrant.
//
// The engine appends to Results and adjusts reputation and prize money of
// finishers. It never touches contracts: the caller receives the ids of
// drivers who died and propagates them.
package race

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// Outcome is the classification of one entrant.
type Outcome int

const (
	Good Outcome = iota
	Crash
	Death
)

func (o Outcome) String() string {
	switch o {
	case Good:
		return "good"
	case Crash:
		return "crash"
	case Death:
		return "death"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Entrant is one car on the grid with its combined attributes.
//
// Reliability and Safety are thresholds: a higher value makes failure
// (respectively death after a failure) more likely.
type Entrant struct {
	DriverID  int
	TeamID    int
	EngineID  int
	ChassisID int
	TyreID    int

	Speed       int
	Reliability int
	Safety      int
}

// Report summarises a simulated race.
type Report struct {
	RaceID    int
	Round     int
	Results   []entity.RaceResult
	Finishers []Entrant
	Died      []int
}

// Defaults for engine options.
const (
	DefaultFailureMultiplier = 10
	DefaultMoveUpProbability = 0.25
)

// Engine simulates races against a set of tables.
type Engine struct {
	tables *entity.Tables
	src    rng.Source
	logger *slog.Logger

	failureMultiplier int
	moveUp            float64
	teamReputation    bool
	prizeMoney        bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for race summaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithFailureMultiplier scales the first classification draw.
// Larger values make failures rarer.
func WithFailureMultiplier(m int) Option {
	return func(e *Engine) {
		if m > 0 {
			e.failureMultiplier = m
		}
	}
}

// WithMoveUpProbability sets the per-entrant chance of being picked next
// while building the finishing order.
func WithMoveUpProbability(p float64) Option {
	return func(e *Engine) {
		e.moveUp = p
	}
}

// WithTeamReputation controls whether teams earn reputation alongside drivers.
func WithTeamReputation(enabled bool) Option {
	return func(e *Engine) {
		e.teamReputation = enabled
	}
}

// WithPrizeMoney controls whether finisher teams are paid race rewards.
func WithPrizeMoney(enabled bool) Option {
	return func(e *Engine) {
		e.prizeMoney = enabled
	}
}

// New creates a race engine.
func New(tables *entity.Tables, src rng.Source, opts ...Option) *Engine {
	e := &Engine{
		tables:            tables,
		src:               src,
		logger:            slog.Default(),
		failureMultiplier: DefaultFailureMultiplier,
		moveUp:            DefaultMoveUpProbability,
		teamReputation:    true,
		prizeMoney:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify decides whether an entrant finishes, crashes or dies.
//
// A non-positive speed always crashes. Otherwise a draw in
// [0, speed*multiplier) below Reliability is a failure, and a second draw in
// [0, speed) below Safety turns the failure into a death.
func (e *Engine) Classify(en Entrant) Outcome {
	if en.Speed <= 0 {
		return Crash
	}
	fail := e.src.Float64() * float64(en.Speed*e.failureMultiplier)
	if fail >= float64(en.Reliability) {
		return Good
	}
	fatal := e.src.Float64() * float64(en.Speed)
	if fatal < float64(en.Safety) {
		return Death
	}
	return Crash
}

// Rank orders entrants by speed descending, ties by driver id.
func Rank(entrants []Entrant) []Entrant {
	ranked := slices.Clone(entrants)
	slices.SortStableFunc(ranked, func(a, b Entrant) int {
		if c := cmp.Compare(b.Speed, a.Speed); c != 0 {
			return c
		}
		return cmp.Compare(a.DriverID, b.DriverID)
	})
	return ranked
}

// FinishingOrder draws the order of finishers from a ranked pool.
// Each pick favours the front of what remains without guaranteeing it.
func (e *Engine) FinishingOrder(ranked []Entrant) []Entrant {
	pool := slices.Clone(ranked)
	order := make([]Entrant, 0, len(pool))
	for len(pool) > 0 {
		i := rng.FrontBiased(e.src, len(pool), e.moveUp)
		order = append(order, pool[i])
		pool = slices.Delete(pool, i, i+1)
	}
	return order
}

// Simulate runs a race over grid and records its results.
//
// An empty grid records nothing. A driver appearing twice is a state error.
func (e *Engine) Simulate(r *entity.Race, grid []Entrant) (*Report, error) {
	report := &Report{RaceID: r.ID, Results: []entity.RaceResult{}, Died: []int{}}
	if len(grid) == 0 {
		return report, nil
	}

	seen := mapset.NewThreadUnsafeSet[int]()
	for _, en := range grid {
		if !seen.Add(en.DriverID) {
			return nil, entity.NewStateError(entity.ErrCodeDuplicateActiveDriver,
				"driver appears twice on the grid", "race", r.ID, "driver", en.DriverID)
		}
	}

	if r.Championship {
		report.Round = e.tables.MaxRound(r.SeriesID, r.Season) + 1
	}

	outcomes := make(map[int]Outcome, len(grid))
	var good []Entrant
	for _, en := range grid {
		o := e.Classify(en)
		outcomes[en.DriverID] = o
		if o == Good {
			good = append(good, en)
		}
	}

	report.Finishers = e.FinishingOrder(Rank(good))
	positions := make(map[int]int, len(grid))
	for i, en := range report.Finishers {
		pos := i + 1
		positions[en.DriverID] = pos
		e.reward(r, en, pos)
	}

	for _, en := range grid {
		pos, ok := positions[en.DriverID]
		if !ok {
			pos = entity.PositionCrashed
			if outcomes[en.DriverID] == Death {
				pos = entity.PositionDied
				report.Died = append(report.Died, en.DriverID)
			}
		}
		report.Results = append(report.Results, entity.RaceResult{
			RaceID:    r.ID,
			SeriesID:  r.SeriesID,
			Season:    r.Season,
			Round:     report.Round,
			DriverID:  en.DriverID,
			TeamID:    en.TeamID,
			EngineID:  en.EngineID,
			ChassisID: en.ChassisID,
			TyreID:    en.TyreID,
			Position:  pos,
		})
	}
	e.tables.Results = append(e.tables.Results, report.Results...)

	e.logger.Debug("race simulated",
		"race", r.ID,
		"series", r.SeriesID,
		"round", report.Round,
		"entrants", len(grid),
		"finishers", len(report.Finishers),
		"died", len(report.Died))
	return report, nil
}

func (e *Engine) reward(r *entity.Race, en Entrant, pos int) {
	rep := r.ReputationWeight / pos
	if d, ok := e.tables.Drivers[en.DriverID]; ok {
		d.RaceReputation += rep
	}
	team, ok := e.tables.Teams[en.TeamID]
	if !ok {
		return
	}
	if e.teamReputation {
		team.Reputation += rep
	}
	if e.prizeMoney {
		team.Money += r.Reward / pos
	}
}
