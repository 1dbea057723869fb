package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/paddock/internal/contract"
	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/race"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/schedule"
	"github.com/roach88/paddock/internal/standings"
)

// Config holds the day-loop tunables and those of every component.
type Config struct {
	// ActivationYear is the first season with planned races. Earlier
	// seasons only age drivers, sign contracts and develop parts.
	ActivationYear int

	// AbilityMin and AbilityMax bound driver ability.
	AbilityMin int
	AbilityMax int

	// AbilityDrift is the largest yearly ability change. Drivers younger
	// than PeakAge improve, older ones decline.
	AbilityDrift int
	PeakAge      int

	// PartDelta is the largest yearly change of a part attribute.
	PartDelta int

	// FailureScale and DeathScale turn contracted part reliability and
	// combined part and layout safety into race thresholds. Higher
	// attributes give lower thresholds.
	FailureScale int
	DeathScale   int

	// DebtReset is the balance a bankrupt team restarts with.
	DebtReset int

	FailureMultiplier int
	MoveUpProbability float64

	Contract contract.Config
	Schedule schedule.Config
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		ActivationYear:    1950,
		AbilityMin:        1,
		AbilityMax:        100,
		AbilityDrift:      3,
		PeakAge:           30,
		PartDelta:         5,
		FailureScale:      6000,
		DeathScale:        240,
		DebtReset:         0,
		FailureMultiplier: race.DefaultFailureMultiplier,
		MoveUpProbability: race.DefaultMoveUpProbability,
		Contract:          contract.DefaultConfig(),
		Schedule:          schedule.DefaultConfig(),
	}
}

// Engine is the single-writer day loop.
//
// Thread-safety model:
//   - Step() and Run(): must be called from exactly one goroutine
//   - The tables must not be touched by anyone else while a run is active
type Engine struct {
	tables    *entity.Tables
	src       rng.Source
	logger    *slog.Logger
	cfg       Config
	clock     *Clock
	runIDs    RunIDGenerator
	generator Generator

	contracts *contract.Engine
	races     *race.Engine
	standings *standings.Engine
	scheduler *schedule.Scheduler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithConfig replaces the tunables.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithGenerator sets the source of new drivers and parts.
func WithGenerator(g Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// New creates an engine over tables.
//
// Tables without a date start on January 1st of ActivationYear. Tables
// without a run id get a fresh one.
func New(tables *entity.Tables, src rng.Source, opts ...Option) *Engine {
	e := &Engine{
		tables: tables,
		src:    src,
		logger: slog.Default(),
		cfg:    DefaultConfig(),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.clock = NewClock(&tables.Meta, time.Date(e.cfg.ActivationYear, time.January, 1, 0, 0, 0, 0, time.UTC))
	if tables.Meta.RunID == "" {
		tables.Meta.RunID = e.runIDs.Generate()
	}
	e.logger = e.logger.With("run", tables.Meta.RunID)

	e.contracts = contract.New(tables, src,
		contract.WithLogger(e.logger),
		contract.WithConfig(e.cfg.Contract))
	e.races = race.New(tables, src,
		race.WithLogger(e.logger),
		race.WithFailureMultiplier(e.cfg.FailureMultiplier),
		race.WithMoveUpProbability(e.cfg.MoveUpProbability))
	e.standings = standings.New(tables, standings.WithLogger(e.logger))
	e.scheduler = schedule.New(tables, src,
		schedule.WithLogger(e.logger),
		schedule.WithConfig(e.cfg.Schedule))
	return e
}

// Tables returns the tables the engine writes.
func (e *Engine) Tables() *entity.Tables {
	return e.tables
}

// Today returns the next day Step will simulate.
func (e *Engine) Today() time.Time {
	return e.clock.Today()
}

// Contracts returns the contract engine, for human actions between days.
func (e *Engine) Contracts() *contract.Engine {
	return e.contracts
}

// Standings returns the standings engine.
func (e *Engine) Standings() *standings.Engine {
	return e.standings
}

// Step simulates one day and advances the clock.
//
// Decisions in intake are consumed as they are used; leftovers stay in
// intake for later days. A nil intake means no human decisions.
//
// On error the clock does not advance and the tables must be discarded.
func (e *Engine) Step(ctx context.Context, intake *contract.Intake) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	today := e.clock.Today()
	year := today.Year()

	if IsSeasonStart(today) {
		if err := e.startSeason(year); err != nil {
			return e.fail(PhaseSeasonStart, today, err)
		}
	}

	if err := e.sign(today, intake); err != nil {
		return e.fail(PhaseSigning, today, err)
	}

	if err := e.raceDay(today); err != nil {
		return e.fail(PhaseRaces, today, err)
	}

	if err := e.contracts.ProcessOffers(today); err != nil {
		return e.fail(PhaseOffers, today, err)
	}

	if IsMonthStart(today) {
		e.checkDebt()
	}

	e.clock.Advance()
	return nil
}

// Run simulates days consecutive days. Cancellation is honoured between
// days, never inside one.
func (e *Engine) Run(ctx context.Context, days int, intake *contract.Intake) error {
	start := e.clock.Today()
	e.logger.Info("run starting", "date", start.Format(time.DateOnly), "days", days)

	for i := 0; i < days; i++ {
		if err := e.Step(ctx, intake); err != nil {
			return err
		}
	}

	e.logger.Info("run finished",
		"from", start.Format(time.DateOnly),
		"to", e.clock.Today().Format(time.DateOnly),
		"results", len(e.tables.Results))
	return nil
}

func (e *Engine) sign(today time.Time, intake *contract.Intake) error {
	if err := e.contracts.SignDrivers(today, intake); err != nil {
		return err
	}
	if err := e.contracts.SignParts(today, intake); err != nil {
		return err
	}
	if err := e.contracts.SignAhead(today, intake); err != nil {
		return err
	}
	return e.contracts.CheckDrivers(today.Year())
}

func (e *Engine) fail(phase Phase, date time.Time, err error) error {
	e.logger.Error("day aborted",
		"phase", phase,
		"date", date.Format(time.DateOnly),
		"error", err)
	return &StepError{Phase: phase, Date: date, RunID: e.tables.Meta.RunID, Err: err}
}
