package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/config"
	"github.com/roach88/paddock/internal/contract"
	"github.com/roach88/paddock/internal/engine"
	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/store"
)

// Harness is the scenario execution engine.
// It drives one game with a fixed run id and the world's own seed.
type Harness struct {
	engine  *engine.Engine
	logger  *slog.Logger
	pending *contract.Intake
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the world and build its initial tables
// 2. Simulate each day, queuing that day's decisions first
// 3. Save the final tables to the database
// 4. Evaluate assertions against the saved rows
//
// An error means the scenario could not run at all. Failed assertions are
// reported in the result instead.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	world, err := config.LoadWorld(scenario.World)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	tables, err := world.Tables()
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := scenario.RunID
	if runID == "" {
		runID = "scenario-" + scenario.Name
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	h := &Harness{
		engine: engine.New(tables, rng.ForSession(tables.Meta.Seed, tables.Meta.Date),
			engine.WithLogger(logger),
			engine.WithRunIDGenerator(engine.NewFixedGenerator(runID))),
		logger:  logger,
		pending: &contract.Intake{},
	}

	if err := h.simulate(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to simulate: %w", err)
	}

	digest, err := st.Save(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	result := NewResult()
	result.RunID = tables.Meta.RunID
	result.Date = h.engine.Today().Format(time.DateOnly)
	result.Digest = digest
	result.Races = len(lo.UniqBy(tables.Results, func(r entity.RaceResult) int { return r.RaceID }))
	result.Standings = h.latestStandings()

	if err := h.engine.Standings().CheckRounds(); err != nil {
		result.AddError(err.Error())
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// simulate steps through every day of the scenario.
func (h *Harness) simulate(ctx context.Context, scenario *Scenario) error {
	next := 0
	for day := 0; day < scenario.Days; day++ {
		if next < len(scenario.Decisions) && scenario.Decisions[next].Day == day {
			h.queue(scenario.Decisions[next].Intake)
			h.logger.Info("decisions queued", "day", day)
			next++
		}
		if err := h.engine.Step(ctx, h.pending); err != nil {
			return fmt.Errorf("day %d: %w", day, err)
		}
	}
	return nil
}

// queue adds decisions behind those still pending from earlier days.
func (h *Harness) queue(in contract.Intake) {
	h.pending.Drivers = appendAll(h.pending.Drivers, in.Drivers)
	h.pending.NextYear = appendAll(h.pending.NextYear, in.NextYear)
	h.pending.Parts = appendAll(h.pending.Parts, in.Parts)
	h.pending.Terminate = appendAll(h.pending.Terminate, in.Terminate)
}

func appendAll[T any](dst, src map[int][]T) map[int][]T {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[int][]T, len(src))
	}
	for teamID, list := range src {
		dst[teamID] = append(dst[teamID], list...)
	}
	return dst
}

// latestStandings collects the final table of every classification for
// each series' most recent championship season, in series id order.
func (h *Harness) latestStandings() []entity.Standing {
	seasons := make(map[int]int)
	for _, s := range h.engine.Tables().Standings {
		if s.Year > seasons[s.SeriesID] {
			seasons[s.SeriesID] = s.Year
		}
	}

	ids := lo.Keys(seasons)
	slices.Sort(ids)

	rows := []entity.Standing{}
	for _, seriesID := range ids {
		for _, st := range entity.SubjectTypes {
			rows = append(rows, h.engine.Standings().Table(seriesID, seasons[seriesID], st)...)
		}
	}
	return rows
}
