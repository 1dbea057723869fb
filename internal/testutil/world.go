package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/entity"
)

// FixtureYear is the season fixture worlds start in.
const FixtureYear = 1950

// World builds small fixture tables for tests.
//
// Example:
//
//	tbl := testutil.NewWorld(t).
//		Series(1, 50, entity.SeriesRule{MaxCars: 2}).
//		Team(1, 1, entity.AIOwner, 10).
//		Driver(1, 1925, 0).
//		Tables()
type World struct {
	t      testing.TB
	tables *entity.Tables
}

// NewWorld creates an empty world dated January 1st of FixtureYear.
func NewWorld(t testing.TB) *World {
	t.Helper()
	tbl := entity.NewTables()
	tbl.Meta.Date = time.Date(FixtureYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	tbl.Meta.Seed = 1
	return &World{t: t, tables: tbl}
}

// Series adds an open-ended series with one rule. Zero rule fields get
// fixture defaults: ages 18..40, points 8-6-4.
func (w *World) Series(id, reputation int, rule entity.SeriesRule) *World {
	w.t.Helper()
	require.NoError(w.t, w.tables.AddSeries(&entity.Series{
		ID: id, Name: "Series", Reputation: reputation, FirstYear: 1900,
	}))
	rule.SeriesID = id
	if rule.FromYear == 0 {
		rule.FromYear = 1900
	}
	if rule.MinAge == 0 {
		rule.MinAge = 18
	}
	if rule.MaxAge == 0 {
		rule.MaxAge = 40
	}
	if rule.PointSystem == nil {
		rule.PointSystem = []int{8, 6, 4}
	}
	w.tables.Rules = append(w.tables.Rules, rule)
	return w
}

// Team adds a team founded long before the fixture year.
func (w *World) Team(id, seriesID, ownerID, reputation int) *World {
	w.t.Helper()
	require.NoError(w.t, w.tables.AddTeam(&entity.Team{
		ID: id, Name: "Team", OwnerID: ownerID, SeriesID: seriesID,
		Reputation: reputation, FoundedYear: 1900,
	}))
	return w
}

// Driver adds a living driver with ability 50.
func (w *World) Driver(id, birthYear, raceReputation int) *World {
	w.t.Helper()
	require.NoError(w.t, w.tables.AddDriver(&entity.Driver{
		ID: id, Name: "Driver", BirthYear: birthYear,
		Ability: 50, OriginalAbility: 50, BestAbility: 50,
		Alive: true, RetirementAge: 40, RaceReputation: raceReputation,
	}))
	return w
}

// Part adds a part of the given type for a series and year. The
// manufacturer is created on first use.
func (w *World) Part(id, manufacturerID int, pt entity.PartType, seriesID, year int) *World {
	w.t.Helper()
	if _, ok := w.tables.Manufacturers[manufacturerID]; !ok {
		require.NoError(w.t, w.tables.AddManufacturer(&entity.Manufacturer{ID: manufacturerID, Name: "Maker", Reputation: 10}))
	}
	require.NoError(w.t, w.tables.AddPart(&entity.CarPart{
		ID: id, ManufacturerID: manufacturerID, Type: pt, SeriesID: seriesID, Year: year,
		Power: 50, Reliability: 10, Safety: 10, Cost: 100,
	}))
	return w
}

// Track adds a track with one layout per safety value.
func (w *World) Track(id int, safeties ...int) *World {
	w.t.Helper()
	require.NoError(w.t, w.tables.AddTrack(&entity.Track{ID: id, Name: "Track"}))
	for _, s := range safeties {
		require.NoError(w.t, w.tables.AddLayout(&entity.Layout{TrackID: id, Name: "Layout", Safety: s}))
	}
	return w
}

// Tables returns the built tables.
func (w *World) Tables() *entity.Tables {
	return w.tables
}
