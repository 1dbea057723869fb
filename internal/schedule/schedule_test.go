package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/testutil"
)

func day(month time.Month, d int) time.Time {
	return time.Date(1950, month, d, 0, 0, 0, 0, time.UTC)
}

func TestRaceDates_SundaysInWindow(t *testing.T) {
	s := New(entity.NewTables(), testutil.NewScriptedSource())

	dates := s.RaceDates(1950)

	require.Len(t, dates, 39)
	assert.Equal(t, day(time.March, 5), dates[0], "1 March 1950 is a Wednesday")
	assert.Equal(t, day(time.November, 26), dates[38])
	for _, d := range dates {
		assert.Equal(t, time.Sunday, d.Weekday())
	}
}

func TestRaceDates_WindowStartingOnWeekday(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weekday = time.Wednesday
	cfg.EndMonth, cfg.EndDay = time.March, 15
	s := New(entity.NewTables(), testutil.NewScriptedSource(), WithConfig(cfg))

	assert.Equal(t, []time.Time{day(time.March, 1), day(time.March, 8), day(time.March, 15)}, s.RaceDates(1950))
}

func TestSpreadIndices(t *testing.T) {
	tests := []struct {
		name     string
		n, count int
		want     []int
	}{
		{"even", 10, 4, []int{0, 3, 6, 9}},
		{"odd", 5, 3, []int{0, 2, 4}},
		{"half rounds up", 4, 3, []int{0, 2, 3}},
		{"all", 3, 3, []int{0, 1, 2}},
		{"single", 5, 1, []int{0}},
		{"short pool reuses", 3, 5, []int{0, 0, 1, 1, 2}},
		{"none wanted", 5, 0, []int{}},
		{"empty pool", 0, 3, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpreadIndices(tt.n, tt.count))
		})
	}
}

func TestSpread_Elements(t *testing.T) {
	assert.Equal(t, []string{"a", "c", "e"}, Spread([]string{"a", "b", "c", "d", "e"}, 3))
	assert.Empty(t, Spread([]string{}, 2))
}

func TestPlanSeason_ChampionshipSubsetAndWeather(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 60, entity.SeriesRule{ChampionshipRaces: 2, NonChampionshipRaces: 1, RaceReward: 1000}).
		Track(1, 30).
		Tables()
	src := &testutil.ScriptedSource{Ints: []int{
		0, 0, 1,     // track, layout, dry
		0, 0, 0, 20, // track, layout, wet, wetness 110+20
		0, 0, 1,
	}}
	s := New(tbl, src)

	races, err := s.PlanSeason(1950)
	require.NoError(t, err)
	require.Len(t, races, 3)

	assert.Equal(t, day(time.March, 5), races[0].Date)
	assert.Equal(t, day(time.July, 16), races[1].Date)
	assert.Equal(t, day(time.November, 26), races[2].Date)

	assert.True(t, races[0].Championship)
	assert.False(t, races[1].Championship)
	assert.True(t, races[2].Championship)

	assert.Equal(t, 60, races[0].ReputationWeight)
	assert.Equal(t, 1000, races[0].Reward)
	assert.Equal(t, 30, races[1].ReputationWeight, "non-championship races pay half")
	assert.Equal(t, 500, races[1].Reward)

	assert.Equal(t, entity.DryWetness, races[0].Wetness)
	assert.Equal(t, 130, races[1].Wetness)
	assert.True(t, races[1].IsWet())

	for i, r := range races {
		assert.Equal(t, 1950, r.Season)
		assert.Equal(t, 1, r.TrackID)
		assert.Equal(t, 30, r.Safety, "race safety comes from the layout")
		if i > 0 {
			assert.Greater(t, r.ID, races[i-1].ID, "race ids are strictly increasing")
		}
		assert.Same(t, r, tbl.Races[r.ID])
	}
}

func TestPlanSeason_PicksAmongTracksWithLayouts(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 60, entity.SeriesRule{ChampionshipRaces: 1}).
		Track(1).
		Track(2, 10, 20).
		Tables()
	src := &testutil.ScriptedSource{Ints: []int{0, 1, 1}}
	s := New(tbl, src)

	races, err := s.PlanSeason(1950)
	require.NoError(t, err)
	require.Len(t, races, 1)

	assert.Equal(t, 2, races[0].TrackID, "a track without layouts cannot host a race")
	assert.Equal(t, 20, races[0].Safety)
	assert.Equal(t, 2, tbl.Layouts[races[0].LayoutID].TrackID)
}

func TestPlanSeason_BeforeChampionshipEra(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 60, entity.SeriesRule{ChampionshipRaces: 2, NonChampionshipRaces: 1}).
		Track(1, 30).
		Tables()
	s := New(tbl, &testutil.ScriptedSource{IntDefault: 1})

	races, err := s.PlanSeason(1949)
	require.NoError(t, err)

	require.Len(t, races, 3, "races still run, they just do not count")
	for _, r := range races {
		assert.False(t, r.Championship)
	}
}

func TestPlanSeason_SkipsUnconfiguredAndPlanned(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 60, entity.SeriesRule{ChampionshipRaces: 2}).
		Track(1, 30).
		Tables()
	require.NoError(t, tbl.AddSeries(&entity.Series{ID: 2, FirstYear: 1900}))
	s := New(tbl, &testutil.ScriptedSource{IntDefault: 1})

	races, err := s.PlanSeason(1950)
	require.NoError(t, err)
	assert.Len(t, races, 2)
	for _, r := range races {
		assert.Equal(t, 1, r.SeriesID, "series without a rule get no races")
	}

	again, err := s.PlanSeason(1950)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, tbl.Races, 2)
}

func TestPlanSeason_NoTracks(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 60, entity.SeriesRule{ChampionshipRaces: 2}).
		Tables()
	s := New(tbl, testutil.NewScriptedSource())

	races, err := s.PlanSeason(1950)

	require.NoError(t, err)
	assert.Empty(t, races)
}
