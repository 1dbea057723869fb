package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/testutil"
)

func createTestTables(t *testing.T) *entity.Tables {
	t.Helper()
	tbl := entity.NewTables()
	for id := 1; id <= 3; id++ {
		require.NoError(t, tbl.AddDriver(&entity.Driver{ID: id, Alive: true}))
		require.NoError(t, tbl.AddTeam(&entity.Team{ID: id, SeriesID: 1}))
	}
	return tbl
}

func threeEntrants() []Entrant {
	return []Entrant{
		{DriverID: 1, TeamID: 1, EngineID: 11, ChassisID: 21, TyreID: 31, Speed: 50, Reliability: 5, Safety: 5},
		{DriverID: 2, TeamID: 2, EngineID: 12, ChassisID: 22, TyreID: 32, Speed: 70, Reliability: 5, Safety: 5},
		{DriverID: 3, TeamID: 3, EngineID: 11, ChassisID: 21, TyreID: 31, Speed: 60, Reliability: 5, Safety: 5},
	}
}

func TestClassify(t *testing.T) {
	en := Entrant{Speed: 10, Reliability: 20, Safety: 4}
	tests := []struct {
		name   string
		floats []float64
		speed  int
		want   Outcome
	}{
		// fail draw scales by 10*10=100; reliability 20
		{"good when draw clears reliability", []float64{0.2}, 10, Good},
		{"failure below reliability then crash", []float64{0.1, 0.5}, 10, Crash},
		{"failure below reliability then death", []float64{0.1, 0.3}, 10, Death},
		{"zero speed always crashes", nil, 0, Crash},
		{"negative speed always crashes", nil, -3, Crash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testutil.NewScriptedSource(tt.floats...)
			e := New(entity.NewTables(), src)
			en.Speed = tt.speed
			assert.Equal(t, tt.want, e.Classify(en))

			floats, _ := src.Consumed()
			assert.Equal(t, len(tt.floats), floats)
		})
	}
}

func TestRank_SpeedThenDriverID(t *testing.T) {
	ranked := Rank([]Entrant{
		{DriverID: 4, Speed: 10},
		{DriverID: 2, Speed: 30},
		{DriverID: 1, Speed: 10},
	})

	ids := []int{ranked[0].DriverID, ranked[1].DriverID, ranked[2].DriverID}
	assert.Equal(t, []int{2, 1, 4}, ids)
}

func TestFinishingOrder_ConsumesOneDrawPerPick(t *testing.T) {
	// p=0.5 over three: weights .5 .25 .125; 0.9 picks the back.
	src := testutil.NewScriptedSource(0.9, 0.0, 0.0)
	e := New(entity.NewTables(), src, WithMoveUpProbability(0.5))

	order := e.FinishingOrder([]Entrant{{DriverID: 1}, {DriverID: 2}, {DriverID: 3}})

	require.Len(t, order, 3)
	assert.Equal(t, 3, order[0].DriverID)
	assert.Equal(t, 1, order[1].DriverID)
	assert.Equal(t, 2, order[2].DriverID)
	floats, _ := src.Consumed()
	assert.Equal(t, 3, floats)
}

func TestFinishingOrder_IsPermutation(t *testing.T) {
	e := New(entity.NewTables(), rng.New(99))
	pool := make([]Entrant, 20)
	for i := range pool {
		pool[i] = Entrant{DriverID: i + 1}
	}

	order := e.FinishingOrder(pool)

	require.Len(t, order, len(pool))
	seen := map[int]bool{}
	for _, en := range order {
		assert.False(t, seen[en.DriverID])
		seen[en.DriverID] = true
	}
}

func TestSimulate_AllGood(t *testing.T) {
	tbl := createTestTables(t)
	// Three classification draws clear reliability; order draws default to 0.
	e := New(tbl, testutil.NewScriptedSource(0.99, 0.99, 0.99))
	r := &entity.Race{ID: 5, SeriesID: 1, Season: 1950, Championship: true, ReputationWeight: 12, Reward: 100}

	report, err := e.Simulate(r, threeEntrants())

	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Died)
	assert.Equal(t, 1, report.Round)

	positions := map[int]int{}
	for _, res := range report.Results {
		positions[res.DriverID] = res.Position
		assert.Equal(t, 1, res.Round)
	}
	assert.Equal(t, map[int]int{2: 1, 3: 2, 1: 3}, positions)
	assert.Len(t, tbl.Results, 3)

	assert.Equal(t, 12, tbl.Drivers[2].RaceReputation)
	assert.Equal(t, 6, tbl.Drivers[3].RaceReputation)
	assert.Equal(t, 4, tbl.Drivers[1].RaceReputation)
	assert.Equal(t, 12, tbl.Teams[2].Reputation)
	assert.Equal(t, 100, tbl.Teams[2].Money)
	assert.Equal(t, 50, tbl.Teams[3].Money)
	assert.Equal(t, 33, tbl.Teams[1].Money)
}

func TestSimulate_DeathAndCrash(t *testing.T) {
	tbl := createTestTables(t)
	src := testutil.NewScriptedSource(
		0.99,      // driver 1 good
		0.0, 0.0,  // driver 2 fails, then dies
		0.0, 0.99, // driver 3 fails, then crashes
	)
	e := New(tbl, src)
	r := &entity.Race{ID: 1, SeriesID: 1, Season: 1950, Championship: true, ReputationWeight: 10}

	report, err := e.Simulate(r, threeEntrants())

	require.NoError(t, err)
	assert.Equal(t, []int{2}, report.Died)
	byDriver := map[int]entity.RaceResult{}
	for _, res := range report.Results {
		byDriver[res.DriverID] = res
	}
	assert.Equal(t, 1, byDriver[1].Position)
	assert.Equal(t, entity.PositionDied, byDriver[2].Position)
	assert.Equal(t, entity.PositionCrashed, byDriver[3].Position)
	assert.Equal(t, 12, byDriver[2].EngineID, "part subjects are kept on non-finisher rows")

	assert.True(t, tbl.Drivers[2].Alive, "the caller propagates deaths")
	assert.Equal(t, 0, tbl.Drivers[3].RaceReputation)
}

func TestSimulate_RoundFollowsExistingResults(t *testing.T) {
	tbl := createTestTables(t)
	tbl.Results = append(tbl.Results,
		entity.RaceResult{RaceID: 1, SeriesID: 1, Season: 1950, Round: 1},
		entity.RaceResult{RaceID: 2, SeriesID: 1, Season: 1950, Round: 2},
		entity.RaceResult{RaceID: 3, SeriesID: 2, Season: 1950, Round: 7},
	)
	e := New(tbl, testutil.NewScriptedSource(0.99, 0.99, 0.99))

	report, err := e.Simulate(&entity.Race{ID: 4, SeriesID: 1, Season: 1950, Championship: true}, threeEntrants())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Round)

	report, err = e.Simulate(&entity.Race{ID: 5, SeriesID: 1, Season: 1950}, threeEntrants())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Round, "non-championship races carry no round")
}

func TestSimulate_EmptyGrid(t *testing.T) {
	tbl := createTestTables(t)
	e := New(tbl, testutil.NewScriptedSource())

	report, err := e.Simulate(&entity.Race{ID: 1, Championship: true}, nil)

	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Empty(t, report.Died)
	assert.Empty(t, tbl.Results)
}

func TestSimulate_DuplicateDriver(t *testing.T) {
	tbl := createTestTables(t)
	e := New(tbl, testutil.NewScriptedSource())
	grid := append(threeEntrants(), Entrant{DriverID: 1, TeamID: 2})

	_, err := e.Simulate(&entity.Race{ID: 1}, grid)

	require.Error(t, err)
	assert.True(t, entity.IsCode(err, entity.ErrCodeDuplicateActiveDriver))
	assert.Empty(t, tbl.Results)
}

func TestSimulate_WithoutTeamRewards(t *testing.T) {
	tbl := createTestTables(t)
	e := New(tbl, testutil.NewScriptedSource(0.99, 0.99, 0.99),
		WithTeamReputation(false), WithPrizeMoney(false))

	_, err := e.Simulate(&entity.Race{ID: 1, ReputationWeight: 10, Reward: 100}, threeEntrants())

	require.NoError(t, err)
	assert.Equal(t, 10, tbl.Drivers[2].RaceReputation)
	assert.Equal(t, 0, tbl.Teams[2].Reputation)
	assert.Equal(t, 0, tbl.Teams[2].Money)
}
