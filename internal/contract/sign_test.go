package contract

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/testutil"
)

func activeIDs(ds []*entity.Driver) []int {
	return lo.Map(ds, func(d *entity.Driver, _ int) int { return d.ID })
}

func TestSignDrivers_HumanWithoutDecisionStaysOpen(t *testing.T) {
	tbl := twoTeamWorld(t)
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))

	require.NoError(t, e.SignDrivers(jan1(1950), nil))

	assert.Len(t, tbl.ActiveDriverContracts(2, 1, 1950), 2, "AI team fills both slots")
	assert.Empty(t, tbl.ActiveDriverContracts(1, 1, 1950), "human team without decision signs nobody")

	contracted := 0
	for _, d := range tbl.Drivers {
		if len(lo.Filter(tbl.DriverContractsOf(d.ID), func(c *entity.DriverContract, _ int) bool { return c.ActiveIn(1950) })) > 0 {
			contracted++
		}
	}
	assert.Equal(t, 2, contracted)
	assert.Len(t, e.Eligible(1, 1950), 1, "exactly one driver remains uncontracted")

	human, _ := tbl.CurrentSlots.Get(1, 1)
	ai, _ := tbl.CurrentSlots.Get(2, 1)
	assert.Equal(t, 2, human.FreeSlots())
	assert.Equal(t, 0, ai.FreeSlots())
	assert.Equal(t, ai.MaxSlots, ai.SignedSlots+ai.ReservedSlots+ai.FreeSlots())
	require.NoError(t, e.CheckDrivers(1950))
}

func TestSignDrivers_AIContractTerms(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 1, BaseSalary: 1000}).
		Team(1, 1, entity.AIOwner, 0).
		Driver(1, 1912, 5).
		Tables()
	e := New(tbl, rng.New(4))
	require.NoError(t, e.Rollover(1950))

	require.NoError(t, e.SignDrivers(jan1(1950), nil))

	cs := tbl.ActiveDriverContracts(1, 1, 1950)
	require.Len(t, cs, 1)
	c := cs[0]
	assert.Equal(t, 1000+5*DefaultConfig().SalaryFactor, c.Salary)
	assert.Equal(t, 50, c.WantedReputation)
	assert.LessOrEqual(t, c.Length(), 3, "age 38 against max age 40 allows three seasons")
	assert.Equal(t, -c.Salary, tbl.Teams[1].Money, "first season is paid at signing")
}

func TestEligible(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 2}).
		Series(2, 80, entity.SeriesRule{MaxCars: 2}).
		Team(1, 1, entity.AIOwner, 0).
		Team(2, 2, entity.AIOwner, 0).
		Driver(1, 1925, 0).
		Driver(2, 1925, 0).
		Driver(3, 1925, 0).
		Driver(4, 1940, 0).
		Driver(5, 1900, 0).
		Driver(6, 1925, 0).
		Driver(7, 1925, 0).
		Tables()
	tbl.Drivers[2].Alive = false
	tbl.Drivers[3].Retired = true
	require.NoError(t, tbl.AddDriverContract(&entity.DriverContract{
		DriverID: 6, TeamID: 2, SeriesID: 2, WantedReputation: 80, StartYear: 1950, EndYear: 1950, Active: true,
	}))
	require.NoError(t, tbl.AddDriverContract(&entity.DriverContract{
		DriverID: 7, TeamID: 1, SeriesID: 1, WantedReputation: 50, StartYear: 1950, EndYear: 1950, Active: true,
	}))
	e := New(tbl, rng.New(1))

	assert.Equal(t, []int{1}, activeIDs(e.Eligible(1, 1950)))
	assert.Equal(t, []int{1, 7}, activeIDs(e.Eligible(2, 1950)), "a lower-tier commitment does not block a higher tier")
	assert.Equal(t, []int{1, 6, 7}, activeIDs(e.Eligible(1, 1951)), "commitments only bind the years they cover")
	assert.Empty(t, e.Eligible(9, 1950), "unknown series")
}

func TestSignDrivers_HumanDecisionTruncatesLowerTier(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 1}).
		Series(2, 80, entity.SeriesRule{MaxCars: 1}).
		Team(1, 2, 9, 0).
		Team(2, 1, entity.AIOwner, 0).
		Driver(1, 1912, 0).
		Tables()
	require.NoError(t, tbl.AddDriverContract(&entity.DriverContract{
		ID: 5, DriverID: 1, TeamID: 2, SeriesID: 1, WantedReputation: 50, StartYear: 1950, EndYear: 1952, Active: true,
	}))
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))
	in := &Intake{Drivers: map[int][]DriverDecision{1: {{DriverID: 1, Salary: 5000, Length: 9}}}}

	require.NoError(t, e.SignDrivers(jan1(1950), in))

	old := tbl.DriverContracts[5]
	assert.False(t, old.Active)
	assert.Equal(t, entity.EndTruncated, old.EndReason)
	assert.Equal(t, 1949, old.EndYear)

	cs := tbl.ActiveDriverContracts(1, 2, 1950)
	require.Len(t, cs, 1)
	assert.Equal(t, 80, cs[0].WantedReputation)
	assert.Equal(t, 1952, cs[0].EndYear, "length clamped to the age limit")
	assert.Equal(t, -5000, tbl.Teams[1].Money)
	assert.True(t, in.Empty(), "decisions are consumed")

	freed, _ := tbl.CurrentSlots.Get(2, 1)
	assert.Equal(t, 0, freed.SignedSlots)
	require.NoError(t, e.CheckDrivers(1950))
}

func TestSignDrivers_LaterLowerTierContractKept(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 1}).
		Series(2, 80, entity.SeriesRule{MaxCars: 1}).
		Team(1, 2, 9, 0).
		Team(2, 1, entity.AIOwner, 0).
		Driver(1, 1912, 0).
		Tables()
	require.NoError(t, tbl.AddDriverContract(&entity.DriverContract{
		ID: 5, DriverID: 1, TeamID: 2, SeriesID: 1, WantedReputation: 50, StartYear: 1951, EndYear: 1952, Active: true,
	}))
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))
	in := &Intake{Drivers: map[int][]DriverDecision{1: {{DriverID: 1, Salary: 5000, Length: 1}}}}

	require.NoError(t, e.SignDrivers(jan1(1950), in))

	later := tbl.DriverContracts[5]
	assert.True(t, later.Active)
	assert.Empty(t, later.EndReason)
	assert.Equal(t, 1951, later.StartYear)
	assert.Equal(t, 1952, later.EndYear)

	cs := tbl.ActiveDriverContracts(1, 2, 1950)
	require.Len(t, cs, 1)
	assert.Equal(t, 1950, cs[0].EndYear)
	require.NoError(t, e.CheckDrivers(1950))
	require.NoError(t, e.CheckDrivers(1951))
}

func TestSignDrivers_InvalidHumanInputDiscarded(t *testing.T) {
	tbl := twoTeamWorld(t)
	tbl.Teams[2].FoldedYear = 1900
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))
	in := &Intake{Drivers: map[int][]DriverDecision{1: {
		{DriverID: 99, Salary: 1000, Length: 1},
		{DriverID: 1, Salary: 0, Length: 1},
	}}}

	require.NoError(t, e.SignDrivers(jan1(1950), in))

	assert.Empty(t, tbl.DriverContracts)
	row, _ := tbl.CurrentSlots.Get(1, 1)
	assert.Equal(t, 2, row.FreeSlots())
	assert.True(t, in.Empty())
}

func TestSignDrivers_NoEligibleDrivers(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 2}).
		Team(1, 1, entity.AIOwner, 0).
		Driver(1, 1945, 0).
		Tables()
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))

	require.NoError(t, e.SignDrivers(jan1(1950), nil))

	assert.Empty(t, tbl.DriverContracts, "a five-year-old cannot race")
}

func TestSignAhead_AITeamSignsNextSeason(t *testing.T) {
	tbl := twoTeamWorld(t)
	tbl.Teams[1].OwnerID = entity.AIOwner
	tbl.Teams[1].FoldedYear = 1900
	e := New(tbl, rng.New(3))
	require.NoError(t, e.Rollover(1950))

	// The last day of the year always negotiates.
	require.NoError(t, e.SignAhead(dec31(1950), nil))

	cs := tbl.ActiveDriverContracts(2, 1, 1951)
	require.Len(t, cs, 1)
	assert.Equal(t, 1951, cs[0].StartYear)
	assert.Equal(t, 0, tbl.Teams[2].Money, "next season is charged at season start")

	row, _ := tbl.NextSlots.Get(2, 1)
	assert.Equal(t, 0, row.ReservedSlots)
	assert.Equal(t, 1, row.SignedSlots)
	cur, _ := tbl.CurrentSlots.Get(2, 1)
	assert.Equal(t, 0, cur.SignedSlots)
}

func TestSignAhead_FirstDayRarelyNegotiates(t *testing.T) {
	tbl := twoTeamWorld(t)
	e := New(tbl, testutil.NewScriptedSource(0.5))
	require.NoError(t, e.Rollover(1950))

	require.NoError(t, e.SignAhead(jan1(1950), nil))

	assert.Empty(t, tbl.DriverContracts)
}

func TestSignAhead_HumanWithoutDecisionReleases(t *testing.T) {
	tbl := twoTeamWorld(t)
	tbl.Teams[2].FoldedYear = 1900
	e := New(tbl, rng.New(1))
	require.NoError(t, e.Rollover(1950))

	require.NoError(t, e.SignAhead(dec31(1950), nil))

	row, _ := tbl.NextSlots.Get(1, 1)
	assert.Equal(t, 0, row.ReservedSlots)
	assert.Empty(t, tbl.Offers)
}

func TestPickLength_ClampedToLimit(t *testing.T) {
	e := New(entity.NewTables(), &testutil.ScriptedSource{Ints: []int{99, 0}})

	assert.Equal(t, 2, e.pickLength(2), "a four-year draw is clamped")
	assert.Equal(t, 1, e.pickLength(4))
}
