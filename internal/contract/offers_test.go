package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
	"github.com/roach88/paddock/internal/testutil"
)

// tierWorld has a human team in the top series and an AI team holding
// driver 1 in the lower series through 1952.
func tierWorld(t *testing.T) *entity.Tables {
	t.Helper()
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MaxCars: 1}).
		Series(2, 80, entity.SeriesRule{MaxCars: 1}).
		Team(1, 2, 9, 5).
		Team(2, 1, entity.AIOwner, 0).
		Driver(1, 1925, 0).
		Tables()
	require.NoError(t, tbl.AddDriverContract(&entity.DriverContract{
		ID: 1, DriverID: 1, TeamID: 2, SeriesID: 1, WantedReputation: 50, StartYear: 1949, EndYear: 1952, Active: true,
	}))
	return tbl
}

func offerEngine(t *testing.T, tbl *entity.Tables) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OfferPool = 1000
	e := New(tbl, rng.New(1), WithConfig(cfg))
	require.NoError(t, e.Rollover(1950))
	return e
}

func TestSignAhead_HumanOfferAccepted(t *testing.T) {
	tbl := tierWorld(t)
	e := offerEngine(t, tbl)
	in := &Intake{NextYear: map[int][]DriverDecision{1: {{DriverID: 1, Salary: 1500, Length: 2}}}}

	require.NoError(t, e.SignAhead(dec31(1950), in))

	require.Len(t, tbl.Offers, 1)
	row, _ := tbl.NextSlots.Get(1, 2)
	assert.Equal(t, 1, row.ReservedSlots, "the offer holds the reservation")

	require.NoError(t, e.ProcessOffers(dec31(1950)))

	assert.Empty(t, tbl.Offers)
	row, _ = tbl.NextSlots.Get(1, 2)
	assert.Equal(t, 0, row.ReservedSlots)
	assert.Equal(t, 1, row.SignedSlots)
	assert.Equal(t, 0, row.FreeSlots())

	cs := tbl.ActiveDriverContracts(1, 2, 1951)
	require.Len(t, cs, 1)
	assert.Equal(t, 1952, cs[0].EndYear)
	assert.Equal(t, 0, tbl.Teams[1].Money)

	old := tbl.DriverContracts[1]
	assert.True(t, old.Active, "the lower-tier contract keeps its earlier seasons")
	assert.Equal(t, 1950, old.EndYear)
	lower, _ := tbl.NextSlots.Get(2, 1)
	assert.Equal(t, 1, lower.FreeSlots())
	require.NoError(t, e.CheckDrivers(1950))
	require.NoError(t, e.CheckDrivers(1951))
}

func TestProcessOffers_SalaryBelowDemandRejected(t *testing.T) {
	tbl := tierWorld(t)
	e := offerEngine(t, tbl)
	in := &Intake{NextYear: map[int][]DriverDecision{1: {{DriverID: 1, Salary: 500, Length: 2}}}}
	require.NoError(t, e.SignAhead(dec31(1950), in))

	require.NoError(t, e.ProcessOffers(dec31(1950)))

	assert.Empty(t, tbl.Offers)
	assert.Empty(t, tbl.ActiveDriverContracts(1, 2, 1951))
	row, _ := tbl.NextSlots.Get(1, 2)
	assert.Equal(t, 0, row.ReservedSlots, "rejection releases the reservation")
	assert.Equal(t, 1, row.FreeSlots())
	assert.Equal(t, 1952, tbl.DriverContracts[1].EndYear)
}

func TestProcessOffers_CurrentYearNeedsOpenSlot(t *testing.T) {
	tbl := tierWorld(t)
	e := offerEngine(t, tbl)

	require.NoError(t, e.Submit(&entity.Offer{DriverID: 1, TeamID: 1, SeriesID: 2, Salary: 2000, Length: 1, Year: 1950}))
	require.NoError(t, e.ProcessOffers(jan1(1950)))

	cs := tbl.ActiveDriverContracts(1, 2, 1950)
	require.Len(t, cs, 1)
	assert.Equal(t, -2000, tbl.Teams[1].Money)

	// The slot is now full; a second offer is refused.
	require.NoError(t, tbl.AddDriver(&entity.Driver{ID: 2, BirthYear: 1925, Alive: true}))
	require.NoError(t, e.Submit(&entity.Offer{DriverID: 2, TeamID: 1, SeriesID: 2, Salary: 5000, Length: 1, Year: 1950}))
	require.NoError(t, e.ProcessOffers(jan1(1950)))
	assert.Empty(t, tbl.DriverContractsOf(2))
}

func TestProcessOffers_Expired(t *testing.T) {
	tbl := tierWorld(t)
	e := offerEngine(t, tbl)
	require.NoError(t, e.Submit(&entity.Offer{DriverID: 1, TeamID: 1, SeriesID: 2, Salary: 2000, Length: 1, Year: 1949}))

	require.NoError(t, e.ProcessOffers(jan1(1950)))

	assert.Empty(t, tbl.Offers)
	assert.Empty(t, tbl.ActiveDriverContracts(1, 2, 1950))
}

func TestSubmit_InvalidOfferReleasesReservation(t *testing.T) {
	tbl := tierWorld(t)
	e := offerEngine(t, tbl)
	require.True(t, e.Reserve(1, 2, 1951))

	require.NoError(t, e.Submit(&entity.Offer{DriverID: 42, TeamID: 1, SeriesID: 2, Salary: 100, Year: 1951, Reserved: true}))

	assert.Empty(t, tbl.Offers)
	row, _ := tbl.NextSlots.Get(1, 2)
	assert.Equal(t, 0, row.ReservedSlots)
}

func TestRankAndMinimumSalary(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Driver(1, 1925, 10).
		Driver(2, 1925, 30).
		Driver(3, 1925, 10).
		Driver(4, 1925, 99).
		Tables()
	tbl.Drivers[4].Alive = false
	cfg := DefaultConfig()
	cfg.OfferPool = 900
	e := New(tbl, rng.New(1), WithConfig(cfg))

	assert.Equal(t, 1, e.Rank(2))
	assert.Equal(t, 2, e.Rank(1), "ties go to the lower id")
	assert.Equal(t, 3, e.Rank(3))
	assert.Equal(t, 0, e.Rank(4), "dead drivers are not ranked")

	minimum, ok := e.MinimumSalary(3)
	require.True(t, ok)
	assert.Equal(t, 300, minimum)
	_, ok = e.MinimumSalary(4)
	assert.False(t, ok)
}

func TestRank_IgnoresDriversOutsideEveryAgeWindow(t *testing.T) {
	tbl := testutil.NewWorld(t).
		Series(1, 50, entity.SeriesRule{MinAge: 18, MaxAge: 40}).
		Driver(1, 1925, 10).
		Driver(2, 1935, 90).
		Driver(3, 1900, 80).
		Driver(4, 1926, 20).
		Tables()
	tbl.Meta.Date = jan1(1950)
	e := New(tbl, rng.New(1))

	assert.Equal(t, 2, e.Rank(1), "the 15 year old and the 50 year old are not active")
	assert.Equal(t, 1, e.Rank(4))
}
