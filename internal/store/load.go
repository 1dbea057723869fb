package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/roach88/paddock/internal/entity"
)

// ErrDigestMismatch is returned by Load when the stored rows no longer
// match the digest recorded by Save.
var ErrDigestMismatch = errors.New("save game digest mismatch")

// Load reads the stored game. An empty database loads as empty tables.
//
// Returns ErrDigestMismatch (wrapped) when rows were changed outside Save.
func (s *Store) Load(ctx context.Context) (*entity.Tables, error) {
	t := entity.NewTables()

	meta, err := s.loadMeta(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.loadEntities(ctx, t); err != nil {
		return nil, err
	}
	if err := s.loadLog(ctx, t); err != nil {
		return nil, err
	}
	if t.CurrentSlots, err = s.loadSlots(ctx, tierCurrent, meta[metaCurrentYear]); err != nil {
		return nil, err
	}
	if t.NextSlots, err = s.loadSlots(ctx, tierNext, meta[metaNextYear]); err != nil {
		return nil, err
	}

	if want, ok := meta[metaDigest]; ok {
		got, err := Digest(t)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if got != want {
			return nil, fmt.Errorf("load: %w: stored %s, computed %s", ErrDigestMismatch, want, got)
		}
	}
	return t, nil
}

// StoredDigest returns the digest recorded by the last Save, or "" for an
// empty database.
func (s *Store) StoredDigest(ctx context.Context) (string, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaDigest).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stored digest: %w", err)
	}
	return digest, nil
}

// queryAll runs query and scans every row with scan.
// Returns an empty slice (not nil) when there are no rows.
func queryAll[T any](ctx context.Context, db *sql.DB, table, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// addAll inserts loaded records through the table's Add method, so a
// duplicate id surfaces as a state error.
func addAll[T any](table string, records []*T, add func(*T) error) error {
	for _, r := range records {
		if err := add(r); err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) loadMeta(ctx context.Context, t *entity.Tables) (map[string]string, error) {
	type kv struct {
		key   string
		value string
	}
	pairs, err := queryAll(ctx, s.db, "meta", `SELECT key, value FROM meta ORDER BY key`, func(rows *sql.Rows) (kv, error) {
		var p kv
		err := rows.Scan(&p.key, &p.value)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		meta[p.key] = p.value
	}

	t.Meta.RunID = meta[metaRunID]
	if v, ok := meta[metaSeed]; ok {
		if t.Meta.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("load meta seed: %w", err)
		}
	}
	if v, ok := meta[metaDate]; ok {
		if t.Meta.Date, err = parseTime(v); err != nil {
			return nil, fmt.Errorf("load meta date: %w", err)
		}
	}

	seqs, err := queryAll(ctx, s.db, "sequences", `SELECT name, value FROM sequences ORDER BY name`, func(rows *sql.Rows) (kv, error) {
		var p kv
		err := rows.Scan(&p.key, &p.value)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	for _, p := range seqs {
		n, err := strconv.Atoi(p.value)
		if err != nil {
			return nil, fmt.Errorf("load sequence %s: %w", p.key, err)
		}
		t.Meta.Sequences[p.key] = n
	}
	return meta, nil
}

func (s *Store) loadEntities(ctx context.Context, t *entity.Tables) error {
	drivers, err := queryAll(ctx, s.db, "drivers", `
		SELECT id, name, birth_year, ability, original_ability, best_ability, alive, retired,
		       retirement_age, race_reputation, season_reputation
		FROM drivers ORDER BY id
	`, func(rows *sql.Rows) (*entity.Driver, error) {
		var d entity.Driver
		err := rows.Scan(&d.ID, &d.Name, &d.BirthYear, &d.Ability, &d.OriginalAbility, &d.BestAbility,
			&d.Alive, &d.Retired, &d.RetirementAge, &d.RaceReputation, &d.SeasonReputation)
		return &d, err
	})
	if err != nil {
		return err
	}
	if err := addAll("drivers", drivers, t.AddDriver); err != nil {
		return err
	}

	teams, err := queryAll(ctx, s.db, "teams", `
		SELECT id, name, owner_id, series_id, money, reputation, finance_staff, design_staff, founded_year, folded_year
		FROM teams ORDER BY id
	`, func(rows *sql.Rows) (*entity.Team, error) {
		var v entity.Team
		err := rows.Scan(&v.ID, &v.Name, &v.OwnerID, &v.SeriesID, &v.Money, &v.Reputation,
			&v.FinanceStaff, &v.DesignStaff, &v.FoundedYear, &v.FoldedYear)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("teams", teams, t.AddTeam); err != nil {
		return err
	}

	manufacturers, err := queryAll(ctx, s.db, "manufacturers", `
		SELECT id, name, reputation FROM manufacturers ORDER BY id
	`, func(rows *sql.Rows) (*entity.Manufacturer, error) {
		var v entity.Manufacturer
		err := rows.Scan(&v.ID, &v.Name, &v.Reputation)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("manufacturers", manufacturers, t.AddManufacturer); err != nil {
		return err
	}

	parts, err := queryAll(ctx, s.db, "car_parts", `
		SELECT id, manufacturer_id, type, series_id, year, power, reliability, safety, cost
		FROM car_parts ORDER BY id
	`, func(rows *sql.Rows) (*entity.CarPart, error) {
		var v entity.CarPart
		var pt string
		err := rows.Scan(&v.ID, &v.ManufacturerID, &pt, &v.SeriesID, &v.Year,
			&v.Power, &v.Reliability, &v.Safety, &v.Cost)
		v.Type = entity.PartType(pt)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("car_parts", parts, t.AddPart); err != nil {
		return err
	}

	series, err := queryAll(ctx, s.db, "series", `
		SELECT id, name, reputation, first_year, last_year FROM series ORDER BY id
	`, func(rows *sql.Rows) (*entity.Series, error) {
		var v entity.Series
		err := rows.Scan(&v.ID, &v.Name, &v.Reputation, &v.FirstYear, &v.LastYear)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("series", series, t.AddSeries); err != nil {
		return err
	}

	t.Rules, err = queryAll(ctx, s.db, "series_rules", `
		SELECT series_id, from_year, to_year, max_cars, min_age, max_age, championship_races,
		       non_championship_races, point_system, min_power, max_power, base_salary, race_reward
		FROM series_rules ORDER BY seq
	`, func(rows *sql.Rows) (entity.SeriesRule, error) {
		var v entity.SeriesRule
		var points string
		if err := rows.Scan(&v.SeriesID, &v.FromYear, &v.ToYear, &v.MaxCars, &v.MinAge, &v.MaxAge,
			&v.ChampionshipRaces, &v.NonChampionshipRaces, &points, &v.MinPower, &v.MaxPower,
			&v.BaseSalary, &v.RaceReward); err != nil {
			return v, err
		}
		err := json.Unmarshal([]byte(points), &v.PointSystem)
		return v, err
	})
	if err != nil {
		return err
	}

	tracks, err := queryAll(ctx, s.db, "tracks", `
		SELECT id, name FROM tracks ORDER BY id
	`, func(rows *sql.Rows) (*entity.Track, error) {
		var v entity.Track
		err := rows.Scan(&v.ID, &v.Name)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("tracks", tracks, t.AddTrack); err != nil {
		return err
	}

	layouts, err := queryAll(ctx, s.db, "layouts", `
		SELECT id, track_id, name, safety FROM layouts ORDER BY id
	`, func(rows *sql.Rows) (*entity.Layout, error) {
		var v entity.Layout
		err := rows.Scan(&v.ID, &v.TrackID, &v.Name, &v.Safety)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("layouts", layouts, t.AddLayout); err != nil {
		return err
	}

	driverContracts, err := queryAll(ctx, s.db, "driver_contracts", `
		SELECT id, driver_id, team_id, series_id, salary, wanted_reputation, start_year, end_year, active, end_reason
		FROM driver_contracts ORDER BY id
	`, func(rows *sql.Rows) (*entity.DriverContract, error) {
		var v entity.DriverContract
		var reason string
		err := rows.Scan(&v.ID, &v.DriverID, &v.TeamID, &v.SeriesID, &v.Salary, &v.WantedReputation,
			&v.StartYear, &v.EndYear, &v.Active, &reason)
		v.EndReason = entity.EndReason(reason)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("driver_contracts", driverContracts, t.AddDriverContract); err != nil {
		return err
	}

	partContracts, err := queryAll(ctx, s.db, "part_contracts", `
		SELECT id, team_id, manufacturer_id, part_id, part_type, series_id, start_year, end_year, cost, active
		FROM part_contracts ORDER BY id
	`, func(rows *sql.Rows) (*entity.PartContract, error) {
		var v entity.PartContract
		var pt string
		err := rows.Scan(&v.ID, &v.TeamID, &v.ManufacturerID, &v.PartID, &pt, &v.SeriesID,
			&v.StartYear, &v.EndYear, &v.Cost, &v.Active)
		v.PartType = entity.PartType(pt)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("part_contracts", partContracts, t.AddPartContract); err != nil {
		return err
	}

	offers, err := queryAll(ctx, s.db, "offers", `
		SELECT id, driver_id, team_id, series_id, salary, length, year, reserved
		FROM offers ORDER BY id
	`, func(rows *sql.Rows) (*entity.Offer, error) {
		var v entity.Offer
		err := rows.Scan(&v.ID, &v.DriverID, &v.TeamID, &v.SeriesID, &v.Salary, &v.Length, &v.Year, &v.Reserved)
		return &v, err
	})
	if err != nil {
		return err
	}
	if err := addAll("offers", offers, t.AddOffer); err != nil {
		return err
	}

	races, err := queryAll(ctx, s.db, "races", `
		SELECT id, series_id, season, track_id, layout_id, date, championship, reputation_weight, reward, wetness, safety
		FROM races ORDER BY id
	`, func(rows *sql.Rows) (*entity.Race, error) {
		var v entity.Race
		var date string
		if err := rows.Scan(&v.ID, &v.SeriesID, &v.Season, &v.TrackID, &v.LayoutID, &date,
			&v.Championship, &v.ReputationWeight, &v.Reward, &v.Wetness, &v.Safety); err != nil {
			return nil, err
		}
		var err error
		v.Date, err = parseTime(date)
		return &v, err
	})
	if err != nil {
		return err
	}
	return addAll("races", races, t.AddRace)
}

func (s *Store) loadLog(ctx context.Context, t *entity.Tables) error {
	var err error
	t.Results, err = queryAll(ctx, s.db, "race_results", `
		SELECT race_id, series_id, season, round, driver_id, team_id, engine_id, chassis_id, tyre_id, position
		FROM race_results ORDER BY seq
	`, func(rows *sql.Rows) (entity.RaceResult, error) {
		var v entity.RaceResult
		err := rows.Scan(&v.RaceID, &v.SeriesID, &v.Season, &v.Round, &v.DriverID, &v.TeamID,
			&v.EngineID, &v.ChassisID, &v.TyreID, &v.Position)
		return v, err
	})
	if err != nil {
		return err
	}

	t.Standings, err = queryAll(ctx, s.db, "standings", `
		SELECT series_id, year, subject_type, subject_id, round, points, position
		FROM standings ORDER BY seq
	`, func(rows *sql.Rows) (entity.Standing, error) {
		var v entity.Standing
		var st string
		err := rows.Scan(&v.SeriesID, &v.Year, &st, &v.SubjectID, &v.Round, &v.Points, &v.Position)
		v.SubjectType = entity.SubjectType(st)
		return v, err
	})
	return err
}

// loadSlots rebuilds one slot table. year is empty when the table did not
// exist at save time.
func (s *Store) loadSlots(ctx context.Context, tier, year string) (*entity.SlotTable, error) {
	if year == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("load %s slots year: %w", tier, err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, series_id, year, max_slots, signed_slots, reserved_slots
		FROM series_slots WHERE tier = ?
		ORDER BY series_id, team_id
	`, tier)
	if err != nil {
		return nil, fmt.Errorf("query %s slots: %w", tier, err)
	}
	defer rows.Close()

	st := entity.NewSlotTable(y)
	for rows.Next() {
		var v entity.SeriesSlot
		if err := rows.Scan(&v.TeamID, &v.SeriesID, &v.Year, &v.MaxSlots, &v.SignedSlots, &v.ReservedSlots); err != nil {
			return nil, fmt.Errorf("scan %s slots: %w", tier, err)
		}
		st.Put(&v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s slots: %w", tier, err)
	}
	return st, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
