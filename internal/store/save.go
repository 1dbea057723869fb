package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/paddock/internal/entity"
)

// Meta keys.
const (
	metaRunID       = "run_id"
	metaSeed        = "seed"
	metaDate        = "date"
	metaDigest      = "digest"
	metaCurrentYear = "current_slots_year"
	metaNextYear    = "next_slots_year"
)

const (
	tierCurrent = "current"
	tierNext    = "next"
)

// tables lists every table Save rewrites, in dependency-free order.
var tables = []string{
	"meta", "sequences", "drivers", "teams", "manufacturers", "car_parts",
	"series", "series_rules", "tracks", "layouts", "driver_contracts",
	"part_contracts", "offers", "races", "race_results", "standings", "series_slots",
}

// Save replaces the stored game with t in one transaction and returns the
// content digest it recorded.
func (s *Store) Save(ctx context.Context, t *entity.Tables) (string, error) {
	digest, err := Digest(t)
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, name := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+name); err != nil {
			return "", fmt.Errorf("save: clear %s: %w", name, err)
		}
	}

	if err := saveMeta(ctx, tx, t, digest); err != nil {
		return "", err
	}
	if err := saveEntities(ctx, tx, t); err != nil {
		return "", err
	}
	if err := saveLog(ctx, tx, t); err != nil {
		return "", err
	}
	if err := saveSlots(ctx, tx, tierCurrent, t.CurrentSlots); err != nil {
		return "", err
	}
	if err := saveSlots(ctx, tx, tierNext, t.NextSlots); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save: commit: %w", err)
	}
	return digest, nil
}

// insertAll inserts rows through one prepared statement.
func insertAll[T any](ctx context.Context, tx *sql.Tx, table, query string, rows []T, args func(int, T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("save %s: prepare: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(i, row)...); err != nil {
			return fmt.Errorf("save %s: %w", table, err)
		}
	}
	return nil
}

func saveMeta(ctx context.Context, tx *sql.Tx, t *entity.Tables, digest string) error {
	meta := map[string]string{
		metaRunID:  t.Meta.RunID,
		metaSeed:   strconv.FormatInt(t.Meta.Seed, 10),
		metaDate:   formatTime(t.Meta.Date),
		metaDigest: digest,
	}
	if t.CurrentSlots != nil {
		meta[metaCurrentYear] = strconv.Itoa(t.CurrentSlots.Year)
	}
	if t.NextSlots != nil {
		meta[metaNextYear] = strconv.Itoa(t.NextSlots.Year)
	}
	for _, key := range sortedKeys(meta) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, key, meta[key]); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}
	for _, name := range sortedKeys(t.Meta.Sequences) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sequences (name, value) VALUES (?, ?)`, name, t.Meta.Sequences[name]); err != nil {
			return fmt.Errorf("save sequences: %w", err)
		}
	}
	return nil
}

func saveEntities(ctx context.Context, tx *sql.Tx, t *entity.Tables) error {
	if err := insertAll(ctx, tx, "drivers", `
		INSERT INTO drivers
		(id, name, birth_year, ability, original_ability, best_ability, alive, retired, retirement_age, race_reputation, season_reputation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.Drivers), func(_ int, d *entity.Driver) []any {
		return []any{d.ID, d.Name, d.BirthYear, d.Ability, d.OriginalAbility, d.BestAbility,
			d.Alive, d.Retired, d.RetirementAge, d.RaceReputation, d.SeasonReputation}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "teams", `
		INSERT INTO teams
		(id, name, owner_id, series_id, money, reputation, finance_staff, design_staff, founded_year, folded_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.Teams), func(_ int, v *entity.Team) []any {
		return []any{v.ID, v.Name, v.OwnerID, v.SeriesID, v.Money, v.Reputation,
			v.FinanceStaff, v.DesignStaff, v.FoundedYear, v.FoldedYear}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "manufacturers", `
		INSERT INTO manufacturers (id, name, reputation) VALUES (?, ?, ?)
	`, entity.Sorted(t.Manufacturers), func(_ int, v *entity.Manufacturer) []any {
		return []any{v.ID, v.Name, v.Reputation}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "car_parts", `
		INSERT INTO car_parts
		(id, manufacturer_id, type, series_id, year, power, reliability, safety, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.Parts), func(_ int, v *entity.CarPart) []any {
		return []any{v.ID, v.ManufacturerID, string(v.Type), v.SeriesID, v.Year,
			v.Power, v.Reliability, v.Safety, v.Cost}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "series", `
		INSERT INTO series (id, name, reputation, first_year, last_year) VALUES (?, ?, ?, ?, ?)
	`, entity.Sorted(t.Series), func(_ int, v *entity.Series) []any {
		return []any{v.ID, v.Name, v.Reputation, v.FirstYear, v.LastYear}
	}); err != nil {
		return err
	}

	var ruleErr error
	if err := insertAll(ctx, tx, "series_rules", `
		INSERT INTO series_rules
		(seq, series_id, from_year, to_year, max_cars, min_age, max_age, championship_races,
		 non_championship_races, point_system, min_power, max_power, base_salary, race_reward)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Rules, func(i int, v entity.SeriesRule) []any {
		points, err := json.Marshal(orEmpty(v.PointSystem))
		if err != nil {
			ruleErr = err
		}
		return []any{i + 1, v.SeriesID, v.FromYear, v.ToYear, v.MaxCars, v.MinAge, v.MaxAge,
			v.ChampionshipRaces, v.NonChampionshipRaces, string(points), v.MinPower, v.MaxPower,
			v.BaseSalary, v.RaceReward}
	}); err != nil {
		return err
	}
	if ruleErr != nil {
		return fmt.Errorf("save series_rules: %w", ruleErr)
	}

	if err := insertAll(ctx, tx, "tracks", `
		INSERT INTO tracks (id, name) VALUES (?, ?)
	`, entity.Sorted(t.Tracks), func(_ int, v *entity.Track) []any {
		return []any{v.ID, v.Name}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "layouts", `
		INSERT INTO layouts (id, track_id, name, safety) VALUES (?, ?, ?, ?)
	`, entity.Sorted(t.Layouts), func(_ int, v *entity.Layout) []any {
		return []any{v.ID, v.TrackID, v.Name, v.Safety}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "driver_contracts", `
		INSERT INTO driver_contracts
		(id, driver_id, team_id, series_id, salary, wanted_reputation, start_year, end_year, active, end_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.DriverContracts), func(_ int, v *entity.DriverContract) []any {
		return []any{v.ID, v.DriverID, v.TeamID, v.SeriesID, v.Salary, v.WantedReputation,
			v.StartYear, v.EndYear, v.Active, string(v.EndReason)}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "part_contracts", `
		INSERT INTO part_contracts
		(id, team_id, manufacturer_id, part_id, part_type, series_id, start_year, end_year, cost, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.PartContracts), func(_ int, v *entity.PartContract) []any {
		return []any{v.ID, v.TeamID, v.ManufacturerID, v.PartID, string(v.PartType), v.SeriesID,
			v.StartYear, v.EndYear, v.Cost, v.Active}
	}); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, "offers", `
		INSERT INTO offers (id, driver_id, team_id, series_id, salary, length, year, reserved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.Offers), func(_ int, v *entity.Offer) []any {
		return []any{v.ID, v.DriverID, v.TeamID, v.SeriesID, v.Salary, v.Length, v.Year, v.Reserved}
	}); err != nil {
		return err
	}

	return insertAll(ctx, tx, "races", `
		INSERT INTO races
		(id, series_id, season, track_id, layout_id, date, championship, reputation_weight, reward, wetness, safety)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity.Sorted(t.Races), func(_ int, v *entity.Race) []any {
		return []any{v.ID, v.SeriesID, v.Season, v.TrackID, v.LayoutID, formatTime(v.Date),
			v.Championship, v.ReputationWeight, v.Reward, v.Wetness, v.Safety}
	})
}

// saveLog writes the append-only tables, numbering rows to keep their order.
func saveLog(ctx context.Context, tx *sql.Tx, t *entity.Tables) error {
	if err := insertAll(ctx, tx, "race_results", `
		INSERT INTO race_results
		(seq, race_id, series_id, season, round, driver_id, team_id, engine_id, chassis_id, tyre_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Results, func(i int, v entity.RaceResult) []any {
		return []any{i + 1, v.RaceID, v.SeriesID, v.Season, v.Round, v.DriverID, v.TeamID,
			v.EngineID, v.ChassisID, v.TyreID, v.Position}
	}); err != nil {
		return err
	}

	return insertAll(ctx, tx, "standings", `
		INSERT INTO standings
		(seq, series_id, year, subject_type, subject_id, round, points, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Standings, func(i int, v entity.Standing) []any {
		return []any{i + 1, v.SeriesID, v.Year, string(v.SubjectType), v.SubjectID, v.Round, v.Points, v.Position}
	})
}

func saveSlots(ctx context.Context, tx *sql.Tx, tier string, st *entity.SlotTable) error {
	return insertAll(ctx, tx, "series_slots", `
		INSERT INTO series_slots
		(tier, team_id, series_id, year, max_slots, signed_slots, reserved_slots)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, st.Rows(), func(_ int, v *entity.SeriesSlot) []any {
		return []any{tier, v.TeamID, v.SeriesID, v.Year, v.MaxSlots, v.SignedSlots, v.ReservedSlots}
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
