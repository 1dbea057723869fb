package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/paddock/internal/entity"
)

//go:embed schema.cue
var schemaSource string

// World is a decoded world definition.
type World struct {
	Start         string            `json:"start"`
	Seed          int64             `json:"seed"`
	Series        []SeriesDef       `json:"series"`
	Rules         []RuleDef         `json:"rules"`
	Tracks        []TrackDef        `json:"tracks"`
	Manufacturers []ManufacturerDef `json:"manufacturers"`
	Teams         []TeamDef         `json:"teams"`
	Drivers       []DriverDef       `json:"drivers"`
}

type SeriesDef struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	FirstYear  int    `json:"first_year"`
	LastYear   int    `json:"last_year"`
}

type RuleDef struct {
	SeriesID             int   `json:"series_id"`
	FromYear             int   `json:"from_year"`
	ToYear               int   `json:"to_year"`
	MaxCars              int   `json:"max_cars"`
	MinAge               int   `json:"min_age"`
	MaxAge               int   `json:"max_age"`
	ChampionshipRaces    int   `json:"championship_races"`
	NonChampionshipRaces int   `json:"non_championship_races"`
	PointSystem          []int `json:"point_system"`
	MinPower             int   `json:"min_power"`
	MaxPower             int   `json:"max_power"`
	BaseSalary           int   `json:"base_salary"`
	RaceReward           int   `json:"race_reward"`
}

type TrackDef struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Layouts []LayoutDef `json:"layouts"`
}

type LayoutDef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Safety int    `json:"safety"`
}

type ManufacturerDef struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Reputation int       `json:"reputation"`
	Parts      []PartDef `json:"parts"`
}

type PartDef struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	SeriesID    int    `json:"series_id"`
	Year        int    `json:"year"`
	Power       int    `json:"power"`
	Reliability int    `json:"reliability"`
	Safety      int    `json:"safety"`
	Cost        int    `json:"cost"`
}

type TeamDef struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Owner        int    `json:"owner"`
	SeriesID     int    `json:"series_id"`
	Money        int    `json:"money"`
	Reputation   int    `json:"reputation"`
	FinanceStaff int    `json:"finance_staff"`
	DesignStaff  int    `json:"design_staff"`
	FoundedYear  int    `json:"founded_year"`
	FoldedYear   int    `json:"folded_year"`
}

type DriverDef struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	BirthYear      int    `json:"birth_year"`
	Ability        int    `json:"ability"`
	RetirementAge  int    `json:"retirement_age"`
	RaceReputation int    `json:"race_reputation"`
}

// LoadWorld loads a world definition from a .cue file or a directory
// holding one CUE package, and checks it against the #World schema.
func LoadWorld(path string) (*World, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("world not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing world: %v", err)}
	}

	dir, args := path, []string{"."}
	if info.IsDir() {
		files, err := filepath.Glob(filepath.Join(path, "*.cue"))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	} else {
		dir, args = filepath.Dir(path), []string{"./" + filepath.Base(path)}
	}

	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err)
	}
	return decodeWorld(ctx, value)
}

// ParseWorld checks and decodes world source held in memory.
func ParseWorld(filename string, src []byte) (*World, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err)
	}
	return decodeWorld(ctx, value)
}

func decodeWorld(ctx *cue.Context, value cue.Value) (*World, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling world schema: %w", err)
	}

	world := schema.LookupPath(cue.ParsePath("#World")).Unify(value)
	if err := world.Validate(); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	var w World
	if err := world.Decode(&w); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}
	if _, err := w.StartDate(); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: err.Error(), Pos: world.LookupPath(cue.ParsePath("start")).Pos()}
	}
	if err := w.checkReferences(); err != nil {
		return nil, err
	}
	return &w, nil
}

// StartDate returns the first simulated day.
func (w *World) StartDate() (time.Time, error) {
	d, err := time.Parse(time.DateOnly, w.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", w.Start, err)
	}
	return d, nil
}

func (w *World) checkReferences() error {
	series := mapset.NewSet(lo.Map(w.Series, func(s SeriesDef, _ int) int { return s.ID })...)

	for _, r := range w.Rules {
		if !series.Contains(r.SeriesID) {
			return referenceError("rule", r.FromYear, "series", r.SeriesID)
		}
		if r.MaxPower > 0 && r.MinPower > r.MaxPower {
			return &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("rule for series %d from %d: min_power above max_power", r.SeriesID, r.FromYear)}
		}
	}
	for _, t := range w.Teams {
		if !series.Contains(t.SeriesID) {
			return referenceError("team", t.ID, "series", t.SeriesID)
		}
	}
	for _, m := range w.Manufacturers {
		for _, p := range m.Parts {
			if !series.Contains(p.SeriesID) {
				return referenceError("part of manufacturer", m.ID, "series", p.SeriesID)
			}
		}
	}
	return nil
}

func referenceError(kind string, id int, target string, targetID int) *LoadError {
	return &LoadError{
		Code:    ErrCodeReference,
		Message: fmt.Sprintf("%s %d references unknown %s %d", kind, id, target, targetID),
	}
}

// Tables builds the initial simulation state. The clock starts at
// StartDate and names are NFC normalized.
func (w *World) Tables() (*entity.Tables, error) {
	start, err := w.StartDate()
	if err != nil {
		return nil, err
	}

	t := entity.NewTables()
	t.Meta.Seed = w.Seed
	t.Meta.Date = start

	for _, s := range w.Series {
		if err := t.AddSeries(&entity.Series{
			ID:         s.ID,
			Name:       norm.NFC.String(s.Name),
			Reputation: s.Reputation,
			FirstYear:  s.FirstYear,
			LastYear:   s.LastYear,
		}); err != nil {
			return nil, duplicateError(err)
		}
	}
	for _, r := range w.Rules {
		t.Rules = append(t.Rules, entity.SeriesRule{
			SeriesID:             r.SeriesID,
			FromYear:             r.FromYear,
			ToYear:               r.ToYear,
			MaxCars:              r.MaxCars,
			MinAge:               r.MinAge,
			MaxAge:               r.MaxAge,
			ChampionshipRaces:    r.ChampionshipRaces,
			NonChampionshipRaces: r.NonChampionshipRaces,
			PointSystem:          append([]int{}, r.PointSystem...),
			MinPower:             r.MinPower,
			MaxPower:             r.MaxPower,
			BaseSalary:           r.BaseSalary,
			RaceReward:           r.RaceReward,
		})
	}
	for _, tr := range w.Tracks {
		if err := t.AddTrack(&entity.Track{ID: tr.ID, Name: norm.NFC.String(tr.Name)}); err != nil {
			return nil, duplicateError(err)
		}
		for _, l := range tr.Layouts {
			if err := t.AddLayout(&entity.Layout{
				ID:      l.ID,
				TrackID: tr.ID,
				Name:    norm.NFC.String(l.Name),
				Safety:  l.Safety,
			}); err != nil {
				return nil, duplicateError(err)
			}
		}
	}
	for _, m := range w.Manufacturers {
		if err := t.AddManufacturer(&entity.Manufacturer{
			ID:         m.ID,
			Name:       norm.NFC.String(m.Name),
			Reputation: m.Reputation,
		}); err != nil {
			return nil, duplicateError(err)
		}
		for _, p := range m.Parts {
			if err := t.AddPart(&entity.CarPart{
				ID:             p.ID,
				ManufacturerID: m.ID,
				Type:           entity.PartType(p.Type),
				SeriesID:       p.SeriesID,
				Year:           p.Year,
				Power:          p.Power,
				Reliability:    p.Reliability,
				Safety:         p.Safety,
				Cost:           p.Cost,
			}); err != nil {
				return nil, duplicateError(err)
			}
		}
	}
	for _, tm := range w.Teams {
		if err := t.AddTeam(&entity.Team{
			ID:           tm.ID,
			Name:         norm.NFC.String(tm.Name),
			OwnerID:      tm.Owner,
			SeriesID:     tm.SeriesID,
			Money:        tm.Money,
			Reputation:   tm.Reputation,
			FinanceStaff: tm.FinanceStaff,
			DesignStaff:  tm.DesignStaff,
			FoundedYear:  tm.FoundedYear,
			FoldedYear:   tm.FoldedYear,
		}); err != nil {
			return nil, duplicateError(err)
		}
	}
	for _, d := range w.Drivers {
		if err := t.AddDriver(&entity.Driver{
			ID:              d.ID,
			Name:            norm.NFC.String(d.Name),
			BirthYear:       d.BirthYear,
			Ability:         d.Ability,
			OriginalAbility: d.Ability,
			BestAbility:     d.Ability,
			Alive:           true,
			RetirementAge:   d.RetirementAge,
			RaceReputation:  d.RaceReputation,
		}); err != nil {
			return nil, duplicateError(err)
		}
	}
	return t, nil
}

func duplicateError(err error) error {
	var se *entity.StateError
	if errors.As(err, &se) {
		return &LoadError{
			Code:    ErrCodeDuplicate,
			Message: fmt.Sprintf("duplicate %s id %s", se.Details["table"], se.Details["id"]),
		}
	}
	return err
}

// cueLoadError keeps the first CUE error and its position.
func cueLoadError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
