package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/paddock/internal/entity"
)

// ContractsOptions holds flags for the contracts command.
type ContractsOptions struct {
	*RootOptions
	TeamID int
	Year   int
}

// DriverContractRow is one driver contract in the listing.
type DriverContractRow struct {
	ID       int    `json:"id"`
	Driver   string `json:"driver"`
	Team     string `json:"team"`
	SeriesID int    `json:"series_id"`
	Salary   int    `json:"salary"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// PartContractRow is one part supply contract in the listing.
type PartContractRow struct {
	ID           int    `json:"id"`
	Team         string `json:"team"`
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer"`
	PartID       int    `json:"part_id"`
	From         int    `json:"from"`
	To           int    `json:"to"`
	Cost         int    `json:"cost"`
}

// TeamRow is a team's balance and slot usage for the year.
type TeamRow struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Human  bool   `json:"human"`
	Money  int    `json:"money"`
	Signed int    `json:"signed"`
	Max    int    `json:"max"`
}

// ContractsResult is the output of the contracts command.
type ContractsResult struct {
	Year    int                 `json:"year"`
	Teams   []TeamRow           `json:"teams"`
	Drivers []DriverContractRow `json:"drivers"`
	Parts   []PartContractRow   `json:"parts"`
}

func (r ContractsResult) renderText(w io.Writer) error {
	fmt.Fprintf(w, "Teams %d\n", r.Year)
	if err := writeTable(w, []string{"id", "team", "owner", "money", "slots"},
		lo.Map(r.Teams, func(t TeamRow, _ int) []string {
			owner := "AI"
			if t.Human {
				owner = "human"
			}
			return []string{strconv.Itoa(t.ID), t.Name, owner, money(t.Money), fmt.Sprintf("%d/%d", t.Signed, t.Max)}
		})); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDriver contracts %d\n", r.Year)
	if err := writeTable(w, []string{"id", "driver", "team", "salary", "years"},
		lo.Map(r.Drivers, func(c DriverContractRow, _ int) []string {
			return []string{strconv.Itoa(c.ID), c.Driver, c.Team, money(c.Salary), fmt.Sprintf("%d-%d", c.From, c.To)}
		})); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPart contracts %d\n", r.Year)
	return writeTable(w, []string{"id", "team", "type", "manufacturer", "years", "cost"},
		lo.Map(r.Parts, func(c PartContractRow, _ int) []string {
			return []string{strconv.Itoa(c.ID), c.Team, c.Type, c.Manufacturer, fmt.Sprintf("%d-%d", c.From, c.To), money(c.Cost)}
		}))
}

// NewContractsCommand creates the contracts command.
func NewContractsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContractsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "List active contracts and team balances",
		Long: `List the driver and part contracts active in a season, with each
team's balance and driver slot usage.

Example:
  paddock contracts --db ./1950.db
  paddock contracts --db ./1950.db --team 2 --year 1951`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContracts(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.TeamID, "team", 0, "team id (default all teams)")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "season (default current)")

	return cmd
}

func runContracts(opts *ContractsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, tables, err := openGame(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer closeStore(store, opts.RootOptions)

	if opts.TeamID != 0 {
		if _, ok := tables.Teams[opts.TeamID]; !ok {
			return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("team %d not found", opts.TeamID), nil)
		}
	}
	year := opts.Year
	if year == 0 {
		year = tables.Year()
	}

	return f.SuccessForRun(tables.Meta.RunID, listContracts(tables, opts.TeamID, year))
}

func listContracts(tables *entity.Tables, teamID, year int) ContractsResult {
	wanted := func(id int) bool { return teamID == 0 || id == teamID }
	teamName := func(id int) string {
		if t, ok := tables.Teams[id]; ok {
			return t.Name
		}
		return fmt.Sprintf("#%d", id)
	}
	slots := tables.CurrentSlots
	if tables.NextSlots != nil && tables.NextSlots.Year == year {
		slots = tables.NextSlots
	}

	res := ContractsResult{Year: year, Teams: []TeamRow{}, Drivers: []DriverContractRow{}, Parts: []PartContractRow{}}
	for _, t := range entity.Sorted(tables.Teams) {
		if !wanted(t.ID) || !t.ActiveIn(year) {
			continue
		}
		row := TeamRow{ID: t.ID, Name: t.Name, Human: t.IsHuman(), Money: t.Money}
		if slots != nil && slots.Year == year {
			if s, ok := slots.Get(t.ID, t.SeriesID); ok {
				row.Signed, row.Max = s.SignedSlots, s.MaxSlots
			}
		}
		res.Teams = append(res.Teams, row)
	}
	for _, c := range entity.Sorted(tables.DriverContracts) {
		if !wanted(c.TeamID) || !c.ActiveIn(year) {
			continue
		}
		driver := fmt.Sprintf("#%d", c.DriverID)
		if d, ok := tables.Drivers[c.DriverID]; ok {
			driver = d.Name
		}
		res.Drivers = append(res.Drivers, DriverContractRow{
			ID:       c.ID,
			Driver:   driver,
			Team:     teamName(c.TeamID),
			SeriesID: c.SeriesID,
			Salary:   c.Salary,
			From:     c.StartYear,
			To:       c.EndYear,
		})
	}
	for _, c := range entity.Sorted(tables.PartContracts) {
		if !wanted(c.TeamID) || !c.ActiveIn(year) {
			continue
		}
		maker := fmt.Sprintf("#%d", c.ManufacturerID)
		if m, ok := tables.Manufacturers[c.ManufacturerID]; ok {
			maker = m.Name
		}
		res.Parts = append(res.Parts, PartContractRow{
			ID:           c.ID,
			Team:         teamName(c.TeamID),
			Type:         string(c.PartType),
			Manufacturer: maker,
			PartID:       c.PartID,
			From:         c.StartYear,
			To:           c.EndYear,
			Cost:         c.Cost,
		})
	}
	return res
}
