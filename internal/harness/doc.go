// Package harness runs scenario tests against a complete simulated world.
//
// A scenario loads a CUE world, simulates a number of days with scripted
// human decisions and then checks the saved game. Every scenario runs in a
// fresh in-memory database with a fixed run id, so the same scenario always
// produces the same game.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	world: ../worlds/classic       # relative to the scenario file
//	days: 400
//	run_id: scenario-classic       # optional
//	decisions:
//	  - day: 0                     # zero-based day offset
//	    drivers:
//	      2: [{driver: 5, salary: 1200, length: 2}]
//	    parts:
//	      2: [{part: 3, length: 1}]
//	assertions:
//	  - type: final_state
//	    table: drivers
//	    where: { id: 5 }
//	    expect: { alive: 1 }
//	  - type: row_count
//	    table: races
//	    where: { season: 1950 }
//	    count: 8
//	  - type: min_rows
//	    table: race_results
//	    count: 1
//
// Decisions that cannot be used on their day stay pending for later days,
// exactly as they do for "paddock run".
//
// # Assertion Types
//
//   - final_state: exactly one row of a save game table matches where,
//     and its columns equal expect
//   - row_count: exactly count rows match where
//   - min_rows: at least count rows match where
//
// Table and column names are those of the save game schema. Flags are
// stored as 0/1 and dates as RFC 3339 text.
//
// # Golden Files
//
// RunWithGolden compares the run summary (final date, races run, latest
// standings) against testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
