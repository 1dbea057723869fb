// Package entity holds the in-memory tables every simulation component
// reads and writes.
//
// Records are plain typed structs keyed by id. Tables never hand out
// positional access: callers look entities up by id and iterate through the
// sorted-id helpers so that a seeded run visits entities in the same order
// every time.
//
// The simulation is single-writer. Nothing in this package locks; the
// day-loop orchestrator owns a *Tables and passes it to each component.
//
// Ownership of mutation:
//   - contract engine: DriverContracts, PartContracts, Offers, slot tables
//   - race outcome engine: Results (append only)
//   - standings engine: Standings (append only)
//   - scheduler: Races
package entity
