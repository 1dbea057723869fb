// Package engine implements the paddock day loop.
//
// The engine owns a set of entity tables and drives the four simulation
// components over them, one simulated day per Step.
//
// ARCHITECTURE:
//
// Single-Writer Day Loop:
// Every component mutates the shared tables synchronously from Step. There
// is no locking because there is no concurrency. This ensures:
// - Same seed and same intake produce the same tables
// - Races on one day see the money and reputation left by earlier races
// - Simple reasoning about which phase wrote what
//
// Day Order:
// 1. Season start (January 1st only): aging and retirement, slot rollover,
// season costs, race planning, part development, season reputation and
// generator intake
// 2. Contract signing: drivers, parts, next-year signing
// 3. Races dated today, in id order, then standings
// 4. Pending offers
// 5. Debt check (first day of each month)
//
// ERROR HANDLING:
//
// Only state errors (entity.StateError) leave Step. They are wrapped in a
// StepError naming the phase and date, and the run must stop: the tables
// are no longer trustworthy. Missing configuration and bad human input are
// logged by the component that met them.
package engine
