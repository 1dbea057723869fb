// Package config loads the inputs of a run: the world definition, the
// human decisions for a day and the simulation tunables.
//
// Worlds are written in CUE and unified with the embedded #World schema
// (schema.cue) before they are decoded, so range and enum mistakes come
// back with a file position. Cross references between records are checked
// after decoding. Decisions are plain YAML keyed by team id. Tunables are
// read through viper from the "tunables" section of the CLI config file.
package config
