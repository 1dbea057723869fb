// Package cli implements the paddock command tree.
//
// Every command reads its inputs from flags, PADDOCK_* environment
// variables and an optional .paddock.yaml, in that order of precedence.
// Results are printed as text or as a JSON envelope ({"status": ...}) and
// failures map to ExitError codes. Logs always go to stderr.
package cli
