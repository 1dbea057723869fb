package cli

import (
	"errors"

	"github.com/roach88/paddock/internal/config"
	"github.com/roach88/paddock/internal/engine"
	"github.com/roach88/paddock/internal/store"
)

// Error code constants - unified across all CLI commands. Load codes are
// shared with the config package.
const (
	ErrCodeGeneric     = config.ErrCodeGeneric
	ErrCodeNotFound    = config.ErrCodeNotFound
	ErrCodeWriteFailed = "E007" // Database write error
	ErrCodeDatabase    = "E008" // Database open/read error
	ErrCodeNoGame      = "E009" // Database holds no game
	ErrCodeGameExists  = "E010" // Database already holds a game
	ErrCodeTampered    = "E011" // Stored digest does not match tables
	ErrCodeSimulation  = "E020" // Broken simulation invariant
	ErrCodeScenario    = "E021" // Scenario run failed
	ErrCodeBadFlag     = "E030" // Invalid flag value
)

// codeFor maps an error to the code reported to the user.
func codeFor(err error) string {
	var le *config.LoadError
	switch {
	case errors.As(err, &le):
		return le.Code
	case errors.Is(err, store.ErrDigestMismatch):
		return ErrCodeTampered
	case engine.IsFatal(err):
		return ErrCodeSimulation
	default:
		return ErrCodeGeneric
	}
}
