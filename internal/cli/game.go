package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/store"
)

// openGame opens the database and loads the saved game. The caller closes
// the returned store.
func openGame(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*store.Store, *entity.Tables, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}

	tables, err := st.Load(ctx)
	if err != nil {
		st.Close()
		if errors.Is(err, store.ErrDigestMismatch) {
			return nil, nil, fail(f, ExitFailure, ErrCodeTampered, "saved game does not match its digest", err)
		}
		return nil, nil, fail(f, ExitCommandError, ErrCodeDatabase, "failed to load game", err)
	}
	if tables.Meta.Date.IsZero() {
		st.Close()
		return nil, nil, fail(f, ExitCommandError, ErrCodeNoGame,
			fmt.Sprintf("no game in %s (run paddock init first)", opts.Database), nil)
	}
	return st, tables, nil
}

// fail reports an error through the formatter and returns the matching
// ExitError.
func fail(f *OutputFormatter, exitCode int, code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, text, nil); outErr != nil {
		return outErr
	}
	if err != nil {
		return WrapExitError(exitCode, code+": "+message, err)
	}
	return NewExitError(exitCode, code+": "+message)
}

func closeStore(st *store.Store, opts *RootOptions) {
	if err := st.Close(); err != nil {
		opts.Logger().Error("error closing database", "error", err)
	}
}
