package cli

import (
	"log/slog"

	"github.com/roach88/rastercat/internal/config"
	"github.com/roach88/rastercat/internal/store"
)

// commandEnv is the shared runtime of one command invocation: validated
// configuration, an open store, and a run-scoped logger.
type commandEnv struct {
	cfg     config.Config
	store   *store.Store
	logger  *slog.Logger
	traceID string
}

// setupEnv loads and validates the config, opens the database, and wires the
// logger. database, when non-empty, overrides the configured path. The caller
// owns the returned env and must call close.
func setupEnv(opts *RootOptions, database string) (*commandEnv, error) {
	cfg, err := config.Parse(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if database != "" {
		cfg.Database = database
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	traceID := newTraceID()
	logger := newLogger(opts.Verbose).With("trace_id", traceID)

	logger.Debug("opening database", "path", cfg.Database)
	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	return &commandEnv{cfg: cfg, store: s, logger: logger, traceID: traceID}, nil
}

func (e *commandEnv) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}
