// Package contract negotiates driver and part contracts against per-team,
// per-series slot capacity for the current and the next season.
//
// The engine is the only writer of DriverContracts, PartContracts, Offers
// and both slot tables. Every operation leaves the slot tables recounted
// and checked; a broken slot invariant is returned as a state error.
//
// Configuration gaps (no rule for a series in a year) and bad human input
// are logged and absorbed here. They never surface as errors.
package contract

import (
	"log/slog"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// Config holds the economic and negotiation tunables.
type Config struct {
	// SalaryFactor is paid per point of race reputation on top of the
	// series base salary.
	SalaryFactor int

	// OfferPool is divided by a driver's reputation rank to get the lowest
	// salary the driver accepts.
	OfferPool int

	// LengthWeights[i] is the AI weight of an (i+1)-year contract.
	LengthWeights []int

	// MinPartTerm and MaxPartTerm bound AI part contract lengths.
	MinPartTerm int
	MaxPartTerm int
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		SalaryFactor:  100,
		OfferPool:     100000,
		LengthWeights: []int{40, 30, 20, 10},
		MinPartTerm:   1,
		MaxPartTerm:   4,
	}
}

// MaxLength is the longest driver contract the engine writes.
func (c Config) MaxLength() int {
	return len(c.LengthWeights)
}

// Engine negotiates contracts over a set of tables.
type Engine struct {
	tables *entity.Tables
	src    rng.Source
	logger *slog.Logger
	cfg    Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithConfig replaces the tunables.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// New creates a contract engine.
func New(tables *entity.Tables, src rng.Source, opts ...Option) *Engine {
	e := &Engine{
		tables: tables,
		src:    src,
		logger: slog.Default(),
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.MaxLength() == 0 {
		e.cfg.LengthWeights = DefaultConfig().LengthWeights
	}
	return e
}
