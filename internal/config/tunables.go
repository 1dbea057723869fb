package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/roach88/paddock/internal/engine"
)

// TunablesKey is the config file section holding tunables.
const TunablesKey = "tunables"

// Tunables are the simulation knobs a player may override in the config
// file. Anything not listed keeps its engine default.
type Tunables struct {
	ActivationYear    int     `mapstructure:"activation_year" yaml:"activation_year"`
	AbilityDrift      int     `mapstructure:"ability_drift" yaml:"ability_drift"`
	PeakAge           int     `mapstructure:"peak_age" yaml:"peak_age"`
	PartDelta         int     `mapstructure:"part_delta" yaml:"part_delta"`
	FailureScale      int     `mapstructure:"failure_scale" yaml:"failure_scale"`
	DeathScale        int     `mapstructure:"death_scale" yaml:"death_scale"`
	DebtReset         int     `mapstructure:"debt_reset" yaml:"debt_reset"`
	FailureMultiplier int     `mapstructure:"failure_multiplier" yaml:"failure_multiplier"`
	MoveUpProbability float64 `mapstructure:"move_up_probability" yaml:"move_up_probability"`
	SalaryFactor      int     `mapstructure:"salary_factor" yaml:"salary_factor"`
	OfferPool         int     `mapstructure:"offer_pool" yaml:"offer_pool"`
	LengthWeights     []int   `mapstructure:"length_weights" yaml:"length_weights"`
	WetOdds           int     `mapstructure:"wet_odds" yaml:"wet_odds"`
}

// DefaultTunables mirrors engine.DefaultConfig.
func DefaultTunables() Tunables {
	cfg := engine.DefaultConfig()
	return Tunables{
		ActivationYear:    cfg.ActivationYear,
		AbilityDrift:      cfg.AbilityDrift,
		PeakAge:           cfg.PeakAge,
		PartDelta:         cfg.PartDelta,
		FailureScale:      cfg.FailureScale,
		DeathScale:        cfg.DeathScale,
		DebtReset:         cfg.DebtReset,
		FailureMultiplier: cfg.FailureMultiplier,
		MoveUpProbability: cfg.MoveUpProbability,
		SalaryFactor:      cfg.Contract.SalaryFactor,
		OfferPool:         cfg.Contract.OfferPool,
		LengthWeights:     append([]int{}, cfg.Contract.LengthWeights...),
		WetOdds:           cfg.Schedule.WetOdds,
	}
}

// LoadTunables overlays the tunables section of v on the defaults.
func LoadTunables(v *viper.Viper) (Tunables, error) {
	t := DefaultTunables()
	if !v.IsSet(TunablesKey) {
		return t, nil
	}
	// mapstructure grows existing slices in place instead of replacing them.
	if v.IsSet(TunablesKey + ".length_weights") {
		t.LengthWeights = nil
	}
	if err := v.UnmarshalKey(TunablesKey, &t); err != nil {
		return Tunables{}, fmt.Errorf("decoding tunables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, err
	}
	return t, nil
}

// Validate rejects settings the engine cannot run with.
func (t Tunables) Validate() error {
	var errs []error
	if t.FailureScale <= 0 {
		errs = append(errs, fmt.Errorf("failure_scale must be positive, got %d", t.FailureScale))
	}
	if t.DeathScale <= 0 {
		errs = append(errs, fmt.Errorf("death_scale must be positive, got %d", t.DeathScale))
	}
	if t.FailureMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("failure_multiplier must be positive, got %d", t.FailureMultiplier))
	}
	if t.MoveUpProbability < 0 || t.MoveUpProbability > 1 {
		errs = append(errs, fmt.Errorf("move_up_probability must be within [0, 1], got %g", t.MoveUpProbability))
	}
	if t.WetOdds <= 0 {
		errs = append(errs, fmt.Errorf("wet_odds must be positive, got %d", t.WetOdds))
	}
	if len(t.LengthWeights) == 0 {
		errs = append(errs, errors.New("length_weights must not be empty"))
	}
	for i, w := range t.LengthWeights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("length_weights[%d] is negative", i))
		}
	}
	return errors.Join(errs...)
}

// EngineConfig applies the tunables to the engine defaults.
func (t Tunables) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.ActivationYear = t.ActivationYear
	cfg.AbilityDrift = t.AbilityDrift
	cfg.PeakAge = t.PeakAge
	cfg.PartDelta = t.PartDelta
	cfg.FailureScale = t.FailureScale
	cfg.DeathScale = t.DeathScale
	cfg.DebtReset = t.DebtReset
	cfg.FailureMultiplier = t.FailureMultiplier
	cfg.MoveUpProbability = t.MoveUpProbability
	cfg.Contract.SalaryFactor = t.SalaryFactor
	cfg.Contract.OfferPool = t.OfferPool
	cfg.Contract.LengthWeights = append([]int{}, t.LengthWeights...)
	cfg.Schedule.WetOdds = t.WetOdds
	return cfg
}
