package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/engine"
)

func viperFrom(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoadTunables_Defaults(t *testing.T) {
	tun, err := LoadTunables(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultTunables(), tun)
	assert.Equal(t, engine.DefaultConfig(), tun.EngineConfig())
}

func TestLoadTunables_Overrides(t *testing.T) {
	v := viperFrom(t, `
tunables:
  activation_year: 1955
  death_scale: 120
  move_up_probability: 0.5
  length_weights: [10, 90]
`)

	tun, err := LoadTunables(v)
	require.NoError(t, err)

	assert.Equal(t, 1955, tun.ActivationYear)
	assert.Equal(t, 120, tun.DeathScale)
	assert.Equal(t, []int{10, 90}, tun.LengthWeights, "a shorter list replaces the default")
	assert.Equal(t, DefaultTunables().FailureScale, tun.FailureScale, "unset keys keep defaults")

	cfg := tun.EngineConfig()
	assert.Equal(t, 1955, cfg.ActivationYear)
	assert.Equal(t, 2, cfg.Contract.MaxLength())
	assert.InDelta(t, 0.5, cfg.MoveUpProbability, 1e-9)
}

func TestLoadTunables_Invalid(t *testing.T) {
	v := viperFrom(t, `
tunables:
  failure_scale: 0
  move_up_probability: 1.5
`)

	_, err := LoadTunables(v)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure_scale")
	assert.Contains(t, err.Error(), "move_up_probability")
}

func TestEngineConfig_DoesNotShareWeights(t *testing.T) {
	tun := DefaultTunables()
	cfg := tun.EngineConfig()

	cfg.Contract.LengthWeights[0] = 99

	assert.NotEqual(t, 99, tun.LengthWeights[0])
}
