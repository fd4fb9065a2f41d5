package automation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/autopark/internal/config"
)

const scenarioDoc = `
name: smoke
description: both sides with defaults
steps:
  - name: left
    seeds: 2
    min_success: 1
  - name: right
    preset: right
    seeds: 1
    config:
      steering:
        kd: 0.3
  - name: hopeless
    seeds: 1
    min_success: 1
    config:
      sim:
        max_ticks: 5
`

func TestParseAndResolve(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioDoc))
	require.NoError(t, err)
	require.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 3)

	cfg, err := sc.Steps[1].Resolve()
	require.NoError(t, err)
	require.Equal(t, "right", cfg.Parking.Side)
	require.Equal(t, 0.3, cfg.Steering.Kd)
	require.Equal(t, config.DefaultConfig().Steering.Kp, cfg.Steering.Kp)
}

func TestResolveRejectsBadConfig(t *testing.T) {
	sc, err := ParseScenario([]byte("steps:\n  - preset: nope\n"))
	require.NoError(t, err)
	_, err = sc.Steps[0].Resolve()
	require.Error(t, err)

	sc, err = ParseScenario([]byte("steps:\n  - config:\n      parking:\n        confirm_ticks: -1\n"))
	require.NoError(t, err)
	_, err = sc.Steps[0].Resolve()
	require.ErrorIs(t, err, config.ErrInvalid)

	_, err = ParseScenario([]byte("name: empty\n"))
	require.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioDoc))
	require.NoError(t, err)

	results, err := RunScenario(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.True(t, results[0].Passed)
	require.Len(t, results[0].Outcomes, 2)
	require.Equal(t, 1.0, results[0].SuccessRate)
	require.False(t, results[2].Passed)

	passed, failed := Summary(results)
	require.Equal(t, 2, passed)
	require.Equal(t, 1, failed)
}
