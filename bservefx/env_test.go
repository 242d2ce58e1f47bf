package bservefx_test

import (
	"testing"

	"github.com/advdv/bserve/bservefx"
	"github.com/stretchr/testify/require"
)

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("BSERVE_PORT", "9000")
	t.Setenv("BSERVE_SERVICE_NAME", "svc")

	env, err := bservefx.ParseEnv[bservefx.BaseEnvironment]()()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", env.Host)
	require.Equal(t, 9000, env.Port)
	require.Equal(t, 1, env.Instances)
	require.Equal(t, "none", env.OtelExporter)
	require.Equal(t, 10_000, env.MaxBodySize)
	require.Zero(t, env.MaxConnections)
	require.Empty(t, env.MetricsAddr)
}

func TestParseEnvRequired(t *testing.T) {
	t.Setenv("BSERVE_SERVICE_NAME", "svc")

	_, err := bservefx.ParseEnv[bservefx.BaseEnvironment]()()
	require.ErrorContains(t, err, "BSERVE_PORT")
}

func TestParseEnvInstances(t *testing.T) {
	t.Setenv("BSERVE_PORT", "9000")
	t.Setenv("BSERVE_SERVICE_NAME", "svc")
	t.Setenv("BSERVE_INSTANCES", "0")

	_, err := bservefx.ParseEnv[bservefx.BaseEnvironment]()()
	require.ErrorContains(t, err, "BSERVE_INSTANCES")
}

type appEnv struct {
	bservefx.BaseEnvironment
	Greeting string `env:"GREETING" envDefault:"hello"`
}

func TestParseEnvEmbedded(t *testing.T) {
	t.Setenv("BSERVE_PORT", "9000")
	t.Setenv("BSERVE_SERVICE_NAME", "svc")
	t.Setenv("GREETING", "hoi")

	env, err := bservefx.ParseEnv[appEnv]()()
	require.NoError(t, err)
	require.Equal(t, "hoi", env.Greeting)
	require.Equal(t, 9000, env.Port)
}
