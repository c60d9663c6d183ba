package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kapu/ai-demo-hub/internal/service/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickInt(t *testing.T) {
	assert.Equal(t, 6543, pickInt(6543, "7000", 5432))
	assert.Equal(t, 7000, pickInt(0, "7000", 5432))
	assert.Equal(t, 5432, pickInt(0, "not-a-port", 5432))
	assert.Equal(t, 5432, pickInt(0, "-1", 5432))
	assert.Equal(t, 5432, pickInt(0, "", 5432))
}

func TestPostgresConfigPrecedence(t *testing.T) {
	*dbHost = "flag-host"
	t.Cleanup(func() { *dbHost = "" })

	env := map[string]string{
		"POSTGRES_HOST": "env-host",
		"POSTGRES_PORT": "6000",
		"POSTGRES_DB":   "demo_runs",
	}
	cfg := postgresConfig(func(key string) string { return env[key] })

	assert.Equal(t, "flag-host", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "demo", cfg.User)
	assert.Equal(t, "", cfg.Password)
	assert.Equal(t, "demo_runs", cfg.Database)
}

func TestPrintSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSchema(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), len(database.Schema))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), ";"))
	assert.Contains(t, buf.String(), "demo_runs")
}
